// Package config provides the unified configuration system for sor.
// It defines a single ParseConfig structure consumed by the parser and the
// CLI, with defaults and validation kept in one place.
//
// Example usage:
//
//	cfg := config.NewParseConfig()
//	cfg.Workers = 8
//	cfg.Sample.MaxRecords = 1000
//
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package config

import (
	"runtime"

	"github.com/ajitpratap0/sor/pkg/sorerrors"
)

// ParseConfig is the single configuration structure for schema inference and
// parsing. The zero value is not usable; construct with NewParseConfig and
// override fields as needed.
type ParseConfig struct {
	// Workers is the number of parallel decode workers. Zero selects the
	// available hardware parallelism.
	Workers int `yaml:"workers" json:"workers"`

	// Sample bounds the prefix read during schema inference.
	Sample SampleConfig `yaml:"sample" json:"sample"`

	// Range restricts parsing to a byte sub-region of the input file.
	Range RangeConfig `yaml:"range" json:"range"`

	// Logging configures the structured logger.
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// SampleConfig bounds the inference sample. Inference stops at whichever
// limit is reached first.
type SampleConfig struct {
	// MaxRecords is the maximum number of records sampled.
	MaxRecords int `yaml:"max_records" json:"max_records"`
	// MaxBytes is the maximum number of bytes consumed by sampling.
	MaxBytes int64 `yaml:"max_bytes" json:"max_bytes"`
}

// RangeConfig selects a byte sub-region of the input. When From > 0 the
// region starts at the first complete record after From; the region always
// extends through the end of the record containing its final byte.
type RangeConfig struct {
	// From is the starting byte offset.
	From int64 `yaml:"from" json:"from"`
	// Length is the number of bytes to read; zero means through end of file.
	Length int64 `yaml:"length" json:"length"`
}

// LoggingConfig configures logging behavior.
type LoggingConfig struct {
	Level    string `yaml:"level" json:"level"`
	Encoding string `yaml:"encoding" json:"encoding"`
}

// NewParseConfig returns a ParseConfig with production defaults: hardware
// parallelism, a 500-record / 1 MiB inference sample, and the whole file.
func NewParseConfig() *ParseConfig {
	return &ParseConfig{
		Workers: runtime.NumCPU(),
		Sample: SampleConfig{
			MaxRecords: 500,
			MaxBytes:   1 << 20,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Encoding: "json",
		},
	}
}

// Validate checks the configuration for invalid values.
func (c *ParseConfig) Validate() error {
	if c.Workers < 0 {
		return sorerrors.Newf(sorerrors.ErrorTypeConfig, "workers must be >= 0, got %d", c.Workers)
	}
	if c.Sample.MaxRecords <= 0 {
		return sorerrors.Newf(sorerrors.ErrorTypeConfig, "sample.max_records must be > 0, got %d", c.Sample.MaxRecords)
	}
	if c.Sample.MaxBytes <= 0 {
		return sorerrors.Newf(sorerrors.ErrorTypeConfig, "sample.max_bytes must be > 0, got %d", c.Sample.MaxBytes)
	}
	if c.Range.From < 0 {
		return sorerrors.Newf(sorerrors.ErrorTypeConfig, "range.from must be >= 0, got %d", c.Range.From)
	}
	if c.Range.Length < 0 {
		return sorerrors.Newf(sorerrors.ErrorTypeConfig, "range.length must be >= 0, got %d", c.Range.Length)
	}
	return nil
}

// EffectiveWorkers resolves the worker count, substituting hardware
// parallelism for zero.
func (c *ParseConfig) EffectiveWorkers() int {
	if c.Workers <= 0 {
		return runtime.NumCPU()
	}
	return c.Workers
}
