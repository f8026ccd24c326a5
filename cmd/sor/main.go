package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ajitpratap0/sor/pkg/config"
	"github.com/ajitpratap0/sor/pkg/logger"
	"github.com/ajitpratap0/sor/pkg/parser"
	"github.com/ajitpratap0/sor/pkg/sorerrors"
	"github.com/ajitpratap0/sor/pkg/table"
)

var version = "0.1.0"

type rootFlags struct {
	file       string
	from       int64
	length     int64
	workers    int
	sample     int
	logLevel   string
	configFile string
	profile    bool
}

func main() {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:   "sor",
		Short: "sor - schema-on-read file parser",
		Long: `sor reads schema-on-read (SoR) files: newline-delimited records of
bracket-delimited fields. It infers a column schema from a bounded prefix
sample and decodes the whole file against it in parallel.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logger.Init(logger.Config{
				Level:    flags.logLevel,
				Encoding: "console",
			})
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.file, "file", "f", "", "input SoR file (plain, .gz, .zst or .lz4)")
	pf.Int64Var(&flags.from, "from", 0, "byte offset to start reading at")
	pf.Int64Var(&flags.length, "len", 0, "number of bytes to read (0 = to end of file)")
	pf.IntVar(&flags.workers, "workers", 0, "parallel decode workers (0 = all CPUs)")
	pf.IntVar(&flags.sample, "sample", 0, "records sampled for schema inference (0 = default)")
	pf.StringVar(&flags.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	pf.StringVar(&flags.configFile, "config", "", "YAML config file")
	pf.BoolVar(&flags.profile, "profile", false, "report process resource usage after the run")

	root.AddCommand(versionCmd())
	root.AddCommand(queryCmd(flags))
	root.AddCommand(inferCmd(flags))
	root.AddCommand(parseCmd(flags))

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("sor v%s\n", version)
			fmt.Printf("Go version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}

// loadConfig layers defaults, the optional config file, SOR_* environment
// variables and command-line flags, in increasing precedence.
func loadConfig(flags *rootFlags) (*config.ParseConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("SOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetDefault("workers", 0)
	v.SetDefault("sample.max_records", 0)

	if flags.configFile != "" {
		v.SetConfigFile(flags.configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, sorerrors.Wrap(err, sorerrors.ErrorTypeConfig, "failed to read config file").
				WithDetail("path", flags.configFile)
		}
	}

	cfg := config.NewParseConfig()
	if w := v.GetInt("workers"); w > 0 {
		cfg.Workers = w
	}
	if s := v.GetInt("sample.max_records"); s > 0 {
		cfg.Sample.MaxRecords = s
	}
	if flags.workers > 0 {
		cfg.Workers = flags.workers
	}
	if flags.sample > 0 {
		cfg.Sample.MaxRecords = flags.sample
	}
	cfg.Range.From = flags.from
	cfg.Range.Length = flags.length

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseInput(flags *rootFlags) (*table.Table, error) {
	if flags.file == "" {
		return nil, sorerrors.New(sorerrors.ErrorTypeConfig, "no input file; use -f")
	}

	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, err
	}

	p, err := parser.New(cfg)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	tbl, err := p.ParseFile(context.Background(), flags.file)
	if err != nil {
		return nil, err
	}

	logger.Debug("file parsed",
		zap.String("file", flags.file),
		zap.Int("rows", tbl.RowCount()),
		zap.Duration("elapsed", time.Since(start)))

	if flags.profile {
		reportProfile()
	}
	return tbl, nil
}

// reportProfile prints process and host resource usage to stderr.
func reportProfile() {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err == nil {
		if memInfo, err := proc.MemoryInfo(); err == nil {
			fmt.Fprintf(os.Stderr, "profile: rss=%d MiB\n", memInfo.RSS/(1<<20))
		}
		if cpuPct, err := proc.CPUPercent(); err == nil {
			fmt.Fprintf(os.Stderr, "profile: cpu=%.1f%%\n", cpuPct)
		}
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		fmt.Fprintf(os.Stderr, "profile: host_mem_used=%.1f%%\n", vm.UsedPercent)
	}
	if counts, err := cpu.Counts(true); err == nil {
		fmt.Fprintf(os.Stderr, "profile: host_cpus=%d\n", counts)
	}
}
