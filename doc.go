// Package sor reads schema-on-read (SoR) files into typed columnar tables.
//
// A SoR file is a sequence of newline-delimited records, each holding zero or
// more bracket-delimited fields:
//
//	<1> <2.5> <"hello world"> <>
//
// Fields are bool (exactly 0 or 1), int, float or string; an empty bracket
// pair is a missing value. No schema is declared in the file. Instead, a
// column schema is inferred from a bounded prefix sample, picking per column
// the narrowest type in the order bool < int < float < string that fits every
// sampled value. The whole file is then decoded against that fixed schema in
// parallel: values that do not fit their column become missing, one row per
// record, in file order.
//
// The packages under pkg/ compose the pipeline: lexer tokenizes records,
// schema infers column types, parser coordinates parallel decoding, and
// table holds the columnar result. cmd/sor is the query CLI and cmd/sorgen
// generates synthetic inputs.
package sor
