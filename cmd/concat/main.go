// Command concat merges many delimited tabular files (CSV/TSV-like) into one
// output file, reconciling inconsistent delimiters and column sets while
// streaming rows in bounded chunks.
//
// Example:
//
//	concat -d ./data -o combined.csv -schema union -normalize comma
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"concat/internal/config"
	"concat/internal/merge"
	"concat/internal/metrics"
	"concat/internal/metrics/datadog"
	"concat/internal/metrics/prompush"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

// stringList is a repeatable flag value; each occurrence may also hold
// comma-separated entries.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			*s = append(*s, part)
		}
	}
	return nil
}

func main() {
	cfg := config.Default()

	var globs, inputs, columns stringList

	flag.StringVar(&cfg.Inputs.Directory, "d", "", "directory containing input files")
	flag.Var(&globs, "glob", "glob pattern(s) for input files (repeatable)")
	flag.Var(&inputs, "i", "input file(s) to combine (repeatable)")
	flag.StringVar(&cfg.Inputs.ListPath, "input-list", "", "text file listing input paths, one per line ('#' comments)")
	flag.StringVar(&cfg.Extension, "e", "", "expected file extension (e.g. csv, tsv); inputs must share one when omitted")

	flag.IntVar(&cfg.SampleRows, "sample-rows", cfg.SampleRows, "rows sampled per file for delimiter sniffing")
	flag.StringVar(&cfg.Normalize, "normalize", "", "rewrite inputs to this delimiter before merging (comma|tab|semicolon|pipe)")
	flag.StringVar(&cfg.SchemaPolicy, "schema", cfg.SchemaPolicy, "column reconciliation policy: strict|union|intersection")
	flag.Var(&columns, "columns", "only merge these columns, in this order (repeatable); overrides -schema")
	flag.StringVar(&cfg.MissingPolicy, "missing-policy", cfg.MissingPolicy, "with -columns, when a file lacks a column: error|skip|fillna")
	flag.BoolVar(&cfg.CaseInsensitive, "case-insensitive", false, "match column names ignoring case")
	flag.BoolVar(&cfg.NormalizeHeaders, "normalize-headers", false, "rewrite header cells to lowercase ASCII snake_case before matching")

	flag.BoolVar(&cfg.NoSourceColumn, "no-source-col", false, "disable the automatic source filename column")
	flag.StringVar(&cfg.SourceColumn, "source-col-name", cfg.SourceColumn, "name of the source column")
	flag.StringVar(&cfg.SourceMode, "source-col-mode", cfg.SourceMode, "source column content: name|stem|path")

	flag.StringVar(&cfg.OutPath, "o", "", "output file path (required)")
	flag.StringVar(&cfg.OutDelim, "out-delim", cfg.OutDelim, "output delimiter: comma|tab|semicolon|pipe")
	flag.BoolVar(&cfg.NoHeader, "no-header", false, "write output without a header row")
	flag.IntVar(&cfg.ChunkSize, "chunksize", cfg.ChunkSize, "rows per streamed chunk")
	flag.IntVar(&cfg.Threads, "T", cfg.Threads, "worker threads for the normalization step")
	flag.BoolVar(&cfg.Dedupe, "dedupe", false, "drop duplicate output rows (source column excluded)")
	flag.BoolVar(&cfg.DryRun, "dry-run", false, "analyze inputs and print a summary without writing output")
	flag.BoolVar(&cfg.Verbose, "v", false, "enable verbose logs")

	metricsBackendFlg := flag.String("metrics-backend", "none", "metrics backend: none, pushgateway, or datadog")
	pushGatewayURLFlg := flag.String("pushgateway-url", "", "Pushgateway base URL (overrides env PUSHGATEWAY_URL)")
	dogstatsdAddrFlg := flag.String("dogstatsd-addr", "", "DogStatsD address (overrides env DOGSTATSD_ADDR)")
	showVersion := flag.Bool("version", false, "print version and exit")

	flag.Parse()

	if *showVersion {
		fmt.Println("concat " + version)
		return
	}

	cfg.Inputs.Globs = globs
	cfg.Inputs.Files = inputs
	cfg.Columns = columns

	issues := config.Validate(cfg)
	hasError := false
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
		if iss.Severity == config.SeverityError {
			hasError = true
		}
	}
	if hasError {
		fatalf("configuration is invalid")
	}

	initMetrics(*metricsBackendFlg, *pushGatewayURLFlg, *dogstatsdAddrFlg, cfg.Verbose)
	defer func() {
		if err := metrics.Flush(); err != nil {
			log.Printf("metrics: flush error: %v", err)
		}
	}()

	ctx := context.Background()
	start := time.Now()

	stats, err := merge.Run(ctx, cfg)
	if err != nil {
		// flush so the failure phase still reaches the backend
		if ferr := metrics.Flush(); ferr != nil {
			log.Printf("metrics: flush error: %v", ferr)
		}
		log.Fatalf("%v", err)
	}

	if cfg.Verbose && !cfg.DryRun {
		log.Printf("completed in %s (files=%d skipped=%d rows=%d deduped=%d)",
			time.Since(start).Truncate(time.Millisecond),
			stats.Files, stats.Skipped, stats.Rows, stats.Deduped)
	}
}

// initMetrics installs the selected metrics backend: flag → env → default.
func initMetrics(backendName, gwURL, ddAddr string, verbose bool) {
	switch backendName {
	case "pushgateway":
		if gwURL == "" {
			gwURL = os.Getenv("PUSHGATEWAY_URL")
		}
		if gwURL == "" {
			gwURL = "http://localhost:9091"
		}
		b, err := prompush.NewBackend("concat", gwURL)
		if err != nil {
			log.Printf("metrics: failed to init pushgateway backend: %v; using nop", err)
			return
		}
		if verbose {
			log.Printf("metrics: backend=pushgateway url=%s", gwURL)
		}
		metrics.SetBackend(b)

	case "datadog":
		if ddAddr == "" {
			ddAddr = os.Getenv("DOGSTATSD_ADDR")
		}
		if ddAddr == "" {
			ddAddr = "127.0.0.1:8125"
		}
		b, err := datadog.NewBackend(datadog.Config{Addr: ddAddr, Namespace: "concat."})
		if err != nil {
			log.Printf("metrics: failed to init datadog backend: %v; using nop", err)
			return
		}
		if verbose {
			log.Printf("metrics: backend=datadog addr=%s", ddAddr)
		}
		metrics.SetBackend(b)

	case "", "none":
		// metrics disabled; nop backend remains

	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", backendName)
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
