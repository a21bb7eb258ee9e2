// Command salesclean cleans a raw sales export into an analysis-ready CSV.
//
// Usage:
//
//	salesclean [-config pipeline.json] [-input raw.csv] [-output clean.csv] [flags]
//
// Without -config the built-in defaults are used. Flags that are set on the
// command line override the corresponding pipeline file values.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/google/uuid"

	"salesclean/internal/config"
	"salesclean/internal/logging"
	"salesclean/internal/metrics"
	"salesclean/internal/metrics/datadog"
	"salesclean/internal/metrics/prompush"
	"salesclean/internal/pipeline"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fatalf("salesclean: %v", err)
	}
}

type options struct {
	cfgPath      string
	input        string
	output       string
	rejects      string
	fallbackDate string
	preview      int
	onCollision  string
	probe        bool
	validate     bool

	logLevel  string
	logFormat string
	verbose   bool

	metricsBackend string
	pushgatewayURL string
	datadogAddr    string
}

func parseFlags(args []string, stderr io.Writer) (options, map[string]bool, error) {
	var o options
	fs := flag.NewFlagSet("salesclean", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&o.cfgPath, "config", "", "pipeline config path (.json, .yaml or .yml)")
	fs.StringVar(&o.input, "input", config.DefaultInputPath, "raw sales CSV to clean")
	fs.StringVar(&o.output, "output", config.DefaultOutputPath, "where to write the cleaned CSV")
	fs.StringVar(&o.rejects, "rejects", "", "optional CSV receiving every dropped row")
	fs.StringVar(&o.fallbackDate, "fallback-date", config.DefaultFallbackDate, "date (YYYY-MM-DD) used for missing or unparseable sale dates")
	fs.IntVar(&o.preview, "preview", config.DefaultPreviewRows, "number of cleaned rows to print; 0 disables the preview")
	fs.StringVar(&o.onCollision, "on-collision", "error", "what to do when two headers normalize to the same name: error or suffix")
	fs.BoolVar(&o.probe, "probe", false, "print the normalized columns and role mapping, then exit")
	fs.BoolVar(&o.validate, "validate", false, "validate the configuration and exit")

	fs.StringVar(&o.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	fs.StringVar(&o.logFormat, "log-format", "text", "log format: text or json")
	fs.BoolVar(&o.verbose, "v", false, "verbose logs (same as -log-level debug)")

	fs.StringVar(&o.metricsBackend, "metrics-backend", "none", "metrics backend: none, pushgateway or datadog")
	fs.StringVar(&o.pushgatewayURL, "pushgateway-url", "http://localhost:9091", "Pushgateway base URL")
	fs.StringVar(&o.datadogAddr, "datadog-addr", "127.0.0.1:8125", "DogStatsD address")

	if err := fs.Parse(args); err != nil {
		return o, nil, err
	}
	if fs.NArg() > 0 {
		return o, nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return o, set, nil
}

// buildPipeline loads the pipeline file, if any, and applies the flags that
// were explicitly set.
func buildPipeline(o options, set map[string]bool) (config.Pipeline, error) {
	p := config.Default()
	if o.cfgPath != "" {
		var err error
		if p, err = config.Load(o.cfgPath); err != nil {
			return p, err
		}
	}
	if set["input"] {
		p.Source.File.Path = o.input
	}
	if set["output"] {
		p.Storage.File.Path = o.output
	}
	if set["rejects"] {
		p.Storage.RejectsPath = o.rejects
	}
	if set["fallback-date"] {
		p.Clean.FallbackDate = o.fallbackDate
	}
	if set["preview"] {
		p.Storage.PreviewRows = o.preview
	}
	if set["on-collision"] {
		p.Clean.OnCollision = o.onCollision
	}
	return p, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	o, set, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	level := o.logLevel
	if o.verbose {
		level = "debug"
	}
	logging.Setup(level, o.logFormat, stderr)

	p, err := buildPipeline(o, set)
	if err != nil {
		return err
	}

	issues := config.ValidatePipeline(p)
	for _, iss := range issues {
		fmt.Fprintf(stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		return fmt.Errorf("configuration is invalid")
	}
	if o.validate {
		fmt.Fprintln(stdout, "Configuration is valid.")
		return nil
	}

	ctx = logging.WithRunID(ctx, uuid.NewString())
	log := logging.FromContext(ctx)

	if o.probe {
		_, err := pipeline.Probe(ctx, p, stdout)
		return err
	}

	flush, err := setupMetrics(o, p.Job, log)
	if err != nil {
		return err
	}
	defer flush()

	_, err = pipeline.Run(ctx, p, stdout)
	return err
}

// setupMetrics installs the selected backend and returns the func that
// pushes its data at exit.
func setupMetrics(o options, job string, log *slog.Logger) (func(), error) {
	var (
		b   metrics.Backend
		err error
	)
	switch o.metricsBackend {
	case "", "none":
		log.Debug("metrics disabled")
		return func() {}, nil
	case "pushgateway":
		b, err = prompush.NewBackend(job, o.pushgatewayURL)
	case "datadog":
		b, err = datadog.NewBackend(datadog.Config{
			Addr:       o.datadogAddr,
			Namespace:  "salesclean.",
			GlobalTags: []string{"job:" + job},
		})
	default:
		return nil, fmt.Errorf("unknown metrics backend %q", o.metricsBackend)
	}
	if err != nil {
		log.Warn("metrics backend unavailable; continuing without metrics", "backend", o.metricsBackend, "err", err)
		return func() {}, nil
	}
	log.Debug("metrics enabled", "backend", o.metricsBackend)
	metrics.SetBackend(b)
	return func() {
		if err := metrics.Flush(); err != nil {
			log.Warn("metrics flush failed", "err", err)
		}
	}, nil
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
