package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/sghaida/odireg/catalog"
	"github.com/sghaida/odireg/internal/config"
	"github.com/sghaida/odireg/internal/ctxlog"
	"github.com/sghaida/odireg/manifest"
	"github.com/sghaida/odireg/registry"
	"github.com/viant/gmetric"
	"github.com/viant/gmetric/stat"
)

// record is one output line.
type record struct {
	Name  string         `json:"name"`
	Kind  string         `json:"kind"`
	Value catalog.Entity `json:"value"`
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Getenv, os.Stdout, os.Stderr); err != nil {
		if exitErr, ok := err.(*ExitError); ok {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run is main without the process exit, for tests.
func run(ctx context.Context, args []string, getenv func(string) string, stdout, stderr io.Writer) error {
	cfg, err := config.Load(getenv)
	if err != nil {
		return &ExitError{Code: 2, Message: err.Error()}
	}

	opts, shouldExit, err := parse(args, cfg, stdout)
	if err != nil || shouldExit {
		return err
	}

	logger := opts.cfg.NewLogger(stderr)
	ctx = ctxlog.WithLogger(ctx, logger)

	metrics := gmetric.New()
	reg := registry.New[catalog.Entity](
		registry.WithPolicy(opts.cfg.RegistryPolicy()),
		registry.WithLogger(logger),
		registry.WithMetrics(metrics),
	)
	if err := catalog.Register(reg); err != nil {
		return err
	}

	switch {
	case opts.describe != "":
		return describe(stdout, reg, opts.describe)
	case opts.list:
		return list(stdout, reg, opts.match)
	}

	m, err := manifest.Load(ctx, opts.cfg.Manifest)
	if err != nil {
		return err
	}
	built, err := manifest.Build(ctx, reg, m)
	for _, b := range built {
		line, mErr := jsoniter.Marshal(record{Name: b.Name, Kind: b.Kind, Value: b.Value})
		if mErr != nil {
			return mErr
		}
		fmt.Fprintln(stdout, string(line))
	}
	if opts.stats {
		logStats(logger, reg, metrics)
	}
	return err
}

// logStats logs the registry counters and every gmetric operation counter.
func logStats(logger *slog.Logger, reg *registry.Registry[catalog.Entity], metrics *gmetric.Service) {
	s := reg.Stats()
	logger.Info("Creation stats.", slog.Int("created", s.Created), slog.Int("failed", s.Failed), slog.Any("by_key", s.ByKey))

	for _, op := range metrics.OperationCounters() {
		logger.Info("Operation counter.",
			slog.String("location", op.Location),
			slog.String("name", op.Name),
			slog.Int64("count", op.CountValue()),
			slog.Int64("errors", errorCount(op)),
		)
	}
}

// errorCount returns how many operations were completed with an error value.
func errorCount(op gmetric.Operation) int64 {
	for _, v := range op.Counters {
		if v.Value == stat.ErrorKey {
			return v.CountValue()
		}
	}
	return 0
}

func describe(out io.Writer, reg *registry.Registry[catalog.Entity], key string) error {
	if !reg.Has(key) {
		return &ExitError{Code: 2, Message: registry.UnknownKeyError{Key: key}.Error()}
	}
	doc, ok := catalog.Describe(key)
	if !ok {
		return &ExitError{Code: 2, Message: fmt.Sprintf("no params schema for %q", key)}
	}
	fmt.Fprintln(out, doc)
	return nil
}

func list(out io.Writer, reg *registry.Registry[catalog.Entity], pattern string) error {
	keys, err := reg.Match(pattern)
	if err != nil {
		return &ExitError{Code: 2, Message: err.Error()}
	}
	for _, k := range keys {
		fmt.Fprintln(out, k)
	}
	return nil
}
