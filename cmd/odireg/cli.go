package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/sghaida/odireg/internal/config"
)

// ExitError carries the process exit code for a failure.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface.
func (e *ExitError) Error() string { return e.Message }

// options is the parsed command line.
type options struct {
	cfg      config.Config
	list     bool
	match    string
	describe string
	stats    bool
}

// parse reads flags on top of the environment-derived cfg. It returns
// shouldExit=true when help was requested, and an ExitError with code 2 when
// the command line is unusable, including when there is nothing to do.
func parse(args []string, cfg config.Config, out io.Writer) (opts options, shouldExit bool, err error) {
	fs := flag.NewFlagSet("odireg", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.Usage = func() {
		fmt.Fprint(out, `
odireg - build named instances from a manifest through a type-keyed registry.

Usage:
  odireg [options] [MANIFEST]
  odireg -list [-match GLOB]
  odireg -describe KEY

Arguments:
  MANIFEST
    Path or afs URL (file://, mem://) of a .hcl, .yaml or .yml manifest
    (or set ODIREG_MANIFEST).

Options:
`)
		fs.PrintDefaults()
	}

	manifest := fs.String("manifest", cfg.Manifest, "Path to the manifest file.")
	policy := fs.String("policy", cfg.Policy, "Duplicate-key policy: 'reject' or 'replace'.")
	logLevel := fs.String("log-level", cfg.LogLevel, "Logging level: 'debug', 'info', 'warn', 'error'.")
	logFormat := fs.String("log-format", cfg.LogFormat, "Log output format: 'text' or 'json'.")
	fs.BoolVar(&opts.list, "list", false, "List registered keys and exit.")
	fs.StringVar(&opts.match, "match", "**", "Glob applied to -list (e.g. 'shape/*').")
	fs.StringVar(&opts.describe, "describe", "", "Print the params schema of KEY and exit.")
	fs.BoolVar(&opts.stats, "stats", false, "Log creation counters when done.")

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return opts, true, nil
		}
		return opts, false, &ExitError{Code: 2, Message: err.Error()}
	}
	if fs.NArg() > 1 {
		return opts, false, &ExitError{Code: 2, Message: "too many arguments"}
	}
	if fs.NArg() == 1 {
		*manifest = fs.Arg(0)
	}

	opts.cfg = config.Config{
		LogLevel:  *logLevel,
		LogFormat: *logFormat,
		Policy:    *policy,
		Manifest:  *manifest,
	}
	if err := opts.cfg.Validate(); err != nil {
		return opts, false, &ExitError{Code: 2, Message: err.Error()}
	}

	if !opts.list && opts.describe == "" && opts.cfg.Manifest == "" {
		fs.Usage()
		return opts, false, &ExitError{Code: 2, Message: "no manifest given (pass MANIFEST, -manifest or set " + config.EnvManifest + ")"}
	}
	return opts, false, nil
}
