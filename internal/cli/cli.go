// Package cli parses the weatherapp command line.
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/i474232898/weatherapp/internal/weather"
)

// ExitError is an error that carries the process exit code.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}

// Options is the parsed command line.
type Options struct {
	// Provider is the single provider to run; empty runs all of them.
	Provider weather.ProviderName
	Refresh  bool

	// The fields below override configuration when set.
	City      string
	LogLevel  string
	LogFormat string

	ServeAddr  string
	ClearCache bool
}

// Parse processes command-line arguments. Flags may appear before or after
// the command. It returns the options, whether the program should exit
// cleanly (help was printed), or an *ExitError.
func Parse(args []string, commands []weather.ProviderName, output io.Writer) (*Options, bool, error) {
	fs := flag.NewFlagSet("weatherapp", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		names := make([]string, len(commands))
		for i, c := range commands {
			names[i] = string(c)
		}
		fmt.Fprintf(output, `
weatherapp - current weather from several sites in one report.

Usage:
  weatherapp [options] [COMMAND]

Commands:
  (none)    query every provider
  %s

Options:
`, strings.Join(names, "\n  "))
		fs.PrintDefaults()
	}

	opts := &Options{}
	fs.BoolVar(&opts.Refresh, "refresh", false, "Bypass the cache and fetch fresh pages.")
	fs.StringVar(&opts.City, "city", "", "City to report on (default from WEATHERAPP_CITY).")
	fs.StringVar(&opts.ServeAddr, "serve", "", "Serve reports over HTTP on this address instead of printing one.")
	fs.BoolVar(&opts.ClearCache, "clear-cache", false, "Remove every cached page before running.")
	fs.StringVar(&opts.LogLevel, "log-level", "", "Logging level: debug, info, warn or error.")
	fs.StringVar(&opts.LogFormat, "log-format", "", "Log output format: text or json.")

	var positional []string
	rest := args
	for {
		if err := fs.Parse(rest); err != nil {
			if errors.Is(err, flag.ErrHelp) {
				return nil, true, nil
			}
			return nil, false, &ExitError{Code: 2, Message: err.Error()}
		}
		if fs.NArg() == 0 {
			break
		}
		positional = append(positional, fs.Arg(0))
		rest = fs.Args()[1:]
	}

	switch len(positional) {
	case 0:
	case 1:
		opts.Provider = weather.ProviderName(positional[0])
	default:
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("expected at most one command, got %q", positional)}
	}

	if opts.ServeAddr != "" && opts.Provider != "" {
		return nil, false, &ExitError{Code: 2, Message: "--serve does not take a command"}
	}
	if opts.LogLevel != "" {
		switch strings.ToLower(opts.LogLevel) {
		case "debug", "info", "warn", "error":
		default:
			return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
		}
	}
	if opts.LogFormat != "" {
		switch strings.ToLower(opts.LogFormat) {
		case "text", "json":
		default:
			return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
		}
	}

	return opts, false, nil
}
