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
	"syscall"

	"place-digest/internal/config"
	"place-digest/internal/observability/logging"
)

const usage = `Usage: placedigest [flags] <command> [arguments]

Commands:
  collect [-places]   collect the country directory and today's currency rates;
                      -places also collects weather and news for every capital
  find <term>         print the report for a country, capital or alternative spelling
  refresh <term>      like find, but re-collect weather and news first

Flags:
`

// errNotFound marks a search term that matches no country.
var errNotFound = errors.New("no country matches the search term")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one CLI invocation and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("placedigest", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "path to a YAML configuration file")
	envFile := fs.String("env", ".env", "dotenv file with API keys; a missing file is ignored")
	metricsAddr := fs.String("metrics-addr", "", "serve Prometheus metrics on this address while running, e.g. :9090")
	logFormat := fs.String("log-format", "json", "log output format: json or text")
	fs.Usage = func() {
		_, _ = fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	logger := initLogger(*logFormat, stderr)
	ctx, _ = logging.WithRunID(ctx, logger, "")
	logger = logging.FromContext(ctx)

	cfg, err := config.Load(*configPath, *envFile)
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		return 1
	}
	if missing := cfg.MissingKeys(); len(missing) > 0 {
		logger.Warn("API keys not configured, the matching providers will reject requests",
			slog.String("missing", strings.Join(missing, ",")))
	}

	if *metricsAddr != "" {
		server := startMetricsServer(ctx, logger, *metricsAddr)
		defer shutdownMetricsServer(logger, server)
	}

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize", slog.Any("error", err))
		return 1
	}
	defer a.Close()

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	logger.Debug("command started", slog.String("command", cmd))

	switch cmd {
	case "collect":
		err = runCollect(ctx, a, rest, stdout, stderr)
	case "find":
		err = runFind(ctx, a, rest, false, stdout)
	case "refresh":
		err = runFind(ctx, a, rest, true, stdout)
	default:
		_, _ = fmt.Fprintf(stderr, "unknown command %q\n\n", cmd)
		fs.Usage()
		return 2
	}

	var uerr usageError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &uerr):
		_, _ = fmt.Fprintln(stderr, uerr.Error())
		return 2
	case errors.Is(err, errNotFound):
		_, _ = fmt.Fprintln(stderr, err.Error())
		return 1
	default:
		logger.Error("command failed", slog.String("command", cmd), slog.Any("error", err))
		return 1
	}
}

type usageError string

func (e usageError) Error() string { return string(e) }

func runCollect(ctx context.Context, a *app, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("collect", flag.ContinueOnError)
	fs.SetOutput(stderr)
	places := fs.Bool("places", false, "also collect weather and news for every capital")
	if err := fs.Parse(args); err != nil {
		return usageError("usage: placedigest collect [-places]")
	}

	summary, err := a.Collect(ctx, *places)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(stdout, "countries: %d, currency rates: %s, weather: %d, news: %d\n",
		summary.Countries, summary.RatesDate, summary.Weather, summary.News)
	return err
}

func runFind(ctx context.Context, a *app, args []string, refresh bool, stdout io.Writer) error {
	term := strings.TrimSpace(strings.Join(args, " "))
	if term == "" {
		return usageError("usage: placedigest find|refresh <term>")
	}

	lines, err := a.Report(ctx, term, refresh)
	if err != nil {
		return err
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(stdout, line); err != nil {
			return err
		}
	}
	return nil
}

// initLogger builds the process logger. Logs go to w so stdout carries only reports.
func initLogger(format string, w io.Writer) *slog.Logger {
	logger := logging.NewLoggerWriter(w)
	if format == "text" {
		logger = logging.NewTextLoggerWriter(w)
	}
	slog.SetDefault(logger)
	return logger
}
