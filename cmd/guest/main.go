// Package main implements the greenleaf guest CLI: decks, cards, study
// sessions and streaks kept in a local SQLite file with no account and no
// network access.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/greenleaf-study/greenleaf/internal/platform/logger"
	"github.com/greenleaf-study/greenleaf/internal/platform/sqlite"
	flag "github.com/spf13/pflag"
)

const usage = `Usage: guest [flags] <command> [args]

Commands:
  deck add <name> [--description text]   create a deck
  deck list                              list decks with due counts
  card add <deck> <front> <back>         add a card to a deck
  import <deck> <file>                   import cards from .csv or .xlsx
  study <deck> [--limit n]               review due cards interactively
  streak                                 show the study streak and garden

Flags:
`

// EnvDBPath overrides the default database location.
const EnvDBPath = "GREENLEAF_GUEST_DB"

type cliOptions struct {
	dbPath      string
	logLevel    string
	description string
	limit       int
	maxRows     int
	args        []string
}

var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes one command and returns the process exit code.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, fs, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(stderr, err)
		return 2
	}
	if len(opts.args) == 0 {
		printUsage(stderr, fs)
		return 2
	}

	log, err := logger.Setup(logger.LoggerConfig{Level: opts.logLevel, Output: stderr})
	if err != nil {
		fmt.Fprintf(stderr, "failed to set up logger: %v\n", err)
		return 1
	}
	log = log.With(slog.String("component", "guest"))

	if dir := filepath.Dir(opts.dbPath); opts.dbPath != ":memory:" && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fmt.Fprintf(stderr, "failed to create %s: %v\n", dir, err)
			return 1
		}
	}

	st, err := sqlite.Open(ctx, opts.dbPath, log)
	if err != nil {
		log.Error("failed to open guest database", slog.String("error", err.Error()))
		fmt.Fprintf(stderr, "cannot open %s: %v\n", opts.dbPath, err)
		return 1
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Error("failed to close guest database", slog.String("error", err.Error()))
		}
	}()

	c := newCLI(st, stdin, stdout, log)
	c.maxRows = opts.maxRows

	if err := c.dispatch(ctx, opts); err != nil {
		if errors.Is(err, errUsage) {
			printUsage(stderr, fs)
			return 2
		}
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func parseFlags(args []string, stderr io.Writer) (*cliOptions, *flag.FlagSet, error) {
	opts := &cliOptions{}
	fs := flag.NewFlagSet("guest", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { printUsage(stderr, fs) }

	fs.StringVar(&opts.dbPath, "db", defaultDBPath(), "path of the guest database file")
	fs.StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	fs.StringVarP(&opts.description, "description", "d", "", "deck description for 'deck add'")
	fs.IntVarP(&opts.limit, "limit", "n", 20, "maximum cards per study session")
	fs.IntVar(&opts.maxRows, "max-rows", 1000, "maximum rows accepted by 'import'")

	if err := fs.Parse(args); err != nil {
		return nil, fs, err
	}
	if opts.limit <= 0 {
		return nil, fs, fmt.Errorf("--limit must be positive")
	}
	opts.args = fs.Args()
	return opts, fs, nil
}

func printUsage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprint(w, usage)
	fs.PrintDefaults()
}

func defaultDBPath() string {
	if p := os.Getenv(EnvDBPath); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "greenleaf-guest.db"
	}
	return filepath.Join(home, ".greenleaf", "guest.db")
}
