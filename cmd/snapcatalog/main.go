package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
)

// Version is reported by the version command
const Version = "v0.1.0"

// Context represents the global context for commands
type Context struct {
	Config  string
	User    string
	Verbose bool
	Quiet   bool

	// Out receives command output. Nil means standard output.
	Out io.Writer
	// Logger receives diagnostics. Nil means a stderr handler built from the flags.
	Logger *slog.Logger
}

func (c *Context) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}

	return c.Out
}

func (c *Context) logger() *slog.Logger {
	if c.Logger == nil {
		c.Logger = newLogger(os.Stderr, c.Verbose, c.Quiet)
	}

	return c.Logger
}

// baseContext returns a context carrying the --user override for audit stamping.
func (c *Context) baseContext() context.Context {
	return withUser(context.Background(), c.User)
}

func newLogger(w io.Writer, verbose, quiet bool) *slog.Logger {
	level := slog.LevelInfo

	switch {
	case quiet:
		level = slog.LevelError
	case verbose:
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// CLI represents the command-line interface
var CLI struct {
	Config  string     `help:"Configuration file path" default:"snapcatalog.yaml"`
	User    string     `help:"User recorded in audit information (overrides audit.user)" env:"SNAPCATALOG_USER"`
	Verbose bool       `help:"Enable verbose output" short:"v"`
	Quiet   bool       `help:"Suppress output" short:"q"`
	Column  ColumnCmd  `cmd:"" help:"Manage catalog columns"`
	Pull    PullCmd    `cmd:"" help:"Pull column definitions from a live database"`
	Import  ImportCmd  `cmd:"" help:"Import column definitions from tbls schema.json"`
	Version VersionCmd `cmd:"" help:"Show version information"`
}

// VersionCmd represents the version command
type VersionCmd struct{}

// Run executes the version command
func (cmd *VersionCmd) Run(ctx *Context) error {
	_, err := fmt.Fprintf(ctx.out(), "SnapCatalog %s\n", Version)
	return err
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("snapcatalog"),
		kong.Description("Column catalog with audit information"),
	)

	appCtx := &Context{
		Config:  CLI.Config,
		User:    CLI.User,
		Verbose: CLI.Verbose,
		Quiet:   CLI.Quiet,
	}

	err := ctx.Run(appCtx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
