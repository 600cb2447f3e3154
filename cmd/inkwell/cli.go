package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
)

// Global carries state shared by all subcommands.
type Global struct{}

// CLI is the command-line definition.
type CLI struct {
	Verbose bool             `short:"v" help:"Enable debug logging."`
	Version kong.VersionFlag `name:"version" help:"Show version and exit."`

	Serve  ServeCmd  `cmd:"" help:"Run the preview and publishing HTTP server."`
	Render RenderCmd `cmd:"" help:"Render a Markdown file (or stdin) to HTML."`
	Watch  WatchCmd  `cmd:"" help:"Re-render a Markdown file every time it changes."`
}

// AfterApply runs after flag parsing and installs the default logger. Logs
// go to stderr so rendered HTML on stdout stays clean. Debug level is used
// with --verbose or in development.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose || os.Getenv("APP_ENV") == "development" {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}
