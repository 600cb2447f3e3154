// Command inkwell renders blog-dialect Markdown. It runs the preview and
// publishing server (serve), converts single files (render) and re-renders a
// file whenever it changes (watch).
package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("inkwell"),
		kong.Description("Markdown preview and publishing service."),
		kong.UsageOnError(),
		kong.Vars{"version": version},
	)
	if err := ctx.Run(&Global{}); err != nil {
		slog.Error("command failed", "command", ctx.Command(), "error", err)
		os.Exit(1)
	}
}
