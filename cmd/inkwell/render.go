package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"inkwell/internal/markdown"
	"inkwell/internal/watch"
)

// RenderCmd converts one Markdown document to an HTML fragment.
type RenderCmd struct {
	File   string `arg:"" optional:"" default:"-" help:"Markdown file to render; '-' or empty reads stdin."`
	Format string `short:"f" enum:"blog,commonmark" default:"blog" help:"Markdown dialect (blog, commonmark)."`
	Output string `short:"o" help:"Write HTML to this file instead of stdout."`
}

func (r *RenderCmd) Run(_ *Global) error {
	format, err := markdown.ParseFormat(r.Format)
	if err != nil {
		return err
	}

	var src []byte
	if r.File == "-" {
		src, err = io.ReadAll(os.Stdin)
	} else {
		src, err = os.ReadFile(r.File)
	}
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	if r.Output == "" {
		return renderTo(os.Stdout, format, string(src))
	}
	return renderFile(r.Output, format, string(src))
}

// WatchCmd re-renders a Markdown file into an HTML file on every save.
type WatchCmd struct {
	File     string        `arg:"" type:"existingfile" help:"Markdown file to watch."`
	Output   string        `short:"o" required:"" help:"HTML file to write."`
	Format   string        `short:"f" enum:"blog,commonmark" default:"blog" help:"Markdown dialect (blog, commonmark)."`
	Debounce time.Duration `default:"300ms" help:"Quiet period after the last change before rendering."`
}

func (w *WatchCmd) Run(_ *Global) error {
	format, err := markdown.ParseFormat(w.Format)
	if err != nil {
		return err
	}
	if sameFile(w.File, w.Output) {
		return fmt.Errorf("output %s would overwrite the watched file", w.Output)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	slog.Info("watching", "file", w.File, "output", w.Output)
	return watch.Watch(ctx, w.File, w.Debounce, func() error {
		src, err := os.ReadFile(w.File)
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		if err := renderFile(w.Output, format, string(src)); err != nil {
			return err
		}
		slog.Info("rendered", "file", w.File, "output", w.Output)
		return nil
	})
}

// renderTo writes the rendered fragment followed by a newline.
func renderTo(out io.Writer, format markdown.Format, src string) error {
	html, err := markdown.Convert(format, src)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(out, html+"\n"); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// renderFile renders into a temporary file next to path and renames it into
// place, so readers never see a half-written page.
func renderFile(path string, format markdown.Format, src string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := renderTo(tmp, format, src); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod output: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace output: %w", err)
	}
	return nil
}

func sameFile(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}
