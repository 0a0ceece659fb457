// render reads a result envelope and prints its render tree as JSON.
// Usage: go run ./cmd/render [-indent] [file]   (reads stdin when file is omitted or "-")
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Talin12/DataSage/internal/diag"
	"github.com/Talin12/DataSage/internal/render"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "render:", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	fs.SetOutput(stderr)
	indent := fs.Bool("indent", false, "indent the output")
	if err := fs.Parse(args); err != nil {
		return err
	}

	in := stdin
	if path := fs.Arg(0); path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("read envelope: %w", err)
	}
	env, err := render.DecodeEnvelope(data)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(stderr, nil))
	tree := render.New(render.WithSink(diag.NewLogSink(logger))).Render(context.Background(), env)

	enc := json.NewEncoder(stdout)
	if *indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(tree)
}
