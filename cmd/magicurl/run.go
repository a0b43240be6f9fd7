package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dannyswat/magicurl"
)

// run executes one invocation. args excludes the program name.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	f, positional, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	level := slog.LevelWarn
	if f.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := loadConfig(f)
	if err != nil {
		return err
	}

	text, err := readInput(positional, stdin)
	if err != nil {
		return err
	}

	doc := magicurl.NewDocument("")
	magicurl.New(doc, cfg, magicurl.WithLogger(logger))

	switch f.mode {
	case modeType:
		for _, r := range text {
			if err := doc.InsertText(string(r)); err != nil {
				return err
			}
		}
	default:
		if err := doc.PasteText(text); err != nil {
			return err
		}
	}
	logger.Debug("input processed", "mode", f.mode, "length", doc.Length())

	return writeOutput(stdout, doc, f.format)
}

func loadConfig(f *cliFlags) (magicurl.Config, error) {
	cfg := magicurl.DefaultConfig()
	if f.config != "" {
		o, err := magicurl.LoadOptions(f.config)
		if err != nil {
			return cfg, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
		cfg = magicurl.Merge(cfg, o)
	}
	return magicurl.Merge(cfg, magicurl.Options{NormalizeURLOptions: &f.normalize}), nil
}

func readInput(positional []string, stdin io.Reader) (string, error) {
	var (
		data []byte
		err  error
	)
	if len(positional) == 1 && positional[0] != "-" {
		data, err = os.ReadFile(positional[0]) // #nosec G304 -- path is supplied by the operator
	} else {
		data, err = io.ReadAll(stdin)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrReadInput, err)
	}
	return string(data), nil
}

func writeOutput(w io.Writer, doc *magicurl.Document, format string) error {
	var out []byte
	switch format {
	case formatHTML:
		s, err := doc.RenderHTML()
		if err != nil {
			return fmt.Errorf("rendering HTML: %w", err)
		}
		out = []byte(s)
	default:
		b, err := json.Marshal(doc.Contents())
		if err != nil {
			return fmt.Errorf("encoding delta: %w", err)
		}
		out = b
	}
	out = append(out, '\n')
	if _, err := w.Write(out); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}
	return nil
}
