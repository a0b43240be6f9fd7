package main

import (
	"fmt"
	"io"

	flag "github.com/spf13/pflag"

	"github.com/dannyswat/magicurl"
)

const (
	modePaste = "paste"
	modeType  = "type"

	formatDelta = "delta"
	formatHTML  = "html"
)

// cliFlags holds the parsed command line.
type cliFlags struct {
	config  string
	mode    string
	format  string
	verbose bool

	// Only set when the flag was given, so a config file value survives.
	normalize magicurl.NormalizeURLOverrides
}

// parseFlags parses args (without the program name) and returns the positional args.
func parseFlags(args []string, stderr io.Writer) (*cliFlags, []string, error) {
	fs := flag.NewFlagSet("magicurl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	f := &cliFlags{}

	var stripFragment, stripWWW bool
	fs.StringVarP(&f.config, "config", "c", "", "YAML options file")
	fs.StringVarP(&f.mode, "mode", "m", modePaste, "how input reaches the editor: paste, type")
	fs.StringVarP(&f.format, "format", "f", formatDelta, "output format: delta, html")
	fs.BoolVar(&stripFragment, "strip-fragment", false, "drop #fragments from link values")
	fs.BoolVar(&stripWWW, "strip-www", false, "drop a leading www. from link hosts")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "log every rewrite to stderr")

	fs.Usage = func() { printUsage(stderr, fs) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	if fs.Changed("strip-fragment") {
		f.normalize.StripFragment = &stripFragment
	}
	if fs.Changed("strip-www") {
		f.normalize.StripWWW = &stripWWW
	}

	switch f.mode {
	case modePaste, modeType:
	default:
		return nil, nil, fmt.Errorf("%w: unknown mode %q (want %s or %s)", ErrUsage, f.mode, modePaste, modeType)
	}
	switch f.format {
	case formatDelta, formatHTML:
	default:
		return nil, nil, fmt.Errorf("%w: unknown format %q (want %s or %s)", ErrUsage, f.format, formatDelta, formatHTML)
	}
	if fs.NArg() > 1 {
		return nil, nil, fmt.Errorf("%w: expected at most one input file, got %d", ErrUsage, fs.NArg())
	}

	return f, fs.Args(), nil
}

func printUsage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintln(w, "Usage: magicurl [flags] [file]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Feeds text (stdin when no file is given) to an editor document and prints")
	fmt.Fprintln(w, "the result with URLs linked and video links embedded.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprint(w, fs.FlagUsages())
}
