package main

import (
	"errors"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/dannyswat/magicurl"
)

// Exit codes for the magicurl CLI.
const (
	ExitSuccess = 0 // Input processed
	ExitUsage   = 1 // Invalid flags or arguments, or an unexpected error
	ExitConfig  = 2 // Options file or pattern problems
	ExitIO      = 3 // Input could not be read or output could not be written
)

// CLI sentinel errors.
var (
	ErrUsage       = errors.New("invalid usage")
	ErrLoadConfig  = errors.New("failed to load options")
	ErrReadInput   = errors.New("failed to read input")
	ErrWriteOutput = errors.New("failed to write output")
)

// exitCodeFor returns the exit code for an error returned by run.
// Config errors are checked first: a missing options file is a config problem,
// not an input problem.
func exitCodeFor(err error) int {
	if err == nil || errors.Is(err, flag.ErrHelp) {
		return ExitSuccess
	}

	if errors.Is(err, ErrLoadConfig) ||
		errors.Is(err, magicurl.ErrConfigParse) ||
		errors.Is(err, magicurl.ErrPattern) {
		return ExitConfig
	}

	if errors.Is(err, ErrReadInput) ||
		errors.Is(err, ErrWriteOutput) ||
		errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) {
		return ExitIO
	}

	return ExitUsage
}
