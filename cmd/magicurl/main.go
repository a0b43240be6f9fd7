// Command magicurl links URLs and embeds video links in text, the way an
// editor does it while the user pastes or types.
package main

import (
	"errors"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"
)

func main() {
	err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	if err != nil && !errors.Is(err, flag.ErrHelp) {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(exitCodeFor(err))
}
