package app

import (
	"flag"
	"fmt"
	"os"

	"github.com/mdchat/serverconf"
)

// diffCmd compares two config files in canonical form. Exit status 0 means
// semantically identical, 1 means they differ, 2 means either file could
// not be read or parsed.
func diffCmd(args []string) int {
	fs := flag.NewFlagSet("diff", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	contextLines := fs.Int("context", 3, "number of unified diff context lines")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	posArgs := fs.Args()
	if len(posArgs) != 2 {
		fmt.Fprintln(os.Stderr, "usage: mdchat-conf diff [--context N] <old> <new>")
		return 2
	}

	oldPath, newPath := posArgs[0], posArgs[1]

	oldData, err := os.ReadFile(oldPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 2
	}
	newData, err := os.ReadFile(newPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 2
	}

	diff, err := serverconf.FormatDiff(oldData, newData, *contextLines, oldPath, newPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 2
	}

	if diff == "" {
		return 0
	}

	fmt.Fprintln(os.Stdout, diff)
	return 1
}
