package app

import (
	"fmt"
	"os"
)

var (
	version   = "0.0.0-dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func Main(args []string) int {
	if len(args) < 2 {
		printHelp()
		return 2
	}

	switch args[1] {
	case "validate":
		return validateCmd(args[2:])
	case "fmt":
		return fmtCmd(args[2:])
	case "diff":
		return diffCmd(args[2:])
	case "query":
		return queryCmd(args[2:])
	case "version":
		return versionCmd(args[2:])
	case "help", "-h", "--help":
		printHelp()
		return 0
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[1])
		printHelp()
		return 2
	}
}

func printHelp() {
	fmt.Fprintln(os.Stdout, "mdchat-conf")
	fmt.Fprintln(os.Stdout, "")
	fmt.Fprintln(os.Stdout, "Usage:")
	fmt.Fprintln(os.Stdout, "  mdchat-conf validate [--config /etc/mdchat-server.conf] [--format json|text] [--watch] [--log-level info]")
	fmt.Fprintln(os.Stdout, "  mdchat-conf fmt [--config /etc/mdchat-server.conf]")
	fmt.Fprintln(os.Stdout, "  mdchat-conf diff [--context N] <old> <new>")
	fmt.Fprintln(os.Stdout, "  mdchat-conf query ip|nickname|message [--config /etc/mdchat-server.conf] <value>...")
	fmt.Fprintln(os.Stdout, "  mdchat-conf version [--long] [--json]")
}
