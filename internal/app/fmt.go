package app

import (
	"flag"
	"fmt"
	"os"

	"github.com/mdchat/serverconf"
)

func fmtCmd(args []string) int {
	fs := flag.NewFlagSet("fmt", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	configPath := fs.String("config", serverconf.DefaultPath, "path to config file")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	data, err := os.ReadFile(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 1
	}

	f, err := serverconf.Parse(data)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 1
	}

	out, err := serverconf.Format(f)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 1
	}

	_, _ = os.Stdout.Write(out)
	return 0
}
