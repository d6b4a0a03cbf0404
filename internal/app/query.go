package app

import (
	"flag"
	"fmt"
	"net/netip"
	"os"

	"github.com/mdchat/serverconf"
)

// queryCmd evaluates values against a compiled policy, printing one
// verdict line per value with the rule that decided it. Exit status is 1
// when any value is rejected (or the config itself is unusable), so the
// command composes into scripts the same way grep does.
func queryCmd(args []string) int {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "missing query subcommand: ip | nickname | message")
		return 2
	}
	kind := args[0]
	switch kind {
	case "ip", "nickname", "message":
	default:
		fmt.Fprintf(os.Stderr, "unknown query subcommand: %s\n", kind)
		return 2
	}

	fs := flag.NewFlagSet("query "+kind, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	configPath := fs.String("config", serverconf.DefaultPath, "path to config file")
	if err := fs.Parse(args[1:]); err != nil {
		return 2
	}
	values := fs.Args()
	if len(values) == 0 {
		fmt.Fprintf(os.Stderr, "usage: mdchat-conf query %s [--config path] <value>...\n", kind)
		return 2
	}

	p, err := serverconf.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 1
	}

	rejectedAny := false
	for _, v := range values {
		var rejected bool
		var reason string
		switch kind {
		case "ip":
			addr, err := netip.ParseAddr(v)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%q is not an IP address\n", v)
				return 2
			}
			rejected, reason = p.ExplainIP(addr)
		case "nickname":
			rejected, reason = p.ExplainNickname(v)
		case "message":
			rejected, reason = p.ExplainMessage(v)
		}

		verdict := "ok"
		if rejected {
			rejectedAny = true
			verdict = "rejected"
			if kind == "ip" {
				verdict = "banned"
			}
		}
		fmt.Fprintf(os.Stdout, "%s: %s (%s)\n", v, verdict, reason)
	}

	if rejectedAny {
		return 1
	}
	return 0
}
