package serverconf

import (
	"fmt"
	"net/netip"
	"regexp"
	"strconv"
	"strings"
)

// Parse tokenizes and type-checks input, returning the typed directive
// sequence in file order. Lines are independent, so a bad line is reported
// and skipped rather than aborting the scan; when any line fails the
// returned error is a Diagnostics holding every finding and the File is nil.
//
// An empty or comment-only file parses successfully; it is validation
// (Compile) that rejects a policy with no listen address.
func Parse(input []byte) (*File, error) {
	f := &File{}
	var diags Diagnostics

	sawDirective := false
	sc := newLineScanner(normalizeInput(input))
	for {
		ln, ok := sc.next()
		if !ok {
			break
		}
		if ln.isCmt {
			if !sawDirective {
				f.Preamble = append(f.Preamble, ln.comment)
			}
			continue
		}

		sawDirective = true
		d, derr := parseLine(ln.num, ln.tokens)
		if derr != nil {
			diags = append(diags, *derr)
			continue
		}
		f.Directives = append(f.Directives, d)
	}

	if len(diags) > 0 {
		return nil, diags
	}
	return f, nil
}

func parseLine(num int, tokens []string) (Directive, *Diagnostic) {
	spec, nameLen, ok := resolveDirective(tokens)
	if !ok {
		if tok, found := tabbedToken(tokens); found {
			return Directive{}, errAt(num, KindSyntax, "tab is not a separator (in %q)", tok)
		}
		if isGroupWord(tokens[0]) {
			if len(tokens) == 1 {
				return Directive{}, errAt(num, KindUnknownDirective, "missing %s directive: %s",
					tokens[0], strings.Join(groupSubNames(tokens[0]), " | "))
			}
			return Directive{}, errAt(num, KindUnknownDirective, "unknown %s directive %q", tokens[0], tokens[1])
		}
		return Directive{}, errAt(num, KindUnknownDirective, "unknown directive %q", tokens[0])
	}

	rest := tokens[nameLen:]
	if len(rest) != len(spec.args) {
		noun := "arguments"
		if len(spec.args) == 1 {
			noun = "argument"
		}
		return Directive{}, errAt(num, KindArity, "%s expects %d %s, got %d", spec.name, len(spec.args), noun, len(rest))
	}

	d := Directive{Name: spec.name, Line: num, Args: make([]Arg, 0, len(rest))}
	for i, kind := range spec.args {
		arg, derr := parseArg(spec, kind, rest[i], num)
		if derr != nil {
			return Directive{}, derr
		}
		d.Args = append(d.Args, arg)
	}
	return d, nil
}

// tabbedToken finds a tab inside the tokens that should have formed the
// directive name. Tabs are legal inside arguments (a regex may contain one)
// but can never separate fields, so a tab here means the author used tab
// where a space was required.
func tabbedToken(tokens []string) (string, bool) {
	if strings.ContainsRune(tokens[0], '\t') {
		return tokens[0], true
	}
	if len(tokens) > 1 && isGroupWord(tokens[0]) && strings.ContainsRune(tokens[1], '\t') {
		return tokens[1], true
	}
	return "", false
}

func parseArg(spec *directiveSpec, kind ArgKind, tok string, num int) (Arg, *Diagnostic) {
	switch kind {
	case ArgSockAddr:
		ap, err := netip.ParseAddrPort(tok)
		if err != nil {
			return Arg{}, errAt(num, KindType, "%s: %q is not an ip:port socket address", spec.name, tok)
		}
		// Normalize 4-in-6 mapped addresses so set membership is spelling
		// independent.
		ap = netip.AddrPortFrom(ap.Addr().Unmap(), ap.Port())
		return Arg{Kind: kind, Raw: tok, Sock: ap}, nil

	case ArgIPAddr:
		addr, err := netip.ParseAddr(tok)
		if err != nil {
			return Arg{}, errAt(num, KindType, "%s: %q is not an IP address", spec.name, tok)
		}
		return Arg{Kind: kind, Raw: tok, Addr: addr.Unmap()}, nil

	case ArgInt:
		return parseIntArg(spec, tok, num)

	case ArgPattern:
		re, err := regexp.Compile(tok)
		if err != nil {
			return Arg{}, errAt(num, KindType, "%s: %v", spec.name, err)
		}
		return Arg{Kind: kind, Raw: tok, Pattern: re}, nil

	default: // ArgText
		return Arg{Kind: ArgText, Raw: tok}, nil
	}
}

func parseIntArg(spec *directiveSpec, tok string, num int) (Arg, *Diagnostic) {
	if tok == "nolimit" {
		if !spec.nolimit {
			return Arg{}, errAt(num, KindType, "%s does not accept %q", spec.name, tok)
		}
		return Arg{Kind: ArgInt, Raw: tok, Int: spec.max}, nil
	}

	digits := tok
	neg := strings.HasPrefix(tok, "-")
	if neg {
		digits = tok[1:]
	}
	if digits == "" || !isDigits(digits) {
		return Arg{}, errAt(num, KindType, "%s: %q is not an integer", spec.name, tok)
	}
	n, err := strconv.Atoi(digits)
	if neg || err != nil || n < spec.min || n > spec.max {
		return Arg{}, errAt(num, KindRange, "%s must be between %d and %d, got %s", spec.name, spec.min, spec.max, tok)
	}
	return Arg{Kind: ArgInt, Raw: tok, Int: n}, nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func errAt(line int, kind ErrorKind, format string, args ...any) *Diagnostic {
	return &Diagnostic{Kind: kind, Line: line, Message: fmt.Sprintf(format, args...)}
}
