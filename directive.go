package serverconf

import (
	"net/netip"
	"regexp"
)

// File is the parsed, user-authored configuration file.
type File struct {
	// Preamble holds leading comment lines (including the leading '#').
	// It is preserved by `mdchat-conf fmt` to avoid losing file headers.
	Preamble []string

	// Directives are in file order. Order matters for last-wins scalar
	// directives and is preserved for everything else.
	Directives []Directive
}

// Directive is one typed configuration line.
type Directive struct {
	// Name is the canonical directive name, e.g. "ip ban-range".
	Name string
	// Line is the 1-based source line.
	Line int
	// Args are the typed arguments in the order written.
	Args []Arg
}

// ArgKind discriminates the closed set of argument types a directive can
// declare. Exactly one payload field of Arg is meaningful per kind.
type ArgKind int

const (
	// ArgSockAddr is an ip:port / [ipv6]:port listen endpoint (Sock).
	ArgSockAddr ArgKind = iota
	// ArgIPAddr is a bare IPv4 or IPv6 address (Addr).
	ArgIPAddr
	// ArgInt is a bounded integer, or "nolimit" mapped to the ceiling (Int).
	ArgInt
	// ArgPattern is an eagerly compiled regular expression (Pattern).
	ArgPattern
	// ArgText is a free string taken verbatim (Raw).
	ArgText
)

// Arg is one parsed directive argument. Raw always holds the source token
// after comment-escape processing, so diagnostics and the formatter can
// refer back to what the author wrote.
type Arg struct {
	Kind ArgKind
	Raw  string

	Sock    netip.AddrPort
	Addr    netip.Addr
	Int     int
	Pattern *regexp.Regexp
}
