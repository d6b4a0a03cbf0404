package serverconf

import (
	"fmt"
	"net/netip"
	"regexp"
)

// Policy is the immutable result of compiling a configuration file. It is
// built exactly once, never mutated afterwards, and therefore safe for any
// number of concurrent readers without locking.
//
// All queries are pure predicates: once a Policy exists they cannot fail.
// Lengths are measured in bytes.
type Policy struct {
	listen []netip.AddrPort

	ip       ipPolicy
	nickname nicknamePolicy
	message  messagePolicy
}

// AddrRange is an inclusive IP range. Both endpoints share one address
// family; Compile rejects mixed-family ranges before a Policy is built.
type AddrRange struct {
	From, To netip.Addr

	line int
}

// Contains reports whether addr lies inside the range, endpoints included.
// addr must be in its unmapped form (see netip.Addr.Unmap).
func (r AddrRange) Contains(addr netip.Addr) bool {
	if addr.Is4() != r.From.Is4() {
		return false
	}
	return addr.Compare(r.From) >= 0 && addr.Compare(r.To) <= 0
}

func (r AddrRange) String() string {
	return fmt.Sprintf("%s %s", r.From, r.To)
}

type ipPolicy struct {
	// banned and allowed map each address to the first line that added it.
	banned  map[netip.Addr]int
	allowed map[netip.Addr]int
	ranges  []AddrRange
}

type nicknamePolicy struct {
	bans  []patternRule
	allow map[string]int
	min   int
	max   int
}

type messagePolicy struct {
	bans []patternRule
	min  int
	max  int
}

// patternRule is a ban pattern compiled once at parse time; queries only
// ever match, never recompile.
type patternRule struct {
	re   *regexp.Regexp
	src  string
	line int
}

// IsIPBanned reports whether addr must be refused a connection: it is banned
// individually or by a range, and not on the allow list. The allow list wins
// unconditionally.
func (p *Policy) IsIPBanned(addr netip.Addr) bool {
	addr = addr.Unmap()
	if _, ok := p.ip.allowed[addr]; ok {
		return false
	}
	if _, ok := p.ip.banned[addr]; ok {
		return true
	}
	for _, r := range p.ip.ranges {
		if r.Contains(addr) {
			return true
		}
	}
	return false
}

// IsNicknameRejected reports whether name must be refused. An exact entry on
// the allow list always passes, even when the name is out of bounds or
// matches a ban pattern.
func (p *Policy) IsNicknameRejected(name string) bool {
	if _, ok := p.nickname.allow[name]; ok {
		return false
	}
	if len(name) < p.nickname.min || len(name) > p.nickname.max {
		return true
	}
	for _, r := range p.nickname.bans {
		if r.re.MatchString(name) {
			return true
		}
	}
	return false
}

// IsMessageRejected reports whether text must be refused: its byte length is
// out of bounds or it matches a ban pattern.
func (p *Policy) IsMessageRejected(text string) bool {
	if len(text) < p.message.min || len(text) > p.message.max {
		return true
	}
	for _, r := range p.message.bans {
		if r.re.MatchString(text) {
			return true
		}
	}
	return false
}

// ListenAddrs returns the socket addresses the server should bind, sorted.
// The returned slice is a fresh copy.
func (p *Policy) ListenAddrs() []netip.AddrPort {
	out := make([]netip.AddrPort, len(p.listen))
	copy(out, p.listen)
	return out
}

// NicknameLengthBounds returns the effective nickname byte-length bounds
// after defaults (min 1, max 255).
func (p *Policy) NicknameLengthBounds() (min, max int) {
	return p.nickname.min, p.nickname.max
}

// MessageLengthBounds returns the effective message byte-length bounds after
// defaults (min 1, max 65535).
func (p *Policy) MessageLengthBounds() (min, max int) {
	return p.message.min, p.message.max
}

// ExplainIP is IsIPBanned plus a stable human-readable reason naming the
// rule that decided, for diagnostics and the `mdchat-conf query` command.
// The boolean always agrees with IsIPBanned.
func (p *Policy) ExplainIP(addr netip.Addr) (banned bool, reason string) {
	addr = addr.Unmap()
	if line, ok := p.ip.allowed[addr]; ok {
		return false, fmt.Sprintf("on the allow list (ip allow %s, line %d)", addr, line)
	}
	if line, ok := p.ip.banned[addr]; ok {
		return true, fmt.Sprintf("banned (ip ban %s, line %d)", addr, line)
	}
	for _, r := range p.ip.ranges {
		if r.Contains(addr) {
			return true, fmt.Sprintf("banned (ip ban-range %s, line %d)", r, r.line)
		}
	}
	return false, "no matching rule"
}

// ExplainNickname is IsNicknameRejected plus the deciding reason.
func (p *Policy) ExplainNickname(name string) (rejected bool, reason string) {
	if line, ok := p.nickname.allow[name]; ok {
		return false, fmt.Sprintf("on the allow list (nickname allow, line %d)", line)
	}
	if len(name) < p.nickname.min {
		return true, fmt.Sprintf("length %d is below min-length %d", len(name), p.nickname.min)
	}
	if len(name) > p.nickname.max {
		return true, fmt.Sprintf("length %d exceeds max-length %d", len(name), p.nickname.max)
	}
	for _, r := range p.nickname.bans {
		if r.re.MatchString(name) {
			return true, fmt.Sprintf("matches ban pattern %q (line %d)", r.src, r.line)
		}
	}
	return false, "no matching rule"
}

// ExplainMessage is IsMessageRejected plus the deciding reason.
func (p *Policy) ExplainMessage(text string) (rejected bool, reason string) {
	if len(text) < p.message.min {
		return true, fmt.Sprintf("length %d is below min-length %d", len(text), p.message.min)
	}
	if len(text) > p.message.max {
		return true, fmt.Sprintf("length %d exceeds max-length %d", len(text), p.message.max)
	}
	for _, r := range p.message.bans {
		if r.re.MatchString(text) {
			return true, fmt.Sprintf("matches ban pattern %q (line %d)", r.src, r.line)
		}
	}
	return false, "no matching rule"
}
