package serverconf

import (
	"errors"
	"fmt"
	"net/netip"
	"slices"
)

// Compile folds the directive sequence into a Policy and validates it,
// reporting every violation found rather than stopping at the first. On any
// error the policy is nil; the caller must treat that as fatal and not start
// serving.
func Compile(f *File) (*Policy, ValidationResult) {
	var res ValidationResult
	if f == nil {
		res.Errors = append(res.Errors, Diagnostic{Kind: KindInvariant, Message: "nil file"})
		return nil, res
	}

	b := newBuilder()
	for _, d := range f.Directives {
		b.apply(d, &res)
	}
	b.validate(&res)

	res.OK = len(res.Errors) == 0
	if !res.OK {
		return nil, res
	}
	return b.policy(), res
}

// Validate checks whether the file builds a usable policy. The returned
// error, when non-nil, is a Diagnostics carrying all findings.
func Validate(f *File) error {
	_, res := Compile(f)
	if res.OK {
		return nil
	}
	if len(res.Errors) == 0 {
		return errors.New("invalid config")
	}
	return Diagnostics(res.Errors)
}

func ValidateWithResult(f *File) ValidationResult {
	_, res := Compile(f)
	return res
}

// scalar tracks a last-wins integer together with the line that set it.
type scalar struct {
	value int
	line  int
	set   bool
}

func (s scalar) or(def int) int {
	if s.set {
		return s.value
	}
	return def
}

type builder struct {
	// Each set maps an entry to the first line that added it, so duplicate
	// insertions can warn with both locations.
	listen  map[netip.AddrPort]int
	banned  map[netip.Addr]int
	allowed map[netip.Addr]int
	ranges  []AddrRange

	nickBans  []patternRule
	nickAllow map[string]int
	nickMin   scalar
	nickMax   scalar

	msgBans []patternRule
	msgMin  scalar
	msgMax  scalar
}

func newBuilder() *builder {
	return &builder{
		listen:    make(map[netip.AddrPort]int),
		banned:    make(map[netip.Addr]int),
		allowed:   make(map[netip.Addr]int),
		nickAllow: make(map[string]int),
	}
}

func (b *builder) apply(d Directive, res *ValidationResult) {
	switch d.Name {
	case "listen":
		ap := d.Args[0].Sock
		if first, ok := b.listen[ap]; ok {
			res.Warnings = append(res.Warnings, fmt.Sprintf("line %d: duplicate listen %s (first on line %d)", d.Line, ap, first))
			return
		}
		b.listen[ap] = d.Line
	case "ip ban":
		addAddr(b.banned, d, res)
	case "ip allow":
		addAddr(b.allowed, d, res)
	case "ip ban-range":
		b.ranges = append(b.ranges, AddrRange{From: d.Args[0].Addr, To: d.Args[1].Addr, line: d.Line})
	case "nickname ban":
		b.nickBans = append(b.nickBans, patternRuleFrom(d))
	case "nickname allow":
		name := d.Args[0].Raw
		if first, ok := b.nickAllow[name]; ok {
			res.Warnings = append(res.Warnings, fmt.Sprintf("line %d: duplicate nickname allow %s (first on line %d)", d.Line, name, first))
			return
		}
		b.nickAllow[name] = d.Line
	case "nickname min-length":
		setScalar(&b.nickMin, d, res)
	case "nickname max-length":
		setScalar(&b.nickMax, d, res)
	case "message ban":
		b.msgBans = append(b.msgBans, patternRuleFrom(d))
	case "message min-length":
		setScalar(&b.msgMin, d, res)
	case "message max-length":
		setScalar(&b.msgMax, d, res)
	default:
		// Only reachable through a hand-built File; Parse never emits names
		// outside the table.
		res.Errors = append(res.Errors, Diagnostic{Kind: KindUnknownDirective, Line: d.Line, Message: fmt.Sprintf("unknown directive %q", d.Name)})
	}
}

func addAddr(set map[netip.Addr]int, d Directive, res *ValidationResult) {
	addr := d.Args[0].Addr
	if first, ok := set[addr]; ok {
		res.Warnings = append(res.Warnings, fmt.Sprintf("line %d: duplicate %s %s (first on line %d)", d.Line, d.Name, addr, first))
		return
	}
	set[addr] = d.Line
}

func setScalar(s *scalar, d Directive, res *ValidationResult) {
	if s.set {
		res.Warnings = append(res.Warnings, fmt.Sprintf("line %d: %s %s overrides %d (line %d)", d.Line, d.Name, d.Args[0].Raw, s.value, s.line))
	}
	s.value = d.Args[0].Int
	s.line = d.Line
	s.set = true
}

func patternRuleFrom(d Directive) patternRule {
	return patternRule{re: d.Args[0].Pattern, src: d.Args[0].Raw, line: d.Line}
}

func (b *builder) validate(res *ValidationResult) {
	if len(b.listen) == 0 {
		res.Errors = append(res.Errors, Diagnostic{Kind: KindInvariant, Message: "no listen address configured"})
	}

	validateBounds("nickname", b.nickMin, b.nickMax, nicknameCeiling, res)
	validateBounds("message", b.msgMin, b.msgMax, messageCeiling, res)

	for _, r := range b.ranges {
		if r.From.Is4() != r.To.Is4() {
			res.Errors = append(res.Errors, Diagnostic{Kind: KindInvariant, Line: r.line, Message: fmt.Sprintf("ip ban-range %s and %s are in different address families", r.From, r.To)})
			continue
		}
		if r.From.Compare(r.To) > 0 {
			res.Errors = append(res.Errors, Diagnostic{Kind: KindInvariant, Line: r.line, Message: fmt.Sprintf("ip ban-range from %s exceeds to %s", r.From, r.To)})
		}
	}
}

// validateBounds checks min <= max for one length pair. The per-directive
// 1..ceiling bounds are already enforced at parse time, so a conflict can
// only arise when both scalars were set explicitly.
func validateBounds(kind string, min, max scalar, ceiling int, res *ValidationResult) {
	minV := min.or(1)
	maxV := max.or(ceiling)
	if minV > maxV {
		res.Errors = append(res.Errors, Diagnostic{
			Kind:    KindInvariant,
			Line:    min.line,
			Message: fmt.Sprintf("%s min-length %d (line %d) exceeds max-length %d (line %d)", kind, minV, min.line, maxV, max.line),
		})
	}
}

func (b *builder) policy() *Policy {
	listen := make([]netip.AddrPort, 0, len(b.listen))
	for ap := range b.listen {
		listen = append(listen, ap)
	}
	slices.SortFunc(listen, func(a, c netip.AddrPort) int { return a.Compare(c) })

	return &Policy{
		listen: listen,
		ip: ipPolicy{
			banned:  b.banned,
			allowed: b.allowed,
			ranges:  b.ranges,
		},
		nickname: nicknamePolicy{
			bans:  b.nickBans,
			allow: b.nickAllow,
			min:   b.nickMin.or(1),
			max:   b.nickMax.or(nicknameCeiling),
		},
		message: messagePolicy{
			bans: b.msgBans,
			min:  b.msgMin.or(1),
			max:  b.msgMax.or(messageCeiling),
		},
	}
}
