package serverconf

import "strings"

// Domain ceilings for the two moderated length bounds. "nolimit" and the
// unset defaults both map to the ceiling.
const (
	nicknameCeiling = 255
	messageCeiling  = 65535
)

type foldMode int

const (
	foldAccumulate foldMode = iota
	foldLastWins
)

// directiveSpec is one row of the static directive table.
type directiveSpec struct {
	name string
	args []ArgKind
	fold foldMode

	// Integer bounds, meaningful only when args contains ArgInt.
	min, max int
	// nolimit permits the literal "nolimit" in place of an integer.
	nolimit bool
}

var directiveTable = []directiveSpec{
	{name: "listen", args: []ArgKind{ArgSockAddr}, fold: foldAccumulate},
	{name: "ip ban", args: []ArgKind{ArgIPAddr}, fold: foldAccumulate},
	{name: "ip allow", args: []ArgKind{ArgIPAddr}, fold: foldAccumulate},
	{name: "ip ban-range", args: []ArgKind{ArgIPAddr, ArgIPAddr}, fold: foldAccumulate},
	{name: "nickname ban", args: []ArgKind{ArgPattern}, fold: foldAccumulate},
	{name: "nickname allow", args: []ArgKind{ArgText}, fold: foldAccumulate},
	{name: "nickname max-length", args: []ArgKind{ArgInt}, fold: foldLastWins, min: 1, max: nicknameCeiling, nolimit: true},
	{name: "nickname min-length", args: []ArgKind{ArgInt}, fold: foldLastWins, min: 1, max: nicknameCeiling},
	{name: "message ban", args: []ArgKind{ArgPattern}, fold: foldAccumulate},
	{name: "message max-length", args: []ArgKind{ArgInt}, fold: foldLastWins, min: 1, max: messageCeiling, nolimit: true},
	{name: "message min-length", args: []ArgKind{ArgInt}, fold: foldLastWins, min: 1, max: messageCeiling},
}

var directiveIndex = func() map[string]*directiveSpec {
	m := make(map[string]*directiveSpec, len(directiveTable))
	for i := range directiveTable {
		m[directiveTable[i].name] = &directiveTable[i]
	}
	return m
}()

// resolveDirective matches the leading tokens of a line against the table,
// longest name first, and reports how many tokens the name consumed.
func resolveDirective(tokens []string) (*directiveSpec, int, bool) {
	if len(tokens) >= 2 {
		if spec, ok := directiveIndex[tokens[0]+" "+tokens[1]]; ok {
			return spec, 2, true
		}
	}
	if spec, ok := directiveIndex[tokens[0]]; ok {
		return spec, 1, true
	}
	return nil, 0, false
}

// isGroupWord reports whether word introduces multi-word directives
// ("ip", "nickname", "message") without being a directive on its own.
func isGroupWord(word string) bool {
	prefix := word + " "
	for i := range directiveTable {
		if strings.HasPrefix(directiveTable[i].name, prefix) {
			return true
		}
	}
	return false
}

// groupSubNames lists the sub-directives of a group word, in table order.
func groupSubNames(word string) []string {
	prefix := word + " "
	var subs []string
	for i := range directiveTable {
		if strings.HasPrefix(directiveTable[i].name, prefix) {
			subs = append(subs, strings.TrimPrefix(directiveTable[i].name, prefix))
		}
	}
	return subs
}
