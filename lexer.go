package serverconf

import "strings"

// scannedLine is one meaningful physical line of the config file: either a
// full-line comment (tokens nil, comment set) or a directive line split into
// its raw tokens.
type scannedLine struct {
	num     int
	tokens  []string
	comment string
	isCmt   bool
}

// lineScanner walks normalized input one physical line at a time. It is
// cheap to construct, so every traversal starts from a fresh scanner.
type lineScanner struct {
	src  []byte
	i    int
	line int
}

func newLineScanner(src []byte) *lineScanner {
	return &lineScanner{src: src}
}

// next returns the next non-blank line. ok is false at end of input.
func (s *lineScanner) next() (scannedLine, bool) {
	for s.i < len(s.src) {
		start := s.i
		for s.i < len(s.src) && s.src[s.i] != '\n' {
			s.i++
		}
		raw := string(s.src[start:s.i])
		if s.i < len(s.src) {
			s.i++ // consume '\n'
		}
		s.line++

		text := strings.TrimSpace(raw)
		if text == "" {
			continue
		}
		if text[0] == '#' {
			return scannedLine{num: s.line, comment: text, isCmt: true}, true
		}
		return scannedLine{num: s.line, tokens: splitTokens(text)}, true
	}
	return scannedLine{}, false
}

// splitTokens tokenizes the directive portion of a line. Fields are separated
// by runs of plain spaces; a tab is never a separator and stays inside the
// token it touches. An unescaped '#' ends the directive portion, and the
// escape '\#' yields a literal '#' inside a token. Any other byte after a
// backslash is kept verbatim, so regex escapes like '\d' pass through.
func splitTokens(text string) []string {
	var tokens []string
	var tok strings.Builder
	flush := func() {
		if tok.Len() > 0 {
			tokens = append(tokens, tok.String())
			tok.Reset()
		}
	}

	for i := 0; i < len(text); i++ {
		b := text[i]
		switch {
		case b == '\\' && i+1 < len(text) && text[i+1] == '#':
			tok.WriteByte('#')
			i++
		case b == '#':
			flush()
			return tokens
		case b == ' ':
			flush()
		default:
			tok.WriteByte(b)
		}
	}
	flush()
	return tokens
}

// escapeToken is the inverse of the lexer's '\#' handling, used when
// rendering a token back into config syntax.
func escapeToken(s string) string {
	return strings.ReplaceAll(s, "#", `\#`)
}
