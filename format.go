package serverconf

import (
	"bytes"
	"errors"
	"strconv"
	"strings"
)

// Format returns a deterministic representation of the parsed file.
//
// The formatter does not expand defaults; it formats only the directives
// present in the input. The preamble comment block is kept verbatim, and
// each directive is rendered with canonical argument text (addresses via
// netip, integers without leading zeros, literal '#' re-escaped).
func Format(f *File) ([]byte, error) {
	if f == nil {
		return nil, errors.New("nil file")
	}
	return canonicalize(format(f)), nil
}

func format(f *File) []byte {
	var b bytes.Buffer

	for _, c := range f.Preamble {
		line := strings.TrimRight(c, "\r\n")
		if line == "" {
			continue
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	if len(f.Preamble) > 0 && len(f.Directives) > 0 {
		b.WriteByte('\n')
	}

	for _, d := range f.Directives {
		b.WriteString(d.Name)
		for _, a := range d.Args {
			b.WriteByte(' ')
			b.WriteString(formatArg(a))
		}
		b.WriteByte('\n')
	}

	return b.Bytes()
}

func formatArg(a Arg) string {
	switch a.Kind {
	case ArgSockAddr:
		return a.Sock.String()
	case ArgIPAddr:
		return a.Addr.String()
	case ArgInt:
		if a.Raw == "nolimit" {
			return "nolimit"
		}
		return strconv.Itoa(a.Int)
	default:
		return escapeToken(a.Raw)
	}
}
