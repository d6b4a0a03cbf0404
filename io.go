package serverconf

import "os"

// DefaultPath is where the server looks for its config when no path is
// given on the command line.
const DefaultPath = "/etc/mdchat-server.conf"

// Load reads, parses, and compiles the config at path. Parse and validation
// failures come back as a Diagnostics error; read failures come back as the
// underlying *os.PathError.
func Load(path string) (*Policy, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	p, res := Compile(f)
	if !res.OK {
		return nil, Diagnostics(res.Errors)
	}
	return p, nil
}

// normalizeInput prepares raw file bytes for parsing:
// - strips UTF-8 BOM
// - normalizes CRLF/CR to LF
//
// Unlike canonicalize(), it does not trim trailing whitespace.
func normalizeInput(in []byte) []byte {
	if len(in) >= 3 && in[0] == 0xEF && in[1] == 0xBB && in[2] == 0xBF {
		in = in[3:]
	}

	out := make([]byte, 0, len(in))
	for i := 0; i < len(in); i++ {
		b := in[i]
		if b == '\r' {
			if i+1 < len(in) && in[i+1] == '\n' {
				i++
			}
			out = append(out, '\n')
			continue
		}
		out = append(out, b)
	}
	return out
}

func canonicalize(in []byte) []byte {
	// Deterministic output:
	// - normalize line endings to LF
	// - strip UTF-8 BOM
	// - ensure exactly one trailing newline
	if len(in) >= 3 && in[0] == 0xEF && in[1] == 0xBB && in[2] == 0xBF {
		in = in[3:]
	}

	out := make([]byte, 0, len(in))
	for i := 0; i < len(in); i++ {
		b := in[i]
		if b == '\r' {
			if i+1 < len(in) && in[i+1] == '\n' {
				i++
			}
			out = append(out, '\n')
			continue
		}
		out = append(out, b)
	}

	// Trim trailing whitespace/newlines and add a single newline.
	for len(out) > 0 {
		last := out[len(out)-1]
		if last == '\n' || last == ' ' || last == '\t' {
			out = out[:len(out)-1]
			continue
		}
		break
	}
	out = append(out, '\n')
	return out
}
