package serverconf

import (
	"encoding/json"
	"fmt"
)

// ErrorKind classifies a fatal configuration finding.
type ErrorKind string

const (
	// KindSyntax marks a malformed line, e.g. a tab used as a separator.
	KindSyntax ErrorKind = "syntax"
	// KindUnknownDirective marks a name not present in the directive table.
	KindUnknownDirective ErrorKind = "unknown-directive"
	// KindArity marks a recognized directive with the wrong argument count.
	KindArity ErrorKind = "arity"
	// KindType marks an argument that fails to parse as its declared kind.
	KindType ErrorKind = "type"
	// KindRange marks an integer outside the directive's declared bounds.
	KindRange ErrorKind = "range"
	// KindInvariant marks a cross-field violation found by validation.
	KindInvariant ErrorKind = "invariant"
	// KindIO marks an unreadable configuration file.
	KindIO ErrorKind = "io"
)

// Diagnostic is a single fatal finding tied to its source line.
// Line is 1-based; 0 means the finding concerns the file as a whole.
type Diagnostic struct {
	Kind    ErrorKind `json:"kind"`
	Line    int       `json:"line,omitempty"`
	Message string    `json:"message"`
}

func (d Diagnostic) String() string {
	if d.Line > 0 {
		return fmt.Sprintf("line %d: %s: %s", d.Line, d.Kind, d.Message)
	}
	return fmt.Sprintf("%s: %s", d.Kind, d.Message)
}

// Diagnostics is an ordered list of fatal findings. It implements error so
// Parse and Load can hand the full list back through a plain error return.
type Diagnostics []Diagnostic

func (ds Diagnostics) Error() string {
	switch len(ds) {
	case 0:
		return "invalid config"
	case 1:
		return ds[0].String()
	default:
		return fmt.Sprintf("%s (and %d more)", ds[0], len(ds)-1)
	}
}

// ValidationResult is the aggregate outcome of compiling a parsed file.
// Errors holds every fatal finding; Warnings are advisory only and never
// block a policy from being built.
type ValidationResult struct {
	OK       bool         `json:"ok"`
	Errors   []Diagnostic `json:"errors,omitempty"`
	Warnings []string     `json:"warnings,omitempty"`
}

func FormatValidationJSON(res ValidationResult) (string, error) {
	out, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func FormatValidationText(res ValidationResult) string {
	if res.OK {
		if len(res.Warnings) == 0 {
			return "config ok"
		}
		out := fmt.Sprintf("config ok (warnings: %d)", len(res.Warnings))
		for _, w := range res.Warnings {
			out += "\n" + w
		}
		return out
	}
	if len(res.Errors) == 0 {
		return "config invalid"
	}
	out := fmt.Sprintf("config invalid (errors: %d)", len(res.Errors))
	for _, d := range res.Errors {
		out += "\n" + d.String()
	}
	return out
}
