package validation

import (
	"fmt"
	"sort"
	"strings"
)

// Kind classifies a validation failure.
type Kind string

const (
	// KindSchemaError marks a malformed or unsatisfiable schema fragment. It is
	// distinct from value errors: the data may be fine, the constraint is not.
	KindSchemaError          Kind = "SchemaError"
	KindMissingRequiredField Kind = "MissingRequiredField"
	KindTooShort             Kind = "TooShort"
	KindTooLong              Kind = "TooLong"
	KindOutOfRange           Kind = "OutOfRange"
	KindNotAnInteger         Kind = "NotAnInteger"
	KindNotInEnum            Kind = "NotInEnum"
	KindPatternMismatch      Kind = "PatternMismatch"
	KindTypeMismatch         Kind = "TypeMismatch"
	KindTooFewItems          Kind = "TooFewItems"
	KindTooManyItems         Kind = "TooManyItems"
)

// Issue is a single field-level failure. Path uses dotted notation
// ("author.email", "tags.1"); Params carries the bound that was violated so
// renderers can localise messages.
type Issue struct {
	Path    string         `json:"path"`
	Kind    Kind           `json:"kind"`
	Message string         `json:"message"`
	Params  map[string]any `json:"params,omitempty"`
}

// Pointer renders Path as a JSON pointer into the value tree.
func (i Issue) Pointer() string {
	if i.Path == "" {
		return ""
	}
	segments := strings.Split(i.Path, ".")
	for idx, segment := range segments {
		segment = strings.ReplaceAll(segment, "~", "~0")
		segments[idx] = strings.ReplaceAll(segment, "/", "~1")
	}
	return "/" + strings.Join(segments, "/")
}

// Issues is a collection of field failures that implements error.
type Issues []Issue

// Error summarises the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	limit := len(iss)
	if limit > maxShown {
		limit = maxShown
	}
	for idx := 0; idx < limit; idx++ {
		if idx > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(b, "%s at %s", iss[idx].Kind, iss[idx].Path)
	}
	if len(iss) > limit {
		fmt.Fprintf(b, "; ... (total %d)", len(iss))
	}
	return b.String()
}

// Result is the aggregate outcome of validating a value tree. Errors holds one
// issue per failing path; Valid is true iff Errors is empty.
type Result struct {
	Valid  bool             `json:"valid"`
	Errors map[string]Issue `json:"errors,omitempty"`
}

// Kind returns the failure kind recorded for path, or "" when the path passed.
func (r Result) Kind(path string) Kind {
	if issue, ok := r.Errors[path]; ok {
		return issue.Kind
	}
	return ""
}

// Issues returns the recorded issues sorted by path.
func (r Result) Issues() Issues {
	if len(r.Errors) == 0 {
		return nil
	}
	out := make(Issues, 0, len(r.Errors))
	for _, issue := range r.Errors {
		out = append(out, issue)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Err returns the issues as an error, or nil when the value tree is valid.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	return r.Issues()
}

// Messages maps each failing path to its message, the shape renderers use for
// inline errors.
func (r Result) Messages() map[string][]string {
	if len(r.Errors) == 0 {
		return nil
	}
	out := make(map[string][]string, len(r.Errors))
	for path, issue := range r.Errors {
		out[path] = []string{issue.Message}
	}
	return out
}
