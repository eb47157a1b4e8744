package prompt

import (
	"strings"

	"github.com/goliatone/go-dynform/internal/values"
)

// State holds the answers collected so far, keyed by dotted path. Prefilled
// values seed prompt defaults.
type State struct {
	values map[string]any
}

// NewState seeds the state with a deep copy of prefill.
func NewState(prefill map[string]any) *State {
	copied, _ := deepCopy(prefill).(map[string]any)
	if copied == nil {
		copied = make(map[string]any)
	}
	return &State{values: copied}
}

// Values returns the collected value tree.
func (s *State) Values() map[string]any {
	if s == nil {
		return nil
	}
	return s.values
}

// GetValue resolves a dotted path.
func (s *State) GetValue(path string) (any, bool) {
	if s == nil || path == "" {
		return nil, false
	}
	return values.Lookup(s.values, path)
}

// SetValue writes value at a dotted path, creating intermediate objects.
func (s *State) SetValue(path string, value any) {
	segments := strings.Split(path, ".")
	node := s.values
	for _, segment := range segments[:len(segments)-1] {
		child, ok := node[segment].(map[string]any)
		if !ok {
			child = make(map[string]any)
			node[segment] = child
		}
		node = child
	}
	node[segments[len(segments)-1]] = value
}

// Delete removes the value at a dotted path.
func (s *State) Delete(path string) {
	segments := strings.Split(path, ".")
	node := s.values
	for _, segment := range segments[:len(segments)-1] {
		child, ok := node[segment].(map[string]any)
		if !ok {
			return
		}
		node = child
	}
	delete(node, segments[len(segments)-1])
}

func deepCopy(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		clone := make(map[string]any, len(typed))
		for k, v := range typed {
			clone[k] = deepCopy(v)
		}
		return clone
	case []any:
		clone := make([]any, len(typed))
		for i, v := range typed {
			clone[i] = deepCopy(v)
		}
		return clone
	default:
		return typed
	}
}
