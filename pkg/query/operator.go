// Package query models query-search items (key, operator, value), their
// textual and wire forms, and the value-suggestion lookups that feed the
// search input.
package query

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// Operator is a query comparison. The zero value means "no operator"; it is
// distinct from Contain, whose wire token is the empty string.
type Operator uint8

// Operators in wire order.
const (
	OperatorUnset Operator = iota
	Contain
	NotContain
	Greater
	GreaterEqual
	Less
	LessEqual
	Equal
	NotEqual
	Regex
)

var operatorTokens = [...]string{
	Contain:      "",
	NotContain:   "!",
	Greater:      ">",
	GreaterEqual: ">=",
	Less:         "<",
	LessEqual:    "<=",
	Equal:        "=",
	NotEqual:     "!=",
	Regex:        "$",
}

var operatorNames = [...]string{
	OperatorUnset: "",
	Contain:       "contain",
	NotContain:    "notContain",
	Greater:       "greater",
	GreaterEqual:  "greaterEqual",
	Less:          "less",
	LessEqual:     "lessEqual",
	Equal:         "equal",
	NotEqual:      "notEqual",
	Regex:         "regex",
}

// prefixOrder lists operators by token length so the longest token wins when
// reading an operator off the front of a value.
var prefixOrder = []Operator{GreaterEqual, LessEqual, NotEqual, Greater, Less, NotContain, Equal, Regex}

// ErrUnknownOperator is returned for tokens and names outside the operator set.
var ErrUnknownOperator = errors.New("query: unknown operator")

// AllOperators returns every defined operator in wire order.
func AllOperators() []Operator {
	return []Operator{Contain, NotContain, Greater, GreaterEqual, Less, LessEqual, Equal, NotEqual, Regex}
}

// Valid reports whether o is a defined operator (unset is not).
func (o Operator) Valid() bool {
	return o >= Contain && o <= Regex
}

// Token returns the wire token. Unset and undefined operators return "".
func (o Operator) Token() string {
	if !o.Valid() {
		return ""
	}
	return operatorTokens[o]
}

// Name returns the symbolic name, e.g. "greaterEqual".
func (o Operator) Name() string {
	if int(o) >= len(operatorNames) {
		return fmt.Sprintf("operator(%d)", uint8(o))
	}
	return operatorNames[o]
}

func (o Operator) String() string {
	if o == OperatorUnset {
		return "unset"
	}
	return o.Name()
}

// ParseOperator maps a wire token to its operator. The empty token is
// Contain.
func ParseOperator(token string) (Operator, error) {
	for _, op := range AllOperators() {
		if operatorTokens[op] == token {
			return op, nil
		}
	}
	return OperatorUnset, fmt.Errorf("%w: token %q", ErrUnknownOperator, token)
}

// ParseOperatorName maps a symbolic name to its operator.
func ParseOperatorName(name string) (Operator, error) {
	for _, op := range AllOperators() {
		if operatorNames[op] == name {
			return op, nil
		}
	}
	return OperatorUnset, fmt.Errorf("%w: name %q", ErrUnknownOperator, name)
}

// splitOperator reads the longest operator token at the start of text. Text
// with no operator prefix is a Contain query.
func splitOperator(text string) (Operator, string) {
	for _, op := range prefixOrder {
		if token := operatorTokens[op]; strings.HasPrefix(text, token) {
			return op, text[len(token):]
		}
	}
	return Contain, text
}

// MarshalJSON encodes the wire token. Unset encodes as null.
func (o Operator) MarshalJSON() ([]byte, error) {
	if o == OperatorUnset {
		return []byte("null"), nil
	}
	if !o.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownOperator, uint8(o))
	}
	return json.MarshalNoEscape(o.Token())
}

// UnmarshalJSON decodes a wire token; null leaves the operator unset.
func (o *Operator) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*o = OperatorUnset
		return nil
	}
	var token string
	if err := json.Unmarshal(data, &token); err != nil {
		return fmt.Errorf("query: operator must be a string token: %w", err)
	}
	op, err := ParseOperator(token)
	if err != nil {
		return err
	}
	*o = op
	return nil
}
