package query

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/goliatone/go-dynform/internal/values"
)

// KeyDataType is the data type of a query key.
type KeyDataType string

// Key data types.
const (
	DataTypeString   KeyDataType = "string"
	DataTypeInteger  KeyDataType = "integer"
	DataTypeFloat    KeyDataType = "float"
	DataTypeBoolean  KeyDataType = "boolean"
	DataTypeDatetime KeyDataType = "datetime"
	DataTypeObject   KeyDataType = "object"
)

// DataTypes lists every key data type.
var DataTypes = []KeyDataType{DataTypeString, DataTypeInteger, DataTypeFloat, DataTypeBoolean, DataTypeDatetime, DataTypeObject}

// Valid reports whether d is a known data type. Empty is not valid.
func (d KeyDataType) Valid() bool {
	for _, candidate := range DataTypes {
		if candidate == d {
			return true
		}
	}
	return false
}

var (
	// ErrOperatorNotAllowed is returned when a query uses an operator outside
	// its key's allow-list.
	ErrOperatorNotAllowed = errors.New("query: operator not allowed for key")
	// ErrInvalidQuery is returned for text that cannot be read as a query item.
	ErrInvalidQuery = errors.New("query: invalid query")
)

// KeyItem is a searchable key. An empty Operators list allows every operator.
type KeyItem struct {
	Label     string      `json:"label"`
	Name      string      `json:"name"`
	DataType  KeyDataType `json:"dataType,omitempty"`
	Operators []Operator  `json:"operators,omitempty"`
}

// Allows reports whether op may be used with the key.
func (k KeyItem) Allows(op Operator) bool {
	if op == OperatorUnset || len(k.Operators) == 0 {
		return true
	}
	for _, allowed := range k.Operators {
		if allowed == op {
			return true
		}
	}
	return false
}

// KeyItemSet groups keys under a title for the key menu.
type KeyItemSet struct {
	Title string    `json:"title"`
	Items []KeyItem `json:"items"`
}

// ValueItem is a value with its display label.
type ValueItem struct {
	Label string `json:"label"`
	Name  any    `json:"name"`
}

// QueryItem is one search condition. Key is nil for free-text search.
type QueryItem struct {
	Key      *KeyItem  `json:"key,omitempty"`
	Operator Operator  `json:"operator,omitempty"`
	Value    ValueItem `json:"value"`
}

type queryItemJSON struct {
	Key      *KeyItem  `json:"key,omitempty"`
	Operator *string   `json:"operator,omitempty"`
	Value    ValueItem `json:"value"`
}

// MarshalJSON encodes the operator as its wire token and omits it when unset.
// Tokens are written unescaped; encoders that wrap the item must disable
// HTML escaping as well or "<" and ">" come out as \u003c and \u003e.
func (q QueryItem) MarshalJSON() ([]byte, error) {
	out := queryItemJSON{Key: q.Key, Value: q.Value}
	if q.Operator != OperatorUnset {
		if !q.Operator.Valid() {
			return nil, fmt.Errorf("%w: %d", ErrUnknownOperator, uint8(q.Operator))
		}
		token := q.Operator.Token()
		out.Operator = &token
	}
	return json.MarshalNoEscape(out)
}

// UnmarshalJSON decodes the wire form; a missing or null operator is unset.
func (q *QueryItem) UnmarshalJSON(data []byte) error {
	var in queryItemJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return fmt.Errorf("query: decode query item: %w", err)
	}
	item := QueryItem{Key: in.Key, Value: in.Value}
	if in.Operator != nil {
		op, err := ParseOperator(*in.Operator)
		if err != nil {
			return err
		}
		item.Operator = op
	}
	*q = item
	return nil
}

// Validate checks the operator against the key's allow-list and the key's
// data type.
func (q QueryItem) Validate() error {
	if q.Operator != OperatorUnset && !q.Operator.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownOperator, uint8(q.Operator))
	}
	if q.Key == nil {
		return nil
	}
	if q.Key.DataType != "" && !q.Key.DataType.Valid() {
		return fmt.Errorf("%w: unknown data type %q for key %q", ErrInvalidQuery, q.Key.DataType, q.Key.Name)
	}
	if !q.Key.Allows(q.Operator) {
		return fmt.Errorf("%w: %s on %q", ErrOperatorNotAllowed, q.Operator.Name(), q.Key.Name)
	}
	return nil
}

// String renders the textual form used by query-search inputs:
// "key:<token><value>" or just the value for free text.
func (q QueryItem) String() string {
	value := values.Text(q.Value.Name)
	if q.Key == nil {
		return q.Operator.Token() + value
	}
	return q.Key.Name + ":" + q.Operator.Token() + value
}

// ParseText reads "key:>=value" into a QueryItem. Keys found in known supply
// their label, data type and operator allow-list; unknown keys are accepted
// as plain string keys. Text without a colon is a free-text contain query.
// Values of integer, float and boolean keys are converted to those types.
func ParseText(text string, known ...KeyItem) (QueryItem, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return QueryItem{}, fmt.Errorf("%w: empty text", ErrInvalidQuery)
	}
	idx := strings.Index(trimmed, ":")
	if idx < 0 {
		op, rest := splitOperator(trimmed)
		return QueryItem{Operator: op, Value: ValueItem{Label: rest, Name: rest}}, nil
	}

	name := strings.TrimSpace(trimmed[:idx])
	if name == "" {
		return QueryItem{}, fmt.Errorf("%w: missing key in %q", ErrInvalidQuery, text)
	}
	key := lookupKey(name, known)
	op, raw := splitOperator(trimmed[idx+1:])
	raw = strings.TrimSpace(raw)

	value, err := convertValue(key.DataType, raw)
	if err != nil {
		return QueryItem{}, err
	}
	item := QueryItem{Key: &key, Operator: op, Value: ValueItem{Label: raw, Name: value}}
	if err := item.Validate(); err != nil {
		return QueryItem{}, err
	}
	return item, nil
}

func lookupKey(name string, known []KeyItem) KeyItem {
	for _, key := range known {
		if key.Name == name {
			out := key
			out.Operators = append([]Operator(nil), key.Operators...)
			return out
		}
	}
	return KeyItem{Label: name, Name: name}
}

func convertValue(dataType KeyDataType, raw string) (any, error) {
	switch dataType {
	case DataTypeInteger:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not an integer", ErrInvalidQuery, raw)
		}
		return n, nil
	case DataTypeFloat:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", ErrInvalidQuery, raw)
		}
		return f, nil
	case DataTypeBoolean:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a boolean", ErrInvalidQuery, raw)
		}
		return b, nil
	default:
		return raw, nil
	}
}
