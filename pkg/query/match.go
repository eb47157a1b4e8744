package query

import (
	"regexp"
	"strings"
	"time"

	"github.com/goliatone/go-dynform/internal/values"
)

// DefaultOperators returns the operators that make sense for a data type.
func DefaultOperators(dataType KeyDataType) []Operator {
	switch dataType {
	case DataTypeInteger, DataTypeFloat, DataTypeDatetime:
		return []Operator{Equal, NotEqual, Greater, GreaterEqual, Less, LessEqual}
	case DataTypeBoolean:
		return []Operator{Equal, NotEqual}
	case DataTypeObject:
		return []Operator{Contain, NotContain, Equal, NotEqual}
	default:
		return []Operator{Contain, NotContain, Equal, NotEqual, Regex}
	}
}

// Match reports whether record satisfies the item. Keyed items read the
// key's dotted path from the record; free-text items match any top-level
// value. When the record value is a list, any element may satisfy a positive
// operator, while negative operators require every element to pass.
func (q QueryItem) Match(record any) bool {
	op := q.Operator
	if op == OperatorUnset {
		op = Contain
	}
	if q.Key == nil {
		fields, ok := values.Map(record)
		if !ok {
			return matchValue(op, "", record, q.Value.Name)
		}
		negative := op == NotContain || op == NotEqual
		for _, value := range fields {
			matched := matchValue(op, "", value, q.Value.Name)
			if negative && !matched {
				return false
			}
			if !negative && matched {
				return true
			}
		}
		return negative
	}
	value, _ := values.Lookup(record, q.Key.Name)
	return matchValue(op, q.Key.DataType, value, q.Value.Name)
}

// MatchAll reports whether record satisfies every item.
func MatchAll(record any, items []QueryItem) bool {
	for _, item := range items {
		if !item.Match(record) {
			return false
		}
	}
	return true
}

func matchValue(op Operator, dataType KeyDataType, value, want any) bool {
	if items, ok := values.Slice(value); ok {
		negative := op == NotContain || op == NotEqual
		for _, item := range items {
			matched := matchScalar(op, dataType, item, want)
			if negative && !matched {
				return false
			}
			if !negative && matched {
				return true
			}
		}
		return negative
	}
	return matchScalar(op, dataType, value, want)
}

func matchScalar(op Operator, dataType KeyDataType, value, want any) bool {
	text := values.Text(value)
	wantText := values.Text(want)
	switch op {
	case Contain:
		return strings.Contains(strings.ToLower(text), strings.ToLower(wantText))
	case NotContain:
		return !strings.Contains(strings.ToLower(text), strings.ToLower(wantText))
	case Equal:
		return equalValues(value, want)
	case NotEqual:
		return !equalValues(value, want)
	case Regex:
		re, err := regexp.Compile(wantText)
		return err == nil && re.MatchString(text)
	case Greater, GreaterEqual, Less, LessEqual:
		cmp, ok := compare(dataType, value, want)
		if !ok {
			return false
		}
		switch op {
		case Greater:
			return cmp > 0
		case GreaterEqual:
			return cmp >= 0
		case Less:
			return cmp < 0
		default:
			return cmp <= 0
		}
	}
	return false
}

func equalValues(a, b any) bool {
	if an, ok := values.Number(a); ok {
		if bn, ok := values.Number(b); ok {
			return an == bn
		}
	}
	return values.Text(a) == values.Text(b)
}

func compare(dataType KeyDataType, a, b any) (int, bool) {
	if dataType == DataTypeDatetime {
		at, aok := parseTime(a)
		bt, bok := parseTime(b)
		if !aok || !bok {
			return 0, false
		}
		return at.Compare(bt), true
	}
	if an, ok := values.Number(a); ok {
		if bn, ok := values.Number(b); ok {
			switch {
			case an < bn:
				return -1, true
			case an > bn:
				return 1, true
			default:
				return 0, true
			}
		}
	}
	if a == nil {
		return 0, false
	}
	return strings.Compare(values.Text(a), values.Text(b)), true
}

func parseTime(v any) (time.Time, bool) {
	if t, ok := v.(time.Time); ok {
		return t, true
	}
	text := strings.TrimSpace(values.Text(v))
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, text); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
