package field

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-dynform/internal/values"
)

// DefaultDisplayFormat is used when a datetime field has no display_format.
const DefaultDisplayFormat = "YYYY-MM-DD HH:mm:ss"

// Source types accepted by the datetime source_type option.
const (
	SourceTimestamp = "timestamp"
	SourceISO8601   = "iso8601"
	SourceUnix      = "unix"
	SourceUnixMilli = "unix_ms"
)

var dayjsLayout = strings.NewReplacer(
	"YYYY", "2006",
	"YY", "06",
	"MMMM", "January",
	"MMM", "Jan",
	"MM", "01",
	"DD", "02",
	"dddd", "Monday",
	"ddd", "Mon",
	"HH", "15",
	"hh", "03",
	"mm", "04",
	"ss", "05",
	"SSS", "000",
	"A", "PM",
	"ZZ", "-0700",
	"Z", "-07:00",
)

// Layout converts a dayjs-style format ("YYYY-MM-DD HH:mm") to a Go layout.
// Text outside the recognised tokens is kept as is.
func Layout(format string) string {
	return dayjsLayout.Replace(format)
}

var isoLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

type datetimeHandler struct {
	registry *Registry
}

func (h datetimeHandler) DisplayData(value any, opts Options) (Display, error) {
	t, err := parseTime(value, opts)
	if err != nil {
		return textDisplay(TypeDatetime, value), err
	}
	loc := h.registry.timezone(opts)
	layout := Layout(opts.StringOr("display_format", DefaultDisplayFormat))
	return Display{Type: TypeDatetime, Text: t.In(loc).Format(layout)}, nil
}

func (h datetimeHandler) FormBinding(value any, opts Options) Binding {
	b := Binding{
		Control:     ControlDatetime,
		InputType:   "datetime-local",
		Placeholder: opts.String("placeholder"),
		ReadOnly:    opts.Bool("readonly"),
	}
	if t, err := parseTime(value, opts); err == nil {
		b.Value = t.In(h.registry.timezone(opts)).Format("2006-01-02T15:04")
	}
	return b
}

// parseTime reads a protobuf-style {seconds, nanos} timestamp, a unix number
// or a formatted string, guided by source_type and source_format.
func parseTime(value any, opts Options) (time.Time, error) {
	switch source := strings.ToLower(opts.String("source_type")); source {
	case SourceTimestamp:
		return parseTimestamp(value)
	case SourceUnix, SourceUnixMilli:
		n, ok := values.Number(value)
		if !ok {
			return time.Time{}, fmt.Errorf("%w: %v is not a unix time", ErrInvalidValue, value)
		}
		if source == SourceUnixMilli {
			return time.UnixMilli(int64(n)).UTC(), nil
		}
		return unixFloat(n), nil
	case SourceISO8601, "":
	default:
		return time.Time{}, fmt.Errorf("%w: unknown source_type %q", ErrInvalidValue, source)
	}

	switch typed := value.(type) {
	case time.Time:
		return typed, nil
	case string:
		return parseTimeString(typed, opts.String("source_format"))
	}
	if _, ok := values.Map(value); ok {
		return parseTimestamp(value)
	}
	if n, ok := values.Number(value); ok {
		return unixFloat(n), nil
	}
	return time.Time{}, fmt.Errorf("%w: cannot read %T as a time", ErrInvalidValue, value)
}

func parseTimeString(text, sourceFormat string) (time.Time, error) {
	text = strings.TrimSpace(text)
	if sourceFormat != "" {
		t, err := time.Parse(Layout(sourceFormat), text)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidValue, err)
		}
		return t, nil
	}
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q is not an ISO 8601 time", ErrInvalidValue, text)
}

func parseTimestamp(value any) (time.Time, error) {
	m, ok := values.Map(value)
	if !ok {
		return time.Time{}, fmt.Errorf("%w: timestamp expects {seconds, nanos}, got %T", ErrInvalidValue, value)
	}
	var seconds int64
	switch typed := m["seconds"].(type) {
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(typed), 10, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: timestamp seconds %q", ErrInvalidValue, typed)
		}
		seconds = parsed
	default:
		n, ok := values.Number(typed)
		if !ok {
			return time.Time{}, fmt.Errorf("%w: timestamp seconds missing", ErrInvalidValue)
		}
		seconds = int64(n)
	}
	nanos, _ := values.Number(m["nanos"])
	return time.Unix(seconds, int64(nanos)).UTC(), nil
}

func unixFloat(n float64) time.Time {
	sec := int64(n)
	return time.Unix(sec, int64((n-float64(sec))*1e9)).UTC()
}
