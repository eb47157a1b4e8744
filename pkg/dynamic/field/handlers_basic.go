package field

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/goccy/go-json"

	"github.com/goliatone/go-dynform/internal/values"
)

func textDisplay(t Type, value any) Display {
	return Display{Type: t, Text: values.Text(value)}
}

func inputBinding(value any, opts Options) Binding {
	b := Binding{
		Control:     ControlInput,
		InputType:   "text",
		Value:       value,
		Placeholder: opts.String("placeholder"),
		ReadOnly:    opts.Bool("readonly"),
	}
	if _, isBool := value.(bool); isBool || opts.String("control") == ControlToggle {
		b.Control = ControlToggle
		b.InputType = "checkbox"
	}
	return b
}

type textHandler struct{}

func (textHandler) DisplayData(value any, _ Options) (Display, error) {
	return textDisplay(TypeText, value), nil
}

func (textHandler) FormBinding(value any, opts Options) Binding {
	b := inputBinding(value, opts)
	if opts.Bool("multiline") {
		b.Control = ControlTextarea
		b.InputType = ""
	}
	return b
}

type numberHandler struct{}

func (numberHandler) DisplayData(value any, opts Options) (Display, error) {
	n, ok := values.Number(value)
	if !ok {
		return textDisplay(TypeNumber, value), fmt.Errorf("%w: %v is not a number", ErrInvalidValue, value)
	}
	var text string
	if digits, set := opts.Int("decimals"); set && digits >= 0 {
		text = strconv.FormatFloat(n, 'f', digits, 64)
	} else {
		text = strconv.FormatFloat(n, 'f', -1, 64)
	}
	if opts.Bool("comma") {
		if digits, set := opts.Int("decimals"); set && digits >= 0 {
			text = humanize.FormatFloat(commaPattern(digits), n)
		} else {
			text = humanize.Commaf(n)
		}
	}
	return Display{Type: TypeNumber, Text: text}, nil
}

func commaPattern(digits int) string {
	if digits == 0 {
		return "#,###."
	}
	return "#,###." + strings.Repeat("#", digits)
}

func (numberHandler) FormBinding(value any, opts Options) Binding {
	b := inputBinding(value, opts)
	b.InputType = "number"
	return b
}

type badgeHandler struct{}

func (badgeHandler) DisplayData(value any, opts Options) (Display, error) {
	d := textDisplay(TypeBadge, value)
	d.Style = &Style{
		TextColor:       opts.String("text_color"),
		BackgroundColor: opts.StringOr("background_color", "gray"),
		Shape:           opts.StringOr("shape", "round"),
	}
	return d, nil
}

func (badgeHandler) FormBinding(value any, opts Options) Binding {
	return inputBinding(value, opts)
}

type stateHandler struct{}

func (stateHandler) DisplayData(value any, opts Options) (Display, error) {
	d := textDisplay(TypeState, value)
	d.Style = &Style{
		TextColor: opts.String("text_color"),
		Icon:      opts.String("icon"),
		IconColor: opts.String("icon_color"),
	}
	return d, nil
}

func (stateHandler) FormBinding(value any, opts Options) Binding {
	b := inputBinding(value, opts)
	b.ReadOnly = true
	return b
}

type rawHandler struct{}

func (rawHandler) DisplayData(value any, opts Options) (Display, error) {
	text, err := encodeJSON(value, opts.Bool("pretty"))
	if err != nil {
		return textDisplay(TypeRaw, value), fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	return Display{Type: TypeRaw, Text: text}, nil
}

func (rawHandler) FormBinding(value any, _ Options) Binding {
	text, _ := encodeJSON(value, true)
	return Binding{Control: ControlJSONEditor, Value: text}
}

func encodeJSON(value any, pretty bool) (string, error) {
	var (
		encoded []byte
		err     error
	)
	if pretty {
		encoded, err = json.MarshalIndent(value, "", "  ")
	} else {
		encoded, err = json.Marshal(value)
	}
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

// dictHandler renders a map as sorted key/value entries.
type dictHandler struct{}

func (dictHandler) DisplayData(value any, opts Options) (Display, error) {
	m, ok := values.Map(value)
	if !ok {
		return textDisplay(TypeDict, value), fmt.Errorf("%w: dict expects an object, got %T", ErrInvalidValue, value)
	}
	d := Display{Type: TypeDict}
	d.Entries = sortedEntries(m)
	parts := make([]string, len(d.Entries))
	for idx, entry := range d.Entries {
		parts[idx] = entry.Key + ": " + entry.Value.Text
	}
	d.Text = strings.Join(parts, opts.StringOr("delimiter", ", "))
	return d, nil
}

func (dictHandler) FormBinding(value any, _ Options) Binding {
	text, _ := encodeJSON(value, true)
	return Binding{Control: ControlJSONEditor, Value: text}
}

func sortedEntries(m map[string]any) []Entry {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	out := make([]Entry, len(keys))
	for idx, key := range keys {
		out[idx] = Entry{Key: key, Value: textDisplay(TypeText, m[key])}
	}
	return out
}

// tagsHandler renders cloud-style tags: either a map or a list of
// {key, value} objects.
type tagsHandler struct{}

func (tagsHandler) DisplayData(value any, opts Options) (Display, error) {
	tags, ok := tagMap(value)
	if !ok {
		return textDisplay(TypeTags, value), fmt.Errorf("%w: tags expect an object or key/value list, got %T", ErrInvalidValue, value)
	}
	d := Display{Type: TypeTags, Entries: sortedEntries(tags)}
	d.Items = make([]Display, len(d.Entries))
	parts := make([]string, len(d.Entries))
	for idx, entry := range d.Entries {
		label := entry.Key + ":" + entry.Value.Text
		d.Items[idx] = Display{Type: TypeBadge, Text: label}
		parts[idx] = label
	}
	d.Text = strings.Join(parts, opts.StringOr("delimiter", " "))
	return d, nil
}

func (tagsHandler) FormBinding(value any, _ Options) Binding {
	tags, _ := tagMap(value)
	entries := sortedEntries(tags)
	pairs := make([]map[string]string, len(entries))
	for idx, entry := range entries {
		pairs[idx] = map[string]string{"key": entry.Key, "value": entry.Value.Text}
	}
	return Binding{Control: ControlKeyValue, Value: pairs, Multiple: true}
}

func tagMap(value any) (map[string]any, bool) {
	if m, ok := values.Map(value); ok {
		return m, true
	}
	items, ok := values.Slice(value)
	if !ok {
		return nil, false
	}
	out := make(map[string]any, len(items))
	for _, item := range items {
		pair, ok := values.Map(item)
		if !ok {
			return nil, false
		}
		key := values.Text(pair["key"])
		if key == "" {
			return nil, false
		}
		out[key] = pair["value"]
	}
	return out, true
}
