package field

import (
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-dynform/internal/values"
)

// enumHandler maps each value to a label or to a sub-field descriptor. The
// mapping lives under options.items, or directly in options when items is
// absent:
//
//	{"items": {"RUNNING": {"type": "state", "name": "Running", "options": {"icon_color": "green"}},
//	           "STOPPED": "Stopped"}}
type enumHandler struct {
	registry *Registry
}

func enumItems(opts Options) Options {
	if items := opts.Map("items"); items != nil {
		return items
	}
	return opts
}

func (h enumHandler) DisplayData(value any, opts Options) (Display, error) {
	entry, ok := enumItems(opts)[values.Text(value)]
	if !ok || entry == nil {
		return textDisplay(TypeEnum, value), nil
	}
	if label, isString := entry.(string); isString {
		return Display{Type: TypeEnum, Text: label}, nil
	}
	sub, err := Parse(entry)
	if err != nil {
		return textDisplay(TypeEnum, value), fmt.Errorf("%w: enum item %q: %v", ErrInvalidValue, values.Text(value), err)
	}
	shown := value
	if sub.Name != "" {
		shown = sub.Name
	}
	resolved := h.registry.Render(sub, shown)
	return resolved.Display, resolved.Err
}

func (h enumHandler) FormBinding(value any, opts Options) Binding {
	items := enumItems(opts)
	keys := make([]string, 0, len(items))
	for key := range items {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	choices := make([]Choice, 0, len(keys))
	for _, key := range keys {
		label := key
		switch typed := items[key].(type) {
		case string:
			label = typed
		default:
			if sub, err := Parse(typed); err == nil && sub.Name != "" {
				label = sub.Name
			}
		}
		choices = append(choices, Choice{Label: label, Value: key})
	}
	return Binding{
		Control:     ControlSelect,
		Value:       value,
		Choices:     choices,
		Placeholder: opts.String("placeholder"),
		ReadOnly:    opts.Bool("readonly"),
	}
}

// listHandler renders each element through the item sub-field (text when
// unset) and joins the results with the delimiter. A string value is split on
// the delimiter first.
type listHandler struct {
	registry *Registry
}

func (h listHandler) items(value any, opts Options) ([]any, bool) {
	if items, ok := values.Slice(value); ok {
		return items, true
	}
	if text, ok := value.(string); ok {
		parts := strings.Split(text, strings.TrimSpace(opts.StringOr("delimiter", ",")))
		out := make([]any, 0, len(parts))
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		return out, true
	}
	return nil, false
}

func (h listHandler) itemField(opts Options) Field {
	sub, err := Parse(opts["item"])
	if err != nil {
		return Field{Type: TypeText}
	}
	return sub
}

func (h listHandler) DisplayData(value any, opts Options) (Display, error) {
	items, ok := h.items(value, opts)
	if !ok {
		return textDisplay(TypeList, value), fmt.Errorf("%w: list expects an array, got %T", ErrInvalidValue, value)
	}
	sub := h.itemField(opts)
	d := Display{Type: TypeList, Items: make([]Display, 0, len(items))}
	texts := make([]string, 0, len(items))
	var firstErr error
	for _, item := range items {
		element := item
		if sub.Key != "" {
			element = sub.Lookup(item)
		}
		resolved := h.registry.Render(sub, element)
		if resolved.Err != nil && firstErr == nil {
			firstErr = resolved.Err
		}
		d.Items = append(d.Items, resolved.Display)
		if resolved.Display.Text != "" {
			texts = append(texts, resolved.Display.Text)
		}
	}
	d.Text = strings.Join(texts, opts.StringOr("delimiter", ", "))
	return d, firstErr
}

func (h listHandler) FormBinding(value any, opts Options) Binding {
	items, _ := h.items(value, opts)
	texts := make([]string, 0, len(items))
	for _, item := range items {
		texts = append(texts, values.Text(item))
	}
	return Binding{
		Control:     ControlChips,
		Value:       texts,
		Multiple:    true,
		Placeholder: opts.String("placeholder"),
		ReadOnly:    opts.Bool("readonly"),
	}
}
