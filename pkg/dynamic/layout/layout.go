// Package layout arranges resolved fields into views: detail items, tables,
// searchable tables, nested lists and popups, and raw or rich text blocks.
package layout

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-dynform/internal/values"
	"github.com/goliatone/go-dynform/pkg/dynamic/field"
)

// Kind is a layout type tag.
type Kind string

// Supported layout kinds.
const (
	KindItem             Kind = "item"
	KindList             Kind = "list"
	KindTable            Kind = "table"
	KindSimpleTable      Kind = "simple-table"
	KindQuerySearchTable Kind = "query-search-table"
	KindRaw              Kind = "raw"
	KindPopup            Kind = "popup"
	KindMarkdown         Kind = "markdown"
	KindHTML             Kind = "html"
)

// Kinds lists every supported layout kind.
var Kinds = []Kind{
	KindItem, KindList, KindTable, KindSimpleTable, KindQuerySearchTable,
	KindRaw, KindPopup, KindMarkdown, KindHTML,
}

// Known reports whether k is a supported kind.
func (k Kind) Known() bool {
	for _, candidate := range Kinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ErrUnsupportedLayout is returned when a layout kind has no composer. The
// view still renders, as raw data.
var ErrUnsupportedLayout = errors.New("layout: unsupported layout type")

// Layout is a declarative layout descriptor. Options are kind specific:
//
//	fields      field descriptors (item and table kinds)
//	root_path   dotted path selecting the data subtree
//	layouts     child layouts (list and popup)
//	page_size   rows per page (table and query-search-table)
//	sort_by     default sort key, sort_desc for descending order
//	markdown    literal markdown, html literal html
//	trigger     popup button label
type Layout struct {
	Type    Kind          `json:"type"`
	Name    string        `json:"name,omitempty"`
	Options field.Options `json:"options,omitempty"`
}

// Parse builds a Layout from a decoded descriptor.
func Parse(raw any) (Layout, error) {
	m, ok := values.Map(raw)
	if !ok {
		return Layout{}, fmt.Errorf("layout: descriptor must be an object, got %T", raw)
	}
	l := Layout{
		Type: Kind(strings.TrimSpace(values.Text(m["type"]))),
		Name: values.Text(m["name"]),
	}
	if l.Type == "" {
		return Layout{}, fmt.Errorf("layout: missing type")
	}
	if opts, ok := values.Map(m["options"]); ok {
		l.Options = field.Options(opts)
	}
	return l, nil
}

// Decode reads a JSON layout descriptor.
func Decode(data []byte) (Layout, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Layout{}, fmt.Errorf("layout: decode json: %w", err)
	}
	return Parse(raw)
}

// DecodeYAML reads a YAML layout descriptor.
func DecodeYAML(data []byte) (Layout, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Layout{}, fmt.Errorf("layout: decode yaml: %w", err)
	}
	return Parse(raw)
}

// Fields parses the layout's field descriptors.
func (l Layout) Fields() ([]field.Field, error) {
	return field.ParseList(l.Options["fields"])
}

// WithFields returns a copy of the layout carrying fields.
func (l Layout) WithFields(fields []field.Field) Layout {
	raw := make([]any, len(fields))
	for idx, f := range fields {
		descriptor := map[string]any{"type": string(f.Type), "key": f.Key}
		if f.Name != "" {
			descriptor["name"] = f.Name
		}
		if len(f.Options) > 0 {
			descriptor["options"] = map[string]any(f.Options)
		}
		raw[idx] = descriptor
	}
	l.Options = l.Options.With("fields", raw)
	return l
}

// Children parses the nested layouts of list and popup kinds.
func (l Layout) Children() ([]Layout, error) {
	raw := l.Options["layouts"]
	if raw == nil {
		return nil, nil
	}
	items, ok := values.Slice(raw)
	if !ok {
		return nil, fmt.Errorf("layout: layouts must be an array, got %T", raw)
	}
	out := make([]Layout, 0, len(items))
	for idx, item := range items {
		if child, ok := item.(Layout); ok {
			out = append(out, child)
			continue
		}
		child, err := Parse(item)
		if err != nil {
			return nil, fmt.Errorf("layout: layouts[%d]: %w", idx, err)
		}
		out = append(out, child)
	}
	return out, nil
}

// RootPath returns the dotted path selecting the layout's data.
func (l Layout) RootPath() string {
	return strings.TrimSpace(l.Options.String("root_path"))
}
