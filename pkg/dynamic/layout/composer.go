package layout

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/goliatone/go-dynform/internal/values"
	"github.com/goliatone/go-dynform/pkg/dynamic/field"
	"github.com/goliatone/go-dynform/pkg/query"
)

// DefaultPageSize applies to paged tables without a page_size option.
const DefaultPageSize = 15

// Option configures a Composer.
type Option func(*Composer)

// WithRegistry sets the field registry used to resolve cells and rows.
func WithRegistry(registry *field.Registry) Option {
	return func(c *Composer) {
		if registry != nil {
			c.registry = registry
		}
	}
}

// WithLogger sets the composer logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Composer) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithPolicy replaces the sanitizer applied to html layouts.
func WithPolicy(policy *bluemonday.Policy) Option {
	return func(c *Composer) {
		if policy != nil {
			c.policy = policy
		}
	}
}

// State carries per-request presentation state: loading, paging, sorting and
// query filters. The zero value is the first page, unsorted, unfiltered.
type State struct {
	Loading  bool              `json:"loading,omitempty"`
	Page     int               `json:"page,omitempty"`
	PageSize int               `json:"pageSize,omitempty"`
	SortBy   string            `json:"sortBy,omitempty"`
	SortDesc bool              `json:"sortDesc,omitempty"`
	Filters  []query.QueryItem `json:"filters,omitempty"`
}

// View is a composed layout.
type View struct {
	Type     Kind               `json:"type"`
	Name     string             `json:"name,omitempty"`
	Skeleton bool               `json:"skeleton,omitempty"`
	Rows     []field.Resolved   `json:"rows,omitempty"`
	Columns  []Column           `json:"columns,omitempty"`
	Records  [][]field.Resolved `json:"records,omitempty"`
	Paging   *Paging            `json:"paging,omitempty"`
	Sort     *Sort              `json:"sort,omitempty"`
	KeyItems []query.KeyItem    `json:"keyItems,omitempty"`
	Filters  []query.QueryItem  `json:"filters,omitempty"`
	Children []View             `json:"children,omitempty"`
	Trigger  string             `json:"trigger,omitempty"`
	Text     string             `json:"text,omitempty"`
	HTML     string             `json:"html,omitempty"`
	Error    string             `json:"error,omitempty"`
}

// Column describes a table column.
type Column struct {
	Key   string     `json:"key"`
	Label string     `json:"label"`
	Type  field.Type `json:"type"`
}

// Paging describes the slice of records a paged table shows.
type Paging struct {
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
	Total    int `json:"total"`
	Pages    int `json:"pages"`
}

// Sort describes the active sort.
type Sort struct {
	Key  string `json:"key"`
	Desc bool   `json:"desc,omitempty"`
}

// Composer turns layouts and data into views.
type Composer struct {
	registry *field.Registry
	logger   *zap.Logger
	policy   *bluemonday.Policy
}

// NewComposer constructs a Composer with a default registry.
func NewComposer(opts ...Option) *Composer {
	c := &Composer{logger: zap.NewNop()}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(c)
	}
	if c.registry == nil {
		c.registry = field.NewRegistry(field.WithLogger(c.logger))
	}
	if c.policy == nil {
		c.policy = bluemonday.UGCPolicy()
	}
	return c
}

// Compose renders l against data. The returned view is always usable; the
// error reports an unsupported kind or malformed options somewhere in the
// tree, and the affected view degrades to raw data.
func (c *Composer) Compose(l Layout, data any, state State) (View, error) {
	view := View{Type: l.Type, Name: l.Name}
	if state.Loading {
		view.Skeleton = true
		return view, nil
	}
	if root := l.RootPath(); root != "" {
		data, _ = values.Lookup(data, root)
	}

	var err error
	switch l.Type {
	case KindItem:
		err = c.item(&view, l, data)
	case KindTable, KindSimpleTable, KindQuerySearchTable:
		err = c.table(&view, l, data, state)
	case KindList, KindPopup:
		err = c.nested(&view, l, data, state)
	case KindRaw:
		err = c.raw(&view, l, data)
	case KindMarkdown:
		c.markdown(&view, l, data)
	case KindHTML:
		view.HTML = c.policy.Sanitize(htmlSource(l, data))
	default:
		err = fmt.Errorf("%w: %q", ErrUnsupportedLayout, l.Type)
		c.logger.Warn("unsupported layout type, rendering raw",
			zap.String("type", string(l.Type)), zap.String("name", l.Name))
		view.Type = KindRaw
		if rawErr := c.raw(&view, l, data); rawErr != nil {
			err = errors.Join(err, rawErr)
		}
	}
	if err != nil {
		view.Error = err.Error()
	}
	return view, err
}

func (c *Composer) item(view *View, l Layout, data any) error {
	fields, err := l.Fields()
	if err != nil {
		return err
	}
	if len(fields) == 0 {
		fields = inferFields(data)
	}
	view.Rows = c.registry.RenderAll(fields, data)
	return nil
}

func (c *Composer) table(view *View, l Layout, data any, state State) error {
	fields, err := l.Fields()
	if err != nil {
		return err
	}
	records, _ := values.Slice(data)
	if len(fields) == 0 && len(records) > 0 {
		fields = inferFields(records[0])
	}
	view.Columns = make([]Column, len(fields))
	for idx, f := range fields {
		view.Columns[idx] = Column{Key: f.Key, Label: f.Label(), Type: f.Type}
	}

	if l.Type == KindQuerySearchTable {
		view.KeyItems = KeyItems(fields)
		view.Filters = state.Filters
		if len(state.Filters) > 0 {
			filtered := make([]any, 0, len(records))
			for _, record := range records {
				if query.MatchAll(record, state.Filters) {
					filtered = append(filtered, record)
				}
			}
			records = filtered
		}
	}

	if l.Type != KindSimpleTable {
		sortKey, desc := state.SortBy, state.SortDesc
		if sortKey == "" {
			sortKey, desc = l.Options.String("sort_by"), l.Options.Bool("sort_desc")
		}
		if sortKey != "" {
			records = sortRecords(records, sortKey, desc)
			view.Sort = &Sort{Key: sortKey, Desc: desc}
		}
		var paging Paging
		records, paging = paginate(records, state, l.Options)
		view.Paging = &paging
	}

	view.Records = make([][]field.Resolved, len(records))
	for idx, record := range records {
		view.Records[idx] = c.registry.RenderAll(fields, record)
	}
	return nil
}

func (c *Composer) nested(view *View, l Layout, data any, state State) error {
	if l.Type == KindPopup {
		view.Trigger = l.Options.StringOr("trigger", l.Name)
	}
	children, err := l.Children()
	if err != nil {
		return err
	}
	var errs []error
	view.Children = make([]View, 0, len(children))
	for _, child := range children {
		childView, childErr := c.Compose(child, data, state)
		if childErr != nil {
			errs = append(errs, childErr)
		}
		view.Children = append(view.Children, childView)
	}
	return errors.Join(errs...)
}

func (c *Composer) raw(view *View, l Layout, data any) error {
	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		view.Text = values.Text(data)
		return fmt.Errorf("layout: encode raw data: %w", err)
	}
	view.Text = string(encoded)
	return nil
}

func (c *Composer) markdown(view *View, l Layout, data any) {
	source := data
	if l.Options.Has("markdown") {
		source = l.Options["markdown"]
	}
	opts := field.Options{}
	if lang := l.Options.String("language"); lang != "" {
		opts["language"] = lang
	}
	resolved := c.registry.Render(field.Field{Type: field.TypeMarkdown, Options: opts}, source)
	view.Text = resolved.Display.Text
	view.HTML = resolved.Display.HTML
}

func htmlSource(l Layout, data any) string {
	if l.Options.Has("html") {
		return l.Options.String("html")
	}
	return values.Text(data)
}

// KeyItems derives the searchable keys of a query-search table from its
// fields. A field may override the inferred data type with a data_type
// option.
func KeyItems(fields []field.Field) []query.KeyItem {
	out := make([]query.KeyItem, 0, len(fields))
	for _, f := range fields {
		if f.Key == "" {
			continue
		}
		dataType := query.KeyDataType(f.Options.String("data_type"))
		if !dataType.Valid() {
			dataType = dataTypeFor(f.Type)
		}
		out = append(out, query.KeyItem{
			Label:     f.Label(),
			Name:      f.Key,
			DataType:  dataType,
			Operators: query.DefaultOperators(dataType),
		})
	}
	return out
}

func dataTypeFor(t field.Type) query.KeyDataType {
	switch t {
	case field.TypeNumber, field.TypeSize:
		return query.DataTypeFloat
	case field.TypeDatetime:
		return query.DataTypeDatetime
	case field.TypeDict, field.TypeTags:
		return query.DataTypeObject
	default:
		return query.DataTypeString
	}
}

// inferFields lists the keys of an object record in sorted order. Nested
// values render raw.
func inferFields(data any) []field.Field {
	m, ok := values.Map(data)
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	out := make([]field.Field, len(keys))
	for idx, key := range keys {
		t := field.TypeText
		if _, isMap := values.Map(m[key]); isMap {
			t = field.TypeRaw
		} else if _, isSlice := values.Slice(m[key]); isSlice {
			t = field.TypeRaw
		}
		out[idx] = field.Field{Type: t, Key: key}
	}
	return out
}

func sortRecords(records []any, key string, desc bool) []any {
	out := append([]any(nil), records...)
	sort.SliceStable(out, func(i, j int) bool {
		a, _ := values.Lookup(out[i], key)
		b, _ := values.Lookup(out[j], key)
		if desc {
			return less(b, a)
		}
		return less(a, b)
	})
	return out
}

// less orders missing values first, then numbers numerically, then
// everything else by text.
func less(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b != nil
	}
	an, aNum := values.Number(a)
	bn, bNum := values.Number(b)
	switch {
	case aNum && bNum:
		return an < bn
	case aNum != bNum:
		return aNum
	}
	return strings.Compare(values.Text(a), values.Text(b)) < 0
}

func paginate(records []any, state State, opts field.Options) ([]any, Paging) {
	size := state.PageSize
	if size <= 0 {
		size, _ = opts.Int("page_size")
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	total := len(records)
	pages := total / size
	if total%size != 0 {
		pages++
	}
	if pages == 0 {
		pages = 1
	}
	page := state.Page
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}
	start := (page - 1) * size
	end := start + min(size, total-start)
	return records[start:end], Paging{Page: page, PageSize: size, Total: total, Pages: pages}
}
