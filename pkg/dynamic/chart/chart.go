// Package chart prepares themed chart data: it reads name/value pairs out of
// arbitrary rows, colors them from a palette and applies the row limit.
// Drawing is left to the renderer.
package chart

import (
	"fmt"
	"strings"

	theme "github.com/goliatone/go-theme"
	"go.uber.org/zap"

	"github.com/goliatone/go-dynform/internal/values"
	"github.com/goliatone/go-dynform/pkg/dynamic/field"
)

// Type is a chart kind.
type Type string

// Supported chart kinds.
const (
	TypePie     Type = "PIE"
	TypeDonut   Type = "DONUT"
	TypeColumn  Type = "COLUMN"
	TypeTreemap Type = "TREEMAP"
)

// Types lists the supported chart kinds.
var Types = []Type{TypePie, TypeDonut, TypeColumn, TypeTreemap}

// ParseType accepts a chart kind in any case.
func ParseType(raw string) (Type, error) {
	candidate := Type(strings.ToUpper(strings.TrimSpace(raw)))
	for _, t := range Types {
		if t == candidate {
			return t, nil
		}
	}
	return "", fmt.Errorf("chart: unknown chart type %q", raw)
}

// Proportional reports whether the chart shows shares of a whole. Rows beyond
// the limit are folded into an "etc" slice for these kinds.
func (t Type) Proportional() bool {
	return t == TypePie || t == TypeDonut || t == TypeTreemap
}

// Default field keys read from each row.
const (
	DefaultValueKey = "value"
	DefaultNameKey  = "name"
	// EtcName labels the slice that aggregates rows past the limit.
	EtcName = "etc"
)

// DefaultValueField and DefaultNameField are used when Props leaves the
// corresponding field empty.
var (
	DefaultValueField = field.Field{Type: field.TypeNumber, Key: DefaultValueKey}
	DefaultNameField  = field.Field{Type: field.TypeText, Key: DefaultNameKey}
)

// Props describes one chart.
type Props struct {
	Type         Type
	Data         []any
	ValueOptions field.Field
	NameOptions  field.Field
	Theme        Theme
	Loading      bool
	// Limit caps the number of points; zero means no limit.
	Limit int
}

// Point is one name/value pair ready to draw.
type Point struct {
	Name      string  `json:"name"`
	Label     string  `json:"label"`
	Value     float64 `json:"value"`
	ValueText string  `json:"valueText"`
	Color     string  `json:"color"`
	Error     string  `json:"error,omitempty"`
}

// Chart is the composed result. Skeleton is set while loading.
type Chart struct {
	Type     Type     `json:"type"`
	Theme    Theme    `json:"theme"`
	Colors   []string `json:"colors"`
	Points   []Point  `json:"points"`
	Total    float64  `json:"total"`
	Skeleton bool     `json:"skeleton,omitempty"`
	Empty    bool     `json:"empty,omitempty"`
}

// Option configures a Composer.
type Option func(*Composer)

// WithThemeSelector resolves palettes through selector instead of the
// built-in chart manifest.
func WithThemeSelector(selector theme.ThemeSelector) Option {
	return func(c *Composer) {
		if selector != nil {
			c.selector = selector
		}
	}
}

// WithThemeName selects the go-theme manifest palettes are read from. Palette
// names are looked up as variants of that manifest.
func WithThemeName(name string) Option {
	return func(c *Composer) {
		if strings.TrimSpace(name) != "" {
			c.themeName = name
		}
	}
}

// WithRegistry sets the field registry used to format names and values.
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

// Composer turns Props into a Chart.
type Composer struct {
	selector  theme.ThemeSelector
	themeName string
	registry  *field.Registry
	logger    *zap.Logger
}

// NewComposer constructs a Composer.
func NewComposer(opts ...Option) *Composer {
	c := &Composer{
		themeName: ManifestName,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(c)
	}
	if c.selector == nil {
		c.selector = NewSelector()
	}
	if c.registry == nil {
		c.registry = field.NewRegistry(field.WithLogger(c.logger))
	}
	return c
}

// Compose builds the chart. It never fails: unknown palettes fall back to the
// first built-in one, and non-numeric values count as zero with the problem
// recorded on the point.
func (c *Composer) Compose(props Props) Chart {
	themeName := props.Theme
	if themeName == "" {
		themeName = Themes[0]
	}
	chartType := props.Type
	if chartType == "" {
		chartType = TypePie
	}
	out := Chart{Type: chartType, Theme: themeName, Colors: c.colors(themeName)}
	if props.Loading {
		out.Skeleton = true
		return out
	}

	valueField := props.ValueOptions
	if strings.TrimSpace(valueField.Key) == "" {
		valueField.Key = DefaultValueKey
	}
	if valueField.Type == "" {
		valueField.Type = field.TypeNumber
	}
	nameField := props.NameOptions
	if strings.TrimSpace(nameField.Key) == "" {
		nameField.Key = DefaultNameKey
	}
	if nameField.Type == "" {
		nameField.Type = field.TypeText
	}

	points := make([]Point, 0, len(props.Data))
	for _, row := range props.Data {
		points = append(points, c.point(row, nameField, valueField))
	}
	points = applyLimit(chartType, points, props.Limit)
	for idx := range points {
		points[idx].Color = out.Colors[idx%len(out.Colors)]
		out.Total += points[idx].Value
	}
	out.Points = points
	out.Empty = len(points) == 0
	return out
}

func (c *Composer) point(row any, nameField, valueField field.Field) Point {
	name := c.registry.RenderFrom(nameField, row)
	value := c.registry.RenderFrom(valueField, row)
	p := Point{
		Name:      values.Text(name.Value),
		Label:     name.Display.Text,
		ValueText: value.Display.Text,
	}
	n, ok := values.Number(value.Value)
	switch {
	case ok:
		p.Value = n
	case value.Value != nil:
		p.Error = fmt.Sprintf("value %q is not numeric", values.Text(value.Value))
	}
	if value.Err != nil && p.Error == "" {
		p.Error = value.Err.Error()
	}
	return p
}

func applyLimit(t Type, points []Point, limit int) []Point {
	if limit <= 0 || len(points) <= limit {
		return points
	}
	if !t.Proportional() || limit == 1 {
		return points[:limit]
	}
	kept := append([]Point(nil), points[:limit-1]...)
	etc := Point{Name: EtcName, Label: EtcName}
	for _, p := range points[limit-1:] {
		etc.Value += p.Value
	}
	etc.ValueText = values.Text(etc.Value)
	return append(kept, etc)
}

func (c *Composer) colors(t Theme) []string {
	selection, err := c.selector.Select(c.themeName, string(t))
	if err == nil {
		if colors := Colors(selection); len(colors) > 0 {
			return colors
		}
	} else {
		c.logger.Debug("chart palette unavailable",
			zap.String("theme", c.themeName), zap.String("variant", string(t)), zap.Error(err))
	}
	if colors, ok := Palette(t); ok {
		return colors
	}
	colors, _ := Palette(Themes[0])
	return colors
}
