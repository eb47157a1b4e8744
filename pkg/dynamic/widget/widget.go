// Package widget composes dashboard widgets: single-value cards and themed
// charts, plus the load state machine that feeds them.
package widget

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-dynform/internal/values"
	"github.com/goliatone/go-dynform/pkg/dynamic/chart"
	"github.com/goliatone/go-dynform/pkg/dynamic/field"
)

// Type is a widget kind.
type Type string

// Supported widget kinds.
const (
	TypeCard  Type = "card"
	TypeChart Type = "chart"
)

// ErrUnsupportedWidgetType is returned for kinds other than card and chart.
var ErrUnsupportedWidgetType = errors.New("widget: unsupported widget type")

// SchemaOptions selects the fields a widget reads from its data.
type SchemaOptions struct {
	ValueOptions field.Field `json:"value_options"`
	NameOptions  field.Field `json:"name_options"`
	ChartType    chart.Type  `json:"chart_type,omitempty"`
	Limit        int         `json:"limit,omitempty"`
}

// Props describes one widget. Index is the widget's position on its
// dashboard and picks the chart palette.
type Props struct {
	Index         int            `json:"index"`
	Type          Type           `json:"type"`
	Name          string         `json:"name"`
	SchemaOptions SchemaOptions  `json:"schema_options"`
	Data          any            `json:"data,omitempty"`
	Loading       bool           `json:"loading"`
	ViewOptions   map[string]any `json:"view_options,omitempty"`
}

// View is a composed widget.
type View struct {
	Type     Type            `json:"type"`
	Name     string          `json:"name"`
	Theme    chart.Theme     `json:"theme"`
	Card     *field.Resolved `json:"card,omitempty"`
	Chart    *chart.Chart    `json:"chart,omitempty"`
	Skeleton bool            `json:"skeleton,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// Option configures a Composer.
type Option func(*Composer)

// WithRegistry sets the field registry used for card values and chart labels.
func WithRegistry(registry *field.Registry) Option {
	return func(c *Composer) {
		if registry != nil {
			c.registry = registry
		}
	}
}

// WithChartComposer replaces the chart composer, e.g. to supply a custom
// theme selector.
func WithChartComposer(charts *chart.Composer) Option {
	return func(c *Composer) {
		if charts != nil {
			c.charts = charts
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

// Composer turns Props into Views.
type Composer struct {
	registry *field.Registry
	charts   *chart.Composer
	logger   *zap.Logger
}

// NewComposer constructs a Composer.
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
	if c.charts == nil {
		c.charts = chart.NewComposer(chart.WithRegistry(c.registry), chart.WithLogger(c.logger))
	}
	return c
}

// Compose builds the view for props. The theme comes from
// view_options.theme when set, otherwise from the widget index. An
// unsupported kind or unusable data still yields a view, with the error both
// returned and recorded on it.
func (c *Composer) Compose(props Props) (View, error) {
	view := View{Type: props.Type, Name: props.Name, Theme: themeFor(props)}
	if props.Loading {
		view.Skeleton = true
		if props.Type == TypeChart {
			skeleton := c.charts.Compose(chart.Props{Type: props.SchemaOptions.ChartType, Theme: view.Theme, Loading: true})
			view.Chart = &skeleton
		}
		return view, nil
	}

	switch props.Type {
	case TypeCard:
		valueField := props.SchemaOptions.ValueOptions
		if strings.TrimSpace(valueField.Key) == "" {
			valueField.Key = chart.DefaultValueKey
		}
		if valueField.Type == "" {
			valueField.Type = field.TypeNumber
		}
		resolved := c.registry.RenderFrom(valueField, props.Data)
		view.Card = &resolved
		return view, nil
	case TypeChart:
		rows, ok := values.Slice(props.Data)
		if !ok && props.Data != nil {
			err := fmt.Errorf("widget: chart data must be a list, got %T", props.Data)
			view.Error = err.Error()
			return view, err
		}
		composed := c.charts.Compose(chart.Props{
			Type:         props.SchemaOptions.ChartType,
			Data:         rows,
			ValueOptions: props.SchemaOptions.ValueOptions,
			NameOptions:  props.SchemaOptions.NameOptions,
			Theme:        view.Theme,
			Limit:        props.SchemaOptions.Limit,
		})
		view.Chart = &composed
		return view, nil
	default:
		err := fmt.Errorf("%w: %q", ErrUnsupportedWidgetType, props.Type)
		c.logger.Debug("unsupported widget type", zap.String("type", string(props.Type)))
		view.Error = err.Error()
		return view, err
	}
}

func themeFor(props Props) chart.Theme {
	if props.ViewOptions != nil {
		if name := strings.TrimSpace(values.Text(props.ViewOptions["theme"])); name != "" {
			return chart.Theme(name)
		}
	}
	return chart.ThemeForIndex(props.Index)
}
