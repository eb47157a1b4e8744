// Package html renders composed views, forms and widgets to HTML through the
// template contract. Themes contribute CSS variables and template overrides.
package html

import (
	"errors"
	"fmt"
	stdhtml "html"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	theme "github.com/goliatone/go-theme"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/goliatone/go-dynform/internal/values"
	"github.com/goliatone/go-dynform/pkg/dynamic/field"
	"github.com/goliatone/go-dynform/pkg/dynamic/layout"
	"github.com/goliatone/go-dynform/pkg/dynamic/widget"
	"github.com/goliatone/go-dynform/pkg/form"
	"github.com/goliatone/go-dynform/pkg/render/template"
	"github.com/goliatone/go-dynform/pkg/render/template/pongo"
)

// PartialPrefix namespaces theme partial overrides. A theme mapping
// "dynform.table" to another template name replaces the built-in table.
const PartialPrefix = "dynform."

// StylesheetAsset is the theme asset key linked from the page wrapper.
const StylesheetAsset = "dynform.stylesheet"

// Option configures a Renderer.
type Option func(*Renderer)

// WithTemplateRenderer replaces the embedded pongo2 engine.
func WithTemplateRenderer(engine template.TemplateRenderer) Option {
	return func(r *Renderer) {
		if engine != nil {
			r.engine = engine
		}
	}
}

// WithTheme applies a resolved theme configuration.
func WithTheme(cfg *theme.RendererConfig) Option {
	return func(r *Renderer) {
		r.theme = cfg
	}
}

// WithThemeSelection resolves name and variant through selector and applies
// the result. A failed selection is logged and rendering continues unthemed.
func WithThemeSelection(selector theme.ThemeSelector, name, variant string) Option {
	return func(r *Renderer) {
		r.selector = selector
		r.themeName = name
		r.themeVariant = variant
	}
}

// WithLogger sets the renderer logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Renderer turns views into HTML fragments.
type Renderer struct {
	engine       template.TemplateRenderer
	theme        *theme.RendererConfig
	selector     theme.ThemeSelector
	themeName    string
	themeVariant string
	translator   Translator
	locale       string
	onMissing    MissingTranslationHandler
	links        *bluemonday.Policy
	logger       *zap.Logger
}

// New constructs a Renderer backed by the embedded templates unless another
// engine is supplied.
func New(opts ...Option) (*Renderer, error) {
	r := &Renderer{links: linkPolicy(), logger: zap.NewNop()}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.engine == nil {
		engine, err := pongo.New(pongo.WithFS(Templates()), pongo.WithFilters(templateFilters()))
		if err != nil {
			return nil, fmt.Errorf("html: create template engine: %w", err)
		}
		r.engine = engine
	}
	if r.selector != nil && r.theme == nil {
		selection, err := r.selector.Select(r.themeName, r.themeVariant)
		if err != nil {
			r.logger.Warn("theme selection failed", zap.String("theme", r.themeName),
				zap.String("variant", r.themeVariant), zap.Error(err))
		} else {
			r.theme = ThemeConfig(selection)
		}
	}
	if err := r.engine.GlobalContext(map[string]any{"theme": r.themeContext(), "locale": r.locale}); err != nil {
		return nil, fmt.Errorf("html: publish template globals: %w", err)
	}
	return r, nil
}

// Page wraps body in the themed container. The theme and locale come from
// the template globals.
func (r *Renderer) Page(body string) (string, error) {
	ctx := map[string]any{"body": body}
	if r.theme != nil && r.theme.AssetURL != nil {
		ctx["stylesheet"] = r.theme.AssetURL(StylesheetAsset)
	}
	return r.render("page", ctx)
}

// RenderView renders a composed layout view, children included.
func (r *Renderer) RenderView(view layout.View) (string, error) {
	if view.Skeleton {
		return r.render("skeleton", map[string]any{"type": string(view.Type), "name": view.Name})
	}
	var (
		out string
		err error
	)
	switch view.Type {
	case layout.KindItem:
		out, err = r.renderItem(view)
	case layout.KindTable, layout.KindSimpleTable, layout.KindQuerySearchTable:
		out, err = r.renderTable(view)
	case layout.KindList, layout.KindPopup:
		out, err = r.renderNested(view)
	case layout.KindMarkdown, layout.KindHTML:
		out, err = r.render("rich", map[string]any{"type": string(view.Type), "html": view.HTML})
	default:
		out, err = r.render("raw", map[string]any{"text": view.Text})
	}
	if err != nil {
		return "", err
	}
	if view.Error != "" && view.Type == layout.KindRaw {
		notice, noticeErr := r.render("error", map[string]any{"error": view.Error})
		if noticeErr != nil {
			return "", noticeErr
		}
		out = notice + out
	}
	return out, nil
}

// RenderDisplay renders one resolved value.
func (r *Renderer) RenderDisplay(display field.Display) (string, error) {
	items := make([]string, 0, len(display.Items))
	for _, item := range display.Items {
		html, err := r.RenderDisplay(item)
		if err != nil {
			return "", err
		}
		items = append(items, html)
	}
	if len(display.Entries) > 0 && len(items) == 0 {
		for _, entry := range display.Entries {
			html, err := r.RenderDisplay(entry.Value)
			if err != nil {
				return "", err
			}
			items = append(items, `<span class="dynform-entry">`+stdhtml.EscapeString(entry.Key)+": "+html+"</span>")
		}
	}
	ctx := map[string]any{"display": display, "items": items}
	if display.Link != "" {
		anchor := `<a href="` + stdhtml.EscapeString(display.Link) + `">` + stdhtml.EscapeString(display.Text) + `</a>`
		ctx["anchor"] = r.links.Sanitize(anchor)
	}
	return r.render("display", ctx)
}

// RenderForm renders form controls followed by the composed view.
func (r *Renderer) RenderForm(result form.Result) (string, error) {
	fields := make([]map[string]any, 0, len(result.Fields))
	for _, f := range result.Fields {
		control, err := r.renderControl(f.Field.Key, f.Binding)
		if err != nil {
			return "", err
		}
		entry := map[string]any{
			"key":      f.Field.Key,
			"label":    r.fieldLabel(f.Field, f.Label),
			"required": f.Required,
			"control":  control,
		}
		if f.Issue != nil {
			entry["issue"] = r.issueMessage(f.Issue)
		}
		fields = append(fields, entry)
	}
	view, err := r.RenderView(result.View)
	if err != nil {
		return "", err
	}
	return r.render("form", map[string]any{
		"fields":  fields,
		"invalid": !result.Validation.Valid,
		"view":    view,
	})
}

// RenderWidget renders a card or chart widget.
func (r *Renderer) RenderWidget(view widget.View) (string, error) {
	if view.Skeleton {
		return r.render("skeleton", map[string]any{"type": string(view.Type), "name": view.Name})
	}
	ctx := map[string]any{
		"type":  string(view.Type),
		"name":  view.Name,
		"theme": string(view.Theme),
		"error": view.Error,
	}
	if view.Card != nil {
		card, err := r.RenderDisplay(view.Card.Display)
		if err != nil {
			return "", err
		}
		ctx["card"] = card
	}
	if view.Chart != nil {
		points := make([]map[string]any, len(view.Chart.Points))
		for idx, point := range view.Chart.Points {
			share := 0.0
			if view.Chart.Total > 0 {
				share = point.Value / view.Chart.Total * 100
			}
			points[idx] = map[string]any{
				"label":     point.Label,
				"valueText": point.ValueText,
				"color":     point.Color,
				"share":     humanize.FtoaWithDigits(share, 1),
			}
		}
		ctx["chart"] = map[string]any{"type": string(view.Chart.Type)}
		ctx["points"] = points
	}
	return r.render("widget", ctx)
}

func (r *Renderer) renderItem(view layout.View) (string, error) {
	rows := make([]map[string]any, 0, len(view.Rows))
	for _, row := range view.Rows {
		html, err := r.RenderDisplay(row.Display)
		if err != nil {
			return "", err
		}
		rows = append(rows, map[string]any{"label": r.fieldLabel(row.Field, row.Label), "html": html})
	}
	return r.render("item", map[string]any{"name": view.Name, "rows": rows})
}

func (r *Renderer) renderTable(view layout.View) (string, error) {
	records := make([][]string, 0, len(view.Records))
	for _, record := range view.Records {
		cells := make([]string, 0, len(record))
		for _, cell := range record {
			html, err := r.RenderDisplay(cell.Display)
			if err != nil {
				return "", err
			}
			cells = append(cells, html)
		}
		records = append(records, cells)
	}
	filters := make([]string, len(view.Filters))
	for idx, filter := range view.Filters {
		filters[idx] = filter.String()
	}
	sort := map[string]any{}
	if view.Sort != nil {
		sort["key"] = view.Sort.Key
		sort["desc"] = view.Sort.Desc
	}
	ctx := map[string]any{
		"type":    string(view.Type),
		"name":    view.Name,
		"columns": view.Columns,
		"records": records,
		"keys":    view.KeyItems,
		"filters": filters,
		"sort":    sort,
	}
	if view.Paging != nil {
		// Numbers reach templates as floats; page numbers are formatted here
		// and the total goes through the comma filter.
		ctx["paging"] = map[string]any{
			"page":  strconv.Itoa(view.Paging.Page),
			"pages": strconv.Itoa(view.Paging.Pages),
			"total": view.Paging.Total,
		}
	}
	return r.render("table", ctx)
}

func (r *Renderer) renderNested(view layout.View) (string, error) {
	children := make([]string, 0, len(view.Children))
	for _, child := range view.Children {
		html, err := r.RenderView(child)
		if err != nil {
			return "", err
		}
		children = append(children, html)
	}
	name := "list"
	if view.Type == layout.KindPopup {
		name = "popup"
	}
	return r.render(name, map[string]any{"name": view.Name, "trigger": view.Trigger, "children": children})
}

func (r *Renderer) renderControl(id string, binding field.Binding) (string, error) {
	choices := make([]map[string]any, len(binding.Choices))
	for idx, choice := range binding.Choices {
		choices[idx] = map[string]any{
			"label":    choice.Label,
			"value":    values.Text(choice.Value),
			"selected": values.Equal(choice.Value, binding.Value),
		}
	}
	checked, _ := binding.Value.(bool)
	return r.render("control", map[string]any{
		"id":      id,
		"binding": binding,
		"value":   controlValue(binding.Value),
		"choices": choices,
		"checked": checked,
	})
}

func controlValue(v any) string {
	if items, ok := values.Slice(v); ok {
		parts := make([]string, len(items))
		for idx, item := range items {
			parts[idx] = values.Text(item)
		}
		return strings.Join(parts, ", ")
	}
	return values.Text(v)
}

func (r *Renderer) themeContext() map[string]any {
	if r.theme == nil {
		return map[string]any{}
	}
	return map[string]any{
		"name":    r.theme.Theme,
		"variant": r.theme.Variant,
		"style":   cssVarsStyle(r.theme.CSSVars),
	}
}

// templateName applies theme partial overrides.
func (r *Renderer) templateName(name string) string {
	if r.theme != nil {
		if override := strings.TrimSpace(r.theme.Partials[PartialPrefix+name]); override != "" {
			return override
		}
	}
	return name
}

func (r *Renderer) render(name string, ctx map[string]any) (string, error) {
	if r == nil || r.engine == nil {
		return "", errors.New("html: renderer is nil")
	}
	out, err := r.engine.RenderTemplate(r.templateName(name), ctx)
	if err != nil {
		return "", fmt.Errorf("html: render %s: %w", name, err)
	}
	return strings.TrimRight(out, "\n"), nil
}
