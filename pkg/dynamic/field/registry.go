package field

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-dynform/internal/values"
)

var (
	// ErrUnsupportedFieldType is returned when a type tag has no handler.
	ErrUnsupportedFieldType = errors.New("field: unsupported field type")
	// ErrInvalidValue marks a value the handler could not interpret.
	ErrInvalidValue = errors.New("field: invalid value")
	// ErrInvalidHandler rejects empty tags and nil handlers at registration.
	ErrInvalidHandler = errors.New("field: invalid handler registration")
)

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for degraded resolutions.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithTimezone sets the location datetime fields render in when the field does
// not carry a timezone option.
func WithTimezone(loc *time.Location) Option {
	return func(r *Registry) {
		if loc != nil {
			r.location = loc
		}
	}
}

// WithHandler registers an additional handler, replacing a built-in with the
// same tag.
func WithHandler(t Type, h Handler) Option {
	return func(r *Registry) {
		_ = r.Register(t, h)
	}
}

// Registry maps type tags to handlers. Built-ins are registered on
// construction; registration is safe to call concurrently with resolution.
type Registry struct {
	mu       sync.RWMutex
	handlers map[Type]Handler
	logger   *zap.Logger
	location *time.Location
}

// NewRegistry constructs a registry with the built-in handlers registered.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		handlers: make(map[Type]Handler),
		logger:   zap.NewNop(),
		location: time.UTC,
	}
	r.registerBuiltins()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(r)
	}
	return r
}

// Register binds a handler to a type tag. The latest registration wins.
func (r *Registry) Register(t Type, h Handler) error {
	trimmed := Type(strings.TrimSpace(string(t)))
	if trimmed == "" || h == nil {
		return ErrInvalidHandler
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[trimmed] = h
	return nil
}

// Has reports whether a handler is registered for t.
func (r *Registry) Has(t Type) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.handlers[t]
	return ok
}

// Types lists the registered tags in sorted order.
func (r *Registry) Types() []Type {
	r.mu.RLock()
	out := make([]Type, 0, len(r.handlers))
	for t := range r.handlers {
		out = append(out, t)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Resolve returns the handler for t. Unknown tags return the raw handler
// together with an error wrapping ErrUnsupportedFieldType, so callers can
// still render something.
func (r *Registry) Resolve(t Type) (Handler, error) {
	r.mu.RLock()
	h, ok := r.handlers[t]
	raw := r.handlers[TypeRaw]
	r.mu.RUnlock()
	if ok {
		return h, nil
	}
	if raw == nil {
		raw = rawHandler{}
	}
	return raw, fmt.Errorf("%w: %q", ErrUnsupportedFieldType, t)
}

// Render resolves value through the field's handler. It never fails: an
// unsupported tag, a value the handler rejects, or a handler panic is recorded
// on the result while the display falls back to something printable.
func (r *Registry) Render(f Field, value any) Resolved {
	resolved := Resolved{Field: f, Label: f.Label(), Value: value}
	handler, err := r.Resolve(f.Type)
	if err != nil {
		r.logger.Debug("unsupported field type",
			zap.String("key", f.Key), zap.String("type", string(f.Type)))
		resolved.Err = err
	}

	display, binding, callErr := safeCall(handler, value, f.Options)
	if callErr != nil {
		r.logger.Debug("field handler failed",
			zap.String("key", f.Key), zap.String("type", string(f.Type)), zap.Error(callErr))
		if resolved.Err == nil {
			resolved.Err = callErr
		}
		if display.Text == "" {
			display = textDisplay(f.Type, value)
		}
	}
	if display.Type == "" {
		display.Type = f.Type
	}
	resolved.Display = decorate(display, value, f.Options)
	resolved.Binding = binding
	if resolved.Binding.Control == "" {
		resolved.Binding = inputBinding(value, f.Options)
	}
	if resolved.Err != nil {
		resolved.Error = resolved.Err.Error()
	}
	return resolved
}

// RenderFrom reads the field's key from data before rendering.
func (r *Registry) RenderFrom(f Field, data any) Resolved {
	return r.Render(f, f.Lookup(data))
}

// RenderAll renders each field against data, preserving order. A failing field
// never affects its siblings.
func (r *Registry) RenderAll(fields []Field, data any) []Resolved {
	out := make([]Resolved, len(fields))
	for idx, f := range fields {
		out[idx] = r.RenderFrom(f, data)
	}
	return out
}

func (r *Registry) timezone(opts Options) *time.Location {
	if name := strings.TrimSpace(opts.String("timezone")); name != "" {
		if loc, err := time.LoadLocation(name); err == nil {
			return loc
		}
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.location
}

func safeCall(h Handler, value any, opts Options) (display Display, binding Binding, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("field: handler panic: %v", recovered)
		}
	}()
	if values.IsEmpty(value) {
		display = Display{Empty: true}
	} else {
		display, err = h.DisplayData(value, opts)
	}
	binding = h.FormBinding(value, opts)
	return display, binding, err
}

// decorate applies the options every field type shares: default for empty
// values, prefix and postfix around the text, and link.
func decorate(d Display, value any, opts Options) Display {
	if d.Empty || values.IsEmpty(value) {
		d.Empty = true
		d.Text = opts.String("default")
		return d
	}
	if d.Text != "" {
		d.Text = opts.String("prefix") + d.Text + opts.String("postfix")
	}
	if link := opts.String("link"); link != "" && d.Link == "" {
		d.Link = link
	}
	return d
}

func (r *Registry) registerBuiltins() {
	text := textHandler{}
	r.handlers[TypeText] = text
	r.handlers[TypeString] = text
	r.handlers[TypeNumber] = numberHandler{}
	r.handlers[TypeBadge] = badgeHandler{}
	r.handlers[TypeDatetime] = datetimeHandler{registry: r}
	r.handlers[TypeEnum] = enumHandler{registry: r}
	r.handlers[TypeList] = listHandler{registry: r}
	r.handlers[TypeTags] = tagsHandler{}
	r.handlers[TypeDict] = dictHandler{}
	r.handlers[TypeSize] = sizeHandler{}
	r.handlers[TypeState] = stateHandler{}
	r.handlers[TypeMarkdown] = newMarkdownHandler()
	r.handlers[TypeRaw] = rawHandler{}
}
