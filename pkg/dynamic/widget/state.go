package widget

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// State is the load state of a widget.
type State int

// Widget states. Idle is the zero value.
const (
	StateIdle State = iota
	StateLoading
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ErrInvalidTransition is returned when a delivery arrives for a widget that
// is not loading.
var ErrInvalidTransition = errors.New("widget: invalid state transition")

// Loader fetches a widget's data.
type Loader func(ctx context.Context) (any, error)

// Snapshot is a consistent copy of a widget's state.
type Snapshot struct {
	ID    string
	State State
	Seq   uint64
	View  View
	Err   error
}

// WidgetOption configures a Widget.
type WidgetOption func(*Widget)

// WithComposer sets the composer used to build views.
func WithComposer(composer *Composer) WidgetOption {
	return func(w *Widget) {
		if composer != nil {
			w.composer = composer
		}
	}
}

// WithWidgetLogger sets the widget logger.
func WithWidgetLogger(logger *zap.Logger) WidgetOption {
	return func(w *Widget) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// OnChange registers a callback invoked after every applied transition. It
// runs outside the widget lock.
func OnChange(fn func(Snapshot)) WidgetOption {
	return func(w *Widget) {
		w.onChange = fn
	}
}

// Widget tracks one widget through Idle → Loading → Ready|Failed. Every
// Begin issues a new sequence number and supersedes any request in flight;
// a delivery is applied only when it carries the latest number, so a slow
// earlier response can never overwrite a newer one.
type Widget struct {
	id       string
	composer *Composer
	logger   *zap.Logger
	onChange func(Snapshot)

	mu    sync.Mutex
	props Props
	state State
	seq   uint64
	view  View
	err   error
}

// New constructs an idle widget with a fresh instance ID.
func New(props Props, opts ...WidgetOption) *Widget {
	w := &Widget{
		id:     uuid.NewString(),
		logger: zap.NewNop(),
		props:  props,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(w)
	}
	if w.composer == nil {
		w.composer = NewComposer(WithLogger(w.logger))
	}
	w.view, _ = w.composer.Compose(props)
	return w
}

// ID returns the widget instance ID.
func (w *Widget) ID() string {
	return w.id
}

// Begin moves the widget to Loading and returns the request's sequence
// number. It is valid from every state.
func (w *Widget) Begin() uint64 {
	w.mu.Lock()
	w.seq++
	seq := w.seq
	from := w.state
	w.state = StateLoading
	w.err = nil
	props := w.props
	props.Loading = true
	w.view, _ = w.composer.Compose(props)
	snap := w.snapshotLocked()
	w.mu.Unlock()

	w.logger.Debug("widget transition",
		zap.String("widget", w.id), zap.Stringer("from", from), zap.Stringer("to", StateLoading), zap.Uint64("seq", seq))
	w.notify(snap)
	return seq
}

// Deliver applies data for request seq and moves the widget to Ready. It
// returns false when the delivery is stale and was dropped.
func (w *Widget) Deliver(seq uint64, data any) (bool, error) {
	w.mu.Lock()
	if applied, err := w.acceptLocked(seq); !applied {
		w.mu.Unlock()
		return false, err
	}
	w.props.Data = data
	w.props.Loading = false
	view, err := w.composer.Compose(w.props)
	w.view = view
	w.state = StateReady
	if err != nil {
		w.state = StateFailed
		w.err = err
	}
	snap := w.snapshotLocked()
	w.mu.Unlock()

	w.logger.Debug("widget transition",
		zap.String("widget", w.id), zap.Stringer("to", snap.State), zap.Uint64("seq", seq))
	w.notify(snap)
	return true, nil
}

// Fail records err for request seq and moves the widget to Failed. Stale
// failures are dropped like stale deliveries.
func (w *Widget) Fail(seq uint64, cause error) (bool, error) {
	w.mu.Lock()
	if applied, err := w.acceptLocked(seq); !applied {
		w.mu.Unlock()
		return false, err
	}
	if cause == nil {
		cause = errors.New("widget: load failed")
	}
	w.state = StateFailed
	w.err = cause
	w.props.Loading = false
	w.view, _ = w.composer.Compose(w.props)
	w.view.Error = cause.Error()
	snap := w.snapshotLocked()
	w.mu.Unlock()

	w.logger.Warn("widget load failed",
		zap.String("widget", w.id), zap.Uint64("seq", seq), zap.Error(cause))
	w.notify(snap)
	return true, nil
}

func (w *Widget) acceptLocked(seq uint64) (bool, error) {
	if w.state != StateLoading {
		if seq < w.seq {
			w.logger.Debug("stale widget delivery dropped",
				zap.String("widget", w.id), zap.Uint64("seq", seq), zap.Uint64("latest", w.seq))
			return false, nil
		}
		return false, fmt.Errorf("%w: delivery for request %d while %s", ErrInvalidTransition, seq, w.state)
	}
	if seq != w.seq {
		w.logger.Debug("stale widget delivery dropped",
			zap.String("widget", w.id), zap.Uint64("seq", seq), zap.Uint64("latest", w.seq))
		return false, nil
	}
	return true, nil
}

// Load runs loader for a new request and applies its outcome. The returned
// error is the loader's error when that outcome was applied; superseded
// results are discarded silently.
func (w *Widget) Load(ctx context.Context, loader Loader) error {
	seq := w.Begin()
	data, err := callLoader(ctx, loader)
	if err != nil {
		if applied, _ := w.Fail(seq, err); applied {
			return err
		}
		return nil
	}
	_, deliverErr := w.Deliver(seq, data)
	return deliverErr
}

func callLoader(ctx context.Context, loader Loader) (data any, err error) {
	if loader == nil {
		return nil, errors.New("widget: loader is nil")
	}
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("widget: loader panic: %v", recovered)
		}
	}()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return loader(ctx)
}

// Snapshot returns the current state.
func (w *Widget) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshotLocked()
}

// State returns the current state.
func (w *Widget) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

func (w *Widget) snapshotLocked() Snapshot {
	return Snapshot{ID: w.id, State: w.state, Seq: w.seq, View: w.view, Err: w.err}
}

func (w *Widget) notify(snap Snapshot) {
	if w.onChange != nil {
		w.onChange(snap)
	}
}

// LoadAll loads every widget concurrently, at most limit at a time (no limit
// when limit <= 0). A failing widget does not cancel its siblings; the first
// applied error is returned after all loads finish.
func LoadAll(ctx context.Context, widgets []*Widget, limit int, loader func(ctx context.Context, w *Widget) (any, error)) error {
	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for _, w := range widgets {
		w := w
		g.Go(func() error {
			return w.Load(ctx, func(ctx context.Context) (any, error) {
				return loader(ctx, w)
			})
		})
	}
	return g.Wait()
}
