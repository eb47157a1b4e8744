package query

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Suggestion is the outcome of one lookup. Failed is set, with Err, when the
// handler returned an error or panicked; Response is then empty.
type Suggestion struct {
	Slot     string
	Seq      uint64
	Request  HandlerRequest
	Response HandlerResponse
	Err      error
	Failed   bool
}

// Option configures a Suggester.
type Option func(*Suggester)

// WithLogger sets the suggester logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Suggester) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// OnApply registers a callback invoked with every suggestion that becomes the
// current one for its slot.
func OnApply(fn func(Suggestion)) Option {
	return func(s *Suggester) {
		s.onApply = fn
	}
}

type slotState struct {
	issued  uint64
	applied uint64
	current Suggestion
	has     bool
}

// Suggester runs value lookups for input slots. Each request gets the next
// sequence number for its slot; a response is applied only when no newer
// request for that slot has already been applied, so the last request to
// resolve among the newest wins and stale lookups are dropped. Identical
// lookups in flight at the same time share one handler call.
type Suggester struct {
	handler ValueHandler
	logger  *zap.Logger
	onApply func(Suggestion)
	group   singleflight.Group

	mu    sync.Mutex
	slots map[string]*slotState
}

// NewSuggester constructs a Suggester around handler.
func NewSuggester(handler ValueHandler, opts ...Option) *Suggester {
	s := &Suggester{
		handler: handler,
		logger:  zap.NewNop(),
		slots:   make(map[string]*slotState),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s
}

// Request runs a lookup for slot and reports whether its result was applied.
// The returned suggestion is this request's own outcome either way.
func (s *Suggester) Request(ctx context.Context, slot string, req HandlerRequest) (Suggestion, bool) {
	seq := s.issue(slot)
	result := Suggestion{Slot: slot, Seq: seq, Request: req}

	resp, err := s.lookup(ctx, req)
	if err != nil {
		result.Err = err
		result.Failed = true
		result.Response = HandlerResponse{Results: []ValueItem{}}
		s.logger.Debug("value lookup failed",
			zap.String("slot", slot), zap.Uint64("seq", seq), zap.Error(err))
	} else {
		result.Response = resp
	}

	if !s.apply(result) {
		s.logger.Debug("stale suggestion dropped",
			zap.String("slot", slot), zap.Uint64("seq", seq))
		return result, false
	}
	if s.onApply != nil {
		s.onApply(result)
	}
	return result, true
}

// Current returns the suggestion currently applied for slot.
func (s *Suggester) Current(slot string) (Suggestion, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.slots[slot]
	if !ok || !state.has {
		return Suggestion{}, false
	}
	return state.current, true
}

// Reset forgets a slot. Responses to requests issued before the reset are
// dropped.
func (s *Suggester) Reset(slot string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if state, ok := s.slots[slot]; ok {
		state.applied = state.issued
		state.current = Suggestion{}
		state.has = false
	}
}

func (s *Suggester) issue(slot string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.slots[slot]
	if !ok {
		state = &slotState{}
		s.slots[slot] = state
	}
	state.issued++
	return state.issued
}

func (s *Suggester) apply(result Suggestion) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.slots[result.Slot]
	if state == nil || result.Seq <= state.applied {
		return false
	}
	state.applied = result.Seq
	state.current = result
	state.has = true
	return true
}

func (s *Suggester) lookup(ctx context.Context, req HandlerRequest) (HandlerResponse, error) {
	if s.handler == nil {
		return HandlerResponse{}, fmt.Errorf("query: no value handler configured")
	}
	// The shared call outlives any single waiter; each waiter still stops on
	// its own ctx below.
	shared := context.WithoutCancel(ctx)
	ch := s.group.DoChan(flightKey(req), func() (any, error) {
		return callHandler(shared, s.handler, req)
	})
	select {
	case <-ctx.Done():
		return HandlerResponse{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return HandlerResponse{}, res.Err
		}
		resp, _ := res.Val.(HandlerResponse)
		resp.Results = append([]ValueItem{}, resp.Results...)
		return resp, nil
	}
}

func callHandler(ctx context.Context, handler ValueHandler, req HandlerRequest) (resp HandlerResponse, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("query: value handler panic: %v", recovered)
		}
	}()
	return handler(ctx, req)
}

func flightKey(req HandlerRequest) string {
	ops := make([]string, len(req.RootKey.Operators))
	for idx, op := range req.RootKey.Operators {
		ops[idx] = op.Name()
	}
	return strings.Join([]string{
		req.RootKey.Name,
		string(req.DataType),
		req.SubPath,
		req.Operator.Name(),
		strings.Join(ops, ","),
		req.InputText,
	}, "\x00")
}
