package query

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var regionKey = KeyItem{Label: "Region", Name: "region", DataType: DataTypeString}

// gatedHandler blocks each lookup until the test releases the gate for its
// input text.
type gatedHandler struct {
	mu    sync.Mutex
	gates map[string]chan struct{}
	calls atomic.Int32
}

func newGatedHandler(inputs ...string) *gatedHandler {
	h := &gatedHandler{gates: make(map[string]chan struct{})}
	for _, input := range inputs {
		h.gates[input] = make(chan struct{})
	}
	return h
}

func (h *gatedHandler) release(input string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	close(h.gates[input])
}

func (h *gatedHandler) handle(ctx context.Context, req HandlerRequest) (HandlerResponse, error) {
	h.calls.Add(1)
	h.mu.Lock()
	gate := h.gates[req.InputText]
	h.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return HandlerResponse{}, ctx.Err()
		}
	}
	return HandlerResponse{
		Results:    []ValueItem{{Label: req.InputText + "-result", Name: req.InputText}},
		TotalCount: 1,
	}, nil
}

func TestSuggester_StaleResponseDropped(t *testing.T) {
	handler := newGatedHandler("a", "ab")
	s := NewSuggester(handler.handle)
	ctx := context.Background()

	type outcome struct {
		suggestion Suggestion
		applied    bool
	}
	first := make(chan outcome, 1)
	go func() {
		sug, applied := s.Request(ctx, "search", HandlerRequest{InputText: "a", RootKey: regionKey})
		first <- outcome{sug, applied}
	}()
	require.Eventually(t, func() bool { return handler.calls.Load() == 1 }, time.Second, time.Millisecond)

	second := make(chan outcome, 1)
	go func() {
		sug, applied := s.Request(ctx, "search", HandlerRequest{InputText: "ab", RootKey: regionKey})
		second <- outcome{sug, applied}
	}()
	require.Eventually(t, func() bool { return handler.calls.Load() == 2 }, time.Second, time.Millisecond)

	handler.release("ab")
	got := <-second
	assert.True(t, got.applied)
	assert.Equal(t, uint64(2), got.suggestion.Seq)

	handler.release("a")
	late := <-first
	assert.False(t, late.applied)
	assert.Equal(t, uint64(1), late.suggestion.Seq)

	current, ok := s.Current("search")
	require.True(t, ok)
	assert.Equal(t, "ab", current.Request.InputText)
	assert.Equal(t, "ab-result", current.Response.Results[0].Label)
}

func TestSuggester_InOrderResponsesBothApply(t *testing.T) {
	var applied []string
	s := NewSuggester(StaticValueHandler([]ValueItem{{Label: "us-east", Name: "us-east"}, {Label: "eu-west", Name: "eu-west"}}, 0),
		OnApply(func(sug Suggestion) { applied = append(applied, sug.Request.InputText) }))

	_, ok := s.Request(context.Background(), "search", HandlerRequest{InputText: "u"})
	require.True(t, ok)
	sug, ok := s.Request(context.Background(), "search", HandlerRequest{InputText: "us"})
	require.True(t, ok)
	assert.Equal(t, []string{"u", "us"}, applied)
	assert.Len(t, sug.Response.Results, 1)
}

func TestSuggester_SlotsAreIndependent(t *testing.T) {
	s := NewSuggester(StaticValueHandler([]ValueItem{{Label: "x", Name: "x"}}, 0))
	_, ok := s.Request(context.Background(), "left", HandlerRequest{InputText: "x"})
	require.True(t, ok)
	sug, ok := s.Request(context.Background(), "right", HandlerRequest{InputText: "x"})
	require.True(t, ok)
	assert.Equal(t, uint64(1), sug.Seq)
}

func TestSuggester_ErrorBecomesEmptyFailedResult(t *testing.T) {
	s := NewSuggester(func(context.Context, HandlerRequest) (HandlerResponse, error) {
		return HandlerResponse{}, errors.New("backend down")
	})
	sug, applied := s.Request(context.Background(), "search", HandlerRequest{InputText: "a"})
	assert.True(t, applied)
	assert.True(t, sug.Failed)
	assert.EqualError(t, sug.Err, "backend down")
	assert.NotNil(t, sug.Response.Results)
	assert.Empty(t, sug.Response.Results)
}

func TestSuggester_PanicBecomesFailedResult(t *testing.T) {
	s := NewSuggester(func(context.Context, HandlerRequest) (HandlerResponse, error) {
		panic("nil map")
	})
	sug, applied := s.Request(context.Background(), "search", HandlerRequest{InputText: "a"})
	assert.True(t, applied)
	assert.True(t, sug.Failed)
	assert.Contains(t, sug.Err.Error(), "nil map")
}

func TestSuggester_ContextCancelled(t *testing.T) {
	handler := newGatedHandler("slow")
	s := NewSuggester(handler.handle)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan Suggestion, 1)
	go func() {
		sug, _ := s.Request(ctx, "search", HandlerRequest{InputText: "slow"})
		done <- sug
	}()
	require.Eventually(t, func() bool { return handler.calls.Load() == 1 }, time.Second, time.Millisecond)
	cancel()
	sug := <-done
	assert.True(t, sug.Failed)
	assert.ErrorIs(t, sug.Err, context.Canceled)
	handler.release("slow")
}

func TestSuggester_SharedLookupIgnoresOtherCallersCancel(t *testing.T) {
	handler := newGatedHandler("dup")
	s := NewSuggester(handler.handle)
	req := HandlerRequest{InputText: "dup", RootKey: regionKey}

	leftCtx, cancelLeft := context.WithCancel(context.Background())
	left := make(chan Suggestion, 1)
	go func() {
		sug, _ := s.Request(leftCtx, "left", req)
		left <- sug
	}()
	require.Eventually(t, func() bool { return handler.calls.Load() == 1 }, time.Second, time.Millisecond)

	right := make(chan Suggestion, 1)
	go func() {
		sug, _ := s.Request(context.Background(), "right", req)
		right <- sug
	}()
	// Let the second request join the flight started by the first.
	time.Sleep(20 * time.Millisecond)

	cancelLeft()
	cancelled := <-left
	assert.True(t, cancelled.Failed)
	assert.ErrorIs(t, cancelled.Err, context.Canceled)

	handler.release("dup")
	got := <-right
	assert.False(t, got.Failed)
	require.NoError(t, got.Err)
	require.Len(t, got.Response.Results, 1)
	assert.Equal(t, "dup-result", got.Response.Results[0].Label)
	assert.Equal(t, int32(1), handler.calls.Load())

	current, ok := s.Current("right")
	require.True(t, ok)
	assert.False(t, current.Failed)
}

func TestSuggester_DeduplicatesIdenticalLookups(t *testing.T) {
	handler := newGatedHandler("dup")
	s := NewSuggester(handler.handle)
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make([]Suggestion, 2)
	for idx, slot := range []string{"left", "right"} {
		idx, slot := idx, slot
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[idx], _ = s.Request(ctx, slot, HandlerRequest{InputText: "dup", RootKey: regionKey})
		}()
	}
	require.Eventually(t, func() bool { return handler.calls.Load() == 1 }, time.Second, time.Millisecond)
	// Give the second request time to join the flight before releasing it.
	time.Sleep(20 * time.Millisecond)
	handler.release("dup")
	wg.Wait()

	assert.Equal(t, int32(1), handler.calls.Load())
	assert.Equal(t, results[0].Response, results[1].Response)
}

func TestSuggester_Reset(t *testing.T) {
	s := NewSuggester(StaticValueHandler([]ValueItem{{Label: "x", Name: "x"}}, 0))
	_, ok := s.Request(context.Background(), "search", HandlerRequest{InputText: "x"})
	require.True(t, ok)
	s.Reset("search")
	_, ok = s.Current("search")
	assert.False(t, ok)
}

func TestSuggester_NoHandler(t *testing.T) {
	sug, applied := NewSuggester(nil).Request(context.Background(), "search", HandlerRequest{})
	assert.True(t, applied)
	assert.True(t, sug.Failed)
}

func TestStaticValueHandler(t *testing.T) {
	handler := StaticValueHandler([]ValueItem{
		{Label: "Seoul", Name: "ap-northeast-2"},
		{Label: "Tokyo", Name: "ap-northeast-1"},
		{Label: "Virginia", Name: "us-east-1"},
	}, 1)
	resp, err := handler(context.Background(), HandlerRequest{InputText: "NORTHEAST"})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.TotalCount)
	assert.Equal(t, []ValueItem{{Label: "Seoul", Name: "ap-northeast-2"}}, resp.Results)

	resp, err = handler(context.Background(), HandlerRequest{InputText: "mars"})
	require.NoError(t, err)
	assert.Empty(t, resp.Results)
	assert.NotNil(t, resp.Results)
}

func TestHandlerMap(t *testing.T) {
	m := HandlerMap{"region": StaticValueHandler([]ValueItem{{Label: "x", Name: "x"}}, 0)}
	resp, err := m.Handler()(context.Background(), HandlerRequest{RootKey: regionKey})
	require.NoError(t, err)
	assert.Len(t, resp.Results, 1)

	resp, err = m.Handler()(context.Background(), HandlerRequest{RootKey: KeyItem{Name: "other"}})
	require.NoError(t, err)
	assert.Empty(t, resp.Results)
}
