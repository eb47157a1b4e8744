package query

import (
	"context"
	"strings"

	"github.com/goliatone/go-dynform/internal/values"
)

// HandlerRequest is the input of a value lookup.
type HandlerRequest struct {
	InputText string      `json:"inputText"`
	RootKey   KeyItem     `json:"rootKey"`
	DataType  KeyDataType `json:"dataType,omitempty"`
	SubPath   string      `json:"subPath,omitempty"`
	Operator  Operator    `json:"operator,omitempty"`
}

// HandlerResponse carries suggested values. DataType and Operators let a
// handler refine the key once it knows more about it.
type HandlerResponse struct {
	Results    []ValueItem `json:"results"`
	TotalCount int         `json:"totalCount,omitempty"`
	DataType   KeyDataType `json:"dataType,omitempty"`
	Operators  []Operator  `json:"operators,omitempty"`
}

// ValueHandler suggests values for a key. Implementations may block; they
// should honour ctx cancellation.
type ValueHandler func(ctx context.Context, req HandlerRequest) (HandlerResponse, error)

// HandlerMap routes lookups to a handler per root key name.
type HandlerMap map[string]ValueHandler

// Handler returns a ValueHandler that dispatches on the request's root key.
// Keys without a handler get an empty response.
func (m HandlerMap) Handler() ValueHandler {
	return func(ctx context.Context, req HandlerRequest) (HandlerResponse, error) {
		handler, ok := m[req.RootKey.Name]
		if !ok || handler == nil {
			return HandlerResponse{}, nil
		}
		return handler(ctx, req)
	}
}

// StaticValueHandler suggests from a fixed list. Items whose label or value
// contains the input (case-insensitively) match; at most limit results are
// returned when limit > 0, while TotalCount reports every match.
func StaticValueHandler(items []ValueItem, limit int) ValueHandler {
	snapshot := append([]ValueItem(nil), items...)
	return func(ctx context.Context, req HandlerRequest) (HandlerResponse, error) {
		if err := ctx.Err(); err != nil {
			return HandlerResponse{}, err
		}
		needle := strings.ToLower(strings.TrimSpace(req.InputText))
		var matches []ValueItem
		for _, item := range snapshot {
			if needle == "" ||
				strings.Contains(strings.ToLower(item.Label), needle) ||
				strings.Contains(strings.ToLower(values.Text(item.Name)), needle) {
				matches = append(matches, item)
			}
		}
		resp := HandlerResponse{TotalCount: len(matches), Results: matches}
		if limit > 0 && len(matches) > limit {
			resp.Results = matches[:limit]
		}
		if resp.Results == nil {
			resp.Results = []ValueItem{}
		}
		return resp, nil
	}
}
