package prompt

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSurveyDriver_InfoWritesToOut(t *testing.T) {
	var out bytes.Buffer
	driver := NewSurveyDriver(&out)
	if err := driver.Info(context.Background(), "Invalid port: must be at least 1"); err != nil {
		t.Fatalf("info: %v", err)
	}
	if got := out.String(); got != "Invalid port: must be at least 1\n" {
		t.Fatalf("unexpected output %q", got)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := driver.Info(ctx, "ignored"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if _, err := driver.Input(ctx, InputConfig{Message: "Name"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestOptionIndices(t *testing.T) {
	options := []string{"low", "medium", "high"}
	if got := indexOf(options, "high"); got != 2 {
		t.Fatalf("indexOf(high) = %d", got)
	}
	if got := indexOf(options, "urgent"); got != -1 {
		t.Fatalf("indexOf(urgent) = %d", got)
	}
	if diff := cmp.Diff([]int{0, 2}, indicesOf(options, []string{"high", "low", "urgent"})); diff != "" {
		t.Fatalf("indicesOf mismatch (-want +got):\n%s", diff)
	}
}
