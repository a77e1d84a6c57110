package insight_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/ergolab/human-factors-backend/internal/insight"
)

// stubCompleter returns a fixed reply or error and records invocations.
type stubCompleter struct {
	reply string
	err   error
	calls int
	last  insight.Request
}

func (s *stubCompleter) Complete(_ context.Context, req insight.Request) (string, error) {
	s.calls++
	s.last = req
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFallback_PrimarySucceeds(t *testing.T) {
	primary := &stubCompleter{reply: "primary analysis"}
	secondary := &stubCompleter{reply: "secondary analysis"}

	fc := insight.NewFallbackCompleter(primary, secondary, discardLogger())
	text, err := fc.Complete(context.Background(), insight.Request{Prompt: "p"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "primary analysis" {
		t.Errorf("got %q, want primary reply", text)
	}
	if secondary.calls != 0 {
		t.Error("secondary should not be called when primary succeeds")
	}
}

func TestFallback_PrimaryFails(t *testing.T) {
	primary := &stubCompleter{err: errors.New("rate limited")}
	secondary := &stubCompleter{reply: "secondary analysis"}

	fc := insight.NewFallbackCompleter(primary, secondary, discardLogger())
	text, err := fc.Complete(context.Background(), insight.Request{Prompt: "p"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "secondary analysis" {
		t.Errorf("got %q, want secondary reply", text)
	}
	if primary.calls != 1 || secondary.calls != 1 {
		t.Errorf("calls = %d/%d, want 1/1", primary.calls, secondary.calls)
	}
}

func TestFallback_NilPrimary(t *testing.T) {
	secondary := &stubCompleter{reply: "secondary analysis"}

	fc := insight.NewFallbackCompleter(nil, secondary, discardLogger())
	text, err := fc.Complete(context.Background(), insight.Request{Prompt: "p"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "secondary analysis" {
		t.Errorf("got %q", text)
	}
}

func TestFallback_NoSecondary(t *testing.T) {
	primaryErr := errors.New("quota exceeded")
	primary := &stubCompleter{err: primaryErr}

	fc := insight.NewFallbackCompleter(primary, nil, discardLogger())
	_, err := fc.Complete(context.Background(), insight.Request{Prompt: "p"})
	if err == nil {
		t.Fatal("expected error when primary fails with no secondary")
	}
	if !errors.Is(err, primaryErr) {
		t.Errorf("error should wrap the primary failure, got %v", err)
	}
}

func TestFallback_BothFail(t *testing.T) {
	primary := &stubCompleter{err: errors.New("primary down")}
	secondaryErr := errors.New("secondary down")
	secondary := &stubCompleter{err: secondaryErr}

	fc := insight.NewFallbackCompleter(primary, secondary, discardLogger())
	_, err := fc.Complete(context.Background(), insight.Request{Prompt: "p"})
	if !errors.Is(err, secondaryErr) {
		t.Errorf("got %v, want the secondary failure", err)
	}
}
