package requestctx

import (
	"context"
	"testing"
)

func TestCallerFromContextRoundTrip(t *testing.T) {
	ctx := WithCaller(context.Background(), Caller{UserID: "user-42", Email: "a@example.com"})
	got := CallerFromContext(ctx)
	if got.UserID != "user-42" || got.Email != "a@example.com" {
		t.Fatalf("CallerFromContext = %+v", got)
	}
	if !got.Authenticated() {
		t.Fatal("expected authenticated caller")
	}
}

func TestCallerFromContextEmpty(t *testing.T) {
	got := CallerFromContext(context.Background())
	if got.Authenticated() {
		t.Fatalf("expected anonymous caller, got %+v", got)
	}
}

func TestCallerFromContextNil(t *testing.T) {
	if got := CallerFromContext(nil); got != (Caller{}) {
		t.Fatalf("expected zero caller for nil context, got %+v", got)
	}
}

func TestWithCallerNilContext(t *testing.T) {
	ctx := WithCaller(nil, Caller{UserID: "user-99"})
	if ctx == nil {
		t.Fatal("expected non-nil context")
	}
	if got := CallerFromContext(ctx); got.UserID != "user-99" {
		t.Fatalf("UserID = %q, want user-99", got.UserID)
	}
}
