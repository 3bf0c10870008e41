package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindOfUnwrapsChain(t *testing.T) {
	base := New(Conflict, "team name already exists")
	wrapped := fmt.Errorf("create team: %w", base)

	if got := KindOf(wrapped); got != Conflict {
		t.Fatalf("expected %q, got %q", Conflict, got)
	}
	if !Is(wrapped, Conflict) {
		t.Fatalf("expected wrapped error to be a conflict")
	}
	if !errors.Is(wrapped, base) {
		t.Fatalf("expected errors.Is to match the sentinel")
	}
	if Is(wrapped, NotFound) {
		t.Fatalf("conflict must not match not_found")
	}
}

func TestKindOfPlainError(t *testing.T) {
	if got := KindOf(errors.New("disk full")); got != "" {
		t.Fatalf("expected empty kind, got %q", got)
	}
	if Is(nil, NotFound) {
		t.Fatalf("nil error must not match any kind")
	}
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		NotFound:        http.StatusNotFound,
		Conflict:        http.StatusConflict,
		InvalidState:    http.StatusConflict,
		Forbidden:       http.StatusForbidden,
		SelfReference:   http.StatusBadRequest,
		Invalid:         http.StatusBadRequest,
		Unauthenticated: http.StatusUnauthorized,
		Kind("other"):   http.StatusInternalServerError,
	}
	for kind, want := range cases {
		if got := kind.HTTPStatus(); got != want {
			t.Fatalf("kind %q: expected %d, got %d", kind, want, got)
		}
	}
}
