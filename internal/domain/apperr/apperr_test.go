package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindOf(t *testing.T) {
	err := New(CapacityExceeded, "event %q is full", "Keynote")
	if KindOf(err) != CapacityExceeded {
		t.Fatalf("expected CapacityExceeded, got %v", KindOf(err))
	}
	if !Is(err, CapacityExceeded) {
		t.Fatal("Is should match the kind")
	}
	if Is(err, NotFound) {
		t.Fatal("Is should not match a different kind")
	}
}

func TestKindOfWrapped(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("register: %w", Wrap(Internal, cause, "store unreachable"))
	if KindOf(err) != Internal {
		t.Fatalf("expected Internal through wrapping, got %v", KindOf(err))
	}
	if !errors.Is(err, cause) {
		t.Fatal("cause should survive unwrapping")
	}
}

func TestKindOfUntyped(t *testing.T) {
	if KindOf(errors.New("plain")) != Unknown {
		t.Fatal("plain errors should report Unknown")
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{NotFound, http.StatusNotFound},
		{ValidationError, http.StatusBadRequest},
		{InvalidRole, http.StatusBadRequest},
		{Forbidden, http.StatusForbidden},
		{CapacityExceeded, http.StatusConflict},
		{TimeConflict, http.StatusConflict},
		{LastMember, http.StatusConflict},
		{Timeout, http.StatusGatewayTimeout},
		{Internal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := HTTPStatus(New(tt.kind, "x")); got != tt.want {
			t.Fatalf("kind %v: expected %d, got %d", tt.kind, tt.want, got)
		}
	}
	if HTTPStatus(errors.New("plain")) != http.StatusInternalServerError {
		t.Fatal("untyped errors should map to 500")
	}
}
