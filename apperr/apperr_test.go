package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsMatchesKindAndCode(t *testing.T) {
	err := Validation(CodeSizeExceeded, "too big: %d", 11)

	if !errors.Is(err, ErrValidation) {
		t.Fatalf("errors.Is(err, ErrValidation) = false, want true")
	}
	if !errors.Is(err, ErrSizeExceeded) {
		t.Fatalf("errors.Is(err, ErrSizeExceeded) = false, want true")
	}
	if errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("errors.Is(err, ErrUnsupportedType) = true, want false")
	}
	if errors.Is(err, ErrNetwork) {
		t.Fatalf("errors.Is(err, ErrNetwork) = true, want false")
	}
}

func TestIsThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("uploading: %w", Backend(500, "boom"))
	if !errors.Is(wrapped, ErrBackend) {
		t.Fatalf("wrapped backend error not matched")
	}
	if got := KindOf(wrapped); got != KindBackend {
		t.Fatalf("KindOf() = %v, want %v", got, KindBackend)
	}
	if got := Detail(wrapped); got != "boom" {
		t.Fatalf("Detail() = %q, want %q", got, "boom")
	}
}

func TestBackendEmptyDetail(t *testing.T) {
	err := Backend(502, "")
	if err.Message != GenericBackendMessage {
		t.Fatalf("Message = %q, want %q", err.Message, GenericBackendMessage)
	}
	if err.Status != 502 {
		t.Fatalf("Status = %d, want 502", err.Status)
	}
}

func TestNetworkUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Network(cause)
	if !errors.Is(err, cause) {
		t.Fatalf("network error does not unwrap to its cause")
	}
	if got := err.Error(); got != "backend unreachable: connection refused" {
		t.Fatalf("Error() = %q", got)
	}
}

func TestKindOfForeignError(t *testing.T) {
	if got := KindOf(errors.New("x")); got != KindUnknown {
		t.Fatalf("KindOf(foreign) = %v, want unknown", got)
	}
	if got := Detail(nil); got != "" {
		t.Fatalf("Detail(nil) = %q, want empty", got)
	}
}
