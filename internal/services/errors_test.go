package services_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"podopt/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "auphonic", "upload", "failed", base)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"auphonic", "upload", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err)
	}
}

type classified struct{ kind string }

func (c classified) Error() string     { return "classified" }
func (c classified) ErrorKind() string { return c.kind }

func TestKind(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"classifier", classified{kind: services.KindNotFound}, services.KindNotFound},
		{"wrapped classifier", fmt.Errorf("outer: %w", classified{kind: services.KindRemote}), services.KindRemote},
		{"empty classifier falls back", services.Wrap(services.ErrValidation, "x", "", "", classified{}), services.KindValidation},
		{"configuration marker", services.Wrap(services.ErrConfiguration, "config", "", "", nil), services.KindConfiguration},
		{"not found marker", services.Wrap(services.ErrNotFound, "catalog", "", "", nil), services.KindNotFound},
		{"timeout marker", services.Wrap(services.ErrTimeout, "auphonic", "", "", nil), services.KindRemote},
		{"plain error", errors.New("disk full"), services.KindInternal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := services.Kind(tc.err); got != tc.want {
				t.Fatalf("Kind() = %q, want %q", got, tc.want)
			}
		})
	}
}
