package services

import (
	"errors"
	"strings"
	"testing"
)

func TestWrapPreservesMarkerAndCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(ErrTransient, "uploader", "write rows", "remote write failed", cause)
	if !errors.Is(err, ErrTransient) {
		t.Fatal("expected transient marker")
	}
	if !errors.Is(err, cause) {
		t.Fatal("expected wrapped cause")
	}
	if !strings.Contains(err.Error(), "uploader: write rows: remote write failed") {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := Wrap(nil, "uploader", "", "", nil)
	if !errors.Is(err, ErrTransient) {
		t.Fatalf("expected transient default, got %v", err)
	}
}

func TestRetryable(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{Wrap(ErrAuthentication, "tabstore", "write rows", "401", nil), false},
		{Wrap(ErrConfiguration, "uploader", "resolve tab", "missing mapping", nil), false},
		{Wrap(ErrNotFound, "tabstore", "clear tab", "404", nil), false},
		{Wrap(ErrRateLimit, "tabstore", "write rows", "429", nil), true},
		{Wrap(ErrParse, "uploader", "parse csv", "bad quoting", nil), true},
		{Wrap(ErrTransient, "tabstore", "write rows", "503", nil), true},
		{errors.New("plain"), true},
	}
	for _, tc := range cases {
		if got := Retryable(tc.err); got != tc.want {
			t.Fatalf("Retryable(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}
