package services

import (
	"errors"
	"testing"

	"cadenza/internal/catalog"
)

func TestWrapCarriesMarker(t *testing.T) {
	base := errors.New("boom")
	err := Wrap(ErrValidation, "enforcement", "scan", "bad input", base)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("marker lost: %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("cause lost: %v", err)
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := Wrap(nil, "", "", "", nil)
	if !errors.Is(err, ErrTransient) {
		t.Fatalf("expected transient marker: %v", err)
	}
}

func TestFailureStatus(t *testing.T) {
	cases := []struct {
		err  error
		want catalog.Status
	}{
		{Wrap(ErrValidation, "p", "op", "", nil), catalog.StatusReview},
		{Wrap(ErrConfiguration, "p", "op", "", nil), catalog.StatusReview},
		{Wrap(ErrTransient, "p", "op", "", nil), catalog.StatusFailed},
		{errors.New("plain"), catalog.StatusFailed},
	}
	for _, tc := range cases {
		if got := FailureStatus(tc.err); got != tc.want {
			t.Errorf("FailureStatus(%v) = %s, want %s", tc.err, got, tc.want)
		}
	}
}
