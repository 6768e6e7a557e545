package errs

import (
	"errors"
	"fmt"
	"testing"
)

func TestWrappedSentinelsAreComparable(t *testing.T) {
	wrapped := fmt.Errorf("reading shm: %w", TransientInput)
	if !errors.Is(wrapped, TransientInput) {
		t.Error("wrapped TransientInput should satisfy errors.Is")
	}
	if errors.Is(wrapped, EmptyDetection) {
		t.Error("wrapped TransientInput should not satisfy errors.Is(EmptyDetection)")
	}
}

func TestSentinelsAreDistinct(t *testing.T) {
	all := []error{TransientInput, EmptyDetection, ModelUnavailable, ConfigMalformed, Downstream}
	for i, a := range all {
		for j, b := range all {
			if i != j && errors.Is(a, b) {
				t.Errorf("sentinel %v should not match %v", a, b)
			}
		}
	}
}
