package main

import (
	"fmt"
	"testing"

	pnerrors "github.com/matzehuels/prodnet/pkg/errors"
)

func TestErrorMessage(t *testing.T) {
	singular := pnerrors.New(pnerrors.ErrCodeSingularMatrix, "I - A is singular")

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"plain", fmt.Errorf("boom"), "boom"},
		{"coded", singular, "I - A is singular"},
		{"staged", pnerrors.AtStage("upstreamness", singular), "upstreamness: I - A is singular"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errorMessage(tt.err); got != tt.want {
				t.Errorf("errorMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}
