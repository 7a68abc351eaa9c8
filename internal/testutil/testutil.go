// Package testutil provides helpers for generating synthetic diagnostic
// screenshots and stub OCR engines in tests.
package testutil

import (
	"context"
	"image"

	"github.com/screentel/screentel/internal/ocr"
)

// StubEngine is an ocr.Engine returning a canned result.
type StubEngine struct {
	Result *ocr.Result
	Err    error
}

// Name implements ocr.Engine.
func (s *StubEngine) Name() string { return "stub" }

// Recognize implements ocr.Engine.
func (s *StubEngine) Recognize(_ context.Context, _ image.Image) (*ocr.Result, error) {
	return s.Result, s.Err
}
