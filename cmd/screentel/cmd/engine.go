package cmd

import (
	"github.com/otiai10/gosseract/v2"

	"github.com/screentel/screentel/internal/config"
	"github.com/screentel/screentel/internal/ocr"
	"github.com/screentel/screentel/internal/ocr/tesseract"
)

// buildEngine constructs the Tesseract OCR engine from the loaded
// configuration.
func buildEngine(cfg *config.Config) ocr.Engine {
	tc := tesseract.DefaultConfig()
	if len(cfg.OCR.Languages) > 0 {
		tc.Languages = cfg.OCR.Languages
	}
	tc.PageSegMode = gosseract.PageSegMode(cfg.OCR.PageSegMode)
	tc.DPI = cfg.OCR.DPI
	return tesseract.NewEngine(tc)
}
