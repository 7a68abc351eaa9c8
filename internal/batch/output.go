package batch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/screentel/screentel/internal/assembler"
)

// writeItemResult writes one analysis response as JSON next to the other
// batch outputs, named after the source image.
func writeItemResult(outputDir, imagePath string, resp *assembler.Response) error {
	if err := os.MkdirAll(outputDir, 0o750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	base := filepath.Base(imagePath)
	name := strings.TrimSuffix(base, filepath.Ext(base)) + ".json"

	raw, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result for %s: %w", imagePath, err)
	}

	if err := os.WriteFile(filepath.Join(outputDir, name), raw, 0o640); err != nil {
		return fmt.Errorf("failed to write result for %s: %w", imagePath, err)
	}
	return nil
}

// FormatJSON renders the aggregated batch result as indented JSON.
func (r *Result) FormatJSON() (string, error) {
	raw, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode batch result: %w", err)
	}
	return string(raw), nil
}

// Summary returns a one-line human readable summary of the run.
func (r *Result) Summary() string {
	return fmt.Sprintf("processed %d images (%d succeeded, %d failed) in %v with %d workers",
		len(r.Items), r.Succeeded, r.Failed, r.Duration.Round(time.Millisecond), r.WorkerCount)
}
