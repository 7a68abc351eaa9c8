package server

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// saveUpload writes the uploaded image to the uploads directory under a
// collision-free name and returns the stored path. The original base name
// is kept as a suffix so stored files stay recognizable.
func (s *Server) saveUpload(filename string, data []byte) (string, error) {
	if err := os.MkdirAll(s.uploadsDir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create uploads directory: %w", err)
	}

	base := sanitizeFilename(filepath.Base(filename))
	name := fmt.Sprintf("%s_%s_%s",
		time.Now().Format("20060102_150405"),
		uuid.NewString()[:8],
		base)

	path := filepath.Join(s.uploadsDir, name)
	if err := os.WriteFile(path, data, 0o640); err != nil {
		return "", fmt.Errorf("failed to write upload: %w", err)
	}
	return path, nil
}

// sanitizeFilename strips path separators and control characters from an
// uploaded file name.
func sanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r == '/' || r == '\\' || r == ':':
			b.WriteRune('_')
		case r < 0x20:
			// skip control characters
		default:
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "upload"
	}
	return b.String()
}
