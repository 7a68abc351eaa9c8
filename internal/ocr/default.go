package ocr

import (
	"errors"
	"sync"
)

// ErrNoEngine is returned when recognition is attempted without a registered
// engine. Import the tesseract subpackage (or call SetDefaultEngine) to
// install one.
var ErrNoEngine = errors.New("ocr: no engine registered")

var (
	defaultMu     sync.RWMutex
	defaultEngine Engine
)

// SetDefaultEngine installs the process-wide default OCR engine. Providers
// call this from init; callers may override it for testing.
func SetDefaultEngine(e Engine) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultEngine = e
}

// DefaultEngine returns the registered default engine, or nil when none is
// installed.
func DefaultEngine() Engine {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultEngine
}
