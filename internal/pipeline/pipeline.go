// Package pipeline wires OCR, region profiling, carrier classification and
// field extraction into a single screenshot analysis flow.
package pipeline

import (
	"github.com/screentel/screentel/internal/classifier"
	"github.com/screentel/screentel/internal/extractor"
	"github.com/screentel/screentel/internal/ocr"
	"github.com/screentel/screentel/internal/profiler"
	"github.com/screentel/screentel/internal/regions"
)

// DefaultOperators is the carrier lexicon used when none is configured.
var DefaultOperators = []string{"中国移动", "中国联通", "中国电信", "中国广电"}

// Config holds configuration for the analysis pipeline and its components.
type Config struct {
	Operators  []string
	Profiler   profiler.Config
	Classifier classifier.Config
	Extractor  extractor.Config
}

// DefaultConfig returns a default pipeline config with component defaults.
func DefaultConfig() Config {
	return Config{
		Operators:  DefaultOperators,
		Profiler:   profiler.DefaultConfig(),
		Classifier: classifier.DefaultConfig(),
		Extractor:  extractor.DefaultConfig(),
	}
}

// Builder constructs a Pipeline with fluent configuration.
type Builder struct {
	cfg    Config
	engine ocr.Engine
}

// NewBuilder creates a new pipeline builder with defaults.
func NewBuilder() *Builder { return &Builder{cfg: DefaultConfig()} }

// WithConfig replaces the whole pipeline configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.cfg = cfg
	return b
}

// WithEngine sets the OCR engine. When unset, the registered default
// engine is used.
func (b *Builder) WithEngine(e ocr.Engine) *Builder {
	b.engine = e
	return b
}

// WithOperators overrides the carrier lexicon.
func (b *Builder) WithOperators(names []string) *Builder {
	if len(names) > 0 {
		b.cfg.Operators = names
	}
	return b
}

// WithClassifier overrides the classification thresholds.
func (b *Builder) WithClassifier(cfg classifier.Config) *Builder {
	b.cfg.Classifier = cfg
	return b
}

// WithProfiler overrides the region profiling configuration.
func (b *Builder) WithProfiler(cfg profiler.Config) *Builder {
	b.cfg.Profiler = cfg
	return b
}

// WithExtractor overrides the field extraction configuration.
func (b *Builder) WithExtractor(cfg extractor.Config) *Builder {
	b.cfg.Extractor = cfg
	return b
}

// Pipeline runs the full screenshot analysis flow.
type Pipeline struct {
	cfg        Config
	engine     ocr.Engine
	selector   *regions.Selector
	profiler   *profiler.Profiler
	classifier *classifier.Classifier
	extractor  *extractor.Extractor
}

// Build initializes the pipeline components.
func (b *Builder) Build() (*Pipeline, error) {
	engine := b.engine
	if engine == nil {
		engine = ocr.DefaultEngine()
	}
	if engine == nil {
		return nil, ocr.ErrNoEngine
	}
	if len(b.cfg.Operators) == 0 {
		b.cfg.Operators = DefaultOperators
	}
	return &Pipeline{
		cfg:        b.cfg,
		engine:     engine,
		selector:   regions.NewSelector(b.cfg.Operators),
		profiler:   profiler.New(b.cfg.Profiler),
		classifier: classifier.New(b.cfg.Classifier),
		extractor:  extractor.New(b.cfg.Extractor, b.cfg.Operators),
	}, nil
}

// Config returns the pipeline configuration.
func (p *Pipeline) Config() Config { return p.cfg }

// Operators returns the configured carrier lexicon.
func (p *Pipeline) Operators() []string { return p.selector.Lexicon() }
