package pipeline

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/screentel/screentel/internal/assembler"
	"github.com/screentel/screentel/internal/classifier"
	"github.com/screentel/screentel/internal/profiler"
	"github.com/screentel/screentel/internal/utils"
)

// Options control per-request behavior of Analyze.
type Options struct {
	// ImagePath is recorded in processing info for traceability.
	ImagePath string
	// Debug attaches intermediate OCR, profiling and selection results
	// to the response.
	Debug bool
}

// Analyze runs the full pipeline on a decoded image and always returns a
// response envelope. Component failures and panics are converted into
// failure responses instead of propagating to the caller.
func (p *Pipeline) Analyze(ctx context.Context, img image.Image, opts Options) (resp *assembler.Response) {
	start := time.Now()
	requestID := uuid.NewString()
	log := slog.With("request_id", requestID)

	defer func() {
		if r := recover(); r != nil {
			log.Error("screenshot analysis panicked", "panic", r)
			resp = assembler.Failure(fmt.Sprintf("internal error: %v", r), time.Now())
			resp.ProcessingInfo = p.processingInfo(requestID, opts.ImagePath, 0, false, 0, start)
		}
	}()

	ocrRes, err := p.engine.Recognize(ctx, img)
	if err != nil {
		log.Error("text recognition failed", "engine", p.engine.Name(), "error", err)
		resp = assembler.Failure(fmt.Sprintf("text recognition failed: %v", err), time.Now())
		resp.ProcessingInfo = p.processingInfo(requestID, opts.ImagePath, 0, false, 0, start)
		return resp
	}

	matches := p.selector.Select(ocrRes.Regions)

	var (
		gray       *image.Gray
		profiles   map[string]profiler.Profile
		candidates []classifier.Candidate
	)
	if len(matches) > 0 {
		gray = utils.ToGray(img)
		profiles = make(map[string]profiler.Profile, len(matches))
		candidates = make([]classifier.Candidate, 0, len(matches))
		for _, m := range matches {
			prof, ok := p.profiler.Profile(gray, m.Region.Box)
			if !ok {
				log.Debug("skipping degenerate carrier region", "operator", m.Label)
				continue
			}
			profiles[m.Label] = prof
			candidates = append(candidates, classifier.Candidate{
				Name:       m.Label,
				Profile:    prof,
				Confidence: m.Region.Confidence,
			})
		}
	}

	sel := p.classifier.Classify(candidates)
	data := p.extractor.Extract(ocrRes.Text, ocrRes.Regions, &sel)

	resp = assembler.Assemble(ocrRes.Text, data, time.Now())
	if rep := assembler.Validate(resp); !rep.Valid {
		log.Warn("analysis produced incomplete record", "errors", rep.Errors)
		resp.ValidationErrors = rep.Errors
	}
	resp.ProcessingInfo = p.processingInfo(
		requestID, opts.ImagePath,
		ocrRes.AverageConfidence(), len(candidates) > 0, len(candidates), start,
	)
	if opts.Debug {
		resp.Debug = &assembler.DebugInfo{
			OCR:       ocrRes,
			Profiles:  profiles,
			Selection: &sel,
		}
	}

	log.Info("screenshot analyzed",
		"operators_detected", len(candidates),
		"active_operator", sel.ActiveOperator,
		"fallback", sel.Fallback,
		"duration", time.Since(start))
	return resp
}

// AnalyzeFile loads an image from disk and analyzes it.
func (p *Pipeline) AnalyzeFile(ctx context.Context, path string, opts Options) (*assembler.Response, error) {
	img, _, err := utils.LoadImage(path)
	if err != nil {
		return nil, err
	}
	if opts.ImagePath == "" {
		opts.ImagePath = path
	}
	return p.Analyze(ctx, img, opts), nil
}

func (p *Pipeline) processingInfo(
	requestID, imagePath string,
	ocrConfidence float64,
	visual bool,
	detected int,
	start time.Time,
) *assembler.ProcessingInfo {
	elapsed := time.Since(start)
	return &assembler.ProcessingInfo{
		ImagePath:               imagePath,
		RequestID:               requestID,
		OCRConfidence:           ocrConfidence,
		VisualAnalysisPerformed: visual,
		OperatorsDetected:       detected,
		DurationMs:              elapsed.Milliseconds(),
		ProcessingTime:          elapsed.String(),
	}
}
