// Package batch runs the screenshot analysis pipeline over directories of
// images with a bounded worker pool.
package batch

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/screentel/screentel/internal/assembler"
	"github.com/screentel/screentel/internal/ocr"
	"github.com/screentel/screentel/internal/pipeline"
)

// Config controls a batch run.
type Config struct {
	Workers         int
	Recursive       bool
	ContinueOnError bool
	OutputDir       string
	Pipeline        pipeline.Config
	Engine          ocr.Engine // optional; nil selects the registered default
}

// ItemResult is the outcome for a single image.
type ItemResult struct {
	Path     string              `json:"path"`
	Response *assembler.Response `json:"response,omitempty"`
	Error    string              `json:"error,omitempty"`
}

// Result aggregates a batch run.
type Result struct {
	Items       []ItemResult  `json:"items"`
	Succeeded   int           `json:"succeeded"`
	Failed      int           `json:"failed"`
	Duration    time.Duration `json:"duration_ns"`
	WorkerCount int           `json:"worker_count"`
}

// Process analyzes all images found under the given paths. Files and
// directories may be mixed; directories are scanned for supported image
// extensions.
func Process(ctx context.Context, paths []string, cfg *Config) (*Result, error) {
	files, err := discoverImageFiles(paths, cfg.Recursive)
	if err != nil {
		return nil, fmt.Errorf("failed to discover image files: %w", err)
	}
	if len(files) == 0 {
		return nil, errors.New("no image files found")
	}

	pl, err := pipeline.NewBuilder().
		WithConfig(cfg.Pipeline).
		WithEngine(cfg.Engine).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build analysis pipeline: %w", err)
	}

	workers := cfg.Workers
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	if workers > len(files) {
		workers = len(files)
	}

	start := time.Now()
	items, err := processParallel(ctx, pl, files, workers, cfg.ContinueOnError, cfg.OutputDir)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Items:       items,
		Duration:    time.Since(start),
		WorkerCount: workers,
	}
	for _, item := range items {
		if item.Error == "" && item.Response != nil && item.Response.Success {
			result.Succeeded++
		} else {
			result.Failed++
		}
	}
	return result, nil
}

// processParallel fans the file list out over a worker pool. Results keep
// the input order.
func processParallel(
	ctx context.Context,
	pl *pipeline.Pipeline,
	files []string,
	workers int,
	continueOnError bool,
	outputDir string,
) ([]ItemResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type job struct {
		index int
		path  string
	}

	jobs := make(chan job)
	items := make([]ItemResult, len(files))

	var (
		wg       sync.WaitGroup
		firstErr error
		errOnce  sync.Once
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				item := processOne(ctx, pl, j.path, outputDir)
				items[j.index] = item
				if item.Error != "" && !continueOnError {
					errOnce.Do(func() {
						firstErr = fmt.Errorf("processing %s: %s", j.path, item.Error)
						cancel()
					})
					return
				}
			}
		}()
	}

	for i, path := range files {
		select {
		case jobs <- job{index: i, path: path}:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := context.Cause(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return nil, err
	}
	return items, nil
}

func processOne(ctx context.Context, pl *pipeline.Pipeline, path, outputDir string) ItemResult {
	resp, err := pl.AnalyzeFile(ctx, path, pipeline.Options{})
	if err != nil {
		return ItemResult{Path: path, Error: err.Error()}
	}

	item := ItemResult{Path: path, Response: resp}
	if outputDir != "" {
		if err := writeItemResult(outputDir, path, resp); err != nil {
			item.Error = err.Error()
		}
	}
	return item
}
