package batch

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/screentel/screentel/internal/assembler"
	"github.com/screentel/screentel/internal/ocr"
	"github.com/screentel/screentel/internal/pipeline"
	"github.com/screentel/screentel/internal/testutil"
)

func stubConfig(engine ocr.Engine) *Config {
	return &Config{
		Workers:         2,
		ContinueOnError: true,
		Pipeline:        pipeline.DefaultConfig(),
		Engine:          engine,
	}
}

func writeScreenshots(t *testing.T, dir string, names ...string) []string {
	t.Helper()
	spec := testutil.DefaultScreenshotSpec()
	paths := make([]string, 0, len(names))
	for _, name := range names {
		paths = append(paths, testutil.WriteScreenshot(t, spec, dir, name))
	}
	return paths
}

func TestProcessNoImages(t *testing.T) {
	engine := &testutil.StubEngine{Result: &ocr.Result{Text: "4G"}}

	_, err := Process(context.Background(), []string{t.TempDir()}, stubConfig(engine))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no image files found")
}

func TestProcessMissingPath(t *testing.T) {
	engine := &testutil.StubEngine{Result: &ocr.Result{Text: "4G"}}

	_, err := Process(context.Background(), []string{"/does/not/exist"}, stubConfig(engine))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot access")
}

func TestProcessDirectory(t *testing.T) {
	dir := t.TempDir()
	writeScreenshots(t, dir, "a.png", "b.png", "c.png")
	// Unsupported extensions are skipped.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))

	spec := testutil.DefaultScreenshotSpec()
	engine := &testutil.StubEngine{Result: &ocr.Result{
		Text:    "中国移动 中国联通 4G",
		Regions: spec.TextRegions(90),
	}}

	result, err := Process(context.Background(), []string{dir}, stubConfig(engine))
	require.NoError(t, err)

	assert.Len(t, result.Items, 3)
	assert.Equal(t, 3, result.Succeeded)
	assert.Zero(t, result.Failed)
	assert.Equal(t, 2, result.WorkerCount)

	// Deterministic input order regardless of worker interleaving.
	assert.Equal(t, filepath.Join(dir, "a.png"), result.Items[0].Path)
	assert.Equal(t, filepath.Join(dir, "c.png"), result.Items[2].Path)

	for _, item := range result.Items {
		require.NotNil(t, item.Response)
		assert.Equal(t, "中国移动", item.Response.Data.StructuredData.SpeedTest.ActiveOperator)
	}
}

func TestProcessRecursive(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "nested")
	writeScreenshots(t, dir, "top.png")
	writeScreenshots(t, sub, "deep.png")

	engine := &testutil.StubEngine{Result: &ocr.Result{Text: "4G"}}

	cfg := stubConfig(engine)
	result, err := Process(context.Background(), []string{dir}, cfg)
	require.NoError(t, err)
	assert.Len(t, result.Items, 1)

	cfg.Recursive = true
	result, err = Process(context.Background(), []string{dir}, cfg)
	require.NoError(t, err)
	assert.Len(t, result.Items, 2)
}

func TestProcessWritesOutputFiles(t *testing.T) {
	dir := t.TempDir()
	writeScreenshots(t, dir, "shot.png")

	outDir := filepath.Join(t.TempDir(), "out")
	engine := &testutil.StubEngine{Result: &ocr.Result{Text: "延迟: 23 ms"}}

	cfg := stubConfig(engine)
	cfg.OutputDir = outDir
	result, err := Process(context.Background(), []string{dir}, cfg)
	require.NoError(t, err)
	require.Equal(t, 1, result.Succeeded)

	raw, err := os.ReadFile(filepath.Join(outDir, "shot.json"))
	require.NoError(t, err)

	var resp assembler.Response
	require.NoError(t, json.Unmarshal(raw, &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "23ms", resp.Data.StructuredData.SpeedTest.Ping)
}

func TestProcessContinueOnError(t *testing.T) {
	dir := t.TempDir()
	writeScreenshots(t, dir, "ok.png")
	// A file with an image extension but invalid content fails to load.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.png"), []byte("junk"), 0o600))

	engine := &testutil.StubEngine{Result: &ocr.Result{Text: "4G"}}

	cfg := stubConfig(engine)
	result, err := Process(context.Background(), []string{dir}, cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, 1, result.Failed)

	cfg.ContinueOnError = false
	_, err = Process(context.Background(), []string{dir}, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.png")
}

func TestResultFormatJSON(t *testing.T) {
	result := &Result{
		Items:       []ItemResult{{Path: "a.png"}},
		Succeeded:   1,
		WorkerCount: 2,
	}

	out, err := result.FormatJSON()
	require.NoError(t, err)
	assert.Contains(t, out, `"a.png"`)

	assert.Contains(t, result.Summary(), "1 succeeded")
}
