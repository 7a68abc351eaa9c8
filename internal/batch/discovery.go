package batch

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/screentel/screentel/internal/utils"
)

// discoverImageFiles expands the argument list into the set of supported
// image files, sorted for deterministic processing order.
func discoverImageFiles(args []string, recursive bool) ([]string, error) {
	var files []string

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", arg, err)
		}

		if info.IsDir() {
			found, err := discoverInDirectory(arg, recursive)
			if err != nil {
				return nil, err
			}
			files = append(files, found...)
			continue
		}

		if utils.IsSupportedImage(arg) {
			files = append(files, arg)
		}
	}

	sort.Strings(files)
	return files, nil
}

func discoverInDirectory(dir string, recursive bool) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if !recursive && path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		if utils.IsSupportedImage(path) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
