package cmd

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/screentel/screentel/internal/batch"
)

// batchCmd represents the batch command.
var batchCmd = &cobra.Command{
	Use:   "batch <path>...",
	Short: "Analyze screenshots in bulk",
	Long: `Analyze multiple screenshots or whole directories in parallel.

Directories are scanned for supported image files. Per-image results are
written next to each other when --output-dir is set, and a combined summary
is printed when done.

Examples:
  screentel batch ./screenshots
  screentel batch ./screenshots --recursive --workers 8
  screentel batch a.png b.png --output-dir results/`,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		printJSON, _ := cmd.Flags().GetBool("json")

		result, err := batch.Process(cmd.Context(), args, &batch.Config{
			Workers:         cfg.Batch.Workers,
			Recursive:       cfg.Batch.Recursive,
			ContinueOnError: cfg.Batch.ContinueOnError,
			OutputDir:       cfg.Batch.OutputDir,
			Pipeline:        cfg.ToPipelineConfig(),
			Engine:          buildEngine(cfg),
		})
		if err != nil {
			return err
		}

		if printJSON {
			out, err := result.FormatJSON()
			if err != nil {
				return fmt.Errorf("failed to encode batch result: %w", err)
			}
			fmt.Println(out)
		} else {
			fmt.Fprintln(os.Stderr, result.Summary())
		}

		if result.Failed > 0 && !cfg.Batch.ContinueOnError {
			return errors.New("batch processing finished with failures")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntP("workers", "w", runtime.NumCPU(), "number of parallel workers")
	batchCmd.Flags().BoolP("recursive", "r", false, "recurse into subdirectories")
	batchCmd.Flags().Bool("continue-on-error", true, "keep going when one image fails")
	batchCmd.Flags().String("output-dir", "", "write per-image JSON results into this directory")
	batchCmd.Flags().Bool("json", false, "print the combined result as JSON instead of a summary")

	_ = viper.BindPFlag("batch.workers", batchCmd.Flags().Lookup("workers"))
	_ = viper.BindPFlag("batch.recursive", batchCmd.Flags().Lookup("recursive"))
	_ = viper.BindPFlag("batch.continue_on_error", batchCmd.Flags().Lookup("continue-on-error"))
	_ = viper.BindPFlag("batch.output_dir", batchCmd.Flags().Lookup("output-dir"))
}
