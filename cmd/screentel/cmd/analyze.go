package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/screentel/screentel/internal/assembler"
	"github.com/screentel/screentel/internal/pipeline"
)

const (
	outputFormatJSON = "json"
	outputFormatText = "text"
)

// analyzeCmd represents the analyze command.
var analyzeCmd = &cobra.Command{
	Use:   "analyze <image>",
	Short: "Analyze a diagnostic screenshot",
	Long: `Analyze a single mobile-network diagnostic screenshot.

The image is run through OCR, carrier regions are profiled and classified,
and the extracted network telemetry is printed as structured output.

Supported formats: JPEG, PNG, BMP, TIFF

Examples:
  screentel analyze screenshot.png
  screentel analyze screenshot.png --format text
  screentel analyze screenshot.png --debug --output result.json`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		format := cfg.Output.Format
		if format != outputFormatJSON && format != outputFormatText {
			return fmt.Errorf("invalid output format: %s (must be one of: %s)",
				format, strings.Join([]string{outputFormatJSON, outputFormatText}, ", "))
		}

		debug, _ := cmd.Flags().GetBool("debug")

		pl, err := pipeline.NewBuilder().
			WithConfig(cfg.ToPipelineConfig()).
			WithEngine(buildEngine(cfg)).
			Build()
		if err != nil {
			return fmt.Errorf("failed to build analysis pipeline: %w", err)
		}

		resp, err := pl.AnalyzeFile(cmd.Context(), args[0], pipeline.Options{
			ImagePath: args[0],
			Debug:     debug,
		})
		if err != nil {
			return err
		}

		out, err := formatResponse(resp, format, cfg.Output.Pretty)
		if err != nil {
			return err
		}
		if err := writeOutput(out, cfg.Output.File); err != nil {
			return err
		}

		if !resp.Success {
			return errors.New(resp.Error)
		}
		return nil
	},
}

func formatResponse(resp *assembler.Response, format string, pretty bool) (string, error) {
	if format == outputFormatText {
		return formatResponseText(resp), nil
	}

	var (
		data []byte
		err  error
	)
	if pretty {
		data, err = json.MarshalIndent(resp, "", "  ")
	} else {
		data, err = json.Marshal(resp)
	}
	if err != nil {
		return "", fmt.Errorf("failed to encode response: %w", err)
	}
	return string(data) + "\n", nil
}

func formatResponseText(resp *assembler.Response) string {
	var b strings.Builder
	if !resp.Success {
		fmt.Fprintf(&b, "analysis failed: %s\n", resp.Error)
		return b.String()
	}

	data := resp.Data.StructuredData
	net := data.NetworkInfo
	speed := data.SpeedTest

	if net.Operator != "" {
		fmt.Fprintf(&b, "Operator:      %s\n", net.Operator)
	}
	if net.NetworkType != "" {
		fmt.Fprintf(&b, "Network type:  %s\n", net.NetworkType)
	}
	if net.Location != "" {
		fmt.Fprintf(&b, "Location:      %s\n", net.Location)
	}
	if sig := net.SignalStrength; sig != nil {
		fmt.Fprintf(&b, "Signal:        RSRP=%s RSRQ=%s SINR=%s\n", sig.RSRP, sig.RSRQ, sig.SINR)
	}
	if speed.Ping != "" {
		fmt.Fprintf(&b, "Ping:          %s\n", speed.Ping)
	}
	if speed.Download != "" {
		fmt.Fprintf(&b, "Download:      %s\n", speed.Download)
	}
	if speed.Upload != "" {
		fmt.Fprintf(&b, "Upload:        %s\n", speed.Upload)
	}
	if speed.ActiveOperator != "" {
		fmt.Fprintf(&b, "Active:        %s\n", speed.ActiveOperator)
	}
	for _, state := range speed.CarrierStates {
		fmt.Fprintf(&b, "  %-10s %s (brightness %.1f)\n", state.Name, state.Status, state.Brightness)
	}
	if len(resp.ValidationErrors) > 0 {
		fmt.Fprintf(&b, "Validation:    %s\n", strings.Join(resp.ValidationErrors, "; "))
	}
	return b.String()
}

func writeOutput(data, outputFile string) error {
	if outputFile == "" {
		fmt.Print(data)
		return nil
	}
	if err := os.WriteFile(outputFile, []byte(data), 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringP("format", "f", outputFormatJSON, "output format (json, text)")
	analyzeCmd.Flags().StringP("output", "o", "", "output file (default is stdout)")
	analyzeCmd.Flags().Bool("pretty", true, "pretty-print JSON output")
	analyzeCmd.Flags().Bool("debug", false, "include per-region profiles in the output")

	_ = viper.BindPFlag("output.format", analyzeCmd.Flags().Lookup("format"))
	_ = viper.BindPFlag("output.file", analyzeCmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("output.pretty", analyzeCmd.Flags().Lookup("pretty"))
}
