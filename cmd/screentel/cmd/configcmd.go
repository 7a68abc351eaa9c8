package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/screentel/screentel/internal/config"
)

// configCmd groups configuration helpers.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and manage configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init [file]",
	Short: "Write a config file with default values",
	Long: `Write a configuration file populated with the default values.

Without an argument the file is written to ./screentel.yaml.`,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "screentel.yaml"
		if len(args) == 1 {
			path = args[0]
		}
		if err := config.GenerateDefaultConfigFile(path); err != nil {
			return fmt.Errorf("failed to write config file: %w", err)
		}
		fmt.Printf("wrote %s\n", path)
		return nil
	},
}

var configPathsCmd = &cobra.Command{
	Use:          "paths",
	Short:        "Show the config file search paths",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if used := GetConfigLoader().GetConfigFileUsed(); used != "" {
			fmt.Printf("active: %s\n", used)
		}
		for _, p := range config.GetConfigSearchPaths() {
			fmt.Println(p)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathsCmd)
}
