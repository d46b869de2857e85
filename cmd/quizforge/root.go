package main

import (
	"fmt"
	"quiz-forge/internal/config"
	"quiz-forge/internal/logger"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "quizforge",
	Short:         "Turn documents into quizzes",
	Long:          "QuizForge generates validated quizzes from PDF, Office and text documents with an LLM, and scores attempts.",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().Bool("verbose", false, "Log debug output")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(scoreCmd)
}

// loadConfig reads config.yaml and the environment, then sets up logging.
// Without --verbose only errors are logged.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		cfg.Logger.Level = "debug"
	} else if cmd != serveCmd {
		cfg.Logger.Level = "error"
	}
	if err := logger.Initialize(cfg.Logger); err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}
	return cfg, nil
}
