package main

import (
	"fmt"
	"quiz-forge/internal/adapter/extractor"
	"quiz-forge/internal/domain"
	"quiz-forge/internal/upload"

	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:   "extract <file>...",
	Short: "Print the SOURCE PACK text the model would receive",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files := make([]domain.UploadedFile, 0, len(args))
		for _, path := range args {
			f, err := upload.FromPath(path)
			if err != nil {
				return err
			}
			files = append(files, f)
		}

		pack, sources := extractor.New().BuildSourcePack(cmd.Context(), files)
		fmt.Fprintln(cmd.OutOrStdout(), pack)

		for _, s := range sources {
			if s.SkippedReason != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "skipped %s: %s\n", s.Filename, s.SkippedReason)
			}
		}
		return nil
	},
}
