package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"quiz-forge/internal/adapter/extractor"
	"quiz-forge/internal/adapter/llm"
	"quiz-forge/internal/domain"
	"quiz-forge/internal/logger"
	"quiz-forge/internal/progress"
	"quiz-forge/internal/service"
	"quiz-forge/internal/upload"
	"quiz-forge/internal/validation"
	"strings"

	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate <file>...",
	Short: "Generate a quiz from local documents",
	Long: `Generate sends the documents to the configured model and prints the validated quiz.
Files the provider cannot attach are sent as extracted text instead.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringP("type", "t", string(domain.QuizTypeMCQ), "Quiz type: mcq, fill_blank, identification, matching or mixed")
	generateCmd.Flags().IntP("count", "n", 10, "Requested question count (5-100)")
	generateCmd.Flags().StringP("difficulty", "d", "", "Free-form difficulty")
	generateCmd.Flags().StringP("format", "f", formatJSON, "Output format: json or yaml")
	generateCmd.Flags().StringP("output", "o", "", "Write the quiz to this file instead of stdout")
	generateCmd.Flags().Bool("no-progress", false, "Hide the progress bar")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	quizType, _ := cmd.Flags().GetString("type")
	count, _ := cmd.Flags().GetInt("count")
	difficulty, _ := cmd.Flags().GetString("difficulty")
	format, _ := cmd.Flags().GetString("format")
	outPath, _ := cmd.Flags().GetString("output")
	noProgress, _ := cmd.Flags().GetBool("no-progress")

	if format != formatJSON && format != formatYAML {
		return fmt.Errorf("unknown format %q: use json or yaml", format)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	files := make([]domain.UploadedFile, 0, len(args))
	input := validation.GenerateInput{
		QuizType:      quizType,
		QuestionCount: count,
		Difficulty:    strings.TrimSpace(difficulty),
	}
	for _, path := range args {
		f, err := upload.FromPath(path)
		if err != nil {
			return err
		}
		files = append(files, f)
		input.Files = append(input.Files, validation.FileMeta{Name: f.OriginalName, Size: f.Size})
	}
	if err := validation.NewValidator(cfg.Upload).ValidateGenerateInput(input); err != nil {
		return errors.New(userMessage(err))
	}

	ctx := cmd.Context()
	provider, err := llm.NewProvider(ctx, cfg.LLM)
	if err != nil {
		return err
	}
	generator := service.NewQuizGenerationService(provider, extractor.New())

	stderr := cmd.ErrOrStderr()
	var indicator *progress.Indicator
	if !noProgress {
		noColor := os.Getenv("NO_COLOR") != ""
		indicator = progress.New(func(s progress.State) {
			if s.Visible {
				fmt.Fprintf(stderr, "\r%s", progress.Render(s, noColor))
			}
		})
		indicator.Start()
	}

	parsedType, _ := domain.ParseQuizType(quizType)
	result, err := generator.Generate(ctx, service.GenerateRequest{
		Files:         files,
		QuizType:      parsedType,
		QuestionCount: count,
		Difficulty:    input.Difficulty,
	})
	if indicator != nil {
		indicator.Finish()
		fmt.Fprintln(stderr)
	}
	if err != nil {
		return errors.New(userMessage(err))
	}

	if result.SourceNote != "" {
		fmt.Fprintf(stderr, "Note: %s\n", result.SourceNote)
	}
	if !result.OK {
		fmt.Fprintln(stderr, result.Error)
		fmt.Fprintln(stderr, "Raw output:")
		fmt.Fprintln(stderr, result.Raw)
		return errors.New("model output failed validation")
	}

	data, err := encodeQuiz(result.Quiz, format)
	if err != nil {
		return err
	}
	return writeOutput(cmd.OutOrStdout(), outPath, data)
}

func writeOutput(stdout io.Writer, path string, data []byte) error {
	if path == "" {
		_, err := stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// userMessage unwraps domain errors to the text shown to API clients.
func userMessage(err error) string {
	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) && domainErr.Code == domain.ErrInvalidInput {
		return domainErr.Message
	}
	return err.Error()
}
