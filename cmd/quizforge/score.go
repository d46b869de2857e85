package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"quiz-forge/internal/domain"
	"quiz-forge/internal/scoring"
	"quiz-forge/internal/validation"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var scoreCmd = &cobra.Command{
	Use:   "score <quiz.json> <answers.json>",
	Short: "Score an answers file against a quiz",
	Long: `Score grades answers against a quiz in the generate JSON format.
The answers file maps question ids to a choice index (mcq), a string
(fill_blank, identification) or an object of pair index to right value (matching).`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		showAnswers, _ := cmd.Flags().GetBool("answers")

		quizData, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		quiz, err := validation.ParseQuiz(string(quizData))
		if err != nil {
			var shapeErr *domain.OutputShapeError
			if errors.As(err, &shapeErr) {
				return fmt.Errorf("%s: %s", args[0], shapeErr.UserMessage())
			}
			return err
		}

		answerData, err := os.ReadFile(args[1])
		if err != nil {
			return err
		}
		answers, err := decodeAnswers(quiz, answerData)
		if err != nil {
			return fmt.Errorf("%s: %w", args[1], err)
		}

		result := scoring.ScoreQuiz(quiz, answers)
		if asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}
		fmt.Fprint(cmd.OutOrStdout(), renderScore(quiz, result, showAnswers))
		return nil
	},
}

func init() {
	scoreCmd.Flags().Bool("json", false, "Print the result as JSON")
	scoreCmd.Flags().Bool("answers", false, "Show correct answers and explanations")
}

// decodeAnswers reads an answers document. Ids that match no question are
// ignored; answers of the wrong shape are an error.
func decodeAnswers(quiz *domain.Quiz, data []byte) (domain.AnswerState, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("answers must be a JSON object: %w", err)
	}
	answers := make(domain.AnswerState, len(raw))
	for _, q := range quiz.Questions {
		msg, ok := raw[q.QuestionID()]
		if !ok {
			continue
		}
		a, err := domain.DecodeAnswer(q, msg)
		if err != nil {
			return nil, err
		}
		answers[q.QuestionID()] = a
	}
	return answers, nil
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	correctStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	wrongStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	detailStyle  = lipgloss.NewStyle().Faint(true).PaddingLeft(4)
)

func renderScore(quiz *domain.Quiz, result scoring.Result, showAnswers bool) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(quiz.Title) + "\n\n")
	for i, r := range result.Results {
		mark := wrongStyle.Render("✗ Incorrect")
		if r.Correct {
			mark = correctStyle.Render("✓ Correct")
		}
		fmt.Fprintf(&b, "%3d. %-12s %s (%d/%d)\n", i+1, r.ID, mark, r.Score, r.Total)
		if showAnswers {
			b.WriteString(detailStyle.Render("Answer: "+r.CorrectAnswer) + "\n")
			if r.Explanation != "" {
				b.WriteString(detailStyle.Render("Explanation: "+r.Explanation) + "\n")
			}
		}
	}
	b.WriteString("\n" + titleStyle.Render(fmt.Sprintf("Score: %d / %d (%d%%)", result.TotalScore, result.TotalPossible, result.Percent)) + "\n")
	return b.String()
}
