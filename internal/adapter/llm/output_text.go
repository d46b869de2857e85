package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// responseEnvelope covers both chat-completions and responses-API payloads.
type responseEnvelope struct {
	Choices []struct {
		Message struct {
			Content json.RawMessage `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	OutputText string `json:"output_text"`
	Output     []struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	} `json:"output"`
}

type outputTextStrategy func(*responseEnvelope) string

// outputTextStrategies are tried in order; the first non-empty result wins.
var outputTextStrategies = []outputTextStrategy{
	choiceMessageContent,
	topLevelOutputText,
	joinedOutputParts,
}

func choiceMessageContent(env *responseEnvelope) string {
	if len(env.Choices) == 0 {
		return ""
	}
	var content string
	if err := json.Unmarshal(env.Choices[0].Message.Content, &content); err != nil {
		return ""
	}
	return content
}

func topLevelOutputText(env *responseEnvelope) string {
	return env.OutputText
}

func joinedOutputParts(env *responseEnvelope) string {
	var parts []string
	for _, item := range env.Output {
		for _, c := range item.Content {
			if c.Text != "" {
				parts = append(parts, c.Text)
			}
		}
	}
	return strings.Join(parts, "\n")
}

// ExtractOutputText normalizes a raw provider response body to its output text.
// An empty string with a nil error means the response carried no text.
func ExtractOutputText(body []byte) (string, error) {
	var env responseEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return "", fmt.Errorf("decode provider response: %w", err)
	}
	for _, strategy := range outputTextStrategies {
		if text := strategy(&env); text != "" {
			return strings.TrimSpace(text), nil
		}
	}
	return "", nil
}
