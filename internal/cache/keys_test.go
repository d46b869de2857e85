package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateCacheKey(t *testing.T) {
	tests := []struct {
		name        string
		serviceName string
		objectType  string
		identifier  string
		paramsKey   []string
		expectedKey string
	}{
		{
			name:        "without paramsKey",
			serviceName: "session",
			objectType:  "quiz",
			identifier:  "01HX",
			expectedKey: "quizforge:session:quiz:01HX",
		},
		{
			name:        "with empty paramsKey",
			serviceName: "session",
			objectType:  "quiz",
			identifier:  "01HX",
			paramsKey:   []string{},
			expectedKey: "quizforge:session:quiz:01HX",
		},
		{
			name:        "with multiple paramsKey",
			serviceName: "session",
			objectType:  "answers",
			identifier:  "01HX",
			paramsKey:   []string{"v1", "mixed"},
			expectedKey: "quizforge:session:answers:01HX:v1_mixed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedKey, GenerateCacheKey(tt.serviceName, tt.objectType, tt.identifier, tt.paramsKey...))
		})
	}
}

func TestSessionKeys(t *testing.T) {
	assert.Equal(t, "quizforge:session:quiz:abc", SessionQuizKey("abc"))
	assert.Equal(t, "quizforge:session:answers:abc", SessionAnswersKey("abc"))
	assert.Equal(t, "quizforge:session:timer:abc", SessionTimerKey("abc"))
}
