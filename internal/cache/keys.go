package cache

import "strings"

const (
	GlobalKeyPrefix = "quizforge"

	sessionService = "session"
)

// GenerateCacheKey builds "<prefix>:<service>:<objectType>:<identifier>[:<params>]".
// Params are joined by "_".
func GenerateCacheKey(serviceName, objectType, identifier string, paramsKey ...string) string {
	baseKey := strings.Join([]string{GlobalKeyPrefix, serviceName, objectType, identifier}, ":")
	if len(paramsKey) > 0 {
		return strings.Join([]string{baseKey, strings.Join(paramsKey, "_")}, ":")
	}
	return baseKey
}

// SessionQuizKey holds the validated quiz document and raw model output of a session.
func SessionQuizKey(sessionID string) string {
	return GenerateCacheKey(sessionService, "quiz", sessionID)
}

// SessionAnswersKey holds the answer hash of a session, one field per question id.
func SessionAnswersKey(sessionID string) string {
	return GenerateCacheKey(sessionService, "answers", sessionID)
}

// SessionTimerKey holds the timer start instant of a session.
func SessionTimerKey(sessionID string) string {
	return GenerateCacheKey(sessionService, "timer", sessionID)
}
