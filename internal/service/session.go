package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"quiz-forge/internal/cache"
	"quiz-forge/internal/config"
	"quiz-forge/internal/domain"
	"quiz-forge/internal/logger"
	"quiz-forge/internal/scoring"
	"quiz-forge/internal/util"
	"time"

	"go.uber.org/zap"
)

// Session is one quiz attempt: the validated quiz, the raw model output it came
// from, the answers entered so far and the attempt timer.
type Session struct {
	ID        string
	Quiz      *domain.Quiz
	Raw       string
	CreatedAt time.Time
	Answers   domain.AnswerState
	Timer     TimerState
}

// ScoreOutcome is the graded attempt together with the time it took.
type ScoreOutcome struct {
	Result         scoring.Result
	Elapsed        time.Duration
	ElapsedDisplay string
}

type sessionRecord struct {
	Quiz      *domain.Quiz `json:"quiz"`
	Raw       string       `json:"raw"`
	CreatedAt time.Time    `json:"created_at"`
}

// SessionService keeps quiz attempts between requests.
type SessionService interface {
	Create(ctx context.Context, quiz *domain.Quiz, raw string) (*Session, error)
	Get(ctx context.Context, id string) (*Session, error)
	// SetAnswer records the answer to a single question. raw must match the
	// question's answer shape: an index, a string, or a pair-index map.
	SetAnswer(ctx context.Context, id, questionID string, raw json.RawMessage) error
	// SetAnswers replaces every recorded answer with answers.
	SetAnswers(ctx context.Context, id string, answers domain.AnswerState) error
	Reset(ctx context.Context, id string) (*Session, error)
	Score(ctx context.Context, id string) (*ScoreOutcome, error)
}

type sessionService struct {
	cache domain.Cache
	ttl   time.Duration
	now   func() time.Time
}

// NewSessionService creates a new instance of sessionService. A non-positive
// ttl falls back to config.DefaultSessionTTL.
func NewSessionService(cache domain.Cache, ttl time.Duration) SessionService {
	if ttl <= 0 {
		ttl = config.DefaultSessionTTL
	}
	return &sessionService{cache: cache, ttl: ttl, now: time.Now}
}

func (s *sessionService) Create(ctx context.Context, quiz *domain.Quiz, raw string) (*Session, error) {
	if quiz == nil {
		return nil, domain.NewInternalError("Cannot create a session without a quiz", nil)
	}

	record := sessionRecord{Quiz: quiz, Raw: raw, CreatedAt: s.now().UTC()}
	data, err := json.Marshal(record)
	if err != nil {
		return nil, domain.NewInternalError("Failed to encode quiz session", err)
	}

	id := util.NewULID()
	if err := s.cache.Set(ctx, cache.SessionQuizKey(id), string(data), s.ttl); err != nil {
		return nil, domain.NewInternalError("Failed to store quiz session", err)
	}

	timer := NewQuizTimer(s.now)
	timer.Start()
	if err := s.saveTimer(ctx, id, timer.State()); err != nil {
		return nil, err
	}

	logger.Get().Info("quiz session created",
		zap.String("session_id", id),
		zap.Int("questions", len(quiz.Questions)))

	return &Session{
		ID:        id,
		Quiz:      quiz,
		Raw:       raw,
		CreatedAt: record.CreatedAt,
		Answers:   domain.AnswerState{},
		Timer:     timer.State(),
	}, nil
}

func (s *sessionService) Get(ctx context.Context, id string) (*Session, error) {
	record, err := s.loadRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	answers, err := s.loadAnswers(ctx, id, record.Quiz)
	if err != nil {
		return nil, err
	}
	timer, err := s.loadTimer(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Session{
		ID:        id,
		Quiz:      record.Quiz,
		Raw:       record.Raw,
		CreatedAt: record.CreatedAt,
		Answers:   answers,
		Timer:     timer,
	}, nil
}

func (s *sessionService) SetAnswer(ctx context.Context, id, questionID string, raw json.RawMessage) error {
	record, err := s.loadRecord(ctx, id)
	if err != nil {
		return err
	}
	q, ok := record.Quiz.FindQuestion(questionID)
	if !ok {
		return domain.NewNotFoundError(fmt.Sprintf("Question not found: %s", questionID))
	}
	answer, err := domain.DecodeAnswer(q, raw)
	if err != nil {
		return domain.NewInvalidInputError(err.Error())
	}
	return s.storeAnswer(ctx, id, questionID, answer)
}

func (s *sessionService) SetAnswers(ctx context.Context, id string, answers domain.AnswerState) error {
	record, err := s.loadRecord(ctx, id)
	if err != nil {
		return err
	}
	if err := s.cache.Delete(ctx, cache.SessionAnswersKey(id)); err != nil {
		return domain.NewInternalError("Failed to clear answers", err)
	}
	for questionID, answer := range answers {
		if _, ok := record.Quiz.FindQuestion(questionID); !ok {
			logger.Get().Debug("ignoring answer for unknown question",
				zap.String("session_id", id), zap.String("question_id", questionID))
			continue
		}
		if err := s.storeAnswer(ctx, id, questionID, answer); err != nil {
			return err
		}
	}
	return nil
}

// Reset clears every answer. The timer keeps running.
func (s *sessionService) Reset(ctx context.Context, id string) (*Session, error) {
	if _, err := s.loadRecord(ctx, id); err != nil {
		return nil, err
	}
	if err := s.cache.Delete(ctx, cache.SessionAnswersKey(id)); err != nil {
		return nil, domain.NewInternalError("Failed to clear answers", err)
	}
	return s.Get(ctx, id)
}

// Score stops the attempt timer and grades the recorded answers. Scoring an
// already stopped attempt again yields the same result and elapsed time.
func (s *sessionService) Score(ctx context.Context, id string) (*ScoreOutcome, error) {
	session, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	timer := RestoreQuizTimer(session.Timer, s.now)
	if timer.Running() {
		timer.Stop()
		if err := s.saveTimer(ctx, id, timer.State()); err != nil {
			return nil, err
		}
	}

	result := scoring.ScoreQuiz(session.Quiz, session.Answers)
	logger.Get().Info("quiz session scored",
		zap.String("session_id", id),
		zap.Int("score", result.TotalScore),
		zap.Int("possible", result.TotalPossible),
		zap.Duration("elapsed", timer.Elapsed()))

	return &ScoreOutcome{
		Result:         result,
		Elapsed:        timer.Elapsed(),
		ElapsedDisplay: timer.Display(),
	}, nil
}

func (s *sessionService) loadRecord(ctx context.Context, id string) (*sessionRecord, error) {
	data, err := s.cache.Get(ctx, cache.SessionQuizKey(id))
	if err != nil {
		if errors.Is(err, domain.ErrCacheMiss) {
			return nil, domain.NewSessionNotFoundError(id)
		}
		return nil, domain.NewInternalError("Failed to load quiz session", err)
	}
	var record sessionRecord
	if err := json.Unmarshal([]byte(data), &record); err != nil || record.Quiz == nil {
		logger.Get().Error("corrupt quiz session", zap.String("session_id", id), zap.Error(err))
		return nil, domain.NewInternalError("Failed to decode quiz session", err)
	}
	return &record, nil
}

func (s *sessionService) loadAnswers(ctx context.Context, id string, quiz *domain.Quiz) (domain.AnswerState, error) {
	fields, err := s.cache.HGetAll(ctx, cache.SessionAnswersKey(id))
	if err != nil && !errors.Is(err, domain.ErrCacheMiss) {
		return nil, domain.NewInternalError("Failed to load answers", err)
	}
	answers := make(domain.AnswerState, len(fields))
	for questionID, value := range fields {
		q, ok := quiz.FindQuestion(questionID)
		if !ok {
			continue
		}
		answer, err := domain.DecodeAnswer(q, json.RawMessage(value))
		if err != nil {
			logger.Get().Warn("dropping undecodable answer",
				zap.String("session_id", id), zap.String("question_id", questionID), zap.Error(err))
			continue
		}
		answers[questionID] = answer
	}
	return answers, nil
}

func (s *sessionService) storeAnswer(ctx context.Context, id, questionID string, answer domain.Answer) error {
	data, err := json.Marshal(answer)
	if err != nil {
		return domain.NewInternalError("Failed to encode answer", err)
	}
	key := cache.SessionAnswersKey(id)
	if err := s.cache.HSet(ctx, key, questionID, string(data)); err != nil {
		return domain.NewInternalError("Failed to store answer", err)
	}
	if err := s.cache.Expire(ctx, key, s.ttl); err != nil {
		return domain.NewInternalError("Failed to set answer expiration", err)
	}
	return nil
}

func (s *sessionService) loadTimer(ctx context.Context, id string) (TimerState, error) {
	data, err := s.cache.Get(ctx, cache.SessionTimerKey(id))
	if err != nil {
		if errors.Is(err, domain.ErrCacheMiss) {
			return TimerState{}, nil
		}
		return TimerState{}, domain.NewInternalError("Failed to load timer", err)
	}
	var state TimerState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return TimerState{}, domain.NewInternalError("Failed to decode timer", err)
	}
	return state, nil
}

func (s *sessionService) saveTimer(ctx context.Context, id string, state TimerState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return domain.NewInternalError("Failed to encode timer", err)
	}
	if err := s.cache.Set(ctx, cache.SessionTimerKey(id), string(data), s.ttl); err != nil {
		return domain.NewInternalError("Failed to store timer", err)
	}
	return nil
}
