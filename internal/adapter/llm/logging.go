package llm

import (
	"context"
	"quiz-forge/internal/domain"
	"quiz-forge/internal/logger"
	"time"

	"go.uber.org/zap"
)

// LoggingProvider logs every provider call with its latency and outcome.
type LoggingProvider struct {
	inner    domain.ModelProvider
	provider string
}

// WithLogging wraps p with call logging.
func WithLogging(p domain.ModelProvider, providerName string) *LoggingProvider {
	return &LoggingProvider{inner: p, provider: providerName}
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

func (l *LoggingProvider) RegisterFile(ctx context.Context, f domain.UploadedFile) (domain.FileHandle, error) {
	start := time.Now()
	h, err := l.inner.RegisterFile(ctx, f)
	fields := []zap.Field{
		zap.String("provider", l.provider),
		zap.String("file", f.OriginalName),
		zap.Int64("size", f.Size),
		zap.Duration("latency", time.Since(start)),
	}
	if err != nil {
		logger.Get().Debug("file registration failed", append(fields, zap.Error(err))...)
		return h, err
	}
	logger.Get().Debug("file registered", append(fields, zap.String("file_id", h.ID))...)
	return h, nil
}

func (l *LoggingProvider) Generate(ctx context.Context, req domain.ModelRequest) (*domain.ModelResponse, error) {
	start := time.Now()
	resp, err := l.inner.Generate(ctx, req)
	fields := []zap.Field{
		zap.String("provider", l.provider),
		zap.String("model", l.inner.ModelID()),
		zap.Int("user_parts", len(req.User)),
		zap.Duration("latency", time.Since(start)),
	}
	if err != nil {
		logger.Get().Error("model invocation failed", append(fields, zap.Error(err))...)
		return nil, err
	}
	logger.Get().Info("model invocation completed", append(fields, zap.Int("output_chars", len(resp.Text)))...)
	return resp, nil
}

// ReleaseFile forwards to the wrapped provider when it supports deletion.
func (l *LoggingProvider) ReleaseFile(ctx context.Context, h domain.FileHandle) error {
	releaser, ok := l.inner.(domain.FileReleaser)
	if !ok {
		return nil
	}
	if err := releaser.ReleaseFile(ctx, h); err != nil {
		logger.Get().Debug("file release failed",
			zap.String("provider", l.provider),
			zap.String("file_id", h.ID),
			zap.Error(err))
		return err
	}
	return nil
}

var (
	_ domain.ModelProvider = (*LoggingProvider)(nil)
	_ domain.FileReleaser  = (*LoggingProvider)(nil)
)
