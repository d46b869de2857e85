package service

import (
	"context"
	"quiz-forge/internal/domain"

	"github.com/stretchr/testify/mock"
)

// --- MockModelProvider ---
type MockModelProvider struct {
	mock.Mock
}

func (m *MockModelProvider) RegisterFile(ctx context.Context, f domain.UploadedFile) (domain.FileHandle, error) {
	args := m.Called(ctx, f)
	return args.Get(0).(domain.FileHandle), args.Error(1)
}

func (m *MockModelProvider) Generate(ctx context.Context, req domain.ModelRequest) (*domain.ModelResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ModelResponse), args.Error(1)
}

func (m *MockModelProvider) ModelID() string {
	return "mock-model"
}

// MockReleasingProvider is a MockModelProvider whose files can be deleted.
type MockReleasingProvider struct {
	MockModelProvider
}

func (m *MockReleasingProvider) ReleaseFile(ctx context.Context, h domain.FileHandle) error {
	args := m.Called(ctx, h)
	return args.Error(0)
}

// --- MockSourceExtractor ---
type MockSourceExtractor struct {
	mock.Mock
}

func (m *MockSourceExtractor) BuildSourcePack(ctx context.Context, files []domain.UploadedFile) (string, []domain.ExtractedSource) {
	args := m.Called(ctx, files)
	return args.String(0), args.Get(1).([]domain.ExtractedSource)
}

var (
	_ domain.ModelProvider   = (*MockModelProvider)(nil)
	_ domain.FileReleaser    = (*MockReleasingProvider)(nil)
	_ domain.SourceExtractor = (*MockSourceExtractor)(nil)
)
