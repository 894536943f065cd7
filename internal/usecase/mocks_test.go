package usecase_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"match-orchestrator/internal/domain"
)

// MockVectorSearchClient
type MockVectorSearchClient struct {
	mock.Mock
}

func (m *MockVectorSearchClient) Search(ctx context.Context, query string, topK int) ([]domain.SimilarityHit, error) {
	args := m.Called(ctx, query, topK)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SimilarityHit), args.Error(1)
}

func (m *MockVectorSearchClient) Upsert(ctx context.Context, embeddingID string, vector []float32) error {
	args := m.Called(ctx, embeddingID, vector)
	return args.Error(0)
}

// MockTenantRepository
type MockTenantRepository struct {
	mock.Mock
}

func (m *MockTenantRepository) FetchCandidates(ctx context.Context, embeddingIDs []string, excludeTenantID uuid.UUID) ([]domain.Tenant, error) {
	args := m.Called(ctx, embeddingIDs, excludeTenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Tenant), args.Error(1)
}

func (m *MockTenantRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Tenant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Tenant), args.Error(1)
}

func (m *MockTenantRepository) ListUnindexed(ctx context.Context, limit int) ([]domain.Tenant, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Tenant), args.Error(1)
}

func (m *MockTenantRepository) SetEmbeddingID(ctx context.Context, tenantID uuid.UUID, embeddingID string) error {
	args := m.Called(ctx, tenantID, embeddingID)
	return args.Error(0)
}

// MockProfileVectorRepository
type MockProfileVectorRepository struct {
	mock.Mock
}

func (m *MockProfileVectorRepository) SimilarProfiles(ctx context.Context, embeddingID string, topK int) ([]domain.SimilarityHit, error) {
	args := m.Called(ctx, embeddingID, topK)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SimilarityHit), args.Error(1)
}

func (m *MockProfileVectorRepository) Upsert(ctx context.Context, emb domain.ProfileEmbedding) error {
	args := m.Called(ctx, emb)
	return args.Error(0)
}

// MockInsightClient
type MockInsightClient struct {
	mock.Mock
}

func (m *MockInsightClient) GenerateInsight(ctx context.Context, req domain.InsightRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

// MockProfileDescriber
type MockProfileDescriber struct {
	mock.Mock
}

func (m *MockProfileDescriber) DescribeProfile(ctx context.Context, tenant domain.Tenant) (string, error) {
	args := m.Called(ctx, tenant)
	return args.String(0), args.Error(1)
}

// MockVectorEncoder
type MockVectorEncoder struct {
	mock.Mock
}

func (m *MockVectorEncoder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	args := m.Called(ctx, texts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]float32), args.Error(1)
}

func (m *MockVectorEncoder) Version() string {
	return "mock-v1"
}

// fakeTxManager runs the function directly, no transaction semantics.
type fakeTxManager struct {
	err error
}

func (f *fakeTxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if f.err != nil {
		return f.err
	}
	return fn(ctx)
}

func testLogger(t *testing.T) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}
