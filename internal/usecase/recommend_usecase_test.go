package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"match-orchestrator/internal/domain"
	"match-orchestrator/internal/usecase"
)

func newRecommendFixture(t *testing.T) (*MockVectorSearchClient, *MockTenantRepository, *MockInsightClient, usecase.RecommendUsecase) {
	t.Helper()
	mockSearch := new(MockVectorSearchClient)
	mockRepo := new(MockTenantRepository)
	mockInsight := new(MockInsightClient)
	enricher := usecase.NewEnricher(mockInsight, 0, testLogger(t))
	uc := usecase.NewRecommendUsecase(mockSearch, mockRepo, enricher, 6, testLogger(t))
	return mockSearch, mockRepo, mockInsight, uc
}

func TestRecommend_EmptySearchShortCircuits(t *testing.T) {
	mockSearch, mockRepo, mockInsight, uc := newRecommendFixture(t)
	requester := uuid.New()

	mockSearch.On("Search", mock.Anything, "hiking", 6).Return([]domain.SimilarityHit{}, nil)

	recs, err := uc.Execute(context.Background(), usecase.RecommendInput{Query: "hiking", RequesterID: requester})

	assert.NoError(t, err)
	assert.NotNil(t, recs)
	assert.Empty(t, recs)
	mockRepo.AssertNotCalled(t, "FetchCandidates")
	mockInsight.AssertNotCalled(t, "GenerateInsight")
}

func TestRecommend_SearchFailurePropagates(t *testing.T) {
	mockSearch, mockRepo, _, uc := newRecommendFixture(t)

	mockSearch.On("Search", mock.Anything, "hiking", 6).Return(nil, errors.New("index unreachable"))

	_, err := uc.Execute(context.Background(), usecase.RecommendInput{Query: "hiking", RequesterID: uuid.New()})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "vector search failed")
	mockRepo.AssertNotCalled(t, "FetchCandidates")
}

func TestRecommend_StorageFailurePropagates(t *testing.T) {
	mockSearch, mockRepo, mockInsight, uc := newRecommendFixture(t)
	requester := uuid.New()

	mockSearch.On("Search", mock.Anything, "hiking", 6).Return([]domain.SimilarityHit{
		{EmbeddingID: "emb-1", Score: 0.8},
	}, nil)
	mockRepo.On("FetchCandidates", mock.Anything, []string{"emb-1"}, requester).
		Return(nil, domain.ErrStorage)

	_, err := uc.Execute(context.Background(), usecase.RecommendInput{Query: "hiking", RequesterID: requester})

	assert.ErrorIs(t, err, domain.ErrStorage)
	mockInsight.AssertNotCalled(t, "GenerateInsight")
}

func TestRecommend_MissingCandidatesDroppedSilently(t *testing.T) {
	mockSearch, mockRepo, mockInsight, uc := newRecommendFixture(t)
	requester := uuid.New()
	alice := makeTenant("Alice", "emb-1", "hiking")

	// Two hits, only one tenant exists in storage.
	mockSearch.On("Search", mock.Anything, "hiking", 6).Return([]domain.SimilarityHit{
		{EmbeddingID: "emb-1", Score: 0.8},
		{EmbeddingID: "emb-ghost", Score: 0.99},
	}, nil)
	mockRepo.On("FetchCandidates", mock.Anything, []string{"emb-1", "emb-ghost"}, requester).
		Return([]domain.Tenant{alice}, nil)
	mockInsight.On("GenerateInsight", mock.Anything, mock.Anything).Return("generated", nil)

	recs, err := uc.Execute(context.Background(), usecase.RecommendInput{Query: "hiking", RequesterID: requester})

	assert.NoError(t, err)
	assert.Len(t, recs, 1)
	assert.Equal(t, "Alice", recs[0].Tenant.DisplayName())
}

func TestRecommend_EndToEndScenario(t *testing.T) {
	// query="hiking", Alice scores 0.8 and succeeds, Bob scores 0.95 and
	// generation fails for him.
	mockSearch, mockRepo, mockInsight, uc := newRecommendFixture(t)
	requester := uuid.New()
	alice := makeTenant("Alice", "emb-1", "hiking")
	bob := makeTenant("Bob", "emb-2", "climbing")

	mockSearch.On("Search", mock.Anything, "hiking", 6).Return([]domain.SimilarityHit{
		{EmbeddingID: "emb-1", Score: 0.8},
		{EmbeddingID: "emb-2", Score: 0.95},
	}, nil)
	mockRepo.On("FetchCandidates", mock.Anything, []string{"emb-1", "emb-2"}, requester).
		Return([]domain.Tenant{alice, bob}, nil)
	mockInsight.On("GenerateInsight", mock.Anything, mock.MatchedBy(func(req domain.InsightRequest) bool {
		return req.Name == "Alice" && req.Query == "hiking" && req.Score == 0.8 && req.Interests == "hiking"
	})).Return("You both love hiking.", nil)
	mockInsight.On("GenerateInsight", mock.Anything, mock.MatchedBy(func(req domain.InsightRequest) bool {
		return req.Name == "Bob"
	})).Return("", errors.New("model overloaded"))

	recs, err := uc.Execute(context.Background(), usecase.RecommendInput{Query: "hiking", RequesterID: requester})

	assert.NoError(t, err)
	assert.Len(t, recs, 2)
	assert.Equal(t, "Bob", recs[0].Tenant.DisplayName())
	assert.Equal(t, 0.95, recs[0].Score)
	assert.Equal(t, "Could not generate insight for Bob.", recs[0].Insight)
	assert.Equal(t, "Alice", recs[1].Tenant.DisplayName())
	assert.Equal(t, 0.8, recs[1].Score)
	assert.Equal(t, "You both love hiking.", recs[1].Insight)
}

func TestRecommend_DuplicateHitsCollapsed(t *testing.T) {
	mockSearch, mockRepo, mockInsight, uc := newRecommendFixture(t)
	requester := uuid.New()
	alice := makeTenant("Alice", "emb-1")

	mockSearch.On("Search", mock.Anything, "hiking", 6).Return([]domain.SimilarityHit{
		{EmbeddingID: "emb-1", Score: 0.8},
		{EmbeddingID: "emb-1", Score: 0.2},
	}, nil)
	mockRepo.On("FetchCandidates", mock.Anything, []string{"emb-1"}, requester).
		Return([]domain.Tenant{alice}, nil)
	mockInsight.On("GenerateInsight", mock.Anything, mock.Anything).Return("generated", nil)

	recs, err := uc.Execute(context.Background(), usecase.RecommendInput{Query: "hiking", RequesterID: requester})

	assert.NoError(t, err)
	assert.Len(t, recs, 1)
	assert.Equal(t, 0.8, recs[0].Score) // first score wins
}
