package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"match-orchestrator/internal/domain"
	"match-orchestrator/internal/infra/logger"
)

// RecommendInput defines the input for query-driven recommendations.
type RecommendInput struct {
	Query       string
	RequesterID uuid.UUID
}

// RecommendUsecase turns a free-text query into a ranked list of enriched
// candidate profiles.
type RecommendUsecase interface {
	Execute(ctx context.Context, input RecommendInput) ([]domain.Recommendation, error)
}

type recommendUsecase struct {
	searchClient domain.VectorSearchClient
	tenantRepo   domain.TenantRepository
	enricher     *Enricher
	topK         int
	logger       *slog.Logger
}

// NewRecommendUsecase creates a new RecommendUsecase.
func NewRecommendUsecase(
	searchClient domain.VectorSearchClient,
	tenantRepo domain.TenantRepository,
	enricher *Enricher,
	topK int,
	log *slog.Logger,
) RecommendUsecase {
	return &recommendUsecase{
		searchClient: searchClient,
		tenantRepo:   tenantRepo,
		enricher:     enricher,
		topK:         topK,
		logger:       log,
	}
}

// Execute runs the three pipeline phases in order: vector search, candidate
// fetch, enrichment. Empty search results short-circuit to an empty list;
// storage faults fail the whole request; enrichment always completes.
func (u *recommendUsecase) Execute(ctx context.Context, input RecommendInput) ([]domain.Recommendation, error) {
	ctx = logger.WithTenantID(ctx, input.RequesterID.String())

	ctx = logger.WithPipelineStage(ctx, "searched")
	hits, err := u.searchClient.Search(ctx, input.Query, u.topK)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	scores, ids := domain.BuildScoreMap(hits)
	if len(ids) == 0 {
		u.logger.InfoContext(ctx, "search_returned_no_hits", slog.String("query", input.Query))
		return []domain.Recommendation{}, nil
	}

	ctx = logger.WithPipelineStage(ctx, "fetched")
	tenants, err := u.tenantRepo.FetchCandidates(ctx, ids, input.RequesterID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch candidates: %w", err)
	}

	ctx = logger.WithPipelineStage(ctx, "enriched")
	recs := u.enricher.EnrichAndRank(ctx, tenants, scores, input.Query)

	u.logger.InfoContext(ctx, "recommendations_ready",
		slog.Int("hits", len(hits)),
		slog.Int("candidates", len(tenants)),
		slog.Int("results", len(recs)))
	return recs, nil
}
