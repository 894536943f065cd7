package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"match-orchestrator/internal/domain"
	"match-orchestrator/internal/infra/logger"
)

// SimilarInput defines the input for query-less recommendations.
type SimilarInput struct {
	RequesterID uuid.UUID
}

// SimilarUsecase recommends candidates purely from the precomputed
// profile-embedding index, with the same enrichment and ranking contract as
// the query-driven path.
type SimilarUsecase interface {
	Execute(ctx context.Context, input SimilarInput) ([]domain.Recommendation, error)
}

type similarUsecase struct {
	profileVectors domain.ProfileVectorRepository
	tenantRepo     domain.TenantRepository
	enricher       *Enricher
	topK           int
	logger         *slog.Logger
}

// NewSimilarUsecase creates a new SimilarUsecase.
func NewSimilarUsecase(
	profileVectors domain.ProfileVectorRepository,
	tenantRepo domain.TenantRepository,
	enricher *Enricher,
	topK int,
	log *slog.Logger,
) SimilarUsecase {
	return &similarUsecase{
		profileVectors: profileVectors,
		tenantRepo:     tenantRepo,
		enricher:       enricher,
		topK:           topK,
		logger:         log,
	}
}

func (u *similarUsecase) Execute(ctx context.Context, input SimilarInput) ([]domain.Recommendation, error) {
	ctx = logger.WithTenantID(ctx, input.RequesterID.String())

	requester, err := u.tenantRepo.GetByID(ctx, input.RequesterID)
	if err != nil {
		if errors.Is(err, domain.ErrTenantNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load requester: %w", err)
	}

	// A requester that has not been indexed yet has no neighbourhood to
	// search; same outcome as an empty search result.
	if requester.EmbeddingID == "" {
		u.logger.InfoContext(ctx, "requester_not_indexed", slog.String("tenant_id", input.RequesterID.String()))
		return []domain.Recommendation{}, nil
	}

	ctx = logger.WithPipelineStage(ctx, "searched")
	hits, err := u.profileVectors.SimilarProfiles(ctx, requester.EmbeddingID, u.topK)
	if err != nil {
		return nil, fmt.Errorf("similar profile lookup failed: %w", err)
	}

	scores, ids := domain.BuildScoreMap(hits)
	if len(ids) == 0 {
		return []domain.Recommendation{}, nil
	}

	ctx = logger.WithPipelineStage(ctx, "fetched")
	tenants, err := u.tenantRepo.FetchCandidates(ctx, ids, input.RequesterID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch candidates: %w", err)
	}

	ctx = logger.WithPipelineStage(ctx, "enriched")
	recs := u.enricher.EnrichAndRank(ctx, tenants, scores, "")

	u.logger.InfoContext(ctx, "similar_recommendations_ready",
		slog.Int("hits", len(hits)),
		slog.Int("candidates", len(tenants)),
		slog.Int("results", len(recs)))
	return recs, nil
}
