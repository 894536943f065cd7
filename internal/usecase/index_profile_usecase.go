package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"match-orchestrator/internal/domain"
)

// IndexProfileUsecase builds and stores the embedding for one tenant
// profile: description via the generation service, vector via the encoder,
// then a transactional write of the local index row and the tenant's
// embedding ID, followed by a best-effort push to the remote vector index.
type IndexProfileUsecase interface {
	Execute(ctx context.Context, tenantID uuid.UUID) error
}

type indexProfileUsecase struct {
	tenantRepo     domain.TenantRepository
	profileVectors domain.ProfileVectorRepository
	txManager      domain.TransactionManager
	describer      domain.ProfileDescriber
	encoder        domain.VectorEncoder
	searchIndex    domain.VectorSearchClient
	logger         *slog.Logger
}

// NewIndexProfileUsecase creates a new IndexProfileUsecase.
func NewIndexProfileUsecase(
	tenantRepo domain.TenantRepository,
	profileVectors domain.ProfileVectorRepository,
	txManager domain.TransactionManager,
	describer domain.ProfileDescriber,
	encoder domain.VectorEncoder,
	searchIndex domain.VectorSearchClient,
	log *slog.Logger,
) IndexProfileUsecase {
	return &indexProfileUsecase{
		tenantRepo:     tenantRepo,
		profileVectors: profileVectors,
		txManager:      txManager,
		describer:      describer,
		encoder:        encoder,
		searchIndex:    searchIndex,
		logger:         log,
	}
}

func (u *indexProfileUsecase) Execute(ctx context.Context, tenantID uuid.UUID) error {
	tenant, err := u.tenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("failed to load tenant: %w", err)
	}

	description, err := u.describer.DescribeProfile(ctx, *tenant)
	if err != nil {
		return fmt.Errorf("failed to describe profile: %w", err)
	}

	vectors, err := u.encoder.Encode(ctx, []string{description})
	if err != nil {
		return fmt.Errorf("failed to encode description: %w", err)
	}
	if len(vectors) == 0 {
		return fmt.Errorf("encoder returned no vectors")
	}
	vector := vectors[0]

	embeddingID := tenant.EmbeddingID
	if embeddingID == "" {
		embeddingID = uuid.NewString()
	}

	err = u.txManager.RunInTx(ctx, func(ctx context.Context) error {
		if err := u.profileVectors.Upsert(ctx, domain.ProfileEmbedding{
			EmbeddingID: embeddingID,
			TenantID:    tenant.ID,
			Description: description,
			Embedding:   pgvector.NewVector(vector),
		}); err != nil {
			return err
		}
		return u.tenantRepo.SetEmbeddingID(ctx, tenant.ID, embeddingID)
	})
	if err != nil {
		return fmt.Errorf("failed to store profile embedding: %w", err)
	}

	// The remote index is rebuilt from the local rows on drift, so a failed
	// push is logged, not fatal.
	if err := u.searchIndex.Upsert(ctx, embeddingID, vector); err != nil {
		u.logger.Warn("remote_index_upsert_failed",
			slog.String("tenant_id", tenant.ID.String()),
			slog.String("embedding_id", embeddingID),
			slog.String("error", err.Error()))
	}

	u.logger.Info("profile_indexed",
		slog.String("tenant_id", tenant.ID.String()),
		slog.String("embedding_id", embeddingID),
		slog.String("encoder", u.encoder.Version()))
	return nil
}
