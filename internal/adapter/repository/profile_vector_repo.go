package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"match-orchestrator/internal/domain"
)

type profileVectorRepository struct {
	pool *pgxpool.Pool
}

// NewProfileVectorRepository creates a repository over the stored profile
// vectors that back the query-less recommendation endpoint.
func NewProfileVectorRepository(pool *pgxpool.Pool) domain.ProfileVectorRepository {
	return &profileVectorRepository{pool: pool}
}

func (r *profileVectorRepository) getExecutor(ctx context.Context) dbExecutor {
	if tx := txFrom(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *profileVectorRepository) SimilarProfiles(ctx context.Context, embeddingID string, topK int) ([]domain.SimilarityHit, error) {
	// Cosine distance against the requester's stored vector. The requester's
	// own row is excluded here; the candidate fetch excludes it again by ID.
	query := `
		SELECT pe.embedding_id,
		       1 - (pe.embedding <=> ref.embedding) AS score
		FROM profile_embeddings pe,
		     (SELECT embedding FROM profile_embeddings WHERE embedding_id = $1) ref
		WHERE pe.embedding_id <> $1
		ORDER BY pe.embedding <=> ref.embedding ASC
		LIMIT $2
	`
	rows, err := r.getExecutor(ctx).Query(ctx, query, embeddingID, topK)
	if err != nil {
		return nil, storageFault("failed to query similar profiles", err)
	}
	defer rows.Close()

	var hits []domain.SimilarityHit
	for rows.Next() {
		var h domain.SimilarityHit
		if err := rows.Scan(&h.EmbeddingID, &h.Score); err != nil {
			return nil, storageFault("failed to scan similarity hit", err)
		}
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, storageFault("rows error", err)
	}
	return hits, nil
}

func (r *profileVectorRepository) Upsert(ctx context.Context, emb domain.ProfileEmbedding) error {
	_, err := r.getExecutor(ctx).Exec(ctx, `
		INSERT INTO profile_embeddings (embedding_id, tenant_id, description, embedding, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (embedding_id) DO UPDATE
		SET tenant_id   = EXCLUDED.tenant_id,
		    description = EXCLUDED.description,
		    embedding   = EXCLUDED.embedding,
		    updated_at  = now()
	`, emb.EmbeddingID, emb.TenantID, emb.Description, emb.Embedding)
	if err != nil {
		return storageFault("failed to upsert profile embedding", err)
	}
	return nil
}
