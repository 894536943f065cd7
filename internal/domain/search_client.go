package domain

import (
	"context"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// VectorSearchClient talks to the external vector-similarity service.
type VectorSearchClient interface {
	// Search embeds the query server-side and returns at most topK hits.
	// An empty result is not an error.
	Search(ctx context.Context, query string, topK int) ([]SimilarityHit, error)

	// Upsert pushes a profile vector into the remote index under the given
	// embedding ID.
	Upsert(ctx context.Context, embeddingID string, vector []float32) error
}

// ProfileEmbedding is a stored profile vector, the basis of the precomputed
// similarity index used by the query-less recommendation endpoint.
type ProfileEmbedding struct {
	EmbeddingID string
	TenantID    uuid.UUID
	Description string
	Embedding   pgvector.Vector
}

// ProfileVectorRepository manages stored profile vectors.
type ProfileVectorRepository interface {
	// SimilarProfiles returns up to topK hits nearest to the profile stored
	// under embeddingID, excluding that profile itself.
	SimilarProfiles(ctx context.Context, embeddingID string, topK int) ([]SimilarityHit, error)

	// Upsert stores or replaces a profile embedding.
	Upsert(ctx context.Context, emb ProfileEmbedding) error
}
