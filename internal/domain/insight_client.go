package domain

import "context"

// InsightRequest carries the context the text-generation service needs to
// explain one candidate match.
type InsightRequest struct {
	Query     string
	TenantID  string
	Name      string
	Score     float64
	Interests string
}

// InsightClient generates a short natural-language explanation of why a
// candidate is a good match. Treated as a black box; any transport or
// validation fault surfaces as an error.
type InsightClient interface {
	GenerateInsight(ctx context.Context, req InsightRequest) (string, error)
}

// ProfileDescriber turns a tenant profile into a first-person description
// suitable for embedding.
type ProfileDescriber interface {
	DescribeProfile(ctx context.Context, tenant Tenant) (string, error)
}

// VectorEncoder converts texts into embedding vectors.
type VectorEncoder interface {
	Encode(ctx context.Context, texts []string) ([][]float32, error)

	// Version identifies the embedding model, recorded alongside vectors.
	Version() string
}
