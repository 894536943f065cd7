package usecase

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"match-orchestrator/internal/domain"
)

// Enricher runs the insight fan-out and ranking shared by both
// recommendation entry points.
type Enricher struct {
	insightClient  domain.InsightClient
	insightTimeout time.Duration
	logger         *slog.Logger
}

// NewEnricher creates the fan-out coordinator. insightTimeout bounds each
// generation call; zero disables the bound.
func NewEnricher(insightClient domain.InsightClient, insightTimeout time.Duration, logger *slog.Logger) *Enricher {
	return &Enricher{
		insightClient:  insightClient,
		insightTimeout: insightTimeout,
		logger:         logger,
	}
}

type scoredCandidate struct {
	tenant domain.Tenant
	score  float64
}

// EnrichAndRank generates one insight per scored candidate concurrently,
// waits for every call to finish, and returns the batch sorted by score
// descending (stable for ties, in candidate submission order).
//
// A failed generation never fails the batch: the candidate gets the
// deterministic fallback insight and the error is logged.
func (e *Enricher) EnrichAndRank(ctx context.Context, tenants []domain.Tenant, scores domain.ScoreMap, query string) []domain.Recommendation {
	// Defensive: the fetch already scopes candidates to the score map, but a
	// candidate without a score cannot be ranked, so skip it here too.
	scored := make([]scoredCandidate, 0, len(tenants))
	for _, t := range tenants {
		score, ok := scores[t.EmbeddingID]
		if !ok {
			e.logger.WarnContext(ctx, "candidate_without_score_skipped",
				slog.String("tenant_id", t.ID.String()),
				slog.String("embedding_id", t.EmbeddingID))
			continue
		}
		scored = append(scored, scoredCandidate{tenant: t, score: score})
	}

	// Results land in the slot matching submission order, so association
	// never depends on which goroutine finishes first.
	results := make([]domain.Recommendation, len(scored))
	g, gctx := errgroup.WithContext(ctx)
	for i, sc := range scored {
		g.Go(func() error {
			results[i] = e.enrichOne(gctx, sc.tenant, query, sc.score)
			return nil
		})
	}
	_ = g.Wait() // enrichOne never returns an error

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results
}

func (e *Enricher) enrichOne(ctx context.Context, tenant domain.Tenant, query string, score float64) domain.Recommendation {
	name := tenant.DisplayName()

	if e.insightTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.insightTimeout)
		defer cancel()
	}

	insight, err := e.insightClient.GenerateInsight(ctx, domain.InsightRequest{
		Query:     query,
		TenantID:  tenant.ID.String(),
		Name:      name,
		Score:     score,
		Interests: tenant.InterestsCSV(),
	})
	if err != nil {
		e.logger.ErrorContext(ctx, "insight_generation_failed",
			slog.String("error_kind", "enrichment_failure"),
			slog.String("tenant_id", tenant.ID.String()),
			slog.String("error", err.Error()))
		return domain.Recommendation{
			Tenant:  tenant,
			Score:   score,
			Insight: domain.FallbackInsight(name),
		}
	}

	return domain.Recommendation{
		Tenant:  tenant,
		Score:   score,
		Insight: insight,
	}
}
