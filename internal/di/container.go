package di

import (
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"match-orchestrator/internal/adapter/genai"
	"match-orchestrator/internal/adapter/repository"
	"match-orchestrator/internal/adapter/vectorindex"
	"match-orchestrator/internal/adapter/web"
	"match-orchestrator/internal/domain"
	"match-orchestrator/internal/infra/config"
	"match-orchestrator/internal/infra/httpclient"
	"match-orchestrator/internal/usecase"
	"match-orchestrator/internal/worker"
)

// ApplicationComponents holds all wired dependencies for the application.
// Every service handle is constructed here and passed down explicitly; there
// are no package-level singletons.
type ApplicationComponents struct {
	TenantRepo     domain.TenantRepository
	ProfileVectors domain.ProfileVectorRepository

	RecommendUsecase usecase.RecommendUsecase
	SimilarUsecase   usecase.SimilarUsecase
	IndexUsecase     usecase.IndexProfileUsecase

	Authenticator *web.Authenticator
	Worker        *worker.IndexWorker
}

// NewApplicationComponents wires all dependencies from config and database pool.
func NewApplicationComponents(cfg *config.Config, pool *pgxpool.Pool, log *slog.Logger) *ApplicationComponents {
	// Repositories
	tenantRepo := repository.NewTenantRepository(pool)
	profileVectors := repository.NewProfileVectorRepository(pool)
	txManager := repository.NewTxManager(pool)

	// Shared HTTP clients with connection pooling
	searchHTTP := httpclient.NewPooledClient(time.Duration(cfg.VectorSearchTimeout) * time.Second)
	genaiHTTP := httpclient.NewPooledClient(time.Duration(cfg.GenAITimeout) * time.Second)

	// External clients
	searchClient := vectorindex.NewClientWithHTTP(cfg.VectorSearchURL, searchHTTP)
	generator := genai.NewGenerator(cfg.GenAIURL, cfg.GenAIModel, genaiHTTP, cfg.InsightRPS, cfg.InsightBurst)
	embedder := genai.NewEmbedder(cfg.GenAIURL, cfg.EmbeddingModel, cfg.GenAITimeout, cfg.EmbeddingDim)

	// Usecases
	enricher := usecase.NewEnricher(generator, time.Duration(cfg.InsightTimeout)*time.Second, log)
	recommendUsecase := usecase.NewRecommendUsecase(searchClient, tenantRepo, enricher, cfg.SearchTopK, log)
	similarUsecase := usecase.NewSimilarUsecase(profileVectors, tenantRepo, enricher, cfg.SearchTopK, log)
	indexUsecase := usecase.NewIndexProfileUsecase(
		tenantRepo, profileVectors, txManager, generator, embedder, searchClient, log,
	)

	authenticator := web.NewAuthenticator(web.AuthConfig{
		Secret:   cfg.JWTSecret,
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
	})

	indexWorker := worker.NewIndexWorker(
		tenantRepo, indexUsecase,
		time.Duration(cfg.WorkerPollInterval)*time.Second,
		cfg.WorkerBatchSize,
		log,
	)

	return &ApplicationComponents{
		TenantRepo:       tenantRepo,
		ProfileVectors:   profileVectors,
		RecommendUsecase: recommendUsecase,
		SimilarUsecase:   similarUsecase,
		IndexUsecase:     indexUsecase,
		Authenticator:    authenticator,
		Worker:           indexWorker,
	}
}
