package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"match-orchestrator/internal/adapter/genai"
	"match-orchestrator/internal/adapter/repository"
	"match-orchestrator/internal/adapter/vectorindex"
	"match-orchestrator/internal/domain"
	"match-orchestrator/internal/infra"
	"match-orchestrator/internal/infra/config"
	"match-orchestrator/internal/usecase"
)

var (
	version = "dev"

	// Global flags
	verbose bool

	// Run command flags
	tenantID  string
	all       bool
	batchSize int
	sleepMs   int
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "reindex",
	Short:   "Rebuild tenant profile embeddings",
	Version: version,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the reindex process",
	Long: `Run the reindex process to (re)build profile embeddings.

By default only tenants without an embedding are processed. Use --all to
rebuild every profile, or --tenant to reindex a single one.

Examples:
  # Index tenants that have no embedding yet
  reindex run

  # Rebuild every profile embedding
  reindex run --all

  # Reindex one tenant
  reindex run --tenant 9f1c...`,
	RunE: runReindex,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	runCmd.Flags().StringVar(&tenantID, "tenant", "", "reindex a single tenant by ID")
	runCmd.Flags().BoolVar(&all, "all", false, "rebuild every profile embedding")
	runCmd.Flags().IntVar(&batchSize, "batch-size", 25, "tenants per batch")
	runCmd.Flags().IntVar(&sleepMs, "sleep-ms", 200, "pause between tenants, in milliseconds")

	rootCmd.AddCommand(runCmd)
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}
	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}

func runReindex(cmd *cobra.Command, args []string) error {
	log := newLogger()
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)
	pool, err := infra.NewPostgresDB(ctx, dsn)
	if err != nil {
		return fmt.Errorf("failed to connect to db: %w", err)
	}
	defer pool.Close()

	tenantRepo := repository.NewTenantRepository(pool)
	profileVectors := repository.NewProfileVectorRepository(pool)
	txManager := repository.NewTxManager(pool)
	generator := genai.NewGeneratorWithTimeout(cfg.GenAIURL, cfg.GenAIModel, cfg.GenAITimeout, cfg.InsightRPS, cfg.InsightBurst)
	embedder := genai.NewEmbedder(cfg.GenAIURL, cfg.EmbeddingModel, cfg.GenAITimeout, cfg.EmbeddingDim)
	searchClient := vectorindex.NewClient(cfg.VectorSearchURL, cfg.VectorSearchTimeout)

	indexUsecase := usecase.NewIndexProfileUsecase(
		tenantRepo, profileVectors, txManager, generator, embedder, searchClient, log,
	)

	if tenantID != "" {
		id, err := uuid.Parse(tenantID)
		if err != nil {
			return fmt.Errorf("invalid tenant id: %w", err)
		}
		return indexUsecase.Execute(ctx, id)
	}

	if all {
		return reindexAll(ctx, pool, indexUsecase, log)
	}

	// Default: drain the unindexed backlog.
	processed, failed, err := drainBacklog(ctx, tenantRepo, indexUsecase, log, batchSize, time.Duration(sleepMs)*time.Millisecond)
	if err != nil {
		return err
	}

	log.Info("reindex finished", "processed", processed, "failed", failed)
	return nil
}

// drainBacklog indexes unindexed tenants batch by batch until the backlog is
// empty. Tenants whose indexing fails stay unindexed and come back on the
// next listing, so a batch that makes no progress at all would repeat
// forever; that stops the drain instead.
func drainBacklog(ctx context.Context, tenantRepo domain.TenantRepository, indexUsecase usecase.IndexProfileUsecase, log *slog.Logger, batchSize int, pause time.Duration) (processed, failed int, err error) {
	for {
		tenants, err := tenantRepo.ListUnindexed(ctx, batchSize)
		if err != nil {
			return processed, failed, fmt.Errorf("failed to list unindexed tenants: %w", err)
		}
		if len(tenants) == 0 {
			return processed, failed, nil
		}

		batchProcessed := 0
		for _, t := range tenants {
			if ctx.Err() != nil {
				return processed, failed, ctx.Err()
			}
			if err := indexUsecase.Execute(ctx, t.ID); err != nil {
				log.Error("failed to index tenant", "tenant_id", t.ID.String(), "error", err)
				failed++
			} else {
				processed++
				batchProcessed++
			}
			if pause > 0 {
				select {
				case <-ctx.Done():
					return processed, failed, ctx.Err()
				case <-time.After(pause):
				}
			}
		}

		if batchProcessed == 0 {
			return processed, failed, fmt.Errorf("indexing made no progress: %d tenants in the batch failed", len(tenants))
		}
	}
}

func reindexAll(ctx context.Context, pool *pgxpool.Pool, indexUsecase usecase.IndexProfileUsecase, log *slog.Logger) error {
	rows, err := pool.Query(ctx, `SELECT id FROM tenants ORDER BY created_at ASC`)
	if err != nil {
		return fmt.Errorf("failed to list tenants: %w", err)
	}

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan tenant id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("rows error: %w", err)
	}

	var processed, failed int
	for _, id := range ids {
		if err := indexUsecase.Execute(ctx, id); err != nil {
			log.Error("failed to index tenant", "tenant_id", id.String(), "error", err)
			failed++
		} else {
			processed++
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(sleepMs) * time.Millisecond):
		}
	}

	log.Info("reindex finished", "processed", processed, "failed", failed)
	return nil
}
