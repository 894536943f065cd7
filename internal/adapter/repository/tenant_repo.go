package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"match-orchestrator/internal/domain"
)

type tenantRepository struct {
	pool *pgxpool.Pool
}

// NewTenantRepository creates a new TenantRepository.
func NewTenantRepository(pool *pgxpool.Pool) domain.TenantRepository {
	return &tenantRepository{pool: pool}
}

type dbExecutor interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func (r *tenantRepository) getExecutor(ctx context.Context) dbExecutor {
	if tx := txFrom(ctx); tx != nil {
		return tx
	}
	return r.pool
}

// storageFault tags a persistence error so callers can match domain.ErrStorage.
func storageFault(op string, err error) error {
	return fmt.Errorf("%s: %w", op, errors.Join(domain.ErrStorage, err))
}

const tenantSelect = `
	SELECT t.id, COALESCE(t.embedding_id, ''), t.created_at,
	       COALESCE(p.first_name, ''), COALESCE(p.middle_name, ''), COALESCE(p.last_name, ''),
	       COALESCE(i.interests, '{}')
	FROM tenants t
	LEFT JOIN personal_info p ON p.tenant_id = t.id
	LEFT JOIN interests_and_hobbies i ON i.tenant_id = t.id
`

func scanTenant(row pgx.Row) (domain.Tenant, error) {
	var t domain.Tenant
	err := row.Scan(
		&t.ID, &t.EmbeddingID, &t.CreatedAt,
		&t.PersonalInfo.FirstName, &t.PersonalInfo.MiddleName, &t.PersonalInfo.LastName,
		&t.Interests.Interests,
	)
	return t, err
}

func (r *tenantRepository) FetchCandidates(ctx context.Context, embeddingIDs []string, excludeTenantID uuid.UUID) ([]domain.Tenant, error) {
	if len(embeddingIDs) == 0 {
		return nil, nil
	}

	// Single query with joined profile sub-records; no per-candidate lookups.
	query := tenantSelect + `
		WHERE t.embedding_id = ANY($1)
		  AND t.id <> $2
	`
	rows, err := r.getExecutor(ctx).Query(ctx, query, embeddingIDs, excludeTenantID)
	if err != nil {
		return nil, storageFault("failed to query candidates", err)
	}
	defer rows.Close()

	var tenants []domain.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, storageFault("failed to scan candidate", err)
		}
		tenants = append(tenants, t)
	}
	if err := rows.Err(); err != nil {
		return nil, storageFault("rows error", err)
	}
	return tenants, nil
}

func (r *tenantRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Tenant, error) {
	query := tenantSelect + `
		WHERE t.id = $1
	`
	t, err := scanTenant(r.getExecutor(ctx).QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTenantNotFound
		}
		return nil, storageFault("failed to get tenant", err)
	}
	return &t, nil
}

func (r *tenantRepository) ListUnindexed(ctx context.Context, limit int) ([]domain.Tenant, error) {
	query := tenantSelect + `
		WHERE t.embedding_id IS NULL OR t.embedding_id = ''
		ORDER BY t.created_at ASC
		LIMIT $1
	`
	rows, err := r.getExecutor(ctx).Query(ctx, query, limit)
	if err != nil {
		return nil, storageFault("failed to list unindexed tenants", err)
	}
	defer rows.Close()

	var tenants []domain.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, storageFault("failed to scan tenant", err)
		}
		tenants = append(tenants, t)
	}
	if err := rows.Err(); err != nil {
		return nil, storageFault("rows error", err)
	}
	return tenants, nil
}

func (r *tenantRepository) SetEmbeddingID(ctx context.Context, tenantID uuid.UUID, embeddingID string) error {
	tag, err := r.getExecutor(ctx).Exec(ctx,
		`UPDATE tenants SET embedding_id = $2, updated_at = now() WHERE id = $1`,
		tenantID, embeddingID,
	)
	if err != nil {
		return storageFault("failed to set embedding id", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTenantNotFound
	}
	return nil
}
