package domain

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrStorage marks faults from the persistence layer. Callers match it with
// errors.Is and surface it as a server-side failure.
var ErrStorage = errors.New("storage error")

// ErrTenantNotFound is returned when a tenant lookup by ID finds no row.
var ErrTenantNotFound = errors.New("tenant not found")

// PersonalInfo holds the name parts of a tenant profile. Every part is
// optional.
type PersonalInfo struct {
	FirstName  string `json:"first_name"`
	MiddleName string `json:"middle_name"`
	LastName   string `json:"last_name"`
}

// InterestsAndHobbies holds the interest tags of a tenant profile.
type InterestsAndHobbies struct {
	Interests []string `json:"interests"`
}

// Tenant is a user profile. The recommendation pipeline only reads tenants;
// writes happen through the indexing path.
type Tenant struct {
	ID           uuid.UUID           `json:"id"`
	EmbeddingID  string              `json:"embedding_id"`
	PersonalInfo PersonalInfo        `json:"personal_info"`
	Interests    InterestsAndHobbies `json:"interests_and_hobbies"`
	CreatedAt    time.Time           `json:"created_at"`
}

// DisplayName composes the tenant's name from first, middle and last name,
// skipping empty parts and joining the rest with single spaces.
func (t Tenant) DisplayName() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{t.PersonalInfo.FirstName, t.PersonalInfo.MiddleName, t.PersonalInfo.LastName} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// InterestsCSV joins the tenant's interest tags with commas. An empty tag
// list yields an empty string.
func (t Tenant) InterestsCSV() string {
	return strings.Join(t.Interests.Interests, ",")
}

// TenantRepository defines read and indexing-support access to tenant rows.
type TenantRepository interface {
	// FetchCandidates returns tenants whose embedding ID is in embeddingIDs,
	// excluding the requester, with personal info and interests eagerly
	// loaded in the same query. Requested IDs without a matching row are
	// silently dropped.
	FetchCandidates(ctx context.Context, embeddingIDs []string, excludeTenantID uuid.UUID) ([]Tenant, error)

	// GetByID loads a single tenant with its profile sub-records.
	// Returns ErrTenantNotFound when no row matches.
	GetByID(ctx context.Context, id uuid.UUID) (*Tenant, error)

	// ListUnindexed returns tenants that have no embedding ID yet, oldest
	// first, up to limit.
	ListUnindexed(ctx context.Context, limit int) ([]Tenant, error)

	// SetEmbeddingID records the vector-index identity on the tenant row.
	SetEmbeddingID(ctx context.Context, tenantID uuid.UUID, embeddingID string) error
}

// TransactionManager runs a function within a database transaction.
type TransactionManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}
