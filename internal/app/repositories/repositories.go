package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/yigit/portfoliohub/internal/app/models"
)

// DBTX is the subset of *pgxpool.Pool the repositories use
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// SectionRepository stores per-section drafts keyed by (studentID, sectionID)
type SectionRepository interface {
	// Upsert replaces the whole record for its key
	Upsert(ctx context.Context, rec *models.SectionRecord) error
	// Get returns (nil, nil) when no draft exists
	Get(ctx context.Context, studentID string, sectionID models.SectionID) (*models.SectionRecord, error)
	List(ctx context.Context, studentID string) ([]*models.SectionRecord, error)
}

// SubmissionFilter narrows a portfolio listing
type SubmissionFilter struct {
	Status models.Status
	Offset uint64
	Limit  uint64
}

// UpdateFn mutates a submission inside an atomic read-modify-write
type UpdateFn func(sub *models.Submission) error

// SubmissionRepository stores the canonical per-student submission
type SubmissionRepository interface {
	// Upsert writes data, files, status, remark and submittedAt of sub for its
	// student. An existing row keeps its id, createdAt and review timestamps; its
	// pdfUrl is cleared.
	Upsert(ctx context.Context, sub *models.Submission) (*models.Submission, error)
	// Get returns a NotFoundError when the student never submitted
	Get(ctx context.Context, studentID string) (*models.Submission, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Submission, error)
	// Update loads the student's submission, applies fn and stores the result
	// without another writer interleaving. fn errors abort the update.
	Update(ctx context.Context, studentID string, fn UpdateFn) (*models.Submission, error)
	List(ctx context.Context, filter SubmissionFilter) ([]*models.Submission, int64, error)
}

// Repositories holds all the repository instances
type Repositories struct {
	Sections    SectionRepository
	Submissions SubmissionRepository
}

// NewRepositories initializes the PostgreSQL repositories
func NewRepositories(db DBTX) *Repositories {
	return &Repositories{
		Sections:    NewSectionRepository(db),
		Submissions: NewSubmissionRepository(db),
	}
}

var (
	_ SectionRepository    = (*PostgresSectionRepository)(nil)
	_ SubmissionRepository = (*PostgresSubmissionRepository)(nil)
)
