// Package inmem provides mutex-guarded in-memory repositories used by the
// memory database driver and by service tests.
package inmem

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/yigit/portfoliohub/internal/app/models"
	"github.com/yigit/portfoliohub/internal/app/repositories"
	"github.com/yigit/portfoliohub/internal/pkg/apperrors"
)

type sectionKey struct {
	studentID string
	sectionID models.SectionID
}

// SectionRepository keeps drafts in a map keyed by (studentID, sectionID)
type SectionRepository struct {
	mu sync.RWMutex
	db map[sectionKey]*models.SectionRecord
}

// NewSectionRepository creates an empty SectionRepository
func NewSectionRepository() *SectionRepository {
	return &SectionRepository{db: make(map[sectionKey]*models.SectionRecord)}
}

// Upsert stores a copy of rec, replacing any previous draft
func (r *SectionRepository) Upsert(ctx context.Context, rec *models.SectionRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.db[sectionKey{rec.StudentID, rec.SectionID}] = rec.Clone()
	return nil
}

// Get returns a copy of the draft or nil
func (r *SectionRepository) Get(ctx context.Context, studentID string, sectionID models.SectionID) (*models.SectionRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.db[sectionKey{studentID, sectionID}].Clone(), nil
}

// List returns copies of all drafts of a student ordered by section id
func (r *SectionRepository) List(ctx context.Context, studentID string) ([]*models.SectionRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*models.SectionRecord{}
	for k, rec := range r.db {
		if k.studentID == studentID {
			out = append(out, rec.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SectionID < out[j].SectionID })
	return out, nil
}

// SubmissionRepository keeps canonical submissions keyed by student id
type SubmissionRepository struct {
	mu   sync.RWMutex
	db   map[string]*models.Submission
	byID map[uuid.UUID]string
}

// NewSubmissionRepository creates an empty SubmissionRepository
func NewSubmissionRepository() *SubmissionRepository {
	return &SubmissionRepository{
		db:   make(map[string]*models.Submission),
		byID: make(map[uuid.UUID]string),
	}
}

// Upsert mirrors the PostgreSQL ON CONFLICT behaviour: an existing row keeps
// its id, createdAt and review timestamps, and loses its pdfUrl.
func (r *SubmissionRepository) Upsert(ctx context.Context, sub *models.Submission) (*models.Submission, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	incoming := sub.Clone()
	if incoming.Data == nil {
		incoming.Data = map[models.SectionID]json.RawMessage{}
	}
	if incoming.Files == nil {
		incoming.Files = map[models.SectionID]models.FileMap{}
	}

	existing, ok := r.db[sub.StudentID]
	if !ok {
		if incoming.ID == uuid.Nil {
			incoming.ID = uuid.New()
		}
		r.db[sub.StudentID] = incoming
		r.byID[incoming.ID] = sub.StudentID
		return incoming.Clone(), nil
	}

	existing.Data = incoming.Data
	existing.Files = incoming.Files
	existing.Status = incoming.Status
	existing.Remark = incoming.Remark
	existing.SubmittedAt = incoming.SubmittedAt
	existing.PDFURL = ""
	existing.UpdatedAt = incoming.UpdatedAt
	return existing.Clone(), nil
}

// Get returns a copy of the student's submission
func (r *SubmissionRepository) Get(ctx context.Context, studentID string) (*models.Submission, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	sub, ok := r.db[studentID]
	if !ok {
		return nil, apperrors.NewNotFoundError("portfolio", studentID)
	}
	return sub.Clone(), nil
}

// GetByID returns a copy of the submission with the given portfolio id
func (r *SubmissionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Submission, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	studentID, ok := r.byID[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("portfolio", id.String())
	}
	return r.db[studentID].Clone(), nil
}

// Update applies fn to a copy under the write lock and stores it when fn succeeds
func (r *SubmissionRepository) Update(ctx context.Context, studentID string, fn repositories.UpdateFn) (*models.Submission, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.db[studentID]
	if !ok {
		return nil, apperrors.NewNotFoundError("portfolio", studentID)
	}

	working := current.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}

	// Only review fields are writable here
	current.Status = working.Status
	current.Remark = working.Remark
	current.SubmittedAt = working.SubmittedAt
	current.FacultyApprovedAt = working.FacultyApprovedAt
	current.AdminApprovedAt = working.AdminApprovedAt
	current.RejectedAt = working.RejectedAt
	current.AdminRejectedAt = working.AdminRejectedAt
	current.PDFURL = working.PDFURL
	current.UpdatedAt = working.UpdatedAt
	return current.Clone(), nil
}

// List returns one page ordered by submittedAt descending, then student id
func (r *SubmissionRepository) List(ctx context.Context, filter repositories.SubmissionFilter) ([]*models.Submission, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*models.Submission, 0, len(r.db))
	for _, sub := range r.db {
		if filter.Status == "" || sub.Status == filter.Status {
			matched = append(matched, sub)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i].SubmittedAt, matched[j].SubmittedAt
		switch {
		case a != nil && b != nil && !a.Equal(*b):
			return a.After(*b)
		case a != nil && b == nil:
			return true
		case a == nil && b != nil:
			return false
		}
		return matched[i].StudentID < matched[j].StudentID
	})

	total := int64(len(matched))
	start := int(filter.Offset)
	if start > len(matched) {
		start = len(matched)
	}
	end := len(matched)
	if filter.Limit > 0 && start+int(filter.Limit) < end {
		end = start + int(filter.Limit)
	}

	out := make([]*models.Submission, 0, end-start)
	for _, sub := range matched[start:end] {
		out = append(out, sub.Clone())
	}
	return out, total, nil
}

var (
	_ repositories.SectionRepository    = (*SectionRepository)(nil)
	_ repositories.SubmissionRepository = (*SubmissionRepository)(nil)
)
