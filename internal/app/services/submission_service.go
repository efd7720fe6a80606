package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/yigit/portfoliohub/internal/app/models"
	"github.com/yigit/portfoliohub/internal/app/repositories"
	"github.com/yigit/portfoliohub/internal/pkg/apperrors"
	"github.com/yigit/portfoliohub/internal/pkg/events"
	"github.com/yigit/portfoliohub/internal/pkg/helpers"
	"github.com/yigit/portfoliohub/internal/pkg/validation"
)

// SubmissionService merges a student's drafts into the canonical submission
type SubmissionService interface {
	Submit(ctx context.Context, studentID string) (*models.Submission, error)
}

type submissionServiceImpl struct {
	sectionRepo    repositories.SectionRepository
	submissionRepo repositories.SubmissionRepository
	publisher      events.Publisher
	notifyOnSubmit bool
	now            helpers.Clock
	logger         zerolog.Logger
}

// NewSubmissionService creates a new SubmissionService. When notifyOnSubmit
// is set every successful submission is published as a submitted event.
func NewSubmissionService(
	sectionRepo repositories.SectionRepository,
	submissionRepo repositories.SubmissionRepository,
	publisher events.Publisher,
	notifyOnSubmit bool,
	now helpers.Clock,
	logger zerolog.Logger,
) SubmissionService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if now == nil {
		now = helpers.SystemClock
	}
	return &submissionServiceImpl{
		sectionRepo:    sectionRepo,
		submissionRepo: submissionRepo,
		publisher:      publisher,
		notifyOnSubmit: notifyOnSubmit,
		now:            now,
		logger:         logger,
	}
}

// Submit requires every section of models.RequiredSections, snapshots them
// and (re)opens review with status Pending. Prior terminal states are
// overwritten.
func (s *submissionServiceImpl) Submit(ctx context.Context, studentID string) (*models.Submission, error) {
	if err := validation.StudentID(studentID); err != nil {
		return nil, err
	}

	records, err := s.sectionRepo.List(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("error loading sections: %w", err)
	}

	if missing := missingSections(records); len(missing) > 0 {
		names := make([]string, len(missing))
		for i, id := range missing {
			names[i] = string(id)
		}
		return nil, &apperrors.IncompleteSubmissionError{Missing: names}
	}

	data := make(map[models.SectionID]json.RawMessage, len(records))
	files := make(map[models.SectionID]models.FileMap, len(records))
	for _, rec := range records {
		d := rec.Data
		if len(d) == 0 || string(d) == "null" {
			d = models.EmptyDocument
		}
		data[rec.SectionID] = append(json.RawMessage(nil), d...)

		f := models.FileMap{}
		for k, v := range rec.Files {
			f[k] = v
		}
		files[rec.SectionID] = f
	}

	now := s.now()
	stored, err := s.submissionRepo.Upsert(ctx, &models.Submission{
		StudentID:   studentID,
		Data:        data,
		Files:       files,
		Status:      models.StatusPending,
		Remark:      "",
		SubmittedAt: &now,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, fmt.Errorf("error storing submission: %w", err)
	}

	s.logger.Info().
		Str("studentId", studentID).
		Str("portfolioId", stored.ID.String()).
		Msg("Portfolio submitted for review")

	if s.notifyOnSubmit {
		s.publisher.Publish(newEvent(events.KindSubmitted, stored, now))
	}
	return stored, nil
}
