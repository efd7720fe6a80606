package services

import (
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"path"

	"github.com/rs/zerolog"
	"github.com/yigit/portfoliohub/internal/app/models"
	"github.com/yigit/portfoliohub/internal/app/repositories"
	"github.com/yigit/portfoliohub/internal/pkg/apperrors"
	"github.com/yigit/portfoliohub/internal/pkg/filestorage"
	"github.com/yigit/portfoliohub/internal/pkg/helpers"
	"github.com/yigit/portfoliohub/internal/pkg/validation"
)

// SaveSectionInput is everything a student sends when saving one section.
// Uploads are stored first and their paths merged into Files under the form field name.
type SaveSectionInput struct {
	StudentID string
	SectionID string
	Data      json.RawMessage
	Files     map[string]string
	Uploads   map[string]*multipart.FileHeader
}

// SectionService defines the interface for section draft operations
type SectionService interface {
	SaveSection(ctx context.Context, in SaveSectionInput) (*models.SectionRecord, error)
	GetSection(ctx context.Context, studentID, sectionID string) (*models.SectionRecord, error)
	ListSections(ctx context.Context, studentID string) ([]*models.SectionRecord, error)
	MissingSections(ctx context.Context, studentID string) ([]models.SectionID, error)
}

type sectionServiceImpl struct {
	sectionRepo repositories.SectionRepository
	fileStorage filestorage.FileStorage
	now         helpers.Clock
	logger      zerolog.Logger
}

// NewSectionService creates a new SectionService
func NewSectionService(
	sectionRepo repositories.SectionRepository,
	fileStorage filestorage.FileStorage,
	now helpers.Clock,
	logger zerolog.Logger,
) SectionService {
	if now == nil {
		now = helpers.SystemClock
	}
	return &sectionServiceImpl{
		sectionRepo: sectionRepo,
		fileStorage: fileStorage,
		now:         now,
		logger:      logger,
	}
}

// SaveSection validates identifiers, stores uploads and replaces the draft
func (s *sectionServiceImpl) SaveSection(ctx context.Context, in SaveSectionInput) (*models.SectionRecord, error) {
	if err := validation.StudentID(in.StudentID); err != nil {
		return nil, err
	}
	sectionID, err := validation.SectionID(in.SectionID)
	if err != nil {
		return nil, err
	}
	data, err := validation.SectionData(in.Data)
	if err != nil {
		return nil, err
	}

	files := models.FileMap{}
	for k, v := range in.Files {
		files[k] = v
	}

	var uploaded []string
	if len(in.Uploads) > 0 {
		if s.fileStorage == nil {
			return nil, apperrors.NewValidationError("files", "file uploads are not enabled")
		}
		dir := path.Join("sections", in.StudentID)
		for field, fh := range in.Uploads {
			stored, err := s.fileStorage.SaveFileWithPath(fh, dir)
			if err != nil {
				s.discardUploads(uploaded)
				return nil, apperrors.NewStorageError("save upload "+field, err)
			}
			uploaded = append(uploaded, stored)
			files[field] = stored
		}
	}

	rec := &models.SectionRecord{
		StudentID: in.StudentID,
		SectionID: sectionID,
		Data:      data,
		Files:     files,
		UpdatedAt: s.now(),
	}
	if err := s.sectionRepo.Upsert(ctx, rec); err != nil {
		s.discardUploads(uploaded)
		return nil, fmt.Errorf("error saving section: %w", err)
	}

	s.logger.Debug().
		Str("studentId", rec.StudentID).
		Str("sectionId", string(rec.SectionID)).
		Int("files", len(files)).
		Msg("Section saved")
	return rec, nil
}

// discardUploads removes files stored for a save that did not complete
func (s *sectionServiceImpl) discardUploads(paths []string) {
	for _, p := range paths {
		if err := s.fileStorage.DeleteFile(p); err != nil {
			s.logger.Warn().Err(err).Str("path", p).Msg("Failed to remove orphaned upload")
		}
	}
}

// GetSection returns (nil, nil) when the student has not saved the section yet
func (s *sectionServiceImpl) GetSection(ctx context.Context, studentID, sectionID string) (*models.SectionRecord, error) {
	if err := validation.StudentID(studentID); err != nil {
		return nil, err
	}
	sid, err := validation.SectionID(sectionID)
	if err != nil {
		return nil, err
	}

	rec, err := s.sectionRepo.Get(ctx, studentID, sid)
	if err != nil {
		return nil, fmt.Errorf("error retrieving section: %w", err)
	}
	return rec, nil
}

// ListSections returns every saved draft of the student
func (s *sectionServiceImpl) ListSections(ctx context.Context, studentID string) ([]*models.SectionRecord, error) {
	if err := validation.StudentID(studentID); err != nil {
		return nil, err
	}
	records, err := s.sectionRepo.List(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("error listing sections: %w", err)
	}
	return records, nil
}

// MissingSections lists required sections without a draft, in enumeration order
func (s *sectionServiceImpl) MissingSections(ctx context.Context, studentID string) ([]models.SectionID, error) {
	records, err := s.ListSections(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return missingSections(records), nil
}

func missingSections(records []*models.SectionRecord) []models.SectionID {
	present := make(map[models.SectionID]bool, len(records))
	for _, rec := range records {
		present[rec.SectionID] = true
	}
	missing := []models.SectionID{}
	for _, id := range models.RequiredSections {
		if !present[id] {
			missing = append(missing, id)
		}
	}
	return missing
}
