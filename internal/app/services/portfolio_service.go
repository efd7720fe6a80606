package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/portfoliohub/internal/app/models"
	"github.com/yigit/portfoliohub/internal/app/models/dto"
	"github.com/yigit/portfoliohub/internal/app/repositories"
	"github.com/yigit/portfoliohub/internal/pkg/apperrors"
	"github.com/yigit/portfoliohub/internal/pkg/events"
	"github.com/yigit/portfoliohub/internal/pkg/filestorage"
	"github.com/yigit/portfoliohub/internal/pkg/helpers"
	"github.com/yigit/portfoliohub/internal/pkg/validation"
	"golang.org/x/sync/errgroup"
)

// sectionLoadConcurrency bounds parallel section lookups per listing
const sectionLoadConcurrency = 8

// PortfolioService serves reviewer views of canonical submissions and their PDFs
type PortfolioService interface {
	ListPortfolios(ctx context.Context, filter *dto.PortfolioFilterRequest) (*dto.PortfolioListResponse, error)
	GetPortfolioByID(ctx context.Context, portfolioID string) (*dto.PortfolioResponse, error)
	GetPortfolioByStudent(ctx context.Context, studentID string) (*dto.PortfolioResponse, error)
	GeneratePDF(ctx context.Context, studentID, templateID string) (*models.Submission, error)
	AttachPDF(ctx context.Context, studentID string, file *multipart.FileHeader) (*models.Submission, error)
}

type portfolioServiceImpl struct {
	sectionRepo    repositories.SectionRepository
	submissionRepo repositories.SubmissionRepository
	fileStorage    filestorage.FileStorage
	publisher      events.Publisher
	pdf            pdfProducer
	now            helpers.Clock
	logger         zerolog.Logger
}

// NewPortfolioService creates a new PortfolioService
func NewPortfolioService(
	sectionRepo repositories.SectionRepository,
	submissionRepo repositories.SubmissionRepository,
	fileStorage filestorage.FileStorage,
	renderer PortfolioRenderer,
	publisher events.Publisher,
	now helpers.Clock,
	logger zerolog.Logger,
) PortfolioService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if now == nil {
		now = helpers.SystemClock
	}
	return &portfolioServiceImpl{
		sectionRepo:    sectionRepo,
		submissionRepo: submissionRepo,
		fileStorage:    fileStorage,
		publisher:      publisher,
		pdf:            pdfProducer{renderer: renderer, store: fileStorage},
		now:            now,
		logger:         logger,
	}
}

// ListPortfolios returns one page of submissions with each student's live drafts
func (s *portfolioServiceImpl) ListPortfolios(ctx context.Context, filter *dto.PortfolioFilterRequest) (*dto.PortfolioListResponse, error) {
	if filter == nil {
		filter = &dto.PortfolioFilterRequest{}
	}
	if err := filter.Validate(); err != nil {
		return nil, apperrors.NewValidationError("filter", err.Error())
	}

	page, size := helpers.NormalizePage(filter.Page, filter.Size)
	offset, limit := helpers.CalculateOffsetLimit(page, size)

	subs, total, err := s.submissionRepo.List(ctx, repositories.SubmissionFilter{
		Status: models.Status(filter.Status),
		Offset: offset,
		Limit:  limit,
	})
	if err != nil {
		return nil, fmt.Errorf("error listing portfolios: %w", err)
	}

	portfolios := make([]dto.PortfolioResponse, len(subs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(sectionLoadConcurrency)
	for i, sub := range subs {
		i, sub := i, sub
		g.Go(func() error {
			sections, err := s.loadSections(gctx, sub.StudentID)
			if err != nil {
				return err
			}
			portfolios[i] = dto.PortfolioResponse{Submission: sub, StudentSections: sections}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("error loading portfolio sections: %w", err)
	}

	return &dto.PortfolioListResponse{
		Portfolios: portfolios,
		Pagination: helpers.NewPaginationInfo(total, page, size),
	}, nil
}

// GetPortfolioByID looks a submission up by its portfolio id
func (s *portfolioServiceImpl) GetPortfolioByID(ctx context.Context, portfolioID string) (*dto.PortfolioResponse, error) {
	id, err := uuid.Parse(portfolioID)
	if err != nil {
		return nil, apperrors.NewValidationError("portfolioId", "portfolio id must be a UUID")
	}
	sub, err := s.submissionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.withSections(ctx, sub)
}

// GetPortfolioByStudent looks a submission up by student id
func (s *portfolioServiceImpl) GetPortfolioByStudent(ctx context.Context, studentID string) (*dto.PortfolioResponse, error) {
	if err := validation.StudentID(studentID); err != nil {
		return nil, err
	}
	sub, err := s.submissionRepo.Get(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return s.withSections(ctx, sub)
}

func (s *portfolioServiceImpl) withSections(ctx context.Context, sub *models.Submission) (*dto.PortfolioResponse, error) {
	sections, err := s.loadSections(ctx, sub.StudentID)
	if err != nil {
		return nil, fmt.Errorf("error loading portfolio sections: %w", err)
	}
	return &dto.PortfolioResponse{Submission: sub, StudentSections: sections}, nil
}

func (s *portfolioServiceImpl) loadSections(ctx context.Context, studentID string) (map[models.SectionID]dto.SectionSnapshot, error) {
	records, err := s.sectionRepo.List(ctx, studentID)
	if err != nil {
		return nil, err
	}
	out := make(map[models.SectionID]dto.SectionSnapshot, len(records))
	for _, rec := range records {
		out[rec.SectionID] = dto.SectionSnapshot{Data: rec.Data, Files: rec.Files}
	}
	return out, nil
}

// GeneratePDF renders the current submission with templateID and stores the link
func (s *portfolioServiceImpl) GeneratePDF(ctx context.Context, studentID, templateID string) (*models.Submission, error) {
	if err := validation.StudentID(studentID); err != nil {
		return nil, err
	}
	sub, err := s.submissionRepo.Get(ctx, studentID)
	if err != nil {
		return nil, err
	}

	url, err := s.pdf.produce(ctx, sub, templateID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrValidationFailed) {
			s.logger.Error().Err(err).Str("studentId", studentID).Str("template", templateID).Msg("PDF generation failed")
		}
		return nil, err
	}
	return s.storePDF(ctx, studentID, url)
}

// AttachPDF stores an externally produced PDF as the portfolio document
func (s *portfolioServiceImpl) AttachPDF(ctx context.Context, studentID string, file *multipart.FileHeader) (*models.Submission, error) {
	if err := validation.StudentID(studentID); err != nil {
		return nil, err
	}
	if file == nil {
		return nil, apperrors.NewValidationError("file", "a PDF file is required")
	}
	if !strings.EqualFold(filepath.Ext(file.Filename), ".pdf") {
		return nil, apperrors.NewValidationError("file", "only .pdf files can be attached")
	}
	if s.fileStorage == nil {
		return nil, apperrors.NewValidationError("file", "file uploads are not enabled")
	}
	if _, err := s.submissionRepo.Get(ctx, studentID); err != nil {
		return nil, err
	}

	url, err := s.fileStorage.SaveFileWithPath(file, portfoliosDir)
	if err != nil {
		return nil, apperrors.NewStorageError("store uploaded pdf", err)
	}
	return s.storePDF(ctx, studentID, url)
}

func (s *portfolioServiceImpl) storePDF(ctx context.Context, studentID, url string) (*models.Submission, error) {
	sub, err := s.submissionRepo.Update(ctx, studentID, func(sub *models.Submission) error {
		sub.PDFURL = url
		sub.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("studentId", studentID).Str("pdfUrl", url).Msg("Portfolio PDF stored")
	s.publisher.Publish(newEvent(events.KindPDFGenerated, sub, sub.UpdatedAt))
	return sub, nil
}
