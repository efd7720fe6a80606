package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/portfoliohub/internal/app/models"
	"github.com/yigit/portfoliohub/internal/app/repositories"
	"github.com/yigit/portfoliohub/internal/pkg/apperrors"
	"github.com/yigit/portfoliohub/internal/pkg/events"
	"github.com/yigit/portfoliohub/internal/pkg/filestorage"
	"github.com/yigit/portfoliohub/internal/pkg/helpers"
	"github.com/yigit/portfoliohub/internal/pkg/validation"
)

// Review action names used in InvalidTransitionError
const (
	ActionFacultyApprove = "faculty-approve"
	ActionFacultyReject  = "faculty-reject"
	ActionAdminApprove   = "admin-approve"
	ActionAdminReject    = "admin-reject"
)

// ReviewOptions tunes the review workflow
type ReviewOptions struct {
	// TwoTier makes faculty approval forward to the admin instead of approving
	TwoTier              bool
	DefaultFacultyRemark string
	DefaultAdminRemark   string
}

// ReviewService drives the review state machine of canonical submissions
type ReviewService interface {
	FacultyApprove(ctx context.Context, studentID, remark string) (*models.Submission, error)
	FacultyReject(ctx context.Context, studentID, remark string) (*models.Submission, error)
	AdminApprove(ctx context.Context, studentID, remark string) (*models.Submission, error)
	AdminReject(ctx context.Context, studentID, remark string) (*models.Submission, error)
	GetStatus(ctx context.Context, studentID string) (models.StatusView, error)
}

type reviewServiceImpl struct {
	submissionRepo repositories.SubmissionRepository
	publisher      events.Publisher
	pdf            pdfProducer
	opts           ReviewOptions
	now            helpers.Clock
	logger         zerolog.Logger
}

// NewReviewService creates a new ReviewService. renderer and store may be nil,
// in which case admin approval completes without a PDF.
func NewReviewService(
	submissionRepo repositories.SubmissionRepository,
	publisher events.Publisher,
	renderer PortfolioRenderer,
	store filestorage.FileStorage,
	opts ReviewOptions,
	now helpers.Clock,
	logger zerolog.Logger,
) ReviewService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if now == nil {
		now = helpers.SystemClock
	}
	if opts.DefaultFacultyRemark == "" {
		opts.DefaultFacultyRemark = "Portfolio approved by faculty"
	}
	if opts.DefaultAdminRemark == "" {
		opts.DefaultAdminRemark = "Portfolio approved by admin"
	}
	return &reviewServiceImpl{
		submissionRepo: submissionRepo,
		publisher:      publisher,
		pdf:            pdfProducer{renderer: renderer, store: store},
		opts:           opts,
		now:            now,
		logger:         logger,
	}
}

// transition applies fn atomically, logs and publishes the committed state
func (s *reviewServiceImpl) transition(ctx context.Context, studentID string, kind events.Kind, fn repositories.UpdateFn) (*models.Submission, error) {
	sub, err := s.submissionRepo.Update(ctx, studentID, fn)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("studentId", studentID).
		Str("portfolioId", sub.ID.String()).
		Str("event", string(kind)).
		Str("status", string(sub.Status)).
		Msg("Portfolio review transition")

	s.publisher.Publish(newEvent(kind, sub, sub.UpdatedAt))
	return sub, nil
}

// FacultyApprove approves, or forwards to the admin in the two-tier flow.
// A Ready portfolio is final until the student resubmits.
func (s *reviewServiceImpl) FacultyApprove(ctx context.Context, studentID, remark string) (*models.Submission, error) {
	if err := validation.StudentID(studentID); err != nil {
		return nil, err
	}
	remark = strings.TrimSpace(remark)
	if remark == "" {
		remark = s.opts.DefaultFacultyRemark
	}

	target, kind := models.StatusApproved, events.KindApproved
	if s.opts.TwoTier {
		target, kind = models.StatusForwardedToAdmin, events.KindForwarded
	}

	return s.transition(ctx, studentID, kind, func(sub *models.Submission) error {
		if sub.Status == models.StatusReady {
			return &apperrors.InvalidTransitionError{From: string(sub.Status), Action: ActionFacultyApprove}
		}
		now := s.now()
		sub.Status = target
		sub.Remark = remark
		models.SetOnce(&sub.FacultyApprovedAt, now)
		sub.UpdatedAt = now
		return nil
	})
}

// FacultyReject requires a remark explaining the rejection
func (s *reviewServiceImpl) FacultyReject(ctx context.Context, studentID, remark string) (*models.Submission, error) {
	if err := validation.StudentID(studentID); err != nil {
		return nil, err
	}
	remark = strings.TrimSpace(remark)
	if remark == "" {
		return nil, apperrors.NewValidationError("remark", "a remark is required to reject a portfolio")
	}

	return s.transition(ctx, studentID, events.KindRejected, func(sub *models.Submission) error {
		if sub.Status == models.StatusReady {
			return &apperrors.InvalidTransitionError{From: string(sub.Status), Action: ActionFacultyReject}
		}
		now := s.now()
		sub.Status = models.StatusRejected
		sub.Remark = remark
		models.SetOnce(&sub.RejectedAt, now)
		sub.UpdatedAt = now
		return nil
	})
}

// AdminApprove finalizes a faculty-approved portfolio and renders its PDF.
// The approval is committed before rendering; a failed render is logged and
// leaves pdfUrl empty so the PDF can be generated again later.
func (s *reviewServiceImpl) AdminApprove(ctx context.Context, studentID, remark string) (*models.Submission, error) {
	if err := validation.StudentID(studentID); err != nil {
		return nil, err
	}
	remark = strings.TrimSpace(remark)
	if remark == "" {
		remark = s.opts.DefaultAdminRemark
	}

	sub, err := s.submissionRepo.Update(ctx, studentID, func(sub *models.Submission) error {
		if !sub.Status.AwaitingAdmin() {
			return &apperrors.InvalidTransitionError{From: string(sub.Status), Action: ActionAdminApprove}
		}
		now := s.now()
		sub.Status = models.StatusReady
		sub.Remark = remark
		models.SetOnce(&sub.AdminApprovedAt, now)
		sub.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}

	if rendered, err := s.attachRenderedPDF(ctx, sub); err != nil {
		var ev *zerolog.Event
		if errors.Is(err, apperrors.ErrRendererUnavailable) {
			ev = s.logger.Warn()
		} else {
			ev = s.logger.Error()
		}
		ev.Err(err).Str("studentId", studentID).Msg("Portfolio approved but PDF generation failed")
	} else {
		sub = rendered
	}

	s.logger.Info().
		Str("studentId", studentID).
		Str("portfolioId", sub.ID.String()).
		Str("event", string(events.KindAdminApproved)).
		Str("pdfUrl", sub.PDFURL).
		Msg("Portfolio review transition")

	s.publisher.Publish(newEvent(events.KindAdminApproved, sub, sub.UpdatedAt))
	return sub, nil
}

func (s *reviewServiceImpl) attachRenderedPDF(ctx context.Context, sub *models.Submission) (*models.Submission, error) {
	url, err := s.pdf.produce(ctx, sub, "")
	if err != nil {
		return nil, err
	}
	updated, err := s.submissionRepo.Update(ctx, sub.StudentID, func(current *models.Submission) error {
		current.PDFURL = url
		current.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error storing pdf url: %w", err)
	}
	return updated, nil
}

// AdminReject sends a faculty-approved portfolio back; the remark is optional
func (s *reviewServiceImpl) AdminReject(ctx context.Context, studentID, remark string) (*models.Submission, error) {
	if err := validation.StudentID(studentID); err != nil {
		return nil, err
	}
	remark = strings.TrimSpace(remark)

	return s.transition(ctx, studentID, events.KindAdminRejected, func(sub *models.Submission) error {
		if !sub.Status.AwaitingAdmin() {
			return &apperrors.InvalidTransitionError{From: string(sub.Status), Action: ActionAdminReject}
		}
		now := s.now()
		sub.Status = models.StatusRejected
		sub.Remark = remark
		models.SetOnce(&sub.AdminRejectedAt, now)
		sub.UpdatedAt = now
		return nil
	})
}

// GetStatus reports Not Submitted for students without a submission
func (s *reviewServiceImpl) GetStatus(ctx context.Context, studentID string) (models.StatusView, error) {
	if err := validation.StudentID(studentID); err != nil {
		return models.StatusView{}, err
	}
	sub, err := s.submissionRepo.Get(ctx, studentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return models.NotSubmittedView(), nil
		}
		return models.StatusView{}, err
	}
	return sub.View(), nil
}
