package services

// Services defined in this package:
// - SectionService: per-section draft storage and uploads
// - SubmissionService: merges drafts into the canonical submission
// - ReviewService: faculty/admin review state machine
// - PortfolioService: reviewer read models and PDF generation

import (
	"context"
	"time"

	"github.com/yigit/portfoliohub/internal/app/models"
	"github.com/yigit/portfoliohub/internal/pkg/events"
)

// PortfolioRenderer produces the PDF bytes of a submission
type PortfolioRenderer interface {
	RenderPortfolio(ctx context.Context, sub *models.Submission, templateID string) ([]byte, error)
}

func newEvent(kind events.Kind, sub *models.Submission, now time.Time) events.Event {
	return events.Event{
		Kind:        kind,
		StudentID:   sub.StudentID,
		PortfolioID: sub.ID.String(),
		Status:      string(sub.Status),
		Remark:      sub.Remark,
		PDFURL:      sub.PDFURL,
		Timestamp:   now,
	}
}
