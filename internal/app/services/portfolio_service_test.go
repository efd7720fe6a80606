package services

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/portfoliohub/internal/app/models"
	"github.com/yigit/portfoliohub/internal/app/models/dto"
	"github.com/yigit/portfoliohub/internal/pkg/apperrors"
	"github.com/yigit/portfoliohub/internal/pkg/events"
)

func TestListPortfolios_NewestFirstWithSections(t *testing.T) {
	env := newTestEnv(t, ReviewOptions{})
	ctx := context.Background()

	env.submitComplete(t, "alice")
	env.submitComplete(t, "bob")
	env.submitComplete(t, "carol")
	_, err := env.reviewSvc.FacultyReject(ctx, "bob", "incomplete projects")
	require.NoError(t, err)

	resp, err := env.portfolioSvc.ListPortfolios(ctx, &dto.PortfolioFilterRequest{})
	require.NoError(t, err)

	require.Len(t, resp.Portfolios, 3)
	assert.Equal(t, "carol", resp.Portfolios[0].StudentID)
	assert.Equal(t, "bob", resp.Portfolios[1].StudentID)
	assert.Equal(t, "alice", resp.Portfolios[2].StudentID)
	assert.Len(t, resp.Portfolios[0].StudentSections, len(models.RequiredSections))
	assert.Equal(t, int64(3), resp.Pagination.TotalItems)
	assert.Equal(t, 1, resp.Pagination.TotalPages)

	resp, err = env.portfolioSvc.ListPortfolios(ctx, &dto.PortfolioFilterRequest{Status: "Rejected"})
	require.NoError(t, err)
	require.Len(t, resp.Portfolios, 1)
	assert.Equal(t, "bob", resp.Portfolios[0].StudentID)
}

func TestListPortfolios_Pagination(t *testing.T) {
	env := newTestEnv(t, ReviewOptions{})
	for _, id := range []string{"s1", "s2", "s3", "s4", "s5"} {
		env.submitComplete(t, id)
	}

	resp, err := env.portfolioSvc.ListPortfolios(context.Background(), &dto.PortfolioFilterRequest{Page: 2, Size: 2})
	require.NoError(t, err)

	require.Len(t, resp.Portfolios, 2)
	assert.Equal(t, "s3", resp.Portfolios[0].StudentID)
	assert.Equal(t, "s2", resp.Portfolios[1].StudentID)
	assert.Equal(t, dto.PaginationInfo{CurrentPage: 2, TotalPages: 3, PageSize: 2, TotalItems: 5}, resp.Pagination)
}

func TestListPortfolios_RejectsUnknownStatus(t *testing.T) {
	env := newTestEnv(t, ReviewOptions{})

	_, err := env.portfolioSvc.ListPortfolios(context.Background(), &dto.PortfolioFilterRequest{Status: "Archived"})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestGetPortfolio(t *testing.T) {
	env := newTestEnv(t, ReviewOptions{})
	ctx := context.Background()
	sub := env.submitComplete(t, "s1")

	byID, err := env.portfolioSvc.GetPortfolioByID(ctx, sub.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "s1", byID.StudentID)
	assert.JSONEq(t, `{"section":"skills"}`, string(byID.StudentSections[models.SectionSkills].Data))

	byStudent, err := env.portfolioSvc.GetPortfolioByStudent(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, sub.ID, byStudent.ID)

	_, err = env.portfolioSvc.GetPortfolioByID(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = env.portfolioSvc.GetPortfolioByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	_, err = env.portfolioSvc.GetPortfolioByStudent(ctx, "nobody")
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestGeneratePDF(t *testing.T) {
	env := newTestEnv(t, ReviewOptions{})
	env.submitComplete(t, "s1")

	sub, err := env.portfolioSvc.GeneratePDF(context.Background(), "s1", "template-2")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(sub.PDFURL, "/uploads/portfolios/"), sub.PDFURL)
	assert.Equal(t, models.StatusPending, sub.Status, "generating a PDF does not change the review status")
	assert.Equal(t, []string{"template-2"}, env.renderer.templates)

	ev := env.recorder.last()
	assert.Equal(t, events.KindPDFGenerated, ev.Kind)
	assert.Equal(t, sub.PDFURL, ev.PDFURL)
}

func TestGeneratePDF_Failures(t *testing.T) {
	env := newTestEnv(t, ReviewOptions{})
	ctx := context.Background()

	_, err := env.portfolioSvc.GeneratePDF(ctx, "s1", "")
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	env.submitComplete(t, "s1")
	env.renderer.err = apperrors.ErrRendererUnavailable
	_, err = env.portfolioSvc.GeneratePDF(ctx, "s1", "")
	assert.ErrorIs(t, err, apperrors.ErrRendererUnavailable)

	stored, err := env.submissions.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, stored.PDFURL)
}

func TestAttachPDF(t *testing.T) {
	env := newTestEnv(t, ReviewOptions{})
	ctx := context.Background()
	env.submitComplete(t, "s1")

	_, err := env.portfolioSvc.AttachPDF(ctx, "s1", fileHeader(t, "file", "cv.docx", []byte("doc")))
	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "file", verr.Field)

	sub, err := env.portfolioSvc.AttachPDF(ctx, "s1", fileHeader(t, "file", "Portfolio.PDF", []byte("%PDF-1.7")))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(sub.PDFURL, "/uploads/portfolios/"), sub.PDFURL)
	assert.Equal(t, events.KindPDFGenerated, env.recorder.last().Kind)

	_, err = env.portfolioSvc.AttachPDF(ctx, "ghost", fileHeader(t, "file", "a.pdf", []byte("%PDF")))
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}
