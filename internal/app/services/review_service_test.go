package services

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/portfoliohub/internal/app/models"
	"github.com/yigit/portfoliohub/internal/pkg/apperrors"
	"github.com/yigit/portfoliohub/internal/pkg/events"
)

func TestFacultyApprove_SingleTier(t *testing.T) {
	env := newTestEnv(t, ReviewOptions{})
	env.submitComplete(t, "s1")

	sub, err := env.reviewSvc.FacultyApprove(context.Background(), "s1", "  ")
	require.NoError(t, err)

	assert.Equal(t, models.StatusApproved, sub.Status)
	assert.Equal(t, "Portfolio approved by faculty", sub.Remark)
	assert.NotNil(t, sub.FacultyApprovedAt)
	assert.Equal(t, events.KindApproved, env.recorder.last().Kind)
}

func TestFacultyApprove_TwoTierForwards(t *testing.T) {
	env := newTestEnv(t, ReviewOptions{TwoTier: true, DefaultFacultyRemark: "Looks good"})
	env.submitComplete(t, "s1")

	sub, err := env.reviewSvc.FacultyApprove(context.Background(), "s1", "")
	require.NoError(t, err)

	assert.Equal(t, models.StatusForwardedToAdmin, sub.Status)
	assert.Equal(t, "Looks good", sub.Remark)
	assert.Equal(t, events.KindForwarded, env.recorder.last().Kind)
}

func TestFacultyApprove_TimestampSetOnce(t *testing.T) {
	env := newTestEnv(t, ReviewOptions{})
	env.submitComplete(t, "s1")
	ctx := context.Background()

	first, err := env.reviewSvc.FacultyApprove(ctx, "s1", "ok")
	require.NoError(t, err)
	second, err := env.reviewSvc.FacultyApprove(ctx, "s1", "still ok")
	require.NoError(t, err)

	assert.Equal(t, *first.FacultyApprovedAt, *second.FacultyApprovedAt)
	assert.Equal(t, "still ok", second.Remark)
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))
}

func TestReview_NotSubmitted(t *testing.T) {
	env := newTestEnv(t, ReviewOptions{})
	ctx := context.Background()

	_, err := env.reviewSvc.FacultyApprove(ctx, "ghost", "")
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	_, err = env.reviewSvc.AdminReject(ctx, "ghost", "")
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	assert.Empty(t, env.recorder.kinds())
}

func TestFacultyReject_RequiresRemark(t *testing.T) {
	env := newTestEnv(t, ReviewOptions{})
	env.submitComplete(t, "s1")

	_, err := env.reviewSvc.FacultyReject(context.Background(), "s1", "   ")

	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "remark", verr.Field)

	sub, err := env.submissions.Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, sub.Status)
}

func TestFacultyReject(t *testing.T) {
	env := newTestEnv(t, ReviewOptions{})
	env.submitComplete(t, "s1")

	sub, err := env.reviewSvc.FacultyReject(context.Background(), "s1", "Missing certificates")
	require.NoError(t, err)

	assert.Equal(t, models.StatusRejected, sub.Status)
	assert.Equal(t, "Missing certificates", sub.Remark)
	assert.NotNil(t, sub.RejectedAt)
	assert.Equal(t, events.KindRejected, env.recorder.last().Kind)
	assert.Equal(t, "Missing certificates", env.recorder.last().Remark)
}

func TestAdminActions_RequireFacultyApproval(t *testing.T) {
	env := newTestEnv(t, ReviewOptions{})
	env.submitComplete(t, "s1")
	ctx := context.Background()

	_, err := env.reviewSvc.AdminApprove(ctx, "s1", "")
	var terr *apperrors.InvalidTransitionError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, string(models.StatusPending), terr.From)
	assert.Equal(t, ActionAdminApprove, terr.Action)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	_, err = env.reviewSvc.AdminReject(ctx, "s1", "")
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	sub, err := env.submissions.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, sub.Status, "refused actions leave the submission untouched")
	assert.Equal(t, []events.Kind{events.KindSubmitted}, env.recorder.kinds())
}

func TestAdminApprove_RendersPDF(t *testing.T) {
	env := newTestEnv(t, ReviewOptions{TwoTier: true})
	env.submitComplete(t, "s1")
	ctx := context.Background()

	_, err := env.reviewSvc.FacultyApprove(ctx, "s1", "")
	require.NoError(t, err)

	sub, err := env.reviewSvc.AdminApprove(ctx, "s1", "")
	require.NoError(t, err)

	assert.Equal(t, models.StatusReady, sub.Status)
	assert.Equal(t, "Portfolio approved by admin", sub.Remark)
	assert.NotNil(t, sub.AdminApprovedAt)
	require.True(t, strings.HasPrefix(sub.PDFURL, "/uploads/portfolios/"), sub.PDFURL)
	assert.True(t, strings.HasSuffix(sub.PDFURL, ".pdf"))

	content, err := os.ReadFile(env.store.GetFullPath(sub.PDFURL))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 s1", string(content))

	ev := env.recorder.last()
	assert.Equal(t, events.KindAdminApproved, ev.Kind)
	assert.Equal(t, sub.PDFURL, ev.PDFURL)

	view, err := env.reviewSvc.GetStatus(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusReady, view.Status)
	assert.Equal(t, sub.PDFURL, view.PDFURL)
}

func TestAdminApprove_RenderFailureKeepsApproval(t *testing.T) {
	env := newTestEnv(t, ReviewOptions{})
	env.renderer.err = errRenderFailed
	env.submitComplete(t, "s1")
	ctx := context.Background()

	_, err := env.reviewSvc.FacultyApprove(ctx, "s1", "")
	require.NoError(t, err)

	sub, err := env.reviewSvc.AdminApprove(ctx, "s1", "final")
	require.NoError(t, err)
	assert.Equal(t, models.StatusReady, sub.Status)
	assert.Empty(t, sub.PDFURL)

	stored, err := env.submissions.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusReady, stored.Status)
	assert.Equal(t, events.KindAdminApproved, env.recorder.last().Kind)
}

func TestAdminApprove_WithoutRenderer(t *testing.T) {
	env := newTestEnv(t, ReviewOptions{})
	env.reviewSvc = NewReviewService(env.submissions, nil, nil, nil, ReviewOptions{}, env.clock.Now, zerolog.Nop())
	env.submitComplete(t, "s1")
	ctx := context.Background()

	_, err := env.reviewSvc.FacultyApprove(ctx, "s1", "")
	require.NoError(t, err)
	sub, err := env.reviewSvc.AdminApprove(ctx, "s1", "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusReady, sub.Status)
	assert.Empty(t, sub.PDFURL)
}

func TestAdminReject_RemarkOptional(t *testing.T) {
	env := newTestEnv(t, ReviewOptions{TwoTier: true})
	env.submitComplete(t, "s1")
	ctx := context.Background()

	_, err := env.reviewSvc.FacultyApprove(ctx, "s1", "")
	require.NoError(t, err)

	sub, err := env.reviewSvc.AdminReject(ctx, "s1", "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, sub.Status)
	assert.Empty(t, sub.Remark)
	assert.NotNil(t, sub.AdminRejectedAt)
	assert.Nil(t, sub.RejectedAt)
	assert.Equal(t, events.KindAdminRejected, env.recorder.last().Kind)
}

func TestFacultyActions_RefusedWhenReady(t *testing.T) {
	env := newTestEnv(t, ReviewOptions{})
	env.submitComplete(t, "s1")
	ctx := context.Background()

	_, err := env.reviewSvc.FacultyApprove(ctx, "s1", "")
	require.NoError(t, err)
	_, err = env.reviewSvc.AdminApprove(ctx, "s1", "")
	require.NoError(t, err)

	_, err = env.reviewSvc.FacultyReject(ctx, "s1", "too late")
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	_, err = env.reviewSvc.FacultyApprove(ctx, "s1", "")
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	// Resubmitting reopens the review
	_, err = env.submissionSvc.Submit(ctx, "s1")
	require.NoError(t, err)
	_, err = env.reviewSvc.FacultyReject(ctx, "s1", "needs work")
	assert.NoError(t, err)
}

func TestGetStatus(t *testing.T) {
	env := newTestEnv(t, ReviewOptions{})
	ctx := context.Background()

	view, err := env.reviewSvc.GetStatus(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusNotSubmitted, view.Status)
	assert.Empty(t, view.Remark)

	env.submitComplete(t, "s1")
	_, err = env.reviewSvc.FacultyReject(ctx, "s1", "Fix typos")
	require.NoError(t, err)

	view, err = env.reviewSvc.GetStatus(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, view.Status)
	assert.Equal(t, "Fix typos", view.Remark)

	again, err := env.reviewSvc.GetStatus(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, view, again, "reading the status has no side effects")
	assert.Equal(t, []events.Kind{events.KindSubmitted, events.KindRejected}, env.recorder.kinds())
}

// TestReviewWorkflow_EndToEnd walks a student from drafts to a ready PDF and
// checks observers see each committed transition exactly once, in order.
func TestReviewWorkflow_EndToEnd(t *testing.T) {
	env := newTestEnv(t, ReviewOptions{})
	ctx := context.Background()

	env.saveSections(t, "s42", models.SectionProfile, models.SectionEducation)

	_, err := env.submissionSvc.Submit(ctx, "s42")
	var incomplete *apperrors.IncompleteSubmissionError
	require.ErrorAs(t, err, &incomplete)
	assert.Equal(t, []string{
		"experience", "skills", "certifications", "training",
		"projects", "socialLinks", "volunteer", "additionalInfo",
	}, incomplete.Missing)
	assert.Empty(t, env.recorder.kinds())

	env.saveSections(t, "s42", models.RequiredSections...)

	sub, err := env.submissionSvc.Submit(ctx, "s42")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, sub.Status)

	sub, err = env.reviewSvc.FacultyApprove(ctx, "s42", "looks good")
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, sub.Status)
	assert.Equal(t, "looks good", sub.Remark)
	require.NotNil(t, sub.FacultyApprovedAt)
	facultyApprovedAt := *sub.FacultyApprovedAt

	sub, err = env.reviewSvc.AdminApprove(ctx, "s42", "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusReady, sub.Status)
	require.NotNil(t, sub.AdminApprovedAt)
	assert.NotEmpty(t, sub.PDFURL)
	require.NotNil(t, sub.FacultyApprovedAt)
	assert.Equal(t, facultyApprovedAt, *sub.FacultyApprovedAt, "faculty approval time is set once")
	assert.Len(t, env.renderer.templates, 1, "the renderer runs once, on admin approval")

	assert.Equal(t, []events.Kind{
		events.KindSubmitted,
		events.KindApproved,
		events.KindAdminApproved,
	}, env.recorder.kinds())

	for _, ev := range env.recorder.events {
		assert.Equal(t, "s42", ev.StudentID)
		assert.Equal(t, sub.ID.String(), ev.PortfolioID)
	}
	assert.Equal(t, sub.PDFURL, env.recorder.last().PDFURL)
}
