package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/portfoliohub/internal/app/auth"
	"github.com/yigit/portfoliohub/internal/app/models/dto"
	"github.com/yigit/portfoliohub/internal/app/services"
	"github.com/yigit/portfoliohub/internal/middleware"
)

// SubmissionController handles portfolio submission and status polling
type SubmissionController struct {
	submissionService services.SubmissionService
	reviewService     services.ReviewService
}

// NewSubmissionController creates a new SubmissionController
func NewSubmissionController(submissionService services.SubmissionService, reviewService services.ReviewService) *SubmissionController {
	return &SubmissionController{
		submissionService: submissionService,
		reviewService:     reviewService,
	}
}

// Submit godoc
// @Summary Submit a portfolio for review
// @Description Snapshots all ten sections into the canonical submission and resets its status to Pending
// @Tags submissions
// @Produce json
// @Security BearerAuth
// @Param studentId path string true "Student ID"
// @Success 200 {object} dto.APIResponse{data=models.Submission}
// @Failure 400 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Router /students/{studentId}/submit [post]
func (c *SubmissionController) Submit(ctx *gin.Context) {
	studentID, ok := authorize(ctx, auth.CanActAsStudent)
	if !ok {
		return
	}

	sub, err := c.submissionService.Submit(ctx, studentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(sub, "Portfolio submitted for review"))
}

// GetStatus godoc
// @Summary Get portfolio review status
// @Tags submissions
// @Produce json
// @Security BearerAuth
// @Param studentId path string true "Student ID"
// @Success 200 {object} dto.APIResponse{data=models.StatusView}
// @Router /students/{studentId}/status [get]
func (c *SubmissionController) GetStatus(ctx *gin.Context) {
	studentID, ok := authorize(ctx, auth.CanAccessStudent)
	if !ok {
		return
	}

	view, err := c.reviewService.GetStatus(ctx, studentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(view, ""))
}
