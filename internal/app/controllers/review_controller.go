package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/portfoliohub/internal/app/models"
	"github.com/yigit/portfoliohub/internal/app/models/dto"
	"github.com/yigit/portfoliohub/internal/app/services"
	"github.com/yigit/portfoliohub/internal/middleware"
)

type reviewAction func(ctx context.Context, studentID, remark string) (*models.Submission, error)

// ReviewController exposes the faculty and admin review actions
type ReviewController struct {
	reviewService services.ReviewService
}

// NewReviewController creates a new ReviewController
func NewReviewController(reviewService services.ReviewService) *ReviewController {
	return &ReviewController{reviewService: reviewService}
}

func (c *ReviewController) handle(ctx *gin.Context, action reviewAction, message string) {
	var req dto.ReviewRequest
	if !bindOptionalJSON(ctx, &req) {
		return
	}

	sub, err := action(ctx, ctx.Param("studentId"), req.Remark)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(sub, message))
}

// FacultyApprove godoc
// @Summary Faculty approval
// @Description Approves a submitted portfolio. In two-tier mode it is forwarded to an admin.
// @Tags review
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param studentId path string true "Student ID"
// @Param request body dto.ReviewRequest false "Optional remark"
// @Success 200 {object} dto.APIResponse{data=models.Submission}
// @Failure 404 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Failure 409 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Router /review/faculty/{studentId}/approve [post]
func (c *ReviewController) FacultyApprove(ctx *gin.Context) {
	c.handle(ctx, c.reviewService.FacultyApprove, "Portfolio approved")
}

// FacultyReject godoc
// @Summary Faculty rejection
// @Description Rejects a portfolio. A remark is required.
// @Tags review
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param studentId path string true "Student ID"
// @Param request body dto.ReviewRequest true "Rejection remark"
// @Success 200 {object} dto.APIResponse{data=models.Submission}
// @Failure 400 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Router /review/faculty/{studentId}/reject [post]
func (c *ReviewController) FacultyReject(ctx *gin.Context) {
	c.handle(ctx, c.reviewService.FacultyReject, "Portfolio rejected")
}

// AdminApprove godoc
// @Summary Final admin approval
// @Description Marks a faculty-approved portfolio Ready and renders its PDF
// @Tags review
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param studentId path string true "Student ID"
// @Success 200 {object} dto.APIResponse{data=models.Submission}
// @Failure 409 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Router /review/admin/{studentId}/approve [post]
func (c *ReviewController) AdminApprove(ctx *gin.Context) {
	c.handle(ctx, c.reviewService.AdminApprove, "Portfolio marked ready")
}

// AdminReject godoc
// @Summary Final admin rejection
// @Tags review
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param studentId path string true "Student ID"
// @Success 200 {object} dto.APIResponse{data=models.Submission}
// @Failure 409 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Router /review/admin/{studentId}/reject [post]
func (c *ReviewController) AdminReject(ctx *gin.Context) {
	c.handle(ctx, c.reviewService.AdminReject, "Portfolio rejected by admin")
}
