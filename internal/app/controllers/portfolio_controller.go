package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/portfoliohub/internal/app/models/dto"
	"github.com/yigit/portfoliohub/internal/app/services"
	"github.com/yigit/portfoliohub/internal/middleware"
)

// PortfolioController serves reviewer listings and portfolio PDFs
type PortfolioController struct {
	portfolioService services.PortfolioService
}

// NewPortfolioController creates a new PortfolioController
func NewPortfolioController(portfolioService services.PortfolioService) *PortfolioController {
	return &PortfolioController{portfolioService: portfolioService}
}

// ListPortfolios godoc
// @Summary List submitted portfolios
// @Description Lists canonical submissions, newest submission first, with each student's current drafts
// @Tags portfolios
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status filter"
// @Param page query int false "Page number (1-based)"
// @Param size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.PortfolioListResponse}
// @Router /portfolios [get]
func (c *PortfolioController) ListPortfolios(ctx *gin.Context) {
	var filter dto.PortfolioFilterRequest
	if err := ctx.ShouldBindQuery(&filter); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewFailureResponse(
			dto.NewErrorDetail(dto.ErrorCodeInvalidRequest, "Invalid query parameters"),
		))
		return
	}
	if err := middleware.ValidateDTO(&filter); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	resp, err := c.portfolioService.ListPortfolios(ctx, &filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, ""))
}

// GetPortfolioByID godoc
// @Summary Get a portfolio by id
// @Tags portfolios
// @Produce json
// @Security BearerAuth
// @Param portfolioId path string true "Portfolio UUID"
// @Success 200 {object} dto.APIResponse{data=dto.PortfolioResponse}
// @Failure 404 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Router /portfolios/{portfolioId} [get]
func (c *PortfolioController) GetPortfolioByID(ctx *gin.Context) {
	resp, err := c.portfolioService.GetPortfolioByID(ctx, ctx.Param("portfolioId"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, ""))
}

// GetPortfolioByStudent godoc
// @Summary Get a student's portfolio
// @Tags portfolios
// @Produce json
// @Security BearerAuth
// @Param studentId path string true "Student ID"
// @Success 200 {object} dto.APIResponse{data=dto.PortfolioResponse}
// @Failure 404 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Router /portfolios/student/{studentId} [get]
func (c *PortfolioController) GetPortfolioByStudent(ctx *gin.Context) {
	resp, err := c.portfolioService.GetPortfolioByStudent(ctx, ctx.Param("studentId"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, ""))
}

// GeneratePDF godoc
// @Summary Render a portfolio PDF
// @Description Renders the canonical submission with the chosen template and stores the PDF link
// @Tags portfolios
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param studentId path string true "Student ID"
// @Param request body dto.GeneratePDFRequest false "Template selection"
// @Success 200 {object} dto.APIResponse{data=dto.PDFResponse}
// @Failure 503 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Router /portfolios/{studentId}/pdf [post]
func (c *PortfolioController) GeneratePDF(ctx *gin.Context) {
	var req dto.GeneratePDFRequest
	if !bindOptionalJSON(ctx, &req) {
		return
	}

	sub, err := c.portfolioService.GeneratePDF(ctx, ctx.Param("studentId"), req.TemplateID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(
		dto.PDFResponse{StudentID: sub.StudentID, PDFURL: sub.PDFURL},
		"PDF generated",
	))
}

// UploadPDF godoc
// @Summary Attach an externally produced PDF
// @Tags portfolios
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param studentId path string true "Student ID"
// @Param file formData file true "PDF file"
// @Success 200 {object} dto.APIResponse{data=dto.PDFResponse}
// @Failure 400 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Router /portfolios/{studentId}/pdf/upload [post]
func (c *PortfolioController) UploadPDF(ctx *gin.Context) {
	file, err := ctx.FormFile("file")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewFailureResponse(
			dto.NewErrorDetail(dto.ErrorCodeInvalidRequest, "Invalid or missing file").WithField("file"),
		))
		return
	}

	sub, err := c.portfolioService.AttachPDF(ctx, ctx.Param("studentId"), file)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(
		dto.PDFResponse{StudentID: sub.StudentID, PDFURL: sub.PDFURL},
		"PDF uploaded",
	))
}
