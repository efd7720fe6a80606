package controllers

import (
	"encoding/json"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yigit/portfoliohub/internal/app/auth"
	"github.com/yigit/portfoliohub/internal/app/models"
	"github.com/yigit/portfoliohub/internal/app/models/dto"
	"github.com/yigit/portfoliohub/internal/app/services"
	"github.com/yigit/portfoliohub/internal/middleware"
)

// SectionController handles a student's section drafts
type SectionController struct {
	sectionService services.SectionService
}

// NewSectionController creates a new SectionController
func NewSectionController(sectionService services.SectionService) *SectionController {
	return &SectionController{sectionService: sectionService}
}

// SaveSection godoc
// @Summary Save a portfolio section
// @Description Replace the caller's draft for one section. Accepts JSON or multipart/form-data with a "data" field and file fields.
// @Tags sections
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param studentId path string true "Student ID"
// @Param sectionId path string true "Section ID"
// @Success 200 {object} dto.APIResponse{data=dto.SectionResponse}
// @Failure 400 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Failure 403 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Router /students/{studentId}/sections/{sectionId} [post]
func (c *SectionController) SaveSection(ctx *gin.Context) {
	studentID, ok := authorize(ctx, auth.CanActAsStudent)
	if !ok {
		return
	}

	in := services.SaveSectionInput{
		StudentID: studentID,
		SectionID: ctx.Param("sectionId"),
	}

	if strings.HasPrefix(ctx.ContentType(), "multipart/") {
		if err := parseMultipartSection(ctx, &in); err != nil {
			ctx.JSON(http.StatusBadRequest, dto.NewFailureResponse(
				dto.NewErrorDetail(dto.ErrorCodeInvalidRequest, "Invalid multipart form").
					WithDetails(err.Error()),
			))
			return
		}
	} else {
		var req dto.SaveSectionRequest
		if !bindOptionalJSON(ctx, &req) {
			return
		}
		in.Data = req.Data
		in.Files = req.Files
	}

	rec, err := c.sectionService.SaveSection(ctx, in)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(
		dto.FromSectionRecord(studentID, rec.SectionID, rec),
		"Section saved",
	))
}

// parseMultipartSection reads the "data" and "files" form fields and collects
// every uploaded file under its form field name
func parseMultipartSection(ctx *gin.Context, in *services.SaveSectionInput) error {
	form, err := ctx.MultipartForm()
	if err != nil {
		return err
	}

	if values := form.Value["data"]; len(values) > 0 && values[0] != "" {
		in.Data = json.RawMessage(values[0])
	}
	if values := form.Value["files"]; len(values) > 0 && values[0] != "" {
		if err := json.Unmarshal([]byte(values[0]), &in.Files); err != nil {
			return err
		}
	}

	if len(form.File) > 0 {
		in.Uploads = make(map[string]*multipart.FileHeader, len(form.File))
		for field, headers := range form.File {
			if len(headers) > 0 {
				in.Uploads[field] = headers[0]
			}
		}
	}
	return nil
}

// GetSection godoc
// @Summary Get a portfolio section
// @Tags sections
// @Produce json
// @Security BearerAuth
// @Param studentId path string true "Student ID"
// @Param sectionId path string true "Section ID"
// @Success 200 {object} dto.APIResponse{data=dto.SectionResponse}
// @Router /students/{studentId}/sections/{sectionId} [get]
func (c *SectionController) GetSection(ctx *gin.Context) {
	studentID, ok := authorize(ctx, auth.CanAccessStudent)
	if !ok {
		return
	}
	sectionID := ctx.Param("sectionId")

	rec, err := c.sectionService.GetSection(ctx, studentID, sectionID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if rec == nil {
		ctx.JSON(http.StatusOK, dto.NewSuccessResponse(
			dto.FromSectionRecord(studentID, models.SectionID(sectionID), nil),
			"No data found",
		))
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.FromSectionRecord(studentID, rec.SectionID, rec), ""))
}

// ListSections godoc
// @Summary List a student's sections
// @Description Returns every saved draft and the required sections still missing
// @Tags sections
// @Produce json
// @Security BearerAuth
// @Param studentId path string true "Student ID"
// @Success 200 {object} dto.APIResponse{data=dto.SectionListResponse}
// @Router /students/{studentId}/sections [get]
func (c *SectionController) ListSections(ctx *gin.Context) {
	studentID, ok := authorize(ctx, auth.CanAccessStudent)
	if !ok {
		return
	}

	records, err := c.sectionService.ListSections(ctx, studentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	missing, err := c.sectionService.MissingSections(ctx, studentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	resp := dto.SectionListResponse{
		Sections: make([]dto.SectionResponse, 0, len(records)),
		Missing:  make([]string, 0, len(missing)),
	}
	for _, rec := range records {
		resp.Sections = append(resp.Sections, dto.FromSectionRecord(studentID, rec.SectionID, rec))
	}
	for _, id := range missing {
		resp.Missing = append(resp.Missing, string(id))
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, ""))
}
