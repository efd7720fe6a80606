package dto

import (
	"encoding/json"

	"github.com/yigit/portfoliohub/internal/app/models"
)

// ReviewRequest carries a reviewer's remark for approve/reject actions
type ReviewRequest struct {
	Remark string `json:"remark" validate:"max=2000"`
}

// Validate validates the ReviewRequest using the validator
func (r *ReviewRequest) Validate() error {
	return validate.Struct(r)
}

// GeneratePDFRequest selects the template used to render a portfolio
type GeneratePDFRequest struct {
	TemplateID string `json:"templateId" validate:"omitempty,oneof=template-1 template-2 template-3"`
}

// Validate validates the GeneratePDFRequest using the validator
func (r *GeneratePDFRequest) Validate() error {
	return validate.Struct(r)
}

// PortfolioFilterRequest holds list filters and pagination
type PortfolioFilterRequest struct {
	Status string `form:"status" validate:"omitempty,oneof=Pending ForwardedToAdmin Approved Rejected Ready"`
	Page   int    `form:"page" validate:"omitempty,min=1"`
	Size   int    `form:"size" validate:"omitempty,min=1,max=100"`
}

// Validate validates the PortfolioFilterRequest using the validator
func (r *PortfolioFilterRequest) Validate() error {
	return validate.Struct(r)
}

// SectionSnapshot is the live draft of one section shown next to a submission
type SectionSnapshot struct {
	Data  json.RawMessage   `json:"data"`
	Files map[string]string `json:"files"`
}

// PortfolioResponse is a canonical submission plus the student's current drafts
type PortfolioResponse struct {
	*models.Submission
	StudentSections map[models.SectionID]SectionSnapshot `json:"studentSections"`
}

// PortfolioListResponse is a page of portfolios
type PortfolioListResponse struct {
	Portfolios []PortfolioResponse `json:"portfolios"`
	Pagination PaginationInfo      `json:"pagination"`
}

// PDFResponse reports where a generated or uploaded portfolio PDF lives
type PDFResponse struct {
	StudentID string `json:"studentId"`
	PDFURL    string `json:"pdfUrl"`
}
