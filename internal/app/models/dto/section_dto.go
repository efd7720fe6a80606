package dto

import (
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/yigit/portfoliohub/internal/app/models"
)

var validate = validator.New()

// SaveSectionRequest is the JSON body for saving a section draft.
// Multipart saves carry Data as a form field instead.
type SaveSectionRequest struct {
	Data  json.RawMessage   `json:"data"`
	Files map[string]string `json:"files" validate:"omitempty,dive,keys,required,max=100,endkeys,required,max=512"`
}

// Validate validates the SaveSectionRequest using the validator
func (r *SaveSectionRequest) Validate() error {
	return validate.Struct(r)
}

// SectionResponse represents one saved section draft
type SectionResponse struct {
	StudentID string            `json:"studentId"`
	SectionID string            `json:"sectionId"`
	Data      json.RawMessage   `json:"data"`
	Files     map[string]string `json:"files"`
	UpdatedAt *time.Time        `json:"updatedAt,omitempty"`
}

// FromSectionRecord maps a record to its response. A nil record yields the
// "no draft yet" shape: null data and an empty file map.
func FromSectionRecord(studentID string, sectionID models.SectionID, rec *models.SectionRecord) SectionResponse {
	if rec == nil {
		return SectionResponse{
			StudentID: studentID,
			SectionID: string(sectionID),
			Data:      json.RawMessage("null"),
			Files:     map[string]string{},
		}
	}
	updated := rec.UpdatedAt
	return SectionResponse{
		StudentID: rec.StudentID,
		SectionID: string(rec.SectionID),
		Data:      rec.Data,
		Files:     rec.Files,
		UpdatedAt: &updated,
	}
}

// SectionListResponse lists a student's drafts together with the sections still missing
type SectionListResponse struct {
	Sections []SectionResponse `json:"sections"`
	Missing  []string          `json:"missing"`
}
