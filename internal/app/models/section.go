package models

import (
	"encoding/json"
	"time"
)

// SectionID names one category of portfolio content
type SectionID string

const (
	SectionProfile        SectionID = "profile"
	SectionEducation      SectionID = "education"
	SectionExperience     SectionID = "experience"
	SectionSkills         SectionID = "skills"
	SectionCertifications SectionID = "certifications"
	SectionTraining       SectionID = "training"
	SectionProjects       SectionID = "projects"
	SectionSocialLinks    SectionID = "socialLinks"
	SectionVolunteer      SectionID = "volunteer"
	SectionAdditionalInfo SectionID = "additionalInfo"
)

// RequiredSections lists every section a student must save before submitting.
// The order is the one used when reporting missing sections.
var RequiredSections = []SectionID{
	SectionProfile,
	SectionEducation,
	SectionExperience,
	SectionSkills,
	SectionCertifications,
	SectionTraining,
	SectionProjects,
	SectionSocialLinks,
	SectionVolunteer,
	SectionAdditionalInfo,
}

// IsValid reports whether the section id belongs to the known enumeration
func (s SectionID) IsValid() bool {
	for _, id := range RequiredSections {
		if id == s {
			return true
		}
	}
	return false
}

// FileMap maps a logical upload field name to its stored relative path
type FileMap map[string]string

// EmptyDocument is the payload stored for a section saved without data
var EmptyDocument = json.RawMessage(`{}`)

// SectionRecord is a student's saved draft for one section
type SectionRecord struct {
	StudentID string          `json:"studentId" db:"student_id"`
	SectionID SectionID       `json:"sectionId" db:"section_id"`
	Data      json.RawMessage `json:"data" db:"data"`
	Files     FileMap         `json:"files" db:"files"`
	UpdatedAt time.Time       `json:"updatedAt" db:"updated_at"`
}

// Clone returns a deep copy so callers cannot mutate stored drafts
func (r *SectionRecord) Clone() *SectionRecord {
	if r == nil {
		return nil
	}
	out := *r
	out.Data = append(json.RawMessage(nil), r.Data...)
	out.Files = make(FileMap, len(r.Files))
	for k, v := range r.Files {
		out.Files[k] = v
	}
	return &out
}
