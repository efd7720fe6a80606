package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Submission is the canonical per-student portfolio that reviewers act upon.
// Data and Files are a snapshot of the student's sections taken at submission time.
type Submission struct {
	ID                uuid.UUID                     `json:"id" db:"id"`
	StudentID         string                        `json:"studentId" db:"student_id"`
	Data              map[SectionID]json.RawMessage `json:"data" db:"data"`
	Files             map[SectionID]FileMap         `json:"files" db:"files"`
	Status            Status                        `json:"status" db:"status"`
	Remark            string                        `json:"remark" db:"remark"`
	SubmittedAt       *time.Time                    `json:"submittedAt,omitempty" db:"submitted_at"`
	FacultyApprovedAt *time.Time                    `json:"facultyApprovedAt,omitempty" db:"faculty_approved_at"`
	AdminApprovedAt   *time.Time                    `json:"adminApprovedAt,omitempty" db:"admin_approved_at"`
	RejectedAt        *time.Time                    `json:"rejectedAt,omitempty" db:"rejected_at"`
	AdminRejectedAt   *time.Time                    `json:"adminRejectedAt,omitempty" db:"admin_rejected_at"`
	PDFURL            string                        `json:"pdfUrl,omitempty" db:"pdf_url"`
	CreatedAt         time.Time                     `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time                     `json:"updatedAt" db:"updated_at"`
}

// SetOnce assigns now to *field unless it already holds a value.
// Review timestamps record the first time a state was reached.
func SetOnce(field **time.Time, now time.Time) {
	if *field != nil {
		return
	}
	t := now
	*field = &t
}

// Clone returns a deep copy of the submission
func (s *Submission) Clone() *Submission {
	if s == nil {
		return nil
	}
	out := *s
	out.Data = make(map[SectionID]json.RawMessage, len(s.Data))
	for k, v := range s.Data {
		out.Data[k] = append(json.RawMessage(nil), v...)
	}
	out.Files = make(map[SectionID]FileMap, len(s.Files))
	for k, v := range s.Files {
		files := make(FileMap, len(v))
		for name, path := range v {
			files[name] = path
		}
		out.Files[k] = files
	}
	out.SubmittedAt = cloneTime(s.SubmittedAt)
	out.FacultyApprovedAt = cloneTime(s.FacultyApprovedAt)
	out.AdminApprovedAt = cloneTime(s.AdminApprovedAt)
	out.RejectedAt = cloneTime(s.RejectedAt)
	out.AdminRejectedAt = cloneTime(s.AdminRejectedAt)
	return &out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// StatusView is the read-only projection students poll
type StatusView struct {
	Status Status `json:"status"`
	Remark string `json:"remark"`
	PDFURL string `json:"pdfUrl,omitempty"`
}

// NotSubmittedView is returned for students without a canonical submission
func NotSubmittedView() StatusView {
	return StatusView{Status: StatusNotSubmitted}
}

// View projects the submission to its status view
func (s *Submission) View() StatusView {
	if s == nil {
		return NotSubmittedView()
	}
	return StatusView{Status: s.Status, Remark: s.Remark, PDFURL: s.PDFURL}
}
