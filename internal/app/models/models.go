package models

// RoleType defines the user role type
type RoleType string

const (
	RoleStudent RoleType = "STUDENT"
	RoleFaculty RoleType = "FACULTY"
	RoleAdmin   RoleType = "ADMIN"
)

// IsValid reports whether the role is one of the known roles
func (r RoleType) IsValid() bool {
	switch r {
	case RoleStudent, RoleFaculty, RoleAdmin:
		return true
	}
	return false
}

// IsReviewer reports whether the role may read other students' portfolios
func (r RoleType) IsReviewer() bool {
	return r == RoleFaculty || r == RoleAdmin
}

// Status is the review state of a canonical submission
type Status string

const (
	StatusNotSubmitted     Status = "Not Submitted"
	StatusPending          Status = "Pending"
	StatusForwardedToAdmin Status = "ForwardedToAdmin"
	StatusApproved         Status = "Approved"
	StatusRejected         Status = "Rejected"
	StatusReady            Status = "Ready"
)

// IsValid reports whether s is a known status
func (s Status) IsValid() bool {
	switch s {
	case StatusNotSubmitted, StatusPending, StatusForwardedToAdmin, StatusApproved, StatusRejected, StatusReady:
		return true
	}
	return false
}

// AwaitingAdmin reports whether the submission passed faculty review and waits for the final decision
func (s Status) AwaitingAdmin() bool {
	return s == StatusApproved || s == StatusForwardedToAdmin
}
