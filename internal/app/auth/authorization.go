package auth

import (
	"github.com/yigit/portfoliohub/internal/app/models"
	"github.com/yigit/portfoliohub/internal/pkg/apperrors"
)

// Principal is the authenticated caller of a request
type Principal struct {
	UserID string
	Role   models.RoleType
}

// CanAccessStudent allows students to act on their own portfolio only.
// Faculty and admins may read every student.
func CanAccessStudent(p Principal, studentID string) error {
	if p.Role.IsReviewer() {
		return nil
	}
	if p.Role == models.RoleStudent && p.UserID == studentID {
		return nil
	}
	return apperrors.NewForbiddenError("you may only access your own portfolio")
}

// CanActAsStudent restricts write actions on a student's drafts to that student
func CanActAsStudent(p Principal, studentID string) error {
	if p.Role == models.RoleStudent && p.UserID == studentID {
		return nil
	}
	return apperrors.NewForbiddenError("only the owning student may modify this portfolio")
}
