package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/portfoliohub/internal/app/auth"
	"github.com/yigit/portfoliohub/internal/app/models/dto"
	"github.com/yigit/portfoliohub/internal/middleware"
)

// bindOptionalJSON binds the JSON body into req when one was sent.
// Review actions accept an empty body.
func bindOptionalJSON(ctx *gin.Context, req middleware.Validatable) bool {
	if ctx.Request.ContentLength != 0 {
		if err := ctx.ShouldBindJSON(req); err != nil {
			ctx.JSON(http.StatusBadRequest, dto.NewFailureResponse(
				dto.NewErrorDetail(dto.ErrorCodeInvalidRequest, "Invalid request format"),
			))
			return false
		}
	}
	if err := middleware.ValidateDTO(req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return false
	}
	return true
}

// authorize runs check against the caller and the :studentId path parameter.
// It writes the error response itself and reports whether to continue.
func authorize(ctx *gin.Context, check func(auth.Principal, string) error) (string, bool) {
	studentID := ctx.Param("studentId")
	if err := check(middleware.PrincipalFrom(ctx), studentID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return "", false
	}
	return studentID, true
}
