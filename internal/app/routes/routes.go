package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/portfoliohub/internal/app/controllers"
	"github.com/yigit/portfoliohub/internal/app/models"
	"github.com/yigit/portfoliohub/internal/app/models/dto"
	"github.com/yigit/portfoliohub/internal/middleware"
	"github.com/yigit/portfoliohub/internal/pkg/websocket"
)

// Handlers groups the controllers mounted under /api/v1
type Handlers struct {
	Sections    *controllers.SectionController
	Submissions *controllers.SubmissionController
	Reviews     *controllers.ReviewController
	Portfolios  *controllers.PortfolioController
	WebSocket   *websocket.Handler
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, h Handlers, authMiddleware *middleware.AuthMiddleware) {
	// API version group
	v1 := router.Group("/api/v1")

	v1.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"status": "ok"}, ""))
	})

	// --- Authenticated Routes Group ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	// Live portfolio updates for every authenticated role
	authenticated.GET("/ws", h.WebSocket.HandleConnection)

	// Student drafts, submission and status. Ownership is checked per request.
	students := authenticated.Group("/students/:studentId")
	{
		students.GET("/sections", h.Sections.ListSections)
		students.GET("/sections/:sectionId", h.Sections.GetSection)
		students.POST("/sections/:sectionId", h.Sections.SaveSection)
		students.PUT("/sections/:sectionId", h.Sections.SaveSection)

		students.POST("/submit", h.Submissions.Submit)
		students.GET("/status", h.Submissions.GetStatus)
	}

	review := authenticated.Group("/review")
	{
		faculty := review.Group("/faculty/:studentId")
		faculty.Use(authMiddleware.RoleRequired(models.RoleFaculty, models.RoleAdmin))
		{
			faculty.POST("/approve", h.Reviews.FacultyApprove)
			faculty.POST("/reject", h.Reviews.FacultyReject)
		}

		admin := review.Group("/admin/:studentId")
		admin.Use(authMiddleware.RoleRequired(models.RoleAdmin))
		{
			admin.POST("/approve", h.Reviews.AdminApprove)
			admin.POST("/reject", h.Reviews.AdminReject)
		}
	}

	// Reviewer views
	portfolios := authenticated.Group("/portfolios")
	portfolios.Use(authMiddleware.RoleRequired(models.RoleFaculty, models.RoleAdmin))
	{
		portfolios.GET("", h.Portfolios.ListPortfolios)
		portfolios.GET("/:portfolioId", h.Portfolios.GetPortfolioByID)
		portfolios.GET("/student/:studentId", h.Portfolios.GetPortfolioByStudent)
		portfolios.POST("/:studentId/pdf", h.Portfolios.GeneratePDF)
		portfolios.POST("/:studentId/pdf/upload", h.Portfolios.UploadPDF)
	}
}
