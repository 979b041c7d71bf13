package routes

import (
	"collegium_backend/internal/auth"
	"collegium_backend/internal/handlers"
	"collegium_backend/internal/middleware"
	"collegium_backend/internal/models"

	"github.com/gin-gonic/gin"
)

// AppHandlers bundles the constructed handlers so the app wiring passes one
// value here instead of a growing argument list.
type AppHandlers struct {
	PlanHandler         *handlers.PlanHandler
	SubscriptionHandler *handlers.SubscriptionHandler
	PaymentHandler      *handlers.PaymentHandler
	ContentHandler      *handlers.ContentHandler
}

// RegisterRoutes registers all HTTP routes under /api/v1.
func RegisterRoutes(ginRouter *gin.Engine, appHandlers *AppHandlers, parser *auth.TokenParser) {
	authRequired := middleware.AuthMiddleware(parser)
	requireAdmin := middleware.RequireAdmin()
	requireStudent := middleware.RequireSubjectType(models.SubjectTypeStudent)
	requireCompany := middleware.RequireSubjectType(models.SubjectTypeCompany)

	api := ginRouter.Group("/api/v1")
	{
		appHandlers.PlanHandler.RegisterRoutes(api, authRequired, requireAdmin)
		appHandlers.SubscriptionHandler.RegisterRoutes(api, authRequired)
		appHandlers.PaymentHandler.RegisterRoutes(api, authRequired)
		appHandlers.ContentHandler.RegisterRoutes(api, authRequired, requireStudent, requireCompany)
	}
}
