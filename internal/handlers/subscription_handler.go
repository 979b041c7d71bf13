package handlers

import (
	"net/http"

	"collegium_backend/internal/appErrors"
	"collegium_backend/internal/middleware"
	"collegium_backend/internal/models"
	"collegium_backend/internal/services"

	"github.com/gin-gonic/gin"
)

type SubscriptionHandler struct {
	subscriptionService services.SubscriptionService
	entitlementService  services.EntitlementService
}

func NewSubscriptionHandler(subscriptionService services.SubscriptionService, entitlementService services.EntitlementService) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptionService: subscriptionService,
		entitlementService:  entitlementService,
	}
}

func (h *SubscriptionHandler) RegisterRoutes(r *gin.RouterGroup, auth gin.HandlerFunc) {
	subscriptions := r.Group("/subscriptions")
	subscriptions.Use(auth)
	{
		subscriptions.GET("/my", h.GetMySubscription)
		subscriptions.GET("/my/history", h.GetHistory)
		subscriptions.POST("/subscribe", h.Subscribe)
		subscriptions.POST("/trial", h.StartTrial)
		subscriptions.GET("/trial/status", h.GetTrialStatus)
		subscriptions.POST("/trial/convert", h.ConvertTrial)
		subscriptions.PUT("/cancel", h.CancelSubscription)
		subscriptions.GET("/check-limit", h.CheckLimit)
	}
}

type subscribeRequest struct {
	PlanID        string `json:"plan_id" binding:"required"`
	PaymentMethod string `json:"payment_method" binding:"required"`
}

type trialRequest struct {
	PlanID string `json:"plan_id" binding:"required"`
}

func (h *SubscriptionHandler) GetMySubscription(c *gin.Context) {
	subjectID, subjectType := middleware.SubjectFromContext(c)

	sub, err := h.subscriptionService.GetCurrentSubscription(c.Request.Context(), subjectID, subjectType)
	if err != nil {
		if appErrors.Is(err, appErrors.ErrSubscriptionNotFound) {
			c.JSON(http.StatusOK, gin.H{"subscription": nil})
			return
		}
		appErrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"subscription": sub})
}

func (h *SubscriptionHandler) GetHistory(c *gin.Context) {
	subjectID, subjectType := middleware.SubjectFromContext(c)

	history, err := h.subscriptionService.History(c.Request.Context(), subjectID, subjectType)
	if err != nil {
		appErrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": history, "total": len(history)})
}

func (h *SubscriptionHandler) Subscribe(c *gin.Context) {
	subjectID, subjectType := middleware.SubjectFromContext(c)

	var req subscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		appErrors.HandleError(c, appErrors.ErrValidationFailed.WithDetails(err.Error()))
		return
	}

	sub, err := h.subscriptionService.Subscribe(c.Request.Context(), subjectID, subjectType, req.PlanID, req.PaymentMethod)
	if err != nil {
		appErrors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":      "Subscription created successfully",
		"subscription": sub,
	})
}

func (h *SubscriptionHandler) StartTrial(c *gin.Context) {
	subjectID, subjectType := middleware.SubjectFromContext(c)

	var req trialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		appErrors.HandleError(c, appErrors.ErrValidationFailed.WithDetails(err.Error()))
		return
	}

	sub, err := h.subscriptionService.StartTrial(c.Request.Context(), subjectID, subjectType, req.PlanID)
	if err != nil {
		appErrors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":      "Trial started successfully",
		"subscription": sub,
	})
}

func (h *SubscriptionHandler) GetTrialStatus(c *gin.Context) {
	subjectID, subjectType := middleware.SubjectFromContext(c)

	status, err := h.subscriptionService.TrialStatus(c.Request.Context(), subjectID, subjectType)
	if err != nil {
		appErrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trial": status})
}

func (h *SubscriptionHandler) ConvertTrial(c *gin.Context) {
	subjectID, subjectType := middleware.SubjectFromContext(c)

	sub, err := h.subscriptionService.ConvertTrial(c.Request.Context(), subjectID, subjectType)
	if err != nil {
		appErrors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Trial converted to paid subscription successfully",
		"subscription": sub,
	})
}

func (h *SubscriptionHandler) CancelSubscription(c *gin.Context) {
	subjectID, subjectType := middleware.SubjectFromContext(c)

	sub, err := h.subscriptionService.Cancel(c.Request.Context(), subjectID, subjectType)
	if err != nil {
		appErrors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Subscription cancelled successfully",
		"subscription": sub,
	})
}

// CheckLimit lets clients pre-flight a quota before rendering create forms.
func (h *SubscriptionHandler) CheckLimit(c *gin.Context) {
	subjectID, subjectType := middleware.SubjectFromContext(c)

	kind := models.ActionKind(c.Query("action"))
	if !kind.Valid() {
		appErrors.HandleError(c, appErrors.ErrInvalidAction)
		return
	}

	exceeded := h.entitlementService.CheckLimitExceeded(c.Request.Context(), subjectID, subjectType, kind)
	c.JSON(http.StatusOK, gin.H{
		"action":   kind,
		"exceeded": exceeded,
	})
}
