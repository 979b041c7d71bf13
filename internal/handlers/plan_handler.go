package handlers

import (
	"net/http"

	"collegium_backend/internal/appErrors"
	"collegium_backend/internal/models"
	"collegium_backend/internal/services"

	"github.com/gin-gonic/gin"
)

type PlanHandler struct {
	planService services.PlanService
}

func NewPlanHandler(planService services.PlanService) *PlanHandler {
	return &PlanHandler{planService: planService}
}

func (h *PlanHandler) RegisterRoutes(r *gin.RouterGroup, auth, admin gin.HandlerFunc) {
	plans := r.Group("/plans")
	{
		plans.GET("", h.GetPlans)
		plans.GET("/:planId", h.GetPlan)
	}

	adminPlans := r.Group("/admin/plans")
	adminPlans.Use(auth, admin)
	{
		adminPlans.POST("", h.CreatePlan)
		adminPlans.PUT("/:planId", h.UpdatePlan)
		adminPlans.DELETE("/:planId", h.DeletePlan)
	}
}

// GetPlans lists active plans for an audience, cheapest first.
func (h *PlanHandler) GetPlans(c *gin.Context) {
	audience := models.SubjectType(c.DefaultQuery("audience", string(models.SubjectTypeStudent)))
	if audience != models.SubjectTypeStudent && audience != models.SubjectTypeCompany {
		appErrors.HandleError(c, appErrors.ErrValidationFailed.WithDetails("audience must be student or company"))
		return
	}

	plans, err := h.planService.ListActivePlans(c.Request.Context(), audience)
	if err != nil {
		appErrors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"plans": plans,
		"total": len(plans),
	})
}

func (h *PlanHandler) GetPlan(c *gin.Context) {
	plan, err := h.planService.GetPlan(c.Request.Context(), c.Param("planId"))
	if err != nil {
		appErrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"plan": plan})
}

func (h *PlanHandler) CreatePlan(c *gin.Context) {
	var req services.CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		appErrors.HandleError(c, appErrors.ErrValidationFailed.WithDetails(err.Error()))
		return
	}

	plan, err := h.planService.CreatePlan(c.Request.Context(), &req)
	if err != nil {
		appErrors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Plan created successfully",
		"plan":    plan,
	})
}

func (h *PlanHandler) UpdatePlan(c *gin.Context) {
	var req services.UpdatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		appErrors.HandleError(c, appErrors.ErrValidationFailed.WithDetails(err.Error()))
		return
	}

	plan, err := h.planService.UpdatePlan(c.Request.Context(), c.Param("planId"), &req)
	if err != nil {
		appErrors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Plan updated successfully",
		"plan":    plan,
	})
}

// DeletePlan soft-deactivates; plans stay on record for existing subscribers.
func (h *PlanHandler) DeletePlan(c *gin.Context) {
	if err := h.planService.DeactivatePlan(c.Request.Context(), c.Param("planId")); err != nil {
		appErrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Plan deactivated successfully"})
}
