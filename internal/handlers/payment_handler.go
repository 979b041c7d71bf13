package handlers

import (
	"io"
	"net/http"

	"collegium_backend/internal/appErrors"
	"collegium_backend/internal/middleware"
	"collegium_backend/internal/services"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	paymentService services.PaymentService
}

func NewPaymentHandler(paymentService services.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

func (h *PaymentHandler) RegisterRoutes(r *gin.RouterGroup, auth gin.HandlerFunc) {
	payments := r.Group("/payments")
	{
		// The gateway calls this; the signature header carries the trust.
		payments.POST("/webhook", h.Webhook)

		authed := payments.Group("")
		authed.Use(auth)
		{
			authed.POST("/order", h.CreateOrder)
			authed.POST("/verify", h.VerifyPayment)
			authed.GET("/history", h.GetHistory)
		}
	}
}

type createOrderRequest struct {
	PlanID   string `json:"plan_id" binding:"required"`
	ForTrial bool   `json:"for_trial"`
}

func (h *PaymentHandler) CreateOrder(c *gin.Context) {
	subjectID, subjectType := middleware.SubjectFromContext(c)

	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		appErrors.HandleError(c, appErrors.ErrValidationFailed.WithDetails(err.Error()))
		return
	}

	resp, err := h.paymentService.CreateOrder(c.Request.Context(), subjectID, subjectType, req.PlanID, req.ForTrial)
	if err != nil {
		appErrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
	subjectID, subjectType := middleware.SubjectFromContext(c)

	var req services.VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		appErrors.HandleError(c, appErrors.ErrValidationFailed.WithDetails(err.Error()))
		return
	}

	resp, err := h.paymentService.VerifyPayment(c.Request.Context(), subjectID, subjectType, &req)
	if err != nil {
		appErrors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Payment verified and subscription activated",
		"subscription": resp.Subscription,
		"payment":      resp.Payment,
	})
}

// Webhook receives gateway events. Unauthenticated: the signature header is
// the only trust anchor, and verification failures are hard 400s.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		appErrors.HandleError(c, appErrors.ErrValidationFailed.WithError(err))
		return
	}

	signature := c.GetHeader("X-Razorpay-Signature")
	if err := h.paymentService.HandleWebhook(c.Request.Context(), body, signature); err != nil {
		appErrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *PaymentHandler) GetHistory(c *gin.Context) {
	subjectID, subjectType := middleware.SubjectFromContext(c)

	payments, err := h.paymentService.History(c.Request.Context(), subjectID, subjectType)
	if err != nil {
		appErrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": payments, "total": len(payments)})
}
