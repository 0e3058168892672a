package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vasyldobrodev-cpu/nippy-backend/internal/models"
	"github.com/vasyldobrodev-cpu/nippy-backend/internal/observability"
	"github.com/vasyldobrodev-cpu/nippy-backend/internal/payments"
)

// PaymentHandler exposes the simulated payment endpoints.
type PaymentHandler struct {
	svc *payments.Service
}

// NewPaymentHandler builds a PaymentHandler.
func NewPaymentHandler(svc *payments.Service) *PaymentHandler {
	return &PaymentHandler{svc: svc}
}

func paymentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, payments.ErrPaymentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "payment not found"})
	case errors.Is(err, payments.ErrAmountRequired),
		errors.Is(err, payments.ErrRefundTooLarge):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, payments.ErrNotPending),
		errors.Is(err, payments.ErrNotRefundable):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// CreatePayment records a pending payment for the caller.
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	var req struct {
		ConversationID *uuid.UUID           `json:"conversation_id"`
		Amount         float64              `json:"amount" binding:"required"`
		Currency       string               `json:"currency"`
		Method         models.PaymentMethod `json:"method"`
		Description    string               `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payment, err := h.svc.Create(c.Request.Context(), payments.CreateInput{
		ClientID:       userIDFromContext(c),
		ConversationID: req.ConversationID,
		Amount:         req.Amount,
		Currency:       req.Currency,
		Method:         req.Method,
		Description:    req.Description,
	})
	if err != nil {
		paymentError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"payment": payment})
}

// ListPayments returns filtered payments plus the total count.
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	page, limit := parsePagination(c, 20)
	filters := payments.Filters{
		Status: models.PaymentStatus(c.Query("status")),
		Method: models.PaymentMethod(c.Query("method")),
		Page:   page,
		Limit:  limit,
	}
	if raw := c.Query("client_id"); raw != "" {
		clientID, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client id"})
			return
		}
		filters.ClientID = &clientID
	}
	if raw := c.Query("date_from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date_from"})
			return
		}
		filters.DateFrom = &from
	}
	if raw := c.Query("date_to"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date_to"})
			return
		}
		filters.DateTo = &to
	}

	rows, total, err := h.svc.List(c.Request.Context(), filters)
	if err != nil {
		paymentError(c, err)
		return
	}
	if rows == nil {
		rows = []models.Payment{}
	}
	c.JSON(http.StatusOK, gin.H{"payments": rows, "total": total, "page": page, "limit": limit})
}

// GetPayment returns one payment.
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	id, ok := parseUUIDParam(c, "payment_id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment id"})
		return
	}

	payment, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		paymentError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment": payment})
}

// ProcessPayment resolves a pending payment to completed or failed.
func (h *PaymentHandler) ProcessPayment(c *gin.Context) {
	id, ok := parseUUIDParam(c, "payment_id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment id"})
		return
	}

	var req struct {
		Succeed *bool `json:"succeed"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	succeed := true
	if req.Succeed != nil {
		succeed = *req.Succeed
	}

	payment, err := h.svc.SimulateProcessing(c.Request.Context(), id, succeed)
	if err != nil {
		paymentError(c, err)
		return
	}

	headers := observability.BuildHeaders(requestIDFromContext(c), "")
	_ = observability.PublishEvent(c.Request.Context(), observability.RoutingPaymentProcessed, observability.EventEnvelope{
		EventType: "domain_events",
		EventName: "payment_processed",
		Payload: map[string]interface{}{
			"payment_id": payment.ID.String(),
			"intent_id":  payment.IntentID,
			"status":     payment.Status,
			"amount":     payment.Amount,
		},
	}, headers)

	c.JSON(http.StatusOK, gin.H{"payment": payment})
}

// RefundPayment records a refund against a completed payment.
func (h *PaymentHandler) RefundPayment(c *gin.Context) {
	id, ok := parseUUIDParam(c, "payment_id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment id"})
		return
	}

	var req struct {
		Amount *float64 `json:"amount"`
		Reason string   `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	refund, err := h.svc.Refund(c.Request.Context(), id, req.Amount, req.Reason)
	if err != nil {
		paymentError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"refund": refund})
}

// PaymentStats aggregates totals, commission and recent transactions.
func (h *PaymentHandler) PaymentStats(c *gin.Context) {
	var clientID *uuid.UUID
	if raw := c.Query("client_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client id"})
			return
		}
		clientID = &id
	}

	stats, err := h.svc.Stats(c.Request.Context(), clientID)
	if err != nil {
		paymentError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}
