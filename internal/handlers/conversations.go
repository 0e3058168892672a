package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vasyldobrodev-cpu/nippy-backend/internal/conversations"
	"github.com/vasyldobrodev-cpu/nippy-backend/internal/models"
)

// ConversationHandler exposes the messaging and hire-lifecycle endpoints.
type ConversationHandler struct {
	svc *conversations.Service
}

// NewConversationHandler builds a ConversationHandler.
func NewConversationHandler(svc *conversations.Service) *ConversationHandler {
	return &ConversationHandler{svc: svc}
}

// conversationError maps service sentinels to HTTP responses.
func conversationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, conversations.ErrConversationNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
	case errors.Is(err, conversations.ErrMessageNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "message not found"})
	case errors.Is(err, conversations.ErrNotParticipant):
		c.JSON(http.StatusForbidden, gin.H{"error": "not a conversation member"})
	case errors.Is(err, conversations.ErrSelfConversation),
		errors.Is(err, conversations.ErrContentRequired),
		errors.Is(err, conversations.ErrRevisionNotesRequired),
		errors.Is(err, conversations.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, conversations.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// StartConversation creates or returns the conversation between the caller and
// the other party, optionally scoped to a job.
func (h *ConversationHandler) StartConversation(c *gin.Context) {
	var req struct {
		ClientID     uuid.UUID  `json:"client_id" binding:"required"`
		FreelancerID uuid.UUID  `json:"freelancer_id" binding:"required"`
		JobID        *uuid.UUID `json:"job_id"`
		ProjectTitle string     `json:"project_title"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	caller := userIDFromContext(c)
	if caller != req.ClientID && caller != req.FreelancerID {
		c.JSON(http.StatusForbidden, gin.H{"error": "caller must be a conversation party"})
		return
	}

	conv, err := h.svc.CreateConversation(c.Request.Context(), req.ClientID, req.FreelancerID, req.JobID, req.ProjectTitle)
	if err != nil {
		conversationError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversation": conv})
}

// ListConversations returns the caller's conversations, most recent first.
func (h *ConversationHandler) ListConversations(c *gin.Context) {
	summaries, err := h.svc.ListConversations(c.Request.Context(), userIDFromContext(c))
	if err != nil {
		conversationError(c, err)
		return
	}
	if summaries == nil {
		summaries = []models.ConversationSummary{}
	}
	c.JSON(http.StatusOK, gin.H{"conversations": summaries})
}

// GetConversation returns one conversation the caller belongs to.
func (h *ConversationHandler) GetConversation(c *gin.Context) {
	id, ok := parseUUIDParam(c, "conversation_id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation id"})
		return
	}

	conv, err := h.svc.GetConversation(c.Request.Context(), id, userIDFromContext(c))
	if err != nil {
		conversationError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversation": conv})
}

// SendMessage appends a message to the conversation.
func (h *ConversationHandler) SendMessage(c *gin.Context) {
	id, ok := parseUUIDParam(c, "conversation_id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation id"})
		return
	}

	var req struct {
		Content  string             `json:"content"`
		Type     models.MessageType `json:"type"`
		FileData *models.FileData   `json:"file_data"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := h.svc.SendMessage(c.Request.Context(), id, userIDFromContext(c), req.Content, req.Type, req.FileData)
	if err != nil {
		conversationError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": msg})
}

// GetMessages returns a page of the conversation log, oldest first.
func (h *ConversationHandler) GetMessages(c *gin.Context) {
	id, ok := parseUUIDParam(c, "conversation_id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation id"})
		return
	}

	page, limit := parsePagination(c, conversations.DefaultPageSize)
	msgs, err := h.svc.Messages(c.Request.Context(), id, userIDFromContext(c), page, limit)
	if err != nil {
		conversationError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs, "page": page, "limit": limit})
}

// MarkRead advances every message addressed to the caller to read.
func (h *ConversationHandler) MarkRead(c *gin.Context) {
	id, ok := parseUUIDParam(c, "conversation_id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation id"})
		return
	}

	if err := h.svc.MarkRead(c.Request.Context(), id, userIDFromContext(c)); err != nil {
		conversationError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UpdateStatus moves the conversation along the hire lifecycle.
func (h *ConversationHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseUUIDParam(c, "conversation_id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation id"})
		return
	}

	var req struct {
		Status models.ConversationStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	conv, err := h.svc.UpdateStatus(c.Request.Context(), id, userIDFromContext(c), req.Status)
	if err != nil {
		conversationError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversation": conv})
}

// Hire moves the conversation to hired.
func (h *ConversationHandler) Hire(c *gin.Context) {
	id, ok := parseUUIDParam(c, "conversation_id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation id"})
		return
	}

	conv, err := h.svc.HireFreelancer(c.Request.Context(), id, userIDFromContext(c))
	if err != nil {
		conversationError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversation": conv})
}

// Complete records that the project has been delivered for review.
func (h *ConversationHandler) Complete(c *gin.Context) {
	id, ok := parseUUIDParam(c, "conversation_id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation id"})
		return
	}

	msg, err := h.svc.MarkProjectComplete(c.Request.Context(), id, userIDFromContext(c))
	if err != nil {
		conversationError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": msg})
}

// RequestRevisions records a revision request with the caller's notes.
func (h *ConversationHandler) RequestRevisions(c *gin.Context) {
	id, ok := parseUUIDParam(c, "conversation_id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation id"})
		return
	}

	var req struct {
		Notes string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := h.svc.RequestRevisions(c.Request.Context(), id, userIDFromContext(c), req.Notes)
	if err != nil {
		conversationError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": msg})
}

// Approve closes the conversation and records the approval.
func (h *ConversationHandler) Approve(c *gin.Context) {
	id, ok := parseUUIDParam(c, "conversation_id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation id"})
		return
	}

	conv, err := h.svc.ApproveProject(c.Request.Context(), id, userIDFromContext(c))
	if err != nil {
		conversationError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversation": conv})
}

// DeleteConversation removes the conversation and its messages.
func (h *ConversationHandler) DeleteConversation(c *gin.Context) {
	id, ok := parseUUIDParam(c, "conversation_id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation id"})
		return
	}

	if err := h.svc.DeleteConversation(c.Request.Context(), id, userIDFromContext(c)); err != nil {
		conversationError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
