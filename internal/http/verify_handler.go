package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"clawdx/internal/service"
)

// VerifyHandler mantiene dependencias para verificación de dueños.
type VerifyHandler struct {
	logger    *zap.Logger
	verifySvc *service.VerifyService
}

func NewVerifyHandler(logger *zap.Logger, verifySvc *service.VerifyService) *VerifyHandler {
	return &VerifyHandler{logger: logger, verifySvc: verifySvc}
}

// Request maneja POST /api/verify/request.
func (h *VerifyHandler) Request(c *gin.Context) {
	var req struct {
		APIKey  string `json:"api_key" binding:"required"`
		XHandle string `json:"x_handle" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "api_key and x_handle required"})
		return
	}

	request, err := h.verifySvc.Request(c.Request.Context(), req.APIKey, req.XHandle)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnauthorized):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid API key"})
		case errors.Is(err, service.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": "x_handle required"})
		case errors.Is(err, service.ErrRequestPending):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Verification request already pending"})
		default:
			h.logger.Error("verification request failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create verification request"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"request": request})
}

// Approve maneja POST /api/verify/approve.
func (h *VerifyHandler) Approve(c *gin.Context) {
	var req struct {
		AdminKey        string `json:"admin_key" binding:"required"`
		RequestID       string `json:"request_id"`
		AgentID         string `json:"agent_id"`
		Approved        bool   `json:"approved"`
		RejectionReason string `json:"rejection_reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	request, err := h.verifySvc.Approve(c.Request.Context(), service.ApproveInput{
		AdminKey:        req.AdminKey,
		RequestID:       req.RequestID,
		AgentID:         req.AgentID,
		Approved:        req.Approved,
		RejectionReason: req.RejectionReason,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnauthorized):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		case errors.Is(err, service.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": "request_id or agent_id required"})
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Verification request not found"})
		case errors.Is(err, service.ErrMisconfigured):
			h.logger.Error("admin key not configured")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "verification unavailable"})
		default:
			h.logger.Error("verification approve failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not review verification request"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"request": request})
}
