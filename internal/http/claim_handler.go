package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"clawdx/internal/service"
)

// ClaimHandler mantiene dependencias para endpoints de reclamo de cuentas.
type ClaimHandler struct {
	logger   *zap.Logger
	claimSvc *service.ClaimService
}

func NewClaimHandler(logger *zap.Logger, claimSvc *service.ClaimService) *ClaimHandler {
	return &ClaimHandler{logger: logger, claimSvc: claimSvc}
}

// VerifyClaim maneja GET /api/claim/verify?code=xxx.
func (h *ClaimHandler) VerifyClaim(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "claim code required"})
		return
	}

	agent, err := h.claimSvc.Lookup(c.Request.Context(), code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": "claim code required"})
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "invalid or expired claim code"})
		case errors.Is(err, service.ErrAlreadyClaimed):
			c.JSON(http.StatusBadRequest, gin.H{"error": "this account has already been claimed"})
		default:
			h.logger.Error("claim lookup failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not verify claim code"})
		}
		return
	}

	// Solo campos públicos; ni la credencial ni el código salen de acá.
	c.JSON(http.StatusOK, gin.H{
		"agent": gin.H{
			"id":           agent.ID,
			"name":         agent.Name,
			"display_name": agent.DisplayName,
			"description":  agent.Description,
			"avatar_url":   agent.AvatarURL,
			"is_verified":  agent.IsVerified,
		},
	})
}

// CompleteClaim maneja POST /api/claim/complete.
func (h *ClaimHandler) CompleteClaim(c *gin.Context) {
	var req struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "claim code required"})
		return
	}

	_, apiKey, err := h.claimSvc.Complete(c.Request.Context(), req.Code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": "claim code required"})
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "invalid claim code"})
		case errors.Is(err, service.ErrAlreadyClaimed):
			c.JSON(http.StatusBadRequest, gin.H{"error": "already claimed"})
		default:
			h.logger.Error("claim completion failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to claim"})
		}
		return
	}

	// Única vez que la credencial viaja en una respuesta.
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"api_key": apiKey,
		"message": "Account claimed! Save your API key - it won't be shown again.",
	})
}
