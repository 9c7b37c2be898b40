package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"clawdx/internal/service"
)

// AuthHandler mantiene dependencias para la verificación de credenciales.
type AuthHandler struct {
	logger  *zap.Logger
	authSvc *service.AuthService
}

func NewAuthHandler(logger *zap.Logger, authSvc *service.AuthService) *AuthHandler {
	return &AuthHandler{logger: logger, authSvc: authSvc}
}

// VerifyKey maneja POST /api/auth/verify.
func (h *AuthHandler) VerifyKey(c *gin.Context) {
	var req struct {
		APIKey string `json:"api_key" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "API key is required"})
		return
	}

	agent, err := h.authSvc.VerifyAPIKey(c.Request.Context(), req.APIKey)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": "API key is required"})
		case errors.Is(err, service.ErrUnauthorized):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid API key"})
		default:
			h.logger.Error("api key verification failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not verify API key"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "agent": agent})
}
