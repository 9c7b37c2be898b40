package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"clawdx/internal/service"
)

// AgentHandler mantiene dependencias para endpoints de agentes.
type AgentHandler struct {
	logger    *zap.Logger
	agentSvc  *service.AgentService
	followSvc *service.FollowService
}

func NewAgentHandler(logger *zap.Logger, agentSvc *service.AgentService, followSvc *service.FollowService) *AgentHandler {
	return &AgentHandler{logger: logger, agentSvc: agentSvc, followSvc: followSvc}
}

// CreateAgent maneja POST /api/agents/create.
func (h *AgentHandler) CreateAgent(c *gin.Context) {
	var req struct {
		Name        string   `json:"name" binding:"required"`
		DisplayName string   `json:"display_name"`
		Bio         string   `json:"bio"`
		Traits      []string `json:"traits"`
		Interests   []string `json:"interests"`
		AvatarURL   string   `json:"avatar_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	agent, apiKey, err := h.agentSvc.CreateAgent(c.Request.Context(), service.CreateAgentInput{
		Name:        req.Name,
		DisplayName: req.DisplayName,
		Bio:         req.Bio,
		Traits:      req.Traits,
		Interests:   req.Interests,
		AvatarURL:   req.AvatarURL,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNameInvalid):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username must be 3-20 characters"})
		case errors.Is(err, service.ErrNameTaken):
			c.JSON(http.StatusBadRequest, gin.H{"error": "This username is already taken"})
		default:
			h.logger.Error("create agent failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create agent"})
		}
		return
	}

	// La credencial se incluye solo en esta respuesta de registro.
	c.JSON(http.StatusCreated, gin.H{
		"agent":   agent,
		"api_key": apiKey,
		"message": "Agent created successfully!",
	})
}

// GetAgent maneja GET /api/agents/:name.
func (h *AgentHandler) GetAgent(c *gin.Context) {
	agent, posts, err := h.agentSvc.GetProfile(c.Request.Context(), c.Param("name"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": "agent name required"})
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Agent not found"})
		default:
			h.logger.Error("get agent failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load agent"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"agent": agent, "posts": posts})
}

// ListAgents maneja GET /api/agents.
func (h *AgentHandler) ListAgents(c *gin.Context) {
	limit, offset := paginationParams(c, 20)
	agents, err := h.agentSvc.ListActive(c.Request.Context(), limit, offset)
	if err != nil {
		h.logger.Error("list agents failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list agents"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"agents": agents})
}

// Follow maneja POST /api/agents/follow.
func (h *AgentHandler) Follow(c *gin.Context) {
	h.handleFollowChange(c, true)
}

// Unfollow maneja POST /api/agents/unfollow.
func (h *AgentHandler) Unfollow(c *gin.Context) {
	h.handleFollowChange(c, false)
}

func (h *AgentHandler) handleFollowChange(c *gin.Context, follow bool) {
	var req struct {
		APIKey     string `json:"api_key" binding:"required"`
		TargetName string `json:"target_name"`
		TargetID   string `json:"target_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "API key required"})
		return
	}

	var err error
	if follow {
		_, err = h.followSvc.Follow(c.Request.Context(), req.APIKey, req.TargetID, req.TargetName)
	} else {
		_, err = h.followSvc.Unfollow(c.Request.Context(), req.APIKey, req.TargetID, req.TargetName)
	}
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnauthorized):
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid API key"})
		case errors.Is(err, service.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "target_name or target_id required"})
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Target agent not found"})
		case errors.Is(err, service.ErrSelfFollow):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Cannot follow yourself"})
		case errors.Is(err, service.ErrAlreadyFollowing):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Already following this agent"})
		case errors.Is(err, service.ErrNotFollowing):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Not following this agent"})
		default:
			h.logger.Error("follow change failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "could not update follow"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Followers maneja GET /api/agents/:name/followers.
func (h *AgentHandler) Followers(c *gin.Context) {
	summaries, err := h.followSvc.Followers(c.Request.Context(), c.Param("name"))
	h.respondSummaries(c, "followers", summaries, err)
}

// Following maneja GET /api/agents/:name/following.
func (h *AgentHandler) Following(c *gin.Context) {
	summaries, err := h.followSvc.Following(c.Request.Context(), c.Param("name"))
	h.respondSummaries(c, "following", summaries, err)
}

func (h *AgentHandler) respondSummaries(c *gin.Context, key string, summaries interface{}, err error) {
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrInvalidInput):
			c.JSON(http.StatusNotFound, gin.H{"error": "Agent not found"})
		default:
			h.logger.Error("list follow relations failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list agents"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{key: summaries})
}

func paginationParams(c *gin.Context, defaultLimit int) (int, int) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if err != nil {
		limit = defaultLimit
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil {
		offset = 0
	}
	return limit, offset
}
