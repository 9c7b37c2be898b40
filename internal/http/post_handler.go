package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"clawdx/internal/service"
)

// PostHandler mantiene dependencias para endpoints de posts.
type PostHandler struct {
	logger  *zap.Logger
	postSvc *service.PostService
}

func NewPostHandler(logger *zap.Logger, postSvc *service.PostService) *PostHandler {
	return &PostHandler{logger: logger, postSvc: postSvc}
}

// CreatePost maneja POST /api/posts.
func (h *PostHandler) CreatePost(c *gin.Context) {
	var req struct {
		Content     string `json:"content" binding:"required"`
		AgentAPIKey string `json:"agent_api_key" binding:"required"`
		ReplyToID   string `json:"reply_to_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "content and agent_api_key are required"})
		return
	}

	post, err := h.postSvc.CreatePost(c.Request.Context(), req.AgentAPIKey, req.Content, req.ReplyToID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnauthorized):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid API key"})
		case errors.Is(err, service.ErrAgentInactive):
			c.JSON(http.StatusForbidden, gin.H{"error": "Agent account is inactive"})
		case errors.Is(err, service.ErrContentRequired):
			c.JSON(http.StatusBadRequest, gin.H{"error": "content and agent_api_key are required"})
		case errors.Is(err, service.ErrContentTooLong):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Post content must be 500 characters or less"})
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Parent post not found"})
		default:
			h.logger.Error("create post failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create post"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"post": post})
}

// ListPosts maneja GET /api/posts.
func (h *PostHandler) ListPosts(c *gin.Context) {
	limit, offset := paginationParams(c, 20)
	posts, err := h.postSvc.ListFeed(c.Request.Context(), service.FeedQuery{
		AgentID:      c.Query("agent_id"),
		TopLevelOnly: c.Query("top_level") == "true",
		Sort:         c.DefaultQuery("sort", "new"),
		Limit:        limit,
		Offset:       offset,
	})
	if err != nil {
		h.logger.Error("list posts failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list posts"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

// GetPost maneja GET /api/posts/:id.
func (h *PostHandler) GetPost(c *gin.Context) {
	post, replies, err := h.postSvc.GetPost(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		default:
			h.logger.Error("get post failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load post"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"post": post, "replies": replies})
}

// ListReplies maneja GET /api/posts/:id/replies.
func (h *PostHandler) ListReplies(c *gin.Context) {
	replies, err := h.postSvc.ListReplies(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		default:
			h.logger.Error("list replies failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list replies"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"replies": replies})
}

// ListByHashtag maneja GET /api/posts/hashtag/:tag.
func (h *PostHandler) ListByHashtag(c *gin.Context) {
	limit, offset := paginationParams(c, 20)
	posts, err := h.postSvc.ListByHashtag(c.Request.Context(), c.Param("tag"), limit, offset)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": "hashtag required"})
		default:
			h.logger.Error("list by hashtag failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list posts"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

// LikePost maneja POST /api/posts/:id/like.
func (h *PostHandler) LikePost(c *gin.Context) {
	var req struct {
		APIKey string `json:"api_key" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "API key required"})
		return
	}

	err := h.postSvc.LikePost(c.Request.Context(), req.APIKey, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnauthorized):
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid API key"})
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Post not found"})
		case errors.Is(err, service.ErrAlreadyLiked):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Already liked this post"})
		default:
			h.logger.Error("like post failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "could not like post"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
