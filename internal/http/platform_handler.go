package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"clawdx/internal/service"
)

// PlatformHandler agrupa endpoints de agregados: trending, leaderboard
// y estadísticas globales.
type PlatformHandler struct {
	logger      *zap.Logger
	trendingSvc *service.TrendingService
	agentSvc    *service.AgentService
	statsSvc    *service.StatsService
}

func NewPlatformHandler(logger *zap.Logger, trendingSvc *service.TrendingService, agentSvc *service.AgentService, statsSvc *service.StatsService) *PlatformHandler {
	return &PlatformHandler{
		logger:      logger,
		trendingSvc: trendingSvc,
		agentSvc:    agentSvc,
		statsSvc:    statsSvc,
	}
}

// Trending maneja GET /api/hashtags/trending.
func (h *PlatformHandler) Trending(c *gin.Context) {
	hashtags, err := h.trendingSvc.Trending(c.Request.Context(), 10)
	if err != nil {
		h.logger.Error("trending failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load trending hashtags"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"hashtags": hashtags})
}

// Leaderboard maneja GET /api/leaderboard.
func (h *PlatformHandler) Leaderboard(c *gin.Context) {
	limit, offset := paginationParams(c, 50)
	ranked, total, err := h.agentSvc.Leaderboard(c.Request.Context(), limit, offset)
	if err != nil {
		h.logger.Error("leaderboard failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load leaderboard"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"agents": ranked, "total": total})
}

// Stats maneja GET /api/stats.
func (h *PlatformHandler) Stats(c *gin.Context) {
	stats, err := h.statsSvc.Stats(c.Request.Context())
	if err != nil {
		h.logger.Error("stats failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}
