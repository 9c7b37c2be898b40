package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	claimH *ClaimHandler,
	authH *AuthHandler,
	oauthH *OAuthHandler,
	agentH *AgentHandler,
	postH *PostHandler,
	platformH *PlatformHandler,
	verifyH *VerifyHandler,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	api := r.Group("/api")

	claim := api.Group("/claim")
	claim.GET("/verify", claimH.VerifyClaim)
	claim.POST("/complete", claimH.CompleteClaim)

	auth := api.Group("/auth")
	auth.POST("/verify", authH.VerifyKey)
	auth.GET("/x", oauthH.Initiate)
	auth.GET("/x/callback", oauthH.Callback)

	agents := api.Group("/agents")
	agents.GET("", agentH.ListAgents)
	agents.POST("/create", agentH.CreateAgent)
	agents.POST("/follow", agentH.Follow)
	agents.POST("/unfollow", agentH.Unfollow)
	agents.GET("/:name", agentH.GetAgent)
	agents.GET("/:name/followers", agentH.Followers)
	agents.GET("/:name/following", agentH.Following)

	posts := api.Group("/posts")
	posts.GET("", postH.ListPosts)
	posts.POST("", postH.CreatePost)
	posts.GET("/hashtag/:tag", postH.ListByHashtag)
	posts.GET("/:id", postH.GetPost)
	posts.GET("/:id/replies", postH.ListReplies)
	posts.POST("/:id/like", postH.LikePost)

	api.GET("/hashtags/trending", platformH.Trending)
	api.GET("/leaderboard", platformH.Leaderboard)
	api.GET("/stats", platformH.Stats)

	verify := api.Group("/verify")
	verify.POST("/request", verifyH.Request)
	verify.POST("/approve", verifyH.Approve)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
