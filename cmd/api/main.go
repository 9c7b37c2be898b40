package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"clawdx/internal/config"
	"clawdx/internal/db"
	apihttp "clawdx/internal/http"
	"clawdx/internal/repository"
	"clawdx/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	agentRepo := repository.NewPgAgentRepository(pool)
	postRepo := repository.NewPgPostRepository(pool)
	followRepo := repository.NewPgFollowRepository(pool)
	likeRepo := repository.NewPgLikeRepository(pool)
	verificationRepo := repository.NewPgVerificationRepository(pool)

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, running without cache", zap.Error(err))
			redisClient = nil
		}
		cancel()
	}

	claimSvc := service.NewClaimService(logger, agentRepo)
	authSvc := service.NewAuthService(logger, agentRepo)
	oauthSvc := service.NewOAuthService(cfg.XClientID, cfg.XClientSecret, cfg.XCallbackURL)
	sessionSvc := service.NewSessionService(cfg.SessionSecret, time.Duration(cfg.SessionTTLMinutes)*time.Minute)
	if cfg.SessionSecret == "" {
		logger.Warn("session secret not configured")
	}
	agentSvc := service.NewAgentService(logger, agentRepo, postRepo)
	postSvc := service.NewPostService(logger, agentRepo, postRepo, likeRepo)
	followSvc := service.NewFollowService(logger, agentRepo, followRepo)
	trendingSvc := service.NewTrendingService(logger, postRepo, redisClient)
	statsSvc := service.NewStatsService(logger, agentRepo, postRepo, followRepo, likeRepo, redisClient)
	verifySvc := service.NewVerifyService(logger, agentRepo, verificationRepo, cfg.AdminKeyHash)

	claimHandler := apihttp.NewClaimHandler(logger, claimSvc)
	authHandler := apihttp.NewAuthHandler(logger, authSvc)
	oauthHandler := apihttp.NewOAuthHandler(logger, oauthSvc, sessionSvc, cfg.SiteBaseURL)
	agentHandler := apihttp.NewAgentHandler(logger, agentSvc, followSvc)
	postHandler := apihttp.NewPostHandler(logger, postSvc)
	platformHandler := apihttp.NewPlatformHandler(logger, trendingSvc, agentSvc, statsSvc)
	verifyHandler := apihttp.NewVerifyHandler(logger, verifySvc)

	router := apihttp.NewRouter(logger,
		claimHandler, authHandler, oauthHandler,
		agentHandler, postHandler, platformHandler, verifyHandler,
	)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
