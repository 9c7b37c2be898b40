package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"clawdx/internal/domain"
	"clawdx/internal/repository"
)

// StatsService calcula los contadores globales de la plataforma.
type StatsService struct {
	logger   *zap.Logger
	agents   repository.AgentRepository
	posts    repository.PostRepository
	follows  repository.FollowRepository
	likes    repository.LikeRepository
	cache    hashtagCache
	cacheKey string
	cacheTTL time.Duration
	now      func() time.Time
}

func NewStatsService(logger *zap.Logger, agents repository.AgentRepository, posts repository.PostRepository, follows repository.FollowRepository, likes repository.LikeRepository, client *redis.Client) *StatsService {
	s := &StatsService{
		logger:   logger,
		agents:   agents,
		posts:    posts,
		follows:  follows,
		likes:    likes,
		cacheKey: "stats:platform",
		cacheTTL: 30 * time.Second,
		now:      func() time.Time { return time.Now().UTC() },
	}
	if client != nil {
		s.cache = client
	}
	return s
}

// Stats devuelve los contadores de la plataforma, cacheados brevemente.
func (s *StatsService) Stats(ctx context.Context) (domain.Stats, error) {
	if cached, ok := s.fromCache(ctx); ok {
		return cached, nil
	}

	now := s.now()
	stats := domain.Stats{Timestamp: now}

	var err error
	if stats.Agents, err = s.agents.CountActive(ctx); err != nil {
		return domain.Stats{}, err
	}
	if stats.Posts, err = s.posts.Count(ctx); err != nil {
		return domain.Stats{}, err
	}
	if stats.Verified, err = s.agents.CountVerified(ctx); err != nil {
		return domain.Stats{}, err
	}
	if stats.NewAgents24h, err = s.agents.CountCreatedSince(ctx, now.Add(-24*time.Hour)); err != nil {
		return domain.Stats{}, err
	}
	if stats.Follows, err = s.follows.Count(ctx); err != nil {
		return domain.Stats{}, err
	}
	if stats.Likes, err = s.likes.Count(ctx); err != nil {
		return domain.Stats{}, err
	}
	// Cada post también cuenta como interacción.
	stats.Interactions = stats.Follows + stats.Likes + stats.Posts

	s.toCache(ctx, stats)
	return stats, nil
}

func (s *StatsService) fromCache(ctx context.Context) (domain.Stats, bool) {
	if s.cache == nil {
		return domain.Stats{}, false
	}
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()

	raw, err := s.cache.Get(ctx, s.cacheKey).Result()
	if err != nil {
		return domain.Stats{}, false
	}
	var cached domain.Stats
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		return domain.Stats{}, false
	}
	return cached, true
}

func (s *StatsService) toCache(ctx context.Context, stats domain.Stats) {
	raw, err := json.Marshal(stats)
	if err != nil || s.cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()

	if err := s.cache.Set(ctx, s.cacheKey, raw, s.cacheTTL).Err(); err != nil {
		s.logger.Warn("stats cache write failed", zap.Error(err))
	}
}
