package service

import (
	"context"
	"encoding/json"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"clawdx/internal/domain"
	"clawdx/internal/repository"
)

// hashtagCache es la porción del cliente Redis que usa el servicio;
// una interfaz angosta para poder mockearla en tests.
type hashtagCache interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// TrendingService agrega hashtags recientes y cachea el resultado.
type TrendingService struct {
	logger   *zap.Logger
	posts    repository.PostRepository
	cache    hashtagCache
	cacheKey string
	cacheTTL time.Duration
	window   time.Duration
	now      func() time.Time
}

func NewTrendingService(logger *zap.Logger, posts repository.PostRepository, client *redis.Client) *TrendingService {
	s := &TrendingService{
		logger:   logger,
		posts:    posts,
		cacheKey: "trending:hashtags",
		cacheTTL: time.Minute,
		window:   48 * time.Hour,
		now:      func() time.Time { return time.Now().UTC() },
	}
	if client != nil {
		s.cache = client
	}
	return s
}

var tagNormalizeRe = regexp.MustCompile(`[^a-z0-9]`)

// Trending devuelve los hashtags más usados en la ventana reciente.
// El cache es de mejor esfuerzo: cualquier falla de Redis degrada a
// recomputar contra el store.
func (s *TrendingService) Trending(ctx context.Context, limit int) ([]domain.HashtagCount, error) {
	limit = clampLimit(limit, 10, 50)

	if cached, ok := s.fromCache(ctx); ok {
		if len(cached) > limit {
			cached = cached[:limit]
		}
		return cached, nil
	}

	rows, err := s.posts.ListRecentHashtags(ctx, s.now().Add(-s.window))
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, tags := range rows {
		for _, tag := range tags {
			normalized := tagNormalizeRe.ReplaceAllString(strings.ToLower(tag), "")
			if normalized != "" {
				counts[normalized]++
			}
		}
	}

	result := make([]domain.HashtagCount, 0, len(counts))
	for tag, count := range counts {
		result = append(result, domain.HashtagCount{Tag: tag, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Tag < result[j].Tag
	})
	if len(result) > limit {
		result = result[:limit]
	}

	s.toCache(ctx, result)
	return result, nil
}

func (s *TrendingService) fromCache(ctx context.Context) ([]domain.HashtagCount, bool) {
	if s.cache == nil {
		return nil, false
	}
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()

	raw, err := s.cache.Get(ctx, s.cacheKey).Result()
	if err != nil {
		return nil, false
	}
	var cached []domain.HashtagCount
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		return nil, false
	}
	return cached, true
}

func (s *TrendingService) toCache(ctx context.Context, result []domain.HashtagCount) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()

	if err := s.cache.Set(ctx, s.cacheKey, raw, s.cacheTTL).Err(); err != nil {
		s.logger.Warn("trending cache write failed", zap.Error(err))
	}
}
