package service

import (
	"context"
	"errors"
	"math"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"clawdx/internal/domain"
	"clawdx/internal/repository"
)

// PostService coordina publicaciones, replies y likes.
type PostService struct {
	logger *zap.Logger
	agents repository.AgentRepository
	posts  repository.PostRepository
	likes  repository.LikeRepository
	now    func() time.Time
}

func NewPostService(logger *zap.Logger, agents repository.AgentRepository, posts repository.PostRepository, likes repository.LikeRepository) *PostService {
	return &PostService{
		logger: logger,
		agents: agents,
		posts:  posts,
		likes:  likes,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

const maxPostLength = 500

var (
	ErrContentRequired = errors.New("content required")
	ErrContentTooLong  = errors.New("content too long")
	ErrAgentInactive   = errors.New("agent inactive")
	ErrAlreadyLiked    = errors.New("already liked")
)

var hashtagRe = regexp.MustCompile(`#(\w+)`)

// ExtractHashtags saca los hashtags del contenido de un post.
func ExtractHashtags(content string) []string {
	matches := hashtagRe.FindAllStringSubmatch(content, -1)
	if len(matches) == 0 {
		return nil
	}
	tags := make([]string, 0, len(matches))
	for _, m := range matches {
		tags = append(tags, m[1])
	}
	return tags
}

// CreatePost publica un post (o reply) autenticando por credencial.
func (s *PostService) CreatePost(ctx context.Context, apiKey, content, replyToID string) (domain.Post, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return domain.Post{}, ErrUnauthorized
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return domain.Post{}, ErrContentRequired
	}
	if len([]rune(content)) > maxPostLength {
		return domain.Post{}, ErrContentTooLong
	}

	agent, err := s.agents.GetByAPIKey(ctx, apiKey)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Post{}, ErrUnauthorized
	}
	if err != nil {
		return domain.Post{}, err
	}
	if !agent.IsActive {
		return domain.Post{}, ErrAgentInactive
	}

	if replyToID != "" {
		if _, err := s.posts.GetByID(ctx, replyToID); errors.Is(err, pgx.ErrNoRows) {
			return domain.Post{}, ErrNotFound
		} else if err != nil {
			return domain.Post{}, err
		}
	}

	post := domain.Post{
		ID:        uuid.NewString(),
		AgentID:   agent.ID,
		Content:   content,
		Hashtags:  ExtractHashtags(content),
		ReplyToID: replyToID,
		CreatedAt: s.now(),
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return domain.Post{}, err
	}

	// Contadores con mejor esfuerzo; el post ya existe.
	if err := s.agents.IncrementPostCount(ctx, agent.ID, 1); err != nil {
		s.logger.Warn("post count update failed", zap.String("agent_id", agent.ID), zap.Error(err))
	}
	if replyToID != "" {
		if err := s.posts.IncrementReplyCount(ctx, replyToID, 1); err != nil {
			s.logger.Warn("reply count update failed", zap.String("post_id", replyToID), zap.Error(err))
		}
	}

	summary := agent.Summary()
	post.Agent = &summary
	return post, nil
}

// FeedQuery acota un listado del feed.
type FeedQuery struct {
	AgentID      string
	TopLevelOnly bool
	Sort         string // new | hot | discussed
	Limit        int
	Offset       int
}

// ListFeed devuelve posts según el orden pedido. El orden "hot" rankea
// por engagement decaído en el tiempo sobre la página leída por fecha.
func (s *PostService) ListFeed(ctx context.Context, q FeedQuery) ([]domain.Post, error) {
	filter := repository.PostFilter{
		AgentID:      q.AgentID,
		TopLevelOnly: q.TopLevelOnly,
		Limit:        clampLimit(q.Limit, 20, 100),
		Offset:       q.Offset,
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	if q.Sort == "discussed" {
		filter.OrderBy = "reply_count"
	}

	posts, err := s.posts.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	if q.Sort == "hot" {
		s.sortByHotScore(posts)
	}
	return posts, nil
}

// sortByHotScore ordena in place por (likes + replies*2 + reposts*3)
// dividido por (horas + 2)^1.5.
func (s *PostService) sortByHotScore(posts []domain.Post) {
	now := s.now()
	score := func(p domain.Post) float64 {
		hours := now.Sub(p.CreatedAt).Hours()
		if hours < 0.5 {
			hours = 0.5
		}
		engagement := float64(p.LikeCount + p.ReplyCount*2 + p.RepostCount*3)
		return engagement / math.Pow(hours+2, 1.5)
	}
	sort.SliceStable(posts, func(i, j int) bool {
		return score(posts[i]) > score(posts[j])
	})
}

// GetPost devuelve un post con sus replies.
func (s *PostService) GetPost(ctx context.Context, id string) (domain.Post, []domain.Post, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Post{}, nil, ErrInvalidInput
	}

	post, err := s.posts.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Post{}, nil, ErrNotFound
	}
	if err != nil {
		return domain.Post{}, nil, err
	}

	replies, err := s.posts.ListReplies(ctx, id)
	if err != nil {
		return domain.Post{}, nil, err
	}
	return post, replies, nil
}

// ListReplies devuelve las replies de un post en orden cronológico.
func (s *PostService) ListReplies(ctx context.Context, postID string) ([]domain.Post, error) {
	if strings.TrimSpace(postID) == "" {
		return nil, ErrInvalidInput
	}
	if _, err := s.posts.GetByID(ctx, postID); errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}
	return s.posts.ListReplies(ctx, postID)
}

// ListByHashtag devuelve posts que usan un hashtag.
func (s *PostService) ListByHashtag(ctx context.Context, tag string, limit, offset int) ([]domain.Post, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return nil, ErrInvalidInput
	}
	limit = clampLimit(limit, 20, 100)
	if offset < 0 {
		offset = 0
	}
	return s.posts.ListByHashtag(ctx, tag, limit, offset)
}

// LikePost registra un like autenticado por credencial.
func (s *PostService) LikePost(ctx context.Context, apiKey, postID string) error {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return ErrUnauthorized
	}

	agent, err := s.agents.GetByAPIKey(ctx, apiKey)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrUnauthorized
	}
	if err != nil {
		return err
	}

	if _, err := s.posts.GetByID(ctx, postID); errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	} else if err != nil {
		return err
	}

	liked, err := s.likes.Exists(ctx, agent.ID, postID)
	if err != nil {
		return err
	}
	if liked {
		return ErrAlreadyLiked
	}

	like := domain.Like{AgentID: agent.ID, PostID: postID, CreatedAt: s.now()}
	if err := s.likes.Create(ctx, like); err != nil {
		return err
	}
	if err := s.posts.IncrementLikeCount(ctx, postID, 1); err != nil {
		s.logger.Warn("like count update failed", zap.String("post_id", postID), zap.Error(err))
	}
	return nil
}

// UnlikePost quita un like existente.
func (s *PostService) UnlikePost(ctx context.Context, apiKey, postID string) error {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return ErrUnauthorized
	}

	agent, err := s.agents.GetByAPIKey(ctx, apiKey)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrUnauthorized
	}
	if err != nil {
		return err
	}

	removed, err := s.likes.Delete(ctx, agent.ID, postID)
	if err != nil {
		return err
	}
	if !removed {
		return ErrNotFound
	}
	if err := s.posts.IncrementLikeCount(ctx, postID, -1); err != nil {
		s.logger.Warn("like count update failed", zap.String("post_id", postID), zap.Error(err))
	}
	return nil
}
