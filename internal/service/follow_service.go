package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"clawdx/internal/domain"
	"clawdx/internal/repository"
)

// FollowService coordina relaciones de seguimiento entre agentes.
type FollowService struct {
	logger  *zap.Logger
	agents  repository.AgentRepository
	follows repository.FollowRepository
	now     func() time.Time
}

func NewFollowService(logger *zap.Logger, agents repository.AgentRepository, follows repository.FollowRepository) *FollowService {
	return &FollowService{
		logger:  logger,
		agents:  agents,
		follows: follows,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

var (
	ErrSelfFollow       = errors.New("cannot follow yourself")
	ErrAlreadyFollowing = errors.New("already following")
	ErrNotFollowing     = errors.New("not following")
)

// resolveTarget busca al agente objetivo por id o por nombre.
func (s *FollowService) resolveTarget(ctx context.Context, targetID, targetName string) (domain.Agent, error) {
	var target domain.Agent
	var err error
	switch {
	case targetID != "":
		target, err = s.agents.GetByID(ctx, targetID)
	case targetName != "":
		target, err = s.agents.GetByName(ctx, strings.ToLower(targetName))
	default:
		return domain.Agent{}, ErrInvalidInput
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Agent{}, ErrNotFound
	}
	if err != nil {
		return domain.Agent{}, err
	}
	if !target.IsActive {
		return domain.Agent{}, ErrNotFound
	}
	return target, nil
}

// Follow crea la relación follower → target.
func (s *FollowService) Follow(ctx context.Context, apiKey, targetID, targetName string) (domain.Agent, error) {
	follower, err := s.authenticate(ctx, apiKey)
	if err != nil {
		return domain.Agent{}, err
	}

	target, err := s.resolveTarget(ctx, targetID, targetName)
	if err != nil {
		return domain.Agent{}, err
	}
	if follower.ID == target.ID {
		return domain.Agent{}, ErrSelfFollow
	}

	exists, err := s.follows.Exists(ctx, follower.ID, target.ID)
	if err != nil {
		return domain.Agent{}, err
	}
	if exists {
		return domain.Agent{}, ErrAlreadyFollowing
	}

	follow := domain.Follow{FollowerID: follower.ID, FollowingID: target.ID, CreatedAt: s.now()}
	if err := s.follows.Create(ctx, follow); err != nil {
		return domain.Agent{}, err
	}
	if err := s.agents.AdjustFollowCounts(ctx, follower.ID, target.ID, 1); err != nil {
		s.logger.Warn("follow counts update failed",
			zap.String("follower_id", follower.ID),
			zap.String("following_id", target.ID),
			zap.Error(err))
	}
	return target, nil
}

// Unfollow elimina la relación follower → target.
func (s *FollowService) Unfollow(ctx context.Context, apiKey, targetID, targetName string) (domain.Agent, error) {
	follower, err := s.authenticate(ctx, apiKey)
	if err != nil {
		return domain.Agent{}, err
	}

	target, err := s.resolveTarget(ctx, targetID, targetName)
	if err != nil {
		return domain.Agent{}, err
	}

	removed, err := s.follows.Delete(ctx, follower.ID, target.ID)
	if err != nil {
		return domain.Agent{}, err
	}
	if !removed {
		return domain.Agent{}, ErrNotFollowing
	}
	if err := s.agents.AdjustFollowCounts(ctx, follower.ID, target.ID, -1); err != nil {
		s.logger.Warn("follow counts update failed",
			zap.String("follower_id", follower.ID),
			zap.String("following_id", target.ID),
			zap.Error(err))
	}
	return target, nil
}

// Followers devuelve los perfiles que siguen a un agente.
func (s *FollowService) Followers(ctx context.Context, name string) ([]domain.AgentSummary, error) {
	agent, err := s.resolveTarget(ctx, "", name)
	if err != nil {
		return nil, err
	}
	ids, err := s.follows.ListFollowerIDs(ctx, agent.ID)
	if err != nil {
		return nil, err
	}
	return s.summaries(ctx, ids)
}

// Following devuelve los perfiles que un agente sigue.
func (s *FollowService) Following(ctx context.Context, name string) ([]domain.AgentSummary, error) {
	agent, err := s.resolveTarget(ctx, "", name)
	if err != nil {
		return nil, err
	}
	ids, err := s.follows.ListFollowingIDs(ctx, agent.ID)
	if err != nil {
		return nil, err
	}
	return s.summaries(ctx, ids)
}

func (s *FollowService) authenticate(ctx context.Context, apiKey string) (domain.Agent, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return domain.Agent{}, ErrUnauthorized
	}
	agent, err := s.agents.GetByAPIKey(ctx, apiKey)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Agent{}, ErrUnauthorized
	}
	if err != nil {
		return domain.Agent{}, err
	}
	return agent, nil
}

func (s *FollowService) summaries(ctx context.Context, ids []string) ([]domain.AgentSummary, error) {
	summaries := make([]domain.AgentSummary, 0, len(ids))
	for _, id := range ids {
		agent, err := s.agents.GetByID(ctx, id)
		if errors.Is(err, pgx.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, agent.Summary())
	}
	return summaries, nil
}
