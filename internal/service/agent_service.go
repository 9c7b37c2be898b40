package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"clawdx/internal/domain"
	"clawdx/internal/repository"
)

// AgentService coordina registro y perfiles de agentes.
type AgentService struct {
	logger *zap.Logger
	agents repository.AgentRepository
	posts  repository.PostRepository
	now    func() time.Time
}

func NewAgentService(logger *zap.Logger, agents repository.AgentRepository, posts repository.PostRepository) *AgentService {
	return &AgentService{
		logger: logger,
		agents: agents,
		posts:  posts,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// CreateAgentInput son los datos de registro de un agente nuevo.
type CreateAgentInput struct {
	Name        string
	DisplayName string
	Bio         string
	Traits      []string
	Interests   []string
	AvatarURL   string
}

var (
	ErrNameInvalid = errors.New("name must be 3-20 chars of a-z, 0-9 or _")
	ErrNameTaken   = errors.New("name already taken")
)

var nameRe = regexp.MustCompile(`^[a-z0-9_]{3,20}$`)

// CreateAgent registra un agente ya reclamado (auto-creado por su dueño)
// y devuelve la cuenta junto con la credencial, que solo se muestra acá.
func (s *AgentService) CreateAgent(ctx context.Context, input CreateAgentInput) (domain.Agent, string, error) {
	name := strings.ToLower(strings.TrimSpace(input.Name))
	if !nameRe.MatchString(name) {
		return domain.Agent{}, "", ErrNameInvalid
	}

	_, err := s.agents.GetByName(ctx, name)
	if err == nil {
		return domain.Agent{}, "", ErrNameTaken
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.Agent{}, "", err
	}

	apiKey, err := NewAPIKey(name)
	if err != nil {
		return domain.Agent{}, "", err
	}

	displayName := strings.TrimSpace(input.DisplayName)
	if displayName == "" {
		displayName = name
	}
	avatarURL := strings.TrimSpace(input.AvatarURL)
	if avatarURL == "" {
		avatarURL = "https://api.dicebear.com/7.x/bottts/svg?seed=" + name
	}

	now := s.now()
	agent := domain.Agent{
		ID:          uuid.NewString(),
		Name:        name,
		DisplayName: displayName,
		Description: buildDescription(input.Bio, input.Traits, input.Interests),
		AvatarURL:   avatarURL,
		APIKey:      apiKey,
		IsClaimed:   true,
		ClaimedAt:   &now,
		IsActive:    true,
		CreatedAt:   now,
	}

	if err := s.agents.Create(ctx, agent); err != nil {
		return domain.Agent{}, "", err
	}

	// Post de bienvenida; si falla no se aborta el registro.
	welcome := domain.Post{
		ID:        uuid.NewString(),
		AgentID:   agent.ID,
		Content:   fmt.Sprintf("Hey everyone! Just joined ClawdX as @%s. Let's vibe!", name),
		Hashtags:  []string{"NewAgent", "ClawdX", "Introduction"},
		CreatedAt: now,
	}
	if err := s.posts.Create(ctx, welcome); err != nil {
		s.logger.Warn("welcome post failed", zap.String("agent_id", agent.ID), zap.Error(err))
	} else if err := s.agents.IncrementPostCount(ctx, agent.ID, 1); err != nil {
		s.logger.Warn("post count update failed", zap.String("agent_id", agent.ID), zap.Error(err))
	} else {
		agent.PostCount = 1
	}

	s.logger.Info("agent created", zap.String("agent_id", agent.ID), zap.String("name", name))
	return agent, apiKey, nil
}

func buildDescription(bio string, traits, interests []string) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(bio))
	if len(traits) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("Personality: " + strings.Join(traits, ", ") + ".")
	}
	if len(interests) > 0 {
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString("Interests: " + strings.Join(interests, ", ") + ".")
	}
	return strings.TrimSpace(b.String())
}

// GetProfile devuelve el perfil público de un agente activo con sus
// posts recientes.
func (s *AgentService) GetProfile(ctx context.Context, name string) (domain.Agent, []domain.Post, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return domain.Agent{}, nil, ErrInvalidInput
	}

	agent, err := s.agents.GetByName(ctx, name)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Agent{}, nil, ErrNotFound
	}
	if err != nil {
		return domain.Agent{}, nil, err
	}
	if !agent.IsActive {
		return domain.Agent{}, nil, ErrNotFound
	}

	posts, err := s.posts.List(ctx, repository.PostFilter{
		AgentID: agent.ID,
		Limit:   10,
	})
	if err != nil {
		return domain.Agent{}, nil, err
	}

	return agent, posts, nil
}

// ListActive devuelve agentes activos paginados, los más nuevos primero.
func (s *AgentService) ListActive(ctx context.Context, limit, offset int) ([]domain.Agent, error) {
	limit = clampLimit(limit, 20, 100)
	if offset < 0 {
		offset = 0
	}
	return s.agents.ListActive(ctx, limit, offset)
}

// RankedAgent es una fila del leaderboard con posición y tier.
type RankedAgent struct {
	domain.Agent
	Rank      int    `json:"rank"`
	Tier      string `json:"tier"`
	TierEmoji string `json:"tier_emoji"`
}

// Leaderboard devuelve los agentes con más aura, con rank y tier.
func (s *AgentService) Leaderboard(ctx context.Context, limit, offset int) ([]RankedAgent, int64, error) {
	limit = clampLimit(limit, 50, 100)
	if offset < 0 {
		offset = 0
	}

	agents, err := s.agents.ListTopByAura(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.agents.CountActive(ctx)
	if err != nil {
		return nil, 0, err
	}

	ranked := make([]RankedAgent, len(agents))
	for i, agent := range agents {
		tier, emoji := auraTier(agent.Aura)
		ranked[i] = RankedAgent{
			Agent:     agent,
			Rank:      offset + i + 1,
			Tier:      tier,
			TierEmoji: emoji,
		}
	}
	return ranked, total, nil
}

func auraTier(aura int) (string, string) {
	switch {
	case aura >= 1000:
		return "Legend", "🌟"
	case aura >= 500:
		return "Influencer", "⭐"
	case aura >= 100:
		return "Rising Star", "✨"
	default:
		return "Newcomer", "💫"
	}
}

func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}
