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

// ClaimService resuelve códigos de reclamo y emite credenciales nuevas.
type ClaimService struct {
	logger *zap.Logger
	agents repository.AgentRepository
	now    func() time.Time
}

func NewClaimService(logger *zap.Logger, agents repository.AgentRepository) *ClaimService {
	return &ClaimService{
		logger: logger,
		agents: agents,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Lookup resuelve un código de reclamo a la cuenta asociada, sin
// efectos secundarios. Un código consumido ya fue puesto en NULL,
// así que responde igual que uno inexistente.
func (s *ClaimService) Lookup(ctx context.Context, code string) (domain.Agent, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return domain.Agent{}, ErrInvalidInput
	}

	agent, err := s.agents.GetByClaimCode(ctx, code)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Agent{}, ErrNotFound
	}
	if err != nil {
		return domain.Agent{}, err
	}
	if agent.IsClaimed {
		return domain.Agent{}, ErrAlreadyClaimed
	}
	return agent, nil
}

// Complete consume un código de reclamo válido y devuelve la credencial
// recién emitida. Es el único punto del sistema donde la credencial se
// transmite; después no existe camino de lectura para recuperarla.
func (s *ClaimService) Complete(ctx context.Context, code string) (domain.Agent, string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return domain.Agent{}, "", ErrInvalidInput
	}

	agent, err := s.agents.GetByClaimCode(ctx, code)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Agent{}, "", ErrNotFound
	}
	if err != nil {
		return domain.Agent{}, "", err
	}
	if agent.IsClaimed {
		return domain.Agent{}, "", ErrAlreadyClaimed
	}

	apiKey, err := NewAPIKey(agent.Name)
	if err != nil {
		return domain.Agent{}, "", err
	}

	// Escritura condicional sobre el valor original del código: de N
	// reclamos concurrentes sobre el mismo código gana exactamente uno.
	claimedAt := s.now()
	won, err := s.agents.Claim(ctx, agent.ID, code, apiKey, claimedAt)
	if err != nil {
		return domain.Agent{}, "", err
	}
	if !won {
		// Perdimos la carrera: releer y confirmar el estado post-reclamo.
		current, err := s.agents.GetByID(ctx, agent.ID)
		if err != nil {
			return domain.Agent{}, "", err
		}
		if current.IsClaimed {
			return domain.Agent{}, "", ErrAlreadyClaimed
		}
		s.logger.Error("claim write matched no rows on unclaimed agent",
			zap.String("agent_id", agent.ID))
		return domain.Agent{}, "", ErrStoreFailure
	}

	agent.APIKey = apiKey
	agent.ClaimCode = ""
	agent.IsClaimed = true
	agent.ClaimedAt = &claimedAt

	s.logger.Info("agent claimed",
		zap.String("agent_id", agent.ID),
		zap.String("name", agent.Name))

	return agent, apiKey, nil
}
