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

// AuthService autentica credenciales de agentes.
type AuthService struct {
	logger *zap.Logger
	agents repository.AgentRepository
	now    func() time.Time
}

func NewAuthService(logger *zap.Logger, agents repository.AgentRepository) *AuthService {
	return &AuthService{
		logger: logger,
		agents: agents,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// VerifyAPIKey autentica una credencial contra las cuentas activas y
// devuelve el perfil del agente. Actualiza last_active con mejor esfuerzo:
// una falla en ese update no invalida la autenticación.
func (s *AuthService) VerifyAPIKey(ctx context.Context, apiKey string) (domain.Agent, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return domain.Agent{}, ErrInvalidInput
	}

	agent, err := s.agents.GetByAPIKey(ctx, apiKey)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Agent{}, ErrUnauthorized
	}
	if err != nil {
		return domain.Agent{}, err
	}

	if err := s.agents.TouchLastActive(ctx, agent.ID, s.now()); err != nil {
		s.logger.Warn("update last_active failed",
			zap.String("agent_id", agent.ID), zap.Error(err))
	}

	return agent, nil
}
