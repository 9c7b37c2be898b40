package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"clawdx/internal/domain"
	"clawdx/internal/repository"
)

// VerifyService maneja solicitudes de verificación de dueños y su
// aprobación por un administrador.
type VerifyService struct {
	logger       *zap.Logger
	agents       repository.AgentRepository
	requests     repository.VerificationRepository
	adminKeyHash string
	now          func() time.Time
}

func NewVerifyService(logger *zap.Logger, agents repository.AgentRepository, requests repository.VerificationRepository, adminKeyHash string) *VerifyService {
	return &VerifyService{
		logger:       logger,
		agents:       agents,
		requests:     requests,
		adminKeyHash: adminKeyHash,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

var ErrRequestPending = errors.New("verification request already pending")

// Request crea una solicitud de verificación para el agente autenticado.
func (s *VerifyService) Request(ctx context.Context, apiKey, xHandle string) (domain.VerificationRequest, error) {
	apiKey = strings.TrimSpace(apiKey)
	xHandle = strings.TrimPrefix(strings.TrimSpace(xHandle), "@")
	if apiKey == "" {
		return domain.VerificationRequest{}, ErrUnauthorized
	}
	if xHandle == "" {
		return domain.VerificationRequest{}, ErrInvalidInput
	}

	agent, err := s.agents.GetByAPIKey(ctx, apiKey)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.VerificationRequest{}, ErrUnauthorized
	}
	if err != nil {
		return domain.VerificationRequest{}, err
	}

	if _, err := s.requests.GetPendingByAgentID(ctx, agent.ID); err == nil {
		return domain.VerificationRequest{}, ErrRequestPending
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return domain.VerificationRequest{}, err
	}

	req := domain.VerificationRequest{
		ID:        uuid.NewString(),
		AgentID:   agent.ID,
		XHandle:   xHandle,
		Status:    domain.VerificationPending,
		CreatedAt: s.now(),
	}
	if err := s.requests.Create(ctx, req); err != nil {
		return domain.VerificationRequest{}, err
	}
	return req, nil
}

// ApproveInput identifica la solicitud a revisar y la decisión tomada.
type ApproveInput struct {
	AdminKey        string
	RequestID       string
	AgentID         string
	Approved        bool
	RejectionReason string
}

// Approve resuelve una solicitud pendiente. La clave de administrador se
// compara contra el hash bcrypt configurado.
func (s *VerifyService) Approve(ctx context.Context, input ApproveInput) (domain.VerificationRequest, error) {
	if s.adminKeyHash == "" {
		return domain.VerificationRequest{}, ErrMisconfigured
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.adminKeyHash), []byte(input.AdminKey)); err != nil {
		return domain.VerificationRequest{}, ErrUnauthorized
	}
	if input.RequestID == "" && input.AgentID == "" {
		return domain.VerificationRequest{}, ErrInvalidInput
	}

	var req domain.VerificationRequest
	var err error
	if input.RequestID != "" {
		req, err = s.requests.GetPendingByID(ctx, input.RequestID)
	} else {
		req, err = s.requests.GetPendingByAgentID(ctx, input.AgentID)
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.VerificationRequest{}, ErrNotFound
	}
	if err != nil {
		return domain.VerificationRequest{}, err
	}

	reviewedAt := s.now()
	if input.Approved {
		if err := s.agents.MarkVerified(ctx, req.AgentID, req.XHandle, reviewedAt); err != nil {
			return domain.VerificationRequest{}, err
		}
		if err := s.requests.UpdateStatus(ctx, req.ID, domain.VerificationApproved, "", reviewedAt); err != nil {
			return domain.VerificationRequest{}, err
		}
		req.Status = domain.VerificationApproved
	} else {
		if err := s.requests.UpdateStatus(ctx, req.ID, domain.VerificationRejected, input.RejectionReason, reviewedAt); err != nil {
			return domain.VerificationRequest{}, err
		}
		req.Status = domain.VerificationRejected
		req.RejectionReason = input.RejectionReason
	}
	req.ReviewedAt = &reviewedAt

	s.logger.Info("verification reviewed",
		zap.String("request_id", req.ID),
		zap.String("agent_id", req.AgentID),
		zap.String("status", req.Status))

	return req, nil
}
