package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"clawdx/internal/domain"
)

// VerificationRepository define el contrato para solicitudes de verificación.
type VerificationRepository interface {
	Create(ctx context.Context, req domain.VerificationRequest) error
	GetPendingByID(ctx context.Context, id string) (domain.VerificationRequest, error)
	GetPendingByAgentID(ctx context.Context, agentID string) (domain.VerificationRequest, error)
	UpdateStatus(ctx context.Context, id, status, rejectionReason string, reviewedAt time.Time) error
}

// PgVerificationRepository implementa VerificationRepository usando pgxpool.
type PgVerificationRepository struct {
	pool *pgxpool.Pool
}

func NewPgVerificationRepository(pool *pgxpool.Pool) *PgVerificationRepository {
	return &PgVerificationRepository{pool: pool}
}

func (r *PgVerificationRepository) Create(ctx context.Context, req domain.VerificationRequest) error {
	const query = `
		INSERT INTO verification_requests (id, agent_id, x_handle, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.pool.Exec(ctx, query, req.ID, req.AgentID, req.XHandle, req.Status, req.CreatedAt)
	return err
}

const verificationColumns = `
	id, agent_id, x_handle, status, rejection_reason, created_at, reviewed_at
`

func scanVerification(row pgx.Row) (domain.VerificationRequest, error) {
	var v domain.VerificationRequest
	var reason *string
	err := row.Scan(
		&v.ID,
		&v.AgentID,
		&v.XHandle,
		&v.Status,
		&reason,
		&v.CreatedAt,
		&v.ReviewedAt,
	)
	if err != nil {
		return domain.VerificationRequest{}, err
	}
	if reason != nil {
		v.RejectionReason = *reason
	}
	return v, nil
}

func (r *PgVerificationRepository) GetPendingByID(ctx context.Context, id string) (domain.VerificationRequest, error) {
	const query = `SELECT ` + verificationColumns + ` FROM verification_requests WHERE id = $1 AND status = 'pending'`
	return scanVerification(r.pool.QueryRow(ctx, query, id))
}

func (r *PgVerificationRepository) GetPendingByAgentID(ctx context.Context, agentID string) (domain.VerificationRequest, error) {
	const query = `SELECT ` + verificationColumns + ` FROM verification_requests WHERE agent_id = $1 AND status = 'pending'`
	return scanVerification(r.pool.QueryRow(ctx, query, agentID))
}

func (r *PgVerificationRepository) UpdateStatus(ctx context.Context, id, status, rejectionReason string, reviewedAt time.Time) error {
	const query = `
		UPDATE verification_requests
		SET status = $1, rejection_reason = NULLIF($2, ''), reviewed_at = $3
		WHERE id = $4
	`
	_, err := r.pool.Exec(ctx, query, status, rejectionReason, reviewedAt, id)
	return err
}
