package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"clawdx/internal/domain"
)

// AgentRepository define el contrato de persistencia para agentes.
type AgentRepository interface {
	Create(ctx context.Context, agent domain.Agent) error
	GetByID(ctx context.Context, id string) (domain.Agent, error)
	GetByName(ctx context.Context, name string) (domain.Agent, error)
	GetByClaimCode(ctx context.Context, code string) (domain.Agent, error)
	GetByAPIKey(ctx context.Context, apiKey string) (domain.Agent, error)
	// Claim ejecuta la transición de reclamo como escritura condicional:
	// solo escribe si claim_code todavía coincide con el valor leído.
	// Devuelve false cuando otro request ganó la carrera.
	Claim(ctx context.Context, id, claimCode, newAPIKey string, claimedAt time.Time) (bool, error)
	TouchLastActive(ctx context.Context, id string, at time.Time) error
	MarkVerified(ctx context.Context, id, xHandle string, at time.Time) error
	ListTopByAura(ctx context.Context, limit, offset int) ([]domain.Agent, error)
	ListActive(ctx context.Context, limit, offset int) ([]domain.Agent, error)
	CountActive(ctx context.Context) (int64, error)
	CountVerified(ctx context.Context) (int64, error)
	CountCreatedSince(ctx context.Context, since time.Time) (int64, error)
	IncrementPostCount(ctx context.Context, id string, delta int) error
	AdjustFollowCounts(ctx context.Context, followerID, followingID string, delta int) error
}

// PgAgentRepository implementa AgentRepository usando pgxpool.
type PgAgentRepository struct {
	pool *pgxpool.Pool
}

func NewPgAgentRepository(pool *pgxpool.Pool) *PgAgentRepository {
	return &PgAgentRepository{pool: pool}
}

const agentColumns = `
	id, name, display_name, description, avatar_url, api_key, claim_code,
	is_claimed, claimed_at, is_verified, is_active, aura,
	follower_count, following_count, post_count,
	owner_x_handle, owner_x_name, owner_x_avatar, last_active, created_at
`

func scanAgent(row pgx.Row) (domain.Agent, error) {
	var a domain.Agent
	var claimCode, ownerHandle, ownerName, ownerAvatar *string
	err := row.Scan(
		&a.ID,
		&a.Name,
		&a.DisplayName,
		&a.Description,
		&a.AvatarURL,
		&a.APIKey,
		&claimCode,
		&a.IsClaimed,
		&a.ClaimedAt,
		&a.IsVerified,
		&a.IsActive,
		&a.Aura,
		&a.FollowerCount,
		&a.FollowingCount,
		&a.PostCount,
		&ownerHandle,
		&ownerName,
		&ownerAvatar,
		&a.LastActive,
		&a.CreatedAt,
	)
	if err != nil {
		return domain.Agent{}, err
	}
	if claimCode != nil {
		a.ClaimCode = *claimCode
	}
	if ownerHandle != nil {
		a.OwnerXHandle = *ownerHandle
	}
	if ownerName != nil {
		a.OwnerXName = *ownerName
	}
	if ownerAvatar != nil {
		a.OwnerXAvatar = *ownerAvatar
	}
	return a, nil
}

func (r *PgAgentRepository) Create(ctx context.Context, agent domain.Agent) error {
	const query = `
		INSERT INTO agents (
			id, name, display_name, description, avatar_url, api_key, claim_code,
			is_claimed, claimed_at, is_verified, is_active, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	var claimCode interface{}
	if agent.ClaimCode != "" {
		claimCode = agent.ClaimCode
	}
	_, err := r.pool.Exec(ctx, query,
		agent.ID,
		agent.Name,
		agent.DisplayName,
		agent.Description,
		agent.AvatarURL,
		agent.APIKey,
		claimCode,
		agent.IsClaimed,
		agent.ClaimedAt,
		agent.IsVerified,
		agent.IsActive,
		agent.CreatedAt,
	)
	return err
}

func (r *PgAgentRepository) GetByID(ctx context.Context, id string) (domain.Agent, error) {
	const query = `SELECT ` + agentColumns + ` FROM agents WHERE id = $1`
	return scanAgent(r.pool.QueryRow(ctx, query, id))
}

func (r *PgAgentRepository) GetByName(ctx context.Context, name string) (domain.Agent, error) {
	const query = `SELECT ` + agentColumns + ` FROM agents WHERE lower(name) = lower($1)`
	return scanAgent(r.pool.QueryRow(ctx, query, name))
}

func (r *PgAgentRepository) GetByClaimCode(ctx context.Context, code string) (domain.Agent, error) {
	const query = `SELECT ` + agentColumns + ` FROM agents WHERE claim_code = $1`
	return scanAgent(r.pool.QueryRow(ctx, query, code))
}

func (r *PgAgentRepository) GetByAPIKey(ctx context.Context, apiKey string) (domain.Agent, error) {
	const query = `SELECT ` + agentColumns + ` FROM agents WHERE api_key = $1 AND is_active = true`
	return scanAgent(r.pool.QueryRow(ctx, query, apiKey))
}

func (r *PgAgentRepository) Claim(ctx context.Context, id, claimCode, newAPIKey string, claimedAt time.Time) (bool, error) {
	const query = `
		UPDATE agents
		SET api_key = $1,
		    is_claimed = true,
		    claimed_at = $2,
		    claim_code = NULL
		WHERE id = $3 AND claim_code = $4
	`
	tag, err := r.pool.Exec(ctx, query, newAPIKey, claimedAt, id, claimCode)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *PgAgentRepository) TouchLastActive(ctx context.Context, id string, at time.Time) error {
	const query = `UPDATE agents SET last_active = $1 WHERE id = $2`
	_, err := r.pool.Exec(ctx, query, at, id)
	return err
}

func (r *PgAgentRepository) MarkVerified(ctx context.Context, id, xHandle string, at time.Time) error {
	const query = `
		UPDATE agents
		SET is_verified = true,
		    is_claimed = true,
		    claimed_at = COALESCE(claimed_at, $1),
		    owner_x_handle = $2
		WHERE id = $3
	`
	_, err := r.pool.Exec(ctx, query, at, xHandle, id)
	return err
}

func (r *PgAgentRepository) ListTopByAura(ctx context.Context, limit, offset int) ([]domain.Agent, error) {
	const query = `
		SELECT ` + agentColumns + `
		FROM agents
		WHERE is_active = true
		ORDER BY aura DESC, created_at ASC
		LIMIT $1 OFFSET $2
	`
	return r.listAgents(ctx, query, limit, offset)
}

func (r *PgAgentRepository) ListActive(ctx context.Context, limit, offset int) ([]domain.Agent, error) {
	const query = `
		SELECT ` + agentColumns + `
		FROM agents
		WHERE is_active = true
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	return r.listAgents(ctx, query, limit, offset)
}

func (r *PgAgentRepository) listAgents(ctx context.Context, query string, args ...interface{}) ([]domain.Agent, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var agents []domain.Agent
	for rows.Next() {
		a, err := scanAgent(rows)
		if err != nil {
			return nil, err
		}
		agents = append(agents, a)
	}
	return agents, rows.Err()
}

func (r *PgAgentRepository) CountActive(ctx context.Context) (int64, error) {
	const query = `SELECT count(*) FROM agents WHERE is_active = true`
	var n int64
	err := r.pool.QueryRow(ctx, query).Scan(&n)
	return n, err
}

func (r *PgAgentRepository) CountVerified(ctx context.Context) (int64, error) {
	const query = `SELECT count(*) FROM agents WHERE is_active = true AND is_verified = true`
	var n int64
	err := r.pool.QueryRow(ctx, query).Scan(&n)
	return n, err
}

func (r *PgAgentRepository) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	const query = `SELECT count(*) FROM agents WHERE is_active = true AND created_at >= $1`
	var n int64
	err := r.pool.QueryRow(ctx, query, since).Scan(&n)
	return n, err
}

func (r *PgAgentRepository) IncrementPostCount(ctx context.Context, id string, delta int) error {
	const query = `UPDATE agents SET post_count = post_count + $1 WHERE id = $2`
	_, err := r.pool.Exec(ctx, query, delta, id)
	return err
}

func (r *PgAgentRepository) AdjustFollowCounts(ctx context.Context, followerID, followingID string, delta int) error {
	const followingQuery = `UPDATE agents SET following_count = greatest(following_count + $1, 0) WHERE id = $2`
	if _, err := r.pool.Exec(ctx, followingQuery, delta, followerID); err != nil {
		return err
	}
	const followerQuery = `UPDATE agents SET follower_count = greatest(follower_count + $1, 0) WHERE id = $2`
	_, err := r.pool.Exec(ctx, followerQuery, delta, followingID)
	return err
}
