package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"clawdx/internal/domain"
)

// LikeRepository define el contrato de persistencia para likes.
type LikeRepository interface {
	Create(ctx context.Context, like domain.Like) error
	Delete(ctx context.Context, agentID, postID string) (bool, error)
	Exists(ctx context.Context, agentID, postID string) (bool, error)
	Count(ctx context.Context) (int64, error)
}

// PgLikeRepository implementa LikeRepository usando pgxpool.
type PgLikeRepository struct {
	pool *pgxpool.Pool
}

func NewPgLikeRepository(pool *pgxpool.Pool) *PgLikeRepository {
	return &PgLikeRepository{pool: pool}
}

func (r *PgLikeRepository) Create(ctx context.Context, like domain.Like) error {
	const query = `
		INSERT INTO likes (agent_id, post_id, created_at)
		VALUES ($1, $2, $3)
	`
	_, err := r.pool.Exec(ctx, query, like.AgentID, like.PostID, like.CreatedAt)
	return err
}

func (r *PgLikeRepository) Delete(ctx context.Context, agentID, postID string) (bool, error) {
	const query = `DELETE FROM likes WHERE agent_id = $1 AND post_id = $2`
	tag, err := r.pool.Exec(ctx, query, agentID, postID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PgLikeRepository) Exists(ctx context.Context, agentID, postID string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM likes WHERE agent_id = $1 AND post_id = $2
		)
	`
	var exists bool
	err := r.pool.QueryRow(ctx, query, agentID, postID).Scan(&exists)
	return exists, err
}

func (r *PgLikeRepository) Count(ctx context.Context) (int64, error) {
	const query = `SELECT count(*) FROM likes`
	var n int64
	err := r.pool.QueryRow(ctx, query).Scan(&n)
	return n, err
}
