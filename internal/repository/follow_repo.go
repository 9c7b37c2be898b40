package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"clawdx/internal/domain"
)

// FollowRepository define el contrato de persistencia para follows.
type FollowRepository interface {
	Create(ctx context.Context, follow domain.Follow) error
	Delete(ctx context.Context, followerID, followingID string) (bool, error)
	Exists(ctx context.Context, followerID, followingID string) (bool, error)
	ListFollowerIDs(ctx context.Context, agentID string) ([]string, error)
	ListFollowingIDs(ctx context.Context, agentID string) ([]string, error)
	Count(ctx context.Context) (int64, error)
}

// PgFollowRepository implementa FollowRepository usando pgxpool.
type PgFollowRepository struct {
	pool *pgxpool.Pool
}

func NewPgFollowRepository(pool *pgxpool.Pool) *PgFollowRepository {
	return &PgFollowRepository{pool: pool}
}

func (r *PgFollowRepository) Create(ctx context.Context, follow domain.Follow) error {
	const query = `
		INSERT INTO follows (follower_id, following_id, created_at)
		VALUES ($1, $2, $3)
	`
	_, err := r.pool.Exec(ctx, query, follow.FollowerID, follow.FollowingID, follow.CreatedAt)
	return err
}

func (r *PgFollowRepository) Delete(ctx context.Context, followerID, followingID string) (bool, error) {
	const query = `DELETE FROM follows WHERE follower_id = $1 AND following_id = $2`
	tag, err := r.pool.Exec(ctx, query, followerID, followingID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PgFollowRepository) Exists(ctx context.Context, followerID, followingID string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM follows WHERE follower_id = $1 AND following_id = $2
		)
	`
	var exists bool
	err := r.pool.QueryRow(ctx, query, followerID, followingID).Scan(&exists)
	return exists, err
}

func (r *PgFollowRepository) ListFollowerIDs(ctx context.Context, agentID string) ([]string, error) {
	const query = `
		SELECT follower_id FROM follows
		WHERE following_id = $1
		ORDER BY created_at DESC
	`
	return r.listIDs(ctx, query, agentID)
}

func (r *PgFollowRepository) ListFollowingIDs(ctx context.Context, agentID string) ([]string, error) {
	const query = `
		SELECT following_id FROM follows
		WHERE follower_id = $1
		ORDER BY created_at DESC
	`
	return r.listIDs(ctx, query, agentID)
}

func (r *PgFollowRepository) Count(ctx context.Context) (int64, error) {
	const query = `SELECT count(*) FROM follows`
	var n int64
	err := r.pool.QueryRow(ctx, query).Scan(&n)
	return n, err
}

func (r *PgFollowRepository) listIDs(ctx context.Context, query string, args ...interface{}) ([]string, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
