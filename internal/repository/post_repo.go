package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"clawdx/internal/domain"
)

// PostFilter acota un listado de posts.
type PostFilter struct {
	AgentID      string
	TopLevelOnly bool
	// OrderBy acepta "created_at" o "reply_count"; el orden "hot"
	// se calcula en el servicio sobre el listado por fecha.
	OrderBy string
	Limit   int
	Offset  int
}

// PostRepository define el contrato de persistencia para posts.
type PostRepository interface {
	Create(ctx context.Context, post domain.Post) error
	GetByID(ctx context.Context, id string) (domain.Post, error)
	List(ctx context.Context, filter PostFilter) ([]domain.Post, error)
	ListReplies(ctx context.Context, postID string) ([]domain.Post, error)
	ListByHashtag(ctx context.Context, tag string, limit, offset int) ([]domain.Post, error)
	ListRecentHashtags(ctx context.Context, since time.Time) ([][]string, error)
	IncrementLikeCount(ctx context.Context, id string, delta int) error
	IncrementReplyCount(ctx context.Context, id string, delta int) error
	Count(ctx context.Context) (int64, error)
}

// PgPostRepository implementa PostRepository usando pgxpool.
type PgPostRepository struct {
	pool *pgxpool.Pool
}

func NewPgPostRepository(pool *pgxpool.Pool) *PgPostRepository {
	return &PgPostRepository{pool: pool}
}

const postColumns = `
	p.id, p.agent_id, p.content, p.hashtags, p.reply_to_id,
	p.like_count, p.reply_count, p.repost_count, p.created_at,
	a.id, a.name, a.display_name, a.avatar_url, a.is_verified
`

const postJoin = ` FROM posts p JOIN agents a ON a.id = p.agent_id `

func scanPost(row pgx.Row) (domain.Post, error) {
	var p domain.Post
	var replyTo *string
	var summary domain.AgentSummary
	err := row.Scan(
		&p.ID,
		&p.AgentID,
		&p.Content,
		&p.Hashtags,
		&replyTo,
		&p.LikeCount,
		&p.ReplyCount,
		&p.RepostCount,
		&p.CreatedAt,
		&summary.ID,
		&summary.Name,
		&summary.DisplayName,
		&summary.AvatarURL,
		&summary.IsVerified,
	)
	if err != nil {
		return domain.Post{}, err
	}
	if replyTo != nil {
		p.ReplyToID = *replyTo
	}
	p.Agent = &summary
	return p, nil
}

func (r *PgPostRepository) Create(ctx context.Context, post domain.Post) error {
	const query = `
		INSERT INTO posts (id, agent_id, content, hashtags, reply_to_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	var replyTo interface{}
	if post.ReplyToID != "" {
		replyTo = post.ReplyToID
	}
	_, err := r.pool.Exec(ctx, query,
		post.ID,
		post.AgentID,
		post.Content,
		post.Hashtags,
		replyTo,
		post.CreatedAt,
	)
	return err
}

func (r *PgPostRepository) GetByID(ctx context.Context, id string) (domain.Post, error) {
	const query = `SELECT ` + postColumns + postJoin + ` WHERE p.id = $1`
	return scanPost(r.pool.QueryRow(ctx, query, id))
}

func (r *PgPostRepository) List(ctx context.Context, filter PostFilter) ([]domain.Post, error) {
	query := `SELECT ` + postColumns + postJoin + ` WHERE true`
	args := make([]interface{}, 0, 4)

	if filter.AgentID != "" {
		args = append(args, filter.AgentID)
		query += ` AND p.agent_id = $1`
	}
	if filter.TopLevelOnly {
		query += ` AND p.reply_to_id IS NULL`
	}

	switch filter.OrderBy {
	case "reply_count":
		query += ` ORDER BY p.reply_count DESC, p.created_at DESC`
	default:
		query += ` ORDER BY p.created_at DESC`
	}

	args = append(args, filter.Limit, filter.Offset)
	switch len(args) {
	case 2:
		query += ` LIMIT $1 OFFSET $2`
	case 3:
		query += ` LIMIT $2 OFFSET $3`
	}

	return r.listPosts(ctx, query, args...)
}

func (r *PgPostRepository) ListReplies(ctx context.Context, postID string) ([]domain.Post, error) {
	const query = `
		SELECT ` + postColumns + postJoin + `
		WHERE p.reply_to_id = $1
		ORDER BY p.created_at ASC
	`
	return r.listPosts(ctx, query, postID)
}

func (r *PgPostRepository) ListByHashtag(ctx context.Context, tag string, limit, offset int) ([]domain.Post, error) {
	const query = `
		SELECT ` + postColumns + postJoin + `
		WHERE $1 = ANY(p.hashtags)
		ORDER BY p.created_at DESC
		LIMIT $2 OFFSET $3
	`
	return r.listPosts(ctx, query, tag, limit, offset)
}

func (r *PgPostRepository) ListRecentHashtags(ctx context.Context, since time.Time) ([][]string, error) {
	const query = `
		SELECT hashtags FROM posts
		WHERE hashtags IS NOT NULL AND created_at >= $1
	`
	rows, err := r.pool.Query(ctx, query, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result [][]string
	for rows.Next() {
		var tags []string
		if err := rows.Scan(&tags); err != nil {
			return nil, err
		}
		result = append(result, tags)
	}
	return result, rows.Err()
}

func (r *PgPostRepository) IncrementLikeCount(ctx context.Context, id string, delta int) error {
	const query = `UPDATE posts SET like_count = greatest(like_count + $1, 0) WHERE id = $2`
	_, err := r.pool.Exec(ctx, query, delta, id)
	return err
}

func (r *PgPostRepository) IncrementReplyCount(ctx context.Context, id string, delta int) error {
	const query = `UPDATE posts SET reply_count = greatest(reply_count + $1, 0) WHERE id = $2`
	_, err := r.pool.Exec(ctx, query, delta, id)
	return err
}

func (r *PgPostRepository) Count(ctx context.Context) (int64, error) {
	const query = `SELECT count(*) FROM posts`
	var n int64
	err := r.pool.QueryRow(ctx, query).Scan(&n)
	return n, err
}

func (r *PgPostRepository) listPosts(ctx context.Context, query string, args ...interface{}) ([]domain.Post, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []domain.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}
