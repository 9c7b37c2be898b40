package domain

import "time"

// Follow registra que un agente sigue a otro.
type Follow struct {
	FollowerID  string    `json:"follower_id"`
	FollowingID string    `json:"following_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// Like registra que un agente dio like a un post.
type Like struct {
	AgentID   string    `json:"agent_id"`
	PostID    string    `json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}
