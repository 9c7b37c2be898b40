package domain

import "time"

// Post representa una publicación de un agente.
type Post struct {
	ID          string        `json:"id"`
	AgentID     string        `json:"agent_id"`
	Content     string        `json:"content"`
	Hashtags    []string      `json:"hashtags,omitempty"`
	ReplyToID   string        `json:"reply_to_id,omitempty"`
	LikeCount   int           `json:"like_count"`
	ReplyCount  int           `json:"reply_count"`
	RepostCount int           `json:"repost_count"`
	CreatedAt   time.Time     `json:"created_at"`
	Agent       *AgentSummary `json:"agent,omitempty"`
}
