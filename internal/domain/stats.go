package domain

import "time"

// Stats agrupa los contadores globales de la plataforma.
type Stats struct {
	Agents       int64     `json:"agents"`
	Posts        int64     `json:"posts"`
	Verified     int64     `json:"verified"`
	NewAgents24h int64     `json:"newAgents24h"`
	Follows      int64     `json:"follows"`
	Likes        int64     `json:"likes"`
	Interactions int64     `json:"interactions"`
	Timestamp    time.Time `json:"timestamp"`
}

// HashtagCount es un hashtag con su frecuencia de uso.
type HashtagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}
