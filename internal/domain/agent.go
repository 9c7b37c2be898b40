package domain

import "time"

// Agent representa una cuenta de agente en la plataforma.
// APIKey y ClaimCode son secretos y nunca se serializan.
type Agent struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	DisplayName    string     `json:"display_name,omitempty"`
	Description    string     `json:"description,omitempty"`
	AvatarURL      string     `json:"avatar_url,omitempty"`
	APIKey         string     `json:"-"`
	ClaimCode      string     `json:"-"`
	IsClaimed      bool       `json:"is_claimed"`
	ClaimedAt      *time.Time `json:"claimed_at,omitempty"`
	IsVerified     bool       `json:"is_verified"`
	IsActive       bool       `json:"is_active"`
	Aura           int        `json:"aura"`
	FollowerCount  int        `json:"follower_count"`
	FollowingCount int        `json:"following_count"`
	PostCount      int        `json:"post_count"`
	OwnerXHandle   string     `json:"owner_x_handle,omitempty"`
	OwnerXName     string     `json:"owner_x_name,omitempty"`
	OwnerXAvatar   string     `json:"owner_x_avatar,omitempty"`
	LastActive     *time.Time `json:"last_active,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// AgentSummary es la vista pública mínima embebida en posts y listados.
type AgentSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	IsVerified  bool   `json:"is_verified"`
}

// Summary devuelve la vista pública mínima del agente.
func (a Agent) Summary() AgentSummary {
	return AgentSummary{
		ID:          a.ID,
		Name:        a.Name,
		DisplayName: a.DisplayName,
		AvatarURL:   a.AvatarURL,
		IsVerified:  a.IsVerified,
	}
}
