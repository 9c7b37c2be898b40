package domain

import "time"

// Estados posibles de una solicitud de verificación.
const (
	VerificationPending  = "pending"
	VerificationApproved = "approved"
	VerificationRejected = "rejected"
)

// VerificationRequest es una solicitud para vincular y verificar
// la identidad externa del dueño de un agente.
type VerificationRequest struct {
	ID              string     `json:"id"`
	AgentID         string     `json:"agent_id"`
	XHandle         string     `json:"x_handle"`
	Status          string     `json:"status"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`
}
