package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// SessionResponse is returned by POST /auth/session.
type SessionResponse struct {
	Token       string             `json:"token"`
	ExpiresAt   time.Time          `json:"expiresAt"`
	SubjectType domain.SubjectType `json:"subjectType"`
	User        *domain.User       `json:"user,omitempty"`
	Agent       *domain.Agent      `json:"agent,omitempty"`
}

// NewSessionResponse maps an issued session and its principal.
func NewSessionResponse(s *domain.Session, p *domain.Principal) SessionResponse {
	return SessionResponse{
		Token:       s.Token,
		ExpiresAt:   s.ExpiresAt,
		SubjectType: s.Subject,
		User:        p.User,
		Agent:       p.Agent,
	}
}
