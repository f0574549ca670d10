package domain

import "time"

// SubjectType differentiates users vs agents in session tokens.
type SubjectType string

const (
	SubjectTypeUser  SubjectType = "USER"
	SubjectTypeAgent SubjectType = "AGENT"
)

// Principal is the resolved caller of an operation.
type Principal struct {
	Type  SubjectType
	User  *User
	Agent *Agent
}

// Name returns the display name used as activity actor.
func (p *Principal) Name() string {
	switch {
	case p == nil:
		return ""
	case p.Agent != nil:
		return p.Agent.Name
	case p.User != nil:
		return p.User.Name
	}
	return ""
}

// IsAgent reports whether the caller is IT staff.
func (p *Principal) IsAgent() bool {
	return p != nil && p.Type == SubjectTypeAgent && p.Agent != nil
}

// Session represents an issued session token.
type Session struct {
	Token     string
	Subject   SubjectType
	SubjectID string
	ExpiresAt time.Time
}
