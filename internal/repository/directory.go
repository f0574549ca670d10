package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

var (
	// ErrUserNotFound is returned for an unknown user id.
	ErrUserNotFound = errors.New("user not found")
	// ErrAgentNotFound is returned for an unknown agent id.
	ErrAgentNotFound = errors.New("agent not found")
)

// Directory resolves employees and IT agents.
type Directory interface {
	Users(ctx context.Context) ([]domain.User, error)
	Agents(ctx context.Context) ([]domain.Agent, error)
	User(ctx context.Context, id string) (*domain.User, error)
	Agent(ctx context.Context, id string) (*domain.Agent, error)
}

type directory struct {
	users  []domain.User
	agents []domain.Agent
}

// NewDirectory serves a fixed set of users and agents.
func NewDirectory(users []domain.User, agents []domain.Agent) Directory {
	d := &directory{
		users:  append([]domain.User(nil), users...),
		agents: make([]domain.Agent, len(agents)),
	}
	for i, a := range agents {
		a.Specialization = append([]string(nil), a.Specialization...)
		d.agents[i] = a
	}
	return d
}

func (d *directory) Users(context.Context) ([]domain.User, error) {
	return append([]domain.User(nil), d.users...), nil
}

func (d *directory) Agents(context.Context) ([]domain.Agent, error) {
	out := make([]domain.Agent, len(d.agents))
	for i, a := range d.agents {
		a.Specialization = append([]string(nil), a.Specialization...)
		out[i] = a
	}
	return out, nil
}

func (d *directory) User(_ context.Context, id string) (*domain.User, error) {
	for _, u := range d.users {
		if u.ID == id {
			u := u
			return &u, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUserNotFound, id)
}

func (d *directory) Agent(_ context.Context, id string) (*domain.Agent, error) {
	for _, a := range d.agents {
		if a.ID == id {
			a.Specialization = append([]string(nil), a.Specialization...)
			return &a, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrAgentNotFound, id)
}
