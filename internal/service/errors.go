package service

import (
	"errors"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// mapRepoError translates repository sentinels into domain errors.
func mapRepoError(err error, ticketID string) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, repository.ErrTicketNotFound):
		return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID}).Wrap(err)
	case errors.Is(err, repository.ErrArticleNotFound):
		return apperrors.NewNotFound("article", map[string]any{"article_id": ticketID}).Wrap(err)
	case errors.Is(err, repository.ErrUserNotFound):
		return apperrors.NewNotFound("user", map[string]any{"user_id": ticketID}).Wrap(err)
	case errors.Is(err, repository.ErrAgentNotFound):
		return apperrors.NewNotFound("agent", map[string]any{"agent_id": ticketID}).Wrap(err)
	case errors.Is(err, repository.ErrVersionConflict):
		return apperrors.NewConflict("ticket was modified concurrently", map[string]any{"ticket_id": ticketID}).Wrap(err)
	case errors.Is(err, repository.ErrDuplicateID):
		return apperrors.NewConflict("ticket id already exists", map[string]any{"ticket_id": ticketID}).Wrap(err)
	case errors.Is(err, domain.ErrInvalidPatch):
		return apperrors.NewValidationError(err.Error(), map[string]any{"ticket_id": ticketID}).Wrap(err)
	}
	return apperrors.MapError(err)
}
