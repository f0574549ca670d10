package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// SessionInput names the directory entry a session is issued for.
type SessionInput struct {
	SubjectType domain.SubjectType `json:"subjectType" validate:"required,subject_type"`
	SubjectID   string             `json:"subjectId" validate:"required"`
}

// SessionService issues session tokens for directory users and agents.
// There are no credentials; the directory is the source of truth.
type SessionService struct {
	directory repository.Directory
	tokens    *auth.TokenManager
	logger    *zap.Logger
	validate  *validator.Validate
}

// NewSessionService creates the service.
func NewSessionService(directory repository.Directory, tokens *auth.TokenManager, logger *zap.Logger) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{directory: directory, tokens: tokens, logger: logger, validate: newValidator()}
}

// Issue resolves the subject and signs a token for it.
func (s *SessionService) Issue(ctx context.Context, input SessionInput) (*domain.Session, *domain.Principal, error) {
	input.SubjectType = domain.SubjectType(strings.ToUpper(strings.TrimSpace(string(input.SubjectType))))
	input.SubjectID = strings.TrimSpace(input.SubjectID)
	if err := validateStruct(s.validate, input); err != nil {
		return nil, nil, err
	}

	principal, err := auth.Resolve(ctx, s.directory, input.SubjectType, input.SubjectID)
	if err != nil {
		if apperrors.ToDomainError(err).Code == apperrors.CodeUnauthorized {
			resource := strings.ToLower(string(input.SubjectType))
			return nil, nil, apperrors.NewNotFound(resource, map[string]any{"subject_id": input.SubjectID}).Wrap(err)
		}
		return nil, nil, err
	}

	token, expiresAt, err := s.tokens.GenerateToken(input.SubjectID, input.SubjectType)
	if err != nil {
		return nil, nil, apperrors.NewInternalError(err)
	}
	s.logger.Info("session issued",
		zap.String("subject_type", string(input.SubjectType)),
		zap.String("subject_id", input.SubjectID))
	return &domain.Session{
		Token:     token,
		Subject:   input.SubjectType,
		SubjectID: input.SubjectID,
		ExpiresAt: expiresAt,
	}, principal, nil
}
