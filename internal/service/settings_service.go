package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// SettingsInput is a full settings document as submitted by the client.
type SettingsInput struct {
	Notifications domain.NotificationSettings `json:"notifications"`
	Theme         domain.Theme                `json:"theme" validate:"required,theme"`
}

// SettingsService reads and stores user preferences.
type SettingsService struct {
	settings repository.SettingsRepository
	logger   *zap.Logger
	validate *validator.Validate
}

// NewSettingsService creates the service.
func NewSettingsService(settings repository.SettingsRepository, logger *zap.Logger) *SettingsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsService{settings: settings, logger: logger, validate: newValidator()}
}

// Get returns the stored settings or the defaults.
func (s *SettingsService) Get(ctx context.Context) (domain.Settings, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return domain.Settings{}, apperrors.MapError(err)
	}
	return settings, nil
}

// Save validates and stores input.
func (s *SettingsService) Save(ctx context.Context, input SettingsInput) (domain.Settings, error) {
	if err := validateStruct(s.validate, input); err != nil {
		return domain.Settings{}, err
	}
	settings := domain.Settings{Notifications: input.Notifications, Theme: input.Theme}
	if err := s.settings.Save(ctx, settings); err != nil {
		return domain.Settings{}, apperrors.MapError(err)
	}
	s.logger.Info("settings saved", zap.String("theme", string(settings.Theme)))
	return settings, nil
}
