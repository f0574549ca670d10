package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/storage"
)

// SettingsKey is the slot holding user preferences.
const SettingsKey = "helpdesk_settings"

// SettingsRepository persists user preferences.
type SettingsRepository interface {
	Get(ctx context.Context) (domain.Settings, error)
	Save(ctx context.Context, settings domain.Settings) error
}

type settingsRepository struct {
	kv     storage.KeyValue
	logger *zap.Logger
}

// NewSettingsRepository stores settings in one slot of kv.
func NewSettingsRepository(kv storage.KeyValue, logger *zap.Logger) SettingsRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &settingsRepository{kv: kv, logger: logger}
}

// Get returns stored settings, or the defaults when nothing usable is stored.
func (r *settingsRepository) Get(ctx context.Context) (domain.Settings, error) {
	raw, err := r.kv.Get(ctx, SettingsKey)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return domain.DefaultSettings(), nil
	case errors.Is(err, storage.ErrUnavailable):
		r.logger.Debug("settings slot unavailable, using defaults", zap.Error(err))
		return domain.DefaultSettings(), nil
	case err != nil:
		return domain.Settings{}, fmt.Errorf("read settings: %w", err)
	}

	settings := domain.DefaultSettings()
	if err := json.Unmarshal(raw, &settings); err != nil {
		r.logger.Warn("settings slot is corrupt, using defaults", zap.Error(err))
		return domain.DefaultSettings(), nil
	}
	if !settings.Theme.Valid() {
		settings.Theme = domain.ThemeSystem
	}
	return settings, nil
}

func (r *settingsRepository) Save(ctx context.Context, settings domain.Settings) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := r.kv.Put(ctx, SettingsKey, raw); err != nil {
		if errors.Is(err, storage.ErrUnavailable) {
			r.logger.Debug("settings slot unavailable, write dropped", zap.Error(err))
			return nil
		}
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}
