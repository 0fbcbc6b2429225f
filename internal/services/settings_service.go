package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/datatypes"

	"github.com/Chodo25/FaradayCoins/internal/models"
	"github.com/Chodo25/FaradayCoins/internal/repositories"
	"github.com/Chodo25/FaradayCoins/internal/validator"
)

type settingsService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewSettingsService(repo repositories.Repository, logger *slog.Logger, v *validator.Validator) SettingsService {
	return &settingsService{
		repo:      repo,
		logger:    logger,
		validator: v,
	}
}

// GetEmailSettings reads the stored email confirmation policy,
// defaulting to confirmation required when no row exists yet.
func (s *settingsService) GetEmailSettings(ctx context.Context) (*EmailSettings, error) {
	setting, err := s.repo.Setting().Get(ctx, models.SettingEmailConfirmation)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return &EmailSettings{RequireConfirmation: true}, nil
		}
		return nil, fmt.Errorf("failed to get email settings: %w", err)
	}

	var settings EmailSettings
	if err := json.Unmarshal(setting.Value, &settings); err != nil {
		return nil, fmt.Errorf("failed to decode email settings: %w", err)
	}
	return &settings, nil
}

func (s *settingsService) UpdateEmailSettings(ctx context.Context, req *EmailSettingsRequest) (*EmailSettings, error) {
	if verrs := s.validator.Validate(req); verrs.HasErrors() {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, verrs.Error())
	}

	settings := &EmailSettings{RequireConfirmation: *req.RequireConfirmation}
	value, err := json.Marshal(settings)
	if err != nil {
		return nil, fmt.Errorf("failed to encode email settings: %w", err)
	}

	if err := s.repo.Setting().Upsert(ctx, &models.Setting{
		Key:   models.SettingEmailConfirmation,
		Value: datatypes.JSON(value),
	}); err != nil {
		return nil, fmt.Errorf("failed to save email settings: %w", err)
	}

	s.logger.Info("email settings updated",
		"require_confirmation", settings.RequireConfirmation)

	return settings, nil
}
