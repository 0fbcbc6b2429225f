package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Chodo25/FaradayCoins/internal/models"
	"github.com/Chodo25/FaradayCoins/internal/repositories"
)

type rewardRepository struct {
	db *gorm.DB
}

func NewRewardRepository(db *gorm.DB) repositories.RewardRepository {
	return &rewardRepository{db: db}
}

func (r *rewardRepository) GetByID(ctx context.Context, id uint) (*models.Reward, error) {
	var reward models.Reward
	if err := r.db.WithContext(ctx).First(&reward, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get reward: %w", err)
	}
	return &reward, nil
}

func (r *rewardRepository) List(ctx context.Context, activeOnly bool) ([]*models.Reward, error) {
	query := r.db.WithContext(ctx).Model(&models.Reward{})
	if activeOnly {
		query = query.Where("active = ?", true)
	}

	var rewards []*models.Reward
	if err := query.Order("cost").Find(&rewards).Error; err != nil {
		return nil, fmt.Errorf("failed to list rewards: %w", err)
	}
	return rewards, nil
}

func (r *rewardRepository) Create(ctx context.Context, reward *models.Reward) error {
	if err := r.db.WithContext(ctx).Create(reward).Error; err != nil {
		return fmt.Errorf("failed to create reward: %w", err)
	}
	return nil
}

func (r *rewardRepository) Update(ctx context.Context, reward *models.Reward) error {
	result := r.db.WithContext(ctx).
		Model(&models.Reward{}).
		Where("id = ?", reward.ID).
		Updates(map[string]interface{}{
			"name":        reward.Name,
			"description": reward.Description,
			"cost":        reward.Cost,
			"active":      reward.Active,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update reward: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (r *rewardRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Reward{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete reward: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

type redemptionRepository struct {
	db *gorm.DB
}

func NewRedemptionRepository(db *gorm.DB) repositories.RedemptionRepository {
	return &redemptionRepository{db: db}
}

func (r *redemptionRepository) GetByID(ctx context.Context, id uint) (*models.RewardRedemption, error) {
	var redemption models.RewardRedemption
	if err := r.db.WithContext(ctx).
		Preload("Reward").
		First(&redemption, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get redemption: %w", err)
	}
	return &redemption, nil
}

func (r *redemptionRepository) List(ctx context.Context, filters repositories.RedemptionFilters) ([]*models.RewardRedemption, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.RewardRedemption{})

	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}
	if filters.RewardID != nil {
		query = query.Where("reward_id = ?", *filters.RewardID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count redemptions: %w", err)
	}

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit).Offset(filters.Offset)
	}

	var redemptions []*models.RewardRedemption
	if err := query.
		Preload("Reward").
		Order("redeemed_at DESC").
		Find(&redemptions).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list redemptions: %w", err)
	}

	return redemptions, total, nil
}

func (r *redemptionRepository) Create(ctx context.Context, redemption *models.RewardRedemption) error {
	if err := r.db.WithContext(ctx).Create(redemption).Error; err != nil {
		return fmt.Errorf("failed to create redemption: %w", err)
	}
	return nil
}

func (r *redemptionRepository) UpdateStatus(ctx context.Context, id uint, status models.RedemptionStatus, notes string) error {
	result := r.db.WithContext(ctx).
		Model(&models.RewardRedemption{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status": status,
			"notes":  notes,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update redemption status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (r *redemptionRepository) DeleteByUserID(ctx context.Context, userID string) error {
	if err := r.db.WithContext(ctx).
		Delete(&models.RewardRedemption{}, "user_id = ?", userID).Error; err != nil {
		return fmt.Errorf("failed to delete redemptions: %w", err)
	}
	return nil
}
