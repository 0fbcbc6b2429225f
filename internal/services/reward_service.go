package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Chodo25/FaradayCoins/internal/events"
	"github.com/Chodo25/FaradayCoins/internal/models"
	"github.com/Chodo25/FaradayCoins/internal/repositories"
	"github.com/Chodo25/FaradayCoins/internal/validator"
)

type rewardService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
}

func NewRewardService(repo repositories.Repository, logger *slog.Logger, v *validator.Validator, publisher events.EventPublisher) RewardService {
	return &rewardService{
		repo:      repo,
		logger:    logger,
		validator: v,
		publisher: publisher,
	}
}

// ===== CATALOG =====

func (s *rewardService) List(ctx context.Context, activeOnly bool) ([]*models.Reward, error) {
	rewards, err := s.repo.Reward().List(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list rewards: %w", err)
	}
	return rewards, nil
}

func (s *rewardService) Create(ctx context.Context, req *RewardCreateRequest) (*models.Reward, error) {
	if verrs := s.validator.Validate(req); verrs.HasErrors() {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, verrs.Error())
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	reward := &models.Reward{
		Name:        req.Name,
		Description: req.Description,
		Cost:        req.Cost,
		Active:      active,
	}
	if err := s.repo.Reward().Create(ctx, reward); err != nil {
		return nil, fmt.Errorf("failed to create reward: %w", err)
	}

	s.logger.Info("reward created", "reward_id", reward.ID, "name", reward.Name, "cost", reward.Cost)
	return reward, nil
}

func (s *rewardService) Update(ctx context.Context, id uint, req *RewardUpdateRequest) (*models.Reward, error) {
	if verrs := s.validator.Validate(req); verrs.HasErrors() {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, verrs.Error())
	}

	existing, err := s.repo.Reward().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrRewardNotFound
		}
		return nil, fmt.Errorf("failed to get reward: %w", err)
	}

	active := existing.Active
	if req.Active != nil {
		active = *req.Active
	}

	reward := &models.Reward{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Cost:        req.Cost,
		Active:      active,
	}
	if err := s.repo.Reward().Update(ctx, reward); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrRewardNotFound
		}
		return nil, fmt.Errorf("failed to update reward: %w", err)
	}

	return s.repo.Reward().GetByID(ctx, id)
}

func (s *rewardService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Reward().Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrRewardNotFound
		}
		return fmt.Errorf("failed to delete reward: %w", err)
	}
	return nil
}

// ===== REDEMPTIONS =====

// Redeem debits the reward cost and opens a pending redemption in one
// transaction. The balance guard rejects redemptions the student cannot
// afford.
func (s *rewardService) Redeem(ctx context.Context, userID string, req *RedeemRequest) (*models.RewardRedemption, error) {
	if verrs := s.validator.Validate(req); verrs.HasErrors() {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, verrs.Error())
	}

	reward, err := s.repo.Reward().GetByID(ctx, req.RewardID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrRewardNotFound
		}
		return nil, fmt.Errorf("failed to get reward: %w", err)
	}
	if !reward.Active {
		return nil, ErrRewardInactive
	}

	redemption := &models.RewardRedemption{
		UserID:   userID,
		RewardID: reward.ID,
		Status:   models.RedemptionPending,
	}

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Balance().AddCoins(ctx, userID, -reward.Cost); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrInsufficientCoins
			}
			return err
		}
		if err := txRepo.Transaction().Create(ctx, &models.Transaction{
			UserID:      userID,
			Amount:      -reward.Cost,
			Description: fmt.Sprintf("Redeemed reward: %s", reward.Name),
			Type:        models.TransactionRedeem,
			CreatedBy:   &userID,
		}); err != nil {
			return err
		}
		return txRepo.Redemption().Create(ctx, redemption)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("reward redeemed",
		"user_id", userID, "reward_id", reward.ID, "cost", reward.Cost)

	s.publishRedemptionEvent(ctx, events.EventCoinsRedeemed, redemption, reward)

	redemption.Reward = reward
	return redemption, nil
}

func (s *rewardService) ListRedemptions(ctx context.Context, filters repositories.RedemptionFilters) (*RedemptionListResponse, error) {
	if filters.Limit <= 0 {
		filters.Limit = 20
	}
	if filters.Limit > 100 {
		filters.Limit = 100
	}

	redemptions, total, err := s.repo.Redemption().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list redemptions: %w", err)
	}

	page := (filters.Offset / filters.Limit) + 1

	return &RedemptionListResponse{
		Redemptions: redemptions,
		Total:       total,
		Page:        page,
		Size:        filters.Limit,
	}, nil
}

func (s *rewardService) Approve(ctx context.Context, id uint, req *ReviewRedemptionRequest, reviewerID string) error {
	redemption, err := s.pendingRedemption(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Redemption().UpdateStatus(ctx, id, models.RedemptionApproved, req.Notes); err != nil {
		return fmt.Errorf("failed to approve redemption: %w", err)
	}

	s.logger.Info("redemption approved",
		"redemption_id", id, "user_id", redemption.UserID, "reviewer", reviewerID)

	redemption.Status = models.RedemptionApproved
	s.publishRedemptionEvent(ctx, events.EventRedemptionApproved, redemption, redemption.Reward)
	return nil
}

// Reject closes the redemption and refunds the coins that were debited
// when it was opened.
func (s *rewardService) Reject(ctx context.Context, id uint, req *ReviewRedemptionRequest, reviewerID string) error {
	redemption, err := s.pendingRedemption(ctx, id)
	if err != nil {
		return err
	}

	reward := redemption.Reward
	if reward == nil {
		reward, err = s.repo.Reward().GetByID(ctx, redemption.RewardID)
		if err != nil {
			return fmt.Errorf("failed to get reward for refund: %w", err)
		}
	}

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Redemption().UpdateStatus(ctx, id, models.RedemptionRejected, req.Notes); err != nil {
			return err
		}
		if err := txRepo.Balance().AddCoins(ctx, redemption.UserID, reward.Cost); err != nil {
			return err
		}
		return txRepo.Transaction().Create(ctx, &models.Transaction{
			UserID:      redemption.UserID,
			Amount:      reward.Cost,
			Description: fmt.Sprintf("Refund for rejected redemption: %s", reward.Name),
			Type:        models.TransactionAdd,
			CreatedBy:   &reviewerID,
		})
	})
	if err != nil {
		return fmt.Errorf("failed to reject redemption: %w", err)
	}

	s.logger.Info("redemption rejected",
		"redemption_id", id, "user_id", redemption.UserID, "reviewer", reviewerID)

	redemption.Status = models.RedemptionRejected
	s.publishRedemptionEvent(ctx, events.EventRedemptionRejected, redemption, reward)
	return nil
}

func (s *rewardService) pendingRedemption(ctx context.Context, id uint) (*models.RewardRedemption, error) {
	redemption, err := s.repo.Redemption().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrRedemptionNotFound
		}
		return nil, fmt.Errorf("failed to get redemption: %w", err)
	}
	if redemption.Status != models.RedemptionPending {
		return nil, ErrRedemptionNotPending
	}
	return redemption, nil
}

func (s *rewardService) publishRedemptionEvent(ctx context.Context, eventType string, redemption *models.RewardRedemption, reward *models.Reward) {
	if s.publisher == nil {
		return
	}

	data := events.RedemptionEvent{
		RedemptionID: redemption.ID,
		UserID:       redemption.UserID,
		RewardID:     redemption.RewardID,
		Status:       string(redemption.Status),
	}
	if reward != nil {
		data.RewardName = reward.Name
		data.Cost = reward.Cost
	}

	event := &events.Event{Type: eventType, Data: data}
	if err := s.publisher.Publish(ctx, events.TopicRedemptions, event); err != nil {
		s.logger.Warn("failed to publish redemption event", "error", err)
	}
}
