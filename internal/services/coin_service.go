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

type coinService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
}

func NewCoinService(repo repositories.Repository, logger *slog.Logger, v *validator.Validator, publisher events.EventPublisher) CoinService {
	return &coinService{
		repo:      repo,
		logger:    logger,
		validator: v,
		publisher: publisher,
	}
}

// Grant credits coins to a student and appends the matching ledger
// entry in one transaction.
func (s *coinService) Grant(ctx context.Context, req *GrantCoinsRequest, grantedBy string) (*BalanceResponse, error) {
	if verrs := s.validator.Validate(req); verrs.HasErrors() {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, verrs.Error())
	}

	if _, err := s.repo.User().GetByID(ctx, req.UserID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := s.adjustBalance(ctx, txRepo, req.UserID, req.Amount); err != nil {
			return err
		}
		return txRepo.Transaction().Create(ctx, &models.Transaction{
			UserID:      req.UserID,
			Amount:      req.Amount,
			Description: req.Description,
			Type:        models.TransactionAdd,
			CreatedBy:   &grantedBy,
		})
	})
	if err != nil {
		return nil, err
	}

	coins, err := s.repo.Balance().GetCoins(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to read balance: %w", err)
	}

	s.logger.Info("coins granted",
		"user_id", req.UserID, "amount", req.Amount, "granted_by", grantedBy)

	s.publishCoinEvent(ctx, events.EventCoinsGranted, req.UserID, req.Amount, coins, req.Description, grantedBy)

	return &BalanceResponse{UserID: req.UserID, Coins: coins}, nil
}

// Deduct debits coins. The balance guard in the repository rejects the
// update when it would go negative.
func (s *coinService) Deduct(ctx context.Context, req *DeductCoinsRequest, deductedBy string) (*BalanceResponse, error) {
	if verrs := s.validator.Validate(req); verrs.HasErrors() {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, verrs.Error())
	}

	if _, err := s.repo.User().GetByID(ctx, req.UserID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Balance().AddCoins(ctx, req.UserID, -req.Amount); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrInsufficientCoins
			}
			return err
		}
		return txRepo.Transaction().Create(ctx, &models.Transaction{
			UserID:      req.UserID,
			Amount:      -req.Amount,
			Description: req.Description,
			Type:        models.TransactionSubtract,
			CreatedBy:   &deductedBy,
		})
	})
	if err != nil {
		return nil, err
	}

	coins, err := s.repo.Balance().GetCoins(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to read balance: %w", err)
	}

	s.logger.Info("coins deducted",
		"user_id", req.UserID, "amount", req.Amount, "deducted_by", deductedBy)

	s.publishCoinEvent(ctx, events.EventCoinsDeducted, req.UserID, -req.Amount, coins, req.Description, deductedBy)

	return &BalanceResponse{UserID: req.UserID, Coins: coins}, nil
}

func (s *coinService) Balance(ctx context.Context, userID string) (*BalanceResponse, error) {
	coins, err := s.repo.Balance().GetCoins(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}
	return &BalanceResponse{UserID: userID, Coins: coins}, nil
}

func (s *coinService) History(ctx context.Context, userID string, filters repositories.TransactionFilters) (*TransactionListResponse, error) {
	if filters.Limit <= 0 {
		filters.Limit = 20
	}
	if filters.Limit > 100 {
		filters.Limit = 100
	}

	transactions, total, err := s.repo.Transaction().ListByUser(ctx, userID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	page := (filters.Offset / filters.Limit) + 1

	return &TransactionListResponse{
		Transactions: transactions,
		Total:        total,
		Page:         page,
		Size:         filters.Limit,
	}, nil
}

// adjustBalance credits coins, creating the balance row on first use.
func (s *coinService) adjustBalance(ctx context.Context, txRepo repositories.Repository, userID string, delta int) error {
	err := txRepo.Balance().AddCoins(ctx, userID, delta)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repositories.ErrNotFound) || delta < 0 {
		return err
	}
	return txRepo.Balance().Create(ctx, &models.Balance{UserID: userID, Coins: delta})
}

func (s *coinService) publishCoinEvent(ctx context.Context, eventType, userID string, amount, balance int, description, createdBy string) {
	if s.publisher == nil {
		return
	}
	event := &events.Event{
		Type: eventType,
		Data: events.CoinEvent{
			UserID:      userID,
			Amount:      amount,
			Balance:     balance,
			Description: description,
			CreatedBy:   createdBy,
		},
	}
	if err := s.publisher.Publish(ctx, events.TopicCoins, event); err != nil {
		s.logger.Warn("failed to publish coin event", "error", err)
	}
}
