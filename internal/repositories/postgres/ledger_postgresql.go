package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Chodo25/FaradayCoins/internal/models"
	"github.com/Chodo25/FaradayCoins/internal/repositories"
)

type balanceRepository struct {
	db *gorm.DB
}

func NewBalanceRepository(db *gorm.DB) repositories.BalanceRepository {
	return &balanceRepository{db: db}
}

func (r *balanceRepository) GetByUserID(ctx context.Context, userID string) (*models.Balance, error) {
	var balance models.Balance
	if err := r.db.WithContext(ctx).
		First(&balance, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}
	return &balance, nil
}

// GetCoins returns the current coin count, defaulting to 0 when the row
// is absent.
func (r *balanceRepository) GetCoins(ctx context.Context, userID string) (int, error) {
	balance, err := r.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return balance.Coins, nil
}

func (r *balanceRepository) Create(ctx context.Context, balance *models.Balance) error {
	if err := r.db.WithContext(ctx).Create(balance).Error; err != nil {
		return fmt.Errorf("failed to create balance: %w", err)
	}
	return nil
}

// AddCoins adjusts a balance atomically in SQL. The delta may be
// negative; the non-negative invariant is validated by the caller first
// and re-checked here with a guard clause in the WHERE.
func (r *balanceRepository) AddCoins(ctx context.Context, userID string, delta int) error {
	query := r.db.WithContext(ctx).
		Model(&models.Balance{}).
		Where("user_id = ?", userID)
	if delta < 0 {
		query = query.Where("coins >= ?", -delta)
	}

	result := query.Update("coins", gorm.Expr("coins + ?", delta))
	if result.Error != nil {
		return fmt.Errorf("failed to adjust balance: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (r *balanceRepository) DeleteByUserID(ctx context.Context, userID string) error {
	if err := r.db.WithContext(ctx).
		Delete(&models.Balance{}, "user_id = ?", userID).Error; err != nil {
		return fmt.Errorf("failed to delete balance: %w", err)
	}
	return nil
}

type transactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) repositories.TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	if err := r.db.WithContext(ctx).Create(tx).Error; err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

func (r *transactionRepository) ListByUser(ctx context.Context, userID string, filters repositories.TransactionFilters) ([]*models.Transaction, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("user_id = ?", userID)

	if filters.Type != nil {
		query = query.Where("transaction_type = ?", *filters.Type)
	}
	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("created_at < ?", *filters.DateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit).Offset(filters.Offset)
	}

	var transactions []*models.Transaction
	if err := query.Order("created_at DESC").Find(&transactions).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list transactions: %w", err)
	}

	return transactions, total, nil
}

func (r *transactionRepository) DeleteByUserID(ctx context.Context, userID string) error {
	if err := r.db.WithContext(ctx).
		Delete(&models.Transaction{}, "user_id = ?", userID).Error; err != nil {
		return fmt.Errorf("failed to delete transactions: %w", err)
	}
	return nil
}
