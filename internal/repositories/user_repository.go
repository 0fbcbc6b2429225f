package repositories

import (
	"context"

	"github.com/Chodo25/FaradayCoins/internal/models"
)

// UserRepository covers the application-side user rows. The rows mirror
// identity-provider accounts; creation goes through the provisioning
// workflow, never directly through handlers.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, filters UserFilters) ([]*models.User, int64, error)

	Create(ctx context.Context, user *models.User) error
	UpdateRole(ctx context.Context, id string, role models.UserRole) error
	UpdateCourse(ctx context.Context, id string, courseID *uint) error
	Delete(ctx context.Context, id string) error

	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ClearCourse(ctx context.Context, courseID uint) error
}

type BalanceRepository interface {
	// GetByUserID returns ErrNotFound when no row exists; callers that
	// want the zero-default use GetCoins.
	GetByUserID(ctx context.Context, userID string) (*models.Balance, error)
	GetCoins(ctx context.Context, userID string) (int, error)

	Create(ctx context.Context, balance *models.Balance) error
	AddCoins(ctx context.Context, userID string, delta int) error
	DeleteByUserID(ctx context.Context, userID string) error
}

type TransactionRepository interface {
	Create(ctx context.Context, tx *models.Transaction) error
	ListByUser(ctx context.Context, userID string, filters TransactionFilters) ([]*models.Transaction, int64, error)
	DeleteByUserID(ctx context.Context, userID string) error
}

type CourseRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Course, error)
	GetByName(ctx context.Context, name string) (*models.Course, error)
	List(ctx context.Context) ([]*models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id uint) error
}

type RewardRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Reward, error)
	List(ctx context.Context, activeOnly bool) ([]*models.Reward, error)
	Create(ctx context.Context, reward *models.Reward) error
	Update(ctx context.Context, reward *models.Reward) error
	Delete(ctx context.Context, id uint) error
}

type RedemptionRepository interface {
	GetByID(ctx context.Context, id uint) (*models.RewardRedemption, error)
	List(ctx context.Context, filters RedemptionFilters) ([]*models.RewardRedemption, int64, error)
	Create(ctx context.Context, redemption *models.RewardRedemption) error
	UpdateStatus(ctx context.Context, id uint, status models.RedemptionStatus, notes string) error
	DeleteByUserID(ctx context.Context, userID string) error
}

type SettingRepository interface {
	Get(ctx context.Context, key string) (*models.Setting, error)
	Upsert(ctx context.Context, setting *models.Setting) error
}

// ReportRepository backs the read-only ledger views.
type ReportRepository interface {
	StudentBalances(ctx context.Context, filter CourseFilter) ([]StudentBalance, error)
	TransactionsByMonth(ctx context.Context, filter CourseFilter) ([]MonthlyTransactionCount, error)
	RedemptionsByReward(ctx context.Context, filter CourseFilter) ([]RewardRedemptionCount, error)
	StudentActivities(ctx context.Context, filter CourseFilter) ([]StudentActivity, error)
}
