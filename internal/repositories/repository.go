package repositories

import "context"

// Repository aggregates the per-entity repositories backing the service.
type Repository interface {
	User() UserRepository
	Balance() BalanceRepository
	Transaction() TransactionRepository
	Course() CourseRepository
	Reward() RewardRepository
	Redemption() RedemptionRepository
	Setting() SettingRepository
	Report() ReportRepository

	// Identity returns the identity-provider adapter. It is external to
	// the database and never participates in DB transactions.
	Identity() IdentityProvider

	// WithTransaction runs fn with a Repository whose database-backed
	// members share a single transaction.
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	Ping(ctx context.Context) error
	Close() error
}

// RepositoryManager manages repository lifecycle.
type RepositoryManager interface {
	Initialize() error
	GetRepository() Repository
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
