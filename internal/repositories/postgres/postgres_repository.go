package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/Chodo25/FaradayCoins/internal/cache"
	"github.com/Chodo25/FaradayCoins/internal/repositories"
	"github.com/Chodo25/FaradayCoins/internal/repositories/casdoor"
)

// PostgreSQLRepository implements the main Repository interface
type PostgreSQLRepository struct {
	db          *gorm.DB
	redisClient *redis.Client
	cacheHelper *cache.CacheHelper

	// Repository instances
	user        repositories.UserRepository
	balance     repositories.BalanceRepository
	transaction repositories.TransactionRepository
	course      repositories.CourseRepository
	reward      repositories.RewardRepository
	redemption  repositories.RedemptionRepository
	setting     repositories.SettingRepository
	report      repositories.ReportRepository
	identity    repositories.IdentityProvider
}

// RepositoryConfig holds configuration for repository initialization
type RepositoryConfig struct {
	DB            *gorm.DB
	RedisClient   *redis.Client
	CasdoorConfig casdoor.CasdoorConfig
}

// NewPostgreSQLRepository creates a new repository manager with all sub-repositories
func NewPostgreSQLRepository(config RepositoryConfig) repositories.Repository {
	repo := &PostgreSQLRepository{
		db:          config.DB,
		redisClient: config.RedisClient,
		cacheHelper: cache.NewCacheHelper(config.RedisClient, "repo"),
	}

	repo.user = NewUserRepository(config.DB)
	repo.balance = NewBalanceRepository(config.DB)
	repo.transaction = NewTransactionRepository(config.DB)
	repo.course = NewCourseRepository(config.DB)
	repo.reward = NewRewardRepository(config.DB)
	repo.redemption = NewRedemptionRepository(config.DB)
	repo.setting = NewSettingRepository(config.DB)
	repo.report = NewReportRepository(config.DB)

	// Identity provider is external (Casdoor), backed by Redis caching
	repo.identity = casdoor.NewAccountCasdoor(config.CasdoorConfig, config.RedisClient)

	return repo
}

func (r *PostgreSQLRepository) User() repositories.UserRepository {
	return r.user
}

func (r *PostgreSQLRepository) Balance() repositories.BalanceRepository {
	return r.balance
}

func (r *PostgreSQLRepository) Transaction() repositories.TransactionRepository {
	return r.transaction
}

func (r *PostgreSQLRepository) Course() repositories.CourseRepository {
	return r.course
}

func (r *PostgreSQLRepository) Reward() repositories.RewardRepository {
	return r.reward
}

func (r *PostgreSQLRepository) Redemption() repositories.RedemptionRepository {
	return r.redemption
}

func (r *PostgreSQLRepository) Setting() repositories.SettingRepository {
	return r.setting
}

func (r *PostgreSQLRepository) Report() repositories.ReportRepository {
	return r.report
}

func (r *PostgreSQLRepository) Identity() repositories.IdentityProvider {
	return r.identity
}

// WithTransaction executes a function within a database transaction
func (r *PostgreSQLRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Create a new repository instance with the transaction
		txRepo := &PostgreSQLRepository{
			db:          tx,
			redisClient: r.redisClient,
			cacheHelper: r.cacheHelper,
		}

		txRepo.user = NewUserRepository(tx)
		txRepo.balance = NewBalanceRepository(tx)
		txRepo.transaction = NewTransactionRepository(tx)
		txRepo.course = NewCourseRepository(tx)
		txRepo.reward = NewRewardRepository(tx)
		txRepo.redemption = NewRedemptionRepository(tx)
		txRepo.setting = NewSettingRepository(tx)
		txRepo.report = NewReportRepository(tx)

		// Identity provider doesn't join transactions (it's external)
		txRepo.identity = r.identity

		return fn(txRepo)
	})
}

// Ping checks the health of database and cache connections
func (r *PostgreSQLRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	if r.redisClient != nil {
		if err := r.cacheHelper.HealthCheck(ctx); err != nil {
			return fmt.Errorf("cache ping failed: %w", err)
		}
	}

	return nil
}

// Close closes all connections
func (r *PostgreSQLRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	if r.redisClient != nil {
		if err := r.redisClient.Close(); err != nil {
			return fmt.Errorf("failed to close Redis: %w", err)
		}
	}

	return nil
}

// RepositoryManager implements the RepositoryManager interface
type RepositoryManager struct {
	config RepositoryConfig
	repo   repositories.Repository
}

// NewRepositoryManager creates a new repository manager
func NewRepositoryManager(config RepositoryConfig) repositories.RepositoryManager {
	return &RepositoryManager{
		config: config,
	}
}

// Initialize initializes all repositories and connections
func (rm *RepositoryManager) Initialize() error {
	if rm.config.DB == nil {
		return fmt.Errorf("database connection is required")
	}

	sqlDB, err := rm.config.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}

	if rm.config.RedisClient != nil {
		if _, err := rm.config.RedisClient.Ping(ctx).Result(); err != nil {
			return fmt.Errorf("Redis connection failed: %w", err)
		}
	}

	rm.repo = NewPostgreSQLRepository(rm.config)

	return nil
}

// GetRepository returns the repository instance
func (rm *RepositoryManager) GetRepository() repositories.Repository {
	return rm.repo
}

// HealthCheck checks the health of all repository connections
func (rm *RepositoryManager) HealthCheck(ctx context.Context) error {
	if rm.repo == nil {
		return fmt.Errorf("repository not initialized")
	}

	return rm.repo.Ping(ctx)
}

// Shutdown gracefully shuts down all repository connections
func (rm *RepositoryManager) Shutdown(ctx context.Context) error {
	if rm.repo == nil {
		return nil
	}

	return rm.repo.Close()
}
