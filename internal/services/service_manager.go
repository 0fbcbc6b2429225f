package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Chodo25/FaradayCoins/internal/config"
	"github.com/Chodo25/FaradayCoins/internal/events"
	"github.com/Chodo25/FaradayCoins/internal/repositories"
	"github.com/Chodo25/FaradayCoins/internal/validator"
)

// serviceManager implements ServiceManager
type serviceManager struct {
	// Dependencies
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
	admin     config.AdminConfig

	// Service instances
	provisioningService ProvisioningService
	userService         UserService
	coinService         CoinService
	courseService       CourseService
	rewardService       RewardService
	reportService       ReportService
	exportService       ExportService
	settingsService     SettingsService

	// Lifecycle management
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a service manager with all dependencies
func NewServiceManager(repo repositories.Repository, logger *slog.Logger, v *validator.Validator, publisher events.EventPublisher, admin config.AdminConfig) ServiceManager {
	return &serviceManager{
		repo:      repo,
		logger:    logger,
		validator: v,
		publisher: publisher,
		admin:     admin,
	}
}

// Initialize sets up all services
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.logger.Info("Initializing service manager")

	sm.provisioningService = NewProvisioningService(sm.repo, sm.logger, sm.validator, sm.publisher, sm.admin)
	sm.userService = NewUserService(sm.repo, sm.logger, sm.validator, sm.publisher)
	sm.coinService = NewCoinService(sm.repo, sm.logger, sm.validator, sm.publisher)
	sm.courseService = NewCourseService(sm.repo, sm.logger, sm.validator)
	sm.rewardService = NewRewardService(sm.repo, sm.logger, sm.validator, sm.publisher)
	sm.reportService = NewReportService(sm.repo, sm.logger)
	sm.exportService = NewExportService(sm.reportService, sm.logger)
	sm.settingsService = NewSettingsService(sm.repo, sm.logger, sm.validator)

	sm.initialized = true
	sm.logger.Info("Service manager initialized successfully")

	return nil
}

func (sm *serviceManager) mustBeInitialized() {
	if !sm.initialized {
		panic("service manager not initialized")
	}
}

func (sm *serviceManager) Provisioning() ProvisioningService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.provisioningService
}

func (sm *serviceManager) User() UserService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.userService
}

func (sm *serviceManager) Coin() CoinService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.coinService
}

func (sm *serviceManager) Course() CourseService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.courseService
}

func (sm *serviceManager) Reward() RewardService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.rewardService
}

func (sm *serviceManager) Report() ReportService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.reportService
}

func (sm *serviceManager) Export() ExportService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.exportService
}

func (sm *serviceManager) Settings() SettingsService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.settingsService
}

// HealthCheck verifies the backing repository is reachable
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}
	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	if err := sm.repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}

	return nil
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.logger.Info("Shutting down service manager")

	if sm.publisher != nil {
		if err := sm.publisher.Close(); err != nil {
			sm.logger.Error("Failed to close event publisher", "error", err)
		}
	}

	if err := sm.repo.Close(); err != nil {
		sm.logger.Error("Failed to close repository", "error", err)
	}

	sm.shutdown = true
	sm.logger.Info("Service manager shut down completed")

	return nil
}
