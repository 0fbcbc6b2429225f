package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Chodo25/FaradayCoins/internal/config"
	"github.com/Chodo25/FaradayCoins/internal/events"
	"github.com/Chodo25/FaradayCoins/internal/models"
	"github.com/Chodo25/FaradayCoins/internal/repositories"
	"github.com/Chodo25/FaradayCoins/internal/validator"
)

type provisioningService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
	admin     config.AdminConfig
}

func NewProvisioningService(repo repositories.Repository, logger *slog.Logger, v *validator.Validator, publisher events.EventPublisher, admin config.AdminConfig) ProvisioningService {
	return &provisioningService{
		repo:      repo,
		logger:    logger,
		validator: v,
		publisher: publisher,
		admin:     admin,
	}
}

// defaultFullName derives a display name from the email local part when
// none was provided.
func defaultFullName(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}

// ===== RECONCILIATION =====

// Reconcile reports which of the two stores hold the given email: the
// identity provider account and the users row.
func (s *provisioningService) Reconcile(ctx context.Context, email string) (*ReconcileResult, error) {
	result := &ReconcileResult{}

	account, err := s.repo.Identity().GetAccountByEmail(ctx, email)
	if err != nil && !errors.Is(err, repositories.ErrAccountNotFound) {
		return nil, fmt.Errorf("failed to check identity account: %w", err)
	}
	if account != nil {
		result.AccountID = account.ID
	}

	user, err := s.repo.User().GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to check user row: %w", err)
	}
	if user != nil {
		result.UserID = user.ID
	}

	switch {
	case account != nil && user != nil:
		result.Outcome = ReconcileBothExist
	case account != nil:
		result.Outcome = ReconcileOnlyIdentity
	case user != nil:
		result.Outcome = ReconcileOnlyRow
	default:
		result.Outcome = ReconcileNeither
	}

	return result, nil
}

// EnsureUser guarantees a users row (and zeroed balance) exists for an
// authenticated account. Called after login when the account side is
// known good.
func (s *provisioningService) EnsureUser(ctx context.Context, accountID, email string) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, accountID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	user = &models.User{
		ID:       accountID,
		Email:    email,
		FullName: defaultFullName(email),
		Role:     models.RoleStudent,
	}

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.User().Create(ctx, user); err != nil {
			return fmt.Errorf("failed to create user row: %w", err)
		}
		if err := txRepo.Balance().Create(ctx, &models.Balance{UserID: accountID, Coins: 0}); err != nil {
			return fmt.Errorf("failed to create balance: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("backfilled user row for existing account",
		"user_id", accountID, "email", email)

	s.publishUserEvent(ctx, events.EventUserProvisioned, user)

	return user, nil
}

// ===== USER CREATION SAGA =====

// CreateUser provisions both stores: the identity account first, then
// the users row and balance in one transaction. A failed transaction
// compensates by deleting the account again.
func (s *provisioningService) CreateUser(ctx context.Context, req *CreateUserRequest, createdBy string) (*UserResponse, error) {
	if verrs := s.validator.Validate(req); verrs.HasErrors() {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, verrs.Error())
	}

	role := models.RoleStudent
	if req.Role != "" {
		role = models.UserRole(req.Role)
	}
	fullName := req.FullName
	if fullName == "" {
		fullName = defaultFullName(req.Email)
	}

	if req.CourseID != nil {
		if _, err := s.repo.Course().GetByID(ctx, *req.CourseID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, ErrCourseNotFound
			}
			return nil, fmt.Errorf("failed to check course: %w", err)
		}
	}

	recon, err := s.Reconcile(ctx, req.Email)
	if err != nil {
		return nil, err
	}

	var accountID string
	createdAccount := false

	switch recon.Outcome {
	case ReconcileBothExist:
		return nil, ErrDuplicateEmail
	case ReconcileOnlyRow:
		// Row without an account cannot be adopted under a fresh ID
		return nil, fmt.Errorf("%w: user row exists without identity account", ErrConflict)
	case ReconcileOnlyIdentity:
		// Adopt the orphaned account and create the missing row
		accountID = recon.AccountID
	case ReconcileNeither:
		account, err := s.repo.Identity().CreateAccount(ctx, repositories.NewAccount{
			Email:    req.Email,
			Password: req.Password,
			Name:     fullName,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create identity account: %w", err)
		}
		accountID = account.ID
		createdAccount = true
	}

	user := &models.User{
		ID:       accountID,
		Email:    req.Email,
		FullName: fullName,
		Role:     role,
		CourseID: req.CourseID,
	}

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.User().Create(ctx, user); err != nil {
			return fmt.Errorf("failed to create user row: %w", err)
		}
		if err := txRepo.Balance().Create(ctx, &models.Balance{UserID: accountID, Coins: 0}); err != nil {
			return fmt.Errorf("failed to create balance: %w", err)
		}
		return nil
	})
	if err != nil {
		if createdAccount {
			if delErr := s.repo.Identity().DeleteAccount(ctx, accountID); delErr != nil {
				s.logger.Error("compensation failed, orphaned identity account",
					"account_id", accountID, "error", delErr)
			}
		}
		return nil, err
	}

	s.logger.Info("user provisioned",
		"user_id", accountID,
		"email", req.Email,
		"role", role,
		"created_by", createdBy)

	s.publishUserEvent(ctx, events.EventUserProvisioned, user)

	return &UserResponse{User: user, Coins: 0}, nil
}

// ===== BOOTSTRAP OPERATIONS =====

// SetupAdmin provisions the configured administrator account. Safe to
// call repeatedly.
func (s *provisioningService) SetupAdmin(ctx context.Context) (*SetupResult, error) {
	if s.admin.Email == "" || s.admin.Password == "" {
		return nil, fmt.Errorf("%w: admin credentials not configured", ErrBadRequest)
	}

	recon, err := s.Reconcile(ctx, s.admin.Email)
	if err != nil {
		return nil, err
	}

	if recon.Outcome == ReconcileBothExist {
		user, err := s.repo.User().GetByEmail(ctx, s.admin.Email)
		if err != nil {
			return nil, fmt.Errorf("failed to load admin user: %w", err)
		}
		if user.Role != models.RoleAdmin {
			if err := s.repo.User().UpdateRole(ctx, user.ID, models.RoleAdmin); err != nil {
				return nil, fmt.Errorf("failed to promote admin: %w", err)
			}
		}
		return &SetupResult{
			UserID:  user.ID,
			Email:   s.admin.Email,
			Created: false,
			Message: "admin account already provisioned",
		}, nil
	}

	created, err := s.CreateUser(ctx, &CreateUserRequest{
		Email:    s.admin.Email,
		Password: s.admin.Password,
		FullName: s.admin.FullName,
		Role:     string(models.RoleAdmin),
	}, "system")
	if err != nil {
		return nil, err
	}

	return &SetupResult{
		UserID:  created.ID,
		Email:   s.admin.Email,
		Created: true,
		Message: "admin account provisioned",
	}, nil
}

// PromoteTeacher grants the teacher role to the configured teacher
// email. The user must already exist.
func (s *provisioningService) PromoteTeacher(ctx context.Context) (*SetupResult, error) {
	if s.admin.TeacherEmail == "" {
		return nil, fmt.Errorf("%w: teacher email not configured", ErrBadRequest)
	}

	user, err := s.repo.User().GetByEmail(ctx, s.admin.TeacherEmail)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load teacher user: %w", err)
	}

	if user.Role == models.RoleTeacher {
		return &SetupResult{
			UserID:  user.ID,
			Email:   user.Email,
			Created: false,
			Message: "user already has teacher role",
		}, nil
	}

	if err := s.repo.User().UpdateRole(ctx, user.ID, models.RoleTeacher); err != nil {
		return nil, fmt.Errorf("failed to update role: %w", err)
	}

	s.logger.Info("user promoted to teacher", "user_id", user.ID, "email", user.Email)

	return &SetupResult{
		UserID:  user.ID,
		Email:   user.Email,
		Created: false,
		Message: "teacher role granted",
	}, nil
}

func (s *provisioningService) publishUserEvent(ctx context.Context, eventType string, user *models.User) {
	if s.publisher == nil {
		return
	}
	event := &events.Event{
		Type: eventType,
		Data: events.UserEvent{
			UserID: user.ID,
			Email:  user.Email,
			Role:   string(user.Role),
		},
	}
	if err := s.publisher.Publish(ctx, events.TopicUsers, event); err != nil {
		s.logger.Warn("failed to publish user event", "error", err)
	}
}
