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

type userService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
}

func NewUserService(repo repositories.Repository, logger *slog.Logger, v *validator.Validator, publisher events.EventPublisher) UserService {
	return &userService{
		repo:      repo,
		logger:    logger,
		validator: v,
		publisher: publisher,
	}
}

func (s *userService) GetByID(ctx context.Context, id string) (*UserResponse, error) {
	user, err := s.repo.User().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	coins, err := s.repo.Balance().GetCoins(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}

	return &UserResponse{User: user, Coins: coins}, nil
}

func (s *userService) GetByEmail(ctx context.Context, email string) (*UserResponse, error) {
	user, err := s.repo.User().GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	coins, err := s.repo.Balance().GetCoins(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}

	return &UserResponse{User: user, Coins: coins}, nil
}

func (s *userService) List(ctx context.Context, filters repositories.UserFilters) (*UserListResponse, error) {
	if filters.Limit <= 0 {
		filters.Limit = 20
	}
	if filters.Limit > 100 {
		filters.Limit = 100
	}

	users, total, err := s.repo.User().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	responses := make([]*UserResponse, 0, len(users))
	for _, user := range users {
		coins, err := s.repo.Balance().GetCoins(ctx, user.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to get balance for %s: %w", user.ID, err)
		}
		responses = append(responses, &UserResponse{User: user, Coins: coins})
	}

	page := 1
	if filters.Limit > 0 {
		page = (filters.Offset / filters.Limit) + 1
	}

	return &UserListResponse{
		Users: responses,
		Total: total,
		Page:  page,
		Size:  filters.Limit,
	}, nil
}

func (s *userService) UpdateRole(ctx context.Context, id string, req *UpdateRoleRequest, actorID string) error {
	if verrs := s.validator.Validate(req); verrs.HasErrors() {
		return fmt.Errorf("%w: %s", ErrValidationFailed, verrs.Error())
	}

	// An admin demoting themselves would lock the console
	if id == actorID && models.UserRole(req.Role) != models.RoleAdmin {
		return fmt.Errorf("%w: cannot change own role", ErrForbidden)
	}

	if err := s.repo.User().UpdateRole(ctx, id, models.UserRole(req.Role)); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to update role: %w", err)
	}

	s.logger.Info("user role updated", "user_id", id, "role", req.Role, "actor", actorID)
	return nil
}

func (s *userService) UpdateCourse(ctx context.Context, id string, req *UpdateCourseRequest) error {
	if verrs := s.validator.Validate(req); verrs.HasErrors() {
		return fmt.Errorf("%w: %s", ErrValidationFailed, verrs.Error())
	}

	if req.CourseID != nil {
		if _, err := s.repo.Course().GetByID(ctx, *req.CourseID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrCourseNotFound
			}
			return fmt.Errorf("failed to check course: %w", err)
		}
	}

	if err := s.repo.User().UpdateCourse(ctx, id, req.CourseID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to update course: %w", err)
	}

	return nil
}

// Delete removes all of a user's data, then the row, then the identity
// account. Ledger rows go first so a partial failure never leaves a
// balance without its owner.
func (s *userService) Delete(ctx context.Context, id string, actorID string) error {
	if id == actorID {
		return ErrSelfDeletion
	}

	user, err := s.repo.User().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Balance().DeleteByUserID(ctx, id); err != nil {
			return err
		}
		if err := txRepo.Transaction().DeleteByUserID(ctx, id); err != nil {
			return err
		}
		if err := txRepo.Redemption().DeleteByUserID(ctx, id); err != nil {
			return err
		}
		if err := txRepo.User().Delete(ctx, id); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete user data: %w", err)
	}

	// The account is removed last; if this fails the row is already
	// gone and a later reconcile run can finish the cleanup.
	if err := s.repo.Identity().DeleteAccount(ctx, id); err != nil &&
		!errors.Is(err, repositories.ErrAccountNotFound) {
		s.logger.Error("user row deleted but identity account removal failed",
			"user_id", id, "error", err)
		return fmt.Errorf("failed to delete identity account: %w", err)
	}

	s.logger.Info("user deleted", "user_id", id, "email", user.Email, "actor", actorID)

	if s.publisher != nil {
		event := &events.Event{
			Type: events.EventUserDeleted,
			Data: events.UserEvent{UserID: id, Email: user.Email, Role: string(user.Role)},
		}
		if err := s.publisher.Publish(ctx, events.TopicUsers, event); err != nil {
			s.logger.Warn("failed to publish user event", "error", err)
		}
	}

	return nil
}
