package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Chodo25/FaradayCoins/internal/models"
	"github.com/Chodo25/FaradayCoins/internal/repositories"
	"github.com/Chodo25/FaradayCoins/internal/validator"
)

type courseService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewCourseService(repo repositories.Repository, logger *slog.Logger, v *validator.Validator) CourseService {
	return &courseService{
		repo:      repo,
		logger:    logger,
		validator: v,
	}
}

func (s *courseService) GetByID(ctx context.Context, id uint) (*models.Course, error) {
	course, err := s.repo.Course().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	return course, nil
}

func (s *courseService) List(ctx context.Context) ([]*models.Course, error) {
	courses, err := s.repo.Course().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	return courses, nil
}

func (s *courseService) Create(ctx context.Context, req *CourseCreateRequest, createdBy string) (*models.Course, error) {
	if verrs := s.validator.Validate(req); verrs.HasErrors() {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, verrs.Error())
	}

	if _, err := s.repo.Course().GetByName(ctx, req.Name); err == nil {
		return nil, ErrDuplicateCourseName
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to check course name: %w", err)
	}

	course := &models.Course{
		Name:        req.Name,
		Description: req.Description,
		CreatedBy:   createdBy,
	}
	if err := s.repo.Course().Create(ctx, course); err != nil {
		return nil, fmt.Errorf("failed to create course: %w", err)
	}

	s.logger.Info("course created", "course_id", course.ID, "name", course.Name)
	return course, nil
}

func (s *courseService) Update(ctx context.Context, id uint, req *CourseUpdateRequest) (*models.Course, error) {
	if verrs := s.validator.Validate(req); verrs.HasErrors() {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, verrs.Error())
	}

	if existing, err := s.repo.Course().GetByName(ctx, req.Name); err == nil && existing.ID != id {
		return nil, ErrDuplicateCourseName
	} else if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to check course name: %w", err)
	}

	course := &models.Course{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
	}
	if err := s.repo.Course().Update(ctx, course); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to update course: %w", err)
	}

	return s.GetByID(ctx, id)
}

// Delete removes a course; enrolled students are detached, not
// deleted.
func (s *courseService) Delete(ctx context.Context, id uint) error {
	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.User().ClearCourse(ctx, id); err != nil {
			return err
		}
		return txRepo.Course().Delete(ctx, id)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrCourseNotFound
		}
		return fmt.Errorf("failed to delete course: %w", err)
	}

	s.logger.Info("course deleted", "course_id", id)
	return nil
}
