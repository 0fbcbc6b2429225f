package services

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/Chodo25/FaradayCoins/internal/events"
	"github.com/Chodo25/FaradayCoins/internal/models"
	"github.com/Chodo25/FaradayCoins/internal/repositories"
	"github.com/Chodo25/FaradayCoins/internal/validator"
)

func newUserFixture(repo *mockRepository) UserService {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	publisher := events.NewMockEventPublisher(logger)
	return NewUserService(repo, logger, validator.New(), publisher)
}

func TestUserService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("RemovesAllData", func(t *testing.T) {
		repo := newMockRepository()
		seedStudent(repo, "s-1", 40)
		repo.accounts["s-1"] = &repositories.Account{ID: "s-1", Email: "s-1@school.test"}
		repo.txs = append(repo.txs, &models.Transaction{UserID: "s-1", Amount: 40, Type: models.TransactionAdd})
		repo.redemptions[1] = &models.RewardRedemption{ID: 1, UserID: "s-1", RewardID: 1}
		svc := newUserFixture(repo)

		if err := svc.Delete(ctx, "s-1", "admin-1"); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}

		if _, ok := repo.users["s-1"]; ok {
			t.Error("user row still present")
		}
		if _, ok := repo.balances["s-1"]; ok {
			t.Error("balance still present")
		}
		if len(repo.txs) != 0 {
			t.Errorf("transactions still present: %d", len(repo.txs))
		}
		if len(repo.redemptions) != 0 {
			t.Errorf("redemptions still present: %d", len(repo.redemptions))
		}
		if _, ok := repo.accounts["s-1"]; ok {
			t.Error("identity account still present")
		}
	})

	t.Run("RejectsSelfDeletion", func(t *testing.T) {
		repo := newMockRepository()
		seedStudent(repo, "admin-1", 0)
		svc := newUserFixture(repo)

		if err := svc.Delete(ctx, "admin-1", "admin-1"); !errors.Is(err, ErrSelfDeletion) {
			t.Errorf("expected ErrSelfDeletion, got %v", err)
		}
	})

	t.Run("UnknownUser", func(t *testing.T) {
		repo := newMockRepository()
		svc := newUserFixture(repo)

		if err := svc.Delete(ctx, "missing", "admin-1"); !errors.Is(err, ErrUserNotFound) {
			t.Errorf("expected ErrUserNotFound, got %v", err)
		}
	})
}

func TestUserService_UpdateRole(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepository()
	seedStudent(repo, "s-1", 0)
	svc := newUserFixture(repo)

	if err := svc.UpdateRole(ctx, "s-1", &UpdateRoleRequest{Role: "teacher"}, "admin-1"); err != nil {
		t.Fatalf("UpdateRole failed: %v", err)
	}
	if repo.users["s-1"].Role != models.RoleTeacher {
		t.Errorf("expected teacher role, got %s", repo.users["s-1"].Role)
	}

	// Invalid role string rejected before hitting the store
	err := svc.UpdateRole(ctx, "s-1", &UpdateRoleRequest{Role: "wizard"}, "admin-1")
	if !errors.Is(err, ErrValidationFailed) {
		t.Errorf("expected ErrValidationFailed, got %v", err)
	}

	// Actors cannot demote themselves
	err = svc.UpdateRole(ctx, "s-1", &UpdateRoleRequest{Role: "student"}, "s-1")
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
}

func TestUserService_List_IncludesBalances(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepository()
	seedStudent(repo, "s-1", 12)
	seedStudent(repo, "s-2", 0)
	svc := newUserFixture(repo)

	list, err := svc.List(ctx, repositories.UserFilters{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if list.Total != 2 {
		t.Fatalf("expected 2 users, got %d", list.Total)
	}

	coinsByID := make(map[string]int)
	for _, user := range list.Users {
		coinsByID[user.ID] = user.Coins
	}
	if coinsByID["s-1"] != 12 || coinsByID["s-2"] != 0 {
		t.Errorf("unexpected balances: %+v", coinsByID)
	}
}
