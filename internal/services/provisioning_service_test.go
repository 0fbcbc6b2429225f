package services

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/Chodo25/FaradayCoins/internal/config"
	"github.com/Chodo25/FaradayCoins/internal/events"
	"github.com/Chodo25/FaradayCoins/internal/models"
	"github.com/Chodo25/FaradayCoins/internal/repositories"
	"github.com/Chodo25/FaradayCoins/internal/validator"
)

func newProvisioningFixture(repo *mockRepository) (ProvisioningService, *events.MockEventPublisher) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	publisher := events.NewMockEventPublisher(logger)
	admin := config.AdminConfig{
		Email:        "admin@school.test",
		Password:     "admin-secret-1",
		FullName:     "System Administrator",
		TeacherEmail: "teacher@school.test",
	}
	return NewProvisioningService(repo, logger, validator.New(), publisher, admin), publisher
}

func TestProvisioningService_Reconcile(t *testing.T) {
	ctx := context.Background()

	t.Run("Neither", func(t *testing.T) {
		repo := newMockRepository()
		svc, _ := newProvisioningFixture(repo)

		result, err := svc.Reconcile(ctx, "ghost@school.test")
		if err != nil {
			t.Fatalf("Reconcile failed: %v", err)
		}
		if result.Outcome != ReconcileNeither {
			t.Errorf("expected %s, got %s", ReconcileNeither, result.Outcome)
		}
	})

	t.Run("OnlyIdentity", func(t *testing.T) {
		repo := newMockRepository()
		account, _ := repo.Identity().CreateAccount(ctx, repositories.NewAccount{Email: "orphan@school.test"})
		svc, _ := newProvisioningFixture(repo)

		result, err := svc.Reconcile(ctx, "orphan@school.test")
		if err != nil {
			t.Fatalf("Reconcile failed: %v", err)
		}
		if result.Outcome != ReconcileOnlyIdentity {
			t.Errorf("expected %s, got %s", ReconcileOnlyIdentity, result.Outcome)
		}
		if result.AccountID != account.ID {
			t.Errorf("expected account ID %s, got %s", account.ID, result.AccountID)
		}
	})

	t.Run("OnlyRow", func(t *testing.T) {
		repo := newMockRepository()
		repo.users["u-1"] = &models.User{ID: "u-1", Email: "row@school.test", Role: models.RoleStudent}
		svc, _ := newProvisioningFixture(repo)

		result, err := svc.Reconcile(ctx, "row@school.test")
		if err != nil {
			t.Fatalf("Reconcile failed: %v", err)
		}
		if result.Outcome != ReconcileOnlyRow {
			t.Errorf("expected %s, got %s", ReconcileOnlyRow, result.Outcome)
		}
	})

	t.Run("BothExist", func(t *testing.T) {
		repo := newMockRepository()
		account, _ := repo.Identity().CreateAccount(ctx, repositories.NewAccount{Email: "full@school.test"})
		repo.users[account.ID] = &models.User{ID: account.ID, Email: "full@school.test"}
		svc, _ := newProvisioningFixture(repo)

		result, err := svc.Reconcile(ctx, "full@school.test")
		if err != nil {
			t.Fatalf("Reconcile failed: %v", err)
		}
		if result.Outcome != ReconcileBothExist {
			t.Errorf("expected %s, got %s", ReconcileBothExist, result.Outcome)
		}
	})
}

func TestProvisioningService_CreateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("CreatesAccountRowAndBalance", func(t *testing.T) {
		repo := newMockRepository()
		svc, publisher := newProvisioningFixture(repo)

		created, err := svc.CreateUser(ctx, &CreateUserRequest{
			Email:    "ada@school.test",
			Password: "student-secret",
		}, "admin-1")
		if err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}

		// Name defaults to the email local part
		if created.FullName != "ada" {
			t.Errorf("expected full name 'ada', got %q", created.FullName)
		}
		if created.Role != models.RoleStudent {
			t.Errorf("expected default role student, got %s", created.Role)
		}
		if _, ok := repo.accounts[created.ID]; !ok {
			t.Error("expected identity account to exist")
		}
		if _, ok := repo.users[created.ID]; !ok {
			t.Error("expected user row to exist")
		}
		balance, ok := repo.balances[created.ID]
		if !ok || balance.Coins != 0 {
			t.Errorf("expected zeroed balance row, got %+v", balance)
		}

		published := publisher.GetPublishedEvents()
		if len(published) != 1 || published[0].Type != events.EventUserProvisioned {
			t.Errorf("expected one %s event, got %+v", events.EventUserProvisioned, published)
		}
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		repo := newMockRepository()
		svc, _ := newProvisioningFixture(repo)

		if _, err := svc.CreateUser(ctx, &CreateUserRequest{
			Email: "dup@school.test", Password: "student-secret",
		}, "admin-1"); err != nil {
			t.Fatalf("first CreateUser failed: %v", err)
		}

		_, err := svc.CreateUser(ctx, &CreateUserRequest{
			Email: "dup@school.test", Password: "student-secret",
		}, "admin-1")
		if !errors.Is(err, ErrDuplicateEmail) {
			t.Errorf("expected ErrDuplicateEmail, got %v", err)
		}
	})

	t.Run("CompensatesAccountOnRowFailure", func(t *testing.T) {
		repo := newMockRepository()
		repo.failUserCreate = true
		svc, _ := newProvisioningFixture(repo)

		_, err := svc.CreateUser(ctx, &CreateUserRequest{
			Email: "fail@school.test", Password: "student-secret",
		}, "admin-1")
		if err == nil {
			t.Fatal("expected CreateUser to fail")
		}
		if len(repo.accounts) != 0 {
			t.Errorf("expected compensating account deletion, %d accounts remain", len(repo.accounts))
		}
		if len(repo.deletedAccounts) != 1 {
			t.Errorf("expected 1 compensating deletion, got %d", len(repo.deletedAccounts))
		}
	})

	t.Run("AdoptsOrphanedAccount", func(t *testing.T) {
		repo := newMockRepository()
		account, _ := repo.Identity().CreateAccount(ctx, repositories.NewAccount{Email: "orphan@school.test"})
		svc, _ := newProvisioningFixture(repo)

		created, err := svc.CreateUser(ctx, &CreateUserRequest{
			Email: "orphan@school.test", Password: "student-secret",
		}, "admin-1")
		if err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}
		if created.ID != account.ID {
			t.Errorf("expected adoption of account %s, got %s", account.ID, created.ID)
		}
	})

	t.Run("RejectsInvalidRequest", func(t *testing.T) {
		repo := newMockRepository()
		svc, _ := newProvisioningFixture(repo)

		_, err := svc.CreateUser(ctx, &CreateUserRequest{Email: "not-an-email", Password: "x"}, "admin-1")
		if !errors.Is(err, ErrValidationFailed) {
			t.Errorf("expected ErrValidationFailed, got %v", err)
		}
	})
}

func TestProvisioningService_EnsureUser(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepository()
	account, _ := repo.Identity().CreateAccount(ctx, repositories.NewAccount{Email: "late@school.test"})
	svc, _ := newProvisioningFixture(repo)

	user, err := svc.EnsureUser(ctx, account.ID, "late@school.test")
	if err != nil {
		t.Fatalf("EnsureUser failed: %v", err)
	}
	if user.ID != account.ID {
		t.Errorf("expected user ID %s, got %s", account.ID, user.ID)
	}
	if user.FullName != "late" {
		t.Errorf("expected full name 'late', got %q", user.FullName)
	}
	if _, ok := repo.balances[account.ID]; !ok {
		t.Error("expected balance row to be created")
	}

	// Idempotent on the second call
	again, err := svc.EnsureUser(ctx, account.ID, "late@school.test")
	if err != nil {
		t.Fatalf("second EnsureUser failed: %v", err)
	}
	if again.ID != user.ID {
		t.Errorf("expected same user, got %s", again.ID)
	}
	if len(repo.users) != 1 {
		t.Errorf("expected 1 user row, got %d", len(repo.users))
	}
}

func TestProvisioningService_SetupAdmin(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepository()
	svc, _ := newProvisioningFixture(repo)

	first, err := svc.SetupAdmin(ctx)
	if err != nil {
		t.Fatalf("SetupAdmin failed: %v", err)
	}
	if !first.Created {
		t.Error("expected first run to create the admin")
	}

	admin := repo.users[first.UserID]
	if admin == nil || admin.Role != models.RoleAdmin {
		t.Fatalf("expected admin user, got %+v", admin)
	}

	// Second run is a no-op
	second, err := svc.SetupAdmin(ctx)
	if err != nil {
		t.Fatalf("second SetupAdmin failed: %v", err)
	}
	if second.Created {
		t.Error("expected second run to be idempotent")
	}
	if second.UserID != first.UserID {
		t.Errorf("expected same admin, got %s and %s", first.UserID, second.UserID)
	}
}

func TestProvisioningService_PromoteTeacher(t *testing.T) {
	ctx := context.Background()

	t.Run("PromotesExistingUser", func(t *testing.T) {
		repo := newMockRepository()
		repo.users["t-1"] = &models.User{ID: "t-1", Email: "teacher@school.test", Role: models.RoleStudent}
		svc, _ := newProvisioningFixture(repo)

		result, err := svc.PromoteTeacher(ctx)
		if err != nil {
			t.Fatalf("PromoteTeacher failed: %v", err)
		}
		if result.UserID != "t-1" {
			t.Errorf("expected user t-1, got %s", result.UserID)
		}
		if repo.users["t-1"].Role != models.RoleTeacher {
			t.Errorf("expected teacher role, got %s", repo.users["t-1"].Role)
		}
	})

	t.Run("UnknownUser", func(t *testing.T) {
		repo := newMockRepository()
		svc, _ := newProvisioningFixture(repo)

		_, err := svc.PromoteTeacher(ctx)
		if !errors.Is(err, ErrUserNotFound) {
			t.Errorf("expected ErrUserNotFound, got %v", err)
		}
	})
}
