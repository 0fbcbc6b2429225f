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

func newCoinFixture(repo *mockRepository) (CoinService, *events.MockEventPublisher) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	publisher := events.NewMockEventPublisher(logger)
	return NewCoinService(repo, logger, validator.New(), publisher), publisher
}

func seedStudent(repo *mockRepository, id string, coins int) {
	repo.users[id] = &models.User{ID: id, Email: id + "@school.test", Role: models.RoleStudent}
	repo.balances[id] = &models.Balance{UserID: id, Coins: coins}
}

func TestCoinService_Grant(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepository()
	seedStudent(repo, "s-1", 5)
	svc, publisher := newCoinFixture(repo)

	balance, err := svc.Grant(ctx, &GrantCoinsRequest{
		UserID:      "s-1",
		Amount:      10,
		Description: "Homework completed",
	}, "teacher-1")
	if err != nil {
		t.Fatalf("Grant failed: %v", err)
	}
	if balance.Coins != 15 {
		t.Errorf("expected balance 15, got %d", balance.Coins)
	}

	// Ledger entry written alongside the balance change
	if len(repo.txs) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(repo.txs))
	}
	tx := repo.txs[0]
	if tx.Type != models.TransactionAdd || tx.Amount != 10 {
		t.Errorf("unexpected transaction: %+v", tx)
	}
	if tx.CreatedBy == nil || *tx.CreatedBy != "teacher-1" {
		t.Errorf("expected created_by teacher-1, got %v", tx.CreatedBy)
	}

	published := publisher.GetPublishedEvents()
	if len(published) != 1 || published[0].Type != events.EventCoinsGranted {
		t.Errorf("expected one %s event, got %+v", events.EventCoinsGranted, published)
	}
}

func TestCoinService_Grant_CreatesBalanceRow(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepository()
	repo.users["s-2"] = &models.User{ID: "s-2", Email: "s2@school.test", Role: models.RoleStudent}
	svc, _ := newCoinFixture(repo)

	balance, err := svc.Grant(ctx, &GrantCoinsRequest{
		UserID:      "s-2",
		Amount:      7,
		Description: "First grant",
	}, "teacher-1")
	if err != nil {
		t.Fatalf("Grant failed: %v", err)
	}
	if balance.Coins != 7 {
		t.Errorf("expected balance 7, got %d", balance.Coins)
	}
}

func TestCoinService_Deduct(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo := newMockRepository()
		seedStudent(repo, "s-1", 20)
		svc, publisher := newCoinFixture(repo)

		balance, err := svc.Deduct(ctx, &DeductCoinsRequest{
			UserID:      "s-1",
			Amount:      8,
			Description: "Late submission",
		}, "teacher-1")
		if err != nil {
			t.Fatalf("Deduct failed: %v", err)
		}
		if balance.Coins != 12 {
			t.Errorf("expected balance 12, got %d", balance.Coins)
		}
		if len(repo.txs) != 1 || repo.txs[0].Amount != -8 {
			t.Errorf("expected ledger entry of -8, got %+v", repo.txs)
		}

		published := publisher.GetPublishedEvents()
		if len(published) != 1 || published[0].Type != events.EventCoinsDeducted {
			t.Errorf("expected one %s event, got %+v", events.EventCoinsDeducted, published)
		}
	})

	t.Run("InsufficientCoins", func(t *testing.T) {
		repo := newMockRepository()
		seedStudent(repo, "s-1", 3)
		svc, _ := newCoinFixture(repo)

		_, err := svc.Deduct(ctx, &DeductCoinsRequest{
			UserID:      "s-1",
			Amount:      10,
			Description: "Too much",
		}, "teacher-1")
		if !errors.Is(err, ErrInsufficientCoins) {
			t.Errorf("expected ErrInsufficientCoins, got %v", err)
		}

		// Nothing written on failure
		if repo.balances["s-1"].Coins != 3 {
			t.Errorf("balance changed on failed deduct: %d", repo.balances["s-1"].Coins)
		}
		if len(repo.txs) != 0 {
			t.Errorf("expected no transactions, got %d", len(repo.txs))
		}
	})

	t.Run("UnknownUser", func(t *testing.T) {
		repo := newMockRepository()
		svc, _ := newCoinFixture(repo)

		_, err := svc.Deduct(ctx, &DeductCoinsRequest{
			UserID:      "missing",
			Amount:      5,
			Description: "x",
		}, "teacher-1")
		if !errors.Is(err, ErrUserNotFound) {
			t.Errorf("expected ErrUserNotFound, got %v", err)
		}
	})
}

func TestCoinService_Balance_DefaultsToZero(t *testing.T) {
	repo := newMockRepository()
	svc, _ := newCoinFixture(repo)

	balance, err := svc.Balance(context.Background(), "no-balance")
	if err != nil {
		t.Fatalf("Balance failed: %v", err)
	}
	if balance.Coins != 0 {
		t.Errorf("expected 0 coins, got %d", balance.Coins)
	}
}

func TestCoinService_History(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepository()
	seedStudent(repo, "s-1", 50)
	svc, _ := newCoinFixture(repo)

	if _, err := svc.Grant(ctx, &GrantCoinsRequest{UserID: "s-1", Amount: 5, Description: "a"}, "t"); err != nil {
		t.Fatalf("Grant failed: %v", err)
	}
	if _, err := svc.Deduct(ctx, &DeductCoinsRequest{UserID: "s-1", Amount: 2, Description: "b"}, "t"); err != nil {
		t.Fatalf("Deduct failed: %v", err)
	}

	history, err := svc.History(ctx, "s-1", repositories.TransactionFilters{})
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if history.Total != 2 {
		t.Errorf("expected 2 entries, got %d", history.Total)
	}

	subtract := models.TransactionSubtract
	filtered, err := svc.History(ctx, "s-1", repositories.TransactionFilters{Type: &subtract})
	if err != nil {
		t.Fatalf("filtered History failed: %v", err)
	}
	if filtered.Total != 1 {
		t.Errorf("expected 1 subtract entry, got %d", filtered.Total)
	}
}
