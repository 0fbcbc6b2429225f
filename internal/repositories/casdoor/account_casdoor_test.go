package casdoor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/redis/go-redis/v9"

	"github.com/Chodo25/FaradayCoins/internal/repositories"
)

type fakeCasdoorAPI struct {
	usersByID    map[string]*casdoorsdk.User
	usersByEmail map[string]*casdoorsdk.User
	addCalls     int
	deleteCalls  int
}

func newFakeCasdoorAPI() *fakeCasdoorAPI {
	return &fakeCasdoorAPI{
		usersByID:    make(map[string]*casdoorsdk.User),
		usersByEmail: make(map[string]*casdoorsdk.User),
	}
}

func (f *fakeCasdoorAPI) GetUserByUserId(id string) (*casdoorsdk.User, error) {
	return f.usersByID[id], nil
}

func (f *fakeCasdoorAPI) GetUserByEmail(email string) (*casdoorsdk.User, error) {
	return f.usersByEmail[email], nil
}

func (f *fakeCasdoorAPI) GetUsers() ([]*casdoorsdk.User, error) {
	users := make([]*casdoorsdk.User, 0, len(f.usersByID))
	for _, u := range f.usersByID {
		users = append(users, u)
	}
	return users, nil
}

func (f *fakeCasdoorAPI) AddUser(user *casdoorsdk.User) (bool, error) {
	f.addCalls++
	f.usersByID[user.Id] = user
	f.usersByEmail[user.Email] = user
	return true, nil
}

func (f *fakeCasdoorAPI) DeleteUser(user *casdoorsdk.User) (bool, error) {
	f.deleteCalls++
	delete(f.usersByID, user.Id)
	delete(f.usersByEmail, user.Email)
	return true, nil
}

func (f *fakeCasdoorAPI) SetPassword(owner, name, oldPassword, newPassword string) (bool, error) {
	return true, nil
}

func newTestAdapter(t *testing.T, api casdoorAPI) *AccountCasdoor {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	return &AccountCasdoor{
		client:      api,
		redis:       client,
		cachePrefix: "account:",
		cacheTTL:    time.Minute,
	}
}

func TestAccountCasdoor_GetAccountByID(t *testing.T) {
	api := newFakeCasdoorAPI()
	api.usersByID["acc-1"] = &casdoorsdk.User{
		Id:          "acc-1",
		Email:       "ada@example.com",
		DisplayName: "Ada",
		CreatedTime: "2025-01-02T15:04:05Z",
	}
	adapter := newTestAdapter(t, api)
	ctx := context.Background()

	account, err := adapter.GetAccountByID(ctx, "acc-1")
	if err != nil {
		t.Fatalf("GetAccountByID failed: %v", err)
	}
	if account.Email != "ada@example.com" || account.Name != "Ada" {
		t.Errorf("unexpected account: %+v", account)
	}
	if account.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be parsed")
	}

	// Second lookup should hit the cache, not the provider
	delete(api.usersByID, "acc-1")
	cached, err := adapter.GetAccountByID(ctx, "acc-1")
	if err != nil {
		t.Fatalf("cached lookup failed: %v", err)
	}
	if cached.Email != "ada@example.com" {
		t.Errorf("expected cached account, got %+v", cached)
	}
}

func TestAccountCasdoor_GetAccountByID_NotFound(t *testing.T) {
	adapter := newTestAdapter(t, newFakeCasdoorAPI())

	_, err := adapter.GetAccountByID(context.Background(), "missing")
	if !errors.Is(err, repositories.ErrAccountNotFound) {
		t.Errorf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestAccountCasdoor_CreateAccount(t *testing.T) {
	api := newFakeCasdoorAPI()
	adapter := newTestAdapter(t, api)

	account, err := adapter.CreateAccount(context.Background(), repositories.NewAccount{
		Email:    "grace@example.com",
		Password: "s3cret",
		Name:     "Grace",
	})
	if err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}
	if account.ID == "" {
		t.Error("expected generated account ID")
	}
	if api.addCalls != 1 {
		t.Errorf("expected 1 AddUser call, got %d", api.addCalls)
	}

	// The account must be resolvable by email afterwards
	found, err := adapter.GetAccountByEmail(context.Background(), "grace@example.com")
	if err != nil {
		t.Fatalf("GetAccountByEmail failed: %v", err)
	}
	if found.ID != account.ID {
		t.Errorf("expected ID %s, got %s", account.ID, found.ID)
	}
}

func TestAccountCasdoor_DeleteAccount(t *testing.T) {
	api := newFakeCasdoorAPI()
	api.usersByID["acc-2"] = &casdoorsdk.User{Id: "acc-2", Email: "del@example.com"}
	api.usersByEmail["del@example.com"] = api.usersByID["acc-2"]
	adapter := newTestAdapter(t, api)
	ctx := context.Background()

	if err := adapter.DeleteAccount(ctx, "acc-2"); err != nil {
		t.Fatalf("DeleteAccount failed: %v", err)
	}
	if api.deleteCalls != 1 {
		t.Errorf("expected 1 DeleteUser call, got %d", api.deleteCalls)
	}

	// Deletion must also drop cache entries
	if _, err := adapter.GetAccountByID(ctx, "acc-2"); !errors.Is(err, repositories.ErrAccountNotFound) {
		t.Errorf("expected ErrAccountNotFound after delete, got %v", err)
	}
}

func TestAccountCasdoor_DeleteAccount_NotFound(t *testing.T) {
	adapter := newTestAdapter(t, newFakeCasdoorAPI())

	err := adapter.DeleteAccount(context.Background(), "missing")
	if !errors.Is(err, repositories.ErrAccountNotFound) {
		t.Errorf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestUsernameFromEmail(t *testing.T) {
	name := usernameFromEmail("ada.lovelace+test@example.com")
	if len(name) == 0 {
		t.Fatal("expected non-empty username")
	}
	for _, r := range name {
		valid := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '.' || r == '_' || r == '-'
		if !valid {
			t.Errorf("unexpected character %q in username %s", r, name)
		}
	}
}
