package casdoor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Chodo25/FaradayCoins/internal/repositories"
)

// CasdoorConfig holds the configuration for Casdoor connection
type CasdoorConfig struct {
	Endpoint         string
	ClientID         string
	ClientSecret     string
	Certificate      string
	OrganizationName string
	ApplicationName  string
}

// casdoorAPI is the slice of the Casdoor SDK client used by the adapter.
// Tests substitute their own implementation.
type casdoorAPI interface {
	GetUserByUserId(id string) (*casdoorsdk.User, error)
	GetUserByEmail(email string) (*casdoorsdk.User, error)
	GetUsers() ([]*casdoorsdk.User, error)
	AddUser(user *casdoorsdk.User) (bool, error)
	DeleteUser(user *casdoorsdk.User) (bool, error)
	SetPassword(owner, name, oldPassword, newPassword string) (bool, error)
}

type AccountCasdoor struct {
	client casdoorAPI
	redis  *redis.Client
	config CasdoorConfig

	// Cache settings
	cachePrefix string
	cacheTTL    time.Duration
}

func NewAccountCasdoor(config CasdoorConfig, redisClient *redis.Client) repositories.IdentityProvider {
	client := casdoorsdk.NewClient(
		config.Endpoint,
		config.ClientID,
		config.ClientSecret,
		config.Certificate,
		config.OrganizationName,
		config.ApplicationName,
	)

	return &AccountCasdoor{
		client:      client,
		redis:       redisClient,
		config:      config,
		cachePrefix: "account:",
		cacheTTL:    15 * time.Minute,
	}
}

// ===== CACHE METHODS =====

func (a *AccountCasdoor) getCacheKey(key string) string {
	return fmt.Sprintf("%s%s", a.cachePrefix, key)
}

func (a *AccountCasdoor) getAccountFromCache(ctx context.Context, key string) (*repositories.Account, error) {
	if a.redis == nil {
		return nil, nil // Cache not available
	}

	data, err := a.redis.Get(ctx, a.getCacheKey(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // Not found in cache
		}
		return nil, fmt.Errorf("failed to get from cache: %w", err)
	}

	var account repositories.Account
	if err := json.Unmarshal([]byte(data), &account); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached account: %w", err)
	}

	return &account, nil
}

func (a *AccountCasdoor) setAccountCache(ctx context.Context, key string, account *repositories.Account) error {
	if a.redis == nil {
		return nil // Cache not available
	}

	data, err := json.Marshal(account)
	if err != nil {
		return fmt.Errorf("failed to marshal account for cache: %w", err)
	}

	return a.redis.Set(ctx, a.getCacheKey(key), data, a.cacheTTL).Err()
}

func (a *AccountCasdoor) invalidateAccountCache(ctx context.Context, id, email string) {
	if a.redis == nil {
		return
	}

	a.redis.Del(ctx,
		a.getCacheKey(fmt.Sprintf("id:%s", id)),
		a.getCacheKey(fmt.Sprintf("email:%s", email)),
	)
}

// ===== CONVERSION METHODS =====

func (a *AccountCasdoor) convertCasdoorUser(casdoorUser *casdoorsdk.User) *repositories.Account {
	if casdoorUser == nil {
		return nil
	}

	var createdAt time.Time
	if casdoorUser.CreatedTime != "" {
		createdAt, _ = time.Parse(time.RFC3339, casdoorUser.CreatedTime)
	}

	return &repositories.Account{
		ID:        casdoorUser.Id,
		Email:     casdoorUser.Email,
		Name:      casdoorUser.DisplayName,
		CreatedAt: createdAt,
	}
}

// usernameFromEmail derives a Casdoor username from the email local part.
// A uuid suffix keeps usernames unique when local parts collide.
func usernameFromEmail(email string) string {
	local := email
	if at := strings.Index(email, "@"); at > 0 {
		local = email[:at]
	}
	local = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '_', r == '-':
			return r
		default:
			return '_'
		}
	}, local)
	return fmt.Sprintf("%s_%s", local, uuid.NewString()[:8])
}

// ===== READ OPERATIONS =====

func (a *AccountCasdoor) GetAccountByID(ctx context.Context, id string) (*repositories.Account, error) {
	cacheKey := fmt.Sprintf("id:%s", id)
	if cached, err := a.getAccountFromCache(ctx, cacheKey); err == nil && cached != nil {
		return cached, nil
	}

	casdoorUser, err := a.client.GetUserByUserId(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get account from Casdoor: %w", err)
	}
	if casdoorUser == nil {
		return nil, repositories.ErrAccountNotFound
	}

	account := a.convertCasdoorUser(casdoorUser)

	a.setAccountCache(ctx, cacheKey, account)
	a.setAccountCache(ctx, fmt.Sprintf("email:%s", account.Email), account)

	return account, nil
}

func (a *AccountCasdoor) GetAccountByEmail(ctx context.Context, email string) (*repositories.Account, error) {
	cacheKey := fmt.Sprintf("email:%s", email)
	if cached, err := a.getAccountFromCache(ctx, cacheKey); err == nil && cached != nil {
		return cached, nil
	}

	casdoorUser, err := a.client.GetUserByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("failed to get account by email from Casdoor: %w", err)
	}
	if casdoorUser == nil {
		return nil, repositories.ErrAccountNotFound
	}

	account := a.convertCasdoorUser(casdoorUser)

	a.setAccountCache(ctx, cacheKey, account)
	a.setAccountCache(ctx, fmt.Sprintf("id:%s", account.ID), account)

	return account, nil
}

func (a *AccountCasdoor) ListAccounts(ctx context.Context) ([]*repositories.Account, error) {
	casdoorUsers, err := a.client.GetUsers()
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts from Casdoor: %w", err)
	}

	accounts := make([]*repositories.Account, 0, len(casdoorUsers))
	for _, casdoorUser := range casdoorUsers {
		account := a.convertCasdoorUser(casdoorUser)
		if account == nil {
			continue
		}
		accounts = append(accounts, account)

		a.setAccountCache(ctx, fmt.Sprintf("id:%s", account.ID), account)
		a.setAccountCache(ctx, fmt.Sprintf("email:%s", account.Email), account)
	}

	return accounts, nil
}

// ===== WRITE OPERATIONS =====

// CreateAccount registers a new account and returns it with the assigned
// ID. The ID is generated here so callers can reference the account
// without a follow-up lookup.
func (a *AccountCasdoor) CreateAccount(ctx context.Context, account repositories.NewAccount) (*repositories.Account, error) {
	id := uuid.NewString()
	now := time.Now().UTC()

	casdoorUser := &casdoorsdk.User{
		Owner:             a.config.OrganizationName,
		Name:              usernameFromEmail(account.Email),
		Id:                id,
		CreatedTime:       now.Format(time.RFC3339),
		DisplayName:       account.Name,
		Email:             account.Email,
		Password:          account.Password,
		SignupApplication: a.config.ApplicationName,
	}

	ok, err := a.client.AddUser(casdoorUser)
	if err != nil {
		return nil, fmt.Errorf("failed to create account in Casdoor: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("casdoor rejected account creation for %s", account.Email)
	}

	created := &repositories.Account{
		ID:        id,
		Email:     account.Email,
		Name:      account.Name,
		CreatedAt: now,
	}

	a.setAccountCache(ctx, fmt.Sprintf("id:%s", created.ID), created)
	a.setAccountCache(ctx, fmt.Sprintf("email:%s", created.Email), created)

	return created, nil
}

func (a *AccountCasdoor) DeleteAccount(ctx context.Context, id string) error {
	casdoorUser, err := a.client.GetUserByUserId(id)
	if err != nil {
		return fmt.Errorf("failed to get account for deletion: %w", err)
	}
	if casdoorUser == nil {
		return repositories.ErrAccountNotFound
	}

	ok, err := a.client.DeleteUser(casdoorUser)
	if err != nil {
		return fmt.Errorf("failed to delete account in Casdoor: %w", err)
	}
	if !ok {
		return fmt.Errorf("casdoor rejected account deletion for %s", id)
	}

	a.invalidateAccountCache(ctx, id, casdoorUser.Email)

	return nil
}

func (a *AccountCasdoor) UpdatePassword(ctx context.Context, id, newPassword string) error {
	casdoorUser, err := a.client.GetUserByUserId(id)
	if err != nil {
		return fmt.Errorf("failed to get account for password update: %w", err)
	}
	if casdoorUser == nil {
		return repositories.ErrAccountNotFound
	}

	ok, err := a.client.SetPassword(casdoorUser.Owner, casdoorUser.Name, "", newPassword)
	if err != nil {
		return fmt.Errorf("failed to update password in Casdoor: %w", err)
	}
	if !ok {
		return fmt.Errorf("casdoor rejected password update for %s", id)
	}

	return nil
}
