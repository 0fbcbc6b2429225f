package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Chodo25/FaradayCoins/internal/models"
	"github.com/Chodo25/FaradayCoins/internal/repositories"
)

// mockRepository is an in-memory Repository for service tests.
type mockRepository struct {
	users       map[string]*models.User
	balances    map[string]*models.Balance
	txs         []*models.Transaction
	courses     map[uint]*models.Course
	rewards     map[uint]*models.Reward
	redemptions map[uint]*models.RewardRedemption
	settings    map[string]*models.Setting
	accounts    map[string]*repositories.Account

	nextCourseID     uint
	nextRewardID     uint
	nextRedemptionID uint
	nextTxID         uint

	// Failure injection
	failUserCreate    bool
	failBalanceCreate bool
	deletedAccounts   []string
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		users:       make(map[string]*models.User),
		balances:    make(map[string]*models.Balance),
		courses:     make(map[uint]*models.Course),
		rewards:     make(map[uint]*models.Reward),
		redemptions: make(map[uint]*models.RewardRedemption),
		settings:    make(map[string]*models.Setting),
		accounts:    make(map[string]*repositories.Account),
	}
}

func (m *mockRepository) User() repositories.UserRepository               { return (*mockUserRepo)(m) }
func (m *mockRepository) Balance() repositories.BalanceRepository         { return (*mockBalanceRepo)(m) }
func (m *mockRepository) Transaction() repositories.TransactionRepository { return (*mockTxRepo)(m) }
func (m *mockRepository) Course() repositories.CourseRepository           { return (*mockCourseRepo)(m) }
func (m *mockRepository) Reward() repositories.RewardRepository           { return (*mockRewardRepo)(m) }
func (m *mockRepository) Redemption() repositories.RedemptionRepository {
	return (*mockRedemptionRepo)(m)
}
func (m *mockRepository) Setting() repositories.SettingRepository   { return (*mockSettingRepo)(m) }
func (m *mockRepository) Report() repositories.ReportRepository     { return (*mockReportRepo)(m) }
func (m *mockRepository) Identity() repositories.IdentityProvider   { return (*mockIdentity)(m) }
func (m *mockRepository) Ping(ctx context.Context) error            { return nil }
func (m *mockRepository) Close() error                              { return nil }

func (m *mockRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(m)
}

// ===== USERS =====

type mockUserRepo mockRepository

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	if user, ok := m.users[id]; ok {
		return user, nil
	}
	return nil, repositories.ErrNotFound
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *mockUserRepo) List(ctx context.Context, filters repositories.UserFilters) ([]*models.User, int64, error) {
	var out []*models.User
	for _, user := range m.users {
		if filters.Role != nil && user.Role != *filters.Role {
			continue
		}
		if filters.CourseID != nil && (user.CourseID == nil || *user.CourseID != *filters.CourseID) {
			continue
		}
		if filters.Query != "" &&
			!strings.Contains(strings.ToLower(user.FullName), strings.ToLower(filters.Query)) &&
			!strings.Contains(strings.ToLower(user.Email), strings.ToLower(filters.Query)) {
			continue
		}
		out = append(out, user)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	if m.failUserCreate {
		return fmt.Errorf("forced user create failure")
	}
	if _, ok := m.users[user.ID]; ok {
		return fmt.Errorf("duplicate user id %s", user.ID)
	}
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) UpdateRole(ctx context.Context, id string, role models.UserRole) error {
	user, ok := m.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	user.Role = role
	return nil
}

func (m *mockUserRepo) UpdateCourse(ctx context.Context, id string, courseID *uint) error {
	user, ok := m.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	user.CourseID = courseID
	return nil
}

func (m *mockUserRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.users[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *mockUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := m.GetByEmail(ctx, email)
	if err == nil {
		return true, nil
	}
	return false, nil
}

func (m *mockUserRepo) ClearCourse(ctx context.Context, courseID uint) error {
	for _, user := range m.users {
		if user.CourseID != nil && *user.CourseID == courseID {
			user.CourseID = nil
		}
	}
	return nil
}

// ===== BALANCES =====

type mockBalanceRepo mockRepository

func (m *mockBalanceRepo) GetByUserID(ctx context.Context, userID string) (*models.Balance, error) {
	if balance, ok := m.balances[userID]; ok {
		return balance, nil
	}
	return nil, repositories.ErrNotFound
}

func (m *mockBalanceRepo) GetCoins(ctx context.Context, userID string) (int, error) {
	if balance, ok := m.balances[userID]; ok {
		return balance.Coins, nil
	}
	return 0, nil
}

func (m *mockBalanceRepo) Create(ctx context.Context, balance *models.Balance) error {
	if m.failBalanceCreate {
		return fmt.Errorf("forced balance create failure")
	}
	if _, ok := m.balances[balance.UserID]; ok {
		return fmt.Errorf("duplicate balance for %s", balance.UserID)
	}
	m.balances[balance.UserID] = balance
	return nil
}

func (m *mockBalanceRepo) AddCoins(ctx context.Context, userID string, delta int) error {
	balance, ok := m.balances[userID]
	if !ok {
		return repositories.ErrNotFound
	}
	if delta < 0 && balance.Coins < -delta {
		return repositories.ErrNotFound
	}
	balance.Coins += delta
	return nil
}

func (m *mockBalanceRepo) DeleteByUserID(ctx context.Context, userID string) error {
	delete(m.balances, userID)
	return nil
}

// ===== TRANSACTIONS =====

type mockTxRepo mockRepository

func (m *mockTxRepo) Create(ctx context.Context, tx *models.Transaction) error {
	m.nextTxID++
	tx.ID = m.nextTxID
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now()
	}
	m.txs = append(m.txs, tx)
	return nil
}

func (m *mockTxRepo) ListByUser(ctx context.Context, userID string, filters repositories.TransactionFilters) ([]*models.Transaction, int64, error) {
	var out []*models.Transaction
	for _, tx := range m.txs {
		if tx.UserID != userID {
			continue
		}
		if filters.Type != nil && tx.Type != *filters.Type {
			continue
		}
		out = append(out, tx)
	}
	return out, int64(len(out)), nil
}

func (m *mockTxRepo) DeleteByUserID(ctx context.Context, userID string) error {
	kept := m.txs[:0]
	for _, tx := range m.txs {
		if tx.UserID != userID {
			kept = append(kept, tx)
		}
	}
	m.txs = kept
	return nil
}

// ===== COURSES =====

type mockCourseRepo mockRepository

func (m *mockCourseRepo) GetByID(ctx context.Context, id uint) (*models.Course, error) {
	if course, ok := m.courses[id]; ok {
		return course, nil
	}
	return nil, repositories.ErrNotFound
}

func (m *mockCourseRepo) GetByName(ctx context.Context, name string) (*models.Course, error) {
	for _, course := range m.courses {
		if course.Name == name {
			return course, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *mockCourseRepo) List(ctx context.Context) ([]*models.Course, error) {
	var out []*models.Course
	for _, course := range m.courses {
		out = append(out, course)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *mockCourseRepo) Create(ctx context.Context, course *models.Course) error {
	m.nextCourseID++
	course.ID = m.nextCourseID
	m.courses[course.ID] = course
	return nil
}

func (m *mockCourseRepo) Update(ctx context.Context, course *models.Course) error {
	existing, ok := m.courses[course.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	existing.Name = course.Name
	existing.Description = course.Description
	return nil
}

func (m *mockCourseRepo) Delete(ctx context.Context, id uint) error {
	if _, ok := m.courses[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(m.courses, id)
	return nil
}

// ===== REWARDS =====

type mockRewardRepo mockRepository

func (m *mockRewardRepo) GetByID(ctx context.Context, id uint) (*models.Reward, error) {
	if reward, ok := m.rewards[id]; ok {
		return reward, nil
	}
	return nil, repositories.ErrNotFound
}

func (m *mockRewardRepo) List(ctx context.Context, activeOnly bool) ([]*models.Reward, error) {
	var out []*models.Reward
	for _, reward := range m.rewards {
		if activeOnly && !reward.Active {
			continue
		}
		out = append(out, reward)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Cost < out[j].Cost })
	return out, nil
}

func (m *mockRewardRepo) Create(ctx context.Context, reward *models.Reward) error {
	m.nextRewardID++
	reward.ID = m.nextRewardID
	m.rewards[reward.ID] = reward
	return nil
}

func (m *mockRewardRepo) Update(ctx context.Context, reward *models.Reward) error {
	existing, ok := m.rewards[reward.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	*existing = *reward
	return nil
}

func (m *mockRewardRepo) Delete(ctx context.Context, id uint) error {
	if _, ok := m.rewards[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(m.rewards, id)
	return nil
}

// ===== REDEMPTIONS =====

type mockRedemptionRepo mockRepository

func (m *mockRedemptionRepo) GetByID(ctx context.Context, id uint) (*models.RewardRedemption, error) {
	if redemption, ok := m.redemptions[id]; ok {
		if redemption.Reward == nil {
			redemption.Reward = m.rewards[redemption.RewardID]
		}
		return redemption, nil
	}
	return nil, repositories.ErrNotFound
}

func (m *mockRedemptionRepo) List(ctx context.Context, filters repositories.RedemptionFilters) ([]*models.RewardRedemption, int64, error) {
	var out []*models.RewardRedemption
	for _, redemption := range m.redemptions {
		if filters.Status != nil && redemption.Status != *filters.Status {
			continue
		}
		if filters.UserID != nil && redemption.UserID != *filters.UserID {
			continue
		}
		out = append(out, redemption)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (m *mockRedemptionRepo) Create(ctx context.Context, redemption *models.RewardRedemption) error {
	m.nextRedemptionID++
	redemption.ID = m.nextRedemptionID
	if redemption.RedeemedAt.IsZero() {
		redemption.RedeemedAt = time.Now()
	}
	m.redemptions[redemption.ID] = redemption
	return nil
}

func (m *mockRedemptionRepo) UpdateStatus(ctx context.Context, id uint, status models.RedemptionStatus, notes string) error {
	redemption, ok := m.redemptions[id]
	if !ok {
		return repositories.ErrNotFound
	}
	redemption.Status = status
	redemption.Notes = notes
	return nil
}

func (m *mockRedemptionRepo) DeleteByUserID(ctx context.Context, userID string) error {
	for id, redemption := range m.redemptions {
		if redemption.UserID == userID {
			delete(m.redemptions, id)
		}
	}
	return nil
}

// ===== SETTINGS =====

type mockSettingRepo mockRepository

func (m *mockSettingRepo) Get(ctx context.Context, key string) (*models.Setting, error) {
	if setting, ok := m.settings[key]; ok {
		return setting, nil
	}
	return nil, repositories.ErrNotFound
}

func (m *mockSettingRepo) Upsert(ctx context.Context, setting *models.Setting) error {
	m.settings[setting.Key] = setting
	return nil
}

// ===== REPORTS =====

type mockReportRepo mockRepository

func (m *mockReportRepo) StudentBalances(ctx context.Context, filter repositories.CourseFilter) ([]repositories.StudentBalance, error) {
	var out []repositories.StudentBalance
	for _, user := range m.users {
		if user.Role != models.RoleStudent {
			continue
		}
		if filter.CourseID != nil && (user.CourseID == nil || *user.CourseID != *filter.CourseID) {
			continue
		}
		coins := 0
		if balance, ok := m.balances[user.ID]; ok {
			coins = balance.Coins
		}
		courseName := ""
		if user.CourseID != nil {
			if course, ok := m.courses[*user.CourseID]; ok {
				courseName = course.Name
			}
		}
		out = append(out, repositories.StudentBalance{
			UserID:     user.ID,
			FullName:   user.FullName,
			CourseName: courseName,
			Coins:      coins,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (m *mockReportRepo) TransactionsByMonth(ctx context.Context, filter repositories.CourseFilter) ([]repositories.MonthlyTransactionCount, error) {
	return nil, nil
}

func (m *mockReportRepo) RedemptionsByReward(ctx context.Context, filter repositories.CourseFilter) ([]repositories.RewardRedemptionCount, error) {
	return nil, nil
}

func (m *mockReportRepo) StudentActivities(ctx context.Context, filter repositories.CourseFilter) ([]repositories.StudentActivity, error) {
	return nil, nil
}

// ===== IDENTITY =====

type mockIdentity mockRepository

func (m *mockIdentity) GetAccountByID(ctx context.Context, id string) (*repositories.Account, error) {
	if account, ok := m.accounts[id]; ok {
		return account, nil
	}
	return nil, repositories.ErrAccountNotFound
}

func (m *mockIdentity) GetAccountByEmail(ctx context.Context, email string) (*repositories.Account, error) {
	for _, account := range m.accounts {
		if account.Email == email {
			return account, nil
		}
	}
	return nil, repositories.ErrAccountNotFound
}

func (m *mockIdentity) ListAccounts(ctx context.Context) ([]*repositories.Account, error) {
	var out []*repositories.Account
	for _, account := range m.accounts {
		out = append(out, account)
	}
	return out, nil
}

func (m *mockIdentity) CreateAccount(ctx context.Context, account repositories.NewAccount) (*repositories.Account, error) {
	created := &repositories.Account{
		ID:        uuid.NewString(),
		Email:     account.Email,
		Name:      account.Name,
		CreatedAt: time.Now(),
	}
	m.accounts[created.ID] = created
	return created, nil
}

func (m *mockIdentity) DeleteAccount(ctx context.Context, id string) error {
	if _, ok := m.accounts[id]; !ok {
		return repositories.ErrAccountNotFound
	}
	delete(m.accounts, id)
	m.deletedAccounts = append(m.deletedAccounts, id)
	return nil
}

func (m *mockIdentity) UpdatePassword(ctx context.Context, id, newPassword string) error {
	if _, ok := m.accounts[id]; !ok {
		return repositories.ErrAccountNotFound
	}
	return nil
}
