package postgres

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/Chodo25/FaradayCoins/internal/models"
	"github.com/Chodo25/FaradayCoins/internal/repositories"
)

type reportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) repositories.ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) studentScope(ctx context.Context, filter repositories.CourseFilter) *gorm.DB {
	query := r.db.WithContext(ctx).
		Table("users").
		Where("users.role = ?", models.RoleStudent)
	if filter.CourseID != nil {
		query = query.Where("users.course_id = ?", *filter.CourseID)
	}
	return query
}

// StudentBalances returns every student with their balance, missing
// balance rows counting as zero.
func (r *reportRepository) StudentBalances(ctx context.Context, filter repositories.CourseFilter) ([]repositories.StudentBalance, error) {
	var results []repositories.StudentBalance

	if err := r.studentScope(ctx, filter).
		Select("users.id as user_id, users.full_name, "+
			"COALESCE(courses.name, '') as course_name, "+
			"COALESCE(balances.coins, 0) as coins").
		Joins("LEFT JOIN balances ON balances.user_id = users.id").
		Joins("LEFT JOIN courses ON courses.id = users.course_id").
		Order("coins DESC, users.full_name").
		Scan(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to get student balances: %w", err)
	}

	return results, nil
}

func (r *reportRepository) TransactionsByMonth(ctx context.Context, filter repositories.CourseFilter) ([]repositories.MonthlyTransactionCount, error) {
	var rows []struct {
		Year  int
		Month int
		Type  models.TransactionType
		Count int64
	}

	query := r.db.WithContext(ctx).
		Table("transactions").
		Select("EXTRACT(YEAR FROM transactions.created_at)::int as year, "+
			"EXTRACT(MONTH FROM transactions.created_at)::int as month, "+
			"transactions.transaction_type as type, COUNT(*) as count").
		Joins("JOIN users ON users.id = transactions.user_id").
		Where("users.role = ?", models.RoleStudent)
	if filter.CourseID != nil {
		query = query.Where("users.course_id = ?", *filter.CourseID)
	}

	if err := query.
		Group("year, month, transactions.transaction_type").
		Order("year, month").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to get transactions by month: %w", err)
	}

	type key struct{ year, month int }
	grouped := make(map[key]*repositories.MonthlyTransactionCount)
	var order []key
	for _, row := range rows {
		k := key{row.Year, row.Month}
		entry, ok := grouped[k]
		if !ok {
			entry = &repositories.MonthlyTransactionCount{
				Month: fmt.Sprintf("%d/%d", row.Month, row.Year),
			}
			grouped[k] = entry
			order = append(order, k)
		}
		switch row.Type {
		case models.TransactionAdd:
			entry.Adds = row.Count
		case models.TransactionSubtract:
			entry.Subtracts = row.Count
		case models.TransactionRedeem:
			entry.Redeems = row.Count
		}
	}

	sort.Slice(order, func(i, j int) bool {
		if order[i].year != order[j].year {
			return order[i].year < order[j].year
		}
		return order[i].month < order[j].month
	})

	results := make([]repositories.MonthlyTransactionCount, 0, len(order))
	for _, k := range order {
		results = append(results, *grouped[k])
	}
	return results, nil
}

func (r *reportRepository) RedemptionsByReward(ctx context.Context, filter repositories.CourseFilter) ([]repositories.RewardRedemptionCount, error) {
	var rows []struct {
		RewardName string
		Status     models.RedemptionStatus
		Count      int64
	}

	query := r.db.WithContext(ctx).
		Table("reward_redemptions").
		Select("rewards.name as reward_name, reward_redemptions.status, COUNT(*) as count").
		Joins("JOIN rewards ON rewards.id = reward_redemptions.reward_id").
		Joins("JOIN users ON users.id = reward_redemptions.user_id").
		Where("users.role = ?", models.RoleStudent)
	if filter.CourseID != nil {
		query = query.Where("users.course_id = ?", *filter.CourseID)
	}

	if err := query.
		Group("rewards.name, reward_redemptions.status").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to get redemptions by reward: %w", err)
	}

	grouped := make(map[string]*repositories.RewardRedemptionCount)
	for _, row := range rows {
		entry, ok := grouped[row.RewardName]
		if !ok {
			entry = &repositories.RewardRedemptionCount{RewardName: row.RewardName}
			grouped[row.RewardName] = entry
		}
		entry.Total += row.Count
		switch row.Status {
		case models.RedemptionPending:
			entry.Pending = row.Count
		case models.RedemptionApproved:
			entry.Approved = row.Count
		case models.RedemptionRejected:
			entry.Rejected = row.Count
		}
	}

	results := make([]repositories.RewardRedemptionCount, 0, len(grouped))
	for _, entry := range grouped {
		results = append(results, *entry)
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Total != results[j].Total {
			return results[i].Total > results[j].Total
		}
		return results[i].RewardName < results[j].RewardName
	})

	return results, nil
}

func (r *reportRepository) StudentActivities(ctx context.Context, filter repositories.CourseFilter) ([]repositories.StudentActivity, error) {
	var rows []struct {
		UserID           string
		FullName         string
		CourseName       string
		Coins            int
		TransactionCount int64
		LastActivity     *time.Time
	}

	if err := r.studentScope(ctx, filter).
		Select("users.id as user_id, users.full_name, "+
			"COALESCE(courses.name, '') as course_name, "+
			"COALESCE(balances.coins, 0) as coins, "+
			"COUNT(transactions.id) as transaction_count, "+
			"MAX(transactions.created_at) as last_activity").
		Joins("LEFT JOIN balances ON balances.user_id = users.id").
		Joins("LEFT JOIN courses ON courses.id = users.course_id").
		Joins("LEFT JOIN transactions ON transactions.user_id = users.id").
		Group("users.id, users.full_name, courses.name, balances.coins").
		Order("transaction_count DESC").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to get student activities: %w", err)
	}

	results := make([]repositories.StudentActivity, len(rows))
	for i, row := range rows {
		results[i] = repositories.StudentActivity{
			UserID:           row.UserID,
			FullName:         row.FullName,
			CourseName:       row.CourseName,
			Coins:            row.Coins,
			TransactionCount: row.TransactionCount,
			LastActivity:     row.LastActivity,
		}
	}
	return results, nil
}
