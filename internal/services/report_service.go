package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/Chodo25/FaradayCoins/internal/repositories"
)

type reportService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewReportService(repo repositories.Repository, logger *slog.Logger) ReportService {
	return &reportService{
		repo:   repo,
		logger: logger,
	}
}

// coinBucketBounds defines the distribution buckets. Upper bound -1
// means unbounded.
var coinBucketBounds = []struct {
	label string
	lo    int
	hi    int
}{
	{"0-20", 0, 20},
	{"21-50", 21, 50},
	{"51-100", 51, 100},
	{"101-200", 101, 200},
	{"200+", 201, -1},
}

func (s *reportService) TopStudents(ctx context.Context, filter repositories.CourseFilter, limit int) ([]TopStudentEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	balances, err := s.repo.Report().StudentBalances(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to get student balances: %w", err)
	}

	sort.SliceStable(balances, func(i, j int) bool {
		return balances[i].Coins > balances[j].Coins
	})
	if len(balances) > limit {
		balances = balances[:limit]
	}

	entries := make([]TopStudentEntry, len(balances))
	for i, b := range balances {
		entries[i] = TopStudentEntry{
			UserID:     b.UserID,
			FullName:   b.FullName,
			CourseName: b.CourseName,
			Coins:      b.Coins,
		}
	}
	return entries, nil
}

// CoinDistribution buckets students by balance. Empty buckets are
// omitted.
func (s *reportService) CoinDistribution(ctx context.Context, filter repositories.CourseFilter) ([]CoinBucket, error) {
	balances, err := s.repo.Report().StudentBalances(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to get student balances: %w", err)
	}

	counts := make([]int, len(coinBucketBounds))
	for _, b := range balances {
		for i, bucket := range coinBucketBounds {
			if b.Coins >= bucket.lo && (bucket.hi < 0 || b.Coins <= bucket.hi) {
				counts[i]++
				break
			}
		}
	}

	buckets := make([]CoinBucket, 0, len(coinBucketBounds))
	for i, bucket := range coinBucketBounds {
		if counts[i] == 0 {
			continue
		}
		buckets = append(buckets, CoinBucket{Label: bucket.label, Count: counts[i]})
	}
	return buckets, nil
}

func (s *reportService) TransactionsOverTime(ctx context.Context, filter repositories.CourseFilter) ([]MonthlyActivityPoint, error) {
	points, err := s.repo.Report().TransactionsByMonth(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions by month: %w", err)
	}
	return points, nil
}

func (s *reportService) RedemptionSummary(ctx context.Context, filter repositories.CourseFilter) ([]RedemptionSummaryEntry, error) {
	entries, err := s.repo.Report().RedemptionsByReward(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to get redemptions by reward: %w", err)
	}
	return entries, nil
}

func (s *reportService) StudentActivity(ctx context.Context, filter repositories.CourseFilter) ([]StudentActivityEntry, error) {
	entries, err := s.repo.Report().StudentActivities(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to get student activities: %w", err)
	}
	return entries, nil
}
