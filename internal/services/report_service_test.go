package services

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/Chodo25/FaradayCoins/internal/models"
	"github.com/Chodo25/FaradayCoins/internal/repositories"
)

func newReportFixture(repo *mockRepository) ReportService {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	return NewReportService(repo, logger)
}

func TestReportService_TopStudents(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepository()
	seedStudent(repo, "s-1", 10)
	seedStudent(repo, "s-2", 50)
	seedStudent(repo, "s-3", 5)
	seedStudent(repo, "s-4", 200)
	svc := newReportFixture(repo)

	top, err := svc.TopStudents(ctx, repositories.CourseFilter{}, 10)
	if err != nil {
		t.Fatalf("TopStudents failed: %v", err)
	}

	want := []int{200, 50, 10, 5}
	if len(top) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(top))
	}
	for i, coins := range want {
		if top[i].Coins != coins {
			t.Errorf("position %d: expected %d coins, got %d", i, coins, top[i].Coins)
		}
	}

	// Limit caps the list
	limited, err := svc.TopStudents(ctx, repositories.CourseFilter{}, 2)
	if err != nil {
		t.Fatalf("TopStudents with limit failed: %v", err)
	}
	if len(limited) != 2 || limited[0].Coins != 200 || limited[1].Coins != 50 {
		t.Errorf("unexpected limited result: %+v", limited)
	}
}

func TestReportService_CoinDistribution(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepository()
	seedStudent(repo, "s-1", 5)
	seedStudent(repo, "s-2", 25)
	seedStudent(repo, "s-3", 60)
	seedStudent(repo, "s-4", 150)
	seedStudent(repo, "s-5", 300)
	svc := newReportFixture(repo)

	buckets, err := svc.CoinDistribution(ctx, repositories.CourseFilter{})
	if err != nil {
		t.Fatalf("CoinDistribution failed: %v", err)
	}

	want := map[string]int{
		"0-20":    1,
		"21-50":   1,
		"51-100":  1,
		"101-200": 1,
		"200+":    1,
	}
	if len(buckets) != len(want) {
		t.Fatalf("expected %d buckets, got %d: %+v", len(want), len(buckets), buckets)
	}
	for _, bucket := range buckets {
		if want[bucket.Label] != bucket.Count {
			t.Errorf("bucket %s: expected %d, got %d", bucket.Label, want[bucket.Label], bucket.Count)
		}
	}
}

func TestReportService_CoinDistribution_DropsEmptyBuckets(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepository()
	seedStudent(repo, "s-1", 0)
	seedStudent(repo, "s-2", 20)
	svc := newReportFixture(repo)

	buckets, err := svc.CoinDistribution(ctx, repositories.CourseFilter{})
	if err != nil {
		t.Fatalf("CoinDistribution failed: %v", err)
	}
	if len(buckets) != 1 {
		t.Fatalf("expected 1 bucket, got %d: %+v", len(buckets), buckets)
	}
	if buckets[0].Label != "0-20" || buckets[0].Count != 2 {
		t.Errorf("unexpected bucket: %+v", buckets[0])
	}
}

func TestReportService_TopStudents_CourseFilter(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepository()
	courseID := uint(1)
	repo.courses[courseID] = &models.Course{ID: courseID, Name: "Physics"}

	seedStudent(repo, "s-1", 10)
	repo.users["s-1"].CourseID = &courseID
	seedStudent(repo, "s-2", 99)

	svc := newReportFixture(repo)

	top, err := svc.TopStudents(ctx, repositories.CourseFilter{CourseID: &courseID}, 10)
	if err != nil {
		t.Fatalf("TopStudents failed: %v", err)
	}
	if len(top) != 1 || top[0].UserID != "s-1" {
		t.Errorf("expected only s-1, got %+v", top)
	}
	if top[0].CourseName != "Physics" {
		t.Errorf("expected course name Physics, got %q", top[0].CourseName)
	}
}
