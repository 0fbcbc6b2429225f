package repositories

import (
	"errors"
	"time"

	"github.com/Chodo25/FaradayCoins/internal/models"
)

// Shared sentinel errors returned by all repository implementations.
var (
	ErrNotFound        = errors.New("record not found")
	ErrAccountNotFound = errors.New("identity-provider account not found")
)

// ===== SHARED FILTER STRUCTS =====

type UserFilters struct {
	Role     *models.UserRole
	CourseID *uint
	Query    string // name or email search
	Limit    int
	Offset   int
}

type TransactionFilters struct {
	Type     *models.TransactionType
	DateFrom *time.Time
	DateTo   *time.Time
	Limit    int
	Offset   int
}

type RedemptionFilters struct {
	Status   *models.RedemptionStatus
	UserID   *string
	RewardID *uint
	Limit    int
	Offset   int
}

// ===== REPORT DATA STRUCTS =====

// CourseFilter selects students by course; nil means all courses.
type CourseFilter struct {
	CourseID *uint
}

type StudentBalance struct {
	UserID     string `json:"user_id"`
	FullName   string `json:"full_name"`
	CourseName string `json:"course_name"`
	Coins      int    `json:"coins"`
}

type MonthlyTransactionCount struct {
	Month     string `json:"month"` // "M/YYYY"
	Adds      int64  `json:"adds"`
	Subtracts int64  `json:"subtracts"`
	Redeems   int64  `json:"redeems"`
}

type RewardRedemptionCount struct {
	RewardName string `json:"reward_name"`
	Pending    int64  `json:"pending"`
	Approved   int64  `json:"approved"`
	Rejected   int64  `json:"rejected"`
	Total      int64  `json:"total"`
}

type StudentActivity struct {
	UserID           string     `json:"user_id"`
	FullName         string     `json:"full_name"`
	CourseName       string     `json:"course_name"`
	Coins            int        `json:"coins"`
	TransactionCount int64      `json:"transaction_count"`
	LastActivity     *time.Time `json:"last_activity"`
}
