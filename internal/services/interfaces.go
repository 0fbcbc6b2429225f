package services

import (
	"context"

	"github.com/Chodo25/FaradayCoins/internal/models"
	"github.com/Chodo25/FaradayCoins/internal/repositories"
	"github.com/Chodo25/FaradayCoins/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Use validator request types
type CreateUserRequest = validator.CreateUserRequest
type UpdateRoleRequest = validator.UpdateRoleRequest
type UpdateCourseRequest = validator.UpdateCourseRequest
type GrantCoinsRequest = validator.GrantCoinsRequest
type DeductCoinsRequest = validator.DeductCoinsRequest
type CourseCreateRequest = validator.CourseCreateRequest
type CourseUpdateRequest = validator.CourseUpdateRequest
type RewardCreateRequest = validator.RewardCreateRequest
type RewardUpdateRequest = validator.RewardUpdateRequest
type RedeemRequest = validator.RedeemRequest
type ReviewRedemptionRequest = validator.ReviewRedemptionRequest
type EmailSettingsRequest = validator.EmailSettingsRequest

type UserResponse struct {
	*models.User
	Coins int `json:"coins"`
}

type UserListResponse struct {
	Users []*UserResponse `json:"users"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Size  int             `json:"size"`
}

type BalanceResponse struct {
	UserID string `json:"user_id"`
	Coins  int    `json:"coins"`
}

type TransactionListResponse struct {
	Transactions []*models.Transaction `json:"transactions"`
	Total        int64                 `json:"total"`
	Page         int                   `json:"page"`
	Size         int                   `json:"size"`
}

type RedemptionListResponse struct {
	Redemptions []*models.RewardRedemption `json:"redemptions"`
	Total       int64                      `json:"total"`
	Page        int                        `json:"page"`
	Size        int                        `json:"size"`
}

// ===== PROVISIONING DTOs =====

// ReconcileOutcome tags which side of the dual-store pair existed when
// a reconciliation ran.
type ReconcileOutcome string

const (
	ReconcileBothExist    ReconcileOutcome = "both_exist"
	ReconcileOnlyIdentity ReconcileOutcome = "only_identity"
	ReconcileOnlyRow      ReconcileOutcome = "only_row"
	ReconcileNeither      ReconcileOutcome = "neither"
)

type ReconcileResult struct {
	Outcome   ReconcileOutcome `json:"outcome"`
	AccountID string           `json:"account_id,omitempty"`
	UserID    string           `json:"user_id,omitempty"`
}

type SetupResult struct {
	UserID  string `json:"user_id"`
	Email   string `json:"email"`
	Created bool   `json:"created"`
	Message string `json:"message"`
}

// ===== REPORT DTOs =====

type TopStudentEntry struct {
	UserID     string `json:"user_id"`
	FullName   string `json:"full_name"`
	CourseName string `json:"course_name,omitempty"`
	Coins      int    `json:"coins"`
}

type CoinBucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

type MonthlyActivityPoint = repositories.MonthlyTransactionCount
type RedemptionSummaryEntry = repositories.RewardRedemptionCount
type StudentActivityEntry = repositories.StudentActivity

type EmailSettings struct {
	RequireConfirmation bool `json:"require_confirmation"`
}

// ===== SERVICE INTERFACES =====

// ProvisioningService keeps the identity provider and the users table in
// step: account and row are created together, and drift between the two
// is repairable.
type ProvisioningService interface {
	Reconcile(ctx context.Context, email string) (*ReconcileResult, error)
	EnsureUser(ctx context.Context, accountID, email string) (*models.User, error)
	CreateUser(ctx context.Context, req *CreateUserRequest, createdBy string) (*UserResponse, error)
	SetupAdmin(ctx context.Context) (*SetupResult, error)
	PromoteTeacher(ctx context.Context) (*SetupResult, error)
}

type UserService interface {
	GetByID(ctx context.Context, id string) (*UserResponse, error)
	GetByEmail(ctx context.Context, email string) (*UserResponse, error)
	List(ctx context.Context, filters repositories.UserFilters) (*UserListResponse, error)
	UpdateRole(ctx context.Context, id string, req *UpdateRoleRequest, actorID string) error
	UpdateCourse(ctx context.Context, id string, req *UpdateCourseRequest) error
	Delete(ctx context.Context, id string, actorID string) error
}

type CoinService interface {
	Grant(ctx context.Context, req *GrantCoinsRequest, grantedBy string) (*BalanceResponse, error)
	Deduct(ctx context.Context, req *DeductCoinsRequest, deductedBy string) (*BalanceResponse, error)
	Balance(ctx context.Context, userID string) (*BalanceResponse, error)
	History(ctx context.Context, userID string, filters repositories.TransactionFilters) (*TransactionListResponse, error)
}

type CourseService interface {
	GetByID(ctx context.Context, id uint) (*models.Course, error)
	List(ctx context.Context) ([]*models.Course, error)
	Create(ctx context.Context, req *CourseCreateRequest, createdBy string) (*models.Course, error)
	Update(ctx context.Context, id uint, req *CourseUpdateRequest) (*models.Course, error)
	Delete(ctx context.Context, id uint) error
}

type RewardService interface {
	List(ctx context.Context, activeOnly bool) ([]*models.Reward, error)
	Create(ctx context.Context, req *RewardCreateRequest) (*models.Reward, error)
	Update(ctx context.Context, id uint, req *RewardUpdateRequest) (*models.Reward, error)
	Delete(ctx context.Context, id uint) error

	Redeem(ctx context.Context, userID string, req *RedeemRequest) (*models.RewardRedemption, error)
	ListRedemptions(ctx context.Context, filters repositories.RedemptionFilters) (*RedemptionListResponse, error)
	Approve(ctx context.Context, id uint, req *ReviewRedemptionRequest, reviewerID string) error
	Reject(ctx context.Context, id uint, req *ReviewRedemptionRequest, reviewerID string) error
}

type ReportService interface {
	TopStudents(ctx context.Context, filter repositories.CourseFilter, limit int) ([]TopStudentEntry, error)
	CoinDistribution(ctx context.Context, filter repositories.CourseFilter) ([]CoinBucket, error)
	TransactionsOverTime(ctx context.Context, filter repositories.CourseFilter) ([]MonthlyActivityPoint, error)
	RedemptionSummary(ctx context.Context, filter repositories.CourseFilter) ([]RedemptionSummaryEntry, error)
	StudentActivity(ctx context.Context, filter repositories.CourseFilter) ([]StudentActivityEntry, error)
}

// ExportService renders reports as downloadable spreadsheets.
type ExportService interface {
	ExportStudentReport(ctx context.Context, filter repositories.CourseFilter) ([]byte, error)
}

type SettingsService interface {
	GetEmailSettings(ctx context.Context) (*EmailSettings, error)
	UpdateEmailSettings(ctx context.Context, req *EmailSettingsRequest) (*EmailSettings, error)
}

// ServiceManager wires and owns all service instances
type ServiceManager interface {
	Provisioning() ProvisioningService
	User() UserService
	Coin() CoinService
	Course() CourseService
	Reward() RewardService
	Report() ReportService
	Export() ExportService
	Settings() SettingsService

	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
