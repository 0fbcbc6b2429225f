package validator

// ===== USER MANAGEMENT =====

type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	FullName string `json:"full_name" validate:"omitempty,max=200"`
	Role     string `json:"role" validate:"omitempty,user_role"`
	CourseID *uint  `json:"course_id" validate:"omitempty,gt=0"`
}

type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required,user_role"`
}

type UpdateCourseRequest struct {
	CourseID *uint `json:"course_id" validate:"omitempty,gt=0"`
}

// ===== COIN LEDGER =====

type GrantCoinsRequest struct {
	UserID      string `json:"user_id" validate:"required"`
	Amount      int    `json:"amount" validate:"required,coin_amount"`
	Description string `json:"description" validate:"required,max=500"`
}

type DeductCoinsRequest struct {
	UserID      string `json:"user_id" validate:"required"`
	Amount      int    `json:"amount" validate:"required,coin_amount"`
	Description string `json:"description" validate:"required,max=500"`
}

// ===== COURSES =====

type CourseCreateRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=200"`
	Description string `json:"description" validate:"omitempty,max=1000"`
}

type CourseUpdateRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=200"`
	Description string `json:"description" validate:"omitempty,max=1000"`
}

// ===== REWARDS =====

type RewardCreateRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=200"`
	Description string `json:"description" validate:"omitempty,max=1000"`
	Cost        int    `json:"cost" validate:"required,coin_amount"`
	Active      *bool  `json:"active"`
}

type RewardUpdateRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=200"`
	Description string `json:"description" validate:"omitempty,max=1000"`
	Cost        int    `json:"cost" validate:"required,coin_amount"`
	Active      *bool  `json:"active"`
}

type RedeemRequest struct {
	RewardID uint `json:"reward_id" validate:"required,gt=0"`
}

type ReviewRedemptionRequest struct {
	Notes string `json:"notes" validate:"omitempty,max=1000"`
}

// ===== SETTINGS =====

type EmailSettingsRequest struct {
	RequireConfirmation *bool `json:"require_confirmation" validate:"required"`
}

// ===== AUTH =====

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
