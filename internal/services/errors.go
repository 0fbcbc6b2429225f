package services

import "errors"

// Generic service errors
var (
	ErrValidationFailed = errors.New("validation failed")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("forbidden")
	ErrBadRequest       = errors.New("bad request")
	ErrConflict         = errors.New("conflict")
)

// User and provisioning errors
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrAccountNotFound = errors.New("account not found")
	ErrDuplicateEmail  = errors.New("email already registered")
	ErrSelfDeletion    = errors.New("cannot delete own account")
)

// Course errors
var (
	ErrCourseNotFound      = errors.New("course not found")
	ErrDuplicateCourseName = errors.New("course name already exists")
)

// Coin ledger errors
var (
	ErrInsufficientCoins = errors.New("insufficient coins")
	ErrBalanceNotFound   = errors.New("balance not found")
)

// Reward errors
var (
	ErrRewardNotFound       = errors.New("reward not found")
	ErrRewardInactive       = errors.New("reward is not active")
	ErrRedemptionNotFound   = errors.New("redemption not found")
	ErrRedemptionNotPending = errors.New("redemption already reviewed")
)
