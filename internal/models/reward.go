package models

import (
	"time"
)

type RedemptionStatus string

const (
	RedemptionPending  RedemptionStatus = "pending"
	RedemptionApproved RedemptionStatus = "approved"
	RedemptionRejected RedemptionStatus = "rejected"
)

func (s RedemptionStatus) Valid() bool {
	switch s {
	case RedemptionPending, RedemptionApproved, RedemptionRejected:
		return true
	}
	return false
}

type Reward struct {
	ID          uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string    `json:"name" gorm:"not null;size:100"`
	Description string    `json:"description" gorm:"size:500"`
	Cost        int       `json:"cost" gorm:"not null"`
	Active      bool      `json:"active" gorm:"not null;default:true"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Reward) TableName() string {
	return "rewards"
}

type RewardRedemption struct {
	ID         uint             `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID     string           `json:"user_id" gorm:"index;not null;size:255"`
	RewardID   uint             `json:"reward_id" gorm:"index;not null"`
	Reward     *Reward          `json:"reward,omitempty" gorm:"foreignKey:RewardID"`
	Status     RedemptionStatus `json:"status" gorm:"not null;size:20;default:pending"`
	Notes      string           `json:"notes" gorm:"size:500"`
	RedeemedAt time.Time        `json:"redeemed_at"`
}

func (RewardRedemption) TableName() string {
	return "reward_redemptions"
}
