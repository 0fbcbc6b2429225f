package models

import (
	"time"

	"gorm.io/datatypes"
)

// Setting is a key/value store for instance configuration edited at
// runtime, currently only the email-confirmation settings.
type Setting struct {
	Key       string         `json:"key" gorm:"primaryKey;size:100"`
	Value     datatypes.JSON `json:"value"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (Setting) TableName() string {
	return "settings"
}

const SettingEmailConfirmation = "email_confirmation"
