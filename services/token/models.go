package token

import (
	"time"
)

type RefreshToken struct {
	ID         string    `json:"id" gorm:"primaryKey;size:36"`
	Token      string    `json:"-" gorm:"uniqueIndex;size:255;not null"`
	UserID     uint      `json:"user_id" gorm:"not null;index:idx_user_live,priority:1"`
	DeviceInfo string    `json:"device_info" gorm:"size:500"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at" gorm:"not null;index:idx_user_live,priority:3"`
	IsRevoked  bool      `json:"is_revoked" gorm:"not null;default:false;index:idx_user_live,priority:2"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}
