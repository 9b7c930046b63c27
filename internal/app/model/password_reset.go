package model

import (
	"time"
)

type PasswordReset struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"not null;index" json:"userId"`
	TokenHash string     `gorm:"size:64;not null;uniqueIndex" json:"-"` // sha256 of the emailed token
	ExpiresAt time.Time  `gorm:"not null;index" json:"expiresAt"`
	Used      bool       `gorm:"not null" json:"used"`
	UsedAt    *time.Time `json:"usedAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (PasswordReset) TableName() string {
	return "password_resets"
}

// IsValidAt reports whether the token can still be redeemed at the given instant
func (p *PasswordReset) IsValidAt(now time.Time) bool {
	return !p.Used && now.Before(p.ExpiresAt)
}
