package model

import (
	"time"
)

type UserRole string

const (
	RoleAdmin    UserRole = "Admin"
	RoleCustomer UserRole = "Customer"
)

type User struct {
	ID                uint      `gorm:"primarykey" json:"id"`
	Email             string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash      string    `gorm:"not null" json:"-"`
	Role              UserRole  `gorm:"type:varchar(20);not null" json:"role"`
	FirstName         string    `gorm:"size:100" json:"firstName"`
	LastName          string    `gorm:"size:100" json:"lastName"`
	IsActive          bool      `gorm:"not null" json:"isActive"`
	IsPasswordChanged bool      `gorm:"not null" json:"isPasswordChanged"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

// RequiresPasswordChange reports whether the user still signs in with an issued password
func (u *User) RequiresPasswordChange() bool {
	return !u.IsPasswordChanged
}
