package model

import (
	"time"
)

type Customer struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	CustomerCode string    `gorm:"size:50;not null;uniqueIndex:idx_customers_active_code,where:is_active = true" json:"customerCode"`
	Name         string    `gorm:"size:100;not null;index" json:"name"`
	Email        *string   `gorm:"size:255" json:"email"`
	Phone        *string   `gorm:"size:50" json:"phone"`
	Address      *string   `gorm:"size:500" json:"address"`
	IsActive     bool      `gorm:"not null;index" json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"-"`
}

func (Customer) TableName() string {
	return "customers"
}
