package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RecurringPayment 周期性账单/订阅
type RecurringPayment struct {
	ID           string         `json:"id" gorm:"primaryKey;size:36"`
	UserID       uint           `json:"-" gorm:"index;not null"`
	Name         string         `json:"name" gorm:"size:100;not null"`
	Amount       float64        `json:"amount" gorm:"not null"`
	IsVariable   bool           `json:"is_variable"`
	CategoryID   string         `json:"category" gorm:"size:36"`
	BillingCycle string         `json:"billing_cycle" gorm:"size:20;not null"` // monthly / quarterly / annually
	NextDueDate  time.Time      `json:"next_due_date" gorm:"index"`
	IsActive     bool           `json:"is_active"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}

func (RecurringPayment) TableName() string {
	return "recurring_payments"
}

func (r *RecurringPayment) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
