package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	// TransactionIncome 收入
	TransactionIncome = "income"
	// TransactionExpense 支出
	TransactionExpense = "expense"
)

// Transaction 交易记录（收入与支出统一存储，金额恒为非负）
type Transaction struct {
	ID          string         `json:"id" gorm:"primaryKey;size:36"`
	UserID      uint           `json:"-" gorm:"index;not null"`
	Date        time.Time      `json:"date" gorm:"index;not null"`
	Description string         `json:"description" gorm:"size:255"`
	Amount      float64        `json:"amount" gorm:"not null"`
	CategoryID  string         `json:"category" gorm:"size:36;index"`
	Type        string         `json:"type" gorm:"size:10;not null;index"`
	Account     string         `json:"account" gorm:"size:50"`
	Tags        []string       `json:"tags" gorm:"serializer:json;type:json"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Transaction) TableName() string {
	return "transactions"
}

// BeforeCreate 未指定ID时生成 UUID
func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// IsValidTransactionType 校验收支类型
func IsValidTransactionType(s string) bool {
	return s == TransactionIncome || s == TransactionExpense
}
