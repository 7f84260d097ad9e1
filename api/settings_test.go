package api

import (
	"testing"

	"budgetly/models"

	"github.com/stretchr/testify/assert"
)

func ptr[T any](v T) *T { return &v }

func baseSettings() models.UserSettings {
	return models.UserSettings{
		UserID:                 1,
		Currency:               "CNY",
		CarryoverEnabled:       true,
		CycleType:              "monthly",
		CycleDay:               1,
		LargeTransactionAmount: 1000,
		BudgetThresholdPercent: 80,
		DefaultTransactionType: models.TransactionExpense,
	}
}

func TestApplySettings(t *testing.T) {
	s := baseSettings()
	msg := applySettings(&s, UpdateSettingsRequest{
		Currency:               ptr(" usd "),
		CarryoverEnabled:       ptr(false),
		CycleType:              ptr("custom_day"),
		CycleDay:               ptr(15),
		BudgetThresholdPercent: ptr(0.0),
		DefaultAccount:         ptr(" 银行卡 "),
	})
	assert.Empty(t, msg)
	assert.Equal(t, "USD", s.Currency)
	assert.False(t, s.CarryoverEnabled)
	assert.Equal(t, "custom_day", s.CycleType)
	assert.Equal(t, 15, s.CycleDay)
	assert.Equal(t, 0.0, s.BudgetThresholdPercent)
	assert.Equal(t, "银行卡", s.DefaultAccount)
	// 未传字段保持不变
	assert.Equal(t, 1000.0, s.LargeTransactionAmount)
}

func TestApplySettings_MonthlyResetsDay(t *testing.T) {
	s := baseSettings()
	s.CycleType, s.CycleDay = "custom_day", 20

	assert.Empty(t, applySettings(&s, UpdateSettingsRequest{CycleType: ptr("monthly")}))
	assert.Equal(t, "monthly", s.CycleType)
	assert.Equal(t, 1, s.CycleDay)
}

func TestApplySettings_Invalid(t *testing.T) {
	cases := map[string]UpdateSettingsRequest{
		"empty currency": {Currency: ptr("  ")},
		"cycle day":      {CycleType: ptr("custom_day"), CycleDay: ptr(32)},
		"cycle type":     {CycleType: ptr("weekly")},
		"large amount":   {LargeTransactionAmount: ptr(-1.0)},
		"threshold":      {BudgetThresholdPercent: ptr(120.0)},
		"default type":   {DefaultTransactionType: ptr("transfer")},
	}
	for name, req := range cases {
		s := baseSettings()
		assert.NotEmpty(t, applySettings(&s, req), name)
	}
}
