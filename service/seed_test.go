package service

import (
	"testing"

	"budgetly/config"
	"budgetly/models"
	"budgetly/scoring"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCategories(t *testing.T) {
	cats := DefaultCategories(3)

	byID := make(map[string]models.Category, len(cats))
	for _, c := range cats {
		assert.NotEmpty(t, c.ID)
		assert.Equal(t, uint(3), c.UserID)
		byID[c.ID] = c
	}
	assert.Len(t, byID, len(cats), "ids must be unique")

	// 子分类的父级必须是同类型的顶级分类
	for _, c := range cats {
		if c.ParentID == nil {
			continue
		}
		parent, ok := byID[*c.ParentID]
		require.True(t, ok)
		assert.Nil(t, parent.ParentID)
		assert.Equal(t, parent.Type, c.Type)
	}

	// 子分类汇总到顶级分类
	var scats []scoring.Category
	for _, c := range cats {
		scats = append(scats, ToScoringCategory(c))
	}
	lookup := scoring.BuildCategoryLookup(scats)
	assert.Len(t, lookup, len(cats))
	var groceries string
	for _, c := range cats {
		if c.Name == "买菜" {
			groceries = c.ID
		}
	}
	bucket, ok := lookup.Resolve(groceries)
	require.True(t, ok)
	assert.Equal(t, "餐饮", bucket)
}

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings(9, config.BudgetConfig{
		Currency:                "USD",
		LargeTransactionAmount:  1000,
		BudgetThresholdPercent:  80,
		CarryoverEnabledDefault: true,
	})
	assert.Equal(t, uint(9), s.UserID)
	assert.Equal(t, "USD", s.Currency)
	assert.True(t, s.CarryoverEnabled)
	assert.Equal(t, scoring.DefaultBudgetCycle(), s.BudgetCycle())
	assert.Equal(t, 1000.0, s.LargeTransactionAmount)
	assert.Equal(t, 80.0, s.BudgetThresholdPercent)
}
