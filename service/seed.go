package service

import (
	"errors"

	"budgetly/config"
	"budgetly/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type seedCategory struct {
	Name     string
	Color    string
	Children []string
}

var defaultIncomeCategories = []seedCategory{
	{Name: "工资", Color: "#10b981"},
	{Name: "二手出售", Color: "#3b82f6"},
	{Name: "优惠券", Color: "#a855f7"},
	{Name: "其他收入", Color: "#64748b"},
}

var defaultExpenseCategories = []seedCategory{
	{Name: "住房", Color: "#14b8a6", Children: []string{"房租/房贷", "房产税"}},
	{Name: "水电网", Color: "#f59e0b", Children: []string{"电费", "水费", "网费"}},
	{Name: "交通", Color: "#3b82f6", Children: []string{"燃油", "公共交通"}},
	{Name: "餐饮", Color: "#ef4444", Children: []string{"买菜", "外出就餐"}},
	{Name: "个人护理", Color: "#ec4899", Children: []string{"洗护用品", "理发"}},
}

// DefaultCategories 新用户的默认分类树，子分类 ParentID 指向所属顶级分类
func DefaultCategories(userID uint) []models.Category {
	var cats []models.Category
	add := func(typ string, seeds []seedCategory) {
		for i, s := range seeds {
			parentID := uuid.NewString()
			cats = append(cats, models.Category{ID: parentID, UserID: userID, Name: s.Name, Type: typ, Color: s.Color, Sort: (i + 1) * 10})
			for j, name := range s.Children {
				pid := parentID
				cats = append(cats, models.Category{
					ID:       uuid.NewString(),
					UserID:   userID,
					Name:     name,
					Type:     typ,
					ParentID: &pid,
					Color:    s.Color,
					Sort:     (j + 1) * 10,
				})
			}
		}
	}
	add(models.TransactionIncome, defaultIncomeCategories)
	add(models.TransactionExpense, defaultExpenseCategories)
	return cats
}

// DefaultSettings 新用户的偏好设置，取自配置中的 budget 段
func DefaultSettings(userID uint, cfg config.BudgetConfig) models.UserSettings {
	return models.UserSettings{
		UserID:                 userID,
		Currency:               cfg.Currency,
		CarryoverEnabled:       cfg.CarryoverEnabledDefault,
		CycleType:              "monthly",
		CycleDay:               1,
		EmailSummariesEnabled:  false,
		LargeTransactionAmount: cfg.LargeTransactionAmount,
		BudgetThresholdPercent: cfg.BudgetThresholdPercent,
		DefaultTransactionType: models.TransactionExpense,
		DefaultAccount:         "现金",
	}
}

// SeedUser 为新注册用户写入默认设置与分类
func SeedUser(tx *gorm.DB, userID uint, cfg config.BudgetConfig) error {
	settings := DefaultSettings(userID, cfg)
	if err := tx.Create(&settings).Error; err != nil {
		return err
	}
	cats := DefaultCategories(userID)
	return tx.Create(&cats).Error
}

// LoadSettings 读取用户设置，不存在时返回默认值（不落库）
func LoadSettings(db *gorm.DB, userID uint, cfg config.BudgetConfig) (models.UserSettings, error) {
	var settings models.UserSettings
	err := db.Where("user_id = ?", userID).First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return DefaultSettings(userID, cfg), nil
	}
	return settings, err
}
