package service

import (
	"fmt"
	"time"

	"budgetly/models"
	"budgetly/scoring"

	"gorm.io/gorm"
)

// LoadSnapshot 读取用户在 [start, end] 周期内的评分输入
// 行数据在此处转换为评分包的值类型，不合法的数据直接报错。
func LoadSnapshot(db *gorm.DB, userID uint, start, end time.Time) (scoring.Snapshot, error) {
	var (
		cats   []models.Category
		txs    []models.Transaction
		budget []models.BudgetCategory
	)
	if err := db.Where("user_id = ?", userID).Order("sort ASC").Find(&cats).Error; err != nil {
		return scoring.Snapshot{}, fmt.Errorf("查询分类失败: %w", err)
	}
	if err := db.Where("user_id = ? AND date >= ? AND date <= ?", userID, start, end).
		Order("date DESC").Find(&txs).Error; err != nil {
		return scoring.Snapshot{}, fmt.Errorf("查询交易失败: %w", err)
	}
	if err := db.Where("user_id = ?", userID).Order("sort ASC, id ASC").Find(&budget).Error; err != nil {
		return scoring.Snapshot{}, fmt.Errorf("查询预算失败: %w", err)
	}
	return BuildSnapshot(cats, txs, budget)
}

// BuildSnapshot 将数据库行转换为评分快照
func BuildSnapshot(cats []models.Category, txs []models.Transaction, budget []models.BudgetCategory) (scoring.Snapshot, error) {
	snap := scoring.Snapshot{
		Categories:   make([]scoring.Category, 0, len(cats)),
		Transactions: make([]scoring.Transaction, 0, len(txs)),
		Budget:       make([]scoring.BudgetCategory, 0, len(budget)),
	}
	for _, c := range cats {
		if !models.IsValidTransactionType(c.Type) {
			return scoring.Snapshot{}, fmt.Errorf("分类 %s 类型非法: %q", c.ID, c.Type)
		}
		snap.Categories = append(snap.Categories, ToScoringCategory(c))
	}
	for _, t := range txs {
		st, err := ToScoringTransaction(t)
		if err != nil {
			return scoring.Snapshot{}, err
		}
		snap.Transactions = append(snap.Transactions, st)
	}
	for _, b := range budget {
		snap.Budget = append(snap.Budget, scoring.BudgetCategory{
			Name:      b.Name,
			Allocated: b.Allocated,
			Carryover: b.Carryover,
		})
	}
	return snap, nil
}

// ToScoringCategory 分类行转换
func ToScoringCategory(c models.Category) scoring.Category {
	return scoring.Category{
		ID:       c.ID,
		Name:     c.Name,
		Type:     scoring.TransactionType(c.Type),
		ParentID: c.ParentID,
	}
}

// ToScoringTransaction 交易行转换，金额为负或类型非法时报错
func ToScoringTransaction(t models.Transaction) (scoring.Transaction, error) {
	if !models.IsValidTransactionType(t.Type) {
		return scoring.Transaction{}, fmt.Errorf("交易 %s 类型非法: %q", t.ID, t.Type)
	}
	if t.Amount < 0 {
		return scoring.Transaction{}, fmt.Errorf("交易 %s 金额为负: %v", t.ID, t.Amount)
	}
	return scoring.Transaction{
		ID:          t.ID,
		Date:        t.Date,
		Description: t.Description,
		Amount:      t.Amount,
		Category:    t.CategoryID,
		Type:        scoring.TransactionType(t.Type),
		Account:     t.Account,
		Tags:        t.Tags,
	}, nil
}
