// Package scoring 财务健康评分与分类汇总。
//
// 包内全部是纯函数：输入为已校验的内存快照（分类、交易、预算），
// 输出为派生结果，不持有任何状态，也不访问数据库或全局会话。
package scoring

import "time"

// TransactionType 收支类型
type TransactionType string

const (
	// TypeIncome 收入
	TypeIncome TransactionType = "income"
	// TypeExpense 支出
	TypeExpense TransactionType = "expense"
)

// Category 分类（最多两级：顶级预算桶 + 子分类）
type Category struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Type     TransactionType `json:"type"`
	ParentID *string         `json:"parent_id"` // nil 表示顶级分类
}

// IsTopLevel 是否为顶级分类
func (c Category) IsTopLevel() bool {
	return c.ParentID == nil
}

// Transaction 交易记录，金额恒为非负，收支方向由 Type 决定
type Transaction struct {
	ID          string          `json:"id"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Amount      float64         `json:"amount"`
	Category    string          `json:"category"` // 分类ID，通常为子分类
	Type        TransactionType `json:"type"`
	Account     string          `json:"account"`
	Tags        []string        `json:"tags"`
}

// BudgetCategory 预算行，按名称与顶级分类匹配
type BudgetCategory struct {
	Name      string  `json:"name"`
	Allocated float64 `json:"allocated"`
	Spent     float64 `json:"spent"`
	Carryover float64 `json:"carryover,omitempty"` // 正数为上期结余，负数为上期超支
}

// Snapshot 一次计算所需的全部输入
type Snapshot struct {
	Categories   []Category
	Transactions []Transaction
	Budget       []BudgetCategory
}
