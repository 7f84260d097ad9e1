package scoring

// CategoryLookup 分类ID -> 所属顶级预算桶名称
type CategoryLookup map[string]string

// BuildCategoryLookup 根据扁平分类列表构建查找表
// 顶级分类映射到自身名称；子分类映射到父分类名称。
// 父分类不在顶级集合中（悬空引用或三级嵌套）的子分类直接忽略。
func BuildCategoryLookup(categories []Category) CategoryLookup {
	lookup := make(CategoryLookup, len(categories))

	topLevel := make(map[string]string)
	for _, c := range categories {
		if c.IsTopLevel() {
			topLevel[c.ID] = c.Name
			lookup[c.ID] = c.Name
		}
	}

	for _, c := range categories {
		if c.IsTopLevel() {
			continue
		}
		if parentName, ok := topLevel[*c.ParentID]; ok {
			lookup[c.ID] = parentName
		}
	}
	return lookup
}

// Resolve 返回分类所属的预算桶名称
func (l CategoryLookup) Resolve(categoryID string) (string, bool) {
	name, ok := l[categoryID]
	return name, ok
}
