package mealplans

// BuildShoppingList collects the ingredients of breakfast, lunch and dinner in
// plan order, keeping the first occurrence of each. Snacks are not listed.
func BuildShoppingList(plan Plan) []string {
	seen := make(map[string]struct{})
	list := make([]string, 0)
	for _, ingredients := range [][]string{
		plan.Breakfast.Ingredients,
		plan.Lunch.Ingredients,
		plan.Dinner.Ingredients,
	} {
		for _, ingredient := range ingredients {
			if _, ok := seen[ingredient]; ok {
				continue
			}
			seen[ingredient] = struct{}{}
			list = append(list, ingredient)
		}
	}
	return list
}

// Paginate returns the items of page (1-based, clamped to the valid range)
// along with the effective page and the page count.
func Paginate(items []string, page, pageSize int) ([]string, int, int) {
	if pageSize <= 0 {
		pageSize = DefaultShoppingListPageSize
	}
	totalPages := (len(items) + pageSize - 1) / pageSize
	if page < 1 {
		page = 1
	}
	if totalPages > 0 && page > totalPages {
		page = totalPages
	}

	start := (page - 1) * pageSize
	if start >= len(items) {
		return []string{}, page, totalPages
	}
	end := min(start+pageSize, len(items))
	return items[start:end], page, totalPages
}
