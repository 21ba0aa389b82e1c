package models

// FallbackColor is used for a transaction whose category is not in the catalogue.
const FallbackColor = "#6B7280"

// Category is an entry of the display catalogue. Transactions refer to a
// category by name only, so a missing entry is tolerated.
type Category struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Type  TransactionType `json:"type"`
	Color string          `json:"color"`
}

var defaultCategories = []Category{
	{ID: "1", Name: "Salary", Type: Income, Color: "#10B981"},
	{ID: "2", Name: "Bonus", Type: Income, Color: "#3B82F6"},
	{ID: "3", Name: "Investments", Type: Income, Color: "#8B5CF6"},
	{ID: "4", Name: "Other Income", Type: Income, Color: "#EC4899"},
	{ID: "5", Name: "Food", Type: Expense, Color: "#EF4444"},
	{ID: "6", Name: "Transport", Type: Expense, Color: "#F59E0B"},
	{ID: "7", Name: "Housing", Type: Expense, Color: "#6366F1"},
	{ID: "8", Name: "Entertainment", Type: Expense, Color: "#8B5CF6"},
	{ID: "9", Name: "Shopping", Type: Expense, Color: "#EC4899"},
	{ID: "10", Name: "Utilities", Type: Expense, Color: "#14B8A6"},
	{ID: "11", Name: "Health", Type: Expense, Color: "#10B981"},
	{ID: "12", Name: "Education", Type: Expense, Color: "#3B82F6"},
	{ID: "13", Name: "Other", Type: Expense, Color: "#6B7280"},
}

// DefaultCategories returns a fresh copy of the built-in catalogue.
func DefaultCategories() []Category {
	out := make([]Category, len(defaultCategories))
	copy(out, defaultCategories)
	return out
}

// FindCategory looks a category up by exact, case-sensitive name.
func FindCategory(categories []Category, name string) (Category, bool) {
	for _, c := range categories {
		if c.Name == name {
			return c, true
		}
	}
	return Category{}, false
}
