package core

// Category is an entry of the static category catalog.
type Category struct {
	Key    string `json:"key"`
	Label  string `json:"label"`
	Symbol string `json:"symbol"` // icon reference, opaque to the backend
}

// SalaryKey labels generated income and is the default income source.
const SalaryKey = "salary"

// ExpenseCategories is the catalog offered by the expense entry flow.
var ExpenseCategories = []Category{
	{Key: "groceries", Label: "Groceries", Symbol: "cart"},
	{Key: "food", Label: "Cafe", Symbol: "fork.knife"},
	{Key: "transport", Label: "Transport", Symbol: "bus"},
	{Key: "car", Label: "Car", Symbol: "car"},
	{Key: "home", Label: "Home", Symbol: "house"},
	{Key: "health", Label: "Health", Symbol: "cross.case"},
	{Key: "games", Label: "Games", Symbol: "gamecontroller"},
	{Key: "travel", Label: "Travel", Symbol: "airplane"},
	{Key: "phone", Label: "Phone", Symbol: "phone"},
	{Key: "savings", Label: "Savings", Symbol: "banknote"},
}

// IncomeCategories is the catalog offered by the income entry flow.
var IncomeCategories = []Category{
	{Key: SalaryKey, Label: "Salary", Symbol: "banknote"},
	{Key: "bonus", Label: "Bonus", Symbol: "gift.fill"},
	{Key: "freelance", Label: "Freelance", Symbol: "laptopcomputer"},
	{Key: "investment", Label: "Investments", Symbol: "chart.line.uptrend.xyaxis"},
	{Key: "other_income", Label: "Other", Symbol: "circle.grid.2x2"},
}

var categoriesByKey = func() map[string]Category {
	m := make(map[string]Category, len(ExpenseCategories)+len(IncomeCategories))
	for _, c := range ExpenseCategories {
		m[c.Key] = c
	}
	for _, c := range IncomeCategories {
		m[c.Key] = c
	}
	return m
}()

// CategoryByKey looks a key up in both catalogs.
func CategoryByKey(key string) (Category, bool) {
	c, ok := categoriesByKey[key]
	return c, ok
}
