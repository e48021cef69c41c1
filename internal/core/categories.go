package core

// Category groups the subcategories a user can pick an amount for.
type Category struct {
	Name          string   `yaml:"name" json:"name"`
	Subcategories []string `yaml:"subcategories" json:"subcategories"`
}

// DefaultCategories is the built-in spending taxonomy.
func DefaultCategories() []Category {
	return []Category{
		{Name: "Food", Subcategories: []string{"Bag of Rice", "Bread", "Chicken", "Yam", "Beans"}},
		{Name: "Transport", Subcategories: []string{"Fuel", "Public Transport", "Taxi"}},
		{Name: "Housing", Subcategories: []string{"Rent", "Maintenance", "Mortgage"}},
		{Name: "Clothing", Subcategories: []string{"Casual Wear", "Formal Wear", "Shoes"}},
		{Name: "Education", Subcategories: []string{"Tuition", "Books", "Stationery"}},
		{Name: "Health", Subcategories: []string{"Drugs", "Hospital Bills", "Insurance"}},
		{Name: "Electronics", Subcategories: []string{"Phone", "Laptop", "TV", "Tablet"}},
	}
}

// HasSubcategory reports whether sub belongs to the category.
func (c Category) HasSubcategory(sub string) bool {
	for _, s := range c.Subcategories {
		if s == sub {
			return true
		}
	}
	return false
}
