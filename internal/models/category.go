package models

// Category is the fixed classification of an expense.
type Category string

const (
	CategoryFood          Category = "food"
	CategoryTransport     Category = "transport"
	CategoryEntertainment Category = "entertainment"
	CategoryShopping      Category = "shopping"
	CategoryUtilities     Category = "utilities"
	CategoryRent          Category = "rent"
	CategoryTravel        Category = "travel"
	CategoryMedical       Category = "medical"
	CategoryOther         Category = "other"
)

// Categories lists every valid category in display order.
var Categories = []Category{
	CategoryFood,
	CategoryTransport,
	CategoryEntertainment,
	CategoryShopping,
	CategoryUtilities,
	CategoryRent,
	CategoryTravel,
	CategoryMedical,
	CategoryOther,
}

var categoryLabels = map[Category]string{
	CategoryFood:          "Food & Dining",
	CategoryTransport:     "Transport",
	CategoryEntertainment: "Entertainment",
	CategoryShopping:      "Shopping",
	CategoryUtilities:     "Utilities",
	CategoryRent:          "Rent",
	CategoryTravel:        "Travel",
	CategoryMedical:       "Medical",
	CategoryOther:         "Other",
}

var categoryIcons = map[Category]string{
	CategoryFood:          "utensils",
	CategoryTransport:     "car",
	CategoryEntertainment: "film",
	CategoryShopping:      "shopping-bag",
	CategoryUtilities:     "zap",
	CategoryRent:          "home",
	CategoryTravel:        "map",
	CategoryMedical:       "activity",
	CategoryOther:         "more-horizontal",
}

// Valid reports whether c is one of the fixed categories.
func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// Label returns the human-readable name for the category.
func (c Category) Label() string {
	return categoryLabels[c]
}

// Icon returns the icon tag associated with the category.
func (c Category) Icon() string {
	return categoryIcons[c]
}
