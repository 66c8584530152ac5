package enums

import "fmt"

// ProductCategory represents the canonical catalog categories.
type ProductCategory string

const (
	ProductCategoryVegetables ProductCategory = "vegetables"
	ProductCategoryFruits     ProductCategory = "fruits"
	ProductCategoryDairy      ProductCategory = "dairy"
	ProductCategoryBakery     ProductCategory = "bakery"
	ProductCategoryGrains     ProductCategory = "grains"
	ProductCategoryBeverages  ProductCategory = "beverages"
	ProductCategoryHousehold  ProductCategory = "household"
)

func (c ProductCategory) String() string {
	return string(c)
}

func (c ProductCategory) IsValid() bool {
	switch c {
	case ProductCategoryVegetables,
		ProductCategoryFruits,
		ProductCategoryDairy,
		ProductCategoryBakery,
		ProductCategoryGrains,
		ProductCategoryBeverages,
		ProductCategoryHousehold:
		return true
	}
	return false
}

// ParseProductCategory converts raw input into a ProductCategory.
func ParseProductCategory(value string) (ProductCategory, error) {
	parsed := ProductCategory(value)
	if !parsed.IsValid() {
		return "", fmt.Errorf("invalid product category %q", value)
	}
	return parsed, nil
}
