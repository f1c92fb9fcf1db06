package domain

import "time"

// ProductType is the closed set of product categories.
type ProductType string

const (
	ProductTypeElectronics ProductType = "Electronics"
	ProductTypeFurniture   ProductType = "Furniture"
	ProductTypeClothing    ProductType = "Clothing"
	ProductTypeFood        ProductType = "Food"
	ProductTypeOther       ProductType = "Other"
)

// ProductTypes lists all allowed categories, in display order.
var ProductTypes = []ProductType{
	ProductTypeElectronics,
	ProductTypeFurniture,
	ProductTypeClothing,
	ProductTypeFood,
	ProductTypeOther,
}

// ValidProductType reports whether t is a known category.
func ValidProductType(t ProductType) bool {
	for _, pt := range ProductTypes {
		if t == pt {
			return true
		}
	}
	return false
}

// Product is a typed resource owned by a user. SSN is the unique external
// serial identifier; deleting the owner cascades to its products.
type Product struct {
	ID        int64
	Type      ProductType
	Name      string
	SSN       string
	UserID    int64
	CreatedAt time.Time
	UpdatedAt time.Time
}
