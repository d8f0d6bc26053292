package domain

import "time"

// Category is the enumerated product category.
type Category string

const (
	CategoryPoultry    Category = "Poultry"
	CategoryDairy      Category = "Dairy"
	CategoryCereals    Category = "Cereals"
	CategoryVegetables Category = "Vegetables"
	CategoryFruits     Category = "Fruits"
)

// Categories lists every valid category in display order.
var Categories = []Category{
	CategoryPoultry,
	CategoryDairy,
	CategoryCereals,
	CategoryVegetables,
	CategoryFruits,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Product is an item offered by a retailer.
type Product struct {
	ID           string     `json:"id" bson:"_id"`
	Name         string     `json:"name" bson:"name"`
	Price        float64    `json:"price" bson:"price"`
	Availability bool       `json:"availability" bson:"availability"`
	Description  string     `json:"description" bson:"description"`
	Image        string     `json:"image" bson:"image"`
	RetailerID   string     `json:"retailerId" bson:"retailer_id"`
	Category     Category   `json:"category" bson:"category"`
	CreatedAt    time.Time  `json:"createdAt" bson:"created_at"`
	UpdatedAt    time.Time  `json:"updatedAt" bson:"updated_at"`
	DeletedAt    *time.Time `json:"deletedAt,omitempty" bson:"deleted_at"`
}
