package models

import "time"

// Category groups products on the shop page. Categories and products are
// hard-deleted, so they carry no DeletedAt column.
type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Products  []Product `gorm:"constraint:OnDelete:CASCADE" json:"products,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Product is a catalog entry. Price is in whole currency units.
type Product struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	Price       int64     `gorm:"not null" json:"price"`
	ImageURL    string    `gorm:"size:500" json:"image_url"`
	Description string    `gorm:"type:text" json:"description"`
	CategoryID  uint      `gorm:"not null;index" json:"category_id"`
	Category    *Category `json:"category,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
