package model

import "time"

// ProductModel mirrors the 'products' table.
type ProductModel struct {
	ID          uint    `gorm:"primaryKey;autoIncrement"`
	Type        string  `gorm:"type:varchar(100);not null"`
	Size        string  `gorm:"type:varchar(32);not null"`
	Color       string  `gorm:"type:varchar(64);not null"`
	Price       float64 `gorm:"not null"`
	Material    string  `gorm:"type:varchar(100)"`
	Gender      string  `gorm:"type:varchar(32)"`
	Description string  `gorm:"type:text"`
	ImageURL    string  `gorm:"type:varchar(512)"`
	DateAdded   time.Time
	LastUpdated time.Time
}

// TableName explicitly sets the table name for GORM.
func (ProductModel) TableName() string {
	return "products"
}
