package model

import (
	"time"

	"github.com/google/uuid"
)

// CartModel mirrors the 'carts' table. The unique user_id constraint enforces
// one cart per user. No price columns: line prices and the cart total are
// derived from the catalog on every read.
type CartModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	UserID    uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Items []CartItemModel `gorm:"foreignKey:CartID"`
}

// TableName explicitly sets the table name for GORM.
func (CartModel) TableName() string {
	return "carts"
}

// CartItemModel mirrors the 'cart_items' table. A product appears at most
// once per cart; quantity changes update the row in place.
type CartItemModel struct {
	ID        uint `gorm:"primaryKey;autoIncrement"`
	CartID    uint `gorm:"uniqueIndex:idx_cart_items_cart_product;not null"`
	ProductID uint `gorm:"uniqueIndex:idx_cart_items_cart_product;not null"`
	Quantity  int  `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (CartItemModel) TableName() string {
	return "cart_items"
}
