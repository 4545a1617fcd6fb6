package entity

import "github.com/google/uuid"

// Cart is the consistency boundary for a user's shopping cart: one cart per
// user, a set of line items, and a derived total. TotalPrice must always equal
// the sum of Quantity*UnitPrice over Items; Recalculate enforces that and is
// called synchronously before every persist.
type Cart struct {
	ID         uint       `json:"id"`
	UserID     uuid.UUID  `json:"userId"`
	Items      []CartItem `json:"items"`
	TotalPrice float64    `json:"totalPrice"`
}

// CartItem is one line in a cart, referencing a product by id. UnitPrice is
// loaded live from the catalog on every read, never frozen at add time, so
// catalog price changes flow through to existing carts.
type CartItem struct {
	ID        uint    `json:"id"`
	CartID    uint    `json:"cartId"`
	ProductID uint    `json:"productId"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
	Price     float64 `json:"price"`
}

// Recalculate rederives each line price and the cart total from quantities
// and current unit prices.
func (c *Cart) Recalculate() {
	var total float64
	for i := range c.Items {
		c.Items[i].Price = float64(c.Items[i].Quantity) * c.Items[i].UnitPrice
		total += c.Items[i].Price
	}
	c.TotalPrice = total
}

// FindItemByProduct returns the line for the given product, or nil.
func (c *Cart) FindItemByProduct(productID uint) *CartItem {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i]
		}
	}

	return nil
}

// TotalQuantity sums the quantities over all lines.
func (c *Cart) TotalQuantity() int {
	var total int
	for i := range c.Items {
		total += c.Items[i].Quantity
	}

	return total
}
