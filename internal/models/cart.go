package models

// MaxCartQuantity is the most units of a single product a cart may hold.
const MaxCartQuantity = 5

// CartLine represents a pending, not yet purchased quantity of one product.
type CartLine struct {
	ProductID int64  `json:"id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"` // 1..MaxCartQuantity
}
