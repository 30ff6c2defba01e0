package models

import "time"

// StockStatus is the displayed stock affordance of a product.
type StockStatus string

const (
	StockAvailable  StockStatus = "AVAILABLE"
	StockOutOfStock StockStatus = "OUT_OF_STOCK"
)

// Product represents a product held by the inventory API.
type Product struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string    `json:"name" gorm:"type:varchar(100);not null" validate:"required,max=100"`
	Quantity    int       `json:"quantity" gorm:"not null;default:0" validate:"gte=0"`
	ImageBase64 *string   `json:"imageBase64" gorm:"type:text"`
	Info        string    `json:"info" gorm:"type:varchar(500)" validate:"omitempty,max=500"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

// Stock projects the product quantity onto its stock affordance.
func (p Product) Stock() StockStatus {
	if p.Quantity > 0 {
		return StockAvailable
	}
	return StockOutOfStock
}

// HasImage reports whether the product carries a custom image.
func (p Product) HasImage() bool {
	return p.ImageBase64 != nil && *p.ImageBase64 != ""
}

// NewProduct is the payload for creating a product.
type NewProduct struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Quantity    int     `json:"quantity" validate:"gte=0"`
	ImageBase64 *string `json:"imageBase64,omitempty" validate:"omitempty,startswith=data:image/png;base64"`
	Info        string  `json:"info,omitempty" validate:"omitempty,max=500"`
}

// StockChange is the payload for increasing or decreasing a product's stock.
type StockChange struct {
	Amount int `json:"amount" validate:"gt=0"`
}
