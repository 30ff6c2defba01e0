package repositories

import (
	"errors"

	"etalase/internal/models"
)

var (
	// ErrProductNotFound is returned when no product has the requested ID.
	ErrProductNotFound = errors.New("product not found")
	// ErrInsufficientStock is returned when a decrease would drive stock below zero.
	ErrInsufficientStock = errors.New("insufficient stock")
)

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	GetAll() ([]models.Product, error)
	GetByID(id int64) (*models.Product, error)
	Create(product *models.Product) error
	// AdjustQuantity adds delta to the stock of a product and returns the
	// updated product. The stock never goes below zero.
	AdjustQuantity(id int64, delta int) (*models.Product, error)
	Delete(id int64) error
}
