package remote

import (
	"context"
	"fmt"
	"net/http"

	"etalase/internal/models"
)

// ListProducts returns every product in server order.
func (c *Client) ListProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := c.do(ctx, http.MethodGet, "/api/inventory", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// CreateProduct creates a product and returns it.
func (c *Client) CreateProduct(ctx context.Context, req models.NewProduct) (*models.Product, error) {
	var product models.Product
	if err := c.do(ctx, http.MethodPost, "/api/inventory", req, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// IncreaseProduct restocks a product by amount units.
func (c *Client) IncreaseProduct(ctx context.Context, id int64, amount int) (*models.Product, error) {
	return c.changeStock(ctx, id, "increase", amount)
}

// DecreaseProduct takes amount units of a product out of stock.
func (c *Client) DecreaseProduct(ctx context.Context, id int64, amount int) (*models.Product, error) {
	return c.changeStock(ctx, id, "decrease", amount)
}

func (c *Client) changeStock(ctx context.Context, id int64, direction string, amount int) (*models.Product, error) {
	var product models.Product
	path := fmt.Sprintf("/api/inventory/%d/%s", id, direction)
	if err := c.do(ctx, http.MethodPost, path, models.StockChange{Amount: amount}, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// DeleteProduct deletes a product.
func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/inventory/%d", id), nil, nil)
}
