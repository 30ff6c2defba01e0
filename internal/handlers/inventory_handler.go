package handlers

import (
	"errors"
	"fmt"
	"strings"

	"etalase/internal/middleware"
	"etalase/internal/models"
	"etalase/internal/repositories"
	"etalase/internal/services"
	"etalase/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// InventoryHandler handles HTTP requests for the product inventory.
type InventoryHandler struct {
	service     *services.ProductService
	authService *services.AuthService
	validate    *validator.Validate
}

// NewInventoryHandler creates a new InventoryHandler.
func NewInventoryHandler(service *services.ProductService, authService *services.AuthService) *InventoryHandler {
	return &InventoryHandler{
		service:     service,
		authService: authService,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the inventory routes. Listing is public, decreasing
// needs a session and every other mutation needs the ADMIN role.
func (h *InventoryHandler) RegisterRoutes(router fiber.Router) {
	session := middleware.SessionRequired(h.authService)
	admin := middleware.RoleRequired(models.RoleAdmin)

	inventory := router.Group("/inventory")
	inventory.Get("/", h.HandleList)
	inventory.Post("/", session, admin, h.HandleCreate)
	inventory.Post("/:id/increase", session, admin, h.HandleIncrease)
	inventory.Post("/:id/decrease", session, h.HandleDecrease)
	inventory.Delete("/:id", session, admin, h.HandleDelete)
}

// HandleList returns every product.
func (h *InventoryHandler) HandleList(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts()
	if err != nil {
		log := logger.Get()
		log.Error().Err(err).Msg("listing products failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve products",
		})
	}
	return c.JSON(products)
}

// HandleCreate creates a product.
func (h *InventoryHandler) HandleCreate(c *fiber.Ctx) error {
	var req models.NewProduct
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  validationMessages(err),
		})
	}

	product, err := h.service.CreateProduct(req, actor(c))
	if err != nil {
		log := logger.Get()
		log.Error().Err(err).Msg("creating product failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not create product",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleIncrease restocks a product.
func (h *InventoryHandler) HandleIncrease(c *fiber.Ctx) error {
	return h.handleStockChange(c, h.service.IncreaseStock)
}

// HandleDecrease takes units out of stock.
func (h *InventoryHandler) HandleDecrease(c *fiber.Ctx) error {
	return h.handleStockChange(c, h.service.DecreaseStock)
}

func (h *InventoryHandler) handleStockChange(c *fiber.Ctx, change func(id int64, amount int, actor string) (*models.Product, error)) error {
	id, ok := productID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid product ID",
		})
	}

	var req models.StockChange
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  validationMessages(err),
		})
	}

	product, err := change(id, req.Amount, actor(c))
	if err != nil {
		return stockError(c, id, err)
	}
	return c.JSON(product)
}

// HandleDelete deletes a product.
func (h *InventoryHandler) HandleDelete(c *fiber.Ctx) error {
	id, ok := productID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid product ID",
		})
	}
	if err := h.service.DeleteProduct(id, actor(c)); err != nil {
		return stockError(c, id, err)
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Product %d deleted successfully", id),
	})
}

func productID(c *fiber.Ctx) (int64, bool) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, false
	}
	return int64(id), true
}

func stockError(c *fiber.Ctx, id int64, err error) error {
	switch {
	case errors.Is(err, repositories.ErrProductNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": fmt.Sprintf("Product with ID %d not found", id),
		})
	case errors.Is(err, repositories.ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "Insufficient stock",
			"error":   err.Error(),
		})
	case errors.Is(err, services.ErrInvalidAmount):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": err.Error(),
		})
	}
	log := logger.Get()
	log.Error().Err(err).Int64("product_id", id).Msg("inventory mutation failed")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "Could not update product",
	})
}

func actor(c *fiber.Ctx) string {
	if claims := middleware.ClaimsFrom(c); claims != nil {
		return claims.Subject
	}
	return ""
}
