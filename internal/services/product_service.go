package services

import (
	"errors"
	"fmt"

	"etalase/internal/metrics"
	"etalase/internal/models"
	"etalase/internal/repositories"
	"etalase/pkg/logger"
	"etalase/pkg/rabbitmq"
)

// ErrInvalidAmount is returned for stock changes that are not positive.
var ErrInvalidAmount = errors.New("amount must be a positive integer")

// EventPublisher publishes inventory events.
type EventPublisher interface {
	PublishInventoryEvent(event rabbitmq.InventoryEvent) error
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo      repositories.ProductRepository
	publisher EventPublisher
}

// NewProductService creates a new ProductService. publisher may be nil.
func NewProductService(repo repositories.ProductRepository, publisher EventPublisher) *ProductService {
	return &ProductService{
		repo:      repo,
		publisher: publisher,
	}
}

// GetAllProducts retrieves all products.
func (s *ProductService) GetAllProducts() ([]models.Product, error) {
	return s.repo.GetAll()
}

// CreateProduct creates a new product.
func (s *ProductService) CreateProduct(req models.NewProduct, actor string) (*models.Product, error) {
	product := &models.Product{
		Name:        req.Name,
		Quantity:    req.Quantity,
		ImageBase64: req.ImageBase64,
		Info:        req.Info,
	}
	if err := s.repo.Create(product); err != nil {
		metrics.InventoryMutationsTotal.WithLabelValues("created", "error").Inc()
		return nil, err
	}
	metrics.InventoryMutationsTotal.WithLabelValues("created", "ok").Inc()
	s.publish(rabbitmq.InventoryEvent{
		Type:      "created",
		ProductID: product.ID,
		Name:      product.Name,
		Quantity:  product.Quantity,
		Actor:     actor,
	})
	return product, nil
}

// IncreaseStock adds amount units to a product.
func (s *ProductService) IncreaseStock(id int64, amount int, actor string) (*models.Product, error) {
	return s.adjust("increased", id, amount, actor)
}

// DecreaseStock removes amount units from a product. It fails with
// repositories.ErrInsufficientStock rather than going below zero.
func (s *ProductService) DecreaseStock(id int64, amount int, actor string) (*models.Product, error) {
	return s.adjust("decreased", id, -amount, actor)
}

func (s *ProductService) adjust(action string, id int64, delta int, actor string) (*models.Product, error) {
	if delta == 0 || (action == "increased") != (delta > 0) {
		metrics.InventoryMutationsTotal.WithLabelValues(action, "rejected").Inc()
		return nil, ErrInvalidAmount
	}

	product, err := s.repo.AdjustQuantity(id, delta)
	if err != nil {
		result := "error"
		if errors.Is(err, repositories.ErrInsufficientStock) || errors.Is(err, repositories.ErrProductNotFound) {
			result = "rejected"
		}
		metrics.InventoryMutationsTotal.WithLabelValues(action, result).Inc()
		return nil, fmt.Errorf("failed to adjust stock of product %d: %w", id, err)
	}

	metrics.InventoryMutationsTotal.WithLabelValues(action, "ok").Inc()
	s.publish(rabbitmq.InventoryEvent{
		Type:      action,
		ProductID: product.ID,
		Name:      product.Name,
		Quantity:  product.Quantity,
		Delta:     delta,
		Actor:     actor,
	})
	return product, nil
}

// DeleteProduct deletes a product by its ID.
func (s *ProductService) DeleteProduct(id int64, actor string) error {
	if err := s.repo.Delete(id); err != nil {
		metrics.InventoryMutationsTotal.WithLabelValues("deleted", "rejected").Inc()
		return err
	}
	metrics.InventoryMutationsTotal.WithLabelValues("deleted", "ok").Inc()
	s.publish(rabbitmq.InventoryEvent{Type: "deleted", ProductID: id, Actor: actor})
	return nil
}

// publish is best effort: a failed publication never fails the mutation.
func (s *ProductService) publish(event rabbitmq.InventoryEvent) {
	log := logger.Get()
	if s.publisher == nil {
		log.Debug().Str("type", event.Type).Msg("no event publisher configured, skipping inventory event")
		return
	}
	if err := s.publisher.PublishInventoryEvent(event); err != nil {
		log.Warn().Err(err).Int64("product_id", event.ProductID).Str("type", event.Type).Msg("failed to publish inventory event")
	}
}
