package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"etalase/internal/models"
	"etalase/pkg/logger"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// InventoryAPI is the part of the inventory API the catalog talks to.
type InventoryAPI interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	CreateProduct(ctx context.Context, req models.NewProduct) (*models.Product, error)
	IncreaseProduct(ctx context.Context, id int64, amount int) (*models.Product, error)
	DecreaseProduct(ctx context.Context, id int64, amount int) (*models.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
}

// CheckoutReport lists what a checkout did. Failed lines were not decremented
// on the server; everything else was.
type CheckoutReport struct {
	Purchased []models.CartLine
	Failed    []FailedLine
}

// FailedLine is a cart line whose decrement the API refused or never received.
type FailedLine struct {
	Line models.CartLine
	Err  error
}

// CatalogSync keeps a name-sorted copy of the server's product list. The copy
// is only ever replaced by a fetch from the server; mutations never patch it locally.
type CatalogSync struct {
	api      InventoryAPI
	validate *validator.Validate
	group    singleflight.Group

	mu       sync.RWMutex
	products []models.Product
	collator *collate.Collator
	subs     map[int]func([]models.Product)
	nextSub  int
	// issued numbers every fetch at start; applied is the newest installed.
	issued  uint64
	applied uint64
}

// NewCatalogSync creates an empty catalog sorting names by the rules of tag.
func NewCatalogSync(api InventoryAPI, tag language.Tag) *CatalogSync {
	return &CatalogSync{
		api:      api,
		validate: validator.New(),
		collator: collate.New(tag),
		subs:     make(map[int]func([]models.Product)),
	}
}

// SetLocale switches the collation used by the next Refresh.
func (c *CatalogSync) SetLocale(tag language.Tag) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.collator = collate.New(tag)
}

// Products returns a copy of the cached product list.
func (c *CatalogSync) Products() []models.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Product, len(c.products))
	copy(out, c.products)
	return out
}

// Product returns the cached product with the given ID.
func (c *CatalogSync) Product(id int64) (models.Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, p := range c.products {
		if p.ID == id {
			return p, true
		}
	}
	return models.Product{}, false
}

// Subscribe registers fn to receive every refreshed list. The returned func
// unsubscribes; a refresh that completes afterwards is not delivered.
func (c *CatalogSync) Subscribe(fn func([]models.Product)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs, id)
	}
}

// Refresh fetches the product list, sorts it by name and replaces the cache.
// On failure the previous list is kept. Concurrent calls share one request,
// which keeps running when a waiting caller's ctx ends.
func (c *CatalogSync) Refresh(ctx context.Context) error {
	ch := c.group.DoChan("refresh", func() (any, error) {
		return nil, c.fetch(context.WithoutCancel(ctx))
	})
	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return &FetchError{Op: "load inventory", Err: ctx.Err()}
	}
}

// fetch loads the list and installs it unless a fetch started later has
// already been installed. Mutations call it directly so their reload is never
// served by a request issued before the server applied the change.
func (c *CatalogSync) fetch(ctx context.Context) error {
	log := logger.Get()

	c.mu.Lock()
	c.issued++
	ticket := c.issued
	c.mu.Unlock()

	products, err := c.api.ListProducts(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("catalog refresh failed, keeping previous list")
		return &FetchError{Op: "load inventory", Err: err}
	}

	c.mu.Lock()
	if ticket < c.applied {
		c.mu.Unlock()
		log.Debug().Uint64("ticket", ticket).Msg("dropping inventory list superseded by a newer fetch")
		return nil
	}
	c.sortByName(products)
	c.products = products
	c.applied = ticket
	ids := make([]int, 0, len(c.subs))
	for id := range c.subs {
		ids = append(ids, id)
	}
	c.mu.Unlock()

	sort.Ints(ids)
	for _, id := range ids {
		c.notify(id, ticket, products)
	}
	return nil
}

// notify delivers to a subscriber unless it unsubscribed in the meantime or a
// newer list replaced this one.
func (c *CatalogSync) notify(id int, ticket uint64, products []models.Product) {
	c.mu.RLock()
	fn, ok := c.subs[id]
	current := c.applied == ticket
	c.mu.RUnlock()
	if !ok || !current {
		return
	}
	out := make([]models.Product, len(products))
	copy(out, products)
	fn(out)
}

// sortByName orders products by locale-aware name comparison, falling back to
// the ID for equal names. Callers hold c.mu; the collator is not safe for
// concurrent use.
func (c *CatalogSync) sortByName(products []models.Product) {
	sort.SliceStable(products, func(i, j int) bool {
		if cmp := c.collator.CompareString(products[i].Name, products[j].Name); cmp != 0 {
			return cmp < 0
		}
		return products[i].ID < products[j].ID
	})
}

// Restock increases the stock of a product and refreshes the catalog.
func (c *CatalogSync) Restock(ctx context.Context, id int64, amount int) error {
	if err := validateAmount(amount); err != nil {
		return err
	}
	if _, err := c.api.IncreaseProduct(ctx, id, amount); err != nil {
		return &FetchError{Op: fmt.Sprintf("increase product %d", id), Err: err}
	}
	return c.fetch(ctx)
}

// Consume decreases the stock of a product and refreshes the catalog.
func (c *CatalogSync) Consume(ctx context.Context, id int64, amount int) error {
	if err := validateAmount(amount); err != nil {
		return err
	}
	if _, err := c.api.DecreaseProduct(ctx, id, amount); err != nil {
		return &FetchError{Op: fmt.Sprintf("decrease product %d", id), Err: err}
	}
	return c.fetch(ctx)
}

// Create adds a product and refreshes the catalog.
func (c *CatalogSync) Create(ctx context.Context, req models.NewProduct) error {
	req.Name = strings.TrimSpace(req.Name)
	if err := c.validate.Struct(req); err != nil {
		return validationError(err)
	}
	if _, err := c.api.CreateProduct(ctx, req); err != nil {
		return &FetchError{Op: "create product", Err: err}
	}
	return c.fetch(ctx)
}

// Remove deletes a product and refreshes the catalog.
func (c *CatalogSync) Remove(ctx context.Context, id int64) error {
	if err := c.api.DeleteProduct(ctx, id); err != nil {
		return &FetchError{Op: fmt.Sprintf("delete product %d", id), Err: err}
	}
	return c.fetch(ctx)
}

// Checkout decrements the stock of every cart line, one request at a time in
// cart order. A failing line does not stop the others and nothing is rolled
// back. The cart is cleared and the catalog reloaded in every case; the
// returned error only reports a failed refresh.
func (c *CatalogSync) Checkout(ctx context.Context, cart *CartStore) (CheckoutReport, error) {
	log := logger.Get()

	var report CheckoutReport
	for _, line := range cart.Lines() {
		if _, err := c.api.DecreaseProduct(ctx, line.ProductID, line.Quantity); err != nil {
			log.Warn().Err(err).Int64("product_id", line.ProductID).Int("quantity", line.Quantity).Msg("checkout line failed")
			report.Failed = append(report.Failed, FailedLine{Line: line, Err: err})
			continue
		}
		report.Purchased = append(report.Purchased, line)
	}

	cart.Clear()
	log.Info().Int("purchased", len(report.Purchased)).Int("failed", len(report.Failed)).Msg("checkout finished")
	return report, c.fetch(ctx)
}

func validateAmount(amount int) error {
	if amount <= 0 {
		return &ValidationError{Field: "amount", Message: "must be a positive integer"}
	}
	return nil
}
