package store_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"etalase/internal/models"
	"etalase/internal/remote"
	"etalase/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func names(products []models.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.Name
	}
	return out
}

func TestCatalogSync_RefreshSortsByName(t *testing.T) {
	api := new(MockInventoryAPI)
	api.On("ListProducts", mock.Anything).Return([]models.Product{
		{ID: 1, Name: "Zebra", Quantity: 1},
		{ID: 2, Name: "äpfel", Quantity: 2},
		{ID: 3, Name: "Birne", Quantity: 0},
		{ID: 4, Name: "Apfel", Quantity: 3},
	}, nil).Once()
	catalog := store.NewCatalogSync(api, language.German)

	require.NoError(t, catalog.Refresh(context.Background()))

	assert.Equal(t, []string{"Apfel", "äpfel", "Birne", "Zebra"}, names(catalog.Products()))
	birne, ok := catalog.Product(3)
	require.True(t, ok)
	assert.Equal(t, models.StockOutOfStock, birne.Stock())
}

func TestCatalogSync_RefreshFailureKeepsPreviousList(t *testing.T) {
	api := new(MockInventoryAPI)
	api.On("ListProducts", mock.Anything).Return([]models.Product{{ID: 1, Name: "Laptop", Quantity: 2}}, nil).Once()
	api.On("ListProducts", mock.Anything).Return(nil, &remote.StatusError{Method: "GET", Path: "/api/inventory", StatusCode: http.StatusBadGateway}).Once()
	catalog := store.NewCatalogSync(api, language.English)

	require.NoError(t, catalog.Refresh(context.Background()))
	err := catalog.Refresh(context.Background())

	var fetchErr *store.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.True(t, remote.IsStatus(err, http.StatusBadGateway))
	assert.Equal(t, []string{"Laptop"}, names(catalog.Products()))
}

func TestCatalogSync_ConsumeTakesQuantityFromServer(t *testing.T) {
	api := new(MockInventoryAPI)
	api.On("DecreaseProduct", mock.Anything, int64(7), 5).Return(&models.Product{ID: 7, Name: "Widget", Quantity: 3}, nil).Once()
	api.On("ListProducts", mock.Anything).Return([]models.Product{{ID: 7, Name: "Widget", Quantity: 3}}, nil).Once()
	catalog := store.NewCatalogSync(api, language.English)

	require.NoError(t, catalog.Consume(context.Background(), 7, 5))

	widget, ok := catalog.Product(7)
	require.True(t, ok)
	assert.Equal(t, 3, widget.Quantity)
	api.AssertExpectations(t)
}

func TestCatalogSync_RestockRefreshes(t *testing.T) {
	api := new(MockInventoryAPI)
	api.On("IncreaseProduct", mock.Anything, int64(2), 10).Return(&models.Product{ID: 2, Name: "Mouse", Quantity: 10}, nil).Once()
	api.On("ListProducts", mock.Anything).Return([]models.Product{{ID: 2, Name: "Mouse", Quantity: 10}}, nil).Once()
	catalog := store.NewCatalogSync(api, language.English)

	require.NoError(t, catalog.Restock(context.Background(), 2, 10))
	api.AssertExpectations(t)
}

func TestCatalogSync_NonPositiveAmountNeverSent(t *testing.T) {
	api := new(MockInventoryAPI)
	catalog := store.NewCatalogSync(api, language.English)

	for _, amount := range []int{0, -1} {
		var verr *store.ValidationError
		require.ErrorAs(t, catalog.Consume(context.Background(), 1, amount), &verr)
		assert.Equal(t, "amount", verr.Field)
		require.ErrorAs(t, catalog.Restock(context.Background(), 1, amount), &verr)
	}
	api.AssertNotCalled(t, "DecreaseProduct", mock.Anything, mock.Anything, mock.Anything)
	api.AssertNotCalled(t, "IncreaseProduct", mock.Anything, mock.Anything, mock.Anything)
}

func TestCatalogSync_FailedMutationSkipsRefresh(t *testing.T) {
	api := new(MockInventoryAPI)
	api.On("DeleteProduct", mock.Anything, int64(9)).Return(&remote.StatusError{Method: "DELETE", Path: "/api/inventory/9", StatusCode: http.StatusNotFound}).Once()
	catalog := store.NewCatalogSync(api, language.English)

	err := catalog.Remove(context.Background(), 9)
	var fetchErr *store.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "delete product 9", fetchErr.Op)
	api.AssertNotCalled(t, "ListProducts", mock.Anything)
}

func TestCatalogSync_RemoveRefreshes(t *testing.T) {
	api := new(MockInventoryAPI)
	api.On("DeleteProduct", mock.Anything, int64(1)).Return(nil).Once()
	api.On("ListProducts", mock.Anything).Return([]models.Product{}, nil).Once()
	catalog := store.NewCatalogSync(api, language.English)

	require.NoError(t, catalog.Remove(context.Background(), 1))
	assert.Empty(t, catalog.Products())
	api.AssertExpectations(t)
}

func TestCatalogSync_CreateValidation(t *testing.T) {
	api := new(MockInventoryAPI)
	catalog := store.NewCatalogSync(api, language.English)

	var verr *store.ValidationError
	require.ErrorAs(t, catalog.Create(context.Background(), models.NewProduct{Name: "   ", Quantity: 1}), &verr)
	assert.Equal(t, "name", verr.Field)

	require.ErrorAs(t, catalog.Create(context.Background(), models.NewProduct{Name: "Widget", Quantity: -1}), &verr)
	assert.Equal(t, "quantity", verr.Field)

	api.AssertNotCalled(t, "CreateProduct", mock.Anything, mock.Anything)
}

func TestCatalogSync_CreateTrimsAndRefreshes(t *testing.T) {
	image := "data:image/png;base64,AAAA"
	api := new(MockInventoryAPI)
	api.On("CreateProduct", mock.Anything, models.NewProduct{Name: "Widget", Quantity: 0, ImageBase64: &image, Info: "new"}).
		Return(&models.Product{ID: 5, Name: "Widget"}, nil).Once()
	api.On("ListProducts", mock.Anything).Return([]models.Product{{ID: 5, Name: "Widget", ImageBase64: &image}}, nil).Once()
	catalog := store.NewCatalogSync(api, language.English)

	require.NoError(t, catalog.Create(context.Background(), models.NewProduct{Name: " Widget ", ImageBase64: &image, Info: "new"}))
	widget, ok := catalog.Product(5)
	require.True(t, ok)
	assert.True(t, widget.HasImage())
	api.AssertExpectations(t)
}

func TestCatalogSync_CheckoutIsBestEffort(t *testing.T) {
	cart := store.NewCartStore()
	cart.Add(3, "Mouse", 2)
	cart.Add(1, "Laptop", 1)
	cart.Add(2, "Keyboard", 5)

	var order []int64
	record := func(args mock.Arguments) { order = append(order, args.Get(1).(int64)) }

	api := new(MockInventoryAPI)
	api.On("DecreaseProduct", mock.Anything, int64(3), 2).Run(record).Return(&models.Product{ID: 3}, nil).Once()
	api.On("DecreaseProduct", mock.Anything, int64(1), 1).Run(record).Return(nil, &remote.StatusError{StatusCode: http.StatusConflict}).Once()
	api.On("DecreaseProduct", mock.Anything, int64(2), 5).Run(record).Return(&models.Product{ID: 2}, nil).Once()
	api.On("ListProducts", mock.Anything).Return([]models.Product{{ID: 1, Name: "Laptop"}}, nil).Once()
	catalog := store.NewCatalogSync(api, language.English)

	report, err := catalog.Checkout(context.Background(), cart)
	require.NoError(t, err)

	assert.Equal(t, []int64{3, 1, 2}, order, "cart insertion order")
	require.Len(t, report.Purchased, 2)
	require.Len(t, report.Failed, 1)
	assert.Equal(t, int64(1), report.Failed[0].Line.ProductID)
	assert.True(t, remote.IsStatus(report.Failed[0].Err, http.StatusConflict))
	assert.Equal(t, 0, cart.Len())
	assert.Equal(t, []string{"Laptop"}, names(catalog.Products()))
	api.AssertExpectations(t)
}

func TestCatalogSync_CheckoutRefreshFailure(t *testing.T) {
	cart := store.NewCartStore()
	cart.Add(1, "Laptop", 1)

	api := new(MockInventoryAPI)
	api.On("DecreaseProduct", mock.Anything, int64(1), 1).Return(&models.Product{ID: 1}, nil).Once()
	api.On("ListProducts", mock.Anything).Return(nil, errors.New("connection reset")).Once()
	catalog := store.NewCatalogSync(api, language.English)

	report, err := catalog.Checkout(context.Background(), cart)
	var fetchErr *store.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Len(t, report.Purchased, 1)
	assert.Equal(t, 0, cart.Len(), "cart is cleared even when the refresh fails")
}

func TestCatalogSync_Subscribe(t *testing.T) {
	api := new(MockInventoryAPI)
	api.On("ListProducts", mock.Anything).Return([]models.Product{{ID: 1, Name: "B"}, {ID: 2, Name: "A"}}, nil)
	catalog := store.NewCatalogSync(api, language.English)

	var got [][]string
	unsubscribe := catalog.Subscribe(func(products []models.Product) {
		got = append(got, names(products))
	})

	require.NoError(t, catalog.Refresh(context.Background()))
	unsubscribe()
	require.NoError(t, catalog.Refresh(context.Background()))

	assert.Equal(t, [][]string{{"A", "B"}}, got)
}

func TestCatalogSync_MutationReloadIsNotSharedWithEarlierRefresh(t *testing.T) {
	api := new(MockInventoryAPI)
	started := make(chan struct{})
	release := make(chan struct{})
	api.On("ListProducts", mock.Anything).
		Return([]models.Product{{ID: 7, Name: "Widget", Quantity: 10}}, nil).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).Once()
	api.On("DecreaseProduct", mock.Anything, int64(7), 5).Return(&models.Product{ID: 7, Name: "Widget", Quantity: 5}, nil).Once()
	api.On("ListProducts", mock.Anything).Return([]models.Product{{ID: 7, Name: "Widget", Quantity: 5}}, nil).Once()
	catalog := store.NewCatalogSync(api, language.English)

	var delivered []int
	catalog.Subscribe(func(products []models.Product) {
		delivered = append(delivered, products[0].Quantity)
	})

	done := make(chan error, 1)
	go func() { done <- catalog.Refresh(context.Background()) }()
	<-started

	require.NoError(t, catalog.Consume(context.Background(), 7, 5))
	widget, ok := catalog.Product(7)
	require.True(t, ok)
	assert.Equal(t, 5, widget.Quantity)

	// The list requested before the decrement lands last and is dropped.
	close(release)
	require.NoError(t, <-done)
	widget, _ = catalog.Product(7)
	assert.Equal(t, 5, widget.Quantity)
	assert.Equal(t, []int{5}, delivered)
	api.AssertExpectations(t)
}

func TestCatalogSync_CancelledWaiterDoesNotAbortSharedRefresh(t *testing.T) {
	api := new(MockInventoryAPI)
	started := make(chan struct{})
	release := make(chan struct{})
	api.On("ListProducts", mock.Anything).
		Return([]models.Product{{ID: 1, Name: "Laptop", Quantity: 2}}, nil).
		Run(func(args mock.Arguments) {
			close(started)
			<-release
			assert.NoError(t, args.Get(0).(context.Context).Err())
		}).Once()
	catalog := store.NewCatalogSync(api, language.English)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- catalog.Refresh(ctx) }()
	<-started

	cancel()
	err := <-done
	var fetchErr *store.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.ErrorIs(t, err, context.Canceled)

	close(release)
	assert.Eventually(t, func() bool {
		_, ok := catalog.Product(1)
		return ok
	}, time.Second, 10*time.Millisecond)
	api.AssertExpectations(t)
}
