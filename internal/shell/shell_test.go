package shell_test

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"etalase/internal/handlers"
	"etalase/internal/i18n"
	"etalase/internal/models"
	"etalase/internal/remote"
	"etalase/internal/repositories"
	"etalase/internal/services"
	"etalase/internal/shell"
	"etalase/internal/store"

	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

type harness struct {
	prefsPath string
	products  *repositories.MockProductRepository
	client    *remote.Client
	bundle    *i18n.Bundle
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	products := repositories.NewMockProductRepository()
	users := repositories.NewMockUserRepository()
	authService := services.NewAuthService(users, "shell_secret", nil)
	productService := services.NewProductService(products, nil)

	require.NoError(t, authService.RegisterUser(&models.User{Username: "admin", Password: "admin123", Role: models.RoleAdmin}))
	require.NoError(t, authService.RegisterUser(&models.User{Username: "user", Password: "user123", Role: models.RoleUser}))
	require.NoError(t, products.Create(&models.Product{Name: "Mouse", Quantity: 4, Info: "wireless"}))
	require.NoError(t, products.Create(&models.Product{Name: "Laptop", Quantity: 1}))
	require.NoError(t, products.Create(&models.Product{Name: "Keyboard", Quantity: 0}))

	srv := httptest.NewServer(adaptor.FiberApp(handlers.NewApp(handlers.AppConfig{}, authService, productService)))
	client, err := remote.New(remote.Config{BaseURL: srv.URL})
	require.NoError(t, err)
	t.Cleanup(func() {
		client.CloseIdleConnections()
		srv.Close()
	})

	bundle, err := i18n.Load()
	require.NoError(t, err)

	return &harness{
		prefsPath: filepath.Join(t.TempDir(), "prefs.yaml"),
		products:  products,
		client:    client,
		bundle:    bundle,
	}
}

// shell creates a shell with fresh stores sharing the harness client.
func (h *harness) shell(t *testing.T, input string, out *bytes.Buffer) *shell.Shell {
	t.Helper()

	prefs, err := i18n.OpenPreferences(h.prefsPath)
	require.NoError(t, err)

	return shell.New(shell.Options{
		In:      strings.NewReader(input),
		Out:     out,
		Session: store.NewSessionStore(h.client),
		Catalog: store.NewCatalogSync(h.client, language.English),
		Cart:    store.NewCartStore(),
		Bundle:  h.bundle,
		Prefs:   prefs,
	})
}

// run feeds the script to a fresh shell and returns everything it printed.
func (h *harness) run(t *testing.T, script ...string) string {
	t.Helper()

	var out bytes.Buffer
	sh := h.shell(t, strings.Join(script, "\n")+"\n", &out)
	require.NoError(t, sh.Run(context.Background()))
	return out.String()
}

func TestShell_StartupListsProducts(t *testing.T) {
	h := newHarness(t)

	out := h.run(t)

	assert.Contains(t, out, "Welcome to the Etalase shop.")
	assert.Contains(t, out, "Shop Inventory")
	assert.Contains(t, out, "wireless")
	assert.Contains(t, out, "Out of stock")
	keyboard := strings.Index(out, "Keyboard")
	laptop := strings.Index(out, "Laptop")
	mouse := strings.Index(out, "Mouse")
	assert.True(t, keyboard < laptop && laptop < mouse, "products are sorted by name")
}

func TestShell_AnonymousAndUnknown(t *testing.T) {
	h := newHarness(t)

	out := h.run(t, "whoami", "add 1", "restock 1 5", "frobnicate", "add", "login onlyuser", "quit", "whoami")

	assert.Contains(t, out, "Not logged in.")
	assert.Equal(t, 2, strings.Count(out, "Please log in first."))
	assert.Contains(t, out, `Unknown command "frobnicate"`)
	assert.Contains(t, out, "Usage: add <id> [quantity]")
	assert.Contains(t, out, "Usage: login <username> <password>")
	assert.Contains(t, out, "Bye.")
	assert.Equal(t, 1, strings.Count(out, "Not logged in."), "nothing runs after quit")
}

func TestShell_LoginFailure(t *testing.T) {
	h := newHarness(t)

	out := h.run(t, "login user nope", "whoami")

	assert.Contains(t, out, "Login failed, check your credentials.")
	assert.Contains(t, out, "Not logged in.")
}

func TestShell_ShopperFlow(t *testing.T) {
	h := newHarness(t)

	out := h.run(t,
		"login user user123",
		"whoami",
		"add 1 2",
		"add 1 4",
		"add 3",
		"add 99",
		"cart",
		"buy",
		"cart",
		"logout",
		"whoami",
	)

	assert.Contains(t, out, "Welcome, user!")
	assert.Contains(t, out, "Logged in as user (USER).")
	assert.Contains(t, out, "2x Mouse added to cart.")
	assert.Contains(t, out, "Maximum limit reached for Mouse. Limit is 5 items total.")
	assert.Contains(t, out, "Keyboard is out of stock.")
	assert.Contains(t, out, "Product 99 not found.")
	assert.Contains(t, out, "2x Mouse (#1)")
	assert.Contains(t, out, "Total items: 2")
	assert.Contains(t, out, "Purchased 2 item(s).")
	assert.Contains(t, out, "Your cart is empty.")
	assert.Contains(t, out, "Logged out.")

	mouse, err := h.products.GetByID(1)
	require.NoError(t, err)
	assert.Equal(t, 2, mouse.Quantity)
}

func TestShell_PartialCheckout(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	var out bytes.Buffer
	sh := h.shell(t, "", &out)
	for _, line := range []string{"login user user123", "list", "add 2", "add 1 1"} {
		sh.Exec(ctx, line)
	}
	// the last laptop is sold elsewhere before checkout
	_, err := h.products.AdjustQuantity(2, -1)
	require.NoError(t, err)
	sh.Exec(ctx, "buy")
	sh.Exec(ctx, "cart")

	assert.Contains(t, out.String(), "1x Laptop added to cart.")
	assert.Contains(t, out.String(), "Could not buy Laptop (Insufficient stock).")
	assert.Contains(t, out.String(), "Purchased 1 item(s).")
	assert.Contains(t, out.String(), "Your cart is empty.")

	mouse, err := h.products.GetByID(1)
	require.NoError(t, err)
	assert.Equal(t, 3, mouse.Quantity)
}

func TestShell_AdminFlow(t *testing.T) {
	h := newHarness(t)

	out := h.run(t,
		"login admin admin123",
		"add 1",
		"create 3 Desk Lamp | warm light",
		"restock 1 6",
		"consume 1 0",
		"consume 2 5",
		"delete 2",
		"login user user123",
	)

	assert.Contains(t, out, "Only shoppers have a cart.")
	assert.Contains(t, out, "Product Desk Lamp created.")
	assert.Contains(t, out, "warm light")
	assert.Contains(t, out, "Stock of product 1 increased by 6.")
	assert.Contains(t, out, "invalid amount: must be a positive integer")
	assert.Contains(t, out, "Product 2 deleted.")
	assert.Contains(t, out, "Already logged in as admin.")

	mouse, err := h.products.GetByID(1)
	require.NoError(t, err)
	assert.Equal(t, 10, mouse.Quantity)
	_, err = h.products.GetByID(2)
	assert.ErrorIs(t, err, repositories.ErrProductNotFound)
}

func TestShell_UserCannotAdminister(t *testing.T) {
	h := newHarness(t)

	out := h.run(t, "login user user123", "restock 1", "delete 1", "editor open")

	assert.Equal(t, 3, strings.Count(out, "This command requires the ADMIN role."))
}

func TestShell_LogoutDiscardsSavedImage(t *testing.T) {
	h := newHarness(t)

	out := h.run(t,
		"login admin admin123",
		"editor open",
		"editor paint 0 0",
		"editor save",
		"logout",
		"login admin admin123",
		"create 1 Fresh Mug",
	)

	assert.Contains(t, out, "Image saved")
	assert.NotContains(t, out, "The saved image was attached.")

	all, err := h.products.GetAll()
	require.NoError(t, err)
	var found bool
	for _, p := range all {
		if p.Name == "Fresh Mug" {
			found = true
			assert.Nil(t, p.ImageBase64)
		}
	}
	assert.True(t, found)
}

func TestShell_Editor(t *testing.T) {
	h := newHarness(t)

	out := h.run(t,
		"login admin admin123",
		"editor color #FF0000",
		"editor open",
		"editor palette",
		"editor color #123456",
		"editor color #FF0000",
		"editor stroke 0,0 1,1",
		"editor pen down",
		"editor stroke 0,0 1,1 200,200",
		"editor preview",
		"editor save",
		"create 2 Pixel Mug",
		"editor open",
		"editor cancel",
		"create 1 Plain Mug",
	)

	assert.Contains(t, out, "The editor is not open.")
	assert.Contains(t, out, "Editor opened: 64x64 canvas, active color #000000.")
	assert.Contains(t, out, "#4B0082")
	assert.Contains(t, out, "#123456 is not in the palette.")
	assert.Contains(t, out, "Active color: #FF0000")
	assert.Contains(t, out, "The pen is up.")
	assert.Contains(t, out, "▀")
	assert.Contains(t, out, "Image saved")
	assert.Contains(t, out, "The saved image was attached.")
	assert.Equal(t, 1, strings.Count(out, "The saved image was attached."))
	assert.Contains(t, out, "Editor closed without saving.")

	all, err := h.products.GetAll()
	require.NoError(t, err)
	var withImage, without int
	for _, p := range all {
		switch p.Name {
		case "Pixel Mug":
			require.NotNil(t, p.ImageBase64)
			assert.True(t, strings.HasPrefix(*p.ImageBase64, "data:image/png;base64,"))
			withImage++
		case "Plain Mug":
			assert.Nil(t, p.ImageBase64)
			without++
		}
	}
	assert.Equal(t, 1, withImage)
	assert.Equal(t, 1, without)
}

func TestShell_Language(t *testing.T) {
	h := newHarness(t)

	out := h.run(t, "lang", "lang fr", "lang de", "whoami")

	assert.Contains(t, out, "Language: EN")
	assert.Contains(t, out, `Unsupported language "fr"`)
	assert.Contains(t, out, "Sprache auf DE gesetzt.")
	assert.Contains(t, out, "Nicht angemeldet.")

	data, err := os.ReadFile(h.prefsPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "app_lang: DE")

	again := h.run(t, "whoami")
	assert.Contains(t, again, "Willkommen im Etalase-Shop.", "the stored locale is used on the next start")
	assert.Contains(t, again, "Sortiment")
}

func TestShell_Help(t *testing.T) {
	h := newHarness(t)

	out := h.run(t, "help")

	for _, want := range []string{"Commands:", "Shopping:", "Administration (ADMIN only):", "login <username> <password>", "buy", "editor open"} {
		assert.Contains(t, out, want)
	}
}
