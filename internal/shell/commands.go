package shell

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"etalase/internal/models"
	"etalase/internal/store"
)

func (s *Shell) login(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	if current, ok := s.session.Current(); ok {
		s.warn(s.tr.Tf("loginModal.already", current.Username))
		return nil
	}

	identity, err := s.session.Login(ctx, args[0], args[1])
	switch {
	case errors.Is(err, store.ErrInvalidCredentials):
		s.fail(s.tr.T("loginModal.failed"))
		return nil
	case errors.Is(err, store.ErrProfileUnavailable):
		s.fail(s.tr.T("loginModal.profile_unavailable"))
		return nil
	case err != nil:
		return err
	}
	s.success(s.tr.Tf("loginModal.success", identity.Username))
	return nil
}

func (s *Shell) logout(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return errUsage
	}
	if _, ok := s.requireSession(); !ok {
		return nil
	}
	if err := s.session.Logout(ctx); err != nil {
		s.fail(s.tr.Tf("logout.failed", describe(err)))
		return nil
	}
	s.cart.Clear()
	s.closeEditor()
	s.image = nil
	s.success(s.tr.T("logout.success"))
	return nil
}

func (s *Shell) whoami(_ context.Context, _ []string) error {
	identity, ok := s.session.Current()
	if !ok {
		s.println(s.tr.T("whoami.anonymous"))
		return nil
	}
	s.println(s.tr.Tf("whoami.identity", identity.Username, identity.Role))
	return nil
}

func (s *Shell) list(ctx context.Context, _ []string) error {
	s.refresh(ctx)
	return nil
}

func (s *Shell) add(_ context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return errUsage
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	quantity, err := parseAmount(args, 1)
	if err != nil || quantity < 1 {
		return errUsage
	}
	if !s.requireShopper() {
		return nil
	}

	product, ok := s.catalog.Product(id)
	if !ok {
		s.warn(s.tr.Tf("products.not_found", id))
		return nil
	}
	if product.Stock() == models.StockOutOfStock {
		s.warn(s.tr.Tf("cart.out_of_stock", product.Name))
		return nil
	}
	if quantity > s.cart.Remaining(id) {
		s.warn(s.tr.Tf("cart.limit_reached", product.Name, models.MaxCartQuantity))
		return nil
	}

	s.cart.Add(id, product.Name, quantity)
	s.success(s.tr.Tf("cart.added", quantity, product.Name))
	return nil
}

func (s *Shell) remove(_ context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	var name string
	for _, line := range s.cart.Lines() {
		if line.ProductID == id {
			name = line.Name
		}
	}
	if name == "" {
		s.warn(s.tr.Tf("cart.not_in_cart", id))
		return nil
	}
	s.cart.Remove(id)
	s.success(s.tr.Tf("cart.removed", name))
	return nil
}

func (s *Shell) showCart(_ context.Context, _ []string) error {
	lines := s.cart.Lines()
	if len(lines) == 0 {
		s.println(s.tr.T("cart.empty"))
		return nil
	}
	s.println(s.st.Title.Render(s.tr.T("cart.title")))
	for _, line := range lines {
		s.println(fmt.Sprintf("  %dx %s (#%d)", line.Quantity, line.Name, line.ProductID))
	}
	s.println(s.tr.Tf("cart.total", s.cart.TotalItemCount()))
	return nil
}

func (s *Shell) buy(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return errUsage
	}
	if !s.requireShopper() {
		return nil
	}
	if s.cart.Len() == 0 {
		s.println(s.tr.T("cart.empty"))
		return nil
	}

	report, err := s.catalog.Checkout(ctx, s.cart)
	for _, failed := range report.Failed {
		s.warn(s.tr.Tf("checkout.line_failed", failed.Line.Name, describe(failed.Err)))
	}
	purchased := 0
	for _, line := range report.Purchased {
		purchased += line.Quantity
	}
	if purchased > 0 {
		s.success(s.tr.Tf("checkout.success", purchased))
	}
	if err != nil {
		s.fail(s.tr.Tf("checkout.refresh_failed", describe(err)))
	}
	return nil
}

func (s *Shell) restock(ctx context.Context, args []string) error {
	return s.changeStock(ctx, args, s.catalog.Restock, "admin.restocked")
}

func (s *Shell) consume(ctx context.Context, args []string) error {
	return s.changeStock(ctx, args, s.catalog.Consume, "admin.consumed")
}

func (s *Shell) changeStock(ctx context.Context, args []string, change func(context.Context, int64, int) error, done string) error {
	if len(args) < 1 || len(args) > 2 {
		return errUsage
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	amount, err := parseAmount(args, 1)
	if err != nil {
		return err
	}
	if !s.requireAdmin() {
		return nil
	}
	if err := change(ctx, id, amount); err != nil {
		return err
	}
	s.success(s.tr.Tf(done, id, amount))
	return nil
}

// create parses "create <quantity> <name...> [| info...]". A saved editor
// image is attached and consumed.
func (s *Shell) create(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errUsage
	}
	quantity, err := strconv.Atoi(args[0])
	if err != nil {
		s.warn(s.tr.Tf("app.invalid_number", args[0]))
		return nil
	}
	name, info, _ := strings.Cut(strings.Join(args[1:], " "), "|")
	if !s.requireAdmin() {
		return nil
	}

	req := models.NewProduct{
		Name:        name,
		Quantity:    quantity,
		ImageBase64: s.image,
		Info:        strings.TrimSpace(info),
	}
	if err := s.catalog.Create(ctx, req); err != nil {
		return err
	}
	s.success(s.tr.Tf("admin.created", strings.TrimSpace(name)))
	if s.image != nil {
		s.image = nil
		s.println(s.tr.T("admin.image_attached"))
	}
	return nil
}

func (s *Shell) deleteProduct(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	if !s.requireAdmin() {
		return nil
	}
	if err := s.catalog.Remove(ctx, id); err != nil {
		return err
	}
	s.success(s.tr.Tf("admin.deleted", id))
	return nil
}

func (s *Shell) requireSession() (models.Identity, bool) {
	identity, ok := s.session.Current()
	if !ok {
		s.warn(s.tr.T("loginModal.required"))
	}
	return identity, ok
}

// requireShopper admits sessions without the ADMIN role; administrators have
// no cart.
func (s *Shell) requireShopper() bool {
	identity, ok := s.requireSession()
	if !ok {
		return false
	}
	if identity.IsAdmin() {
		s.warn(s.tr.T("cart.users_only"))
		return false
	}
	return true
}

func (s *Shell) requireAdmin() bool {
	identity, ok := s.requireSession()
	if !ok {
		return false
	}
	if !identity.IsAdmin() {
		s.warn(s.tr.T("admin.required"))
		return false
	}
	return true
}
