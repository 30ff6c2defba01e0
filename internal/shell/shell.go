// Package shell is the interactive storefront. It reads one command per line,
// drives the session, cart and catalog stores and prints their state.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"etalase/internal/i18n"
	"etalase/internal/models"
	"etalase/internal/remote"
	"etalase/internal/store"
	"etalase/pkg/logger"
	"etalase/pkg/pixelart"
)

const prompt = "etalase> "

var errUsage = errors.New("usage")

// Options wires a Shell to its stores.
type Options struct {
	In      io.Reader
	Out     io.Writer
	Session *store.SessionStore
	Catalog *store.CatalogSync
	Cart    *store.CartStore
	Bundle  *i18n.Bundle
	Prefs   *i18n.Preferences
}

type command struct {
	usage string
	group string
	run   func(ctx context.Context, args []string) error
}

// Command groups, in help order.
const (
	groupGeneral = ""
	groupUser    = "user"
	groupAdmin   = "admin"
	groupEditor  = "editor"
)

// Shell is a line-oriented view over the stores. It is not safe for
// concurrent use; the stores it drives are.
type Shell struct {
	in      *bufio.Scanner
	out     io.Writer
	session *store.SessionStore
	catalog *store.CatalogSync
	cart    *store.CartStore
	bundle  *i18n.Bundle
	prefs   *i18n.Preferences
	tr      i18n.Translator
	st      styles

	commands map[string]command

	// editor state
	canvas  *pixelart.Canvas
	penDown bool
	image   *string

	quit bool
}

// New creates a Shell speaking the locale stored in opts.Prefs.
func New(opts Options) *Shell {
	s := &Shell{
		in:      bufio.NewScanner(opts.In),
		out:     opts.Out,
		session: opts.Session,
		catalog: opts.Catalog,
		cart:    opts.Cart,
		bundle:  opts.Bundle,
		prefs:   opts.Prefs,
		st:      newStyles(opts.Out),
	}
	locale := i18n.DefaultLocale
	if s.prefs != nil {
		locale = s.prefs.Locale()
	}
	s.tr = s.bundle.For(locale)
	s.catalog.SetLocale(i18n.Tag(locale))

	s.commands = map[string]command{
		"help":    {usage: "help", run: s.help},
		"quit":    {usage: "quit", run: s.exit},
		"login":   {usage: "login <username> <password>", run: s.login},
		"logout":  {usage: "logout", run: s.logout},
		"whoami":  {usage: "whoami", run: s.whoami},
		"list":    {usage: "list", run: s.list},
		"lang":    {usage: "lang [EN|DE]", run: s.lang},
		"add":     {usage: "add <id> [quantity]", group: groupUser, run: s.add},
		"remove":  {usage: "remove <id>", group: groupUser, run: s.remove},
		"cart":    {usage: "cart", group: groupUser, run: s.showCart},
		"buy":     {usage: "buy", group: groupUser, run: s.buy},
		"restock": {usage: "restock <id> [amount]", group: groupAdmin, run: s.restock},
		"consume": {usage: "consume <id> [amount]", group: groupAdmin, run: s.consume},
		"create":  {usage: "create <quantity> <name> [| info]", group: groupAdmin, run: s.create},
		"delete":  {usage: "delete <id>", group: groupAdmin, run: s.deleteProduct},
		"editor":  {usage: "editor open|palette|color <#RRGGBB>|pen up|pen down|paint <row> <col>|stroke <row,col>...|clear|preview|save|cancel", group: groupEditor, run: s.editor},
	}
	s.commands["exit"] = s.commands["quit"]
	return s
}

// Run loads the catalog, then executes commands until the input ends, the
// user quits or ctx is cancelled.
func (s *Shell) Run(ctx context.Context) error {
	unsubscribe := s.catalog.Subscribe(s.render)
	defer unsubscribe()

	s.println(s.st.Title.Render(s.tr.T("app.welcome")))
	s.refresh(ctx)

	for !s.quit {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(s.out, prompt)
		if !s.in.Scan() {
			fmt.Fprintln(s.out)
			return s.in.Err()
		}
		s.Exec(ctx, s.in.Text())
	}
	return nil
}

// Exec runs a single command line.
func (s *Shell) Exec(ctx context.Context, line string) {
	args := strings.Fields(line)
	if len(args) == 0 {
		return
	}
	name := strings.ToLower(args[0])
	cmd, ok := s.commands[name]
	if !ok {
		s.warn(s.tr.Tf("app.unknown_command", args[0]))
		return
	}

	err := cmd.run(ctx, args[1:])
	if errors.Is(err, errUsage) {
		s.warn(s.tr.Tf("app.usage", cmd.usage))
		return
	}
	if err != nil {
		log := logger.Get()
		log.Debug().Err(err).Str("command", name).Msg("command failed")
		s.fail(s.tr.Tf("app.error", describe(err)))
	}
}

func (s *Shell) help(_ context.Context, _ []string) error {
	groups := map[string][]string{}
	for _, cmd := range s.commands {
		groups[cmd.group] = append(groups[cmd.group], cmd.usage)
	}

	s.println(s.st.Title.Render(s.tr.T("help.header")))
	for _, g := range []string{groupGeneral, groupUser, groupAdmin, groupEditor} {
		usages := dedupe(groups[g])
		if g != groupGeneral {
			s.println(s.st.Title.Render(s.tr.T("help." + g)))
		}
		for _, u := range usages {
			s.println("  " + u)
		}
	}
	return nil
}

func (s *Shell) exit(_ context.Context, _ []string) error {
	s.println(s.tr.T("app.bye"))
	s.quit = true
	return nil
}

func (s *Shell) lang(_ context.Context, args []string) error {
	if len(args) == 0 {
		s.println(s.tr.Tf("lang.current", s.tr.Locale()))
		return nil
	}
	if len(args) != 1 {
		return errUsage
	}
	code, ok := i18n.Normalize(args[0])
	if !ok {
		s.warn(s.tr.Tf("lang.unsupported", args[0], strings.Join(i18n.Locales(), ", ")))
		return nil
	}

	s.tr = s.bundle.For(code)
	s.catalog.SetLocale(i18n.Tag(code))
	if s.prefs != nil {
		if err := s.prefs.SetLocale(code); err != nil {
			s.warn(s.tr.Tf("lang.save_failed", err))
		}
	}
	s.success(s.tr.Tf("lang.changed", code))
	return nil
}

// render is the catalog subscriber: every refreshed list is printed.
func (s *Shell) render(products []models.Product) {
	fmt.Fprint(s.out, s.st.productTable(s.tr, products))
}

// refresh reloads the catalog; the subscriber prints the result.
func (s *Shell) refresh(ctx context.Context) {
	if err := s.catalog.Refresh(ctx); err != nil {
		s.fail(s.tr.Tf("products.load_failed", describe(err)))
	}
}

func (s *Shell) println(msg string) {
	fmt.Fprintln(s.out, msg)
}

func (s *Shell) success(msg string) {
	s.println(s.st.Success.Render(msg))
}

func (s *Shell) warn(msg string) {
	s.println(s.st.Warning.Render(msg))
}

func (s *Shell) fail(msg string) {
	s.println(s.st.Error.Render(msg))
}

// describe turns an error into the short reason shown to the user.
func describe(err error) string {
	var se *remote.StatusError
	if errors.As(err, &se) {
		if se.Message != "" {
			return se.Message
		}
		return http.StatusText(se.StatusCode)
	}
	var ve *store.ValidationError
	if errors.As(err, &ve) {
		return ve.Error()
	}
	var fe *store.FetchError
	if errors.As(err, &fe) {
		return fe.Err.Error()
	}
	return err.Error()
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(s, "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errUsage
	}
	return id, nil
}

// parseAmount reads an optional amount argument, defaulting to 1. Zero and
// negative values are passed through so the store can reject them.
func parseAmount(args []string, i int) (int, error) {
	if len(args) <= i {
		return 1, nil
	}
	n, err := strconv.Atoi(args[i])
	if err != nil {
		return 0, errUsage
	}
	return n, nil
}

func dedupe(in []string) []string {
	sort.Strings(in)
	out := in[:0]
	for i, v := range in {
		if i == 0 || v != in[i-1] {
			out = append(out, v)
		}
	}
	return out
}
