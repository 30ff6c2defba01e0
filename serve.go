package main

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"etalase/internal/config"
	"etalase/internal/handlers"
	"etalase/internal/models"
	"etalase/internal/repositories"
	"etalase/internal/services"
	"etalase/pkg/logger"
	"etalase/pkg/rabbitmq"
	"etalase/pkg/session"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the development inventory API",
	Long: `Serves /auth and /api/inventory backed by SQLite (or PostgreSQL when
DATABASE_DSN is a postgres DSN). Seeds the accounts admin/admin123 (ADMIN) and
user/user123 (USER) and a few products on first start.

Logout revocations go to Redis when REDIS_ADDR is set and inventory events are
published to RabbitMQ when RABBITMQ_URL is set.`,
	Annotations: map[string]string{logLevelAnnotation: "info"},
	RunE:        runServe,
}

func init() {
	serveCmd.Flags().String("port", ":8080", "Listen address (env APP_PORT)")
	serveCmd.Flags().String("dsn", "", "Database DSN (env DATABASE_DSN)")
	bindFlag(serveCmd, "APP_PORT", "port")
	bindFlag(serveCmd, "DATABASE_DSN", "dsn")
}

func runServe(cmd *cobra.Command, _ []string) error {
	log := logger.Get()
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := openDatabase(cfg.DatabaseDSN)
	if err != nil {
		return err
	}

	denylist, closeDenylist, err := newDenylist(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeDenylist()

	var publisher services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			log.Error().Err(err).Msg("RabbitMQ unavailable, inventory events will not be published")
		} else {
			defer mqClient.Close()
			publisher = mqClient
		}
	}

	productRepo := repositories.NewGORMProductRepository(db)
	userRepo := repositories.NewGORMUserRepository(db)
	authService := services.NewAuthService(userRepo, cfg.JWTSecret, denylist)
	productService := services.NewProductService(productRepo, publisher)

	if err := seed(authService, userRepo, productRepo); err != nil {
		return err
	}

	app := handlers.NewApp(handlers.AppConfig{RequestLog: true, SecureCookie: cfg.SecureCookie}, authService, productService)
	return listen(ctx, app, cfg.AppPort)
}

// listen serves app until ctx is done, then shuts it down.
func listen(ctx context.Context, app *fiber.App, addr string) error {
	log := logger.Get()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("starting inventory API")
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		return fmt.Errorf("error during shutdown: %w", err)
	}
	log.Info().Msg("server gracefully stopped")
	return nil
}

func isPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") ||
		strings.HasPrefix(dsn, "postgresql://") ||
		strings.Contains(dsn, "host=")
}

// openDatabase connects with the driver matching the DSN and migrates the
// schema.
func openDatabase(dsn string) (*gorm.DB, error) {
	dialector := sqlite.Open(dsn)
	if isPostgresDSN(dsn) {
		dialector = postgres.Open(dsn)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Warn)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.AutoMigrate(&models.Product{}, &models.User{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return db, nil
}

// newDenylist picks Redis when configured and the in-memory denylist
// otherwise. The returned func releases the connection.
func newDenylist(ctx context.Context, cfg *config.Config) (session.Denylist, func(), error) {
	if cfg.RedisAddr == "" {
		return session.NewMemoryDenylist(), func() {}, nil
	}
	client, err := session.ConnectRedis(ctx, session.RedisConfig{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
	if err != nil {
		return nil, nil, err
	}
	log := logger.Get()
	log.Info().Str("addr", cfg.RedisAddr).Msg("using Redis session denylist")
	return session.NewRedisDenylist(client), func() { _ = client.Close() }, nil
}

var seedUsers = []models.User{
	{Username: "admin", Password: "admin123", Role: models.RoleAdmin},
	{Username: "user", Password: "user123", Role: models.RoleUser},
}

var seedProducts = []models.Product{
	{Name: "Laptop", Quantity: 10, Info: "High performance laptop"},
	{Name: "Keyboard", Quantity: 25, Info: "Mechanical keyboard"},
	{Name: "Mouse", Quantity: 50, Info: "Ergonomic wireless mouse"},
	{Name: "Monitor", Quantity: 0, Info: "27 inch, back soon"},
}

// seed creates the default accounts that do not exist yet and, on an empty
// inventory, the sample products.
func seed(authService *services.AuthService, users repositories.UserRepository, products repositories.ProductRepository) error {
	log := logger.Get()

	for _, u := range seedUsers {
		exists, err := users.Exists(u.Username)
		if err != nil {
			return fmt.Errorf("failed to look up user %s: %w", u.Username, err)
		}
		if exists {
			continue
		}
		user := u
		if err := authService.RegisterUser(&user); err != nil {
			return fmt.Errorf("failed to seed user %s: %w", u.Username, err)
		}
		log.Info().Str("username", u.Username).Str("role", string(u.Role)).Msg("seeded user")
	}

	existing, err := products.GetAll()
	if err != nil {
		return fmt.Errorf("failed to list products: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}
	for _, p := range seedProducts {
		product := p
		if err := products.Create(&product); err != nil {
			return fmt.Errorf("failed to seed product %s: %w", p.Name, err)
		}
		log.Info().Int64("id", product.ID).Str("name", product.Name).Msg("seeded product")
	}
	return nil
}
