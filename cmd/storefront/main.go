package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/gamms/storefront/internal/cart"
	"github.com/gamms/storefront/internal/catalog"
	"github.com/gamms/storefront/internal/checkout"
	"github.com/gamms/storefront/internal/order"
	"github.com/gamms/storefront/internal/storage"
	"github.com/gamms/storefront/internal/web"
)

type Config struct {
	HTTPPort        string
	StorageBackend  string // file | redis | mongo | memory
	CartSlotKey     string
	CartSlotPath    string
	RedisAddr       string
	RedisPassword   string
	MongoURI        string
	MongoDBName     string
	ProductsFile    string
	RelayEndpoint   string
	OrderMailbox    string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		StorageBackend:  getEnv("STORAGE_BACKEND", "file"),
		CartSlotKey:     getEnv("CART_SLOT_KEY", "gamms_cart"),
		CartSlotPath:    getEnv("CART_SLOT_PATH", "gamms_cart.json"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:     getEnv("MONGO_DB_NAME", "gamms"),
		ProductsFile:    getEnv("PRODUCTS_FILE", "products.json"),
		RelayEndpoint:   getEnv("RELAY_ENDPOINT", "https://formspree.io/f/mldadbww"),
		OrderMailbox:    getEnv("ORDER_MAILBOX", "gammsgreisy@gmail.com"),
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	cfg := loadConfig()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	ctx := context.Background()

	slot, cleanup, err := buildSlot(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to set up cart storage")
	}
	defer cleanup()
	log.WithField("backend", cfg.StorageBackend).Info("cart storage ready")

	store := cart.NewStore(slot, log)
	cat := catalog.LoadFile(cfg.ProductsFile, log)
	log.WithField("products", len(cat.Products())).Info("catalog loaded")

	submitter := order.NewRelaySubmitter(cfg.RelayEndpoint, log)
	mailer := order.NewMailHandoff(cfg.OrderMailbox)
	checkoutSvc := checkout.NewService(store, submitter, mailer, log)

	badge := web.NewBadge(ctx, store)
	catalogH := web.NewCatalogHandler(cat, store, badge)
	cartH := web.NewCartHandler(store, checkoutSvc, badge)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      web.NewRouter(catalogH, cartH, log, cfg.RequestTimeout),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.HTTPPort).Info("storefront starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down storefront...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Fatal("server forced to shutdown")
	}

	log.Info("storefront stopped")
}

func buildSlot(ctx context.Context, cfg *Config, log *logrus.Logger) (storage.Slot, func(), error) {
	noop := func() {}

	switch cfg.StorageBackend {
	case "memory":
		return storage.NewMemorySlot(), noop, nil

	case "file":
		return storage.NewFileSlot(cfg.CartSlotPath), noop, nil

	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, noop, err
		}
		return storage.NewRedisSlot(client, cfg.CartSlotKey), func() { client.Close() }, nil

	case "mongo":
		db, err := storage.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			return nil, noop, err
		}
		cleanup := func() {
			if err := db.Client().Disconnect(context.Background()); err != nil {
				log.WithError(err).Warn("failed to disconnect from MongoDB")
			}
		}
		return storage.NewMongoSlot(db, cfg.CartSlotKey), cleanup, nil

	default:
		return nil, noop, errors.New("unknown STORAGE_BACKEND: " + cfg.StorageBackend)
	}
}
