package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/kareempogba0/B-Laban/internal/assets"
	"github.com/kareempogba0/B-Laban/internal/cache"
	"github.com/kareempogba0/B-Laban/internal/config"
	deliveryHttp "github.com/kareempogba0/B-Laban/internal/delivery/http"
	"github.com/kareempogba0/B-Laban/internal/identity"
	"github.com/kareempogba0/B-Laban/internal/identity/firebase"
	"github.com/kareempogba0/B-Laban/internal/messaging"
	"github.com/kareempogba0/B-Laban/internal/messaging/gochannel"
	"github.com/kareempogba0/B-Laban/internal/messaging/kafka"
	"github.com/kareempogba0/B-Laban/internal/repository"
	"github.com/kareempogba0/B-Laban/internal/repository/firestore"
	"github.com/kareempogba0/B-Laban/internal/repository/memory"
	"github.com/kareempogba0/B-Laban/internal/repository/mongo"
	"github.com/kareempogba0/B-Laban/internal/repository/postgres"
	"github.com/kareempogba0/B-Laban/internal/service"
	"github.com/kareempogba0/B-Laban/internal/state"
)

// app holds the wired dependencies shared by the commands.
type app struct {
	cfg *config.Config

	products  repository.ProductRepository
	profiles  repository.ProfileRepository
	orders    repository.OrderRepository
	reviews   repository.ReviewRepository
	wishlists repository.WishlistRepository
	// migrator is nil for stores without a legacy wishlist layout.
	migrator repository.WishlistMigrator
	journal  repository.EventStore

	cache      cache.Cache
	bus        messaging.Bus
	publisher  messaging.Publisher
	subscriber messaging.Subscriber
	provider   identity.Provider
	uploader   assets.Uploader

	closers []func() error
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{cfg: cfg}
	if err := a.openStore(ctx); err != nil {
		a.Close()
		return nil, err
	}
	if err := a.openInfra(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) openStore(ctx context.Context) error {
	cfg := a.cfg

	if cfg.FirebaseProjectID != "" {
		fbApp, err := firebase.NewApp(ctx, cfg.FirebaseProjectID, cfg.FirebaseCredentialsJSON, cfg.FirebaseCredentialsFile)
		if err != nil {
			return err
		}
		a.provider, err = firebase.NewProvider(ctx, fbApp)
		if err != nil {
			return err
		}

		if cfg.StoreBackend == config.StoreFirestore {
			client, err := fbApp.Firestore(ctx)
			if err != nil {
				return fmt.Errorf("failed to get firestore client: %w", err)
			}
			a.closers = append(a.closers, client.Close)

			wishlists := firestore.NewWishlistRepository(client)
			a.products = firestore.NewProductRepository(client)
			a.profiles = firestore.NewProfileRepository(client)
			a.orders = firestore.NewOrderRepository(client)
			a.reviews = firestore.NewReviewRepository(client)
			a.wishlists = wishlists
			a.migrator = wishlists
			return nil
		}
	} else {
		slog.Warn("FIREBASE_PROJECT_ID not set, sign-in only accepts tokens registered at runtime")
		a.provider = identity.NewStaticProvider()
	}

	switch cfg.StoreBackend {
	case config.StoreMongo:
		db, err := mongo.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return db.Client().Disconnect(ctx)
		})
		a.products = mongo.NewProductRepository(db)
		a.profiles = mongo.NewProfileRepository(db)
		a.orders = mongo.NewOrderRepository(db)
		a.reviews = mongo.NewReviewRepository(db)
		a.wishlists = mongo.NewWishlistRepository(db)
	case config.StoreMemory:
		wishlists := memory.NewWishlistRepository()
		a.products = memory.NewProductRepository(memory.SeedProducts()...)
		a.profiles = memory.NewProfileRepository()
		a.orders = memory.NewOrderRepository()
		a.reviews = memory.NewReviewRepository()
		a.wishlists = wishlists
		a.migrator = wishlists
	}
	slog.Info("Document store ready", "backend", cfg.StoreBackend)
	return nil
}

func (a *app) openInfra(ctx context.Context) error {
	cfg := a.cfg

	if cfg.DatabaseURL != "" {
		db, err := postgres.InitDB(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, db.Close)
		a.journal = postgres.NewEventStore(db)
	}

	if cfg.RedisAddr != "" {
		c, err := cache.NewRedisCache(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.SessionIdleTimeout)
		if err != nil {
			return err
		}
		a.cache = c
	} else {
		a.cache = cache.NewMemoryCache()
	}
	a.closers = append(a.closers, a.cache.Close)

	a.bus = gochannel.NewBus(slog.Default())
	a.closers = append(a.closers, a.bus.Close)

	if len(cfg.KafkaBrokers) > 0 {
		pub, sub := kafka.NewKafkaBroker(cfg.KafkaBrokers)
		a.publisher, a.subscriber = pub, sub
		a.closers = append(a.closers, pub.Close)
		slog.Info("Domain events go to Kafka", "brokers", cfg.KafkaBrokers)
	} else {
		a.publisher, a.subscriber = a.bus, a.bus
		slog.Info("KAFKA_BROKERS not set, domain events stay in process")
	}

	if cfg.UploadsEnabled() {
		up, err := assets.NewCloudinaryUploader(cfg.CloudinaryUploadPrefix, cfg.CloudinaryCloudName, cfg.CloudinaryPreset)
		if err != nil {
			return err
		}
		a.uploader = up
	}
	return nil
}

func (a *app) reviewService() *service.ReviewService {
	return service.NewReviewService(a.reviews, a.orders, a.profiles, a.products, a.publisher)
}

// server builds the HTTP handler and the session registry behind it.
func (a *app) server() (http.Handler, *state.Registry, *service.ReviewService) {
	registry := state.NewRegistry(a.bus, a.journal)

	catalog := service.NewCatalogService(a.products, a.cache, a.cfg.ImageBaseURL)
	registry.OnClose(catalog.ForgetSession)

	wishlist := service.NewWishlistService(a.wishlists, a.cfg.ImageBaseURL)
	reviews := a.reviewService()

	handler := deliveryHttp.NewHandler(registry, deliveryHttp.Services{
		Catalog:  catalog,
		Cart:     service.NewCartService(catalog),
		Wishlist: wishlist,
		Auth:     service.NewAuthService(a.provider, a.profiles, wishlist),
		Reviews:  reviews,
		Checkout: service.NewCheckoutService(a.orders, catalog, a.publisher),
		Profiles: service.NewProfileService(a.profiles, a.uploader),
	})

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	return deliveryHttp.EnableCORS(mux), registry, reviews
}

// Close releases everything in reverse order of opening.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
