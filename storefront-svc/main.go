package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"delivery-storefront/config"
	httpapi "delivery-storefront/storefront-svc/internal/api/http"
	"delivery-storefront/storefront-svc/internal/service"
	"delivery-storefront/storefront-svc/internal/storage"
)

func main() {
	settings, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	config.InitLogger(settings.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	source, closeSource := newDatasetSource(ctx, settings)
	defer closeSource()

	sessionStore, closeStore := newSessionStorage(settings)
	defer closeStore()

	publisher, closePublisher := newOrderPublisher(settings)
	defer closePublisher()

	catalog := service.NewCatalogService(source, nil)
	orderOpts := []service.OrderOption{service.WithStrictTransitions(settings.Orders.StrictTransitions)}
	if publisher != nil {
		orderOpts = append(orderOpts, service.WithPublisher(publisher))
	}
	orders := service.NewOrderService(source, service.DefaultQRGenerator{BaseURL: settings.Server.PublicBaseURL}, orderOpts...)
	auth := service.NewAuthService(catalog)
	sessions := service.NewSessionManager(sessionStore, settings.Session.JWTSecret, settings.Session.TTL,
		service.WithCartSameRestaurant(settings.Cart.EnforceSameRestaurant))

	handler := httpapi.NewHandler(catalog, orders, auth, sessions, settings.Data.File)
	srv := &http.Server{
		Addr:         settings.Server.Addr,
		Handler:      httpapi.NewRouter(handler),
		ReadTimeout:  settings.Server.ReadTimeout,
		WriteTimeout: settings.Server.WriteTimeout,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("data_source", settings.Data.Source).Msg("storefront service starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), settings.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// newDatasetSource picks where the document comes from. The postgres source
// is seeded from DATA_SEED_FILE when one is set.
func newDatasetSource(ctx context.Context, settings *config.Settings) (service.DatasetSource, func()) {
	if settings.Data.Source != "postgres" {
		return storage.NewHTTPSource(settings.Data.URL, settings.Data.FetchTimeout), func() {}
	}

	db := config.MustInitPostgres(settings.DB)
	src := storage.NewPostgresSource(db, settings.Data.DatasetName)
	if err := src.EnsureSchema(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to create datasets table")
	}
	if err := seedDataset(ctx, src, settings.Data.SeedFile); err != nil {
		log.Fatal().Err(err).Str("file", settings.Data.SeedFile).Msg("failed to seed dataset")
	}
	return src, func() { db.Close() }
}

func seedDataset(ctx context.Context, src *storage.PostgresSource, file string) error {
	if file == "" {
		return nil
	}
	ds, _, err := storage.LoadDocument(file)
	if err != nil {
		return err
	}
	if err := src.Put(ctx, ds); err != nil {
		return err
	}
	log.Info().Str("dataset", src.Name).Int("restaurants", len(ds.Restaurants)).Msg("dataset seeded")
	return nil
}

func newSessionStorage(settings *config.Settings) (service.Storage, func()) {
	if settings.Redis.Addr == "" {
		log.Warn().Msg("REDIS_HOST not set, sessions are kept in memory")
		return storage.NewMemoryStorage(), func() {}
	}
	client := config.MustInitRedis(settings.Redis.Addr)
	return storage.NewRedisStorage(client, settings.Session.TTL), func() { client.Close() }
}

func newOrderPublisher(settings *config.Settings) (service.OrderPublisher, func()) {
	if settings.Kafka.Broker == "" {
		log.Info().Msg("KAFKA_BROKER not set, order events disabled")
		return nil, func() {}
	}
	writer := config.NewKafkaWriter(settings.Kafka.Broker, settings.Kafka.OrderTopic)
	return storage.NewKafkaPublisher(writer), func() { writer.Close() }
}
