package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"arabica/internal/config"
	httpapi "arabica/internal/http"
	"arabica/internal/ratelimit"
	"arabica/internal/repository"
	"arabica/internal/service"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load(".env")
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		cancel()
		logger.Fatal().Err(err).Msg("connect mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		cancel()
		logger.Fatal().Err(err).Msg("ping mongo")
	}
	cancel()

	store := repository.NewMongoStore(client.Database(cfg.MongoDatabase))
	if err := store.EnsureIndexes(context.Background()); err != nil {
		logger.Fatal().Err(err).Msg("ensure indexes")
	}

	products := repository.NewMongoProducts(store)
	carts := repository.NewMongoCarts(store)
	orders := repository.NewMongoOrders(store)
	customers := repository.NewMongoCustomers(store)

	catalogSvc := service.NewCatalogService(products)
	cartSvc := service.NewCartService(carts, products, customers)
	orderSvc := service.NewOrderService(orders, products, customers)

	limiter := ratelimit.New(ratelimit.Config{
		Capacity: cfg.RateLimitCapacity,
		Window:   cfg.RateLimitWindow,
	})
	defer limiter.Close()

	srv := httpapi.NewServer(catalogSvc, cartSvc, orderSvc, logger, limiter)

	httpServer := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: srv.Engine(),
	}

	go func() {
		logger.Info().Str("addr", httpServer.Addr).Msg("http server listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
	}
	if err := client.Disconnect(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("mongo disconnect error")
	}
}
