package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"storefront-checkout/internal/client"
	"storefront-checkout/internal/config"
	"storefront-checkout/internal/handler"
	"storefront-checkout/internal/notify"
	"storefront-checkout/internal/repository"
	"storefront-checkout/internal/server"
	"storefront-checkout/internal/service"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(&cfg.Log)

	db := client.InitMysqlClient(cfg.DatabaseURL)
	gateway := client.NewPaystackClient(&cfg.Paystack)
	redisClient := client.NewRedisClient(&cfg.Redis)

	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	flashSaleRepo := repository.NewFlashSaleRepository(db)
	couponRepo := repository.NewCouponRepository(db)
	cartRepo := repository.NewCartRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	addressRepo := repository.NewAddressRepository(db)
	webhookEventRepo := repository.NewWebhookEventRepository(db)

	notifier := notify.NewLogSender(logger)
	pricing := service.NewPriceResolver(flashSaleRepo)
	couponService := service.NewCouponService(db, cartRepo, couponRepo, productRepo, pricing)
	cartService := service.NewCartService(db, cartRepo, productRepo, couponRepo, couponService, pricing)
	orderService := service.NewOrderService(
		db, cartRepo, productRepo, couponRepo, orderRepo, addressRepo, userRepo,
		couponService, pricing, gateway, notifier, logger,
		cfg.BaseURL, cfg.Currency,
	)
	paymentService := service.NewPaymentService(db, orderRepo, userRepo, webhookEventRepo, gateway, notifier, logger)
	presence := service.NewPresenceTracker(redisClient, 5*time.Minute)
	promoService := service.NewPromoAdminService(couponRepo, flashSaleRepo)

	srv := server.NewServer(
		cfg.JWTSecret,
		logger,
		handler.NewCartHandler(cartService, couponService),
		handler.NewOrderHandler(orderService, cartService),
		handler.NewPaymentHandler(paymentService),
		handler.NewProductHandler(productRepo, pricing, presence),
		handler.NewAddressHandler(addressRepo),
		handler.NewAdminHandler(promoService),
	)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port
	logger.Info().Str("addr", serverAddr).Msg("starting HTTP server")
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	logger.Info().Msg("signal received, starting graceful shutdown")

	if err := srv.Shutdown(); err != nil {
		logger.Fatal().Err(err).Msg("HTTP server shutdown error")
	}
}

func newLogger(cfg *config.Log) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	if cfg.Format == "console" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
			Level(level).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
}
