package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/shearbook/salon-scheduling/internal/api"
	"github.com/shearbook/salon-scheduling/internal/booking"
	"github.com/shearbook/salon-scheduling/internal/config"
	"github.com/shearbook/salon-scheduling/internal/db"
	"github.com/shearbook/salon-scheduling/internal/notify"
	"github.com/shearbook/salon-scheduling/internal/payment"
	"github.com/shearbook/salon-scheduling/internal/recurrence"
	redisclient "github.com/shearbook/salon-scheduling/internal/redis"
)

const version = "0.3.0"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("api-server starting up")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	log.Printf("running in env=%s http_port=%s tz=%s", cfg.Env, cfg.HTTPPort, cfg.Location)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect Postgres
	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		log.Fatalf("postgres connection error: %v", err)
	}
	defer pgPool.Close()
	log.Println("connected to Postgres")

	// Connect Redis
	rdb, err := redisclient.NewRedisClient(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
	if err != nil {
		log.Fatalf("redis connection error: %v", err)
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Printf("error closing redis: %v", err)
		}
	}()
	log.Println("connected to Redis")

	notifier := buildNotifier(cfg)
	charger := buildCharger(cfg)
	log.Printf("providers: notify=%s payment=%s", notifier.ProviderID(), charger.ProviderID())

	locker := redisclient.NewRedisTechnicianLocker(rdb, cfg.LockTTL)
	bookingSvc := booking.NewService(booking.NewPgRepository(pgPool), locker, notifier, charger, cfg)
	recurrenceSvc := recurrence.NewService(recurrence.NewPgRepository(pgPool), cfg.Location)

	handler := api.NewRouter(api.RouterConfig{
		Booking:    bookingSvc,
		Recurrence: recurrenceSvc,
		Location:   cfg.Location,
		PgPool:     pgPool,
		Redis:      rdb,
		Env:        cfg.Env,
		Version:    version,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server error: %v", err)
		}
	}()

	<-rootCtx.Done()

	log.Println("shutting down api-server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown error: %v", err)
	}
}

func buildNotifier(cfg config.Config) notify.Notifier {
	switch cfg.NotifyProvider {
	case "sms":
		return notify.NewWebhookSMSSender(cfg.SMSWebhookURL, cfg.SMSWebhookToken)
	case "email":
		return notify.NewSMTPEmailSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom)
	default:
		return notify.NewNoopNotifier()
	}
}

func buildCharger(cfg config.Config) payment.DepositCharger {
	if cfg.StripeSecretKey != "" {
		return payment.NewStripeCharger(cfg.StripeSecretKey, cfg.StripeCurrency)
	}
	return payment.NewNoopCharger()
}
