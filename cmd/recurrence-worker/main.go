package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/shearbook/salon-scheduling/internal/config"
	"github.com/shearbook/salon-scheduling/internal/db"
	"github.com/shearbook/salon-scheduling/internal/recurrence"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("recurrence-worker starting up")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	log.Printf("running recurrence worker in env=%s interval=%s horizon_days=%d", cfg.Env, cfg.WorkerInterval, cfg.HorizonDays)

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

	svc := recurrence.NewService(recurrence.NewPgRepository(pgPool), cfg.Location)

	// Run once at startup
	runOnce(rootCtx, svc, cfg.HorizonDays)

	ticker := time.NewTicker(cfg.WorkerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rootCtx.Done():
			log.Println("shutdown signal received, stopping recurrence worker")
			return
		case <-ticker.C:
			runOnce(rootCtx, svc, cfg.HorizonDays)
		}
	}
}

func runOnce(ctx context.Context, svc *recurrence.Service, horizonDays int) {
	runCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	start := time.Now()
	result, err := svc.Generate(runCtx, horizonDays)
	if err != nil {
		log.Printf("generation run error: %v", err)
		return
	}
	log.Printf("generation run complete in %s generated=%d", time.Since(start), result.Generated)
}
