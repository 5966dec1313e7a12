package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tablesidear/api/internal/config"
	"github.com/tablesidear/api/internal/database"
	"github.com/tablesidear/api/internal/router"
	"github.com/tablesidear/api/internal/service"
	"github.com/tablesidear/api/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("connect to database: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("ping database: %v", err)
	}

	numbers, err := service.NewSnowflakeNumbers(cfg.OrderNodeID)
	if err != nil {
		log.Fatalf("order numbers: %v", err)
	}

	queries := database.New(pool)
	orders := service.NewOrderService(queries, pool, func(db database.DBTX) service.OrderStore {
		return database.New(db)
	}, numbers)

	hub := ws.NewHub()
	go hub.Run(ctx)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           router.New(cfg, queries, orders, hub, service.NewHTTPModelSizer()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Starting server on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("ERROR: shutdown: %v", err)
	}
}
