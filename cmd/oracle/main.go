package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"chessboard/internal/config"
	"chessboard/internal/handlers"
	"chessboard/internal/logging"
	"chessboard/internal/referee"
	"chessboard/internal/storage"
	"chessboard/internal/version"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	addr := flag.String("addr", config.Getenv("ORACLE_ADDR", ":8081"), "listen address")
	dsn := flag.String("dsn", config.Getenv("ORACLE_DSN", ""), "postgres DSN; empty disables persistence")
	idle := flag.Duration("idle", config.Getdur("ORACLE_IDLE", 24*time.Hour), "evict games idle for this long")
	debug := flag.Bool("debug", config.Getenb("ORACLE_DEBUG", false), "enable debug logging")
	flag.Parse()
	logging.Debug = *debug

	var store *storage.Store
	if *dsn != "" {
		db, err := storage.New(*dsn, *debug)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		store = storage.NewStore(db)
		log.Printf("Persisting games to postgres")
	}

	hub := referee.NewHub(store, *idle)
	defer hub.Close()

	srv := &http.Server{
		Addr:              *addr,
		Handler:           handlers.NewHandler(hub).Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("Chess oracle %s listening on http://localhost%s …", version.String(), *addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
