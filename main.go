package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"chessboard/internal/config"
	"chessboard/internal/frontend"
	"chessboard/internal/logging"
	"chessboard/internal/oracle"
	"chessboard/internal/referee"
	"chessboard/internal/selection"
	"chessboard/internal/templates"
	"chessboard/internal/version"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	addr := flag.String("addr", config.Getenv("CHESSBOARD_ADDR", ":8080"), "listen address")
	oracleURL := flag.String("oracle", config.Getenv("CHESSBOARD_ORACLE_URL", "http://localhost:8081"), "oracle base URL; empty runs the rules in process")
	promote := flag.String("promote", config.Getenv("CHESSBOARD_PROMOTE", "queen"), "piece requested on promotion")
	debug := flag.Bool("debug", config.Getenb("CHESSBOARD_DEBUG", false), "enable debug logging")
	flag.Parse()
	logging.Debug = *debug

	templates.SetCommit(version.Commit)

	var o oracle.Oracle
	if base := strings.TrimSpace(*oracleURL); base != "" {
		o = oracle.NewClient(base, &http.Client{Timeout: 10 * time.Second})
		log.Printf("Using oracle at %s", base)
	} else {
		hub := referee.NewHub(nil, 24*time.Hour)
		defer hub.Close()
		o = referee.Local{Hub: hub}
		log.Printf("Using in-process oracle")
	}

	app := frontend.NewApp(o, selection.WithPromotion(strings.ToLower(*promote)))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		_ = app.ShutdownWithTimeout(5 * time.Second)
	}()

	log.Printf("Chessboard %s listening on http://localhost%s …", version.String(), *addr)
	return app.Listen(*addr)
}
