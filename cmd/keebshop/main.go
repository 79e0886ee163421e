package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"keebshop/internal/api"
	"keebshop/internal/config"
	"keebshop/internal/http/handlers"
	applog "keebshop/internal/log"
	"keebshop/internal/repos"
	"keebshop/internal/session"
)

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	// Optional file logging
	var out io.Writer = os.Stdout
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			defer f.Close()
			out = io.MultiWriter(os.Stdout, f)
		}
	}
	applog.Setup(out, cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()
	if cfg.SessionSecret == "" {
		applog.Security(nil, "session.secret.missing", map[string]any{"hint": "set KEEBSHOP_SESSION_SECRET to seal the stored token"})
	}
	sessions := repos.NewSessionRepo(db, repos.NewSealer(cfg.SessionSecret))

	// Session wiring: the repo feeds the client its token, the client
	// authenticates for the store and reports rejected tokens back.
	client, err := api.New(cfg.APIBaseURL, api.WithTokenSource(sessions))
	if err != nil {
		log.Fatal(err)
	}
	store := session.New(sessions, client)
	session.NewSupervisor(ctx, store).Watch(client)

	app := handlers.NewApp(cfg, handlers.NewDeps(client, store, cfg))

	// Views render a waiting page until the stored session is resolved.
	go store.Init(ctx)

	go func() {
		<-ctx.Done()
		_ = app.Shutdown()
	}()

	applog.Info(nil, "server.start", map[string]any{"addr": cfg.Addr(), "api": cfg.APIBaseURL})
	if err := app.Listen(cfg.Addr()); err != nil {
		log.Fatal(err)
	}
}
