package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/matryer/way"
	"github.com/sirupsen/logrus"

	"triad/internal/app"
	"triad/internal/catalog"
	"triad/internal/config"
	"triad/internal/ports/rest"
	"triad/internal/ports/ws"
)

func main() {
	configPath := flag.String("config", "", "path to a JSON config file")
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("config: %v", err)
	}
	if cfg.TokenSecret == config.Default().TokenSecret {
		logger.Warn("using the development token secret, set TRIAD_TOKEN_SECRET in production")
	}

	cat, err := loadCatalog(cfg.CardsPath)
	if err != nil {
		logger.Fatalf("catalog: %v", err)
	}

	tokens := app.NewTokenService(cfg.TokenSecret, cfg.TokenIssuer, cfg.TokenTTL)
	guests := app.NewGuestService(tokens, nil, nil)
	rooms := app.NewRoomService(cat, app.RoomServiceOptions{IdleTimeout: cfg.IdleTimeout})
	hub := ws.NewHub(rooms, tokens, cat, logger, ws.Options{
		GracePeriod:  cfg.GracePeriod,
		ReapInterval: cfg.ReapInterval,
		MaxPayload:   cfg.MaxPayload,
	})

	router := way.NewRouter()
	router.HandleFunc("GET", "/ws", hub.Handler())
	rest.NewHandler(rooms, guests, logger).Routes(router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go hub.Run(ctx)

	srv := &http.Server{Addr: cfg.Addr, Handler: router}
	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Infof("listening on %s with %d cards", cfg.Addr, cat.Len())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("server: %v", err)
	}
}

func loadCatalog(path string) (*catalog.InMemory, error) {
	if path == "" {
		return catalog.MustStandard(), nil
	}
	return catalog.FromFile(path)
}
