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

	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"vertice/internal/api"
	"vertice/internal/auth"
	"vertice/internal/catalog"
	"vertice/internal/fixtures"
	synchub "vertice/internal/sync"
	"vertice/pkg/database"
	"vertice/pkg/logger"
	"vertice/pkg/utils"
)

func main() {
	configPath := flag.String("config", "config.yml", "config file (optional)")
	flag.Parse()

	cfg, err := utils.Load(*configPath)
	if err != nil {
		panic(err)
	}
	log, err := logger.Init(cfg.Env, cfg.Log.Level)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	db := database.MustOpen(database.FromConfig(cfg.Database))
	defer db.Close()
	if err := database.Migrate(db); err != nil {
		log.Fatal("db migrate failed", zap.Error(err))
	}

	src := fixtures.New(cfg.Data.Location)
	store := catalog.NewStore(src, log.Named("catalog"))
	store.Timeout = cfg.Data.Timeout

	// TCP sync first, so binding errors show up early
	hub := synchub.NewHub(log.Named("sync"))
	tcpSrv := synchub.NewServer(cfg.Sync.TCPAddr, hub, log.Named("sync"))
	tcpSrv.AllowAll = cfg.Sync.AllowAll
	if cfg.Sync.RequireToken {
		tokens := api.TokenService(cfg)
		tcpSrv.Tokens = &tokens
		tcpSrv.Clients = auth.NewRepo(db)
	}

	srv := api.NewServer(cfg, db, store, hub, log)
	httpSrv := &http.Server{
		Addr:              cfg.API.Addr,
		Handler:           srv.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return tcpSrv.Run(gctx)
	})
	g.Go(func() error {
		log.Info("HTTP API server listening",
			zap.String("addr", cfg.API.Addr),
			zap.String("data", src.Name()),
			zap.String("db", cfg.Database.Path))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down servers")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := httpSrv.Shutdown(shutdownCtx)
		hub.Close()
		return err
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", zap.Error(err))
		stop()
		os.Exit(1)
	}
	log.Info("servers stopped")
}
