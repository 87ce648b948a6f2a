package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"path/filepath"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"vertice/internal/catalog"
	"vertice/internal/fixtures"
	"vertice/pkg/logger"
	"vertice/pkg/utils"
)

// export-mirror writes every fixture collection in its normalized form, so
// a static server can publish a mirror with one schema per collection.
func main() {
	var (
		configPath = flag.String("config", "config.yml", "config file (optional)")
		outDir     = flag.String("out", "mirror/data", "output directory")
	)
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

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store := catalog.NewStore(fixtures.New(cfg.Data.Location), log.Named("catalog"))
	store.Timeout = cfg.Data.Timeout

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatal("mkdir failed", zap.Error(err))
	}

	collections := map[string]func(context.Context) any{
		catalog.Artworks:      func(ctx context.Context) any { return store.Artworks(ctx) },
		catalog.Artists:       func(ctx context.Context) any { return store.Artists(ctx) },
		catalog.Categories:    func(ctx context.Context) any { return store.Categories(ctx) },
		catalog.Comments:      func(ctx context.Context) any { return store.Comments(ctx) },
		catalog.Collections:   func(ctx context.Context) any { return store.Collections(ctx) },
		catalog.Events:        func(ctx context.Context) any { return store.Events(ctx) },
		catalog.News:          func(ctx context.Context) any { return store.News(ctx) },
		catalog.Notifications: func(ctx context.Context) any { return store.Notifications(ctx) },
	}

	g, gctx := errgroup.WithContext(ctx)
	for name, load := range collections {
		g.Go(func() error {
			path := filepath.Join(*outDir, fixtures.FileName(name))
			b, err := json.MarshalIndent(load(gctx), "", "  ")
			if err != nil {
				return err
			}
			return os.WriteFile(path, append(b, '\n'), 0o644)
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatal("write mirror failed", zap.Error(err))
	}

	log.Info("exported mirror", zap.Int("collections", len(collections)), zap.String("dir", *outDir))
}
