package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"flag"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/zap"

	"vertice/internal/catalog"
	"vertice/internal/fixtures"
	"vertice/pkg/database"
	"vertice/pkg/logger"
	"vertice/pkg/utils"
)

func main() {
	var (
		configPath  = flag.String("config", "config.yml", "config file (optional)")
		artworksOut = flag.String("obras", "export/obras.csv", "output CSV path for artworks")
		sessionsOut = flag.String("sessions", "export/sessions.csv", "output CSV path for stored sessions (empty to skip)")
		sortKey     = flag.String("sort", string(catalog.SortRelevance), "artwork order")
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
	n, err := exportArtworks(ctx, store, catalog.ParseSortKey(*sortKey), *artworksOut)
	if err != nil {
		log.Fatal("export artworks failed", zap.Error(err))
	}
	log.Info("exported artworks", zap.Int("rows", n), zap.String("path", *artworksOut))

	if *sessionsOut == "" {
		return
	}
	db := database.MustOpen(database.FromConfig(cfg.Database))
	defer db.Close()
	if err := database.Migrate(db); err != nil {
		log.Fatal("db migrate failed", zap.Error(err))
	}
	n, err = exportSessions(ctx, db, *sessionsOut)
	if err != nil {
		log.Fatal("export sessions failed", zap.Error(err))
	}
	log.Info("exported sessions", zap.Int("rows", n), zap.String("path", *sessionsOut))
}

func create(outPath string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return nil, err
	}
	return os.Create(outPath)
}

// exportArtworks writes every artwork joined with its artist.
func exportArtworks(ctx context.Context, store *catalog.Store, key catalog.SortKey, outPath string) (int, error) {
	cards := catalog.SortCards(catalog.Cards(store.Artworks(ctx), store.Artists(ctx)), key)

	f, err := create(outPath)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"id", "titulo", "artista_id", "artista", "categoria", "anio", "precio", "tecnica", "likes"}); err != nil {
		return 0, err
	}
	for _, c := range cards {
		anio := ""
		if c.Anio > 0 {
			anio = strconv.Itoa(c.Anio)
		}
		if err := w.Write([]string{
			strconv.Itoa(c.ID),
			c.Titulo,
			strconv.Itoa(c.Artist.ID),
			c.Artist.Nombre,
			c.CategoriaID,
			anio,
			strconv.FormatFloat(c.Precio, 'f', 2, 64),
			c.Tecnica,
			strconv.Itoa(c.Stats.Likes),
		}); err != nil {
			return 0, err
		}
	}

	w.Flush()
	return len(cards), w.Error()
}

func exportSessions(ctx context.Context, db *sql.DB, outPath string) (int, error) {
	f, err := create(outPath)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"client_id", "revoked", "key", "bytes", "updated_at"}); err != nil {
		return 0, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT s.namespace, COALESCE(c.revoked, 0), s.key, LENGTH(s.value), s.updated_at
		FROM local_storage s
		LEFT JOIN clients c ON c.id = s.namespace
		ORDER BY s.updated_at DESC
	`)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	n := 0
	for rows.Next() {
		var (
			namespace string
			revoked   bool
			key       string
			size      int
			updatedAt sql.NullTime
		)
		if err := rows.Scan(&namespace, &revoked, &key, &size, &updatedAt); err != nil {
			return n, err
		}

		updated := ""
		if updatedAt.Valid {
			updated = updatedAt.Time.Format(time.RFC3339)
		}
		if err := w.Write([]string{namespace, strconv.FormatBool(revoked), key, strconv.Itoa(size), updated}); err != nil {
			return n, err
		}
		n++
	}
	if err := rows.Err(); err != nil {
		return n, err
	}

	w.Flush()
	return n, w.Error()
}
