package main

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"vertice/pkg/logger"
	"vertice/pkg/models"
)

// import-csv merges artworks from a CSV (the export-csv layout) into an
// obras.json fixture. Rows replace existing records with the same id.
func main() {
	var (
		in  = flag.String("in", "export/obras.csv", "input CSV path")
		out = flag.String("out", "data/obras.json", "fixture file to update")
	)
	flag.Parse()

	log, err := logger.New("dev", "info")
	if err != nil {
		panic(err)
	}

	records, err := readFixture(*out)
	if err != nil {
		log.Fatal("read fixture failed", zap.String("path", *out), zap.Error(err))
	}
	rows, err := readArtworks(*in, log)
	if err != nil {
		log.Fatal("read csv failed", zap.String("path", *in), zap.Error(err))
	}

	merged, added := merge(records, rows)
	if err := writeFixture(*out, merged); err != nil {
		log.Fatal("write fixture failed", zap.Error(err))
	}
	log.Info("imported artworks",
		zap.Int("rows", len(rows)),
		zap.Int("added", added),
		zap.Int("updated", len(rows)-added),
		zap.String("path", *out))
}

func readFixture(path string) ([]json.RawMessage, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return []json.RawMessage{}, nil
	}
	if err != nil {
		return nil, err
	}
	var records []json.RawMessage
	if err := json.Unmarshal(b, &records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return records, nil
}

func readArtworks(path string, log *zap.Logger) ([]models.Artwork, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := readHeader(r)
	if err != nil {
		return nil, err
	}

	var out []models.Artwork
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		id, err := strconv.Atoi(valueAt(header, row, "id"))
		titulo := valueAt(header, row, "titulo")
		if err != nil || id <= 0 || titulo == "" {
			log.Warn("skipping row without id or titulo", zap.Strings("row", row))
			continue
		}

		a := models.Artwork{
			ID:          id,
			Titulo:      titulo,
			CategoriaID: valueAt(header, row, "categoria"),
			Tecnica:     valueAt(header, row, "tecnica"),
		}
		a.ArtistaID, _ = strconv.Atoi(valueAt(header, row, "artista_id"))
		a.ArtistaNombre = valueAt(header, row, "artista")
		a.Anio, _ = strconv.Atoi(valueAt(header, row, "anio"))
		a.Precio, _ = strconv.ParseFloat(valueAt(header, row, "precio"), 64)
		a.Stats.Likes, _ = strconv.Atoi(valueAt(header, row, "likes"))
		out = append(out, a)
	}
	return out, nil
}

// merge replaces records whose id matches an imported artwork and appends
// the rest. Records that fail to decode are kept untouched.
func merge(records []json.RawMessage, rows []models.Artwork) ([]json.RawMessage, int) {
	index := make(map[int]int, len(records))
	for i, raw := range records {
		if a, err := models.DecodeArtwork(raw); err == nil {
			index[a.ID] = i
		}
	}

	added := 0
	for _, a := range rows {
		b, err := json.Marshal(a)
		if err != nil {
			continue
		}
		if i, ok := index[a.ID]; ok {
			records[i] = b
			continue
		}
		index[a.ID] = len(records)
		records = append(records, b)
		added++
	}
	return records, added
}

func writeFixture(path string, records []json.RawMessage) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}

func readHeader(r *csv.Reader) (map[string]int, error) {
	row, err := r.Read()
	if err != nil {
		return nil, err
	}
	header := make(map[string]int, len(row))
	for i, name := range row {
		header[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return header, nil
}

func valueAt(header map[string]int, row []string, key string) string {
	i, ok := header[key]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
