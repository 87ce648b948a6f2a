package catalog_test

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"vertice/internal/catalog"
	"vertice/internal/catalog/catalogtest"
	"vertice/internal/fixtures"
	"vertice/pkg/models"
)

type failingSource struct{}

func (failingSource) Name() string { return "failing" }

func (failingSource) Fetch(context.Context, string) ([]byte, error) {
	return nil, errors.New("connection refused")
}

type blockingSource struct{}

func (blockingSource) Name() string { return "blocking" }

func (blockingSource) Fetch(ctx context.Context, _ string) ([]byte, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func ids[T any](items []T, id func(T) int) []int {
	out := make([]int, 0, len(items))
	for _, it := range items {
		out = append(out, id(it))
	}
	return out
}

func cardIDs(cards []models.ArtworkCard) []int {
	return ids(cards, func(c models.ArtworkCard) int { return c.ID })
}

func TestArtworksNormalizesRecords(t *testing.T) {
	s := catalogtest.NewStore(zaptest.NewLogger(t))
	artworks := s.Artworks(context.Background())

	require.Len(t, artworks, 4, "record without id is skipped")
	assert.Equal(t, 850.5, artworks[1].Precio)
	assert.Equal(t, 2019, artworks[1].Anio)
	assert.Equal(t, "moderno", artworks[1].CategoriaID)
	assert.Equal(t, 2015, artworks[2].Anio)
	assert.Equal(t, 1, artworks[2].ArtistaID)
	assert.Equal(t, "Clásico", artworks[2].CategoriaID)
}

func TestArtworkDetail(t *testing.T) {
	s := catalogtest.NewStore(zaptest.NewLogger(t))
	ctx := context.Background()

	d := s.ArtworkDetail(ctx, 1)
	require.NotNil(t, d)
	assert.Equal(t, "Horizonte Rojo", d.Titulo)
	assert.Equal(t, "José Pérez", d.Artist.Nombre)
	assert.False(t, d.Artist.Placeholder)
	require.NotNil(t, d.Category)
	assert.Equal(t, "moderno", d.Category.Slug)
	assert.Len(t, d.Comments, 2)

	assert.Nil(t, s.ArtworkDetail(ctx, 999))
}

func TestArtworkDetailPlaceholderArtist(t *testing.T) {
	s := catalogtest.NewStore(zaptest.NewLogger(t))

	d := s.ArtworkDetail(context.Background(), 4)
	require.NotNil(t, d)
	assert.True(t, d.Artist.Placeholder)
	assert.Equal(t, 99, d.Artist.ID)
	assert.Equal(t, "Autor Desconocido", d.Artist.Nombre)
	assert.NotNil(t, d.Comments)
	assert.Empty(t, d.Comments)
}

func TestPlaceholderArtistLabel(t *testing.T) {
	fsys := catalogtest.FS()
	fsys["obras.json"] = &fstest.MapFile{Data: []byte(`[{"id": 7, "titulo": "Suelta", "artista_id": 42}]`)}
	s := catalog.NewStore(fixtures.NewFSSource(fsys), zaptest.NewLogger(t))

	d := s.ArtworkDetail(context.Background(), 7)
	require.NotNil(t, d)
	assert.Equal(t, models.PlaceholderArtistName, d.Artist.Nombre)
	assert.Nil(t, d.Category)
}

func TestArtistDetail(t *testing.T) {
	s := catalogtest.NewStore(zaptest.NewLogger(t))
	ctx := context.Background()

	d := s.ArtistDetail(ctx, 1)
	require.NotNil(t, d)
	assert.Equal(t, []int{1, 3}, ids(d.Works, func(a models.Artwork) int { return a.ID }))
	assert.Equal(t, []int{10, 12}, ids(d.Collections, func(c models.Collection) int { return c.ID }))

	d = s.ArtistDetail(ctx, 2)
	require.NotNil(t, d)
	assert.Equal(t, "Ana María Ruiz", d.Nombre)
	assert.Len(t, d.Works, 1)
	assert.NotNil(t, d.Collections)
	assert.Empty(t, d.Collections)

	assert.Nil(t, s.ArtistDetail(ctx, 42))
}

func TestCategoryView(t *testing.T) {
	s := catalogtest.NewStore(zaptest.NewLogger(t))
	ctx := context.Background()

	v := s.CategoryView(ctx, "MODERNO")
	require.NotNil(t, v.Category)
	assert.Equal(t, []int{1, 2, 4}, cardIDs(v.Artworks))
	assert.True(t, v.Artworks[2].Artist.Placeholder)

	v = s.CategoryView(ctx, "clasico")
	require.NotNil(t, v.Category)
	assert.Equal(t, []int{3}, cardIDs(v.Artworks))

	v = s.CategoryView(ctx, "abstracto")
	require.NotNil(t, v.Category)
	assert.NotNil(t, v.Artworks)
	assert.Empty(t, v.Artworks)

	v = s.CategoryView(ctx, "inexistente")
	assert.Nil(t, v.Category)
	assert.NotNil(t, v.Artworks)
	assert.Empty(t, v.Artworks)
}

func TestBrokenSourceDegradesToEmpty(t *testing.T) {
	s := catalog.NewStore(failingSource{}, zaptest.NewLogger(t))
	ctx := context.Background()

	assert.Empty(t, s.LoadCollection(ctx, catalog.Artworks))
	assert.NotNil(t, s.Artists(ctx))
	assert.Empty(t, s.Artists(ctx))
	assert.Nil(t, s.ArtworkDetail(ctx, 1))
	assert.Nil(t, s.ArtistDetail(ctx, 1))

	v := s.CategoryView(ctx, "moderno")
	assert.Nil(t, v.Category)
	assert.Empty(t, v.Artworks)

	items, total := s.List(ctx, catalog.ListQuery{})
	assert.Empty(t, items)
	assert.Zero(t, total)
}

func TestMalformedCollectionDegradesToEmpty(t *testing.T) {
	fsys := catalogtest.FS()
	fsys["artistas.json"] = &fstest.MapFile{Data: []byte(`{"not": "an array"}`)}
	delete(fsys, "comentarios.json")
	s := catalog.NewStore(fixtures.NewFSSource(fsys), zaptest.NewLogger(t))

	d := s.ArtworkDetail(context.Background(), 1)
	require.NotNil(t, d)
	assert.True(t, d.Artist.Placeholder)
	assert.Empty(t, d.Comments)
}

func TestLoadTimeout(t *testing.T) {
	s := catalog.NewStore(blockingSource{}, zaptest.NewLogger(t))
	s.Timeout = 20 * time.Millisecond

	start := time.Now()
	assert.Empty(t, s.Categories(context.Background()))
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestListSorting(t *testing.T) {
	s := catalogtest.NewStore(zaptest.NewLogger(t))
	ctx := context.Background()

	cases := []struct {
		sort string
		want []int
	}{
		{"", []int{1, 2, 3, 4}},
		{"relevancia", []int{1, 2, 3, 4}},
		{"desconocido", []int{1, 2, 3, 4}},
		{"precio-asc", []int{4, 2, 1, 3}},
		{"precio-desc", []int{3, 1, 2, 4}},
		{"anio-asc", []int{3, 2, 1, 4}},
		{"anio-desc", []int{4, 1, 2, 3}},
		{"popular", []int{2, 1, 3, 4}},
	}
	for _, tc := range cases {
		t.Run(tc.sort, func(t *testing.T) {
			items, total := s.List(ctx, catalog.ListQuery{Sort: catalog.ParseSortKey(tc.sort)})
			assert.Equal(t, 4, total)
			assert.Equal(t, tc.want, cardIDs(items))
		})
	}
}

func TestListFiltersAndPages(t *testing.T) {
	s := catalogtest.NewStore(zaptest.NewLogger(t))
	ctx := context.Background()

	items, total := s.List(ctx, catalog.ListQuery{Q: "perez"})
	assert.Equal(t, 2, total)
	assert.Equal(t, []int{1, 3}, cardIDs(items))

	items, _ = s.List(ctx, catalog.ListQuery{Q: "ACRILICO"})
	assert.Equal(t, []int{2}, cardIDs(items))

	items, total = s.List(ctx, catalog.ListQuery{Category: "clasico"})
	assert.Equal(t, 1, total)
	assert.Equal(t, []int{3}, cardIDs(items))

	items, total = s.List(ctx, catalog.ListQuery{Limit: 2, Offset: 1})
	assert.Equal(t, 4, total)
	assert.Equal(t, []int{2, 3}, cardIDs(items))

	items, total = s.List(ctx, catalog.ListQuery{Offset: 10})
	assert.Equal(t, 4, total)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestSortIsStableAndCopies(t *testing.T) {
	in := []models.Artwork{
		{ID: 1, Precio: 100},
		{ID: 2, Precio: 50},
		{ID: 3, Precio: 100},
	}
	asc := catalog.SortArtworks(in, catalog.SortPriceAsc)
	desc := catalog.SortArtworks(in, catalog.SortPriceDesc)

	assert.Equal(t, []int{2, 1, 3}, ids(asc, func(a models.Artwork) int { return a.ID }))
	assert.Equal(t, []int{1, 3, 2}, ids(desc, func(a models.Artwork) int { return a.ID }))
	assert.Equal(t, []int{1, 2, 3}, ids(in, func(a models.Artwork) int { return a.ID }), "input untouched")
}
