package library

import (
	"context"
	"strconv"

	"golang.org/x/sync/errgroup"

	"vertice/internal/catalog"
	"vertice/pkg/models"
)

// Library resolves a user's favorite and following id lists against the
// catalog.
type Library struct {
	Catalog *catalog.Store
}

func New(cat *catalog.Store) *Library {
	return &Library{Catalog: cat}
}

// Favorites returns the favorite artworks in the user's order. Ids that no
// longer resolve are skipped.
func (l *Library) Favorites(ctx context.Context, u *models.User) []models.ArtworkCard {
	out := []models.ArtworkCard{}
	if u == nil || len(u.Favoritos) == 0 {
		return out
	}

	var (
		artworks []models.Artwork
		artists  []models.Artist
		g        errgroup.Group
	)
	g.Go(func() error { artworks = l.Catalog.Artworks(ctx); return nil })
	g.Go(func() error { artists = l.Catalog.Artists(ctx); return nil })
	_ = g.Wait()

	byID := make(map[string]models.Artwork, len(artworks))
	for _, a := range artworks {
		byID[strconv.Itoa(a.ID)] = a
	}
	picked := make([]models.Artwork, 0, len(u.Favoritos))
	for _, id := range u.Favoritos {
		if a, ok := byID[id]; ok {
			picked = append(picked, a)
		}
	}
	return append(out, catalog.Cards(picked, artists)...)
}

// Following returns the followed artists in the user's order.
func (l *Library) Following(ctx context.Context, u *models.User) []models.Artist {
	out := []models.Artist{}
	if u == nil || len(u.SiguiendoIDs) == 0 {
		return out
	}
	byID := make(map[string]models.Artist)
	for _, a := range l.Catalog.Artists(ctx) {
		byID[strconv.Itoa(a.ID)] = a
	}
	for _, id := range u.SiguiendoIDs {
		if a, ok := byID[id]; ok {
			out = append(out, a)
		}
	}
	return out
}
