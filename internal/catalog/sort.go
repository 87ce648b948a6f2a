package catalog

import (
	"cmp"
	"slices"
	"strings"

	"vertice/pkg/models"
)

type SortKey string

const (
	SortRelevance SortKey = "relevancia"
	SortPriceAsc  SortKey = "precio-asc"
	SortPriceDesc SortKey = "precio-desc"
	SortYearAsc   SortKey = "anio-asc"
	SortYearDesc  SortKey = "anio-desc"
	SortPopular   SortKey = "popular"
)

// ParseSortKey falls back to SortRelevance for empty or unknown keys.
func ParseSortKey(s string) SortKey {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case SortPriceAsc, SortPriceDesc, SortYearAsc, SortYearDesc, SortPopular:
		return k
	default:
		return SortRelevance
	}
}

func SortArtworks(items []models.Artwork, key SortKey) []models.Artwork {
	return sortBy(items, key, func(a models.Artwork) models.Artwork { return a })
}

func SortCards(items []models.ArtworkCard, key SortKey) []models.ArtworkCard {
	return sortBy(items, key, func(c models.ArtworkCard) models.Artwork { return c.Artwork })
}

// sortBy returns a sorted copy; ties keep their input order.
func sortBy[T any](items []T, key SortKey, artwork func(T) models.Artwork) []T {
	out := make([]T, len(items))
	copy(out, items)
	less := comparator(ParseSortKey(string(key)))
	slices.SortStableFunc(out, func(a, b T) int { return less(artwork(a), artwork(b)) })
	return out
}

func comparator(key SortKey) func(a, b models.Artwork) int {
	switch key {
	case SortPriceAsc:
		return func(a, b models.Artwork) int { return cmp.Compare(a.Precio, b.Precio) }
	case SortPriceDesc:
		return func(a, b models.Artwork) int { return cmp.Compare(b.Precio, a.Precio) }
	case SortYearAsc:
		return func(a, b models.Artwork) int { return cmp.Compare(a.Anio, b.Anio) }
	case SortYearDesc:
		return func(a, b models.Artwork) int { return cmp.Compare(b.Anio, a.Anio) }
	case SortPopular:
		return func(a, b models.Artwork) int { return cmp.Compare(b.Stats.Likes, a.Stats.Likes) }
	default:
		return func(a, b models.Artwork) int { return cmp.Compare(a.ID, b.ID) }
	}
}
