package catalog

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"vertice/internal/fixtures"
	"vertice/pkg/logger"
	"vertice/pkg/models"
	"vertice/pkg/utils"
)

// Fixture collection names.
const (
	Artworks      = "obras"
	Artists       = "artistas"
	Categories    = "categorias"
	Comments      = "comentarios"
	Collections   = "colecciones"
	Users         = "usuarios"
	Events        = "eventos"
	News          = "noticias"
	Notifications = "notificaciones"
)

const defaultTimeout = 5 * time.Second

// Store joins the fixture collections into the views the pages render.
// Nothing here returns an error: a collection that cannot be fetched or
// parsed is logged and treated as empty.
type Store struct {
	Source  fixtures.Source
	Log     *zap.Logger
	Timeout time.Duration
}

type ListQuery struct {
	Q        string // title, artist name or technique
	Category string // slug or id
	Sort     SortKey
	Limit    int
	Offset   int
}

func NewStore(src fixtures.Source, log *zap.Logger) *Store {
	return &Store{Source: src, Log: log, Timeout: defaultTimeout}
}

func (s *Store) log() *zap.Logger {
	return logger.OrNop(s.Log)
}

// LoadCollection returns the raw records of one collection, or an empty
// slice when the source fails.
func (s *Store) LoadCollection(ctx context.Context, name string) []json.RawMessage {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	log := s.log().With(zap.String("collection", name), zap.String("source", s.Source.Name()))
	body, err := s.Source.Fetch(ctx, fixtures.FileName(name))
	if err != nil {
		log.Warn("load collection failed", zap.Error(err))
		return []json.RawMessage{}
	}
	var records []json.RawMessage
	if err := json.Unmarshal(body, &records); err != nil {
		log.Warn("collection is not a JSON array", zap.Error(err))
		return []json.RawMessage{}
	}
	if records == nil {
		return []json.RawMessage{}
	}
	return records
}

func load[T any](ctx context.Context, s *Store, name string, decode func(json.RawMessage) (T, error)) []T {
	raw := s.LoadCollection(ctx, name)
	out := make([]T, 0, len(raw))
	for i, r := range raw {
		v, err := decode(r)
		if err != nil {
			s.log().Warn("skip malformed record",
				zap.String("collection", name), zap.Int("index", i), zap.Error(err))
			continue
		}
		out = append(out, v)
	}
	return out
}

func (s *Store) Artworks(ctx context.Context) []models.Artwork {
	return load(ctx, s, Artworks, models.DecodeArtwork)
}

func (s *Store) Artists(ctx context.Context) []models.Artist {
	return load(ctx, s, Artists, models.DecodeArtist)
}

func (s *Store) Categories(ctx context.Context) []models.Category {
	return load(ctx, s, Categories, models.DecodeCategory)
}

func (s *Store) Comments(ctx context.Context) []models.Comment {
	return load(ctx, s, Comments, models.DecodeComment)
}

func (s *Store) Collections(ctx context.Context) []models.Collection {
	return load(ctx, s, Collections, models.DecodeCollection)
}

func (s *Store) Users(ctx context.Context) []models.User {
	return load(ctx, s, Users, models.DecodeUser)
}

func (s *Store) Events(ctx context.Context) []models.Event {
	return load(ctx, s, Events, models.DecodeEvent)
}

func (s *Store) News(ctx context.Context) []models.News {
	return load(ctx, s, News, models.DecodeNews)
}

func (s *Store) Notifications(ctx context.Context) []models.Notification {
	return load(ctx, s, Notifications, models.DecodeNotification)
}

// ArtworkDetail returns nil when no artwork has the id.
func (s *Store) ArtworkDetail(ctx context.Context, id int) *models.ArtworkDetail {
	var (
		artworks   []models.Artwork
		artists    []models.Artist
		categories []models.Category
		comments   []models.Comment
		g          errgroup.Group
	)
	g.Go(func() error { artworks = s.Artworks(ctx); return nil })
	g.Go(func() error { artists = s.Artists(ctx); return nil })
	g.Go(func() error { categories = s.Categories(ctx); return nil })
	g.Go(func() error { comments = s.Comments(ctx); return nil })
	_ = g.Wait()

	artwork, ok := findArtwork(artworks, id)
	if !ok {
		return nil
	}

	detail := &models.ArtworkDetail{
		Artwork:  artwork,
		Artist:   resolveArtist(indexArtists(artists), artwork),
		Comments: []models.Comment{},
	}
	for i := range categories {
		if MatchesCategory(artwork, categories[i]) {
			c := categories[i]
			detail.Category = &c
			break
		}
	}
	for _, c := range comments {
		if c.ObraID == id {
			detail.Comments = append(detail.Comments, c)
		}
	}
	return detail
}

// ArtistDetail returns nil when no artist has the id.
func (s *Store) ArtistDetail(ctx context.Context, id int) *models.ArtistDetail {
	var (
		artists     []models.Artist
		artworks    []models.Artwork
		collections []models.Collection
		g           errgroup.Group
	)
	g.Go(func() error { artists = s.Artists(ctx); return nil })
	g.Go(func() error { artworks = s.Artworks(ctx); return nil })
	g.Go(func() error { collections = s.Collections(ctx); return nil })
	_ = g.Wait()

	artist, ok := indexArtists(artists)[id]
	if !ok {
		return nil
	}

	detail := &models.ArtistDetail{
		Artist:      artist,
		Works:       []models.Artwork{},
		Collections: []models.Collection{},
	}
	for _, a := range artworks {
		if a.ArtistaID == id {
			detail.Works = append(detail.Works, a)
		}
	}
	owned := make(map[int]struct{}, len(artist.ColeccionesIDs))
	for _, cid := range artist.ColeccionesIDs {
		owned[cid] = struct{}{}
	}
	for _, c := range collections {
		if _, ok := owned[c.ID]; ok {
			detail.Collections = append(detail.Collections, c)
		}
	}
	return detail
}

// CategoryView never returns a nil Artworks slice; an unknown slug yields a
// nil Category.
func (s *Store) CategoryView(ctx context.Context, slug string) models.CategoryView {
	var (
		categories []models.Category
		artworks   []models.Artwork
		artists    []models.Artist
		g          errgroup.Group
	)
	g.Go(func() error { categories = s.Categories(ctx); return nil })
	g.Go(func() error { artworks = s.Artworks(ctx); return nil })
	g.Go(func() error { artists = s.Artists(ctx); return nil })
	_ = g.Wait()

	view := models.CategoryView{Artworks: []models.ArtworkCard{}}
	category := FindCategory(categories, slug)
	if category == nil {
		return view
	}
	view.Category = category
	view.Artworks = Cards(FilterByCategory(artworks, *category), artists)
	return view
}

// List is the catalog page: filter, sort, then paginate. The int is the
// number of matches before pagination.
func (s *Store) List(ctx context.Context, q ListQuery) ([]models.ArtworkCard, int) {
	var (
		artworks   []models.Artwork
		artists    []models.Artist
		categories []models.Category
		g          errgroup.Group
	)
	g.Go(func() error { artworks = s.Artworks(ctx); return nil })
	g.Go(func() error { artists = s.Artists(ctx); return nil })
	if strings.TrimSpace(q.Category) != "" {
		g.Go(func() error { categories = s.Categories(ctx); return nil })
	}
	_ = g.Wait()

	if key := strings.TrimSpace(q.Category); key != "" {
		if c := FindCategory(categories, key); c != nil {
			artworks = FilterByCategory(artworks, *c)
		} else {
			artworks = filter(artworks, func(a models.Artwork) bool {
				return strings.EqualFold(a.CategoriaID, key)
			})
		}
	}

	cards := Search(Cards(artworks, artists), q.Q)
	cards = SortCards(cards, q.Sort)

	total := len(cards)
	limit, offset := PageBounds(q.Limit, q.Offset)
	if offset >= total {
		return []models.ArtworkCard{}, total
	}
	end := min(offset+limit, total)
	return cards[offset:end], total
}

// PageBounds clamps a requested page: limit defaults to 20 (max 100),
// negative offsets become 0.
func PageBounds(limit, offset int) (int, int) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// Cards pairs each artwork with its artist, falling back to a placeholder.
func Cards(artworks []models.Artwork, artists []models.Artist) []models.ArtworkCard {
	byID := indexArtists(artists)
	out := make([]models.ArtworkCard, 0, len(artworks))
	for _, a := range artworks {
		out = append(out, models.ArtworkCard{Artwork: a, Artist: resolveArtist(byID, a)})
	}
	return out
}

// FindCategory matches key against slug or id, ignoring case.
func FindCategory(categories []models.Category, key string) *models.Category {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil
	}
	for i := range categories {
		if strings.EqualFold(categories[i].Slug, key) || strings.EqualFold(categories[i].ID, key) {
			c := categories[i]
			return &c
		}
	}
	return nil
}

// MatchesCategory reports whether the artwork's category reference names c.
// Older fixtures reference categories by display name.
func MatchesCategory(a models.Artwork, c models.Category) bool {
	ref := strings.TrimSpace(a.CategoriaID)
	if ref == "" {
		return false
	}
	return strings.EqualFold(ref, c.ID) ||
		strings.EqualFold(ref, c.Slug) ||
		(c.Nombre != "" && strings.EqualFold(ref, c.Nombre))
}

func FilterByCategory(artworks []models.Artwork, c models.Category) []models.Artwork {
	return filter(artworks, func(a models.Artwork) bool { return MatchesCategory(a, c) })
}

// Search keeps cards whose title, artist or technique contains q,
// ignoring case and accents. An empty q keeps everything.
func Search(cards []models.ArtworkCard, q string) []models.ArtworkCard {
	needle := utils.Simplify(q)
	if needle == "" {
		return cards
	}
	return filter(cards, func(c models.ArtworkCard) bool {
		for _, field := range []string{c.Titulo, c.ArtistaNombre, c.Artist.Nombre, c.Tecnica} {
			if strings.Contains(utils.Simplify(field), needle) {
				return true
			}
		}
		return false
	})
}

func filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}

func findArtwork(artworks []models.Artwork, id int) (models.Artwork, bool) {
	for _, a := range artworks {
		if a.ID == id {
			return a, true
		}
	}
	return models.Artwork{}, false
}

func indexArtists(artists []models.Artist) map[int]models.Artist {
	byID := make(map[int]models.Artist, len(artists))
	for _, a := range artists {
		if _, dup := byID[a.ID]; !dup {
			byID[a.ID] = a
		}
	}
	return byID
}

func resolveArtist(byID map[int]models.Artist, a models.Artwork) models.Artist {
	if artist, ok := byID[a.ArtistaID]; ok {
		return artist
	}
	return models.PlaceholderArtist(a.ArtistaID, a.ArtistaNombre)
}
