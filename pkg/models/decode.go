package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// The fixtures went through several revisions and disagree on field names
// and types (ano vs anio, categoria vs categoria_id vs estilo, numeric ids
// encoded as strings). Every Decode* function maps one raw record into the
// canonical struct so query code only ever sees one schema.

var errMissingID = errors.New("missing id")

func DecodeArtwork(raw json.RawMessage) (Artwork, error) {
	var r struct {
		Artwork
		ID          json.RawMessage `json:"id"`
		Precio      json.RawMessage `json:"precio"`
		Anio        json.RawMessage `json:"anio"`
		Ano         json.RawMessage `json:"ano"`
		CategoriaID json.RawMessage `json:"categoria_id"`
		Categoria   json.RawMessage `json:"categoria"`
		Estilo      json.RawMessage `json:"estilo"`
		ArtistaID   json.RawMessage `json:"artista_id"`
		Artista     json.RawMessage `json:"artista"`
		Stats       struct {
			Vistas      json.RawMessage `json:"vistas"`
			Likes       json.RawMessage `json:"likes"`
			Compartidos json.RawMessage `json:"compartidos"`
			Guardados   json.RawMessage `json:"guardados"`
		} `json:"stats"`
	}
	if err := json.Unmarshal(raw, &r); err != nil {
		return Artwork{}, fmt.Errorf("decode artwork: %w", err)
	}

	a := r.Artwork
	id, ok := flexInt(r.ID)
	if !ok {
		return Artwork{}, fmt.Errorf("decode artwork: %w", errMissingID)
	}
	a.ID = id
	a.Precio, _ = flexFloat(r.Precio)
	a.Anio = resolveYear(r.Anio, r.Ano, a.FechaPublicacion)
	a.CategoriaID = firstString(r.CategoriaID, r.Categoria, r.Estilo)
	a.ArtistaID, _ = flexInt(r.ArtistaID)
	if a.ArtistaNombre == "" {
		// older revisions stored the artist's name under "artista"
		if name, ok := flexString(r.Artista); ok {
			if _, numeric := flexInt(r.Artista); !numeric {
				a.ArtistaNombre = name
			}
		}
	}
	a.Stats.Vistas, _ = flexInt(r.Stats.Vistas)
	a.Stats.Likes, _ = flexInt(r.Stats.Likes)
	a.Stats.Compartidos, _ = flexInt(r.Stats.Compartidos)
	a.Stats.Guardados, _ = flexInt(r.Stats.Guardados)
	return a, nil
}

func DecodeArtist(raw json.RawMessage) (Artist, error) {
	var r struct {
		Artist
		ID             json.RawMessage `json:"id"`
		ColeccionesIDs json.RawMessage `json:"colecciones_ids"`
	}
	if err := json.Unmarshal(raw, &r); err != nil {
		return Artist{}, fmt.Errorf("decode artist: %w", err)
	}
	a := r.Artist
	id, ok := flexInt(r.ID)
	if !ok {
		return Artist{}, fmt.Errorf("decode artist: %w", errMissingID)
	}
	a.ID = id
	a.ColeccionesIDs = flexInts(r.ColeccionesIDs)
	a.Placeholder = false
	return a, nil
}

func DecodeCategory(raw json.RawMessage) (Category, error) {
	var r struct {
		Category
		ID   json.RawMessage `json:"id"`
		Slug json.RawMessage `json:"slug"`
	}
	if err := json.Unmarshal(raw, &r); err != nil {
		return Category{}, fmt.Errorf("decode category: %w", err)
	}
	c := r.Category
	c.ID, _ = flexString(r.ID)
	c.Slug, _ = flexString(r.Slug)
	switch {
	case c.ID == "" && c.Slug == "":
		return Category{}, fmt.Errorf("decode category: %w", errMissingID)
	case c.Slug == "":
		c.Slug = c.ID
	case c.ID == "":
		c.ID = c.Slug
	}
	if c.TagsPopulares == nil {
		c.TagsPopulares = []string{}
	}
	return c, nil
}

func DecodeComment(raw json.RawMessage) (Comment, error) {
	var r struct {
		Comment
		ObraID json.RawMessage `json:"obra_id"`
	}
	if err := json.Unmarshal(raw, &r); err != nil {
		return Comment{}, fmt.Errorf("decode comment: %w", err)
	}
	c := r.Comment
	c.ObraID, _ = flexInt(r.ObraID)
	return c, nil
}

func DecodeCollection(raw json.RawMessage) (Collection, error) {
	var r struct {
		Collection
		ID       json.RawMessage `json:"id"`
		ObrasIDs json.RawMessage `json:"obras_ids"`
	}
	if err := json.Unmarshal(raw, &r); err != nil {
		return Collection{}, fmt.Errorf("decode collection: %w", err)
	}
	c := r.Collection
	id, ok := flexInt(r.ID)
	if !ok {
		return Collection{}, fmt.Errorf("decode collection: %w", errMissingID)
	}
	c.ID = id
	c.ObrasIDs = flexInts(r.ObrasIDs)
	return c, nil
}

// DecodeUser also accepts records written by older revisions of the site
// (favorites / obras_favoritas, siguiendo as an array).
func DecodeUser(raw json.RawMessage) (User, error) {
	var r struct {
		User
		ID             json.RawMessage `json:"id"`
		Seguidores     json.RawMessage `json:"seguidores"`
		Favoritos      json.RawMessage `json:"favoritos"`
		Favorites      json.RawMessage `json:"favorites"`
		ObrasFavoritas json.RawMessage `json:"obras_favoritas"`
		SiguiendoIDs   json.RawMessage `json:"siguiendo_ids"`
		Siguiendo      json.RawMessage `json:"siguiendo"`
	}
	if err := json.Unmarshal(raw, &r); err != nil {
		return User{}, fmt.Errorf("decode user: %w", err)
	}
	u := r.User
	u.ID, _ = flexString(r.ID)
	u.Seguidores, _ = flexInt(r.Seguidores)
	u.Favoritos = firstList(r.Favoritos, r.Favorites, r.ObrasFavoritas)
	u.SiguiendoIDs = firstList(r.SiguiendoIDs, r.Siguiendo)

	if rol := NormalizeRole(u.Rol); rol != "" {
		u.Rol = rol
	} else if strings.TrimSpace(u.Rol) == "" {
		u.Rol = RolColeccionista
	}
	return u, nil
}

func DecodeEvent(raw json.RawMessage) (Event, error) {
	var r struct {
		Event
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(raw, &r); err != nil {
		return Event{}, fmt.Errorf("decode event: %w", err)
	}
	r.Event.ID, _ = flexInt(r.ID)
	return r.Event, nil
}

func DecodeNews(raw json.RawMessage) (News, error) {
	var r struct {
		News
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(raw, &r); err != nil {
		return News{}, fmt.Errorf("decode news: %w", err)
	}
	r.News.ID, _ = flexInt(r.ID)
	return r.News, nil
}

func DecodeNotification(raw json.RawMessage) (Notification, error) {
	var r struct {
		Notification
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(raw, &r); err != nil {
		return Notification{}, fmt.Errorf("decode notification: %w", err)
	}
	r.Notification.ID, _ = flexInt(r.ID)
	return r.Notification, nil
}

// NormalizeRole maps any casing of the two known roles to the canonical
// value and returns "" for anything else.
func NormalizeRole(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "artista":
		return RolArtista
	case "coleccionista":
		return RolColeccionista
	default:
		return ""
	}
}

// UniqueIDs drops empty and repeated ids, keeping first-seen order.
func UniqueIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// resolveYear: anio, then ano, then the year of fecha_publicacion, else 0.
func resolveYear(anio, ano json.RawMessage, published string) int {
	if y, ok := flexInt(anio); ok && y > 0 {
		return y
	}
	if y, ok := flexInt(ano); ok && y > 0 {
		return y
	}
	return YearOf(published)
}

// YearOf extracts the year from an RFC3339, YYYY-MM-DD, YYYY-MM or YYYY
// date. Anything else yields 0.
func YearOf(date string) int {
	date = strings.TrimSpace(date)
	if date == "" {
		return 0
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02", "2006-01", "2006"} {
		if t, err := time.Parse(layout, date); err == nil {
			return t.Year()
		}
	}
	return 0
}

func isNull(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

// flexFloat reads a JSON number or a numeric string.
func flexFloat(raw json.RawMessage) (float64, bool) {
	if isNull(raw) {
		return 0, false
	}
	s := string(bytes.TrimSpace(raw))
	if s[0] == '"' {
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return 0, false
		}
		s = strings.TrimSpace(str)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func flexInt(raw json.RawMessage) (int, bool) {
	f, ok := flexFloat(raw)
	if !ok {
		return 0, false
	}
	return int(f), true
}

// flexString reads a JSON string or number as text.
func flexString(raw json.RawMessage) (string, bool) {
	if isNull(raw) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		s = strings.TrimSpace(s)
		return s, s != ""
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), true
	}
	return "", false
}

func firstString(candidates ...json.RawMessage) string {
	for _, raw := range candidates {
		if s, ok := flexString(raw); ok {
			return s
		}
	}
	return ""
}

// flexStrings reads an array whose items are strings or numbers.
// Returns nil when raw is not an array.
func flexStrings(raw json.RawMessage) []string {
	if isNull(raw) {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := flexString(item); ok {
			out = append(out, s)
		}
	}
	return UniqueIDs(out)
}

func flexInts(raw json.RawMessage) []int {
	out := []int{}
	if isNull(raw) {
		return out
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return out
	}
	for _, item := range items {
		if n, ok := flexInt(item); ok {
			out = append(out, n)
		}
	}
	return out
}

// firstList returns the first candidate that is a JSON array, normalized
// to unique string ids. Never nil.
func firstList(candidates ...json.RawMessage) []string {
	for _, raw := range candidates {
		if ids := flexStrings(raw); ids != nil {
			return ids
		}
	}
	return []string{}
}
