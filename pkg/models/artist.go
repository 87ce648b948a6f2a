package models

// PlaceholderArtistName labels artworks whose artista_id does not resolve.
const PlaceholderArtistName = "Artista Vértice"

type Artist struct {
	ID             int    `json:"id"`
	Nombre         string `json:"nombre"`
	Disciplina     string `json:"disciplina,omitempty"`
	Bio            string `json:"bio,omitempty"`
	Imagen         string `json:"imagen,omitempty"`
	Banner         string `json:"banner,omitempty"`
	ColeccionesIDs []int  `json:"colecciones_ids"`
	Placeholder    bool   `json:"placeholder,omitempty"`
}

// PlaceholderArtist stands in for an artist missing from the fixtures.
// A non-empty fallback name (the artwork's artista_nombre) wins over the
// generic label.
func PlaceholderArtist(id int, fallbackName string) Artist {
	name := fallbackName
	if name == "" {
		name = PlaceholderArtistName
	}
	return Artist{
		ID:             id,
		Nombre:         name,
		ColeccionesIDs: []int{},
		Placeholder:    true,
	}
}
