package models

// ArtworkStats are the engagement counters shipped with the fixtures.
// The service only reads them.
type ArtworkStats struct {
	Vistas      int `json:"vistas"`
	Likes       int `json:"likes"`
	Compartidos int `json:"compartidos"`
	Guardados   int `json:"guardados"`
}

// Artwork is the canonical form of an "obra" after load-boundary
// normalization (see DecodeArtwork).
type Artwork struct {
	ID               int          `json:"id"`
	Titulo           string       `json:"titulo"`
	Imagen           string       `json:"imagen,omitempty"`
	Precio           float64      `json:"precio"`
	Anio             int          `json:"anio"`         // 0 when unknown
	CategoriaID      string       `json:"categoria_id"` // category id or slug
	ArtistaID        int          `json:"artista_id"`   // FK to Artist
	ArtistaNombre    string       `json:"artista_nombre,omitempty"`
	Tecnica          string       `json:"tecnica,omitempty"`
	Descripcion      string       `json:"descripcion,omitempty"`
	Dimensiones      string       `json:"dimensiones,omitempty"`
	FechaPublicacion string       `json:"fecha_publicacion,omitempty"`
	Nuevo            bool         `json:"nuevo,omitempty"`
	Badge            string       `json:"badge,omitempty"`
	Stats            ArtworkStats `json:"stats"`
}
