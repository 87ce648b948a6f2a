package models

type Collection struct {
	ID            int    `json:"id"`
	Titulo        string `json:"titulo"`
	Descripcion   string `json:"descripcion,omitempty"`
	ObrasIDs      []int  `json:"obras_ids"`
	ArtistaNombre string `json:"artista_nombre,omitempty"`
	ArtistaImagen string `json:"artista_imagen,omitempty"`
	ImagenPortada string `json:"imagen_portada,omitempty"`
	FechaCreacion string `json:"fecha_creacion,omitempty"`
}
