package models

type Category struct {
	ID            string   `json:"id"`
	Slug          string   `json:"slug"`
	Nombre        string   `json:"nombre"`
	Descripcion   string   `json:"descripcion,omitempty"`
	Curador       string   `json:"curador,omitempty"`
	TagsPopulares []string `json:"tags_populares"`
}
