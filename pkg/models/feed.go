package models

// Event, News and Notification back the secondary pages of the site.
// They are passed through as loaded.

type Event struct {
	ID          int    `json:"id"`
	Titulo      string `json:"titulo"`
	Fecha       string `json:"fecha,omitempty"`
	Lugar       string `json:"lugar,omitempty"`
	Descripcion string `json:"descripcion,omitempty"`
	Imagen      string `json:"imagen,omitempty"`
}

type News struct {
	ID      int    `json:"id"`
	Titulo  string `json:"titulo"`
	Fecha   string `json:"fecha,omitempty"`
	Resumen string `json:"resumen,omitempty"`
	Imagen  string `json:"imagen,omitempty"`
}

type Notification struct {
	ID      int    `json:"id"`
	Tipo    string `json:"tipo,omitempty"`
	Mensaje string `json:"mensaje"`
	Fecha   string `json:"fecha,omitempty"`
	Leida   bool   `json:"leida"`
}
