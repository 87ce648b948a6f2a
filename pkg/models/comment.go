package models

type Comment struct {
	ObraID int    `json:"obra_id"`
	Handle string `json:"handle"`
	Avatar string `json:"avatar,omitempty"`
	Texto  string `json:"texto"`
}
