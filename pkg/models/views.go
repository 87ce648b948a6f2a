package models

// ArtworkCard is an artwork with its resolved artist, as listed in grids.
type ArtworkCard struct {
	Artwork
	Artist Artist `json:"artist"`
}

type ArtworkDetail struct {
	Artwork
	Artist   Artist    `json:"artist"`
	Category *Category `json:"category"`
	Comments []Comment `json:"comments"`
}

type ArtistDetail struct {
	Artist
	Works       []Artwork    `json:"works"`
	Collections []Collection `json:"collections"`
}

// CategoryView is never nil; Category is nil when the slug is unknown.
type CategoryView struct {
	Category *Category     `json:"category"`
	Artworks []ArtworkCard `json:"artworks"`
}
