package models

const (
	RolArtista       = "Artista"
	RolColeccionista = "Coleccionista"
)

// DefaultAvatar is assigned to users registered without a picture.
const DefaultAvatar = "assets/img/default-avatar.jpg"

// User is both a fixture record and the persisted "usuario_logueado".
// Password is stored in plaintext on purpose: this is a toy auth model.
type User struct {
	ID           string   `json:"id"`
	Nombre       string   `json:"nombre"`
	Email        string   `json:"email"`
	Password     string   `json:"password,omitempty"`
	Rol          string   `json:"rol"`
	Handle       string   `json:"handle,omitempty"`
	Avatar       string   `json:"avatar,omitempty"`
	Bio          string   `json:"bio,omitempty"`
	Seguidores   int      `json:"seguidores"`
	Favoritos    []string `json:"favoritos"`
	SiguiendoIDs []string `json:"siguiendo_ids"`
}

// Public returns a copy without the password, for API responses.
func (u User) Public() User {
	u.Password = ""
	return u
}
