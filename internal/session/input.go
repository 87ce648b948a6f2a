package session

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"vertice/pkg/models"
)

const minPasswordLen = 6

type RegisterInput struct {
	Nombre   string `json:"nombre"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Rol      string `json:"rol"`
}

var errUnknownRole = errors.New("must be Artista or Coleccionista")

func (in *RegisterInput) normalize() {
	in.Nombre = strings.TrimSpace(in.Nombre)
	in.Email = strings.TrimSpace(in.Email)
	in.Rol = strings.TrimSpace(in.Rol)
}

// Validate checks the role first, then the password, name and email.
// The password is not trimmed.
func (in RegisterInput) Validate() error {
	in.normalize()
	err := validation.ValidateStruct(&in,
		validation.Field(&in.Rol, validation.Required, validation.By(knownRole)),
		validation.Field(&in.Password, validation.Required, validation.RuneLength(minPasswordLen, 0)),
		validation.Field(&in.Nombre, validation.Required),
		validation.Field(&in.Email, validation.Required, is.Email),
	)
	if err == nil {
		return nil
	}
	var fields validation.Errors
	if errors.As(err, &fields) {
		return &ValidationError{Fields: fields}
	}
	return err
}

func knownRole(value interface{}) error {
	s, _ := value.(string)
	if s == "" || models.NormalizeRole(s) != "" {
		return nil
	}
	return errUnknownRole
}
