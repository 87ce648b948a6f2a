package session

import (
	"context"
	"encoding/json"
	"fmt"

	"vertice/internal/storage"
	"vertice/pkg/models"
)

// Storage keys, kept from the site's localStorage layout.
const (
	KeyCurrentUser = "usuario_logueado"
	KeyRegistered  = "usuarios_registrados"
)

// Repository persists the current-user slot and the locally registered
// users. Current returns (nil, nil) when nobody is logged in.
type Repository interface {
	Current(ctx context.Context) (*models.User, error)
	SaveCurrent(ctx context.Context, u models.User) error
	ClearCurrent(ctx context.Context) error
	Registered(ctx context.Context) ([]models.User, error)
	SaveRegistered(ctx context.Context, users []models.User) error
}

// StorageRepo keeps both records as JSON in a storage.Store.
type StorageRepo struct {
	Storage storage.Store
}

func NewStorageRepo(s storage.Store) *StorageRepo {
	return &StorageRepo{Storage: s}
}

func (r *StorageRepo) Current(ctx context.Context) (*models.User, error) {
	v, found, err := r.Storage.Get(ctx, KeyCurrentUser)
	if err != nil {
		return nil, fmt.Errorf("read current user: %w", err)
	}
	if !found || v == "" || v == "null" {
		return nil, nil
	}
	u, err := models.DecodeUser(json.RawMessage(v))
	if err != nil {
		return nil, fmt.Errorf("decode current user: %w", err)
	}
	return &u, nil
}

func (r *StorageRepo) SaveCurrent(ctx context.Context, u models.User) error {
	b, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode current user: %w", err)
	}
	if err := r.Storage.Set(ctx, KeyCurrentUser, string(b)); err != nil {
		return fmt.Errorf("save current user: %w", err)
	}
	return nil
}

func (r *StorageRepo) ClearCurrent(ctx context.Context) error {
	if err := r.Storage.Remove(ctx, KeyCurrentUser); err != nil {
		return fmt.Errorf("clear current user: %w", err)
	}
	return nil
}

// Registered skips entries that no longer decode.
func (r *StorageRepo) Registered(ctx context.Context) ([]models.User, error) {
	v, found, err := r.Storage.Get(ctx, KeyRegistered)
	if err != nil {
		return nil, fmt.Errorf("read registered users: %w", err)
	}
	users := []models.User{}
	if !found || v == "" {
		return users, nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(v), &raw); err != nil {
		return users, fmt.Errorf("decode registered users: %w", err)
	}
	for _, item := range raw {
		if u, err := models.DecodeUser(item); err == nil {
			users = append(users, u)
		}
	}
	return users, nil
}

func (r *StorageRepo) SaveRegistered(ctx context.Context, users []models.User) error {
	if users == nil {
		users = []models.User{}
	}
	b, err := json.Marshal(users)
	if err != nil {
		return fmt.Errorf("encode registered users: %w", err)
	}
	if err := r.Storage.Set(ctx, KeyRegistered, string(b)); err != nil {
		return fmt.Errorf("save registered users: %w", err)
	}
	return nil
}
