package models

import "time"

// Interaction types published after session mutations.
const (
	InteractionFavoriteAdd     = "favorite.add"
	InteractionFavoriteRemove  = "favorite.remove"
	InteractionFollowAdd       = "follow.add"
	InteractionFollowRemove    = "follow.remove"
	InteractionSessionLogin    = "session.login"
	InteractionSessionRegister = "session.register"
	InteractionSessionLogout   = "session.logout"
)

// Interaction is the live event sent to subscribers of a client namespace.
type Interaction struct {
	Type     string    `json:"type"`
	ClientID string    `json:"client_id,omitempty"`
	UserID   string    `json:"user_id,omitempty"`
	TargetID string    `json:"target_id,omitempty"`
	Active   bool      `json:"active"`
	At       time.Time `json:"at"`
}
