package session

import (
	"context"
	"fmt"
	"html"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"vertice/internal/access"
	"vertice/pkg/models"
	"vertice/pkg/utils"
)

// UserSource supplies the fixture users; catalog.Store satisfies it.
type UserSource interface {
	Users(ctx context.Context) []models.User
}

// Notifier receives an Interaction after every successful mutation.
type Notifier interface {
	Publish(ev models.Interaction)
}

// Store is the session of one client: the current user slot plus the
// favorites and follows stored on it. Mutations are serialized by mu.
type Store struct {
	repo     Repository
	users    UserSource
	notifier Notifier
	log      *zap.Logger
	now      func() time.Time
	clientID string
	sanitize *bluemonday.Policy

	mu sync.Mutex
}

type Option func(*Store)

func WithNotifier(n Notifier) Option {
	return func(s *Store) { s.notifier = n }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithClientID stamps published events with the client namespace.
func WithClientID(id string) Option {
	return func(s *Store) { s.clientID = id }
}

func NewStore(repo Repository, users UserSource, opts ...Option) *Store {
	s := &Store{
		repo:     repo,
		users:    users,
		log:      zap.NewNop(),
		now:      time.Now,
		sanitize: bluemonday.StrictPolicy(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CurrentUser returns nil for an anonymous visitor. A record that cannot
// be read is logged and treated as anonymous.
func (s *Store) CurrentUser(ctx context.Context) *models.User {
	u, err := s.repo.Current(ctx)
	if err != nil {
		s.log.Warn("unreadable session record", zap.Error(err))
		return nil
	}
	return u
}

func (s *Store) Login(ctx context.Context, email, password string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	want := utils.FoldCase(email)
	if want == "" {
		return models.User{}, ErrInvalidCredentials
	}
	for _, u := range s.knownUsers(ctx) {
		if utils.FoldCase(u.Email) == want && u.Password == password {
			if err := s.repo.SaveCurrent(ctx, u); err != nil {
				return models.User{}, fmt.Errorf("login: %w", err)
			}
			s.log.Info("user logged in", zap.String("user_id", u.ID))
			s.publish(models.InteractionSessionLogin, u.ID, "", true)
			return u, nil
		}
	}
	return models.User{}, ErrInvalidCredentials
}

func (s *Store) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	if err := in.Validate(); err != nil {
		return models.User{}, err
	}
	in.normalize()

	s.mu.Lock()
	defer s.mu.Unlock()

	want := utils.FoldCase(in.Email)
	for _, u := range s.knownUsers(ctx) {
		if utils.FoldCase(u.Email) == want {
			return models.User{}, fieldError("email", "already registered")
		}
	}

	// markup is stripped; entities are decoded back so "&" stays "&"
	nombre := strings.TrimSpace(html.UnescapeString(s.sanitize.Sanitize(in.Nombre)))
	if nombre == "" {
		return models.User{}, fieldError("nombre", "cannot be blank")
	}
	u := models.User{
		ID:           uuid.NewString(),
		Nombre:       nombre,
		Email:        in.Email,
		Password:     in.Password,
		Rol:          models.NormalizeRole(in.Rol),
		Handle:       utils.Handle(nombre),
		Avatar:       models.DefaultAvatar,
		Favoritos:    []string{},
		SiguiendoIDs: []string{},
	}

	registered, err := s.repo.Registered(ctx)
	if err != nil {
		s.log.Warn("registered users unreadable, starting a new list", zap.Error(err))
		registered = []models.User{}
	}
	if err := s.repo.SaveRegistered(ctx, append(registered, u)); err != nil {
		return models.User{}, fmt.Errorf("register: %w", err)
	}
	if err := s.repo.SaveCurrent(ctx, u); err != nil {
		return models.User{}, fmt.Errorf("register: %w", err)
	}
	s.log.Info("user registered", zap.String("user_id", u.ID), zap.String("rol", u.Rol))
	s.publish(models.InteractionSessionRegister, u.ID, "", true)
	return u, nil
}

func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.CurrentUser(ctx)
	if err := s.repo.ClearCurrent(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	if prev != nil {
		s.publish(models.InteractionSessionLogout, prev.ID, "", false)
	}
	return nil
}

// ToggleFavorite flips artworkID in the current user's favorites and
// reports whether it is now a favorite. Anonymous visitors get false and
// no session is created.
func (s *Store) ToggleFavorite(ctx context.Context, artworkID string) (bool, error) {
	return s.toggle(ctx, artworkID, favorites)
}

// ToggleFollow is ToggleFavorite for followed artists.
func (s *Store) ToggleFollow(ctx context.Context, artistID string) (bool, error) {
	return s.toggle(ctx, artistID, following)
}

func (s *Store) IsFavorite(ctx context.Context, artworkID string) bool {
	u := s.CurrentUser(ctx)
	return u != nil && slices.Contains(u.Favoritos, strings.TrimSpace(artworkID))
}

func (s *Store) IsFollowing(ctx context.Context, artistID string) bool {
	u := s.CurrentUser(ctx)
	return u != nil && slices.Contains(u.SiguiendoIDs, strings.TrimSpace(artistID))
}

// IsAccessAllowed answers the route guard for the current visitor.
func (s *Store) IsAccessAllowed(ctx context.Context, path string) bool {
	return access.IsAccessAllowed(path, access.StateOf(s.CurrentUser(ctx) != nil))
}

type idSet struct {
	get         func(*models.User) *[]string
	addEvent    string
	removeEvent string
}

var (
	favorites = idSet{
		get:         func(u *models.User) *[]string { return &u.Favoritos },
		addEvent:    models.InteractionFavoriteAdd,
		removeEvent: models.InteractionFavoriteRemove,
	}
	following = idSet{
		get:         func(u *models.User) *[]string { return &u.SiguiendoIDs },
		addEvent:    models.InteractionFollowAdd,
		removeEvent: models.InteractionFollowRemove,
	}
)

func (s *Store) toggle(ctx context.Context, id string, set idSet) (bool, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.CurrentUser(ctx)
	if u == nil {
		return false, nil
	}

	ids := set.get(u)
	current := models.UniqueIDs(*ids)
	active := !slices.Contains(current, id)
	if active {
		current = append(current, id)
	} else {
		current = slices.DeleteFunc(current, func(v string) bool { return v == id })
	}
	*ids = current

	if err := s.repo.SaveCurrent(ctx, *u); err != nil {
		return false, fmt.Errorf("toggle %s: %w", id, err)
	}
	s.syncRegistered(ctx, *u)

	evType := set.removeEvent
	if active {
		evType = set.addEvent
	}
	s.publish(evType, u.ID, id, active)
	return active, nil
}

// syncRegistered copies the updated record into the registered list so a
// later login keeps the favorites. Fixture users are not written back.
func (s *Store) syncRegistered(ctx context.Context, u models.User) {
	registered, err := s.repo.Registered(ctx)
	if err != nil {
		s.log.Warn("registered users unreadable", zap.Error(err))
		return
	}
	for i := range registered {
		if registered[i].ID == u.ID {
			registered[i] = u
			if err := s.repo.SaveRegistered(ctx, registered); err != nil {
				s.log.Warn("update registered user failed", zap.String("user_id", u.ID), zap.Error(err))
			}
			return
		}
	}
}

// knownUsers merges registered users (first) with the fixture users,
// dropping later entries whose email was already seen.
func (s *Store) knownUsers(ctx context.Context) []models.User {
	registered, err := s.repo.Registered(ctx)
	if err != nil {
		s.log.Warn("registered users unreadable", zap.Error(err))
	}
	var fixtures []models.User
	if s.users != nil {
		fixtures = s.users.Users(ctx)
	}

	out := make([]models.User, 0, len(registered)+len(fixtures))
	seen := make(map[string]struct{}, cap(out))
	for _, group := range [][]models.User{registered, fixtures} {
		for _, u := range group {
			key := utils.FoldCase(u.Email)
			if key == "" {
				continue
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, u)
		}
	}
	return out
}

func (s *Store) publish(typ, userID, target string, active bool) {
	if s.notifier == nil {
		return
	}
	s.notifier.Publish(models.Interaction{
		Type:     typ,
		ClientID: s.clientID,
		UserID:   userID,
		TargetID: target,
		Active:   active,
		At:       s.now().UTC(),
	})
}
