// Package session is the typed store for per-user client state that used to
// live scattered in ad hoc storage reads: the interim two-factor token, the
// cached user profile and the theme overrides. It has an explicit lifecycle;
// Init on application start, Clear on sign-out.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned when the requested state does not exist or has
// expired.
var ErrNotFound = errors.New("session state not found")

// InterimTTL bounds how long a half-finished two-factor sign-in stays valid.
const InterimTTL = 5 * time.Minute

// Interim is the state held between password check and TOTP verification.
type Interim struct {
	UserID uint64 `json:"userId"`
	Secret string `json:"secret,omitempty"`
}

// Store keeps session state in redis.
type Store struct {
	rdb    *redis.Client
	prefix string
}

// New returns a Store over the given redis client.
func New(rdb *redis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = "bo:"
	}
	return &Store{rdb: rdb, prefix: prefix}
}

// Init verifies the backing connection. Called once at startup.
func (s *Store) Init(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *Store) key(kind, id string) string { return s.prefix + kind + ":" + id }

// PutInterim stores the two-factor interim state under the given token.
func (s *Store) PutInterim(ctx context.Context, token string, in Interim) error {
	b, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, s.key("2fa", token), b, InterimTTL).Err()
}

// TakeInterim returns and consumes the interim state for token. A token can
// be redeemed only once.
func (s *Store) TakeInterim(ctx context.Context, token string) (Interim, error) {
	var in Interim
	b, err := s.rdb.GetDel(ctx, s.key("2fa", token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return in, ErrNotFound
	}
	if err != nil {
		return in, err
	}
	err = json.Unmarshal(b, &in)
	return in, err
}

// PutProfile caches the serialized user profile.
func (s *Store) PutProfile(ctx context.Context, userID string, profile any) error {
	b, err := json.Marshal(profile)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, s.key("profile", userID), b, 0).Err()
}

// Profile loads the cached profile into dst.
func (s *Store) Profile(ctx context.Context, userID string, dst any) error {
	b, err := s.rdb.Get(ctx, s.key("profile", userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dst)
}

// PutTheme stores the user's UI color overrides.
func (s *Store) PutTheme(ctx context.Context, userID string, theme json.RawMessage) error {
	return s.rdb.Set(ctx, s.key("theme", userID), []byte(theme), 0).Err()
}

// Theme returns the stored overrides, or ErrNotFound.
func (s *Store) Theme(ctx context.Context, userID string) (json.RawMessage, error) {
	b, err := s.rdb.Get(ctx, s.key("theme", userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	return json.RawMessage(b), err
}

// Clear removes every piece of state held for the user. Called at sign-out.
func (s *Store) Clear(ctx context.Context, userID string) error {
	return s.rdb.Del(ctx,
		s.key("profile", userID),
		s.key("theme", userID),
	).Err()
}
