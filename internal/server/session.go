package server

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/lattice/pkg/cache"
	"github.com/matzehuels/lattice/pkg/errors"
	"github.com/matzehuels/lattice/pkg/scene"
)

// DefaultSessionTTL is how long a posted scene's report is kept.
const DefaultSessionTTL = 24 * time.Hour

// Session is one posted scene and the report of its run.
type Session struct {
	ID        string        `json:"id"`
	Scene     string        `json:"scene"`
	SceneHash string        `json:"scene_hash"`
	Cached    bool          `json:"cached"`
	CreatedAt time.Time     `json:"created_at"`
	ExpiresAt time.Time     `json:"expires_at"`
	Report    *scene.Report `json:"report"`
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt)
}

// NewSession creates a session with a fresh random ID.
func NewSession(rep *scene.Report, sceneHash string, ttl time.Duration) *Session {
	now := time.Now().UTC()
	s := &Session{
		ID:        uuid.NewString(),
		Scene:     rep.Scene,
		SceneHash: sceneHash,
		CreatedAt: now,
		Report:    rep,
	}
	if ttl > 0 {
		s.ExpiresAt = now.Add(ttl)
	}
	return s
}

// Store keeps sessions in a cache backend.
type Store struct {
	cache cache.Cache
	keyer cache.Keyer
}

// NewStore creates a session store.
func NewStore(c cache.Cache, keyer cache.Keyer) *Store {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	return &Store{cache: c, keyer: keyer}
}

// Get returns the session with id. A malformed id is an invalid input; a
// missing or expired session is SCENE_NOT_FOUND.
func (s *Store) Get(ctx context.Context, id string) (*Session, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	data, hit, err := s.cache.Get(ctx, s.keyer.SessionKey(id))
	if err != nil {
		return nil, err
	}
	if !hit {
		return nil, errors.New(errors.ErrCodeSceneNotFound, "no scene %s", id)
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, errors.Wrap(errors.ErrCodeCache, err, "decode session %s", id)
	}
	if sess.IsExpired() {
		_ = s.cache.Delete(ctx, s.keyer.SessionKey(id))
		return nil, errors.New(errors.ErrCodeSceneNotFound, "scene %s expired", id)
	}
	return &sess, nil
}

// Set stores sess until it expires.
func (s *Store) Set(ctx context.Context, sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode session")
	}
	var ttl time.Duration
	if !sess.ExpiresAt.IsZero() {
		ttl = time.Until(sess.ExpiresAt)
	}
	return s.cache.Set(ctx, s.keyer.SessionKey(sess.ID), data, ttl)
}

// Delete removes the session with id.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	return s.cache.Delete(ctx, s.keyer.SessionKey(id))
}

func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid scene id %q", id)
	}
	return nil
}
