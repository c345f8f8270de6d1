// Package session keeps signed-in browser sessions in memory and encodes
// their ids into signed cookies.
package session

import (
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/oauth2"
)

const (
	// DefaultTTL is how long an idle session survives.
	DefaultTTL = 7 * 24 * time.Hour

	// DefaultMaxEntries bounds the number of live sessions.
	DefaultMaxEntries = 10000
)

// User is the profile shown in the UI.
type User struct {
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
}

// Session is the server side state of one browser.
// A session without Token is a pre-auth session carrying the OAuth state.
type Session struct {
	ID        string
	Token     *oauth2.Token
	User      User
	State     string
	Verifier  string
	CreatedAt time.Time
}

// Authenticated reports whether the session holds credentials.
func (s *Session) Authenticated() bool {
	return s != nil && s.Token != nil
}

// Store is an in-memory session store. Sessions expire ttl after their last Save.
// It is safe for concurrent use.
type Store struct {
	sessions *expirable.LRU[string, Session]
}

// NewStore creates a store. Non-positive arguments select the defaults.
func NewStore(maxEntries int, ttl time.Duration) *Store {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		sessions: expirable.NewLRU[string, Session](maxEntries, nil, ttl),
	}
}

// New creates and stores an empty session with a fresh id.
func (s *Store) New() *Session {
	sess := Session{ID: uuid.NewString(), CreatedAt: time.Now()}
	s.sessions.Add(sess.ID, sess)
	return &sess
}

// Get returns a copy of the session with the given id.
func (s *Store) Get(id string) (*Session, bool) {
	if id == "" {
		return nil, false
	}
	sess, ok := s.sessions.Get(id)
	if !ok {
		return nil, false
	}
	return &sess, true
}

// Save stores sess under its id, resetting its expiry.
func (s *Store) Save(sess *Session) {
	s.sessions.Add(sess.ID, *sess)
}

// Destroy removes a session. Unknown ids are ignored.
func (s *Store) Destroy(id string) {
	s.sessions.Remove(id)
}

// Rotate moves sess to a new id and drops the old one.
func (s *Store) Rotate(sess *Session) *Session {
	old := sess.ID
	rotated := *sess
	rotated.ID = uuid.NewString()
	s.sessions.Add(rotated.ID, rotated)
	s.sessions.Remove(old)
	return &rotated
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	return s.sessions.Len()
}
