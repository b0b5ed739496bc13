package web

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Adda-Baaj/cine-khobor/internal/domain"
	"github.com/Adda-Baaj/cine-khobor/internal/render"
)

const (
	sessionCookie  = "cine_session"
	sessionIdleTTL = 24 * time.Hour
)

// session is one browser's view state: the last query it ran and what it got back.
type session struct {
	loaded    bool
	lastQuery string
	articles  []domain.Article
	failure   *render.Notice
	seen      time.Time
}

type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]*session
	now      func() time.Time
}

func newSessionStore(now func() time.Time) *sessionStore {
	if now == nil {
		now = time.Now
	}
	return &sessionStore{sessions: make(map[string]*session), now: now}
}

// load returns the caller's session, issuing a cookie for new browsers.
// The returned copy is detached; write it back with save.
func (s *sessionStore) load(w http.ResponseWriter, r *http.Request) (string, session) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if c, err := r.Cookie(sessionCookie); err == nil {
		if sess, ok := s.sessions[c.Value]; ok && now.Sub(sess.seen) < sessionIdleTTL {
			sess.seen = now
			return c.Value, *sess
		}
	}

	s.evictIdle(now)
	id := uuid.NewString()
	s.sessions[id] = &session{seen: now}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id, session{seen: now}
}

func (s *sessionStore) save(id string, sess session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess.seen = s.now()
	s.sessions[id] = &sess
}

// evictIdle must be called with mu held.
func (s *sessionStore) evictIdle(now time.Time) {
	for id, sess := range s.sessions {
		if now.Sub(sess.seen) >= sessionIdleTTL {
			delete(s.sessions, id)
		}
	}
}

func (s *sessionStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
