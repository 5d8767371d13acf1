package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/imrishuroy/go-storefront-checkout/internal/cart"
	"github.com/imrishuroy/go-storefront-checkout/internal/coupon"
)

// Session is one shopper's browsing session: a cart and its coupon.
type Session struct {
	ID   string
	Cart *cart.Store

	mu       sync.Mutex
	coupon   coupon.State
	lastSeen time.Time // guarded by Registry.mu
}

func newSession(id string) *Session {
	return &Session{ID: id, Cart: cart.NewStore()}
}

// Coupon returns the applied coupon state.
func (s *Session) Coupon() coupon.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.coupon
}

// ApplyCoupon applies code; on error the previous coupon stays active.
func (s *Session) ApplyCoupon(code string) (coupon.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := coupon.Apply(s.coupon, code)
	if err != nil {
		return s.coupon, err
	}
	s.coupon = next
	return next, nil
}

// RemoveCoupon drops the applied coupon.
func (s *Session) RemoveCoupon() {
	s.mu.Lock()
	s.coupon = coupon.Remove(s.coupon)
	s.mu.Unlock()
}

// Registry owns every live session. It is created once at startup and passed
// to whatever needs cart access.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	nowFunc  func() time.Time
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{sessions: map[string]*Session{}, nowFunc: time.Now}
}

// Get returns the session for id, creating it on first use. An empty id mints
// a new one.
func (r *Registry) Get(id string) *Session {
	if id == "" {
		id = uuid.NewString()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		s = newSession(id)
		r.sessions[id] = s
	}
	s.lastSeen = r.nowFunc()
	return s
}

// Lookup returns an existing session without creating one.
func (r *Registry) Lookup(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Sweep drops sessions not seen through Get for longer than idle and
// returns their ids. Lookup does not count as a visit.
func (r *Registry) Sweep(idle time.Duration) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.nowFunc().Add(-idle)
	var evicted []string
	for id, s := range r.sessions {
		if s.lastSeen.Before(cutoff) {
			delete(r.sessions, id)
			evicted = append(evicted, id)
		}
	}
	return evicted
}

// Len is the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
