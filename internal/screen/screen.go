// Package screen keeps one mounted sign-in screen per browser session.
//
// A Screen owns a signin.Controller and is its Notifier and Navigator: the
// controller's side effects are queued on the screen until the next poll
// from the browser collects them.
package screen

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nfrund/signin/internal/signin"
	"github.com/patrickmn/go-cache"
)

// Screen is the server-side state of one sign-in screen.
type Screen struct {
	ID         string
	Controller *signin.Controller

	mu    sync.Mutex
	inbox []signin.Notification
	route string
}

// Notify implements signin.Notifier.
func (s *Screen) Notify(n signin.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inbox = append(s.inbox, n)
}

// NavigateTo implements signin.Navigator. The last route wins.
func (s *Screen) NavigateTo(route string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.route = route
}

// Drain returns and clears the pending notifications.
func (s *Screen) Drain() []signin.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.inbox
	s.inbox = nil
	return out
}

// TakeRoute returns and clears the pending route, or "" if there is none.
func (s *Screen) TakeRoute() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.route
	s.route = ""
	return r
}

// Hooks is told when screens enter and leave the registry.
type Hooks interface {
	ScreenMounted()
	ScreenUnmounted()
}

type noHooks struct{}

func (noHooks) ScreenMounted()   {}
func (noHooks) ScreenUnmounted() {}

// Registry holds mounted screens, expiring those idle for longer than its TTL.
type Registry struct {
	auth  signin.AuthService
	opts  []signin.Option
	ttl   time.Duration
	hooks Hooks
	cache *cache.Cache
}

// NewRegistry creates a registry building controllers on auth with opts.
// hooks may be nil.
func NewRegistry(auth signin.AuthService, ttl time.Duration, hooks Hooks, opts ...signin.Option) *Registry {
	if hooks == nil {
		hooks = noHooks{}
	}
	cleanup := ttl / 2
	if cleanup < time.Second {
		cleanup = time.Second
	}
	r := &Registry{
		auth:  auth,
		opts:  opts,
		ttl:   ttl,
		hooks: hooks,
		cache: cache.New(ttl, cleanup),
	}
	r.cache.OnEvicted(func(string, interface{}) {
		r.hooks.ScreenUnmounted()
	})
	return r
}

// Mount creates a screen with an empty form and both handlers idle.
func (r *Registry) Mount() *Screen {
	s := &Screen{ID: uuid.NewString()}
	s.Controller = signin.NewController(r.auth, s, s, r.opts...)
	r.cache.Set(s.ID, s, cache.DefaultExpiration)
	r.hooks.ScreenMounted()
	return s
}

// Get returns the screen with id and extends its lifetime.
func (r *Registry) Get(id string) (*Screen, bool) {
	v, ok := r.cache.Get(id)
	if !ok {
		return nil, false
	}
	s := v.(*Screen)
	r.cache.Set(id, s, cache.DefaultExpiration)
	return s, true
}

// Unmount removes the screen with id. Outstanding calls still settle but
// their side effects are no longer collected.
func (r *Registry) Unmount(id string) {
	r.cache.Delete(id)
}

// Count returns the number of mounted screens, including expired ones not yet evicted.
func (r *Registry) Count() int {
	return r.cache.ItemCount()
}
