package session

import (
	"context"
	"sync"
	"time"

	drepo "NewsImpact/internal/domain/repository"
	"NewsImpact/internal/usecase"
	applogger "NewsImpact/pkg/logger"
	"NewsImpact/pkg/metrics"

	"github.com/google/uuid"
)

type entry struct {
	ctrl *usecase.Controller
	exp  time.Time
}

// Factory builds the controller for a new session.
type Factory func() *usecase.Controller

// Option configures Registry.
type Option func(*Registry)

// Registry holds one controller per dashboard session in memory. Sessions
// expire after ttl without access; every Get extends the deadline.
type Registry struct {
	mu      sync.RWMutex
	m       map[string]entry
	ttl     time.Duration
	factory Factory
	now     func() time.Time
	onEvict func(id string)
	metrics drepo.Metrics
	logger  *applogger.Logger
}

func NewRegistry(factory Factory, ttl time.Duration, opts ...Option) *Registry {
	r := &Registry{
		m:       make(map[string]entry),
		ttl:     ttl,
		factory: factory,
		now:     time.Now,
		metrics: metrics.Nop{},
		logger:  applogger.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func WithMetrics(m drepo.Metrics) Option {
	return func(r *Registry) {
		r.metrics = m
	}
}

func WithLogger(l *applogger.Logger) Option {
	return func(r *Registry) {
		r.logger = l
	}
}

func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

// WithEvictHook runs fn with the id of every expired or deleted session.
func WithEvictHook(fn func(id string)) Option {
	return func(r *Registry) {
		r.onEvict = fn
	}
}

// Create starts a new session and returns its id.
func (r *Registry) Create() (string, *usecase.Controller) {
	id := uuid.NewString()
	ctrl := r.factory()

	r.mu.Lock()
	r.m[id] = entry{ctrl: ctrl, exp: r.deadline()}
	n := len(r.m)
	r.mu.Unlock()

	r.metrics.SetActiveSessions(n)
	r.logger.Debug("session created", applogger.String("session", id))
	return id, ctrl
}

// Get returns the session's controller and refreshes its expiry.
func (r *Registry) Get(id string) (*usecase.Controller, bool) {
	r.mu.Lock()
	e, ok := r.m[id]
	if !ok {
		r.mu.Unlock()
		return nil, false
	}
	if !e.exp.IsZero() && r.now().After(e.exp) {
		delete(r.m, id)
		n := len(r.m)
		r.mu.Unlock()
		r.evicted(id, e.ctrl, n)
		return nil, false
	}
	e.exp = r.deadline()
	r.m[id] = e
	r.mu.Unlock()
	return e.ctrl, true
}

// Delete ends a session.
func (r *Registry) Delete(id string) bool {
	r.mu.Lock()
	e, ok := r.m[id]
	delete(r.m, id)
	n := len(r.m)
	r.mu.Unlock()

	if ok {
		r.evicted(id, e.ctrl, n)
	}
	return ok
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.m)
}

// Sweep drops every expired session and returns how many were removed.
func (r *Registry) Sweep() int {
	now := r.now()
	var expired []string
	var ctrls []*usecase.Controller

	r.mu.Lock()
	for id, e := range r.m {
		if !e.exp.IsZero() && now.After(e.exp) {
			expired = append(expired, id)
			ctrls = append(ctrls, e.ctrl)
			delete(r.m, id)
		}
	}
	n := len(r.m)
	r.mu.Unlock()

	for i, id := range expired {
		r.evicted(id, ctrls[i], n)
	}
	return len(expired)
}

// Run sweeps expired sessions every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				r.logger.Info("expired sessions removed", applogger.Int("count", n))
			}
		}
	}
}

// Close ends every session.
func (r *Registry) Close() {
	r.mu.Lock()
	all := r.m
	r.m = make(map[string]entry)
	r.mu.Unlock()

	for id, e := range all {
		r.evicted(id, e.ctrl, 0)
	}
}

func (r *Registry) deadline() time.Time {
	if r.ttl <= 0 {
		return time.Time{}
	}
	return r.now().Add(r.ttl)
}

func (r *Registry) evicted(id string, ctrl *usecase.Controller, remaining int) {
	ctrl.Close()
	if r.onEvict != nil {
		r.onEvict(id)
	}
	r.metrics.SetActiveSessions(remaining)
	r.logger.Debug("session ended", applogger.String("session", id))
}
