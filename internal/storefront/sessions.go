package storefront

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"RocketShoes/internal/cart"
	"RocketShoes/internal/kvstore"
)

const DefaultIdleTimeout = 30 * time.Minute

type Session struct {
	ID   string
	Cart *cart.Store
	Hub  *Hub
}

type sessionEntry struct {
	sess     *Session
	refs     int
	lastUsed time.Time
}

// Sessions lazily builds one cart per session id. Each cart persists under
// its own namespace of the shared key-value store. Sessions nobody holds are
// evicted once idle and rebuilt from storage on the next request.
type Sessions struct {
	base    kvstore.Store
	inv     cart.Inventory
	log     *zap.Logger
	metrics *cart.Metrics
	idle    time.Duration
	now     func() time.Time

	build singleflight.Group

	mu sync.Mutex
	m  map[string]*sessionEntry
}

func NewSessions(base kvstore.Store, inv cart.Inventory, log *zap.Logger, metrics *cart.Metrics, idle time.Duration) *Sessions {
	if log == nil {
		log = zap.NewNop()
	}
	if idle <= 0 {
		idle = DefaultIdleTimeout
	}
	return &Sessions{
		base:    base,
		inv:     inv,
		log:     log,
		metrics: metrics,
		idle:    idle,
		now:     time.Now,
		m:       map[string]*sessionEntry{},
	}
}

// Get returns the session for id, building and hydrating it if needed. The
// caller must call release once done with the session.
func (s *Sessions) Get(ctx context.Context, id string) (*Session, func(), error) {
	if sess, release, ok := s.acquire(id); ok {
		return sess, release, nil
	}

	v, err, _ := s.build.Do(id, func() (any, error) {
		s.mu.Lock()
		e, ok := s.m[id]
		s.mu.Unlock()
		if ok {
			return e.sess, nil
		}
		return s.open(ctx, id)
	})
	if err != nil {
		return nil, nil, err
	}

	s.mu.Lock()
	e, ok := s.m[id]
	if !ok {
		e = &sessionEntry{sess: v.(*Session)}
		s.m[id] = e
	}
	e.refs++
	e.lastUsed = s.now()
	s.mu.Unlock()

	return e.sess, s.releaser(e), nil
}

func (s *Sessions) acquire(id string) (*Session, func(), bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.m[id]
	if !ok {
		return nil, nil, false
	}
	e.refs++
	e.lastUsed = s.now()
	return e.sess, s.releaser(e), true
}

func (s *Sessions) releaser(e *sessionEntry) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			e.refs--
			e.lastUsed = s.now()
			s.mu.Unlock()
		})
	}
}

func (s *Sessions) open(ctx context.Context, id string) (*Session, error) {
	log := s.log.With(zap.String("session_id", id))
	hub := NewHub(log)

	store, err := cart.New(ctx, cart.Deps{
		Inventory: s.inv,
		Storage:   kvstore.Namespace(s.base, "session/"+id),
		Notifier:  hub,
		Log:       log,
		Metrics:   s.metrics,
	})
	if err != nil {
		return nil, err
	}
	return &Session{ID: id, Cart: store, Hub: hub}, nil
}

// Sweep evicts sessions that are not held and have been idle for longer
// than the idle timeout. It returns how many were evicted.
func (s *Sessions) Sweep() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, e := range s.m {
		if e.refs == 0 && now.Sub(e.lastUsed) >= s.idle {
			delete(s.m, id)
			n++
		}
	}
	return n
}

// Run sweeps idle sessions every interval until ctx is done.
func (s *Sessions) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := s.Sweep(); n > 0 {
				s.log.Debug("evicted idle sessions", zap.Int("evicted", n), zap.Int("live", s.Len()))
			}
		}
	}
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}

func (s *Sessions) Ping(ctx context.Context) error {
	return s.base.Ping(ctx)
}
