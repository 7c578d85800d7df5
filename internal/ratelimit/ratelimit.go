package ratelimit

import (
	"sync"
	"time"
)

// Config for a fixed-window limiter.
type Config struct {
	Capacity int           // requests allowed per window
	Window   time.Duration // window length
}

func DefaultConfig() Config {
	return Config{Capacity: 100, Window: time.Minute}
}

type window struct {
	count     int
	startedAt time.Time
}

// Limiter is an in-process fixed-window counter keyed by caller-defined
// strings, typically "clientIP:route". Expiry is evaluated lazily on access;
// a background sweep drops idle keys so the map does not grow without bound.
type Limiter struct {
	mu      sync.Mutex
	cfg     Config
	windows map[string]*window

	stopOnce sync.Once
	stop     chan struct{}
}

func New(cfg Config) *Limiter {
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultConfig().Capacity
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultConfig().Window
	}
	l := &Limiter{
		cfg:     cfg,
		windows: make(map[string]*window),
		stop:    make(chan struct{}),
	}
	go l.sweepLoop()
	return l
}

// Allow reports whether another request under key fits the current window.
func (l *Limiter) Allow(key string) bool {
	now := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || now.Sub(w.startedAt) >= l.cfg.Window {
		l.windows[key] = &window{count: 1, startedAt: now}
		return true
	}
	if w.count >= l.cfg.Capacity {
		return false
	}
	w.count++
	return true
}

// Close stops the sweep goroutine.
func (l *Limiter) Close() {
	l.stopOnce.Do(func() { close(l.stop) })
}

func (l *Limiter) sweepLoop() {
	ticker := time.NewTicker(l.cfg.Window)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.sweepExpired(time.Now())
		case <-l.stop:
			return
		}
	}
}

func (l *Limiter) sweepExpired(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, w := range l.windows {
		if now.Sub(w.startedAt) >= l.cfg.Window {
			delete(l.windows, key)
		}
	}
}
