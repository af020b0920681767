package ratelimit

import (
	"sync"
	"time"
)

// SlidingWindowLimiter - лимитер по скользящему окну с вытеснением.
// Держит для каждого ключа срез меток времени недавних запросов: перед
// проверкой отбрасывает метки старше окна, отклоняет при достижении лимита,
// иначе записывает новую метку. Явный сервисный объект вместо глобальной
// таблицы, чтобы лимитер внедрялся в обработчики и тестировался с
// управляемыми часами.
type SlidingWindowLimiter struct {
	mu      sync.Mutex
	windows map[string][]time.Time
	limit   int
	window  time.Duration
	now     func() time.Time
}

// Option настраивает лимитер
type Option func(*SlidingWindowLimiter)

// WithClock подменяет источник времени (для тестов)
func WithClock(now func() time.Time) Option {
	return func(l *SlidingWindowLimiter) {
		l.now = now
	}
}

// NewSlidingWindowLimiter создает лимитер: не более limit запросов на ключ за window
func NewSlidingWindowLimiter(limit int, window time.Duration, opts ...Option) *SlidingWindowLimiter {
	l := &SlidingWindowLimiter{
		windows: make(map[string][]time.Time),
		limit:   limit,
		window:  window,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow проверяет и учитывает один запрос по ключу.
// Возвращает false, если лимит в текущем окне уже исчерпан; в этом случае
// запрос не записывается и не продлевает окно.
func (l *SlidingWindowLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	window := l.windows[key]
	trimmed := window[:0]
	for _, ts := range window {
		if ts.After(cutoff) {
			trimmed = append(trimmed, ts)
		}
	}

	if len(trimmed) >= l.limit {
		l.windows[key] = trimmed
		return false
	}

	l.windows[key] = append(trimmed, now)
	return true
}

// Reset сбрасывает окно для ключа
func (l *SlidingWindowLimiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, key)
}
