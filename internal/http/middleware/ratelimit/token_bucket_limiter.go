package ratelimit

import (
	"container/list"
	"sync"
	"time"
)

// Config stores TokenBucketLimiter settings.
type Config struct {
	Rate       float64       // tokens per second
	Burst      int           // capacity (max tokens)
	TTL        time.Duration // forget clients idle longer than this (0 keeps them)
	MaxBuckets int           // tracked clients; the least recently seen is evicted (0 is unbounded)
}

// TokenBucketLimiter keeps one token bucket per key. Buckets are kept in
// least-recently-seen order so idle and overflowing clients are dropped
// from the back.
type TokenBucketLimiter struct {
	cfg   Config
	clock Clock

	mu      sync.Mutex
	buckets map[string]*list.Element
	lru     *list.List
}

type bucket struct {
	key      string
	tokens   float64
	lastSeen time.Time
}

// NewTokenBucketLimiter creates limiter with explicit config and injected clock.
func NewTokenBucketLimiter(clock Clock, cfg Config) *TokenBucketLimiter {
	if clock == nil {
		clock = RealClock{}
	}
	if cfg.Rate <= 0 {
		cfg.Rate = 1
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if cfg.MaxBuckets < 0 {
		cfg.MaxBuckets = 0
	}
	return &TokenBucketLimiter{
		cfg:     cfg,
		clock:   clock,
		buckets: make(map[string]*list.Element),
		lru:     list.New(),
	}
}

// Allow takes a token from key's bucket. When the bucket is empty it reports
// how long until the next token.
func (l *TokenBucketLimiter) Allow(key string) (bool, time.Duration) {
	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.expire(now)
	b := l.touch(key, now)
	if b.tokens >= 1 {
		b.tokens--
		return true, 0
	}
	wait := time.Duration((1 - b.tokens) / l.cfg.Rate * float64(time.Second))
	return false, wait
}

// touch returns key's bucket refilled up to now and moves it to the front.
func (l *TokenBucketLimiter) touch(key string, now time.Time) *bucket {
	burst := float64(l.cfg.Burst)
	if el, ok := l.buckets[key]; ok {
		b := el.Value.(*bucket)
		if dt := now.Sub(b.lastSeen); dt > 0 {
			b.tokens += dt.Seconds() * l.cfg.Rate
			if b.tokens > burst {
				b.tokens = burst
			}
			b.lastSeen = now
		}
		l.lru.MoveToFront(el)
		return b
	}

	b := &bucket{key: key, tokens: burst, lastSeen: now}
	l.buckets[key] = l.lru.PushFront(b)
	if l.cfg.MaxBuckets > 0 && l.lru.Len() > l.cfg.MaxBuckets {
		l.remove(l.lru.Back())
	}
	return b
}

// expire drops buckets idle for longer than TTL. A dropped bucket would have
// refilled to burst by now, so forgetting it changes nothing for the client.
func (l *TokenBucketLimiter) expire(now time.Time) {
	if l.cfg.TTL <= 0 {
		return
	}
	for el := l.lru.Back(); el != nil; el = l.lru.Back() {
		if now.Sub(el.Value.(*bucket).lastSeen) <= l.cfg.TTL {
			return
		}
		l.remove(el)
	}
}

func (l *TokenBucketLimiter) remove(el *list.Element) {
	b := l.lru.Remove(el).(*bucket)
	delete(l.buckets, b.key)
}

// Len reports how many clients are tracked.
func (l *TokenBucketLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lru.Len()
}
