package http

import (
	"sync"

	"golang.org/x/time/rate"
)

// DefaultMaxClients bounds the number of clients tracked by a ClientLimiter.
const DefaultMaxClients = 4096

// ClientLimiter provides per-client rate limiting using token buckets.
// Each client gets its own limiter, so one caller cannot starve the
// proof-of-work capacity of the others.
type ClientLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientBucket
	seq     uint64
	rps     float64
	burst   int

	// MaxClients caps the tracked clients. Once reached, refilled buckets
	// are dropped first, then the least recently used one.
	MaxClients int
}

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen uint64
}

// NewClientLimiter creates a ClientLimiter allowing rps requests per second
// per client with the given burst. A burst below 1 is treated as 1.
func NewClientLimiter(rps float64, burst int) *ClientLimiter {
	if burst < 1 {
		burst = 1
	}
	return &ClientLimiter{
		clients:    make(map[string]*clientBucket),
		rps:        rps,
		burst:      burst,
		MaxClients: DefaultMaxClients,
	}
}

// Allow reports whether the client may make a request now.
func (c *ClientLimiter) Allow(client string) bool {
	c.mu.Lock()
	c.seq++
	b, ok := c.clients[client]
	if !ok {
		if len(c.clients) >= c.maxClients() {
			c.evictLocked()
		}
		b = &clientBucket{limiter: rate.NewLimiter(rate.Limit(c.rps), c.burst)}
		c.clients[client] = b
	}
	b.lastSeen = c.seq
	c.mu.Unlock()

	return b.limiter.Allow()
}

// Len returns the number of tracked clients.
func (c *ClientLimiter) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.clients)
}

func (c *ClientLimiter) maxClients() int {
	if c.MaxClients < 1 {
		return DefaultMaxClients
	}
	return c.MaxClients
}

// evictLocked makes room for one client. Refilled buckets go first since
// forgetting them changes nothing for their clients; if every bucket is
// in use the least recently seen client is dropped.
func (c *ClientLimiter) evictLocked() {
	var oldest string
	var oldestSeen uint64
	found := false
	for client, b := range c.clients {
		if b.limiter.Tokens() >= float64(c.burst) {
			delete(c.clients, client)
			continue
		}
		if !found || b.lastSeen < oldestSeen {
			oldest, oldestSeen, found = client, b.lastSeen, true
		}
	}
	if len(c.clients) >= c.maxClients() && found {
		delete(c.clients, oldest)
	}
}
