package middleware

import (
	"bytes"
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sangkips/inventario/internal/presentation/http/dto/response"
)

const (
	// IdempotencyKeyHeader is the HTTP header for idempotency keys
	IdempotencyKeyHeader = "Idempotency-Key"
	// ReplayedHeader marks a response served from the cache
	ReplayedHeader = "X-Idempotency-Replayed"
	// IdempotencyKeyTTL is how long keys are valid
	IdempotencyKeyTTL = 24 * time.Hour
)

type cachedResponse struct {
	status      int
	contentType string
	body        []byte
	expiresAt   time.Time
	done        bool
}

// IdempotencyStore remembers successful responses by key in memory
type IdempotencyStore struct {
	mu      sync.Mutex
	entries map[string]*cachedResponse
	ttl     time.Duration
	now     func() time.Time
}

// NewIdempotencyStore creates a store. Expired keys are swept until ctx is
// cancelled.
func NewIdempotencyStore(ctx context.Context, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = IdempotencyKeyTTL
	}
	s := &IdempotencyStore{entries: make(map[string]*cachedResponse), ttl: ttl, now: time.Now}
	go s.sweepLoop(ctx)
	return s
}

// begin returns the cached response for key, or claims the key. inFlight
// is set when another request holds the key.
func (s *IdempotencyStore) begin(key string) (cached *cachedResponse, inFlight bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[key]; ok && s.now().Before(e.expiresAt) {
		if !e.done {
			return nil, true
		}
		return e, false
	}
	s.entries[key] = &cachedResponse{expiresAt: s.now().Add(s.ttl)}
	return nil, false
}

func (s *IdempotencyStore) finish(key string, status int, contentType string, body []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if status < 200 || status >= 300 {
		delete(s.entries, key)
		return
	}
	s.entries[key] = &cachedResponse{
		status:      status,
		contentType: contentType,
		body:        body,
		expiresAt:   s.now().Add(s.ttl),
		done:        true,
	}
}

func (s *IdempotencyStore) sweepLoop(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *IdempotencyStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, key)
		}
	}
}

// responseWriter wraps gin.ResponseWriter to capture the response body
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Idempotency replays the first successful response for a repeated
// Idempotency-Key. Requests without the header pass through.
func Idempotency(store *IdempotencyStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			c.Next()
			return
		}
		scoped := c.Request.Method + " " + c.Request.URL.Path + " " + key

		cached, inFlight := store.begin(scoped)
		if inFlight {
			response.ErrorWithCode(c, http.StatusConflict, "A request with this Idempotency-Key is still being processed")
			c.Abort()
			return
		}
		if cached != nil {
			c.Header(ReplayedHeader, "true")
			c.Data(cached.status, cached.contentType, cached.body)
			c.Abort()
			return
		}

		blw := &responseWriter{body: &bytes.Buffer{}, ResponseWriter: c.Writer}
		c.Writer = blw

		completed := false
		defer func() {
			if !completed {
				store.finish(scoped, http.StatusInternalServerError, "", nil)
			}
		}()

		c.Next()
		completed = true

		store.finish(scoped, c.Writer.Status(), c.Writer.Header().Get("Content-Type"), blw.body.Bytes())
	}
}
