package middlewares

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
)

// idempotencyRecord stores the first completed response for a key.
type idempotencyRecord struct {
	requestHash string
	status      int
	body        []byte
	createdAt   time.Time
}

type idempotencyStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	records map[string]*idempotencyRecord
}

func newIdempotencyStore(ttl time.Duration) *idempotencyStore {
	return &idempotencyStore{ttl: ttl, records: make(map[string]*idempotencyRecord)}
}

func (s *idempotencyStore) get(key string) (*idempotencyRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[key]
	if !ok {
		return nil, false
	}
	if time.Since(rec.createdAt) > s.ttl {
		delete(s.records, key)
		return nil, false
	}
	return rec, true
}

func (s *idempotencyStore) put(key string, rec *idempotencyRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[key] = rec
}

// Idempotency processes Idempotency-Key for mutating HTTP methods. Replayed
// requests with the same key and an identical request hash get the stored
// response back without re-running the handler; a reused key with a
// different request is a conflict.
func Idempotency() fiber.Handler {
	store := newIdempotencyStore(24 * time.Hour)

	return func(c *fiber.Ctx) error {
		method := strings.ToUpper(c.Method())
		if method != fiber.MethodPost && method != fiber.MethodPut && method != fiber.MethodPatch && method != fiber.MethodDelete {
			return c.Next()
		}

		key := strings.TrimSpace(c.Get("Idempotency-Key"))
		if key == "" {
			return c.Next()
		}
		if len(key) > 128 {
			return fiber.NewError(fiber.StatusBadRequest, "Idempotency-Key too long")
		}

		// Deterministic request hash: method|path|body
		h := sha256.New()
		h.Write([]byte(method))
		h.Write([]byte{'\n'})
		h.Write([]byte(c.OriginalURL()))
		h.Write([]byte{'\n'})
		h.Write(c.Body())
		reqHash := hex.EncodeToString(h.Sum(nil))

		if rec, ok := store.get(key); ok {
			if rec.requestHash != reqHash {
				return fiber.NewError(fiber.StatusConflict, "Idempotency-Key reuse with different request")
			}
			c.Status(rec.status)
			return c.Send(rec.body)
		}

		if err := c.Next(); err != nil {
			return err
		}

		resp := c.Response().Body()
		blob := make([]byte, len(resp))
		copy(blob, resp)
		store.put(key, &idempotencyRecord{
			requestHash: reqHash,
			status:      c.Response().StatusCode(),
			body:        blob,
			createdAt:   time.Now(),
		})
		return nil
	}
}
