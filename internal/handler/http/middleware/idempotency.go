package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-hris/hris-leave-go/internal/handler/http/response"
	"github.com/go-redis/redis/v8"
)

const (
	IdempotencyHeader = "Idempotency-Key"
	ReplayedHeader    = "Idempotent-Replayed"

	idempotencyLockTTL = 30 * time.Second
)

type storedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

type captureWriter struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (c *captureWriter) WriteHeader(status int) {
	c.status = status
	c.ResponseWriter.WriteHeader(status)
}

func (c *captureWriter) Write(b []byte) (int, error) {
	c.body.Write(b)
	return c.ResponseWriter.Write(b)
}

// IdempotencyKeys builds the redis keys for one caller, path and key.
func IdempotencyKeys(path, employeeID, key string) (cacheKey, lockKey string) {
	cacheKey = fmt.Sprintf("idemp:%s:%s:%s", path, employeeID, key)
	return cacheKey, cacheKey + ":lock"
}

// Idempotency replays the stored response of a POST carrying a key it has
// already seen, and answers 409 while the first request is still running.
// Redis failures let the request through.
func Idempotency(rdb redis.Cmdable, ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			idempKey := r.Header.Get(IdempotencyHeader)
			if idempKey == "" || r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}

			employeeID := "anonymous"
			if actor, ok := ActorFromContext(r.Context()); ok {
				employeeID = actor.EmployeeID
			}
			cacheKey, lockKey := IdempotencyKeys(r.URL.Path, employeeID, idempKey)
			ctx := r.Context()

			val, err := rdb.Get(ctx, cacheKey).Result()
			switch {
			case err == nil:
				var stored storedResponse
				if err := json.Unmarshal([]byte(val), &stored); err == nil {
					w.Header().Set("Content-Type", stored.ContentType)
					w.Header().Set(ReplayedHeader, "true")
					w.WriteHeader(stored.Status)
					_, _ = w.Write(stored.Body)
					return
				}
				slog.Warn("Discarding unreadable idempotent response", "key", cacheKey)
			case !errors.Is(err, redis.Nil):
				slog.Warn("Idempotency lookup failed", "key", cacheKey, "error", err)
				next.ServeHTTP(w, r)
				return
			}

			acquired, err := rdb.SetNX(ctx, lockKey, "locked", idempotencyLockTTL).Result()
			if err != nil {
				slog.Warn("Idempotency lock failed", "key", lockKey, "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if !acquired {
				response.Conflict(w, "REQUEST_IN_PROGRESS", "A request with this Idempotency-Key is still being processed")
				return
			}

			rec := &captureWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			// The client may be gone by now; finish the bookkeeping anyway.
			bg := context.WithoutCancel(ctx)
			if rec.status < http.StatusInternalServerError {
				payload, err := json.Marshal(storedResponse{
					Status:      rec.status,
					ContentType: rec.Header().Get("Content-Type"),
					Body:        rec.body.Bytes(),
				})
				if err == nil {
					if err := rdb.Set(bg, cacheKey, string(payload), ttl).Err(); err != nil {
						slog.Warn("Failed to store idempotent response", "key", cacheKey, "error", err)
					}
				}
			}
			if err := rdb.Del(bg, lockKey).Err(); err != nil {
				slog.Warn("Failed to release idempotency lock", "key", lockKey, "error", err)
			}
		})
	}
}
