package middleware

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pjecz/casiopea/pkg/errors"
	"github.com/pjecz/casiopea/pkg/logger"
	"github.com/pjecz/casiopea/pkg/response"
)

// ErrTooManyRequests is returned once a client exhausts its window.
var ErrTooManyRequests = errors.New("TOO_MANY_REQUESTS", "Demasiados intentos, espere un momento", 429)

type rateCounter struct {
	count     int
	windowEnd time.Time
}

// rateWindow is a process-local fixed-window counter keyed by client and route.
type rateWindow struct {
	mu    sync.Mutex
	data  map[string]*rateCounter
	clock func() time.Time
}

func (w *rateWindow) increment(key string, window time.Duration) (int, time.Duration) {
	now := w.clock()

	w.mu.Lock()
	defer w.mu.Unlock()

	for k, v := range w.data {
		if now.After(v.windowEnd) {
			delete(w.data, k)
		}
	}

	ct, ok := w.data[key]
	if !ok {
		ct = &rateCounter{windowEnd: now.Add(window)}
		w.data[key] = ct
	}
	ct.count++
	return ct.count, ct.windowEnd.Sub(now)
}

// RateLimit limits requests per (clientIP, route) within a fixed window.
// Used on the login endpoint; a zero limit disables it.
func RateLimit(maxRequests int, window time.Duration) gin.HandlerFunc {
	return rateLimit(maxRequests, window, time.Now)
}

func rateLimit(maxRequests int, window time.Duration, clock func() time.Time) gin.HandlerFunc {
	store := &rateWindow{data: make(map[string]*rateCounter), clock: clock}

	return func(c *gin.Context) {
		if maxRequests <= 0 || window <= 0 {
			c.Next()
			return
		}

		key := c.ClientIP() + "|" + c.FullPath()
		count, resetIn := store.increment(key, window)

		remaining := maxRequests - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(maxRequests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.Itoa(int(resetIn.Seconds())))

		if count > maxRequests {
			logger.WithModule("http").Warn("rate limit exceeded",
				zap.String("client_ip", c.ClientIP()),
				zap.String("path", c.FullPath()),
			)
			response.Abort(c, ErrTooManyRequests)
			return
		}

		c.Next()
	}
}
