// internal/middleware/rate_limit.go
package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// callerLimiter hands out one token bucket per caller key and forgets
// callers that have been quiet for a while.
type callerLimiter struct {
	mtx     sync.Mutex
	buckets map[string]*bucket
	rate    rate.Limit
	burst   int
	keyFn   func(*gin.Context) string
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newCallerLimiter(r rate.Limit, burst int, keyFn func(*gin.Context) string) *callerLimiter {
	cl := &callerLimiter{
		buckets: make(map[string]*bucket),
		rate:    r,
		burst:   burst,
		keyFn:   keyFn,
	}

	go cl.evictIdle()

	return cl
}

func (cl *callerLimiter) evictIdle() {
	for {
		time.Sleep(time.Minute)
		cl.mtx.Lock()
		for key, b := range cl.buckets {
			if time.Since(b.lastSeen) > 3*time.Minute {
				delete(cl.buckets, key)
			}
		}
		cl.mtx.Unlock()
	}
}

func (cl *callerLimiter) allow(key string) bool {
	cl.mtx.Lock()
	defer cl.mtx.Unlock()

	b, exists := cl.buckets[key]
	if !exists {
		b = &bucket{limiter: rate.NewLimiter(cl.rate, cl.burst)}
		cl.buckets[key] = b
	}

	b.lastSeen = time.Now()
	return b.limiter.Allow()
}

func (cl *callerLimiter) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cl.allow(cl.keyFn(c)) {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded. Please try again later.",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

func byClientIP(c *gin.Context) string {
	return c.ClientIP()
}

// byUser keys authenticated traffic per account so one office NAT does
// not exhaust everyone's quota at once; unauthenticated requests fall
// back to the client IP.
func byUser(c *gin.Context) string {
	if userID, exists := c.Get("user_id"); exists {
		if id, ok := userID.(string); ok && id != "" {
			return "user:" + id
		}
	}
	return "ip:" + c.ClientIP()
}

// GeneralRateLimit caps all traffic at 10 requests per second per
// client IP.
func GeneralRateLimit() gin.HandlerFunc {
	return newCallerLimiter(rate.Every(time.Second), 10, byClientIP).middleware()
}

// AuthRateLimit slows credential guessing on the auth endpoints: a
// burst of 5, then one attempt per minute per client IP.
func AuthRateLimit() gin.HandlerFunc {
	return newCallerLimiter(rate.Every(time.Minute), 5, byClientIP).middleware()
}

// ExportRateLimit throttles report exports per account. Rendering and
// uploading a CSV is the most expensive request the API serves, so the
// budget comes from configuration.
func ExportRateLimit(perMinute int) gin.HandlerFunc {
	if perMinute < 1 {
		perMinute = 3
	}
	return newCallerLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute, byUser).middleware()
}
