package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/moogar0880/problems"
	"golang.org/x/time/rate"

	"github.com/freelancehub/dashboard-backend/internal/auth"
)

const idleLimiterTTL = 10 * time.Minute

// ActorLimiter keeps one token bucket per actor. Requests without an actor
// share the bucket keyed by client IP.
type ActorLimiter struct {
	mu       sync.Mutex
	limiters map[string]*actorBucket
	rps      rate.Limit
	burst    int
	now      func() time.Time
}

type actorBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewActorLimiter(perSecond float64, burst int) *ActorLimiter {
	return &ActorLimiter{
		limiters: make(map[string]*actorBucket),
		rps:      rate.Limit(perSecond),
		burst:    burst,
		now:      time.Now,
	}
}

func (l *ActorLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.limiters[key]
	if !ok {
		b = &actorBucket{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.limiters[key] = b
	}
	b.lastSeen = now
	l.evict(now)
	return b.limiter.AllowN(now, 1)
}

// evict drops buckets idle for longer than idleLimiterTTL. Caller holds mu.
func (l *ActorLimiter) evict(now time.Time) {
	for k, b := range l.limiters {
		if now.Sub(b.lastSeen) > idleLimiterTTL {
			delete(l.limiters, k)
		}
	}
}

// RateLimit rejects mutating requests above the actor's budget with 429.
func RateLimit(l *ActorLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := auth.ActorID(c)
		if key == "" {
			key = "ip:" + c.ClientIP()
		}
		if !l.Allow(key) {
			retry := 1
			if l.rps > 0 {
				retry = int(1/float64(l.rps)) + 1
			}
			c.Header("Retry-After", strconv.Itoa(retry))
			problem := problems.NewStatusProblem(http.StatusTooManyRequests).
				WithInstance(c.Request.URL.Path).
				WithType("rate_limited").
				WithDetail("too many changes, slow down")
			c.Header("Content-Type", "application/problem+json")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, problem)
			return
		}
		c.Next()
	}
}
