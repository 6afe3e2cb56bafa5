package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis_rate/v9"
	log "github.com/sirupsen/logrus"

	"github.com/nicksgoat/fitplan-sheets-sub001/internal/metrics"
	"github.com/nicksgoat/fitplan-sheets-sub001/internal/service"
)

// Constants for context keys
const (
	ContextUserIDKey = "userID"
	ContextTokenKey  = "token"
)

// AuthMiddleware validates the bearer token through the auth service, which
// also rejects revoked tokens.
func AuthMiddleware(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithError(c, http.StatusUnauthorized, "Authorization header is missing")
			return
		}

		// Expecting "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
			abortWithError(c, http.StatusUnauthorized, "Authorization header format must be Bearer {token}")
			return
		}
		tokenString := parts[1]

		claims, err := authService.ValidateToken(c.Request.Context(), tokenString)
		if err != nil {
			if errors.Is(err, service.ErrInvalidToken) || errors.Is(err, service.ErrTokenRevoked) {
				abortWithError(c, http.StatusUnauthorized, err.Error())
				return
			}
			log.Errorf("validate token: %s", err)
			abortWithError(c, http.StatusInternalServerError, "Failed to validate token")
			return
		}

		c.Set(ContextUserIDKey, claims.UserID)
		c.Set(ContextTokenKey, tokenString)
		c.Next()
	}
}

// Helper function to get User ID from context (used by handlers)
func getUserIDFromContext(c *gin.Context) (string, error) {
	idRaw, exists := c.Get(ContextUserIDKey)
	if !exists {
		return "", errors.New("user ID not found in context")
	}
	idStr, ok := idRaw.(string)
	if !ok || idStr == "" {
		return "", errors.New("invalid user ID type in context")
	}
	return idStr, nil
}

// mustUserID returns the authenticated user or aborts with 401.
func mustUserID(c *gin.Context) (string, bool) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unauthorized")
		return "", false
	}
	return userID, true
}

type RequestRateLimiter interface {
	Allow(ctx context.Context, key string, limit redis_rate.Limit) (*redis_rate.Result, error)
}

// RateLimit limits requests per client IP (per user once authenticated).
// A nil limiter disables limiting.
func RateLimit(rateLimiter RequestRateLimiter, m *metrics.Manager, allowedPerMin int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rateLimiter == nil || allowedPerMin <= 0 {
			c.Next()
			return
		}

		key := "ip:" + c.ClientIP()
		if userID, err := getUserIDFromContext(c); err == nil {
			key = "user:" + userID
		}
		res, err := rateLimiter.Allow(c.Request.Context(), key, redis_rate.PerMinute(allowedPerMin))
		if err != nil {
			// the limiter failing must not take the API down with it
			log.Errorf("rate limit %s: %s", key, err)
			c.Next()
			return
		}
		if res.Allowed > 0 {
			c.Next()
			return
		}

		m.CounterRateLimited.Inc()
		c.Header("Retry-After", strconv.Itoa(int(res.RetryAfter.Seconds()+1)))
		abortWithError(c, http.StatusTooManyRequests, fmt.Sprintf("retry after %.0f seconds", res.RetryAfter.Seconds()))
	}
}

// RequestMetrics records request counts and durations by route template.
func RequestMetrics(m *metrics.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		m.GaugeRequests.Inc()
		defer m.GaugeRequests.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.HistRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		m.CounterRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}

// PanicRecovery turns a handler panic into a 500.
func PanicRecovery(m *metrics.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Errorf("panic serving %s %s: %v\n%s", c.Request.Method, c.Request.URL.Path, err, debug.Stack())
				m.CounterHandleRequestPanic.Inc()
				abortWithError(c, http.StatusInternalServerError, "Internal server error")
			}
		}()
		c.Next()
	}
}

func LogRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(log.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
			"ua":       c.Request.UserAgent(),
		}).Trace("request served")
	}
}
