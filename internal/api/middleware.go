package api

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/safar/go-storefront/internal/logger"
	"github.com/safar/go-storefront/internal/models"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	CartIDHeader = "X-Cart-ID"

	cartIDKey  = "cart_id"
	sessionKey = "admin_session"
)

// CartScope resolves the cart of the caller from X-Cart-ID, issuing a new id
// when the header is missing or malformed. The id is echoed back.
func CartScope() gin.HandlerFunc {
	return func(c *gin.Context) {
		cartID := c.GetHeader(CartIDHeader)
		if _, err := uuid.Parse(cartID); err != nil {
			cartID = uuid.NewString()
		}
		c.Set(cartIDKey, cartID)
		c.Header(CartIDHeader, cartID)
		c.Next()
	}
}

func cartID(c *gin.Context) string {
	return c.GetString(cartIDKey)
}

// RequireAdmin admits requests carrying a bearer token minted for the
// current live session.
func (s *Server) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenString == "" {
			unauthorized(c, "missing token")
			return
		}

		claims, err := s.tokens.Parse(tokenString)
		if err != nil {
			unauthorized(c, "invalid token")
			return
		}

		sess, err := s.sessions.CheckSession(c.Request.Context())
		if err != nil {
			logger.FromContext(c, s.logger).Error("check session", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		if sess == nil || !claims.issuedFor(sess) {
			unauthorized(c, "session expired")
			return
		}

		c.Set(sessionKey, sess)
		c.Next()
	}
}

func adminSession(c *gin.Context) *models.Session {
	if v, ok := c.Get(sessionKey); ok {
		if sess, ok := v.(*models.Session); ok {
			return sess
		}
	}
	return nil
}

type RateLimiter struct {
	ips   map[string]*rate.Limiter
	mu    sync.Mutex
	rate  rate.Limit
	burst int
}

// NewRateLimiter allows perMinute requests per client IP with the given burst.
func NewRateLimiter(perMinute, burst int) *RateLimiter {
	return &RateLimiter{
		ips:   make(map[string]*rate.Limiter),
		rate:  rate.Every(time.Minute / time.Duration(perMinute)),
		burst: burst,
	}
}

func (rl *RateLimiter) GetLimiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if limiter, exists := rl.ips[ip]; exists {
		return limiter
	}

	limiter := rate.NewLimiter(rl.rate, rl.burst)
	rl.ips[ip] = limiter
	return limiter
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.GetLimiter(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
