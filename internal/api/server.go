// Package api exposes the storefront over HTTP.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/safar/go-storefront/internal/checkout"
	"github.com/safar/go-storefront/internal/logger"
	"github.com/safar/go-storefront/internal/models"
	"github.com/safar/go-storefront/internal/session"
	"github.com/safar/go-storefront/internal/storage"
	"go.uber.org/zap"
)

type Deps struct {
	KV          storage.KV
	Sessions    *session.Manager
	Checkout    *checkout.Service
	Tokens      *TokenIssuer
	Pricing     models.PricingConfig
	MaxQuantity int
	// LoginLimiter throttles POST /admin/login; nil disables throttling.
	LoginLimiter *RateLimiter
	Logger       *zap.Logger
}

type Server struct {
	kv           storage.KV
	sessions     *session.Manager
	checkout     *checkout.Service
	tokens       *TokenIssuer
	pricing      models.PricingConfig
	maxQuantity  int
	loginLimiter *RateLimiter
	logger       *zap.Logger
}

func NewServer(d Deps) *Server {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.MaxQuantity <= 0 {
		d.MaxQuantity = models.DefaultMaxQuantity
	}
	return &Server{
		kv:           d.KV,
		sessions:     d.Sessions,
		checkout:     d.Checkout,
		tokens:       d.Tokens,
		pricing:      d.Pricing,
		maxQuantity:  d.MaxQuantity,
		loginLimiter: d.LoginLimiter,
		logger:       d.Logger,
	}
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), logger.RequestLogger(s.logger))
	s.RegisterRoutes(r)
	return r
}

func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/products", s.listProducts)
	r.GET("/products/:id", s.getProduct)

	shop := r.Group("/", CartScope())
	{
		shop.GET("/cart", s.getCart)
		shop.POST("/cart/items", s.addCartItem)
		shop.PATCH("/cart/items/:id", s.updateCartItem)
		shop.DELETE("/cart/items/:id", s.removeCartItem)
		shop.POST("/cart/remove", s.removeCartItems)
		shop.DELETE("/cart", s.clearCart)
		shop.POST("/checkout", s.placeOrder)

		shop.GET("/searches", s.listSearches)
		shop.POST("/searches", s.pushSearch)
		shop.DELETE("/searches", s.clearSearches)
	}

	login := []gin.HandlerFunc{s.login}
	if s.loginLimiter != nil {
		login = append([]gin.HandlerFunc{s.loginLimiter.Middleware()}, login...)
	}
	r.POST("/admin/login", login...)

	admin := r.Group("/admin", s.RequireAdmin())
	{
		admin.POST("/logout", s.logout)
		admin.GET("/session", s.currentSession)
		admin.POST("/activity", s.recordActivity)
		admin.GET("/orders", s.listOrders)
		admin.GET("/orders/:id", s.getOrder)
		admin.PATCH("/orders/:id/status", s.updateOrderStatus)
		admin.PUT("/products", s.replaceProducts)
		admin.GET("/metrics", s.metrics)
	}
}
