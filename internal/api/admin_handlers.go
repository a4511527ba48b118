package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/safar/go-storefront/internal/models"
	"github.com/safar/go-storefront/internal/store"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	Token     string           `json:"token"`
	User      models.AdminUser `json:"user"`
	ExpiresAt time.Time        `json:"expiresAt"`
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid payload")
		return
	}

	sess, err := s.sessions.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		s.respondError(c, err)
		return
	}

	token, err := s.tokens.Issue(sess)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, loginResponse{Token: token, User: sess.User, ExpiresAt: sess.ExpiresAt})
}

func (s *Server) logout(c *gin.Context) {
	if err := s.sessions.Logout(c.Request.Context()); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) currentSession(c *gin.Context) {
	sess := adminSession(c)
	c.JSON(http.StatusOK, gin.H{
		"user":      sess.User,
		"expiresAt": sess.ExpiresAt,
	})
}

type activityRequest struct {
	Signal string `json:"signal" binding:"required"`
}

func (s *Server) recordActivity(c *gin.Context) {
	var req activityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid payload")
		return
	}
	c.JSON(http.StatusOK, gin.H{"reset": s.sessions.Touch(req.Signal)})
}

func (s *Server) listOrders(c *gin.Context) {
	page, err := store.ListOrdersCursor(c.Request.Context(), s.kv,
		c.Query("status"), c.Query("cursor"), queryInt(c, "limit", store.DefaultPageSize))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (s *Server) getOrder(c *gin.Context) {
	order, err := store.GetOrder(c.Request.Context(), s.kv, c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (s *Server) updateOrderStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid payload")
		return
	}

	order, err := store.UpdateOrderStatus(c.Request.Context(), s.kv, c.Param("id"), req.Status)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (s *Server) replaceProducts(c *gin.Context) {
	var products []models.Product
	if err := c.ShouldBindJSON(&products); err != nil {
		badRequest(c, "invalid payload")
		return
	}

	if err := store.ReplaceProducts(c.Request.Context(), s.kv, products); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(products)})
}

func (s *Server) metrics(c *gin.Context) {
	metrics, err := store.SummarizeOrders(c.Request.Context(), s.kv)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, metrics)
}
