package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/safar/go-storefront/internal/cart"
	"github.com/safar/go-storefront/internal/logger"
	"github.com/safar/go-storefront/internal/models"
	"github.com/safar/go-storefront/internal/store"
	"go.uber.org/zap"
)

type cartView struct {
	CartID string            `json:"cartId"`
	Items  []models.LineItem `json:"items"`
	Totals models.CartTotals `json:"totals"`
}

func (s *Server) renderCart(c *gin.Context, status int, items []models.LineItem) {
	totals, err := cart.ComputeTotals(items, s.pricing)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(status, cartView{CartID: cartID(c), Items: items, Totals: totals.Rounded()})
}

// discardCorruptCart drops a cart that can no longer be decoded so the
// shopper starts over with an empty one.
func (s *Server) discardCorruptCart(c *gin.Context, cause error) error {
	logger.FromContext(c, s.logger).Warn("discarding unreadable cart",
		zap.String("cart_id", cartID(c)), zap.Error(cause))
	return store.ClearCart(c.Request.Context(), s.kv, cartID(c))
}

// editCart applies fn to the caller's cart and renders the result. An
// unreadable cart is discarded and the edit applied to an empty one.
func (s *Server) editCart(c *gin.Context, fn func([]models.LineItem) ([]models.LineItem, error)) {
	ctx := c.Request.Context()
	items, err := store.UpdateCart(ctx, s.kv, cartID(c), s.maxQuantity, fn)
	if errors.Is(err, store.ErrCorruptCart) {
		if err := s.discardCorruptCart(c, err); err != nil {
			s.respondError(c, err)
			return
		}
		items, err = store.UpdateCart(ctx, s.kv, cartID(c), s.maxQuantity, fn)
	}
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.renderCart(c, http.StatusOK, items)
}

func (s *Server) getCart(c *gin.Context) {
	items, err := store.LoadCart(c.Request.Context(), s.kv, cartID(c), s.maxQuantity)
	if errors.Is(err, store.ErrCorruptCart) {
		if err := s.discardCorruptCart(c, err); err != nil {
			s.respondError(c, err)
			return
		}
		items, err = []models.LineItem{}, nil
	}
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.renderCart(c, http.StatusOK, items)
}

type addItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity"`
}

func (s *Server) addCartItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid payload")
		return
	}

	product, err := store.GetProduct(c.Request.Context(), s.kv, req.ProductID)
	if err != nil {
		s.respondError(c, err)
		return
	}

	item := product.LineItem()
	if req.Quantity != 0 {
		item.Quantity = req.Quantity
	}
	if item.Quantity < 1 {
		badRequest(c, "quantity must be at least 1")
		return
	}

	s.editCart(c, func(items []models.LineItem) ([]models.LineItem, error) {
		return cart.AddItem(items, item, s.maxQuantity)
	})
}

type quantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// updateCartItem sets the quantity of a line; a quantity below one removes
// the line.
func (s *Server) updateCartItem(c *gin.Context) {
	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid payload")
		return
	}

	id := c.Param("id")
	s.editCart(c, func(items []models.LineItem) ([]models.LineItem, error) {
		return cart.ApplyQuantityChange(items, id, *req.Quantity, s.maxQuantity)
	})
}

func (s *Server) removeCartItem(c *gin.Context) {
	id := c.Param("id")
	s.editCart(c, func(items []models.LineItem) ([]models.LineItem, error) {
		return cart.ApplyQuantityChange(items, id, 0, s.maxQuantity)
	})
}

type bulkRemoveRequest struct {
	IDs []string `json:"ids" binding:"required"`
}

func (s *Server) removeCartItems(c *gin.Context) {
	var req bulkRemoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid payload")
		return
	}

	s.editCart(c, func(items []models.LineItem) ([]models.LineItem, error) {
		return cart.RemoveItems(items, req.IDs...), nil
	})
}

func (s *Server) clearCart(c *gin.Context) {
	if err := store.ClearCart(c.Request.Context(), s.kv, cartID(c)); err != nil {
		s.respondError(c, err)
		return
	}
	s.renderCart(c, http.StatusOK, []models.LineItem{})
}

func (s *Server) placeOrder(c *gin.Context) {
	order, err := s.checkout.PlaceOrder(c.Request.Context(), cartID(c))
	if errors.Is(err, store.ErrCorruptCart) {
		if clearErr := s.discardCorruptCart(c, err); clearErr != nil {
			s.respondError(c, clearErr)
			return
		}
	}
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (s *Server) listSearches(c *gin.Context) {
	searches, err := store.ListRecentSearches(c.Request.Context(), s.kv, cartID(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"searches": searches})
}

type searchRequest struct {
	Query string `json:"query" binding:"required"`
}

func (s *Server) pushSearch(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid payload")
		return
	}

	searches, err := store.PushRecentSearch(c.Request.Context(), s.kv, cartID(c), req.Query)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"searches": searches})
}

func (s *Server) clearSearches(c *gin.Context) {
	if err := store.ClearRecentSearches(c.Request.Context(), s.kv, cartID(c)); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
