package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/safar/go-storefront/internal/catalog"
	"github.com/safar/go-storefront/internal/store"
	"github.com/shopspring/decimal"
)

func parseFilter(c *gin.Context) (catalog.Filter, error) {
	f := catalog.Filter{
		Search:       c.Query("search"),
		Category:     c.Query("category"),
		Brand:        c.Query("brand"),
		Sort:         c.Query("sort"),
		InStock:      c.Query("inStock") == "true",
		FreeShipping: c.Query("freeShipping") == "true",
	}

	if v := c.Query("minPrice"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return f, err
		}
		f.MinPrice = &d
	}
	if v := c.Query("maxPrice"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return f, err
		}
		f.MaxPrice = &d
	}
	if v := c.Query("minRating"); v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return f, err
		}
		f.MinRating = r
	}
	return f, nil
}

func queryInt(c *gin.Context, key string, def int) int {
	if n, err := strconv.Atoi(c.Query(key)); err == nil {
		return n
	}
	return def
}

func (s *Server) listProducts(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		badRequest(c, "invalid filter")
		return
	}

	page, err := store.ListProducts(c.Request.Context(), s.kv, filter,
		queryInt(c, "page", 1), queryInt(c, "pageSize", store.DefaultPageSize))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (s *Server) getProduct(c *gin.Context) {
	product, err := store.GetProduct(c.Request.Context(), s.kv, c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}
