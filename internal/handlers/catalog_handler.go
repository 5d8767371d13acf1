package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

func (h *api) listProducts(c *gin.Context) {
	products := h.Catalog.List()
	if category := c.Query("category"); category != "" {
		products = h.Catalog.ByCategory(category)
	}
	c.JSON(http.StatusOK, gin.H{
		"products":   products,
		"categories": h.Catalog.Categories(),
	})
}

func (h *api) getProduct(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_product_id"})
		return
	}
	p, err := h.Catalog.Get(id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
