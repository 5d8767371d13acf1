package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *api) listOrders(c *gin.Context) {
	list, err := h.Checkout.History().List(c.Request.Context(), sessionFrom(c).ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": list})
}

func (h *api) getOrder(c *gin.Context) {
	rec, err := h.Checkout.History().Find(c.Request.Context(), sessionFrom(c).ID, c.Param("orderID"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}
