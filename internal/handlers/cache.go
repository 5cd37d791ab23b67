package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CacheStats reports the price result cache state
// @Summary Price cache statistics
// @Tags cache
// @Produce json
// @Success 200 {object} pricing.CacheStats
// @Router /internal/cache [get]
func CacheStats(c *gin.Context) {
	if notReady(c) {
		return
	}
	c.JSON(http.StatusOK, quotes.Pricing().CacheStats())
}

// ClearCache drops every cached price result
// @Summary Clear price cache
// @Tags cache
// @Produce json
// @Success 200 {object} map[string]string
// @Router /internal/cache [delete]
func ClearCache(c *gin.Context) {
	if notReady(c) {
		return
	}
	quotes.Pricing().ClearCache()
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Price cache cleared",
	})
}
