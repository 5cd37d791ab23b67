package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status   string `json:"status"`
	Catalog  string `json:"catalog"`
	Services int    `json:"services"`
	Rules    int    `json:"rules"`
}

// HealthCheck handles the health check endpoint
func HealthCheck(c *gin.Context) {
	if quotes == nil {
		c.JSON(http.StatusServiceUnavailable, HealthResponse{Status: "starting", Catalog: "not loaded"})
		return
	}

	response := HealthResponse{
		Status:  "ok",
		Catalog: "not loaded",
		Rules:   len(quotes.Rules().GetRules()),
	}
	if services != nil {
		response.Catalog = "loaded"
		response.Services = len(services.Services())
	}

	c.JSON(http.StatusOK, response)
}
