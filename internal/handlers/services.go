package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kosarica/booking-calculator/internal/pricing"
)

// ListServicesResponse lists the catalog.
type ListServicesResponse struct {
	Services []*pricing.Service `json:"services"`
	Total    int                `json:"total"`
}

// ListServices returns every service in the catalog
// @Summary List services
// @Tags services
// @Produce json
// @Success 200 {object} ListServicesResponse
// @Router /internal/services [get]
func ListServices(c *gin.Context) {
	if services == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "Catalog not loaded"})
		return
	}
	list := services.Services()
	c.JSON(http.StatusOK, ListServicesResponse{Services: list, Total: len(list)})
}

// GetService returns one service definition
// @Summary Get service
// @Tags services
// @Produce json
// @Param id path string true "Service ID"
// @Success 200 {object} pricing.Service
// @Failure 404 {object} ErrorResponse "Unknown service"
// @Router /internal/services/{id} [get]
func GetService(c *gin.Context) {
	if services == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "Catalog not loaded"})
		return
	}
	svc, err := services.Service(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, svc)
}
