package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kosarica/booking-calculator/internal/pricing"
	"github.com/kosarica/booking-calculator/internal/quote"
)

// ValidatePricingRequest is a pricing input to check without pricing it.
type ValidatePricingRequest struct {
	ServiceID string         `json:"serviceId,omitempty"`
	Input     map[string]any `json:"input" binding:"required"`
}

// ValidatePricing runs the pricing input schema against a record
// @Summary Validate pricing input
// @Description Returns per-field errors and warnings. The service summary is filled in from the catalog when serviceId is given.
// @Tags validation
// @Accept json
// @Produce json
// @Param request body ValidatePricingRequest true "Pricing input"
// @Success 200 {object} validation.ObjectResult
// @Failure 400 {object} ErrorResponse "Malformed body"
// @Failure 404 {object} ErrorResponse "Unknown service"
// @Router /internal/validate/pricing [post]
func ValidatePricing(c *gin.Context) {
	if notReady(c) {
		return
	}
	var req ValidatePricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	var svc *pricing.Service
	if req.ServiceID != "" {
		if services == nil {
			c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "Catalog not loaded"})
			return
		}
		var err error
		if svc, err = services.Service(req.ServiceID); err != nil {
			writeError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, quotes.Validation().ValidatePricingInput(quote.ValidationRecord(req.Input, svc)))
}

// ValidateCustomer runs the customer schema against a record
// @Summary Validate customer details
// @Tags validation
// @Accept json
// @Produce json
// @Param request body map[string]interface{} true "Customer record"
// @Success 200 {object} validation.ObjectResult
// @Failure 400 {object} ErrorResponse "Malformed body"
// @Router /internal/validate/customer [post]
func ValidateCustomer(c *gin.Context) {
	if notReady(c) {
		return
	}
	var record map[string]any
	if err := c.ShouldBindJSON(&record); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, quotes.Validation().ValidateCustomerInfo(record))
}
