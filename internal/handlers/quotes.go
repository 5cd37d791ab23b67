package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kosarica/booking-calculator/internal/quote"
)

// CreateQuote validates, prices and applies rules to a booking request
// @Summary Calculate a quote
// @Description Validates the pricing input (and customer when given), prices it with the service's model and applies the registered rules
// @Tags quotes
// @Accept json
// @Produce json
// @Param request body quote.Request true "Quote request"
// @Success 200 {object} quote.Quote
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 404 {object} ErrorResponse "Unknown service"
// @Failure 422 {object} ErrorResponse "Area outside the service's ranges"
// @Failure 500 {object} ErrorResponse "Could not calculate price"
// @Router /internal/quotes [post]
func CreateQuote(c *gin.Context) {
	if notReady(c) {
		return
	}
	var req quote.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	q, err := quotes.Quote(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}
