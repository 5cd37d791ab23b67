// Package handlers exposes the quote pipeline and the rules registry over HTTP.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kosarica/booking-calculator/internal/catalog"
	"github.com/kosarica/booking-calculator/internal/pricingerr"
	"github.com/kosarica/booking-calculator/internal/quote"
)

// Global pipeline instances (initialized by the application)
var (
	quotes   *quote.Service
	services *catalog.Catalog
)

// Init wires the handlers to the quote pipeline and the service catalog.
// This should be called during application startup.
func Init(q *quote.Service, c *catalog.Catalog) {
	quotes = q
	services = c
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string         `json:"error"`
	Type    string         `json:"type,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// internalMessage replaces the message of server-side failures.
const internalMessage = "could not calculate price"

// statusFor maps an error kind to an HTTP status.
func statusFor(kind pricingerr.Kind) int {
	switch kind {
	case pricingerr.KindValidationError, pricingerr.KindInvalidInput, pricingerr.KindMissingRequired:
		return http.StatusBadRequest
	case pricingerr.KindOutOfRange:
		return http.StatusUnprocessableEntity
	case pricingerr.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err. Client errors keep their message and details;
// everything else is reported with a generic message.
func writeError(c *gin.Context, err error) {
	kind := pricingerr.KindOf(err)
	status := statusFor(kind)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		c.JSON(status, ErrorResponse{Error: internalMessage, Type: string(kind)})
		return
	}
	resp := ErrorResponse{Error: err.Error(), Type: string(kind)}
	var pe *pricingerr.Error
	if errors.As(err, &pe) {
		resp.Error = pe.Message
		resp.Details = pe.Details
	}
	c.JSON(status, resp)
}

func notReady(c *gin.Context) bool {
	if quotes == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "Pricing pipeline not initialized"})
		return true
	}
	return false
}

// RegisterRoutes mounts every API route on group.
func RegisterRoutes(group gin.IRoutes) {
	group.POST("/quotes", CreateQuote)

	group.POST("/validate/pricing", ValidatePricing)
	group.POST("/validate/customer", ValidateCustomer)

	group.GET("/services", ListServices)
	group.GET("/services/:id", GetService)

	group.GET("/rules", ListRules)
	group.POST("/rules", CreateRule)
	group.GET("/rules/history", RuleHistory)
	group.DELETE("/rules/history", ClearRuleHistory)
	group.GET("/rules/stats", RuleStats)
	group.GET("/rules/:id", GetRule)
	group.PUT("/rules/:id", UpdateRule)
	group.DELETE("/rules/:id", DeleteRule)
	group.POST("/rules/:id/enable", EnableRule)
	group.POST("/rules/:id/disable", DisableRule)

	group.GET("/cache", CacheStats)
	group.DELETE("/cache", ClearCache)
}
