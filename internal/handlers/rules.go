package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kosarica/booking-calculator/internal/rules"
)

// ListRulesResponse lists registered rules in application order.
type ListRulesResponse struct {
	Rules []*rules.Rule `json:"rules"`
	Total int           `json:"total"`
}

// ListRules returns every registered rule
// @Summary List pricing rules
// @Tags rules
// @Produce json
// @Success 200 {object} ListRulesResponse
// @Router /internal/rules [get]
func ListRules(c *gin.Context) {
	if notReady(c) {
		return
	}
	list := quotes.Rules().GetRules()
	c.JSON(http.StatusOK, ListRulesResponse{Rules: list, Total: len(list)})
}

// CreateRule registers a rule
// @Summary Create pricing rule
// @Description A missing id is generated; a zero priority becomes 50
// @Tags rules
// @Accept json
// @Produce json
// @Param rule body rules.Rule true "Rule definition"
// @Success 201 {object} rules.Rule
// @Failure 400 {object} ErrorResponse "Invalid rule"
// @Router /internal/rules [post]
func CreateRule(c *gin.Context) {
	if notReady(c) {
		return
	}
	var rule rules.Rule
	if err := c.ShouldBindJSON(&rule); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	id, err := quotes.Rules().AddRule(rule)
	if err != nil {
		writeError(c, err)
		return
	}
	created, err := quotes.Rules().GetRule(id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// GetRule returns one rule
// @Summary Get pricing rule
// @Tags rules
// @Produce json
// @Param id path string true "Rule ID"
// @Success 200 {object} rules.Rule
// @Failure 404 {object} ErrorResponse "Unknown rule"
// @Router /internal/rules/{id} [get]
func GetRule(c *gin.Context) {
	if notReady(c) {
		return
	}
	rule, err := quotes.Rules().GetRule(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rule)
}

// UpdateRule replaces a rule's definition, keeping its id
// @Summary Update pricing rule
// @Tags rules
// @Accept json
// @Produce json
// @Param id path string true "Rule ID"
// @Param rule body rules.Rule true "Rule definition"
// @Success 200 {object} rules.Rule
// @Failure 400 {object} ErrorResponse "Invalid rule"
// @Failure 404 {object} ErrorResponse "Unknown rule"
// @Router /internal/rules/{id} [put]
func UpdateRule(c *gin.Context) {
	if notReady(c) {
		return
	}
	var body rules.Rule
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	updated, err := quotes.Rules().UpdateRule(c.Param("id"), func(r *rules.Rule) error {
		*r = body
		return nil
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteRule removes a rule
// @Summary Delete pricing rule
// @Tags rules
// @Param id path string true "Rule ID"
// @Success 204
// @Failure 404 {object} ErrorResponse "Unknown rule"
// @Router /internal/rules/{id} [delete]
func DeleteRule(c *gin.Context) {
	if notReady(c) {
		return
	}
	if err := quotes.Rules().RemoveRule(c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// EnableRule turns a rule on
// POST /internal/rules/:id/enable
func EnableRule(c *gin.Context) {
	toggleRule(c, true)
}

// DisableRule turns a rule off without removing it
// POST /internal/rules/:id/disable
func DisableRule(c *gin.Context) {
	toggleRule(c, false)
}

func toggleRule(c *gin.Context, enabled bool) {
	if notReady(c) {
		return
	}
	id := c.Param("id")
	var err error
	if enabled {
		err = quotes.Rules().EnableRule(id)
	} else {
		err = quotes.Rules().DisableRule(id)
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "enabled": enabled})
}

// RuleHistory returns recent rule passes, oldest first
// @Summary Rule execution history
// @Tags rules
// @Produce json
// @Success 200 {array} rules.HistoryEntry
// @Router /internal/rules/history [get]
func RuleHistory(c *gin.Context) {
	if notReady(c) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": quotes.Rules().GetExecutionHistory()})
}

// ClearRuleHistory drops the execution history
// DELETE /internal/rules/history
func ClearRuleHistory(c *gin.Context) {
	if notReady(c) {
		return
	}
	quotes.Rules().ClearHistory()
	c.Status(http.StatusNoContent)
}

// RuleStats summarises the registry
// @Summary Rule statistics
// @Tags rules
// @Produce json
// @Success 200 {object} rules.Statistics
// @Router /internal/rules/stats [get]
func RuleStats(c *gin.Context) {
	if notReady(c) {
		return
	}
	c.JSON(http.StatusOK, quotes.Rules().Statistics())
}
