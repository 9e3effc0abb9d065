package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"cashflow/internal/services"
)

// DashboardHandler serves the dashboard overview.
type DashboardHandler struct {
	dashboardService services.DashboardServicer
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboardService services.DashboardServicer) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// GetSummary returns this month's totals, wallets and recent transactions
// @Summary     Dashboard summary
// @Description Income and expense totals for the current month, wallets with the total balance and the five latest transactions
// @Tags        dashboard
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.DashboardSummary "Dashboard summary"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /dashboard [get]
func (h *DashboardHandler) GetSummary(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.dashboardService.Summary(c.Request.Context(), actor, time.Now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"dashboard": summary})
}
