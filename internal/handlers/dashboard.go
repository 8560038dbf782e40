package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"dental-lab-backend/internal/models"
	"dental-lab-backend/internal/supabase"
)

type DashboardHandler struct {
	dbClient *supabase.DatabaseClient
}

func NewDashboardHandler(dbClient *supabase.DatabaseClient) *DashboardHandler {
	return &DashboardHandler{dbClient: dbClient}
}

// Summary godoc
// @Summary     Practitioner dashboard summary
// @Description Order counts plus the five most recent orders.
// @Tags        dashboard
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.DashboardSummaryResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /dashboard/summary [get]
func (h *DashboardHandler) Summary(c *gin.Context) {
	if h.dbClient == nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "database not available"})
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	var summary models.DashboardSummaryResponse
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		n, err := h.dbClient.CountActiveOrders(ctx, userID)
		summary.ActiveOrders = n
		return err
	})
	g.Go(func() error {
		n, err := h.dbClient.CountCompletedSince(ctx, userID, monthStart)
		summary.CompletedThisMonth = n
		return err
	})
	g.Go(func() error {
		n, err := h.dbClient.CountDueAfter(ctx, userID, now)
		summary.UpcomingDeliveries = n
		return err
	})
	g.Go(func() error {
		recent, err := h.dbClient.ListRecentOrders(ctx, userID, 5)
		if err != nil {
			return err
		}
		summary.RecentOrders = summarize(recent)
		return nil
	})
	if err := g.Wait(); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to build summary", Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, summary)
}
