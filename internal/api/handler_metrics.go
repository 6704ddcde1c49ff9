package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// GetAverageWait handles GET /api/metrics/average-wait. "No data" is a
// distinct answer from a zero-second wait.
func (h *Handler) GetAverageWait(c *gin.Context) {
	avg, ok, err := h.store.AverageWaitSeconds(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute average wait"})
		return
	}
	if !ok {
		c.JSON(http.StatusOK, gin.H{"status": "no_data"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "average_wait_seconds": avg})
}

// GetDailyReport handles GET /api/metrics/daily?days=N (default 30).
func (h *Handler) GetDailyReport(c *gin.Context) {
	days := queryInt(c, "days", 30)
	report, err := h.store.DailyReport(c.Request.Context(), days)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build daily report"})
		return
	}
	c.JSON(http.StatusOK, report)
}

// GetTotals handles GET /api/metrics/totals.
func (h *Handler) GetTotals(c *gin.Context) {
	totals, err := h.store.AggregateTotals(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to aggregate totals"})
		return
	}
	c.JSON(http.StatusOK, totals)
}

// GetTopServices handles GET /api/metrics/top-services?n=N (default 3).
func (h *Handler) GetTopServices(c *gin.Context) {
	n := queryInt(c, "n", 3)
	usages, err := h.store.TopServices(c.Request.Context(), n)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to rank services"})
		return
	}
	c.JSON(http.StatusOK, usages)
}

// GetRecentFinished handles GET /api/metrics/recent?limit=N (default 50).
func (h *Handler) GetRecentFinished(c *gin.Context) {
	limit := queryInt(c, "limit", 50)
	entries, err := h.store.RecentFinished(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list recent events"})
		return
	}
	c.JSON(http.StatusOK, entries)
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
