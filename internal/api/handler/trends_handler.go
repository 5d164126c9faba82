package handler

import (
	"net/http"

	"github.com/cuongbtq/socialtrend-automation/internal/api/dto"
	"github.com/cuongbtq/socialtrend-automation/internal/service"
	"github.com/gin-gonic/gin"
)

// FetchTrends handles POST /api/trends/fetch
func (h *Handler) FetchTrends(c *gin.Context) {
	var req dto.FetchTrendsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBindError(c, err)
		return
	}

	report, err := h.trends.Fetch(c.Request.Context(), service.TrendsRequest{
		Platform:  req.Platform,
		Keywords:  req.Keywords,
		Timeframe: req.Timeframe,
	})
	if err != nil {
		h.respondError(c, err, "Trends fetch error")
		return
	}

	c.JSON(http.StatusOK, dto.TrendsResponse{Success: true, Data: report})
}
