package handler

import (
	"log/slog"
	"net/http"

	"github.com/cuongbtq/socialtrend-automation/internal/api/dto"
	"github.com/cuongbtq/socialtrend-automation/internal/caption"
	"github.com/cuongbtq/socialtrend-automation/internal/tasks"
	"github.com/gin-gonic/gin"
)

const defaultCaptionPlatform = "instagram"

// GenerateCaption handles POST /api/generate_caption
// Returns the full caption result, including provider and model
func (h *Handler) GenerateCaption(c *gin.Context) {
	var req dto.GenerateCaptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBindError(c, err)
		return
	}

	if req.Content == "" && req.ImageDescription == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Detail: "content or image_description is required"})
		return
	}

	platformName := req.Platform
	if platformName == "" {
		platformName = defaultCaptionPlatform
	}

	h.logger.Info("Caption generation request",
		slog.String("platform", platformName),
		slog.String("style", req.Style),
	)

	result, err := h.captions.Generate(c.Request.Context(), caption.Request{
		Topic:            req.Content,
		Style:            req.Style,
		Platform:         platformName,
		ImageDescription: req.ImageDescription,
	})
	if err != nil {
		h.respondError(c, err, "Caption generation error")
		return
	}

	c.JSON(http.StatusOK, dto.CaptionResponse{Success: true, Data: result})
}

// AICaption handles POST /api/ai/caption
func (h *Handler) AICaption(c *gin.Context) {
	var req dto.AICaptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBindError(c, err)
		return
	}

	h.logger.Info("AI caption generation request",
		slog.String("topic", req.Topic),
		slog.String("style", req.Style),
		slog.Int("trend_count", len(req.Trend)),
	)

	result, err := h.captions.Generate(c.Request.Context(), caption.Request{
		Topic: req.Topic,
		Trend: req.Trend,
		Style: req.Style,
	})
	if err != nil {
		h.respondError(c, err, "AI caption generation error")
		return
	}

	c.JSON(http.StatusOK, dto.AICaptionResponse{
		Caption:         result.Caption,
		Hashtags:        result.Hashtags,
		RecommendedTime: result.RecommendedTime,
	})
}

// AIProcess handles POST /api/ai/process
// Queues caption generation over content data for the worker
func (h *Handler) AIProcess(c *gin.Context) {
	var req dto.AIProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBindError(c, err)
		return
	}

	if req.ContentData.Topic == "" && req.ContentData.Content == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Detail: "content_data needs topic or content"})
		return
	}

	job, err := h.enqueuer.Enqueue(c.Request.Context(), tasks.AIProcess, tasks.AIProcessArgs{
		ContentData: *req.ContentData,
	})
	if err != nil {
		h.respondError(c, err, "AI process enqueue error")
		return
	}

	c.JSON(http.StatusAccepted, dto.JobAcceptedResponse{
		Success: true,
		Message: "AI processing queued",
		Data:    dto.JobAccepted{JobID: job.ID.String(), Task: job.Task},
	})
}
