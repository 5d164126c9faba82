package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/cuongbtq/socialtrend-automation/internal/api/dto"
	"github.com/cuongbtq/socialtrend-automation/internal/callback"
	"github.com/cuongbtq/socialtrend-automation/internal/service"
	"github.com/cuongbtq/socialtrend-automation/internal/tasks"
	"github.com/gin-gonic/gin"
)

// Upload handles POST /api/upload
// Publishes the content right away; a callback, when requested, is sent in
// the background after the response.
func (h *Handler) Upload(c *gin.Context) {
	var req dto.UploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBindError(c, err)
		return
	}

	h.logger.Info("Upload request received",
		slog.String("platform", req.Platform),
		slog.Any("scheduled_post_id", req.ScheduledPostID),
	)

	result, err := h.uploads.Upload(c.Request.Context(), service.UploadRequest{
		Platform:        req.Platform,
		Content:         req.Content,
		MediaURLs:       req.MediaURLs,
		ScheduledPostID: req.ScheduledPostID,
	})
	if err != nil {
		h.respondError(c, err, "Upload endpoint error")
		return
	}

	if req.CallbackURL != "" {
		payload := callback.ResultPayload{
			ScheduledPostID: req.ScheduledPostID,
			Status:          result.Status,
			Message:         result.Message,
			PostURL:         result.PostURL,
		}
		go h.notifier.NotifyResult(context.Background(), req.CallbackURL, payload)
	}

	c.JSON(http.StatusOK, dto.UploadResponse{
		Success: true,
		Message: "Upload initiated successfully",
		Data:    result,
	})
}

// ScheduleUpload handles POST /api/upload/schedule
// Queues the upload for the worker, which retries failed attempts
func (h *Handler) ScheduleUpload(c *gin.Context) {
	var req dto.ScheduleUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBindError(c, err)
		return
	}

	if !h.uploads.Supports(req.Platform) {
		h.respondError(c, service.UnsupportedPlatform(req.Platform), "Schedule upload error")
		return
	}

	job, err := h.enqueuer.Enqueue(c.Request.Context(), tasks.AutoUpload, tasks.AutoUploadArgs{
		ScheduledPostID: *req.ScheduledPostID,
		Platform:        req.Platform,
		Content:         req.Content,
		MediaURLs:       req.MediaURLs,
		CallbackURL:     req.CallbackURL,
	})
	if err != nil {
		h.respondError(c, err, "Schedule upload error")
		return
	}

	c.JSON(http.StatusAccepted, dto.JobAcceptedResponse{
		Success: true,
		Message: "Upload scheduled",
		Data:    dto.JobAccepted{JobID: job.ID.String(), Task: job.Task},
	})
}
