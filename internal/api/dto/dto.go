package dto

import (
	"github.com/cuongbtq/socialtrend-automation/internal/caption"
	"github.com/cuongbtq/socialtrend-automation/internal/platform"
	"github.com/cuongbtq/socialtrend-automation/internal/service"
	"github.com/cuongbtq/socialtrend-automation/internal/tasks"
)

type UploadRequest struct {
	Platform        string   `json:"platform" binding:"required"`
	Content         string   `json:"content" binding:"required"`
	MediaURLs       []string `json:"media_urls"`
	ScheduledPostID *int64   `json:"scheduled_post_id"`
	CallbackURL     string   `json:"callback_url" binding:"omitempty,url"`
}

type UploadResponse struct {
	Success bool                  `json:"success"`
	Message string                `json:"message"`
	Data    *service.UploadResult `json:"data"`
}

// ScheduleUploadRequest queues an upload for the worker. The scheduled post
// id is mandatory so callbacks can be correlated.
type ScheduleUploadRequest struct {
	Platform        string   `json:"platform" binding:"required"`
	Content         string   `json:"content" binding:"required"`
	MediaURLs       []string `json:"media_urls"`
	ScheduledPostID *int64   `json:"scheduled_post_id" binding:"required"`
	CallbackURL     string   `json:"callback_url" binding:"omitempty,url"`
}

type JobAccepted struct {
	JobID string `json:"job_id"`
	Task  string `json:"task"`
}

type JobAcceptedResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    JobAccepted `json:"data"`
}

type FetchTrendsRequest struct {
	Platform  string   `json:"platform" binding:"required"`
	Keywords  []string `json:"keywords"`
	Timeframe string   `json:"timeframe"`
}

type TrendsResponse struct {
	Success bool                  `json:"success"`
	Data    *platform.TrendReport `json:"data"`
}

type GenerateCaptionRequest struct {
	Content          string `json:"content"`
	ImageDescription string `json:"image_description"`
	Platform         string `json:"platform"`
	Style            string `json:"style"`
}

type CaptionResponse struct {
	Success bool            `json:"success"`
	Data    *caption.Result `json:"data"`
}

type AICaptionRequest struct {
	Topic string   `json:"topic" binding:"required"`
	Style string   `json:"style"`
	Trend []string `json:"trend"`
}

type AICaptionResponse struct {
	Caption         string   `json:"caption"`
	Hashtags        []string `json:"hashtags"`
	RecommendedTime string   `json:"recommended_time"`
}

type AIProcessRequest struct {
	ContentData *tasks.ContentData `json:"content_data" binding:"required"`
}

type TokenRequest struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type UserResponse struct {
	Username string `json:"username"`
}

type ErrorResponse struct {
	Detail string `json:"detail"`
}
