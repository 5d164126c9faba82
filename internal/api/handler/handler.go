package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/cuongbtq/socialtrend-automation/internal/api/dto"
	"github.com/cuongbtq/socialtrend-automation/internal/callback"
	"github.com/cuongbtq/socialtrend-automation/internal/caption"
	"github.com/cuongbtq/socialtrend-automation/internal/platform"
	"github.com/cuongbtq/socialtrend-automation/internal/service"
	"github.com/cuongbtq/socialtrend-automation/internal/tasks"
	"github.com/gin-gonic/gin"
)

// Uploader publishes content inline and knows the supported platforms
type Uploader interface {
	Supports(platform string) bool
	Upload(ctx context.Context, req service.UploadRequest) (*service.UploadResult, error)
}

// TrendFetcher looks up trending topics
type TrendFetcher interface {
	Fetch(ctx context.Context, req service.TrendsRequest) (*platform.TrendReport, error)
}

// CaptionGenerator composes captions
type CaptionGenerator interface {
	Generate(ctx context.Context, req caption.Request) (*caption.Result, error)
}

// Enqueuer hands work to the worker service
type Enqueuer interface {
	Enqueue(ctx context.Context, task string, args any) (*tasks.Job, error)
}

// ResultNotifier reports upload results to a webhook
type ResultNotifier interface {
	NotifyResult(ctx context.Context, url string, payload callback.ResultPayload)
}

// Authenticator exchanges credentials for tokens and validates them
type Authenticator interface {
	Login(username, password string) (string, error)
	ValidateToken(token string) (string, error)
}

// HealthChecker reports whether a backing store is usable
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// ConnectionChecker reports whether the broker connection is up
type ConnectionChecker interface {
	IsConnected() bool
}

// Dependencies holds all dependencies needed by handlers. Database is nil
// when PostgreSQL is disabled.
type Dependencies struct {
	Logger   *slog.Logger
	AppName  string
	Version  string
	Uploads  Uploader
	Trends   TrendFetcher
	Captions CaptionGenerator
	Enqueuer Enqueuer
	Notifier ResultNotifier
	Auth     Authenticator
	Broker   ConnectionChecker
	Database HealthChecker
}

// Handler serves the HTTP API
type Handler struct {
	logger   *slog.Logger
	appName  string
	version  string
	uploads  Uploader
	trends   TrendFetcher
	captions CaptionGenerator
	enqueuer Enqueuer
	notifier ResultNotifier
	auth     Authenticator
	broker   ConnectionChecker
	database HealthChecker
}

// NewHandler creates a new Handler instance
func NewHandler(deps *Dependencies) *Handler {
	return &Handler{
		logger:   deps.Logger,
		appName:  deps.AppName,
		version:  deps.Version,
		uploads:  deps.Uploads,
		trends:   deps.Trends,
		captions: deps.Captions,
		enqueuer: deps.Enqueuer,
		notifier: deps.Notifier,
		auth:     deps.Auth,
		broker:   deps.Broker,
		database: deps.Database,
	}
}

// respondError maps validation errors to 400 and hides everything else
// behind a logged 500
func (h *Handler) respondError(c *gin.Context, err error, msg string) {
	if service.IsValidation(err) {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Detail: err.Error()})
		return
	}

	h.logger.Error(msg,
		slog.String("path", c.FullPath()),
		slog.String("error", err.Error()),
	)
	c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Detail: "Internal server error"})
}

func (h *Handler) respondBindError(c *gin.Context, err error) {
	h.logger.Warn("Invalid request body",
		slog.String("path", c.FullPath()),
		slog.String("error", err.Error()),
	)
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{Detail: "Invalid request body: " + err.Error()})
}
