package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cuongbtq/socialtrend-automation/internal/platform"
)

// Upload statuses
const (
	UploadStatusPosted = "posted"
	UploadStatusFailed = "failed"
)

// UploadRequest is one post to push to a platform
type UploadRequest struct {
	Platform        string
	Content         string
	MediaURLs       []string
	ScheduledPostID *int64
}

// UploadResult is the outcome of an upload, stamped with request metadata
type UploadResult struct {
	Status          string `json:"status"`
	PostURL         string `json:"post_url,omitempty"`
	Message         string `json:"message,omitempty"`
	Platform        string `json:"platform"`
	ScheduledPostID *int64 `json:"scheduled_post_id"`
}

// UploadService validates the platform and delegates to its publisher. It
// makes a single attempt; retries belong to the worker.
type UploadService struct {
	publishers map[string]platform.Publisher
	logger     *slog.Logger
}

// NewUploadService creates an UploadService over the given publishers
func NewUploadService(logger *slog.Logger, publishers ...platform.Publisher) *UploadService {
	byName := make(map[string]platform.Publisher, len(publishers))
	for _, p := range publishers {
		byName[strings.ToLower(p.Name())] = p
	}

	return &UploadService{
		publishers: byName,
		logger:     logger,
	}
}

// Supports reports whether the platform is on the allow-list
func (s *UploadService) Supports(name string) bool {
	_, ok := s.publishers[strings.ToLower(name)]
	return ok
}

// Upload pushes the content to the requested platform
func (s *UploadService) Upload(ctx context.Context, req UploadRequest) (*UploadResult, error) {
	publisher, ok := s.publishers[strings.ToLower(req.Platform)]
	if !ok {
		return nil, UnsupportedPlatform(req.Platform)
	}

	s.logger.Info("Starting upload",
		slog.String("platform", req.Platform),
		slog.Any("scheduled_post_id", req.ScheduledPostID),
		slog.Bool("has_media", len(req.MediaURLs) > 0),
	)

	mediaURLs := req.MediaURLs
	if mediaURLs == nil {
		mediaURLs = []string{}
	}

	res, err := publisher.Publish(ctx, platform.Post{
		Content:   req.Content,
		MediaURLs: mediaURLs,
	})
	if err != nil {
		s.logger.Error("Upload failed",
			slog.String("platform", req.Platform),
			slog.Any("scheduled_post_id", req.ScheduledPostID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("upload to %s: %w", req.Platform, err)
	}

	s.logger.Info("Upload successful",
		slog.String("platform", req.Platform),
		slog.Any("scheduled_post_id", req.ScheduledPostID),
	)

	return &UploadResult{
		Status:          res.Status,
		PostURL:         res.PostURL,
		Message:         res.Message,
		Platform:        req.Platform,
		ScheduledPostID: req.ScheduledPostID,
	}, nil
}
