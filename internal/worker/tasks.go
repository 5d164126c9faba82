package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cuongbtq/socialtrend-automation/internal/callback"
	"github.com/cuongbtq/socialtrend-automation/internal/caption"
	"github.com/cuongbtq/socialtrend-automation/internal/service"
	"github.com/cuongbtq/socialtrend-automation/internal/tasks"
	"github.com/cuongbtq/socialtrend-automation/internal/worker/domain"
)

// Uploader publishes one post
type Uploader interface {
	Upload(ctx context.Context, req service.UploadRequest) (*service.UploadResult, error)
}

// CaptionGenerator composes a caption
type CaptionGenerator interface {
	Generate(ctx context.Context, req caption.Request) (*caption.Result, error)
}

// Notifier delivers upload outcomes to webhooks
type Notifier interface {
	NotifyResult(ctx context.Context, url string, payload callback.ResultPayload)
	NotifyFailure(ctx context.Context, url string, scheduledPostID int64, cause string)
}

// AIProcessResult is returned by tasks.ai_process
type AIProcessResult struct {
	Status    string          `json:"status"`
	Processed bool            `json:"processed"`
	Result    *caption.Result `json:"result"`
}

// UploadTask builds tasks.auto_upload. Each attempt uploads once and reports
// success to the callback URL; when the policy is exhausted the callback
// receives the failure instead.
func UploadTask(uploader Uploader, notifier Notifier, policy Policy, logger *slog.Logger) TaskSpec {
	return TaskSpec{
		Name:   tasks.AutoUpload,
		Policy: policy,
		Handler: func(ctx context.Context, job *tasks.Job) (any, error) {
			var args tasks.AutoUploadArgs
			if err := job.DecodeArgs(&args); err != nil {
				return nil, err
			}

			logger.Info("Processing scheduled upload",
				slog.String("job_id", job.ID.String()),
				slog.Int64("scheduled_post_id", args.ScheduledPostID),
				slog.String("platform", args.Platform),
				slog.Int("attempt", job.Attempt),
			)

			postID := args.ScheduledPostID
			result, err := uploader.Upload(ctx, service.UploadRequest{
				Platform:        args.Platform,
				Content:         args.Content,
				MediaURLs:       args.MediaURLs,
				ScheduledPostID: &postID,
			})
			if err != nil {
				return nil, err
			}

			if args.CallbackURL != "" {
				notifier.NotifyResult(ctx, args.CallbackURL, callback.ResultPayload{
					ScheduledPostID: &postID,
					Status:          result.Status,
					Message:         result.Message,
					PostURL:         result.PostURL,
				})
			}

			return result, nil
		},
		OnExhausted: func(ctx context.Context, job *tasks.Job, cause error) {
			var args tasks.AutoUploadArgs
			if err := job.DecodeArgs(&args); err != nil || args.CallbackURL == "" {
				return
			}
			notifier.NotifyFailure(ctx, args.CallbackURL, args.ScheduledPostID, cause.Error())
		},
	}
}

// AIProcessTask builds tasks.ai_process, a single-attempt caption run over
// queued content data
func AIProcessTask(generator CaptionGenerator, logger *slog.Logger) TaskSpec {
	return TaskSpec{
		Name:   tasks.AIProcess,
		Policy: Policy{MaxAttempts: 1},
		Handler: func(ctx context.Context, job *tasks.Job) (any, error) {
			var args tasks.AIProcessArgs
			if err := job.DecodeArgs(&args); err != nil {
				return nil, err
			}

			data := args.ContentData
			topic := data.Topic
			if topic == "" {
				topic = data.Content
			}
			if topic == "" {
				return nil, fmt.Errorf("%w: content_data needs topic or content", domain.ErrInvalidPayload)
			}

			logger.Info("Processing AI content",
				slog.String("job_id", job.ID.String()),
				slog.String("topic", topic),
			)

			result, err := generator.Generate(ctx, caption.Request{
				Topic: topic,
				Trend: data.Trend,
				Style: data.Style,
			})
			if err != nil {
				return nil, err
			}

			return &AIProcessResult{
				Status:    "success",
				Processed: true,
				Result:    result,
			}, nil
		},
	}
}
