package platform

import (
	"context"
)

const (
	Instagram = "instagram"
	LinkedIn  = "linkedin"
)

// InstagramPublisher posts through the Instagram Graph API (placeholder)
type InstagramPublisher struct{}

func (InstagramPublisher) Name() string { return Instagram }

func (InstagramPublisher) Publish(ctx context.Context, post Post) (*PublishResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, &AdapterError{Platform: Instagram, Op: "publish", Err: err}
	}

	return &PublishResult{
		Status:  "posted",
		PostURL: "https://instagram.com/p/placeholder",
		Message: "Post uploaded successfully to Instagram",
	}, nil
}

// LinkedInPublisher posts through the LinkedIn v2 API (placeholder)
type LinkedInPublisher struct{}

func (LinkedInPublisher) Name() string { return LinkedIn }

func (LinkedInPublisher) Publish(ctx context.Context, post Post) (*PublishResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, &AdapterError{Platform: LinkedIn, Op: "publish", Err: err}
	}

	return &PublishResult{
		Status:  "posted",
		PostURL: "https://linkedin.com/feed/update/placeholder",
		Message: "Post uploaded successfully to LinkedIn",
	}, nil
}

// DefaultPublishers returns every supported publisher
func DefaultPublishers() []Publisher {
	return []Publisher{InstagramPublisher{}, LinkedInPublisher{}}
}
