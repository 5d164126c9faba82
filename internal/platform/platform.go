// Package platform holds the adapters that talk to social networks and trend
// sources. The current adapters are placeholders returning canned data.
package platform

import (
	"context"
	"fmt"
)

// Post is pre-composed content ready to be published
type Post struct {
	Content   string
	MediaURLs []string
}

// PublishResult is what an adapter reports back after posting
type PublishResult struct {
	Status  string
	PostURL string
	Message string
}

// Publisher posts content to one social network
type Publisher interface {
	Name() string
	Publish(ctx context.Context, post Post) (*PublishResult, error)
}

// TrendQuery narrows a trend lookup
type TrendQuery struct {
	Keywords  []string
	Timeframe string
}

// Trend is one trending item. Which fields are set depends on the source.
type Trend struct {
	Keyword    string `json:"keyword,omitempty"`
	Score      int    `json:"score,omitempty"`
	Subreddit  string `json:"subreddit,omitempty"`
	Hashtag    string `json:"hashtag,omitempty"`
	TweetCount int    `json:"tweet_count,omitempty"`
}

// TrendReport is the normalized result of a trend lookup
type TrendReport struct {
	Platform  string  `json:"platform"`
	Trends    []Trend `json:"trends"`
	Timeframe string  `json:"timeframe,omitempty"`
}

// TrendSource fetches trending topics from one platform
type TrendSource interface {
	Name() string
	Fetch(ctx context.Context, query TrendQuery) (*TrendReport, error)
}

// AdapterError reports a failed call to an external platform
type AdapterError struct {
	Platform string
	Op       string
	Err      error
}

func (e *AdapterError) Error() string {
	return fmt.Sprintf("%s %s failed: %v", e.Platform, e.Op, e.Err)
}

func (e *AdapterError) Unwrap() error {
	return e.Err
}
