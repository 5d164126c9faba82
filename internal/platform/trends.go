package platform

import (
	"context"
)

const (
	Google  = "google"
	Reddit  = "reddit"
	Twitter = "twitter"
)

// GoogleTrends reads Google Trends interest data (placeholder)
type GoogleTrends struct{}

func (GoogleTrends) Name() string { return Google }

func (GoogleTrends) Fetch(ctx context.Context, query TrendQuery) (*TrendReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, &AdapterError{Platform: Google, Op: "fetch trends", Err: err}
	}

	return &TrendReport{
		Platform: Google,
		Trends: []Trend{
			{Keyword: "AI", Score: 95},
			{Keyword: "Machine Learning", Score: 87},
		},
		Timeframe: query.Timeframe,
	}, nil
}

// RedditTrends reads hot subreddits (placeholder)
type RedditTrends struct{}

func (RedditTrends) Name() string { return Reddit }

func (RedditTrends) Fetch(ctx context.Context, query TrendQuery) (*TrendReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, &AdapterError{Platform: Reddit, Op: "fetch trends", Err: err}
	}

	return &TrendReport{
		Platform: Reddit,
		Trends: []Trend{
			{Subreddit: "technology", Score: 12345},
			{Subreddit: "programming", Score: 9876},
		},
	}, nil
}

// TwitterTrends reads trending hashtags (placeholder)
type TwitterTrends struct{}

func (TwitterTrends) Name() string { return Twitter }

func (TwitterTrends) Fetch(ctx context.Context, query TrendQuery) (*TrendReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, &AdapterError{Platform: Twitter, Op: "fetch trends", Err: err}
	}

	return &TrendReport{
		Platform: Twitter,
		Trends: []Trend{
			{Hashtag: "#AI", TweetCount: 50000},
			{Hashtag: "#Tech", TweetCount: 35000},
		},
	}, nil
}

// DefaultTrendSources returns every supported trend source
func DefaultTrendSources() []TrendSource {
	return []TrendSource{GoogleTrends{}, RedditTrends{}, TwitterTrends{}}
}
