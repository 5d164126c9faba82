package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cuongbtq/socialtrend-automation/internal/platform"
)

// DefaultTimeframe is used when a trend request names none
const DefaultTimeframe = "today 12-m"

// TrendsRequest selects a trend source and narrows the lookup
type TrendsRequest struct {
	Platform  string
	Keywords  []string
	Timeframe string
}

// TrendsService routes trend lookups to the matching source
type TrendsService struct {
	sources map[string]platform.TrendSource
	logger  *slog.Logger
}

// NewTrendsService creates a TrendsService over the given sources
func NewTrendsService(logger *slog.Logger, sources ...platform.TrendSource) *TrendsService {
	byName := make(map[string]platform.TrendSource, len(sources))
	for _, s := range sources {
		byName[strings.ToLower(s.Name())] = s
	}

	return &TrendsService{
		sources: byName,
		logger:  logger,
	}
}

// Fetch returns the trends reported by the requested platform
func (s *TrendsService) Fetch(ctx context.Context, req TrendsRequest) (*platform.TrendReport, error) {
	source, ok := s.sources[strings.ToLower(req.Platform)]
	if !ok {
		return nil, UnsupportedPlatform(req.Platform)
	}

	timeframe := req.Timeframe
	if timeframe == "" {
		timeframe = DefaultTimeframe
	}

	s.logger.Info("Fetching trends",
		slog.String("platform", req.Platform),
		slog.Any("keywords", req.Keywords),
	)

	report, err := source.Fetch(ctx, platform.TrendQuery{
		Keywords:  req.Keywords,
		Timeframe: timeframe,
	})
	if err != nil {
		s.logger.Error("Failed to fetch trends",
			slog.String("platform", req.Platform),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("fetch %s trends: %w", req.Platform, err)
	}

	s.logger.Info("Trends fetched successfully",
		slog.String("platform", req.Platform),
		slog.Int("trends_count", len(report.Trends)),
	)

	return report, nil
}
