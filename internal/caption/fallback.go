package caption

import (
	"strings"
)

const (
	callToAction   = "Share your thoughts below! 💭✨"
	maxListTrends  = 3
	maxTrendHashes = 5
)

var genericHashtags = []string{
	"#trending",
	"#viral",
	"#socialmedia",
	"#content",
	"#engagement",
	"#digital",
	"#marketing",
	"#creative",
	"#inspiration",
}

// Fallback composes a caption from templates. The output depends only on the
// request.
func Fallback(req Request) *Result {
	style := req.Style
	if style == "" {
		style = DefaultStyle
	}

	var b strings.Builder
	b.WriteString("Exciting news about " + req.Topic + "!\n\n")
	if len(req.Trend) > 0 {
		b.WriteString("Trending topics: " + strings.Join(firstN(req.Trend, maxListTrends), ", ") + "\n\n")
	}
	b.WriteString(callToAction)

	tags := newTagSet(MaxHashtags)
	if slug := Slugify(req.Topic); slug != "" {
		tags.add(slug)
	}
	for _, tag := range genericHashtags {
		tags.add(tag)
	}
	for _, trend := range firstN(req.Trend, maxTrendHashes) {
		if slug := Slugify(trend); slug != "" {
			tags.add(slug)
		}
	}

	return &Result{
		Caption:         b.String(),
		Hashtags:        tags.list(),
		RecommendedTime: DefaultRecommendedTime,
		Provider:        ProviderFallback,
		Style:           style,
	}
}

// Slugify turns free text into a hashtag: lower case, spaces removed, "#"
// prefixed. Blank input yields "".
func Slugify(text string) string {
	slug := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(text)), " ", "")
	if slug == "" {
		return ""
	}
	return "#" + slug
}
