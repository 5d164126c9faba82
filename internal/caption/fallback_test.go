package caption

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallback_Deterministic(t *testing.T) {
	req := Request{Topic: "Cloud Native", Trend: []string{"kubernetes", "service mesh"}, Style: "casual"}

	first := Fallback(req)
	second := Fallback(req)

	assert.Equal(t, first, second)
}

func TestFallback_Caption(t *testing.T) {
	res := Fallback(Request{Topic: "AI", Trend: []string{"llm", "agents", "rag", "evals"}})

	assert.Equal(t,
		"Exciting news about AI!\n\nTrending topics: llm, agents, rag\n\nShare your thoughts below! 💭✨",
		res.Caption,
	)
	assert.Equal(t, DefaultStyle, res.Style)
	assert.Equal(t, ProviderFallback, res.Provider)
	assert.Empty(t, res.Model)
}

func TestFallback_NoTrends(t *testing.T) {
	res := Fallback(Request{Topic: "AI"})

	assert.Equal(t, "Exciting news about AI!\n\nShare your thoughts below! 💭✨", res.Caption)
	assert.Equal(t, "#ai", res.Hashtags[0])
	assert.Len(t, res.Hashtags, 1+len(genericHashtags))
}

func TestFallback_HashtagsUniqueAndCapped(t *testing.T) {
	res := Fallback(Request{
		Topic: "Viral",
		Trend: []string{"one", "two", "three", "four", "five", "six", "seven"},
	})

	require.LessOrEqual(t, len(res.Hashtags), MaxHashtags)

	seen := map[string]bool{}
	for _, tag := range res.Hashtags {
		assert.False(t, seen[tag], "duplicate %s", tag)
		seen[tag] = true
	}

	assert.Equal(t, "#viral", res.Hashtags[0])
	assert.Contains(t, res.Hashtags, "#five")
	assert.NotContains(t, res.Hashtags, "#six")
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "#machinelearning", Slugify("Machine Learning"))
	assert.Equal(t, "#ai", Slugify("  AI "))
	assert.Equal(t, "", Slugify("   "))
}
