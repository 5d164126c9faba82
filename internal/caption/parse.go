package caption

import (
	"regexp"
	"strings"
)

var timePattern = regexp.MustCompile(`(?i)(\d{1,2}):(\d{2})\s?(AM|PM)`)

// FallbackHashtags replaces an empty hashtag list in a provider response
var FallbackHashtags = []string{
	"#socialmedia", "#trending", "#viral",
	"#content", "#engagement", "#digital",
	"#marketing", "#creative", "#inspiration",
	"#community",
}

// Parsed is the structured form of a provider response
type Parsed struct {
	Caption         string
	Hashtags        []string
	RecommendedTime string
}

// ParseResponse splits raw provider text into caption, hashtags and posting
// time. Lines starting with "#" are hashtags; lines mentioning "time" or
// "post" are searched for a time and left out of the caption; the remaining
// non-empty lines, except "Recommended..." ones, form the caption.
func ParseResponse(content string) Parsed {
	content = strings.TrimSpace(content)

	var (
		captionLines []string
		hashtags     = newTagSet(MaxHashtags)
		recommended  string
	)

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		lower := strings.ToLower(line)

		switch {
		case strings.HasPrefix(line, "#"):
			hashtags.add(line)
		case strings.Contains(lower, "time") || strings.Contains(lower, "post"):
			if recommended == "" {
				recommended = ExtractTime(line)
			}
		case line != "" && !strings.HasPrefix(line, "Recommended"):
			captionLines = append(captionLines, line)
		}
	}

	caption := content
	if len(captionLines) > 0 {
		caption = strings.Join(captionLines, "\n\n")
	}

	tags := hashtags.list()
	if len(tags) == 0 {
		tags = append([]string(nil), FallbackHashtags...)
	}

	if recommended == "" {
		recommended = DefaultRecommendedTime
	}

	return Parsed{
		Caption:         caption,
		Hashtags:        tags,
		RecommendedTime: recommended,
	}
}

// ExtractTime returns the first "H:MM AM/PM" time in text, normalized to a
// single space and an upper-case meridiem, or "" when there is none.
func ExtractTime(text string) string {
	m := timePattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1] + ":" + m[2] + " " + strings.ToUpper(m[3])
}

// tagSet keeps unique tags in insertion order up to a limit
type tagSet struct {
	limit int
	seen  map[string]struct{}
	tags  []string
}

func newTagSet(limit int) *tagSet {
	return &tagSet{limit: limit, seen: make(map[string]struct{})}
}

func (s *tagSet) add(tag string) {
	if len(s.tags) >= s.limit {
		return
	}
	if _, dup := s.seen[tag]; dup {
		return
	}
	s.seen[tag] = struct{}{}
	s.tags = append(s.tags, tag)
}

func (s *tagSet) list() []string {
	return s.tags
}
