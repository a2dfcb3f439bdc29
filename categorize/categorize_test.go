package categorize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"screenusage/entity"
)

func TestCategorizeTitlePatternShortCircuits(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "Soccer videos", Categorize("Premier League Highlights", "", YouTubeCategories))
}

func TestCategorizeNeedsTwoKeywords(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "Travel videos", Categorize("random clip", "travel vlog tour of city", YouTubeCategories))
	assert.Equal(t, Other, Categorize("random clip", "travel", YouTubeCategories))
}

func TestCategorizeKeywordsCountTitleAndText(t *testing.T) {
	t.Parallel()
	// "laptop" in the title and "unboxing" in the OCR text together reach the threshold
	assert.Equal(t, "Tech reviews", Categorize("My new LAPTOP", "first unboxing", YouTubeCategories))
}

func TestCategorizeFirstRuleWins(t *testing.T) {
	t.Parallel()
	// matches both the soccer and gaming title patterns; soccer is declared first
	assert.Equal(t, "Soccer videos", Categorize("FIFA 25 gameplay", "", YouTubeCategories))
}

func TestCategorizeNoRules(t *testing.T) {
	t.Parallel()
	assert.Equal(t, Other, Categorize("anything", "at all", nil))
}

func TestCategorizeVideos(t *testing.T) {
	t.Parallel()
	videos := []entity.Video{
		{WindowName: "Premier League Highlights - YouTube", Duration: 120, FrameCount: 60},
		{WindowName: "Cooking pasta - YouTube", Duration: 300, FrameCount: 150},
		{WindowName: "Champions League final - YouTube", Duration: 60, FrameCount: 30},
		{WindowName: "Lofi beats", Text: "music song", Duration: 40, FrameCount: 20},
	}
	got := CategorizeVideos(videos)
	require.Len(t, got, 3)

	assert.Equal(t, Other, got[0].Name)
	assert.Equal(t, 300.0, got[0].Duration)

	assert.Equal(t, "Soccer videos", got[1].Name)
	assert.Equal(t, 180.0, got[1].Duration)
	assert.Equal(t, 2, got[1].VideoCount)
	assert.Len(t, got[1].Videos, 2)

	assert.Equal(t, "Music", got[2].Name)
}

func TestCategorizeVideosKeepsTopTen(t *testing.T) {
	t.Parallel()
	var videos []entity.Video
	for i := 0; i < 15; i++ {
		videos = append(videos, entity.Video{WindowName: "soccer clip", Duration: 12})
	}
	got := CategorizeVideos(videos)
	require.Len(t, got, 1)
	assert.Equal(t, 15, got[0].VideoCount)
	assert.Len(t, got[0].Videos, maxVideosPerCategory)
	assert.Equal(t, 180.0, got[0].Duration)
}
