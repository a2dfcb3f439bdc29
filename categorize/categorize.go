package categorize

import (
	"sort"
	"strings"

	"screenusage/entity"
)

// minKeywordHits is how many distinct keywords must appear before a rule claims content on text alone.
const minKeywordHits = 2

// Categorize returns the name of the first rule that claims the content, or Other.
func Categorize(title, ocrText string, rules []CategoryRule) string {
	titleLower := strings.ToLower(title)
	textLower := strings.ToLower(ocrText)

	for _, rule := range rules {
		for _, p := range rule.TitlePatterns {
			if p.MatchString(title) {
				return rule.Name
			}
		}

		hits := 0
		for _, kw := range rule.Keywords {
			if strings.Contains(textLower, kw) || strings.Contains(titleLower, kw) {
				hits++
			}
		}
		if hits >= minKeywordHits {
			return rule.Name
		}
	}
	return Other
}

// maxVideosPerCategory bounds the sample of videos kept on each category.
const maxVideosPerCategory = 10

// CategorizeVideos groups videos by YouTube category, longest category first.
func CategorizeVideos(videos []entity.Video) []entity.VideoCategory {
	index := map[string]int{}
	var out []entity.VideoCategory
	for _, v := range videos {
		name := Categorize(v.WindowName, v.Text, YouTubeCategories)
		i, ok := index[name]
		if !ok {
			i = len(out)
			index[name] = i
			out = append(out, entity.VideoCategory{Name: name})
		}
		c := &out[i]
		c.Duration += v.Duration
		c.VideoCount++
		if len(c.Videos) < maxVideosPerCategory {
			c.Videos = append(c.Videos, v)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Duration != out[j].Duration {
			return out[i].Duration > out[j].Duration
		}
		return out[i].Name < out[j].Name
	})
	return out
}
