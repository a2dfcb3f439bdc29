package categorize

import "regexp"

// Other is the category given to content no rule claims.
const Other = "Other"

// CategoryRule claims content whose title matches one of TitlePatterns,
// or whose text contains at least two of Keywords.
type CategoryRule struct {
	Name          string
	Keywords      []string
	TitlePatterns []*regexp.Regexp
}

func patterns(exprs ...string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, 0, len(exprs))
	for _, e := range exprs {
		res = append(res, regexp.MustCompile(`(?i)`+e))
	}
	return res
}

// YouTubeCategories is evaluated in declaration order; the first rule that claims a video wins.
var YouTubeCategories = []CategoryRule{
	{
		Name:          "Soccer videos",
		Keywords:      []string{"soccer", "football", "premier league", "goals", "highlights", "match", "fifa", "champions league"},
		TitlePatterns: patterns(`premier league`, `soccer`, `football`, `fifa`, `champions`),
	},
	{
		Name:          "Travel videos",
		Keywords:      []string{"travel", "vlog", "tour", "visit", "trip", "vacation", "destination", "adventure"},
		TitlePatterns: patterns(`travel`, `vlog`, `tour`, `visit`),
	},
	{
		Name:          "Tech reviews",
		Keywords:      []string{"review", "unboxing", "tech", "gadget", "iphone", "laptop", "android", "technology"},
		TitlePatterns: patterns(`review`, `unboxing`, `tech`),
	},
	{
		Name:          "Gaming",
		Keywords:      []string{"gaming", "gameplay", "playthrough", "walkthrough", "lets play", "game"},
		TitlePatterns: patterns(`gaming`, `gameplay`, `playthrough`),
	},
	{
		Name:          "Music",
		Keywords:      []string{"music", "song", "official video", "mv", "lyrics", "audio"},
		TitlePatterns: patterns(`music`, `official video`, `lyrics`),
	},
}
