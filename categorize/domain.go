package categorize

import (
	"regexp"
	"strings"
)

// OtherDomain buckets windows whose title names no site.
const OtherDomain = "Other"

var (
	embeddedURLRe = regexp.MustCompile(`(?i)\b[a-z][a-z0-9+.\-]*://([^/\s?#"'<>]+)`)

	// Tried in order after no URL is found.
	bareDomainRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:[a-z0-9](?:[a-z0-9\-]*[a-z0-9])?\.)+(?:com|org|net)\b`),
		regexp.MustCompile(`(?i)\b(?:[a-z0-9\-]+\.)*(?:` +
			`youtu\.be|github\.io|notion\.so|docs\.rs|crates\.io|go\.dev|` +
			`twitch\.tv|bsky\.app|vercel\.app|claude\.ai|x\.ai|huggingface\.co)\b`),
	}
)

type siteFragment struct {
	fragment string
	domain   string
}

// Checked in order against the lowercased title. Longer, more specific
// fragments come before the ones they contain.
var siteFragments = []siteFragment{
	{"youtube", "youtube.com"},
	{"github", "github.com"},
	{"stack overflow", "stackoverflow.com"},
	{"stackoverflow", "stackoverflow.com"},
	{"reddit", "reddit.com"},
	{"twitter", "twitter.com"},
	{"gmail", "mail.google.com"},
	{"google docs", "docs.google.com"},
	{"google sheets", "docs.google.com"},
	{"google drive", "drive.google.com"},
	{"google calendar", "calendar.google.com"},
	{"linkedin", "linkedin.com"},
	{"netflix", "netflix.com"},
	{"wikipedia", "wikipedia.org"},
	{"chatgpt", "chatgpt.com"},
	{"facebook", "facebook.com"},
	{"instagram", "instagram.com"},
	{"twitch", "twitch.tv"},
	{"slack", "slack.com"},
	{"notion", "notion.so"},
	{"figma", "figma.com"},
	{"amazon", "amazon.com"},
	{"hacker news", "news.ycombinator.com"},
}

// ExtractDomain infers the site a browser window title belongs to.
// It returns false when the title names no recognisable site.
func ExtractDomain(title string) (string, bool) {
	if m := embeddedURLRe.FindStringSubmatch(title); m != nil {
		if host := normalizeHost(m[1]); host != "" {
			return host, true
		}
	}
	for _, re := range bareDomainRes {
		if m := re.FindString(title); m != "" {
			return normalizeHost(m), true
		}
	}
	lower := strings.ToLower(title)
	for _, s := range siteFragments {
		if strings.Contains(lower, s.fragment) {
			return s.domain, true
		}
	}
	return "", false
}

func normalizeHost(host string) string {
	if i := strings.LastIndex(host, "@"); i >= 0 {
		host = host[i+1:]
	}
	if i := strings.LastIndex(host, ":"); i >= 0 && !strings.Contains(host[i:], "]") {
		host = host[:i]
	}
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	return strings.TrimPrefix(host, "www.")
}
