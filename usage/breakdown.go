package usage

import (
	"context"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"screenusage/categorize"
	"screenusage/entity"
	"screenusage/query"
)

const (
	youtubeDomain = "youtube.com"

	// DefaultVideoOtherMin is how many uncategorized YouTube windows justify an external pass.
	DefaultVideoOtherMin = 3
	// DefaultDomainOtherMin is how many windows without a domain justify an external pass.
	DefaultDomainOtherMin = 5
)

// Recategorizer assigns categories to window titles the keyword rules could not place.
// It returns one category per title; an empty name or categorize.Other leaves a title where it was.
type Recategorizer interface {
	Recategorize(ctx context.Context, titles []string) ([]string, error)
}

// Composer builds the domain and subcategory tree for one browser.
type Composer struct {
	agg            *Aggregator
	recat          Recategorizer
	videoOtherMin  int
	domainOtherMin int
}

// NewComposer returns a Composer. recat may be nil, in which case no external pass runs.
func NewComposer(agg *Aggregator, recat Recategorizer, videoOtherMin, domainOtherMin int) *Composer {
	if videoOtherMin <= 0 {
		videoOtherMin = DefaultVideoOtherMin
	}
	if domainOtherMin <= 0 {
		domainOtherMin = DefaultDomainOtherMin
	}
	return &Composer{agg: agg, recat: recat, videoOtherMin: videoOtherMin, domainOtherMin: domainOtherMin}
}

type domainGroup struct {
	entity.DomainBreakdown
	windows []entity.WindowUsage
}

// DomainBreakdown groups app's windows by site, largest first. YouTube is split by
// content category; windows with no site are split only when the external pass succeeds.
func (c *Composer) DomainBreakdown(ctx context.Context, app string, r query.TimeRange) []entity.DomainBreakdown {
	windows := c.agg.WindowUsage(ctx, app, r)
	groups := groupByDomain(windows)

	var total float64
	for _, g := range groups {
		total += g.Duration
	}

	var eg errgroup.Group
	for i := range groups {
		g := &groups[i]
		g.Percentage = percent(g.Duration, total)
		switch g.Domain {
		case youtubeDomain:
			eg.Go(func() error {
				g.Subcategories = c.subcategories(ctx, youtubeDomain, g.windows, c.videoPasses())
				return nil
			})
		case categorize.OtherDomain:
			if len(g.windows) < c.domainOtherMin {
				continue
			}
			eg.Go(func() error {
				g.Subcategories = c.subcategories(ctx, categorize.OtherDomain, g.windows, c.externalPasses(c.domainOtherMin))
				return nil
			})
		}
	}
	_ = eg.Wait()

	out := make([]entity.DomainBreakdown, 0, len(groups))
	for _, g := range groups {
		out = append(out, g.DomainBreakdown)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Duration != out[j].Duration {
			return out[i].Duration > out[j].Duration
		}
		return out[i].Domain < out[j].Domain
	})
	return out
}

func groupByDomain(windows []entity.WindowUsage) []domainGroup {
	index := map[string]int{}
	var groups []domainGroup
	for _, w := range windows {
		domain, ok := categorize.ExtractDomain(w.Title)
		if !ok {
			domain = categorize.OtherDomain
		}
		i, seen := index[domain]
		if !seen {
			i = len(groups)
			index[domain] = i
			groups = append(groups, domainGroup{DomainBreakdown: entity.DomainBreakdown{Domain: domain}})
		}
		groups[i].Duration += w.Duration
		groups[i].WindowCount++
		groups[i].windows = append(groups[i].windows, w)
	}
	return groups
}

// classifyPass assigns categories to the titles still in Other. Passes run in
// order; a pass that errors leaves the assignment as it was.
type classifyPass struct {
	name     string
	minOther int
	run      func(ctx context.Context, titles []string) ([]string, error)
}

func (c *Composer) videoPasses() []classifyPass {
	keywords := classifyPass{
		name: "keywords",
		run: func(_ context.Context, titles []string) ([]string, error) {
			cats := make([]string, len(titles))
			for i, t := range titles {
				cats[i] = categorize.Categorize(t, "", categorize.YouTubeCategories)
			}
			return cats, nil
		},
	}
	return append([]classifyPass{keywords}, c.externalPasses(c.videoOtherMin)...)
}

func (c *Composer) externalPasses(minOther int) []classifyPass {
	if c.recat == nil {
		return nil
	}
	return []classifyPass{{name: "external", minOther: minOther, run: c.recat.Recategorize}}
}

// subcategories runs passes over windows and groups them by the resulting category.
// It returns nil when no pass produced an assignment.
func (c *Composer) subcategories(ctx context.Context, bucket string, windows []entity.WindowUsage, passes []classifyPass) []entity.SubcategoryBreakdown {
	cats := make([]string, len(windows))
	for i := range cats {
		cats[i] = categorize.Other
	}
	applied := false
	for _, p := range passes {
		var pending []int
		for i, cat := range cats {
			if cat == categorize.Other {
				pending = append(pending, i)
			}
		}
		if len(pending) == 0 || len(pending) < p.minOther {
			continue
		}
		titles := make([]string, len(pending))
		for k, i := range pending {
			titles[k] = windows[i].Title
		}
		got, err := p.run(ctx, titles)
		if p.name == "external" {
			c.agg.rec.Recategorized(bucket, err == nil)
		}
		if err != nil {
			c.agg.rec.UpstreamFailure("llm", "recategorize")
			c.agg.log.Warn("recategorize_failed", "bucket", bucket, "pass", p.name, "titles", len(titles), "error", err.Error())
			continue
		}
		applied = true
		for k, i := range pending {
			if k >= len(got) {
				break
			}
			if name := strings.TrimSpace(got[k]); name != "" {
				cats[i] = name
			}
		}
	}
	if !applied {
		return nil
	}
	return groupByCategory(windows, cats)
}

func groupByCategory(windows []entity.WindowUsage, cats []string) []entity.SubcategoryBreakdown {
	index := map[string]int{}
	var subs []entity.SubcategoryBreakdown
	var total float64
	for i, w := range windows {
		j, ok := index[cats[i]]
		if !ok {
			j = len(subs)
			index[cats[i]] = j
			subs = append(subs, entity.SubcategoryBreakdown{Name: cats[i]})
		}
		subs[j].Duration += w.Duration
		subs[j].WindowCount++
		total += w.Duration
	}
	for j := range subs {
		subs[j].Percentage = percent(subs[j].Duration, total)
	}
	sort.SliceStable(subs, func(i, j int) bool {
		if subs[i].Duration != subs[j].Duration {
			return subs[i].Duration > subs[j].Duration
		}
		return subs[i].Name < subs[j].Name
	})
	return subs
}
