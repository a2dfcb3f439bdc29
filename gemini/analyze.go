package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"screenusage/entity"
	"screenusage/query"
)

// UsageData is the slice of usage the analysis is graded on.
type UsageData struct {
	Apps            []entity.AppUsage
	Categories      []entity.VideoCategory
	TotalScreenTime float64
}

type Analyzer struct {
	gen TextGenerator
	log *slog.Logger
}

func NewAnalyzer(gen TextGenerator, log *slog.Logger) *Analyzer {
	if log == nil {
		log = slog.Default()
	}
	return &Analyzer{gen: gen, log: log}
}

// AnalyzeBehavior grades usage against goals. It never fails: when the model is
// unreachable or its answer cannot be parsed the fixed FallbackInsight is returned.
func (a *Analyzer) AnalyzeBehavior(ctx context.Context, data UsageData, goals []entity.UserGoal, r query.TimeRange) (entity.BehavioralInsight, bool) {
	text, err := a.gen.Generate(ctx, analysisPrompt(data, goals, r))
	if err != nil {
		a.log.Warn("analysis_generate_failed", "range", string(r), "error", err.Error())
		return FallbackInsight(goals), false
	}
	raw, err := ExtractJSON(text)
	if err != nil {
		a.log.Warn("analysis_parse_failed", "range", string(r), "error", err.Error(), "response_len", len(text))
		return FallbackInsight(goals), false
	}
	var insight entity.BehavioralInsight
	if err := json.Unmarshal([]byte(raw), &insight); err != nil {
		a.log.Warn("analysis_parse_failed", "range", string(r), "error", err.Error())
		return FallbackInsight(goals), false
	}
	insight.AlignmentScore = clamp(insight.AlignmentScore, 0, 100)
	return insight, true
}

// FallbackInsight is served whenever no model answer is usable.
func FallbackInsight(goals []entity.UserGoal) entity.BehavioralInsight {
	progress := make([]entity.GoalProgress, 0, len(goals))
	for _, g := range goals {
		progress = append(progress, entity.GoalProgress{
			Goal:     g.Description,
			Status:   entity.StatusNeedsImprovement,
			Actual:   0,
			Target:   g.Target,
			Gap:      g.Target,
			Analysis: "Data being analyzed",
		})
	}
	return entity.BehavioralInsight{
		AlignmentScore: 50,
		Summary:        "Unable to generate AI analysis at this time.",
		Patterns: entity.Patterns{
			Positive: []string{"Data being collected"},
			Negative: []string{"AI analysis temporarily unavailable"},
		},
		GoalProgress: progress,
		Recommendations: []entity.Recommendation{{
			Priority: entity.PriorityMedium,
			Action:   "Check back later for AI insights",
			Reason:   "AI service is initializing",
			Impact:   "Full behavioral analysis will be available soon",
		}},
		Insights:    []string{"Your usage data is being tracked"},
		WeeklyTrend: "stable",
	}
}

func analysisPrompt(data UsageData, goals []entity.UserGoal, r query.TimeRange) string {
	var b strings.Builder
	b.WriteString("You are a behavioral analyst helping someone understand their computer usage patterns and achieve their goals.\n\n")

	b.WriteString("## User's Goals:\n")
	var priorities []string
	for _, g := range goals {
		fmt.Fprintf(&b, "- %s (%s, %s, priority: %s, target: %g hours)\n", g.Description, g.Type, g.Period, g.Priority, g.Target)
		if g.Priority == entity.PriorityHigh {
			priorities = append(priorities, g.Description)
		}
	}
	if len(priorities) > 0 {
		fmt.Fprintf(&b, "\nTop priorities: %s\n", strings.Join(priorities, "; "))
	}

	fmt.Fprintf(&b, "\n## Actual Usage Data (%s):\n", r)
	fmt.Fprintf(&b, "Total Screen Time: %s\n\n", formatDuration(data.TotalScreenTime))

	b.WriteString("Top Applications:\n")
	for i, app := range data.Apps {
		if i == 10 {
			break
		}
		fmt.Fprintf(&b, "- %s: %s (%.1f%%)\n", app.Name, formatDuration(app.Duration), app.Percentage)
	}

	b.WriteString("\nContent Breakdown:\n")
	for _, c := range data.Categories {
		fmt.Fprintf(&b, "- %s: %s\n", c.Name, formatDuration(c.Duration))
	}

	b.WriteString(`
## Analysis Tasks:

1. **Goal Alignment Score (0-100)**: Calculate how well actual usage aligns with stated goals
2. **Pattern Analysis**: Identify behavioral patterns (good and bad)
3. **Recommendations**: Provide 3-5 specific, actionable recommendations
4. **Insights**: Share surprising or notable patterns
5. **Progress**: Note improvements or areas needing work

Provide analysis in JSON format ONLY (no markdown, no code blocks):
{
  "alignmentScore": number,
  "summary": "brief overview in one sentence",
  "patterns": {
    "positive": ["pattern1", "pattern2", "pattern3"],
    "negative": ["pattern1", "pattern2", "pattern3"]
  },
  "goalProgress": [
    {
      "goal": "goal description",
      "status": "on_track" | "needs_improvement" | "off_track",
      "actual": number (in hours),
      "target": number (in hours),
      "gap": number (difference in hours),
      "analysis": "specific feedback"
    }
  ],
  "recommendations": [
    {
      "priority": "high" | "medium" | "low",
      "action": "specific action to take",
      "reason": "why this helps",
      "impact": "expected outcome"
    }
  ],
  "insights": ["insight1", "insight2", "insight3"],
  "weeklyTrend": "improving" | "stable" | "declining"
}
`)
	return b.String()
}

// formatDuration renders seconds as "2h 5m", or "5m" under an hour.
func formatDuration(seconds float64) string {
	total := int(seconds)
	hours := total / 3600
	minutes := (total % 3600) / 60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
