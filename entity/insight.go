package entity

type GoalStatus string

const (
	StatusOnTrack          GoalStatus = "on_track"
	StatusNeedsImprovement GoalStatus = "needs_improvement"
	StatusOffTrack         GoalStatus = "off_track"
)

type Patterns struct {
	Positive []string `json:"positive"`
	Negative []string `json:"negative"`
}

type GoalProgress struct {
	Goal     string     `json:"goal"`
	Status   GoalStatus `json:"status"`
	Actual   float64    `json:"actual"`
	Target   float64    `json:"target"`
	Gap      float64    `json:"gap"`
	Analysis string     `json:"analysis"`
}

type Recommendation struct {
	Priority Priority `json:"priority"`
	Action   string   `json:"action"`
	Reason   string   `json:"reason"`
	Impact   string   `json:"impact"`
}

// BehavioralInsight is the graded analysis of usage against goals. It is never stored.
type BehavioralInsight struct {
	AlignmentScore  float64          `json:"alignmentScore"`
	Summary         string           `json:"summary"`
	Patterns        Patterns         `json:"patterns"`
	GoalProgress    []GoalProgress   `json:"goalProgress"`
	Recommendations []Recommendation `json:"recommendations"`
	Insights        []string         `json:"insights"`
	WeeklyTrend     string           `json:"weeklyTrend"`
}
