package entity

type AppUsage struct {
	Name       string  `json:"name"`
	Duration   float64 `json:"duration"`
	Percentage float64 `json:"percentage"`
	FrameCount int     `json:"frameCount"`
}

type WindowUsage struct {
	Title    string  `json:"title"`
	Duration float64 `json:"duration"`
	Category string  `json:"category,omitempty"`
}

type SubcategoryBreakdown struct {
	Name        string  `json:"name"`
	Duration    float64 `json:"duration"`
	Percentage  float64 `json:"percentage"`
	WindowCount int     `json:"windowCount"`
}

// DomainBreakdown is the time spent on one site inside a browser.
type DomainBreakdown struct {
	Domain        string                 `json:"domain"`
	Duration      float64                `json:"duration"`
	Percentage    float64                `json:"percentage"`
	WindowCount   int                    `json:"windowCount"`
	Subcategories []SubcategoryBreakdown `json:"subcategories,omitempty"`
}

// Video is a single video page grouped by window title, with the OCR text seen on it.
type Video struct {
	WindowName string  `json:"window_name"`
	Text       string  `json:"all_text"`
	FrameCount int     `json:"frame_count"`
	Duration   float64 `json:"duration_seconds"`
}

type VideoCategory struct {
	Name       string  `json:"name"`
	Duration   float64 `json:"duration"`
	VideoCount int     `json:"videoCount"`
	Videos     []Video `json:"videos"`
}

type MostUsedApp struct {
	Name     string  `json:"name"`
	Duration float64 `json:"duration"`
}

type UsageSummary struct {
	TotalScreenTime float64      `json:"totalScreenTime"`
	MostUsedApp     *MostUsedApp `json:"mostUsedApp"`
	ActiveApps      int          `json:"activeApps"`
}
