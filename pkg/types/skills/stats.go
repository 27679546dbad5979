package skills

import (
	"fmt"
	"time"
)

// SearchEntry is one recorded search query.
type SearchEntry struct {
	ID          string    `json:"id,omitempty"`
	Query       string    `json:"query"`
	Timestamp   time.Time `json:"timestamp"`
	ResultCount int       `json:"result_count"`
}

// UsageStats is a point-in-time copy of server usage counters.
type UsageStats struct {
	ToolCalls  map[string]uint64 `json:"tool_calls"`
	SkillLoads map[string]uint64 `json:"skill_loads"`
	Searches   []SearchEntry     `json:"searches"`
	StartTime  time.Time         `json:"start_time"`
	Uptime     string            `json:"uptime"`
	// MemoryRSS is the server process resident set size in bytes,
	// zero when unavailable.
	MemoryRSS uint64 `json:"memory_rss,omitempty"`
}

// TotalToolCalls sums every tool counter.
func (s *UsageStats) TotalToolCalls() uint64 {
	var total uint64
	for _, n := range s.ToolCalls {
		total += n
	}
	return total
}

// TotalSkillLoads sums every skill-load counter.
func (s *UsageStats) TotalSkillLoads() uint64 {
	var total uint64
	for _, n := range s.SkillLoads {
		total += n
	}
	return total
}

// FormatUptime renders a duration the way the stats endpoint reports it.
func FormatUptime(d time.Duration) string {
	secs := int64(d.Seconds())
	switch {
	case secs < 60:
		return fmt.Sprintf("%ds", secs)
	case secs < 3600:
		return fmt.Sprintf("%dm %ds", secs/60, secs%60)
	case secs < 86400:
		return fmt.Sprintf("%dh %dm", secs/3600, (secs%3600)/60)
	default:
		return fmt.Sprintf("%dd %dh", secs/86400, (secs%86400)/3600)
	}
}

// ValidationResult reports the outcome of validating every skill.
type ValidationResult struct {
	Valid         bool     `json:"valid"`
	Errors        []string `json:"errors"`
	Warnings      []string `json:"warnings"`
	SkillsChecked int      `json:"skills_checked"`
}

// AddError records a critical problem and marks the result invalid.
func (v *ValidationResult) AddError(err string) {
	v.Errors = append(v.Errors, err)
	v.Valid = false
}

// AddWarning records a non-critical problem.
func (v *ValidationResult) AddWarning(warning string) {
	v.Warnings = append(v.Warnings, warning)
}
