// Package classify derives severity tiers and department routing from
// detection summaries. All functions are pure so stored values can always
// be recomputed from the summary alone.
package classify

import (
	"strings"

	"civicwatch/internal/models"
)

// DefaultDepartment is assigned when no routing rule matches.
const DefaultDepartment = "General"

// Issue categories used by dashboard aggregation.
const (
	CategoryPothole = "pothole"
	CategoryGarbage = "garbage"
)

// Thresholds define the upper bounds of the Low and Medium tiers.
// Video aggregates detections across many sampled frames, so its scale is
// deliberately coarser than the per-image one.
type Thresholds struct {
	Low    int
	Medium int
}

var (
	ImageThresholds = Thresholds{Low: 1, Medium: 3}
	VideoThresholds = Thresholds{Low: 5, Medium: 15}
)

// departmentRule routes class names containing a keyword to a department.
type departmentRule struct {
	keyword    string
	department string
}

// Rules are checked in order for each class name; the first class name
// matching any rule decides the department.
var departmentRules = []departmentRule{
	{keyword: "pothole", department: "Roads Department"},
	{keyword: "garbage", department: "Department of Environment"},
}

// Severity grades a total detection count against a threshold scale.
func Severity(total int, t Thresholds) string {
	switch {
	case total <= t.Low:
		return models.SeverityLow
	case total <= t.Medium:
		return models.SeverityMedium
	default:
		return models.SeverityHigh
	}
}

// SeverityFor grades a summary using the scale matching the report kind.
func SeverityFor(summary *models.Summary, kind string) string {
	t := ImageThresholds
	if kind == models.KindVideo {
		t = VideoThresholds
	}
	return Severity(summary.Total(), t)
}

// Department resolves the responsible municipal unit for a summary.
// Class names are matched case-insensitively by substring, in the
// summary's stored key order, first match wins.
func Department(summary *models.Summary) string {
	for _, class := range summary.Keys() {
		lower := strings.ToLower(class)
		for _, rule := range departmentRules {
			if strings.Contains(lower, rule.keyword) {
				return rule.department
			}
		}
	}
	return DefaultDepartment
}

// Category reports which issue family a detector class name belongs to,
// or "" when it belongs to neither.
func Category(class string) string {
	lower := strings.ToLower(class)
	switch {
	case strings.Contains(lower, CategoryPothole):
		return CategoryPothole
	case strings.Contains(lower, CategoryGarbage):
		return CategoryGarbage
	default:
		return ""
	}
}

// HeatWeight maps a severity tier to its heatmap weight.
func HeatWeight(severity string) float64 {
	switch severity {
	case models.SeverityLow:
		return 0.5
	case models.SeverityMedium:
		return 1.0
	default:
		return 2.0
	}
}
