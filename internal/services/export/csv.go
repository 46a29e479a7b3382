package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"civicwatch/internal/models"
)

// Columns is the CSV header, mirroring every report column. The summary
// is exported as its raw serialized mapping.
var Columns = []string{
	"id", "image_path", "summary", "severity", "latitude", "longitude",
	"created_at", "kind", "feedback", "department",
}

// WriteCSV writes the report history as a header row followed by one row
// per report, in the order the store returned them.
func WriteCSV(w io.Writer, reports []models.Report) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, report := range reports {
		summaryJSON, err := json.Marshal(report.Summary)
		if err != nil {
			return fmt.Errorf("failed to encode summary for report %d: %w", report.ID, err)
		}

		record := []string{
			strconv.FormatInt(report.ID, 10),
			report.ImagePath,
			string(summaryJSON),
			report.Severity,
			formatCoord(report.Latitude),
			formatCoord(report.Longitude),
			report.CreatedAt.Format(time.RFC3339),
			report.Kind,
			report.Feedback,
			report.Department,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write report %d: %w", report.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatCoord(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
