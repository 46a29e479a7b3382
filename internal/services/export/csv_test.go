package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"civicwatch/internal/models"
)

func TestWriteCSV_HeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("Failed to read CSV back: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected header only, got %d rows", len(records))
	}
	if len(records[0]) != len(Columns) {
		t.Errorf("Expected %d columns, got %d", len(Columns), len(records[0]))
	}
	if records[0][0] != "id" || records[0][9] != "department" {
		t.Errorf("Unexpected header: %v", records[0])
	}
}

func TestWriteCSV_Rows(t *testing.T) {
	summary := models.NewSummary()
	summary.Add("deep_pothole", 2)

	lat, lon := 52.2297, 21.0122
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	reports := []models.Report{
		{
			ID:         7,
			ImagePath:  "static/reports/report_a.jpg",
			Summary:    summary,
			Severity:   models.SeverityMedium,
			Latitude:   &lat,
			Longitude:  &lon,
			CreatedAt:  created,
			Kind:       models.KindImage,
			Feedback:   models.FeedbackCorrect,
			Department: "Roads Department",
		},
		{
			ID:         8,
			ImagePath:  "static/reports/video_frame_b.jpg",
			Summary:    models.NewSummary(),
			Severity:   models.SeverityLow,
			CreatedAt:  created,
			Kind:       models.KindVideo,
			Department: "General",
		},
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, reports); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("Failed to read CSV back: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("Expected header plus 2 rows, got %d rows", len(records))
	}

	first := records[1]
	if first[0] != "7" {
		t.Errorf("Expected id 7, got %s", first[0])
	}
	if first[2] != `{"deep_pothole":2}` {
		t.Errorf("Expected raw summary JSON, got %s", first[2])
	}
	if first[4] != "52.2297" || first[5] != "21.0122" {
		t.Errorf("Coordinate formatting mismatch: %s, %s", first[4], first[5])
	}
	if !strings.HasPrefix(first[6], "2024-03-01T12:00:00") {
		t.Errorf("Unexpected created_at: %s", first[6])
	}

	second := records[2]
	if second[2] != "{}" {
		t.Errorf("Empty summary should export as {}, got %s", second[2])
	}
	if second[4] != "" || second[5] != "" {
		t.Errorf("Missing coordinates should export as empty cells, got %q, %q", second[4], second[5])
	}
	if second[7] != models.KindVideo {
		t.Errorf("Expected kind video, got %s", second[7])
	}
}
