package sqlite_test

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"civicwatch/internal/models"
	"civicwatch/internal/repository/sqlite"
)

func newTestRepo(t *testing.T) (*sqlite.ReportRepository, *sqlite.DB, string) {
	t.Helper()

	tempDir := t.TempDir()
	db, err := sqlite.New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return sqlite.NewReportRepository(db, tempDir), db, tempDir
}

func sampleReport() *models.Report {
	summary := models.NewSummary()
	summary.Add("deep_pothole", 2)
	summary.Add("large_garbage", 1)

	lat, lon := 52.2297, 21.0122
	return &models.Report{
		ImagePath:  "static/reports/report_test.jpg",
		Summary:    summary,
		Severity:   models.SeverityMedium,
		Latitude:   &lat,
		Longitude:  &lon,
		Kind:       models.KindImage,
		Department: "Roads Department",
	}
}

func TestDatabase_Connection(t *testing.T) {
	tempDir := t.TempDir()

	dbPath := filepath.Join(tempDir, "test.db")
	db, err := sqlite.New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file should exist")
	}
}

func TestReportRepository_InsertAndGet(t *testing.T) {
	repo, _, _ := newTestRepo(t)

	report := sampleReport()
	id, err := repo.Insert(report)
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if id == 0 {
		t.Fatal("Expected a non-zero report id")
	}
	if report.ID != id {
		t.Errorf("Insert should set report.ID: expected %d, got %d", id, report.ID)
	}

	got, err := repo.GetByID(id)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got == nil {
		t.Fatal("Expected a report, got nil")
	}

	if got.Severity != models.SeverityMedium {
		t.Errorf("Severity mismatch: expected %s, got %s", models.SeverityMedium, got.Severity)
	}
	if got.Kind != models.KindImage {
		t.Errorf("Kind mismatch: expected %s, got %s", models.KindImage, got.Kind)
	}
	if got.Department != "Roads Department" {
		t.Errorf("Department mismatch: got %s", got.Department)
	}
	if !got.HasLocation() {
		t.Error("Expected coordinates to survive a round trip")
	}
	if got.Summary.Total() != 3 {
		t.Errorf("Summary total mismatch: expected 3, got %d", got.Summary.Total())
	}

	keys := got.Summary.Keys()
	if len(keys) != 2 || keys[0] != "deep_pothole" || keys[1] != "large_garbage" {
		t.Errorf("Summary key order not preserved: got %v", keys)
	}
	if got.CreatedAt.IsZero() {
		t.Error("Expected created_at to be populated")
	}
}

func TestReportRepository_GetByID_Missing(t *testing.T) {
	repo, _, _ := newTestRepo(t)

	got, err := repo.GetByID(42)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got != nil {
		t.Errorf("Expected nil for a missing report, got %+v", got)
	}
}

func TestReportRepository_GetAll_NewestFirst(t *testing.T) {
	repo, _, _ := newTestRepo(t)

	var ids []int64
	for i := 0; i < 3; i++ {
		id, err := repo.Insert(sampleReport())
		if err != nil {
			t.Fatalf("Insert %d failed: %v", i, err)
		}
		ids = append(ids, id)
	}

	reports, err := repo.GetAll()
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(reports) != 3 {
		t.Fatalf("Expected 3 reports, got %d", len(reports))
	}
	if reports[0].ID != ids[2] || reports[2].ID != ids[0] {
		t.Errorf("Expected newest first, got ids %d, %d, %d", reports[0].ID, reports[1].ID, reports[2].ID)
	}
}

func TestReportRepository_UpdateFeedback(t *testing.T) {
	repo, _, _ := newTestRepo(t)

	id, err := repo.Insert(sampleReport())
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	if err := repo.UpdateFeedback(id, models.FeedbackCorrect); err != nil {
		t.Fatalf("UpdateFeedback failed: %v", err)
	}

	got, err := repo.GetByID(id)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Feedback != models.FeedbackCorrect {
		t.Errorf("Feedback mismatch: expected %s, got %s", models.FeedbackCorrect, got.Feedback)
	}

	// Overwrite is allowed.
	if err := repo.UpdateFeedback(id, models.FeedbackIncorrect); err != nil {
		t.Fatalf("Second UpdateFeedback failed: %v", err)
	}
	got, _ = repo.GetByID(id)
	if got.Feedback != models.FeedbackIncorrect {
		t.Errorf("Feedback not overwritten: got %s", got.Feedback)
	}
}

func TestReportRepository_UpdateFeedback_Rejections(t *testing.T) {
	repo, _, _ := newTestRepo(t)

	id, err := repo.Insert(sampleReport())
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	if err := repo.UpdateFeedback(id, "maybe"); err == nil {
		t.Error("Expected an error for an unknown feedback value")
	}
	if err := repo.UpdateFeedback(9999, models.FeedbackCorrect); err == nil {
		t.Error("Expected an error for an unknown report id")
	}

	got, _ := repo.GetByID(id)
	if got.Feedback != "" {
		t.Errorf("Rejected updates should not mutate feedback, got %s", got.Feedback)
	}
}

func TestReportRepository_Delete_RemovesMedia(t *testing.T) {
	repo, _, tempDir := newTestRepo(t)

	mediaDir := filepath.Join(tempDir, "static", "reports")
	if err := os.MkdirAll(mediaDir, 0755); err != nil {
		t.Fatalf("Failed to create media dir: %v", err)
	}
	mediaPath := filepath.Join(mediaDir, "report_test.jpg")
	if err := os.WriteFile(mediaPath, []byte("jpeg"), 0644); err != nil {
		t.Fatalf("Failed to write media file: %v", err)
	}

	report := sampleReport()
	id, err := repo.Insert(report)
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	if err := repo.Delete(id); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := os.Stat(mediaPath); !os.IsNotExist(err) {
		t.Error("Expected media file to be removed")
	}
	got, _ := repo.GetByID(id)
	if got != nil {
		t.Error("Expected report row to be removed")
	}
}

func TestReportRepository_Delete_UnknownID(t *testing.T) {
	repo, _, _ := newTestRepo(t)

	if err := repo.Delete(12345); err != nil {
		t.Errorf("Delete of an unknown id should be a no-op, got %v", err)
	}
}

func TestReportRepository_DeleteAll(t *testing.T) {
	repo, _, tempDir := newTestRepo(t)

	mediaDir := filepath.Join(tempDir, "static", "reports")
	if err := os.MkdirAll(mediaDir, 0755); err != nil {
		t.Fatalf("Failed to create media dir: %v", err)
	}

	for i := 0; i < 3; i++ {
		name := filepath.Join(mediaDir, "report_"+string(rune('a'+i))+".jpg")
		if err := os.WriteFile(name, []byte("jpeg"), 0644); err != nil {
			t.Fatalf("Failed to write media file: %v", err)
		}
		report := sampleReport()
		report.ImagePath = "static/reports/report_" + string(rune('a'+i)) + ".jpg"
		if _, err := repo.Insert(report); err != nil {
			t.Fatalf("Insert %d failed: %v", i, err)
		}
	}

	if err := repo.DeleteAll(); err != nil {
		t.Fatalf("DeleteAll failed: %v", err)
	}

	count, err := repo.Count()
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected 0 reports after DeleteAll, got %d", count)
	}

	entries, err := os.ReadDir(mediaDir)
	if err != nil {
		t.Fatalf("Failed to read media dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected media dir to be empty, found %d files", len(entries))
	}
}

func TestReportRepository_Backfill_Idempotent(t *testing.T) {
	repo, _, _ := newTestRepo(t)

	// Rows written before department routing existed carry the default.
	misrouted := sampleReport()
	misrouted.Department = ""
	if _, err := repo.Insert(misrouted); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	clean := sampleReport()
	clean.Summary = models.NewSummary()
	clean.Department = ""
	if _, err := repo.Insert(clean); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	updated, err := repo.BackfillDepartments()
	if err != nil {
		t.Fatalf("BackfillDepartments failed: %v", err)
	}
	if updated != 1 {
		t.Errorf("Expected 1 updated report, got %d", updated)
	}

	got, _ := repo.GetByID(misrouted.ID)
	if got.Department != "Roads Department" {
		t.Errorf("Expected Roads Department after backfill, got %s", got.Department)
	}

	// A second run finds nothing left to rewrite.
	updated, err = repo.BackfillDepartments()
	if err != nil {
		t.Fatalf("Second BackfillDepartments failed: %v", err)
	}
	if updated != 0 {
		t.Errorf("Expected second backfill to update 0 reports, got %d", updated)
	}
}

func TestDatabase_LegacySchemaMigration(t *testing.T) {
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "legacy.db")

	// Build a database in the original shape, before the kind, feedback
	// and department columns existed.
	legacy, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("Failed to open legacy database: %v", err)
	}
	_, err = legacy.Exec(`
		CREATE TABLE reports (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			image_path TEXT NOT NULL,
			summary TEXT,
			severity TEXT,
			latitude REAL,
			longitude REAL,
			created_at TEXT
		);
		INSERT INTO reports (image_path, summary, severity, created_at)
		VALUES ('static/reports/old.jpg', '{"pothole":1}', 'Low', '2024-03-01T12:00:00');
	`)
	if err != nil {
		t.Fatalf("Failed to seed legacy database: %v", err)
	}
	if err := legacy.Close(); err != nil {
		t.Fatalf("Failed to close legacy database: %v", err)
	}

	db, err := sqlite.New(dbPath)
	if err != nil {
		t.Fatalf("Migration on open failed: %v", err)
	}
	defer db.Close()

	repo := sqlite.NewReportRepository(db, tempDir)
	reports, err := repo.GetAll()
	if err != nil {
		t.Fatalf("GetAll after migration failed: %v", err)
	}
	if len(reports) != 1 {
		t.Fatalf("Expected 1 legacy report, got %d", len(reports))
	}

	legacyReport := reports[0]
	if legacyReport.Kind != models.KindImage {
		t.Errorf("Legacy rows should read as kind image, got %s", legacyReport.Kind)
	}
	if legacyReport.Department != "General" {
		t.Errorf("Legacy rows should read as department General, got %s", legacyReport.Department)
	}
	if legacyReport.Feedback != "" {
		t.Errorf("Legacy rows should have empty feedback, got %s", legacyReport.Feedback)
	}
	if legacyReport.CreatedAt.IsZero() {
		t.Error("Legacy created_at without timezone should still parse")
	}

	// The new columns are writable on legacy rows.
	if err := repo.UpdateFeedback(legacyReport.ID, models.FeedbackCorrect); err != nil {
		t.Errorf("UpdateFeedback on a legacy row failed: %v", err)
	}

	// Opening again must be a no-op, not a duplicate-column error.
	db2, err := sqlite.New(dbPath)
	if err != nil {
		t.Fatalf("Second open failed: %v", err)
	}
	db2.Close()
}

func TestDatabase_ConcurrentInserts(t *testing.T) {
	repo, _, _ := newTestRepo(t)

	done := make(chan bool, 10)
	for i := 0; i < 10; i++ {
		go func(idx int) {
			report := sampleReport()
			report.CreatedAt = time.Now()
			if _, err := repo.Insert(report); err != nil {
				t.Errorf("Concurrent insert %d failed: %v", idx, err)
			}
			done <- true
		}(i)
	}
	for i := 0; i < 10; i++ {
		<-done
	}

	count, err := repo.Count()
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 10 {
		t.Errorf("Expected 10 reports, got %d", count)
	}
}
