package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"civicwatch/internal/classify"
	"civicwatch/internal/models"
)

// createdAtLayouts are the timestamp formats accepted when reading rows.
// Older rows were written without a timezone suffix.
var createdAtLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
}

// ReportRepository implements repository.ReportRepository for SQLite.
type ReportRepository struct {
	db      *DB
	baseDir string
}

// NewReportRepository creates a new SQLite report repository. Media paths
// stored on reports are relative; baseDir anchors them on disk.
func NewReportRepository(db *DB, baseDir string) *ReportRepository {
	return &ReportRepository{db: db, baseDir: baseDir}
}

// Insert adds a new report record and returns its assigned id.
func (r *ReportRepository) Insert(report *models.Report) (int64, error) {
	r.db.Lock()
	defer r.db.Unlock()

	if report.Summary == nil {
		report.Summary = models.NewSummary()
	}
	if report.Kind == "" {
		report.Kind = models.KindImage
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now()
	}

	summaryJSON, err := json.Marshal(report.Summary)
	if err != nil {
		return 0, fmt.Errorf("failed to encode summary: %w", err)
	}

	result, err := r.db.Conn().Exec(`
		INSERT INTO reports (image_path, summary, severity, latitude, longitude, created_at, kind, department)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, report.ImagePath, string(summaryJSON), report.Severity, report.Latitude,
		report.Longitude, report.CreatedAt.Format(time.RFC3339), report.Kind, report.Department)
	if err != nil {
		return 0, fmt.Errorf("failed to insert report: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get report id: %w", err)
	}
	report.ID = id
	return id, nil
}

// GetByID retrieves a report by its ID.
func (r *ReportRepository) GetByID(id int64) (*models.Report, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	row := r.db.Conn().QueryRow(`
		SELECT id, image_path, summary, severity, latitude, longitude, created_at, kind, feedback, department
		FROM reports WHERE id = ?
	`, id)

	report, err := scanReport(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return report, nil
}

// GetAll retrieves the full report history, newest first.
func (r *ReportRepository) GetAll() ([]models.Report, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	rows, err := r.db.Conn().Query(`
		SELECT id, image_path, summary, severity, latitude, longitude, created_at, kind, feedback, department
		FROM reports ORDER BY id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	var reports []models.Report
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, *report)
	}
	return reports, rows.Err()
}

// Count returns the total number of stored reports.
func (r *ReportRepository) Count() (int, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	var count int
	if err := r.db.Conn().QueryRow(`SELECT COUNT(*) FROM reports`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count reports: %w", err)
	}
	return count, nil
}

// UpdateFeedback overwrites the feedback on an existing report. Unknown
// feedback values and unknown report ids are rejected without mutation.
func (r *ReportRepository) UpdateFeedback(id int64, feedback string) error {
	if feedback != models.FeedbackCorrect && feedback != models.FeedbackIncorrect {
		return fmt.Errorf("invalid feedback value: %q", feedback)
	}

	r.db.Lock()
	defer r.db.Unlock()

	result, err := r.db.Conn().Exec(`UPDATE reports SET feedback = ? WHERE id = ?`, feedback, id)
	if err != nil {
		return fmt.Errorf("failed to update feedback: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check feedback update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("report %d not found", id)
	}
	return nil
}

// BackfillDepartments recomputes the department for every stored summary
// using the current routing rules. Only rows whose recomputed department
// is non-default and differs from the stored value are rewritten, which
// makes a second run a no-op. Returns the number of rows updated.
func (r *ReportRepository) BackfillDepartments() (int, error) {
	r.db.Lock()
	defer r.db.Unlock()

	rows, err := r.db.Conn().Query(`SELECT id, summary, department FROM reports`)
	if err != nil {
		return 0, fmt.Errorf("failed to query reports: %w", err)
	}

	type update struct {
		id         int64
		department string
	}
	var updates []update

	for rows.Next() {
		var (
			id         int64
			summaryRaw sql.NullString
			department sql.NullString
		)
		if err := rows.Scan(&id, &summaryRaw, &department); err != nil {
			rows.Close()
			return 0, fmt.Errorf("failed to scan report: %w", err)
		}

		summary, err := models.ParseSummary(summaryRaw.String)
		if err != nil {
			continue
		}

		recomputed := classify.Department(summary)
		if recomputed == classify.DefaultDepartment {
			continue
		}
		stored := department.String
		if !department.Valid {
			stored = classify.DefaultDepartment
		}
		if recomputed != stored {
			updates = append(updates, update{id: id, department: recomputed})
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return 0, err
	}
	rows.Close()

	for _, u := range updates {
		if _, err := r.db.Conn().Exec(`UPDATE reports SET department = ? WHERE id = ?`, u.department, u.id); err != nil {
			return 0, fmt.Errorf("failed to update department for report %d: %w", u.id, err)
		}
	}
	return len(updates), nil
}

// Delete removes a report and its media file. Unknown ids are a no-op and
// an already-missing media file is tolerated.
func (r *ReportRepository) Delete(id int64) error {
	r.db.Lock()
	defer r.db.Unlock()

	var imagePath string
	err := r.db.Conn().QueryRow(`SELECT image_path FROM reports WHERE id = ?`, id).Scan(&imagePath)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get report: %w", err)
	}

	r.removeMedia(imagePath)

	if _, err := r.db.Conn().Exec(`DELETE FROM reports WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}
	return nil
}

// DeleteAll removes every report and attempts to remove every referenced
// media file. Individual missing files are tolerated.
func (r *ReportRepository) DeleteAll() error {
	r.db.Lock()
	defer r.db.Unlock()

	rows, err := r.db.Conn().Query(`SELECT image_path FROM reports`)
	if err != nil {
		return fmt.Errorf("failed to query reports: %w", err)
	}

	var paths []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan report: %w", err)
		}
		paths = append(paths, path)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	for _, path := range paths {
		r.removeMedia(path)
	}

	if _, err := r.db.Conn().Exec(`DELETE FROM reports`); err != nil {
		return fmt.Errorf("failed to delete reports: %w", err)
	}
	return nil
}

// removeMedia deletes a stored media file, tolerating absence.
func (r *ReportRepository) removeMedia(imagePath string) {
	if imagePath == "" {
		return
	}
	os.Remove(filepath.Join(r.baseDir, filepath.FromSlash(imagePath)))
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanReport reads one report row, substituting fixed defaults for
// columns that are NULL on rows written under older schema versions.
func scanReport(row rowScanner) (*models.Report, error) {
	var (
		report     models.Report
		summaryRaw sql.NullString
		latitude   sql.NullFloat64
		longitude  sql.NullFloat64
		createdAt  sql.NullString
		kind       sql.NullString
		feedback   sql.NullString
		department sql.NullString
	)

	err := row.Scan(&report.ID, &report.ImagePath, &summaryRaw, &report.Severity,
		&latitude, &longitude, &createdAt, &kind, &feedback, &department)
	if err != nil {
		return nil, err
	}

	summary, err := models.ParseSummary(summaryRaw.String)
	if err != nil {
		summary = models.NewSummary()
	}
	report.Summary = summary

	if latitude.Valid && longitude.Valid {
		lat, lon := latitude.Float64, longitude.Float64
		report.Latitude = &lat
		report.Longitude = &lon
	}

	report.CreatedAt = parseCreatedAt(createdAt.String)

	report.Kind = models.KindImage
	if kind.Valid && kind.String != "" {
		report.Kind = kind.String
	}
	report.Feedback = feedback.String
	report.Department = classify.DefaultDepartment
	if department.Valid && department.String != "" {
		report.Department = department.String
	}

	return &report, nil
}

// parseCreatedAt tries each accepted timestamp layout in turn.
func parseCreatedAt(raw string) time.Time {
	for _, layout := range createdAtLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}
