package repository

import (
	"civicwatch/internal/models"
)

// ReportRepository defines the interface for report data operations.
type ReportRepository interface {
	// Create operations
	Insert(r *models.Report) (int64, error)

	// Read operations
	GetByID(id int64) (*models.Report, error)
	GetAll() ([]models.Report, error)
	Count() (int, error)

	// Update operations
	UpdateFeedback(id int64, feedback string) error
	BackfillDepartments() (int, error)

	// Delete operations
	Delete(id int64) error
	DeleteAll() error
}
