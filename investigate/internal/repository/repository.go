package repository

import (
	"context"
	"errors"

	"github.com/casetrace-systems/casetrace/investigate/internal/models"
)

var (
	ErrCaseNotFound   = errors.New("case not found")
	ErrReportNotFound = errors.New("report not found")
)

// Repository defines the interface for case persistence and the
// investigation audit trail.
type Repository interface {
	// Case operations
	CreateCase(ctx context.Context, c *models.Case) error
	GetCase(ctx context.Context, id string) (*models.Case, error)
	ListCases(ctx context.Context, status string, limit, offset int) ([]*models.Case, int, error)
	UpdateCase(ctx context.Context, id string, req *models.UpdateCaseRequest) (*models.Case, error)

	// Audit trail operations
	RecordQuery(ctx context.Context, rec *models.QueryRecord) error
	RecordTimeline(ctx context.Context, rec *models.TimelineRecord) error
	RecordReport(ctx context.Context, rec *models.ReportRecord) error
	LatestReport(ctx context.Context, caseID string) (*models.ReportRecord, error)

	// Utility
	Close() error
}
