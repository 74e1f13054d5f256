package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/casetrace-systems/casetrace/investigate/internal/models"
)

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL repository.
func NewPostgresRepository(ctx context.Context, connString string) (*PostgresRepository, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 5
	config.MaxConnLifetime = 5 * time.Minute
	config.MaxConnIdleTime = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{pool: pool}, nil
}

// CreateCase inserts a new investigation case.
func (r *PostgresRepository) CreateCase(ctx context.Context, c *models.Case) error {
	findings, err := marshalFindings(c.Findings)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO cases (id, title, description, status, investigator, created_at, updated_at, findings)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = r.pool.Exec(ctx, query,
		c.ID, c.Title, c.Description, c.Status,
		c.Investigator, c.CreatedAt, c.UpdatedAt, findings,
	)
	if err != nil {
		return fmt.Errorf("failed to create case: %w", err)
	}

	return nil
}

// GetCase retrieves a case by ID.
func (r *PostgresRepository) GetCase(ctx context.Context, id string) (*models.Case, error) {
	query := `
		SELECT id, title, description, status, investigator, created_at, updated_at, findings
		FROM cases
		WHERE id = $1
	`

	c := &models.Case{}
	var findings []byte
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.Title, &c.Description, &c.Status,
		&c.Investigator, &c.CreatedAt, &c.UpdatedAt, &findings,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCaseNotFound
		}
		return nil, fmt.Errorf("failed to get case: %w", err)
	}

	if err := unmarshalFindings(findings, c); err != nil {
		return nil, err
	}

	return c, nil
}

// ListCases retrieves cases ordered by creation time descending, with an
// optional status filter.
func (r *PostgresRepository) ListCases(ctx context.Context, status string, limit, offset int) ([]*models.Case, int, error) {
	whereClause := "WHERE 1=1"
	args := []interface{}{}
	argPos := 1

	if status != "" {
		whereClause += fmt.Sprintf(" AND status = $%d", argPos)
		args = append(args, status)
		argPos++
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM cases %s", whereClause)
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count cases: %w", err)
	}

	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, offset)

	query := fmt.Sprintf(`
		SELECT id, title, description, status, investigator, created_at, updated_at, findings
		FROM cases
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, argPos, argPos+1)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list cases: %w", err)
	}
	defer rows.Close()

	cases := []*models.Case{}
	for rows.Next() {
		c := &models.Case{}
		var findings []byte
		if err := rows.Scan(
			&c.ID, &c.Title, &c.Description, &c.Status,
			&c.Investigator, &c.CreatedAt, &c.UpdatedAt, &findings,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan case: %w", err)
		}
		if err := unmarshalFindings(findings, c); err != nil {
			return nil, 0, err
		}
		cases = append(cases, c)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("row iteration error: %w", err)
	}

	return cases, total, nil
}

// UpdateCase applies the non-nil fields of the request and returns the
// updated case.
func (r *PostgresRepository) UpdateCase(ctx context.Context, id string, req *models.UpdateCaseRequest) (*models.Case, error) {
	setClauses := []string{"updated_at = $1"}
	args := []interface{}{time.Now().UTC()}
	argPos := 2

	if req.Title != nil {
		setClauses = append(setClauses, fmt.Sprintf("title = $%d", argPos))
		args = append(args, *req.Title)
		argPos++
	}
	if req.Description != nil {
		setClauses = append(setClauses, fmt.Sprintf("description = $%d", argPos))
		args = append(args, *req.Description)
		argPos++
	}
	if req.Status != nil {
		setClauses = append(setClauses, fmt.Sprintf("status = $%d", argPos))
		args = append(args, *req.Status)
		argPos++
	}
	if req.Findings != nil {
		findings, err := marshalFindings(req.Findings)
		if err != nil {
			return nil, err
		}
		setClauses = append(setClauses, fmt.Sprintf("findings = $%d", argPos))
		args = append(args, findings)
		argPos++
	}

	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE cases
		SET %s
		WHERE id = $%d
	`, strings.Join(setClauses, ", "), argPos)

	result, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update case: %w", err)
	}

	if result.RowsAffected() == 0 {
		return nil, ErrCaseNotFound
	}

	return r.GetCase(ctx, id)
}

// RecordQuery appends a query execution to the audit trail.
func (r *PostgresRepository) RecordQuery(ctx context.Context, rec *models.QueryRecord) error {
	query := `
		INSERT INTO query_log (id, case_id, natural_language, rendered_query, results_count, signature, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query,
		rec.ID, nullable(rec.CaseID), rec.NaturalLanguage, rec.RenderedQuery,
		rec.ResultsCount, rec.Signature, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record query: %w", err)
	}

	return nil
}

// RecordTimeline appends a timeline generation to the audit trail.
func (r *PostgresRepository) RecordTimeline(ctx context.Context, rec *models.TimelineRecord) error {
	query := `
		INSERT INTO timeline_log (id, case_id, title, event_ids, narrative, signature, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query,
		rec.ID, nullable(rec.CaseID), rec.Title, rec.EventIDs,
		rec.Narrative, rec.Signature, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record timeline: %w", err)
	}

	return nil
}

// RecordReport appends a generated report to the audit trail.
func (r *PostgresRepository) RecordReport(ctx context.Context, rec *models.ReportRecord) error {
	query := `
		INSERT INTO report_log (id, case_id, format, content, methodology, evidence_integrity, signature, generated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.pool.Exec(ctx, query,
		rec.ID, rec.CaseID, rec.Format, rec.Content,
		rec.Methodology, rec.EvidenceIntegrity, rec.Signature, rec.GeneratedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record report: %w", err)
	}

	return nil
}

// LatestReport returns the most recently generated report for a case.
func (r *PostgresRepository) LatestReport(ctx context.Context, caseID string) (*models.ReportRecord, error) {
	query := `
		SELECT id, case_id, format, content, methodology, evidence_integrity, signature, generated_at
		FROM report_log
		WHERE case_id = $1
		ORDER BY generated_at DESC
		LIMIT 1
	`

	rec := &models.ReportRecord{}
	err := r.pool.QueryRow(ctx, query, caseID).Scan(
		&rec.ID, &rec.CaseID, &rec.Format, &rec.Content,
		&rec.Methodology, &rec.EvidenceIntegrity, &rec.Signature, &rec.GeneratedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to get latest report: %w", err)
	}

	return rec, nil
}

// Close closes the database connection pool.
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

func marshalFindings(findings map[string]interface{}) ([]byte, error) {
	if findings == nil {
		findings = map[string]interface{}{}
	}
	data, err := json.Marshal(findings)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal findings: %w", err)
	}
	return data, nil
}

func unmarshalFindings(data []byte, c *models.Case) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, &c.Findings); err != nil {
		return fmt.Errorf("failed to unmarshal findings: %w", err)
	}
	if len(c.Findings) == 0 {
		c.Findings = nil
	}
	return nil
}

// nullable maps empty strings to NULL for optional foreign keys.
func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
