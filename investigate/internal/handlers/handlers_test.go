package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casetrace-systems/casetrace/common/logging"
	"github.com/casetrace-systems/casetrace/investigate/internal/cache"
	"github.com/casetrace-systems/casetrace/investigate/internal/gateway"
	"github.com/casetrace-systems/casetrace/investigate/internal/models"
	"github.com/casetrace-systems/casetrace/investigate/internal/report"
	"github.com/casetrace-systems/casetrace/investigate/internal/repository"
	"github.com/casetrace-systems/casetrace/investigate/internal/service"
)

// mockRepository is a mock implementation of repository.Repository
type mockRepository struct {
	createCaseFunc   func(ctx context.Context, c *models.Case) error
	getCaseFunc      func(ctx context.Context, id string) (*models.Case, error)
	listCasesFunc    func(ctx context.Context, status string, limit, offset int) ([]*models.Case, int, error)
	updateCaseFunc   func(ctx context.Context, id string, req *models.UpdateCaseRequest) (*models.Case, error)
	latestReportFunc func(ctx context.Context, caseID string) (*models.ReportRecord, error)
	recordReportFunc func(ctx context.Context, rec *models.ReportRecord) error
}

func (m *mockRepository) CreateCase(ctx context.Context, c *models.Case) error {
	if m.createCaseFunc != nil {
		return m.createCaseFunc(ctx, c)
	}
	return nil
}

func (m *mockRepository) GetCase(ctx context.Context, id string) (*models.Case, error) {
	if m.getCaseFunc != nil {
		return m.getCaseFunc(ctx, id)
	}
	return nil, repository.ErrCaseNotFound
}

func (m *mockRepository) ListCases(ctx context.Context, status string, limit, offset int) ([]*models.Case, int, error) {
	if m.listCasesFunc != nil {
		return m.listCasesFunc(ctx, status, limit, offset)
	}
	return nil, 0, nil
}

func (m *mockRepository) UpdateCase(ctx context.Context, id string, req *models.UpdateCaseRequest) (*models.Case, error) {
	if m.updateCaseFunc != nil {
		return m.updateCaseFunc(ctx, id, req)
	}
	return nil, repository.ErrCaseNotFound
}

func (m *mockRepository) RecordQuery(ctx context.Context, rec *models.QueryRecord) error { return nil }

func (m *mockRepository) RecordTimeline(ctx context.Context, rec *models.TimelineRecord) error {
	return nil
}

func (m *mockRepository) RecordReport(ctx context.Context, rec *models.ReportRecord) error {
	if m.recordReportFunc != nil {
		return m.recordReportFunc(ctx, rec)
	}
	return nil
}

func (m *mockRepository) LatestReport(ctx context.Context, caseID string) (*models.ReportRecord, error) {
	if m.latestReportFunc != nil {
		return m.latestReportFunc(ctx, caseID)
	}
	return nil, repository.ErrReportNotFound
}

func (m *mockRepository) Close() error { return nil }

// mockEventStore is a mock implementation of gateway.EventStore
type mockEventStore struct {
	fetchFunc func(ctx context.Context, filter models.Filter) ([]models.Event, error)
	indexFunc func(ctx context.Context, events []models.Event) (*gateway.IndexResult, error)
}

func (m *mockEventStore) Fetch(ctx context.Context, filter models.Filter) ([]models.Event, error) {
	if m.fetchFunc != nil {
		return m.fetchFunc(ctx, filter)
	}
	return nil, nil
}

func (m *mockEventStore) Index(ctx context.Context, events []models.Event) (*gateway.IndexResult, error) {
	if m.indexFunc != nil {
		return m.indexFunc(ctx, events)
	}
	return &gateway.IndexResult{Indexed: len(events)}, nil
}

func newTestHandler(repo *mockRepository, store *mockEventStore) *Handler {
	logger := logging.New(slog.LevelError, "json")
	svc := service.NewService(repo, store, cache.NewReportCache(nil, 0), report.NewSynthesizer(), nil, nil, logger)
	return NewHandler(svc, logger)
}

func openCase() *models.Case {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	return &models.Case{
		ID:           "case-001",
		Title:        "Suspicious logins",
		Status:       "open",
		Investigator: "Jordan Reyes",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestHealth(t *testing.T) {
	h := newTestHandler(&mockRepository{}, &mockEventStore{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	h.Health(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "healthy", response["status"])
}

func TestQuery(t *testing.T) {
	tests := []struct {
		name           string
		method         string
		requestBody    interface{}
		fetchFunc      func(ctx context.Context, filter models.Filter) ([]models.Event, error)
		expectedStatus int
		expectedCount  int
	}{
		{
			name:        "successful query",
			method:      http.MethodPost,
			requestBody: models.QueryRequest{Text: "failed logins from Russia"},
			fetchFunc: func(ctx context.Context, filter models.Filter) ([]models.Event, error) {
				return []models.Event{{ID: "ev-1", EventType: "login"}}, nil
			},
			expectedStatus: http.StatusOK,
			expectedCount:  1,
		},
		{
			name:           "method not allowed",
			method:         http.MethodGet,
			expectedStatus: http.StatusMethodNotAllowed,
		},
		{
			name:           "invalid request body",
			method:         http.MethodPost,
			requestBody:    "not json",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "empty query text",
			method:         http.MethodPost,
			requestBody:    models.QueryRequest{Text: "   "},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "store failure degrades to empty results",
			method:      http.MethodPost,
			requestBody: models.QueryRequest{Text: "failed logins"},
			fetchFunc: func(ctx context.Context, filter models.Filter) ([]models.Event, error) {
				return nil, errors.New("connection refused")
			},
			expectedStatus: http.StatusOK,
			expectedCount:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(&mockRepository{}, &mockEventStore{fetchFunc: tt.fetchFunc})

			var body []byte
			if tt.requestBody != nil {
				if str, ok := tt.requestBody.(string); ok {
					body = []byte(str)
				} else {
					body, _ = json.Marshal(tt.requestBody)
				}
			}

			req := httptest.NewRequest(tt.method, "/api/query", bytes.NewReader(body))
			w := httptest.NewRecorder()
			h.Query(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectedStatus == http.StatusOK {
				var response models.QueryResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
				assert.Equal(t, tt.expectedCount, response.Count)
				assert.NotEmpty(t, response.Query)
			}
		})
	}
}

func TestIngest(t *testing.T) {
	h := newTestHandler(&mockRepository{}, &mockEventStore{})

	body, _ := json.Marshal(models.IngestRequest{
		Events: []models.Event{{EventType: "login", UserID: "alice"}},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/events", bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.Ingest(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response models.IngestResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, 1, response.Indexed)
}

func TestIngestValidation(t *testing.T) {
	h := newTestHandler(&mockRepository{}, &mockEventStore{})

	body, _ := json.Marshal(models.IngestRequest{})
	req := httptest.NewRequest(http.MethodPost, "/api/events", bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.Ingest(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateCase(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    interface{}
		expectedStatus int
	}{
		{
			name: "successful case creation",
			requestBody: models.CreateCaseRequest{
				Title:        "Data exfiltration review",
				Investigator: "Jordan Reyes",
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "missing title",
			requestBody:    models.CreateCaseRequest{Investigator: "Jordan Reyes"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid request body",
			requestBody:    "not json",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(&mockRepository{}, &mockEventStore{})

			var body []byte
			if str, ok := tt.requestBody.(string); ok {
				body = []byte(str)
			} else {
				body, _ = json.Marshal(tt.requestBody)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/cases", bytes.NewReader(body))
			w := httptest.NewRecorder()
			h.Cases(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectedStatus == http.StatusCreated {
				var response models.Case
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
				assert.NotEmpty(t, response.ID)
				assert.Equal(t, "open", response.Status)
			}
		})
	}
}

func TestListCases(t *testing.T) {
	repo := &mockRepository{
		listCasesFunc: func(ctx context.Context, status string, limit, offset int) ([]*models.Case, int, error) {
			assert.Equal(t, "open", status)
			assert.Equal(t, 10, limit)
			assert.Equal(t, 20, offset)
			return []*models.Case{openCase()}, 1, nil
		},
	}
	h := newTestHandler(repo, &mockEventStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/cases?status=open&limit=10&offset=20", nil)
	w := httptest.NewRecorder()
	h.Cases(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Cases []models.Case `json:"cases"`
		Total int           `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, 1, response.Total)
	require.Len(t, response.Cases, 1)
	assert.Equal(t, "case-001", response.Cases[0].ID)
}

func TestGetCase(t *testing.T) {
	repo := &mockRepository{
		getCaseFunc: func(ctx context.Context, id string) (*models.Case, error) {
			if id == "case-001" {
				return openCase(), nil
			}
			return nil, repository.ErrCaseNotFound
		},
	}
	h := newTestHandler(repo, &mockEventStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/cases/case-001", nil)
	w := httptest.NewRecorder()
	h.CaseByID(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/cases/missing", nil)
	w = httptest.NewRecorder()
	h.CaseByID(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateCase(t *testing.T) {
	updated := openCase()
	updated.Status = "closed"
	repo := &mockRepository{
		updateCaseFunc: func(ctx context.Context, id string, req *models.UpdateCaseRequest) (*models.Case, error) {
			require.NotNil(t, req.Status)
			assert.Equal(t, "closed", *req.Status)
			return updated, nil
		},
	}
	h := newTestHandler(repo, &mockEventStore{})

	body := []byte(`{"status": "closed"}`)
	req := httptest.NewRequest(http.MethodPatch, "/api/cases/case-001", bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.CaseByID(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response models.Case
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "closed", response.Status)
}

func TestTimeline(t *testing.T) {
	repo := &mockRepository{
		getCaseFunc: func(ctx context.Context, id string) (*models.Case, error) {
			return openCase(), nil
		},
	}
	store := &mockEventStore{
		fetchFunc: func(ctx context.Context, filter models.Filter) ([]models.Event, error) {
			return []models.Event{
				{ID: "ev-1", Timestamp: time.Date(2024, 5, 1, 2, 0, 0, 0, time.UTC), EventType: "login", UserID: "mallory", Status: "success"},
			}, nil
		},
	}
	h := newTestHandler(repo, store)

	body := []byte(`{"text": "login activity"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/cases/case-001/timeline", bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.CaseByID(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response models.CorrelatedTimeline
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "Forensic Timeline - 1 Events", response.Title)
	require.Len(t, response.Events, 1)
}

func TestTimelineEmptyBody(t *testing.T) {
	repo := &mockRepository{
		getCaseFunc: func(ctx context.Context, id string) (*models.Case, error) {
			return openCase(), nil
		},
	}
	h := newTestHandler(repo, &mockEventStore{})

	req := httptest.NewRequest(http.MethodPost, "/api/cases/case-001/timeline", nil)
	w := httptest.NewRecorder()
	h.CaseByID(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGenerateReport(t *testing.T) {
	repo := &mockRepository{
		getCaseFunc: func(ctx context.Context, id string) (*models.Case, error) {
			return openCase(), nil
		},
	}
	h := newTestHandler(repo, &mockEventStore{})

	req := httptest.NewRequest(http.MethodPost, "/api/cases/case-001/report", nil)
	w := httptest.NewRecorder()
	h.CaseByID(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response models.ForensicReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, models.FormatLegal, response.Format)
	assert.Contains(t, response.Content, "FORENSIC INVESTIGATION REPORT")
}

func TestGetReport(t *testing.T) {
	repo := &mockRepository{
		latestReportFunc: func(ctx context.Context, caseID string) (*models.ReportRecord, error) {
			return &models.ReportRecord{
				ID:      "rep-1",
				CaseID:  caseID,
				Format:  models.FormatLegal,
				Content: "# FORENSIC INVESTIGATION REPORT\n\nbody",
			}, nil
		},
	}
	h := newTestHandler(repo, &mockEventStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/cases/case-001/report", nil)
	w := httptest.NewRecorder()
	h.CaseByID(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/markdown; charset=utf-8", w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "# FORENSIC INVESTIGATION REPORT"))
}

func TestGetReportNotFound(t *testing.T) {
	h := newTestHandler(&mockRepository{
		getCaseFunc: func(ctx context.Context, id string) (*models.Case, error) {
			return openCase(), nil
		},
	}, &mockEventStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/cases/case-001/report", nil)
	w := httptest.NewRecorder()
	h.CaseByID(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCaseByIDUnknownSubresource(t *testing.T) {
	h := newTestHandler(&mockRepository{}, &mockEventStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/cases/case-001/evidence", nil)
	w := httptest.NewRecorder()
	h.CaseByID(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
