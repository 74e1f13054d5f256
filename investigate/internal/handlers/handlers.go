// Package handlers exposes the investigation API over HTTP.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/casetrace-systems/casetrace/common/httputil"
	"github.com/casetrace-systems/casetrace/common/logging"
	"github.com/casetrace-systems/casetrace/investigate/internal/models"
	"github.com/casetrace-systems/casetrace/investigate/internal/repository"
	"github.com/casetrace-systems/casetrace/investigate/internal/service"
)

type Handler struct {
	service *service.InvestigationService
	logger  *logging.Logger
}

func NewHandler(svc *service.InvestigationService, logger *logging.Logger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// Health handles GET /healthz.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// Query handles POST /api/query.
func (h *Handler) Query(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req models.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		httputil.WriteError(w, http.StatusBadRequest, "Query text is required")
		return
	}

	resp, err := h.service.ExecuteQuery(r.Context(), &req)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "query execution failed", logging.Query(req.Text), logging.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "Failed to execute query")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}

// Ingest handles POST /api/events.
func (h *Handler) Ingest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req models.IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.service.IngestEvents(r.Context(), req.Events)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			httputil.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.ErrorContext(r.Context(), "event ingestion failed", logging.EventCount(len(req.Events)), logging.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "Failed to ingest events")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}

// Cases handles POST and GET on /api/cases.
func (h *Handler) Cases(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.createCase(w, r)
	case http.MethodGet:
		h.listCases(w, r)
	default:
		httputil.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *Handler) createCase(w http.ResponseWriter, r *http.Request) {
	var req models.CreateCaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	c, err := h.service.CreateCase(r.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			httputil.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.ErrorContext(r.Context(), "case creation failed", logging.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "Failed to create case")
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, c)
}

func (h *Handler) listCases(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	limit := parseInt(r.URL.Query().Get("limit"), 50)
	offset := parseInt(r.URL.Query().Get("offset"), 0)

	cases, total, err := h.service.ListCases(r.Context(), status, limit, offset)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "case listing failed", logging.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "Failed to list cases")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"cases":  cases,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// CaseByID dispatches /api/cases/{id} and its subresources.
func (h *Handler) CaseByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/cases/")
	if rest == "" {
		httputil.WriteError(w, http.StatusBadRequest, "Case ID required")
		return
	}

	id, sub, _ := strings.Cut(rest, "/")
	switch sub {
	case "":
		h.caseResource(w, r, id)
	case "timeline":
		h.timeline(w, r, id)
	case "report":
		h.report(w, r, id)
	default:
		httputil.WriteError(w, http.StatusNotFound, "Not found")
	}
}

func (h *Handler) caseResource(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		c, err := h.service.GetCase(r.Context(), id)
		if err != nil {
			h.writeCaseError(w, r, id, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, c)
	case http.MethodPatch:
		var req models.UpdateCaseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.WriteError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		c, err := h.service.UpdateCase(r.Context(), id, &req)
		if err != nil {
			h.writeCaseError(w, r, id, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, c)
	default:
		httputil.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *Handler) timeline(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		httputil.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	text, ok := h.readText(w, r)
	if !ok {
		return
	}

	timeline, err := h.service.BuildTimeline(r.Context(), id, text)
	if err != nil {
		h.writeCaseError(w, r, id, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, timeline)
}

func (h *Handler) report(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodPost:
		text, ok := h.readText(w, r)
		if !ok {
			return
		}
		rep, err := h.service.GenerateReport(r.Context(), id, text)
		if err != nil {
			h.writeCaseError(w, r, id, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, rep)
	case http.MethodGet:
		rec, err := h.service.GetReport(r.Context(), id)
		if err != nil {
			if errors.Is(err, repository.ErrReportNotFound) {
				httputil.WriteError(w, http.StatusNotFound, "No report generated for this case")
				return
			}
			h.writeCaseError(w, r, id, err)
			return
		}
		httputil.WriteText(w, http.StatusOK, rec.Content)
	default:
		httputil.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// readText decodes the optional {"text": ...} body. An empty body is
// treated as an empty query, which translates to a match-all fetch.
func (h *Handler) readText(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		httputil.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return "", false
	}
	return req.Text, true
}

func (h *Handler) writeCaseError(w http.ResponseWriter, r *http.Request, id string, err error) {
	switch {
	case errors.Is(err, repository.ErrCaseNotFound):
		httputil.WriteError(w, http.StatusNotFound, "Case not found")
	case errors.Is(err, service.ErrValidation):
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "case request failed", logging.CaseID(id), logging.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func parseInt(s string, defaultVal int) int {
	if s == "" {
		return defaultVal
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return defaultVal
}
