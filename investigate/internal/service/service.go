// Package service orchestrates the investigation pipeline: query
// translation, event retrieval, correlation, report synthesis, case
// management, and the audit trail around all of it.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/casetrace-systems/casetrace/common/audit"
	"github.com/casetrace-systems/casetrace/common/logging"
	"github.com/casetrace-systems/casetrace/common/messaging"
	"github.com/casetrace-systems/casetrace/investigate/internal/cache"
	"github.com/casetrace-systems/casetrace/investigate/internal/correlation"
	"github.com/casetrace-systems/casetrace/investigate/internal/gateway"
	"github.com/casetrace-systems/casetrace/investigate/internal/metrics"
	"github.com/casetrace-systems/casetrace/investigate/internal/models"
	"github.com/casetrace-systems/casetrace/investigate/internal/report"
	"github.com/casetrace-systems/casetrace/investigate/internal/repository"
	"github.com/casetrace-systems/casetrace/investigate/internal/translator"
)

var ErrValidation = errors.New("validation failed")

// InvestigationService wires the core pipeline to its collaborators.
// The publisher is optional: a nil publisher disables audit broadcasting
// without affecting the pipeline.
type InvestigationService struct {
	repo      repository.Repository
	events    gateway.EventStore
	reports   *cache.ReportCache
	synth     *report.Synthesizer
	signer    *audit.RecordSigner
	publisher messaging.Publisher
	logger    *logging.Logger
}

// NewService creates the investigation service.
func NewService(
	repo repository.Repository,
	events gateway.EventStore,
	reports *cache.ReportCache,
	synth *report.Synthesizer,
	signer *audit.RecordSigner,
	publisher messaging.Publisher,
	logger *logging.Logger,
) *InvestigationService {
	return &InvestigationService{
		repo:      repo,
		events:    events,
		reports:   reports,
		synth:     synth,
		signer:    signer,
		publisher: publisher,
		logger:    logger,
	}
}

// ExecuteQuery translates a free-text question, fetches matching events,
// and records the execution in the audit trail. Event store failures
// degrade to an empty result set rather than failing the query.
func (s *InvestigationService) ExecuteQuery(ctx context.Context, req *models.QueryRequest) (*models.QueryResponse, error) {
	filter, rendered := translator.Translate(req.Text)
	metrics.QueriesTranslated.Inc()

	fetched := s.fetchDegraded(ctx, filter)

	rec := &models.QueryRecord{
		ID:              newID(),
		CaseID:          req.CaseID,
		NaturalLanguage: req.Text,
		RenderedQuery:   rendered,
		ResultsCount:    len(fetched),
		CreatedAt:       time.Now().UTC(),
	}
	rec.Signature = s.sign(rec.ID, rec.CreatedAt, rec.CaseID, []byte(rec.NaturalLanguage+"\n"+rec.RenderedQuery))

	if err := s.repo.RecordQuery(ctx, rec); err != nil {
		s.logger.ErrorContext(ctx, "failed to record query execution", logging.Error(err))
	}
	s.publish(ctx, messaging.SubjectInvestigateQueryExecuted, rec)

	return &models.QueryResponse{
		Query:      rendered,
		Conditions: filter.Conditions,
		Count:      len(fetched),
		Events:     fetched,
	}, nil
}

// BuildTimeline fetches events for the given question and correlates
// them into a timeline for the case.
func (s *InvestigationService) BuildTimeline(ctx context.Context, caseID, text string) (*models.CorrelatedTimeline, error) {
	c, err := s.repo.GetCase(ctx, caseID)
	if err != nil {
		return nil, err
	}

	filter, _ := translator.Translate(text)
	fetched, err := s.fetch(ctx, filter)
	if err != nil {
		return nil, err
	}

	timeline := correlation.Correlate(fetched)
	metrics.TimelinesGenerated.Inc()
	metrics.PatternsDetected.Add(float64(len(timeline.Patterns)))

	rec := &models.TimelineRecord{
		ID:        newID(),
		CaseID:    c.ID,
		Title:     timeline.Title,
		EventIDs:  eventIDs(timeline.Events),
		Narrative: timeline.Narrative,
		CreatedAt: time.Now().UTC(),
	}
	rec.Signature = s.sign(rec.ID, rec.CreatedAt, rec.CaseID, []byte(rec.Narrative))

	if err := s.repo.RecordTimeline(ctx, rec); err != nil {
		s.logger.ErrorContext(ctx, "failed to record timeline", logging.CaseID(caseID), logging.Error(err))
	}
	s.publish(ctx, messaging.SubjectInvestigateTimelineCreated, rec)

	return &timeline, nil
}

// GenerateReport runs the full pipeline for a case and stores the
// rendered report in the audit trail and the cache.
func (s *InvestigationService) GenerateReport(ctx context.Context, caseID, text string) (*models.ForensicReport, error) {
	c, err := s.repo.GetCase(ctx, caseID)
	if err != nil {
		return nil, err
	}

	filter, _ := translator.Translate(text)
	fetched, err := s.fetch(ctx, filter)
	if err != nil {
		return nil, err
	}

	timeline := correlation.Correlate(fetched)
	rep := s.synth.Synthesize(*c, timeline, fetched)
	metrics.ReportsGenerated.WithLabelValues(rep.Format).Inc()

	rec := &models.ReportRecord{
		ID:                newID(),
		CaseID:            c.ID,
		Format:            rep.Format,
		Content:           rep.Content,
		Methodology:       rep.Methodology,
		EvidenceIntegrity: rep.EvidenceIntegrity,
		GeneratedAt:       rep.GeneratedAt,
	}
	rec.Signature = s.sign(rec.ID, rec.GeneratedAt, rec.CaseID, []byte(rec.Content))

	if err := s.repo.RecordReport(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to store report: %w", err)
	}
	if err := s.reports.Set(ctx, c.ID, rec); err != nil {
		s.logger.WarnContext(ctx, "failed to cache report", logging.CaseID(caseID), logging.Error(err))
	}
	s.publish(ctx, messaging.SubjectInvestigateReportGenerated, rec)

	return &rep, nil
}

// GetReport returns the most recent report for a case, preferring the
// cache over the audit trail.
func (s *InvestigationService) GetReport(ctx context.Context, caseID string) (*models.ReportRecord, error) {
	cached, hit, err := s.reports.Get(ctx, caseID)
	if err != nil {
		s.logger.WarnContext(ctx, "report cache read failed", logging.CaseID(caseID), logging.Error(err))
	}
	if hit {
		metrics.ReportCacheHits.Inc()
		return cached, nil
	}
	metrics.ReportCacheMisses.Inc()

	rec, err := s.repo.LatestReport(ctx, caseID)
	if err != nil {
		return nil, err
	}

	if err := s.reports.Set(ctx, caseID, rec); err != nil {
		s.logger.WarnContext(ctx, "failed to cache report", logging.CaseID(caseID), logging.Error(err))
	}

	return rec, nil
}

// IngestEvents bulk-indexes events into the event store, assigning IDs
// and timestamps where missing.
func (s *InvestigationService) IngestEvents(ctx context.Context, events []models.Event) (*models.IngestResponse, error) {
	if len(events) == 0 {
		return nil, fmt.Errorf("%w: no events provided", ErrValidation)
	}

	now := time.Now().UTC()
	for i := range events {
		if events[i].ID == "" {
			events[i].ID = newID()
		}
		if events[i].Timestamp.IsZero() {
			events[i].Timestamp = now
		}
		if events[i].EventType == "" {
			return nil, fmt.Errorf("%w: event %s missing event_type", ErrValidation, events[i].ID)
		}
	}

	result, err := s.events.Index(ctx, events)
	if err != nil {
		return nil, fmt.Errorf("failed to index events: %w", err)
	}

	metrics.EventsIngested.WithLabelValues("indexed").Add(float64(result.Indexed))
	metrics.EventsIngested.WithLabelValues("failed").Add(float64(result.Failed))

	s.publish(ctx, messaging.SubjectInvestigateEventsIngested, result)

	return &models.IngestResponse{
		Indexed: result.Indexed,
		Failed:  result.Failed,
		Errors:  result.Errors,
	}, nil
}

// CreateCase opens a new investigation.
func (s *InvestigationService) CreateCase(ctx context.Context, req *models.CreateCaseRequest) (*models.Case, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if strings.TrimSpace(req.Investigator) == "" {
		return nil, fmt.Errorf("%w: investigator is required", ErrValidation)
	}

	now := time.Now().UTC()
	c := &models.Case{
		ID:           newID(),
		Title:        req.Title,
		Description:  req.Description,
		Status:       "open",
		Investigator: req.Investigator,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.CreateCase(ctx, c); err != nil {
		return nil, err
	}

	s.publish(ctx, messaging.CaseSubject(messaging.SubjectCasesCreated, c.ID), c)
	return c, nil
}

// GetCase retrieves a case by ID.
func (s *InvestigationService) GetCase(ctx context.Context, id string) (*models.Case, error) {
	return s.repo.GetCase(ctx, id)
}

// ListCases returns cases newest first with an optional status filter.
func (s *InvestigationService) ListCases(ctx context.Context, status string, limit, offset int) ([]*models.Case, int, error) {
	return s.repo.ListCases(ctx, status, limit, offset)
}

// UpdateCase applies a partial update and invalidates the cached report,
// which embeds case metadata.
func (s *InvestigationService) UpdateCase(ctx context.Context, id string, req *models.UpdateCaseRequest) (*models.Case, error) {
	c, err := s.repo.UpdateCase(ctx, id, req)
	if err != nil {
		return nil, err
	}

	if err := s.reports.Invalidate(ctx, id); err != nil {
		s.logger.WarnContext(ctx, "failed to invalidate cached report", logging.CaseID(id), logging.Error(err))
	}

	s.publish(ctx, messaging.CaseSubject(messaging.SubjectCasesUpdated, c.ID), c)
	return c, nil
}

// fetch queries the event store, recording fetch metrics.
func (s *InvestigationService) fetch(ctx context.Context, filter models.Filter) ([]models.Event, error) {
	start := time.Now()
	fetched, err := s.events.Fetch(ctx, filter)
	metrics.FetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.FetchErrors.Inc()
		return nil, fmt.Errorf("failed to fetch events: %w", err)
	}
	metrics.EventsFetched.Add(float64(len(fetched)))
	return fetched, nil
}

// fetchDegraded queries the event store but maps failure to an empty
// result set. Queries always produce an answer; the failure is logged
// and counted.
func (s *InvestigationService) fetchDegraded(ctx context.Context, filter models.Filter) []models.Event {
	fetched, err := s.fetch(ctx, filter)
	if err != nil {
		s.logger.ErrorContext(ctx, "event fetch failed, returning empty result set", logging.Error(err))
		return []models.Event{}
	}
	return fetched
}

// sign computes the audit signature, or empty when signing is disabled.
func (s *InvestigationService) sign(recordID string, at time.Time, caseID string, payload []byte) string {
	if s.signer == nil {
		return ""
	}
	return s.signer.Sign(recordID, at, caseID, payload)
}

// publish broadcasts an audit payload, best effort.
func (s *InvestigationService) publish(ctx context.Context, subject string, payload interface{}) {
	if s.publisher == nil {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to marshal audit payload", "subject", subject, logging.Error(err))
		return
	}
	if err := s.publisher.Publish(ctx, subject, data); err != nil {
		s.logger.WarnContext(ctx, "failed to publish audit message", "subject", subject, logging.Error(err))
	}
}

func eventIDs(events []models.TimelineEvent) []string {
	ids := make([]string, len(events))
	for i, ev := range events {
		ids[i] = ev.ID
	}
	return ids
}

// newID returns a time-ordered UUID, falling back to random on failure.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
