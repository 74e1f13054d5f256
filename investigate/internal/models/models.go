package models

import "time"

// Event types recorded in the forensic event store.
const (
	EventLogin      = "login"
	EventFileAccess = "file_access"
	EventNetwork    = "network"
)

// Event outcome statuses. The field is free-form so collectors can add
// their own values; these two drive pattern detection.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Event is a single recorded security occurrence. Events are immutable
// facts owned by the event store; the core only annotates copies.
type Event struct {
	ID        string                 `json:"id"`
	EventType string                 `json:"event_type"`
	Timestamp time.Time              `json:"timestamp"`
	UserID    string                 `json:"user_id,omitempty"`
	IPAddress string                 `json:"ip_address,omitempty"`
	Country   string                 `json:"country,omitempty"`
	Action    string                 `json:"action"`
	Resource  string                 `json:"resource,omitempty"`
	Status    string                 `json:"status"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Condition is one field/operator/value test against stored events.
// Operator is one of =, !=, >, <.
type Condition struct {
	Field    string      `json:"field"`
	Operator string      `json:"operator"`
	Value    interface{} `json:"value"`
}

// HourRange is an inclusive hour-of-day window. Start and End are
// zero-padded "HH:00:00" strings; only the hour component is meaningful.
type HourRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Filter is the structured form of a translated query: an ordered list of
// conditions plus ordering and a result cap. Built fresh per query and
// consumed immediately by the event store gateway.
type Filter struct {
	Conditions []Condition `json:"conditions"`
	HourRange  *HourRange  `json:"hour_range,omitempty"`
	OrderBy    string      `json:"order_by"`
	Limit      int         `json:"limit"`
}

// TimelineEvent is an Event enriched with a generated narrative line and
// the IDs of related events (same user or IP within a 30-minute window).
type TimelineEvent struct {
	Event
	Narrative     string   `json:"narrative"`
	RelatedEvents []string `json:"related_events,omitempty"`
}

// CorrelatedTimeline is a chronologically ordered, pattern-annotated view
// over a set of events. Events are ordered non-decreasing by timestamp.
type CorrelatedTimeline struct {
	Title     string          `json:"title"`
	Events    []TimelineEvent `json:"events"`
	Narrative string          `json:"narrative"`
	Patterns  []string        `json:"patterns"`
}

// Case is the investigator-owned record a timeline and report are
// produced for.
type Case struct {
	ID           string                 `json:"id"`
	Title        string                 `json:"title"`
	Description  string                 `json:"description,omitempty"`
	Status       string                 `json:"status"`
	Investigator string                 `json:"investigator"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
	Findings     map[string]interface{} `json:"findings,omitempty"`
}

// Report formats. Only legal is produced today; the others are reserved
// for future variants.
const (
	FormatLegal     = "legal"
	FormatTechnical = "technical"
	FormatExecutive = "executive"
)

// ForensicReport is the rendered investigation document plus its
// standalone metadata blocks. Immutable after creation.
type ForensicReport struct {
	Format            string    `json:"format"`
	Content           string    `json:"content"`
	Methodology       string    `json:"methodology"`
	EvidenceIntegrity string    `json:"evidence_integrity"`
	GeneratedAt       time.Time `json:"generated_at"`
}

// QueryRecord is an audit trail row for an executed query.
type QueryRecord struct {
	ID              string    `json:"id"`
	CaseID          string    `json:"case_id,omitempty"`
	NaturalLanguage string    `json:"natural_language"`
	RenderedQuery   string    `json:"rendered_query"`
	ResultsCount    int       `json:"results_count"`
	Signature       string    `json:"signature,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// TimelineRecord is an audit trail row for a generated timeline.
type TimelineRecord struct {
	ID        string    `json:"id"`
	CaseID    string    `json:"case_id,omitempty"`
	Title     string    `json:"title"`
	EventIDs  []string  `json:"event_ids"`
	Narrative string    `json:"narrative"`
	Signature string    `json:"signature,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ReportRecord is an audit trail row for a generated report.
type ReportRecord struct {
	ID                string    `json:"id"`
	CaseID            string    `json:"case_id"`
	Format            string    `json:"format"`
	Content           string    `json:"content"`
	Methodology       string    `json:"methodology"`
	EvidenceIntegrity string    `json:"evidence_integrity"`
	Signature         string    `json:"signature,omitempty"`
	GeneratedAt       time.Time `json:"generated_at"`
}

// CreateCaseRequest opens a new investigation.
type CreateCaseRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	Investigator string `json:"investigator"`
}

// UpdateCaseRequest applies partial updates to a case.
type UpdateCaseRequest struct {
	Title       *string                `json:"title,omitempty"`
	Description *string                `json:"description,omitempty"`
	Status      *string                `json:"status,omitempty"`
	Findings    map[string]interface{} `json:"findings,omitempty"`
}

// QueryRequest is a free-text question against the event store.
type QueryRequest struct {
	CaseID string `json:"case_id,omitempty"`
	Text   string `json:"text"`
}

// QueryResponse carries the translated query and its results.
type QueryResponse struct {
	Query      string      `json:"query"`
	Conditions []Condition `json:"conditions"`
	Count      int         `json:"count"`
	Events     []Event     `json:"events"`
}

// IngestRequest is a batch of events to index.
type IngestRequest struct {
	Events []Event `json:"events"`
}

// IngestResponse reports how many events were indexed and which failed.
type IngestResponse struct {
	Indexed int      `json:"indexed"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}
