package messaging

// Subject constants for the casetrace message bus.
// Follow the pattern: {domain}.{resource}.{action}
const (
	// Investigation audit trail subjects - published by the investigate service
	SubjectInvestigateQueryExecuted    = "investigate.query.executed"    // NL query translated and run
	SubjectInvestigateTimelineCreated  = "investigate.timeline.created"  // Correlated timeline generated
	SubjectInvestigateReportGenerated  = "investigate.report.generated"  // Forensic report synthesized
	SubjectInvestigateEventsIngested   = "investigate.events.ingested"   // Events indexed into the store

	// Case lifecycle subjects
	SubjectCasesCreated = "cases.created" // New investigation opened
	SubjectCasesUpdated = "cases.updated" // Case status or metadata changed
)

// Queue group names for load-balanced consumers.
const (
	QueueAuditWorkers = "audit-workers" // Pool of audit trail consumers
)

// CaseSubject returns the subject scoped to a specific case.
// Example: investigate.report.generated.7f3c...
func CaseSubject(base, caseID string) string {
	return base + "." + caseID
}
