// Package correlation turns a set of forensic events into a
// chronologically ordered, pattern-annotated timeline. Correlation is a
// pure in-memory computation: the relatedness scan is O(n²) over the
// event set by design, which bounds practical input to the query layer's
// result cap. Callers wanting larger volumes should page their queries.
package correlation

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/casetrace-systems/casetrace/investigate/internal/models"
)

// relatedWindow is the maximum distance between two events for them to
// be considered part of the same activity burst.
const relatedWindow = 30 * time.Minute

// narrativeTimeLayout renders timestamps in event narratives.
const narrativeTimeLayout = "1/2/2006, 3:04:05 PM"

// Correlate builds a timeline from the given events. It is total over
// any finite event set, including the empty one, and never fails.
func Correlate(events []models.Event) models.CorrelatedTimeline {
	sorted := make([]models.Event, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	timeline := make([]models.TimelineEvent, len(sorted))
	for i, ev := range sorted {
		timeline[i] = models.TimelineEvent{
			Event:         ev,
			Narrative:     eventNarrative(ev),
			RelatedEvents: findRelated(ev, sorted),
		}
	}

	patterns := detectPatterns(timeline)
	narrative := overallNarrative(timeline, patterns)

	return models.CorrelatedTimeline{
		Title:     fmt.Sprintf("Forensic Timeline - %d Events", len(sorted)),
		Events:    timeline,
		Narrative: narrative,
		Patterns:  patterns,
	}
}

// eventNarrative produces the one-line story for a single event,
// dispatched on event type.
func eventNarrative(ev models.Event) string {
	ts := ev.Timestamp.Format(narrativeTimeLayout)
	user := ev.UserID
	if user == "" {
		user = "Unknown user"
	}
	location := "from unknown location"
	if ev.Country != "" {
		location = "from " + ev.Country
	}
	ip := ""
	if ev.IPAddress != "" {
		ip = " (" + ev.IPAddress + ")"
	}

	switch ev.EventType {
	case models.EventLogin:
		return fmt.Sprintf("%s: %s attempted login %s%s - %s", ts, user, location, ip, ev.Status)
	case models.EventFileAccess:
		resource := ev.Resource
		if resource == "" {
			resource = "unknown file"
		}
		return fmt.Sprintf("%s: %s %s on %s %s%s - %s", ts, user, ev.Action, resource, location, ip, ev.Status)
	case models.EventNetwork:
		return fmt.Sprintf("%s: Network activity by %s - %s %s%s", ts, user, ev.Action, location, ip)
	default:
		return fmt.Sprintf("%s: %s event by %s %s%s", ts, ev.EventType, user, location, ip)
	}
}

// findRelated scans every other event and keeps those sharing a
// non-empty user ID or IP address within the 30-minute window. The scan
// is computed independently per event from the full set, so the relation
// is symmetric in practice. Self-exclusion is by identifier, not index:
// duplicate IDs exclude each other too.
func findRelated(ev models.Event, all []models.Event) []string {
	var related []string
	for _, other := range all {
		if other.ID == ev.ID {
			continue
		}

		delta := ev.Timestamp.Sub(other.Timestamp)
		if delta < 0 {
			delta = -delta
		}

		sameUser := ev.UserID != "" && other.UserID == ev.UserID
		sameIP := ev.IPAddress != "" && other.IPAddress == ev.IPAddress

		if (sameUser || sameIP) && delta < relatedWindow {
			related = append(related, other.ID)
		}
	}
	return related
}

// overallNarrative assembles the consolidated Markdown document: a
// header with count and time span, the detected patterns, then the full
// event sequence with relatedness annotations.
func overallNarrative(events []models.TimelineEvent, patterns []string) string {
	var b strings.Builder

	b.WriteString("# Forensic Timeline Analysis\n\n")
	fmt.Fprintf(&b, "**Total Events**: %d\n", len(events))
	fmt.Fprintf(&b, "**Time Range**: %s to %s\n\n", spanEdge(events, 0), spanEdge(events, len(events)-1))

	if len(patterns) > 0 {
		b.WriteString("## Detected Patterns\n\n")
		for i, p := range patterns {
			fmt.Fprintf(&b, "%d. %s\n", i+1, p)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Event Sequence\n\n")
	for i, ev := range events {
		fmt.Fprintf(&b, "**Event %d**: %s\n", i+1, ev.Narrative)
		if len(ev.RelatedEvents) > 0 {
			fmt.Fprintf(&b, "   *Related to %d other event(s)*\n", len(ev.RelatedEvents))
		}
		b.WriteString("\n")
	}

	return b.String()
}

// spanEdge formats the timestamp at index i, or an invalid-date
// placeholder when the timeline is empty.
func spanEdge(events []models.TimelineEvent, i int) string {
	if i < 0 || i >= len(events) {
		return "Invalid Date"
	}
	return events[i].Timestamp.Format(narrativeTimeLayout)
}
