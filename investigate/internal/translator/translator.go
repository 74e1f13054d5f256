// Package translator converts free-text investigator questions into
// structured event filters. There is no grammar: translation is a flat,
// ordered chain of keyword and regex detectors, each contributing at most
// one condition. Detector order determines condition order in the output.
package translator

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/casetrace-systems/casetrace/investigate/internal/models"
)

var (
	countryRe = regexp.MustCompile(`from\s+(?:outside\s+)?(?:the\s+)?([a-z\s]+?)(?:\s+between|\s+that|\s+in|\s+with|$)`)
	hoursRe   = regexp.MustCompile(`between\s+(\d+)\s*(am|pm)?\s*and\s+(\d+)\s*(am|pm)?`)
	ipRe      = regexp.MustCompile(`ip\s+(?:address\s+)?(?:is\s+)?([0-9.]+)`)
	userRe    = regexp.MustCompile(`user\s+(?:id\s+)?(?:is\s+)?['"]?([a-z0-9_]+)['"]?`)
)

// detector inspects the lowered query text and appends to the filter.
// Detectors are independent: several may fire on one query and every
// fired detector keeps its condition.
type detector struct {
	name  string
	apply func(text string, f *models.Filter)
}

// detectors run in this fixed order. Appending new entries is safe;
// reordering changes the condition order in translated output.
var detectors = []detector{
	{name: "login", apply: func(text string, f *models.Filter) {
		if strings.Contains(text, "login") || strings.Contains(text, "login attempt") {
			f.Conditions = append(f.Conditions, models.Condition{Field: "event_type", Operator: "=", Value: models.EventLogin})
		}
	}},
	{name: "download", apply: func(text string, f *models.Filter) {
		if strings.Contains(text, "file download") || strings.Contains(text, "download") {
			f.Conditions = append(f.Conditions, models.Condition{Field: "action", Operator: "=", Value: "file_download"})
		}
	}},
	{name: "file_access", apply: func(text string, f *models.Filter) {
		if strings.Contains(text, "file access") || strings.Contains(text, "file read") {
			f.Conditions = append(f.Conditions, models.Condition{Field: "event_type", Operator: "=", Value: models.EventFileAccess})
		}
	}},
	{name: "success", apply: func(text string, f *models.Filter) {
		if strings.Contains(text, "successful") || strings.Contains(text, "succeeded") {
			f.Conditions = append(f.Conditions, models.Condition{Field: "status", Operator: "=", Value: models.StatusSuccess})
		}
	}},
	{name: "failed", apply: func(text string, f *models.Filter) {
		if strings.Contains(text, "failed") || strings.Contains(text, "failure") {
			f.Conditions = append(f.Conditions, models.Condition{Field: "status", Operator: "=", Value: models.StatusFailed})
		}
	}},
	{name: "country", apply: detectCountry},
	{name: "hours", apply: detectHourRange},
	{name: "ip", apply: func(text string, f *models.Filter) {
		if m := ipRe.FindStringSubmatch(text); m != nil {
			f.Conditions = append(f.Conditions, models.Condition{Field: "ip_address", Operator: "=", Value: m[1]})
		}
	}},
	{name: "user", apply: func(text string, f *models.Filter) {
		if m := userRe.FindStringSubmatch(text); m != nil {
			f.Conditions = append(f.Conditions, models.Condition{Field: "user_id", Operator: "=", Value: m[1]})
		}
	}},
}

// detectCountry implements the deliberately crude geocoding heuristic:
// the place name is truncated to its first two letters and upper-cased,
// so "from russia" yields country = "RU". This is not ISO-3166 lookup
// and must not become one; stored events use the same convention.
func detectCountry(text string, f *models.Filter) {
	m := countryRe.FindStringSubmatch(text)
	if m == nil {
		return
	}
	place := strings.TrimSpace(m[1])
	if place == "outside the us" || place == "outside us" {
		f.Conditions = append(f.Conditions, models.Condition{Field: "country", Operator: "!=", Value: "US"})
		return
	}
	code := strings.ToUpper(place)
	if len(code) > 2 {
		code = code[:2]
	}
	f.Conditions = append(f.Conditions, models.Condition{Field: "country", Operator: "=", Value: code})
}

// detectHourRange parses "between N(am|pm)? and M(am|pm)?" into an
// inclusive hour window. The am/pm suffix found is applied to both
// bounds, except that an explicit "am" on the start keeps the start in
// the morning even when the end is "pm".
func detectHourRange(text string, f *models.Filter) {
	m := hoursRe.FindStringSubmatch(text)
	if m == nil {
		return
	}

	start, err := strconv.Atoi(m[1])
	if err != nil {
		return
	}
	end, err := strconv.Atoi(m[3])
	if err != nil {
		return
	}
	startPeriod := m[2]
	period := m[4]
	if period == "" {
		period = startPeriod
	}

	if period == "pm" && end < 12 {
		end += 12
	}
	if period == "am" && start == 12 {
		start = 0
	}
	if period == "pm" && startPeriod != "am" && start < 12 && start < end {
		start += 12
	}

	f.HourRange = &models.HourRange{
		Start: fmt.Sprintf("%02d:00:00", start),
		End:   fmt.Sprintf("%02d:00:00", end),
	}
}

// Translate converts a free-text query to a structured filter plus a
// rendered declarative query string for audit display. It never fails:
// input matching no detector yields an unconditioned match-everything
// filter. Ordering and limit are fixed regardless of detected conditions.
func Translate(text string) (models.Filter, string) {
	lowered := strings.ToLower(text)

	filter := models.Filter{
		OrderBy: "timestamp",
		Limit:   100,
	}
	for _, d := range detectors {
		d.apply(lowered, &filter)
	}

	return filter, Render(filter)
}

// Render builds the audit query string for a filter. The string is for
// display and logging only; it is never parsed back or executed.
func Render(f models.Filter) string {
	var b strings.Builder
	b.WriteString("SELECT * FROM forensic_events WHERE true")

	for _, c := range f.Conditions {
		switch v := c.Value.(type) {
		case string:
			fmt.Fprintf(&b, " AND %s %s '%s'", c.Field, c.Operator, v)
		default:
			fmt.Fprintf(&b, " AND %s %s %v", c.Field, c.Operator, v)
		}
	}

	if f.HourRange != nil {
		if f.HourRange.Start != "" {
			fmt.Fprintf(&b, " AND EXTRACT(HOUR FROM timestamp) >= %d", leadingHour(f.HourRange.Start))
		}
		if f.HourRange.End != "" {
			fmt.Fprintf(&b, " AND EXTRACT(HOUR FROM timestamp) <= %d", leadingHour(f.HourRange.End))
		}
	}

	if f.OrderBy != "" {
		fmt.Fprintf(&b, " ORDER BY %s DESC", f.OrderBy)
	}
	if f.Limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", f.Limit)
	}

	return b.String()
}

// leadingHour extracts the numeric hour from an "HH:00:00" string,
// ignoring minutes and seconds.
func leadingHour(s string) int {
	if i := strings.IndexByte(s, ':'); i >= 0 {
		s = s[:i]
	}
	n, _ := strconv.Atoi(s)
	return n
}
