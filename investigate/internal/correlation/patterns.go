package correlation

import (
	"fmt"

	"github.com/casetrace-systems/casetrace/investigate/internal/models"
)

// patternRule evaluates one suspicious-behavior heuristic over the full
// timeline and returns zero or more human-readable findings.
type patternRule struct {
	name   string
	detect func(events []models.TimelineEvent) []string
}

// patternRules run in this fixed order; output order follows rule order.
// Append new rules at the end so existing finding order stays stable.
var patternRules = []patternRule{
	{name: "foreign_logins", detect: detectForeignLogins},
	{name: "failed_logins", detect: detectFailedLogins},
	{name: "off_hours", detect: detectOffHours},
	{name: "downloads", detect: detectDownloads},
	{name: "login_then_download", detect: detectLoginThenDownload},
}

// detectPatterns applies every rule independently and concatenates the
// findings in rule order.
func detectPatterns(events []models.TimelineEvent) []string {
	var patterns []string
	for _, rule := range patternRules {
		patterns = append(patterns, rule.detect(events)...)
	}
	return patterns
}

func detectForeignLogins(events []models.TimelineEvent) []string {
	count := 0
	for _, ev := range events {
		if ev.EventType == models.EventLogin && ev.Country != "" && ev.Country != "US" {
			count++
		}
	}
	if count == 0 {
		return nil
	}
	return []string{fmt.Sprintf("%d login attempt(s) from foreign IP addresses detected", count)}
}

func detectFailedLogins(events []models.TimelineEvent) []string {
	count := 0
	for _, ev := range events {
		if ev.EventType == models.EventLogin && ev.Status == models.StatusFailed {
			count++
		}
	}
	if count < 3 {
		return nil
	}
	return []string{fmt.Sprintf("Multiple failed login attempts detected (%d attempts)", count)}
}

func detectOffHours(events []models.TimelineEvent) []string {
	count := 0
	for _, ev := range events {
		hour := ev.Timestamp.Hour()
		if hour >= 0 && hour <= 5 {
			count++
		}
	}
	if count == 0 {
		return nil
	}
	return []string{fmt.Sprintf("%d event(s) occurred during off-hours (12 AM - 5 AM)", count)}
}

func detectDownloads(events []models.TimelineEvent) []string {
	count := 0
	for _, ev := range events {
		if ev.Action == "file_download" {
			count++
		}
	}
	if count == 0 {
		return nil
	}
	return []string{fmt.Sprintf("%d file download(s) detected", count)}
}

// detectLoginThenDownload flags users with both a successful login and a
// file download anywhere in the set, regardless of order or proximity.
// The wording mentions a foreign location but the check deliberately does
// not require one; downstream tooling keys on the message text as-is.
func detectLoginThenDownload(events []models.TimelineEvent) []string {
	var order []string
	grouped := make(map[string][]models.TimelineEvent)
	for _, ev := range events {
		if ev.UserID == "" {
			continue
		}
		if _, seen := grouped[ev.UserID]; !seen {
			order = append(order, ev.UserID)
		}
		grouped[ev.UserID] = append(grouped[ev.UserID], ev)
	}

	var findings []string
	for _, userID := range order {
		var loginSuccess, fileDownload bool
		for _, ev := range grouped[userID] {
			if ev.EventType == models.EventLogin && ev.Status == models.StatusSuccess {
				loginSuccess = true
			}
			if ev.Action == "file_download" {
				fileDownload = true
			}
		}
		if loginSuccess && fileDownload {
			findings = append(findings, fmt.Sprintf("Suspicious pattern: User %s logged in from foreign location and downloaded files", userID))
		}
	}
	return findings
}
