package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
)

var (
	serverURL  = flag.String("url", "http://localhost:8087", "Investigation service URL")
	token      = flag.String("token", "", "Bearer token (optional)")
	count      = flag.Int("count", 200, "Number of background noise events to generate")
	scenarios  = flag.String("scenarios", "brute-force,exfiltration,off-hours,foreign", "Comma-separated list of attack scenarios to seed")
	timeSpread = flag.Duration("time-spread", 24*time.Hour, "Spread noise events over this time period")
	batchSize  = flag.Int("batch-size", 50, "Number of events per ingest request")
)

type event struct {
	Timestamp time.Time `json:"timestamp"`
	EventType string    `json:"event_type"`
	UserID    string    `json:"user_id,omitempty"`
	IPAddress string    `json:"ip_address,omitempty"`
	Country   string    `json:"country,omitempty"`
	Action    string    `json:"action"`
	Resource  string    `json:"resource,omitempty"`
	Status    string    `json:"status"`
}

var countries = []string{"US", "US", "US", "US", "CA", "GB", "DE", "NL"}

func main() {
	flag.Parse()

	gofakeit.Seed(time.Now().UnixNano())

	log.Printf("Starting event seeder:")
	log.Printf("  Server URL: %s", *serverURL)
	log.Printf("  Noise events: %d", *count)
	log.Printf("  Time spread: %v", *timeSpread)
	log.Printf("  Batch size: %d", *batchSize)

	events := generateNoise(*count)
	for _, name := range strings.Split(*scenarios, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		scenario, err := generateScenario(name)
		if err != nil {
			log.Fatalf("Unknown scenario %q", name)
		}
		log.Printf("  Scenario %s: %d events", name, len(scenario))
		events = append(events, scenario...)
	}

	client := &http.Client{
		Timeout: 10 * time.Second,
	}

	successCount := 0
	failCount := 0

	for start := 0; start < len(events); start += *batchSize {
		end := start + *batchSize
		if end > len(events) {
			end = len(events)
		}
		batch := events[start:end]
		if err := sendBatch(client, batch); err != nil {
			log.Printf("Failed to send batch: %v", err)
			failCount += len(batch)
		} else {
			successCount += len(batch)
			log.Printf("Progress: %d/%d events sent", successCount, len(events))
		}
	}

	log.Printf("Seeding complete:")
	log.Printf("  Success: %d events", successCount)
	log.Printf("  Failed: %d events", failCount)
}

func generateNoise(n int) []event {
	events := make([]event, 0, n)
	now := time.Now().UTC()
	for i := 0; i < n; i++ {
		var offset time.Duration
		if *timeSpread > 0 {
			offset = time.Duration(rand.Int63n(int64(*timeSpread)))
		}
		ts := now.Add(-offset)

		switch rand.Intn(3) {
		case 0:
			status := "success"
			if rand.Intn(10) == 0 {
				status = "failed"
			}
			events = append(events, event{
				Timestamp: ts,
				EventType: "login",
				UserID:    gofakeit.Username(),
				IPAddress: gofakeit.IPv4Address(),
				Country:   countries[rand.Intn(len(countries))],
				Action:    "login",
				Status:    status,
			})
		case 1:
			actions := []string{"file_read", "file_write", "file_download"}
			events = append(events, event{
				Timestamp: ts,
				EventType: "file_access",
				UserID:    gofakeit.Username(),
				IPAddress: gofakeit.IPv4Address(),
				Country:   countries[rand.Intn(len(countries))],
				Action:    actions[rand.Intn(len(actions))],
				Resource:  fmt.Sprintf("/shares/%s/%s.%s", gofakeit.Word(), gofakeit.Word(), gofakeit.FileExtension()),
				Status:    "success",
			})
		default:
			events = append(events, event{
				Timestamp: ts,
				EventType: "network",
				UserID:    gofakeit.Username(),
				IPAddress: gofakeit.IPv4Address(),
				Country:   countries[rand.Intn(len(countries))],
				Action:    "connection",
				Resource:  gofakeit.DomainName(),
				Status:    "success",
			})
		}
	}
	return events
}

func generateScenario(name string) ([]event, error) {
	switch name {
	case "brute-force":
		return bruteForce(), nil
	case "exfiltration":
		return exfiltration(), nil
	case "off-hours":
		return offHours(), nil
	case "foreign":
		return foreignLogins(), nil
	default:
		return nil, fmt.Errorf("unknown scenario: %s", name)
	}
}

// bruteForce emits a burst of failed logins for one account from one
// address, followed by a success, the shape the correlation engine
// flags as a brute force pattern.
func bruteForce() []event {
	user := gofakeit.Username()
	ip := gofakeit.IPv4Address()
	base := time.Now().UTC().Add(-2 * time.Hour)

	events := make([]event, 0, 7)
	for i := 0; i < 6; i++ {
		events = append(events, event{
			Timestamp: base.Add(time.Duration(i) * 30 * time.Second),
			EventType: "login",
			UserID:    user,
			IPAddress: ip,
			Country:   "US",
			Action:    "login",
			Status:    "failed",
		})
	}
	events = append(events, event{
		Timestamp: base.Add(4 * time.Minute),
		EventType: "login",
		UserID:    user,
		IPAddress: ip,
		Country:   "US",
		Action:    "login",
		Status:    "success",
	})
	return events
}

// exfiltration emits a successful login followed by bulk downloads
// from the same account inside the correlation window.
func exfiltration() []event {
	user := gofakeit.Username()
	ip := gofakeit.IPv4Address()
	base := time.Now().UTC().Add(-90 * time.Minute)

	events := []event{{
		Timestamp: base,
		EventType: "login",
		UserID:    user,
		IPAddress: ip,
		Country:   "US",
		Action:    "login",
		Status:    "success",
	}}
	for i := 0; i < 4; i++ {
		events = append(events, event{
			Timestamp: base.Add(time.Duration(i+1) * 5 * time.Minute),
			EventType: "file_access",
			UserID:    user,
			IPAddress: ip,
			Country:   "US",
			Action:    "file_download",
			Resource:  fmt.Sprintf("/finance/reports/q%d-%s.xlsx", i+1, gofakeit.Word()),
			Status:    "success",
		})
	}
	return events
}

// offHours emits activity between midnight and 5 AM local time.
func offHours() []event {
	user := gofakeit.Username()
	ip := gofakeit.IPv4Address()
	now := time.Now().UTC()
	night := time.Date(now.Year(), now.Month(), now.Day(), 2, 0, 0, 0, time.UTC)
	if night.After(now) {
		night = night.AddDate(0, 0, -1)
	}

	events := make([]event, 0, 3)
	for i := 0; i < 3; i++ {
		events = append(events, event{
			Timestamp: night.Add(time.Duration(i) * 20 * time.Minute),
			EventType: "file_access",
			UserID:    user,
			IPAddress: ip,
			Country:   "US",
			Action:    "file_read",
			Resource:  fmt.Sprintf("/hr/records/%s.pdf", gofakeit.Word()),
			Status:    "success",
		})
	}
	return events
}

// foreignLogins emits successful logins from outside the usual
// countries for accounts that otherwise log in domestically.
func foreignLogins() []event {
	foreign := []string{"RU", "CN", "KP", "IR"}
	base := time.Now().UTC().Add(-6 * time.Hour)

	events := make([]event, 0, 3)
	for i := 0; i < 3; i++ {
		events = append(events, event{
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			EventType: "login",
			UserID:    gofakeit.Username(),
			IPAddress: gofakeit.IPv4Address(),
			Country:   foreign[rand.Intn(len(foreign))],
			Action:    "login",
			Status:    "success",
		})
	}
	return events
}

func sendBatch(client *http.Client, batch []event) error {
	payload, err := json.Marshal(map[string]interface{}{"events": batch})
	if err != nil {
		return fmt.Errorf("failed to marshal batch: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, *serverURL+"/api/events", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if *token != "" {
		req.Header.Set("Authorization", "Bearer "+*token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned status %d", resp.StatusCode)
	}
	return nil
}
