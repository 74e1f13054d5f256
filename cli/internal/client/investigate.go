// Package client is the HTTP client for the investigate service API.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

type InvestigateClient struct {
	baseURL string
	token   string
	client  *http.Client
}

// Case represents an investigation case
type Case struct {
	ID           string                 `json:"id"`
	Title        string                 `json:"title"`
	Description  string                 `json:"description,omitempty"`
	Status       string                 `json:"status"`
	Investigator string                 `json:"investigator"`
	Findings     map[string]interface{} `json:"findings,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
}

// Event is a forensic event as returned by the query endpoint
type Event struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	EventType string    `json:"event_type"`
	UserID    string    `json:"user_id,omitempty"`
	IPAddress string    `json:"ip_address,omitempty"`
	Country   string    `json:"country,omitempty"`
	Action    string    `json:"action,omitempty"`
	Resource  string    `json:"resource,omitempty"`
	Status    string    `json:"status,omitempty"`
}

type QueryResponse struct {
	Query  string  `json:"query"`
	Count  int     `json:"count"`
	Events []Event `json:"events"`
}

type CasesResponse struct {
	Cases  []Case `json:"cases"`
	Total  int    `json:"total"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
}

type TimelineEvent struct {
	Event
	Related   []string `json:"related_events,omitempty"`
	Narrative string   `json:"narrative"`
}

type Timeline struct {
	Title     string          `json:"title"`
	Events    []TimelineEvent `json:"events"`
	Patterns  []string        `json:"patterns"`
	Narrative string          `json:"narrative"`
}

type Report struct {
	Format            string    `json:"format"`
	Content           string    `json:"content"`
	Methodology       string    `json:"methodology"`
	EvidenceIntegrity string    `json:"evidence_integrity"`
	GeneratedAt       time.Time `json:"generated_at"`
}

type IngestResponse struct {
	Indexed int      `json:"indexed"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}

func NewInvestigateClient(baseURL, token string) *InvestigateClient {
	return &InvestigateClient{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *InvestigateClient) doRequest(method, path string, body interface{}) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewBuffer(bodyBytes)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	return c.client.Do(req)
}

func decodeInto(resp *http.Response, wantStatus int, action string, v interface{}) error {
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("failed to %s: %s", action, string(bodyBytes))
	}
	if v == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

func (c *InvestigateClient) Query(text, caseID string) (*QueryResponse, error) {
	payload := map[string]string{"text": text}
	if caseID != "" {
		payload["case_id"] = caseID
	}

	resp, err := c.doRequest("POST", "/api/query", payload)
	if err != nil {
		return nil, err
	}

	var queryResp QueryResponse
	if err := decodeInto(resp, http.StatusOK, "execute query", &queryResp); err != nil {
		return nil, err
	}
	return &queryResp, nil
}

func (c *InvestigateClient) ListCases(status string, limit, offset int) (*CasesResponse, error) {
	path := fmt.Sprintf("/api/cases?limit=%d&offset=%d", limit, offset)
	if status != "" {
		path += "&status=" + url.QueryEscape(status)
	}

	resp, err := c.doRequest("GET", path, nil)
	if err != nil {
		return nil, err
	}

	var casesResp CasesResponse
	if err := decodeInto(resp, http.StatusOK, "list cases", &casesResp); err != nil {
		return nil, err
	}
	return &casesResp, nil
}

func (c *InvestigateClient) GetCase(id string) (*Case, error) {
	resp, err := c.doRequest("GET", "/api/cases/"+id, nil)
	if err != nil {
		return nil, err
	}

	var caseData Case
	if err := decodeInto(resp, http.StatusOK, "get case", &caseData); err != nil {
		return nil, err
	}
	return &caseData, nil
}

func (c *InvestigateClient) CreateCase(title, description, investigator string) (*Case, error) {
	payload := map[string]string{
		"title":        title,
		"description":  description,
		"investigator": investigator,
	}

	resp, err := c.doRequest("POST", "/api/cases", payload)
	if err != nil {
		return nil, err
	}

	var caseData Case
	if err := decodeInto(resp, http.StatusCreated, "create case", &caseData); err != nil {
		return nil, err
	}
	return &caseData, nil
}

func (c *InvestigateClient) UpdateCase(id string, fields map[string]interface{}) (*Case, error) {
	resp, err := c.doRequest("PATCH", "/api/cases/"+id, fields)
	if err != nil {
		return nil, err
	}

	var caseData Case
	if err := decodeInto(resp, http.StatusOK, "update case", &caseData); err != nil {
		return nil, err
	}
	return &caseData, nil
}

func (c *InvestigateClient) BuildTimeline(caseID, text string) (*Timeline, error) {
	resp, err := c.doRequest("POST", "/api/cases/"+caseID+"/timeline", map[string]string{"text": text})
	if err != nil {
		return nil, err
	}

	var timeline Timeline
	if err := decodeInto(resp, http.StatusOK, "build timeline", &timeline); err != nil {
		return nil, err
	}
	return &timeline, nil
}

func (c *InvestigateClient) GenerateReport(caseID, text string) (*Report, error) {
	resp, err := c.doRequest("POST", "/api/cases/"+caseID+"/report", map[string]string{"text": text})
	if err != nil {
		return nil, err
	}

	var report Report
	if err := decodeInto(resp, http.StatusOK, "generate report", &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// GetReport fetches the latest rendered report as raw Markdown.
func (c *InvestigateClient) GetReport(caseID string) (string, error) {
	resp, err := c.doRequest("GET", "/api/cases/"+caseID+"/report", nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to get report: %s", string(bodyBytes))
	}
	return string(bodyBytes), nil
}

func (c *InvestigateClient) IngestEvents(events []Event) (*IngestResponse, error) {
	resp, err := c.doRequest("POST", "/api/events", map[string]interface{}{"events": events})
	if err != nil {
		return nil, err
	}

	var ingestResp IngestResponse
	if err := decodeInto(resp, http.StatusOK, "ingest events", &ingestResp); err != nil {
		return nil, err
	}
	return &ingestResp, nil
}
