package gateway

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/opensearch-project/opensearch-go/v2"
	"github.com/opensearch-project/opensearch-go/v2/opensearchutil"

	"github.com/casetrace-systems/casetrace/common/logging"
	"github.com/casetrace-systems/casetrace/investigate/internal/models"
)

// Config holds OpenSearch connection settings for the event store.
type Config struct {
	URL      string
	Username string
	Password string
	Insecure bool
	Index    string
}

// DefaultConfig returns local development defaults.
func DefaultConfig() Config {
	return Config{
		URL:      "https://localhost:9200",
		Username: "admin",
		Password: "admin",
		Insecure: true,
		Index:    "casetrace-events",
	}
}

// OpenSearchStore implements EventStore against an OpenSearch cluster.
type OpenSearchStore struct {
	client *opensearch.Client
	index  string
	logger *logging.Logger
}

// NewOpenSearchStore connects to the cluster and verifies it responds.
func NewOpenSearchStore(cfg Config, logger *logging.Logger) (*OpenSearchStore, error) {
	httpClient := &http.Client{
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: cfg.Insecure,
			},
		},
	}

	osCfg := opensearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.Username,
		Password:  cfg.Password,
		Transport: httpClient.Transport,
	}

	client, err := opensearch.NewClient(osCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create opensearch client: %w", err)
	}

	info, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("failed to ping opensearch: %w", err)
	}
	defer info.Body.Close()

	if info.IsError() {
		return nil, fmt.Errorf("opensearch returned error: %s", info.Status())
	}

	return &OpenSearchStore{
		client: client,
		index:  cfg.Index,
		logger: logger,
	}, nil
}

// BuildQuery translates a structured filter to OpenSearch Query DSL.
// Hour-of-day windows are not expressed in the DSL; Fetch applies them
// after retrieval.
func BuildQuery(f models.Filter) map[string]interface{} {
	query := make(map[string]interface{})

	filter := []interface{}{}
	for _, c := range f.Conditions {
		filter = append(filter, conditionClause(c))
	}

	if len(filter) > 0 {
		query["query"] = map[string]interface{}{
			"bool": map[string]interface{}{
				"filter": filter,
			},
		}
	} else {
		query["query"] = map[string]interface{}{
			"match_all": map[string]interface{}{},
		}
	}

	orderBy := f.OrderBy
	if orderBy == "" {
		orderBy = "timestamp"
	}
	query["sort"] = []map[string]interface{}{
		{
			orderBy: map[string]interface{}{
				"order": "desc",
			},
		},
	}

	size := f.Limit
	if size <= 0 {
		size = 100
	}
	query["size"] = size

	return query
}

// conditionClause maps one condition to a DSL clause. Event fields are
// indexed as keywords, so equality uses term rather than match.
func conditionClause(c models.Condition) map[string]interface{} {
	switch c.Operator {
	case "!=":
		return map[string]interface{}{
			"bool": map[string]interface{}{
				"must_not": map[string]interface{}{
					"term": map[string]interface{}{
						c.Field: c.Value,
					},
				},
			},
		}
	case ">":
		return rangeClause(c.Field, "gt", c.Value)
	case ">=":
		return rangeClause(c.Field, "gte", c.Value)
	case "<":
		return rangeClause(c.Field, "lt", c.Value)
	case "<=":
		return rangeClause(c.Field, "lte", c.Value)
	default:
		return map[string]interface{}{
			"term": map[string]interface{}{
				c.Field: c.Value,
			},
		}
	}
}

func rangeClause(field, op string, value interface{}) map[string]interface{} {
	return map[string]interface{}{
		"range": map[string]interface{}{
			field: map[string]interface{}{
				op: value,
			},
		},
	}
}

// Fetch executes the filter against the event index and returns decoded
// events, applying any hour-of-day window in memory.
func (s *OpenSearchStore) Fetch(ctx context.Context, f models.Filter) ([]models.Event, error) {
	query := BuildQuery(f)

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(query); err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.index),
		s.client.Search.WithBody(&buf),
		s.client.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search error: %s", res.String())
	}

	var searchResult struct {
		Hits struct {
			Total struct {
				Value int `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source json.RawMessage `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&searchResult); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	events := make([]models.Event, 0, len(searchResult.Hits.Hits))
	for _, hit := range searchResult.Hits.Hits {
		var ev models.Event
		if err := json.Unmarshal(hit.Source, &ev); err != nil {
			s.logger.WarnContext(ctx, "skipping undecodable event document", logging.Error(err))
			continue
		}
		events = append(events, ev)
	}

	return filterByHour(events, f.HourRange), nil
}

// filterByHour keeps events whose local hour falls inside the inclusive
// window. A nil range keeps everything.
func filterByHour(events []models.Event, hr *models.HourRange) []models.Event {
	if hr == nil {
		return events
	}
	start := leadingHour(hr.Start, 0)
	end := leadingHour(hr.End, 23)

	kept := events[:0]
	for _, ev := range events {
		hour := ev.Timestamp.Hour()
		if hour >= start && hour <= end {
			kept = append(kept, ev)
		}
	}
	return kept
}

// leadingHour parses the hour component of "HH:00:00" strings, falling
// back when absent or malformed.
func leadingHour(s string, fallback int) int {
	if i := strings.IndexByte(s, ':'); i >= 0 {
		s = s[:i]
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}

// Index bulk-writes events to the event index.
func (s *OpenSearchStore) Index(ctx context.Context, events []models.Event) (*IndexResult, error) {
	result := &IndexResult{}

	bi, err := opensearchutil.NewBulkIndexer(opensearchutil.BulkIndexerConfig{
		Client: s.client,
		Index:  s.index,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create bulk indexer: %w", err)
	}

	for _, ev := range events {
		data, err := json.Marshal(ev)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("failed to marshal event %s: %v", ev.ID, err))
			continue
		}

		err = bi.Add(ctx, opensearchutil.BulkIndexerItem{
			Action:     "index",
			DocumentID: ev.ID,
			Body:       bytes.NewReader(data),
			OnSuccess: func(ctx context.Context, item opensearchutil.BulkIndexerItem, res opensearchutil.BulkIndexerResponseItem) {
				result.Indexed++
			},
			OnFailure: func(ctx context.Context, item opensearchutil.BulkIndexerItem, res opensearchutil.BulkIndexerResponseItem, err error) {
				result.Failed++
				if err != nil {
					result.Errors = append(result.Errors, err.Error())
				} else {
					result.Errors = append(result.Errors, fmt.Sprintf("%s: %s", res.Error.Type, res.Error.Reason))
				}
			},
		})
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("failed to add to bulk indexer: %v", err))
		}
	}

	if err := bi.Close(ctx); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("bulk indexer close error: %v", err))
	}

	return result, nil
}

// EnsureIndex creates the event index with its mapping if it does not
// already exist.
func (s *OpenSearchStore) EnsureIndex(ctx context.Context) error {
	exists, err := s.client.Indices.Exists(
		[]string{s.index},
		s.client.Indices.Exists.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to check index existence: %w", err)
	}
	defer exists.Body.Close()

	if exists.StatusCode == http.StatusOK {
		return nil
	}

	body, err := json.Marshal(eventMapping())
	if err != nil {
		return err
	}

	res, err := s.client.Indices.Create(
		s.index,
		s.client.Indices.Create.WithContext(ctx),
		s.client.Indices.Create.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		bodyBytes, _ := io.ReadAll(res.Body)
		return fmt.Errorf("failed to create index: %s - %s", res.Status(), string(bodyBytes))
	}

	s.logger.InfoContext(ctx, "event index created", "index", s.index)
	return nil
}

func eventMapping() map[string]interface{} {
	return map[string]interface{}{
		"settings": map[string]interface{}{
			"number_of_shards":   1,
			"number_of_replicas": 0,
		},
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"id":         map[string]interface{}{"type": "keyword"},
				"event_type": map[string]interface{}{"type": "keyword"},
				"timestamp":  map[string]interface{}{"type": "date"},
				"user_id":    map[string]interface{}{"type": "keyword"},
				"ip_address": map[string]interface{}{"type": "keyword"},
				"country":    map[string]interface{}{"type": "keyword"},
				"action":     map[string]interface{}{"type": "keyword"},
				"resource":   map[string]interface{}{"type": "keyword"},
				"status":     map[string]interface{}{"type": "keyword"},
				"metadata":   map[string]interface{}{"type": "object", "enabled": true},
			},
		},
	}
}
