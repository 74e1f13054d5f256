package gateway

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casetrace-systems/casetrace/investigate/internal/models"
)

func TestBuildQuery_Empty(t *testing.T) {
	query := BuildQuery(models.Filter{OrderBy: "timestamp", Limit: 100})

	assert.Equal(t, map[string]interface{}{"match_all": map[string]interface{}{}}, query["query"])
	assert.Equal(t, 100, query["size"])

	sorts, ok := query["sort"].([]map[string]interface{})
	require.True(t, ok)
	require.Len(t, sorts, 1)
	assert.Equal(t, map[string]interface{}{"order": "desc"}, sorts[0]["timestamp"])
}

func TestBuildQuery_Defaults(t *testing.T) {
	query := BuildQuery(models.Filter{})

	assert.Equal(t, 100, query["size"])
	sorts := query["sort"].([]map[string]interface{})
	assert.Contains(t, sorts[0], "timestamp")
}

func TestBuildQuery_EqualityUsesTerm(t *testing.T) {
	query := BuildQuery(models.Filter{
		Conditions: []models.Condition{
			{Field: "event_type", Operator: "=", Value: "login"},
			{Field: "country", Operator: "=", Value: "RU"},
		},
	})

	filter := queryFilter(t, query)
	require.Len(t, filter, 2)
	assert.Equal(t, map[string]interface{}{
		"term": map[string]interface{}{"event_type": "login"},
	}, filter[0])
	assert.Equal(t, map[string]interface{}{
		"term": map[string]interface{}{"country": "RU"},
	}, filter[1])
}

func TestBuildQuery_NotEqualUsesMustNot(t *testing.T) {
	query := BuildQuery(models.Filter{
		Conditions: []models.Condition{
			{Field: "country", Operator: "!=", Value: "US"},
		},
	})

	filter := queryFilter(t, query)
	require.Len(t, filter, 1)
	assert.Equal(t, map[string]interface{}{
		"bool": map[string]interface{}{
			"must_not": map[string]interface{}{
				"term": map[string]interface{}{"country": "US"},
			},
		},
	}, filter[0])
}

func TestBuildQuery_RangeOperators(t *testing.T) {
	tests := []struct {
		operator string
		dslOp    string
	}{
		{">", "gt"},
		{">=", "gte"},
		{"<", "lt"},
		{"<=", "lte"},
	}

	for _, tt := range tests {
		t.Run(tt.operator, func(t *testing.T) {
			query := BuildQuery(models.Filter{
				Conditions: []models.Condition{
					{Field: "attempts", Operator: tt.operator, Value: 3},
				},
			})

			filter := queryFilter(t, query)
			require.Len(t, filter, 1)
			assert.Equal(t, map[string]interface{}{
				"range": map[string]interface{}{
					"attempts": map[string]interface{}{tt.dslOp: 3},
				},
			}, filter[0])
		})
	}
}

func TestBuildQuery_HourRangeStaysOutOfDSL(t *testing.T) {
	query := BuildQuery(models.Filter{
		HourRange: &models.HourRange{Start: "02:00:00", End: "16:00:00"},
	})

	// the hour window is applied after retrieval, not pushed to the
	// cluster, so an otherwise unconditioned filter is still match_all
	assert.Equal(t, map[string]interface{}{"match_all": map[string]interface{}{}}, query["query"])
}

func TestFilterByHour(t *testing.T) {
	at := func(hour int) models.Event {
		return models.Event{
			ID:        "ev",
			Timestamp: time.Date(2024, time.March, 15, hour, 30, 0, 0, time.UTC),
		}
	}
	events := []models.Event{at(1), at(2), at(9), at(16), at(17)}

	kept := filterByHour(events, &models.HourRange{Start: "02:00:00", End: "16:00:00"})

	require.Len(t, kept, 3)
	assert.Equal(t, 2, kept[0].Timestamp.Hour())
	assert.Equal(t, 9, kept[1].Timestamp.Hour())
	assert.Equal(t, 16, kept[2].Timestamp.Hour())
}

func TestFilterByHour_NilRangeKeepsAll(t *testing.T) {
	events := []models.Event{{ID: "a"}, {ID: "b"}}
	assert.Len(t, filterByHour(events, nil), 2)
}

func TestFilterByHour_MalformedBoundsFallBackToFullDay(t *testing.T) {
	events := []models.Event{
		{ID: "a", Timestamp: time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)},
		{ID: "b", Timestamp: time.Date(2024, time.March, 15, 23, 0, 0, 0, time.UTC)},
	}

	kept := filterByHour(events, &models.HourRange{Start: "", End: "garbage"})
	assert.Len(t, kept, 2)
}

func queryFilter(t *testing.T, query map[string]interface{}) []interface{} {
	t.Helper()
	queryMap, ok := query["query"].(map[string]interface{})
	require.True(t, ok)
	boolQuery, ok := queryMap["bool"].(map[string]interface{})
	require.True(t, ok)
	filter, ok := boolQuery["filter"].([]interface{})
	require.True(t, ok)
	return filter
}
