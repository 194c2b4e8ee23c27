package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/notext/internal/model"
)

func TestFilter_Empty(t *testing.T) {
	result := Filter(nil, FilterOptions{})
	assert.Len(t, result, 0)
}

func TestFilter_NoFilters(t *testing.T) {
	notifications := []model.Notification{
		{ID: 1, AppName: "firefox"},
		{ID: 2, AppName: "slack"},
	}

	result := Filter(notifications, FilterOptions{})
	assert.Len(t, result, 2)
}

func TestFilter_ByApp(t *testing.T) {
	notifications := []model.Notification{
		{ID: 1, AppName: "firefox"},
		{ID: 2, AppName: "slack"},
		{ID: 3, AppName: "firefox"},
	}

	result := Filter(notifications, FilterOptions{AppFilter: "firefox"})
	assert.Len(t, result, 2)
	for _, n := range result {
		assert.Equal(t, "firefox", n.AppName)
	}
}

func TestFilter_BySince(t *testing.T) {
	now := time.Now()
	notifications := []model.Notification{
		{ID: 1, ReceivedAt: now.Add(-30 * time.Minute)},
		{ID: 2, ReceivedAt: now.Add(-2 * time.Hour)},
		{ID: 3, ReceivedAt: now.Add(-5 * time.Hour)},
	}

	result := Filter(notifications, FilterOptions{Since: time.Hour})
	assert.Len(t, result, 1)
	assert.Equal(t, uint32(1), result[0].ID)
}

func TestFilter_WithLimit(t *testing.T) {
	notifications := []model.Notification{
		{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}, {ID: 5},
	}

	result := Filter(notifications, FilterOptions{Limit: 3})
	assert.Len(t, result, 3)
	assert.Equal(t, uint32(3), result[2].ID)
}

func TestFilter_Combined(t *testing.T) {
	now := time.Now()
	notifications := []model.Notification{
		{ID: 1, AppName: "firefox", ReceivedAt: now.Add(-30 * time.Minute)},
		{ID: 2, AppName: "slack", ReceivedAt: now.Add(-30 * time.Minute)},
		{ID: 3, AppName: "firefox", ReceivedAt: now.Add(-5 * time.Hour)},
	}

	result := Filter(notifications, FilterOptions{
		AppFilter: "firefox",
		Since:     time.Hour,
	})
	assert.Len(t, result, 1)
	assert.Equal(t, uint32(1), result[0].ID)
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input    string
		expected time.Duration
		hasError bool
	}{
		{"0", 0, false},
		{"", 0, false},
		{"1h", time.Hour, false},
		{"30m", 30 * time.Minute, false},
		{"7d", 7 * 24 * time.Hour, false},
		{"2w", 14 * 24 * time.Hour, false},
		{"invalid", 0, true},
		{"xd", 0, true},
		{"xw", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result, err := ParseDuration(tt.input)
			if tt.hasError {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, result)
			}
		})
	}
}

func TestParseFilter(t *testing.T) {
	tests := []struct {
		name     string
		expr     string
		numConds int
		hasError bool
	}{
		{"empty", "", 0, false},
		{"app equal", "app=discord", 1, false},
		{"summary contains", "summary~error", 1, false},
		{"body regex", "body~=(?i)meeting", 1, false},
		{"id compare", "id>=10", 1, false},
		{"timestamp", "timestamp>1h", 1, false},
		{"multiple", "app=slack,summary~hi,id!=3", 3, false},
		{"trailing comma", "app=slack,", 1, false},
		{"field alias", "app_id=slack", 1, false},
		{"unknown field", "urgency=critical", 0, true},
		{"missing operator", "app", 0, true},
		{"bad id", "id=abc", 0, true},
		{"bad regex", "body~=([", 0, true},
		{"bad timestamp", "timestamp>soon", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr, err := ParseFilter(tt.expr)
			if tt.hasError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, expr.Conditions, tt.numConds)
		})
	}
}

func TestFilterExpr_Match(t *testing.T) {
	now := time.Now()
	n := model.Notification{
		ID:         12,
		AppName:    "Slack",
		Summary:    "Build Error",
		Body:       "Meeting moved to 3pm",
		ReceivedAt: now.Add(-5 * time.Minute),
	}

	tests := []struct {
		expr  string
		match bool
	}{
		{"app=Slack", true},
		{"app=slack", false},
		{"app!=Discord", true},
		{"summary~error", true},
		{"summary~warning", false},
		{"body~=(?i)meeting", true},
		{"body~=^moved", false},
		{"id=12", true},
		{"id>12", false},
		{"id<=12", true},
		{"id>=12", true},
		{"id!=12", false},
		{"title~build", true},
		{"Message~=3pm$", true},
		{"ts>=10m", true},
		{"timestamp=10m", false},
		{"timestamp>10m", true},
		{"timestamp<1m", true},
		{"timestamp>1m", false},
		{"app=Slack,id=12", true},
		{"app=Slack,id=13", false},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			expr, err := ParseFilter(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.match, expr.Match(n))
		})
	}
}

func TestFilterWithExpr(t *testing.T) {
	notifications := []model.Notification{
		{ID: 1, AppName: "firefox"},
		{ID: 2, AppName: "slack"},
		{ID: 3, AppName: "firefox"},
	}

	assert.Equal(t, notifications, FilterWithExpr(notifications, nil))

	expr, err := ParseFilter("app=firefox")
	require.NoError(t, err)
	result := FilterWithExpr(notifications, expr)
	require.Len(t, result, 2)
	assert.Equal(t, uint32(3), result[1].ID)
}
