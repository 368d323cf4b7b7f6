package service

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawLines(t *testing.T, lines ...string) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(lines)
	require.NoError(t, err)
	return b
}

func TestReshapeInsightsTopicsAndSummary(t *testing.T) {
	insights := map[string]json.RawMessage{
		"crm_sales_daily":   rawLines(t, "Выручка выросла", "Пик в среду"),
		"crm_sales_by_week": rawLines(t, "Неделя стабильна"),
	}

	mapped := reshapeInsights(insights, nil)
	require.Len(t, mapped, 2)

	// Keys are emitted in sorted order.
	assert.Equal(t, "weekly", mapped[0].Topic)
	assert.Equal(t, "daily", mapped[1].Topic)

	assert.Equal(t, "Выручка выросла Пик в среду", mapped[1].Summary)
	assert.Equal(t, []string{"Выручка выросла", "Пик в среду"}, mapped[1].Insights)
	assert.Empty(t, mapped[1].Recommendations)
}

func TestReshapeInsightsUnknownKey(t *testing.T) {
	insights := map[string]json.RawMessage{
		"something_new": rawLines(t, "line"),
	}
	recommendations := []Recommendation{
		{Text: "Проверьте недельный тренд"},
		{Text: "Улучшите UTM-разметку"},
	}

	mapped := reshapeInsights(insights, recommendations)
	require.Len(t, mapped, 1)

	assert.Equal(t, "sales", mapped[0].Topic, "unknown keys fall back to the sales topic")
	// An unknown key has no keyword, so every recommendation matches.
	assert.Len(t, mapped[0].Recommendations, 2)
}

func TestReshapeInsightsKeywordFiltering(t *testing.T) {
	insights := map[string]json.RawMessage{
		"crm_sales_daily":  rawLines(t, "a"),
		"crm_sales_by_utm": rawLines(t, "b"),
	}
	recommendations := []Recommendation{
		{Text: "Самый сильный день — среда, усиливайте её"},
		{Text: "Отключите неэффективные UTM-кампании"},
		{Text: "Общая рекомендация"},
	}

	mapped := reshapeInsights(insights, recommendations)
	require.Len(t, mapped, 2)

	var daily, utm SalesInsight
	for _, block := range mapped {
		switch block.Topic {
		case "daily":
			daily = block
		case "utm":
			utm = block
		}
	}

	// Keyword match is a case-insensitive substring check.
	require.Len(t, daily.Recommendations, 1)
	assert.Contains(t, daily.Recommendations[0].Text, "день")
	require.Len(t, utm.Recommendations, 1)
	assert.Contains(t, utm.Recommendations[0].Text, "UTM")
}

func TestReshapeInsightsNonListValue(t *testing.T) {
	insights := map[string]json.RawMessage{
		"crm_sales_by_channel": json.RawMessage(`"not a list"`),
	}

	mapped := reshapeInsights(insights, nil)
	require.Len(t, mapped, 1)

	assert.Equal(t, "channels", mapped[0].Topic)
	assert.Empty(t, mapped[0].Insights)
	assert.Equal(t, "", mapped[0].Summary)
}
