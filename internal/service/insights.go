package service

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Recommendation struct {
	Text string `json:"text"`
}

type SalesInsight struct {
	Topic           string           `json:"topic"`
	Summary         string           `json:"summary"`
	Insights        []string         `json:"insights"`
	Recommendations []Recommendation `json:"recommendations"`
}

// insightTopics maps the agent's raw insight keys to dashboard topics.
var insightTopics = map[string]string{
	"crm_sales_by_week":     "weekly",
	"crm_sales_daily":       "daily",
	"crm_sales_by_utm":      "utm",
	"crm_sales_by_channel":  "channels",
	"crm_sales_by_creative": "services",
}

// insightKeywords are the recommendation-text substrings associated with
// each insight key. The agent writes recommendations in Russian.
var insightKeywords = map[string]string{
	"crm_sales_by_week":     "недел",
	"crm_sales_daily":       "день",
	"crm_sales_by_utm":      "utm",
	"crm_sales_by_channel":  "канал",
	"crm_sales_by_creative": "креатив",
}

// InsightsService reshapes the sales insight agent's latest output into
// per-topic blocks for the frontend.
type InsightsService struct {
	db *gorm.DB
}

func NewInsightsService(db *gorm.DB) *InsightsService {
	return &InsightsService{db: db}
}

// SalesInsights returns the latest sales-agent insights for the client,
// grouped by topic. No stored row yields an empty list.
func (s *InsightsService) SalesInsights(ctx context.Context, clientID uuid.UUID) ([]SalesInsight, error) {
	var row struct {
		Summary         string
		Insights        []byte
		Recommendations []byte
	}
	res := s.db.WithContext(ctx).Raw(`
		SELECT summary, insights::jsonb AS insights, recommendations::jsonb AS recommendations
		FROM ai.agent_insights
		WHERE client_id = ? AND agent_name = 'sales_insights_agent'
		ORDER BY created_at DESC
		LIMIT 1`, clientID).Scan(&row)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return []SalesInsight{}, nil
	}

	var insights map[string]json.RawMessage
	if err := json.Unmarshal(row.Insights, &insights); err != nil {
		return nil, err
	}
	var recommendations []Recommendation
	// recommendations may be stored as a non-list; treat that as none
	_ = json.Unmarshal(row.Recommendations, &recommendations)

	return reshapeInsights(insights, recommendations), nil
}

// reshapeInsights turns the agent's key→lines map into per-topic blocks,
// attaching the recommendations whose text mentions the key's keyword.
// Keys are processed in sorted order for a stable response.
func reshapeInsights(insights map[string]json.RawMessage, recommendations []Recommendation) []SalesInsight {
	keys := make([]string, 0, len(insights))
	for key := range insights {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	mapped := make([]SalesInsight, 0, len(keys))
	for _, key := range keys {
		var lines []string
		// non-list values carry no lines but still produce a block
		_ = json.Unmarshal(insights[key], &lines)

		if lines == nil {
			lines = []string{}
		}
		mapped = append(mapped, SalesInsight{
			Topic:           topicForKey(key),
			Summary:         strings.Join(lines, " "),
			Insights:        lines,
			Recommendations: filterRecommendations(key, recommendations),
		})
	}
	return mapped
}

func topicForKey(key string) string {
	if topic, ok := insightTopics[key]; ok {
		return topic
	}
	return "sales"
}

// filterRecommendations keeps recommendations whose text contains the
// keyword for the given key. Unknown keys have an empty keyword, which
// matches every recommendation.
func filterRecommendations(key string, recommendations []Recommendation) []Recommendation {
	keyword := strings.ToLower(insightKeywords[key])

	matched := make([]Recommendation, 0, len(recommendations))
	for _, rec := range recommendations {
		if strings.Contains(strings.ToLower(rec.Text), keyword) {
			matched = append(matched, rec)
		}
	}
	return matched
}
