package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrNoKPIData is returned when either of the KPI source views has no rows yet.
var ErrNoKPIData = errors.New("kpi data not found")

// pgInsufficientPrivilege is the Postgres error code raised when the
// reporting role has not been granted access to a schema.
const pgInsufficientPrivilege = "42501"

// isInsufficientPrivilege reports whether err is a Postgres permission
// error, possibly wrapped.
func isInsufficientPrivilege(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgInsufficientPrivilege
}

type ChannelStats struct {
	Date       time.Time `json:"date"`
	Source     string    `json:"source"`
	Medium     string    `json:"medium"`
	Sessions   int64     `json:"sessions"`
	Users      int64     `json:"users"`
	BounceRate float64   `json:"bounce_rate"`
}

type CreativeStats struct {
	Date        time.Time `json:"date"`
	Creative    string    `json:"creative"`
	Impressions int64     `json:"impressions"`
	Clicks      int64     `json:"clicks"`
	CTR         float64   `json:"ctr"`
}

type DeviceStats struct {
	Date       time.Time `json:"date"`
	DeviceType string    `json:"device_type"`
	Sessions   int64     `json:"sessions"`
	Users      int64     `json:"users"`
	BounceRate float64   `json:"bounce_rate"`
}

type CrmStats struct {
	Date         time.Time `json:"date"`
	Source       string    `json:"source"`
	DealsStarted int64     `json:"deals_started"`
	DealsClosed  int64     `json:"deals_closed"`
	Revenue      float64   `json:"revenue"`
}

type AgentInsight struct {
	Summary         string          `json:"summary"`
	Insights        json.RawMessage `json:"insights"`
	Recommendations json.RawMessage `json:"recommendations"`
	AgentName       string          `json:"agent_name"`
	InsightDate     time.Time       `json:"insight_date"`
}

type KPIMetrics struct {
	Revenue        float64 `json:"revenue"`
	ContractsCount int64   `json:"contracts_count"`
	AvgCheck       float64 `json:"avg_check"`
	CTR            float64 `json:"ctr"`
	CPC            float64 `json:"cpc"`
	ROAS           float64 `json:"roas"`
}

type LineChartPoint struct {
	Date       time.Time `json:"date"`
	Spend      float64   `json:"spend"`
	RevenueSum float64   `json:"revenue_sum"`
	ROAS       float64   `json:"roas"`
}

type UTMPerformance struct {
	UtmCampaign      string  `json:"utm_campaign"`
	TotalConversions int64   `json:"total_conversions"`
	TotalRevenue     float64 `json:"total_revenue"`
}

// DashboardService answers the overview endpoints with read-only queries
// against the reporting store's materialized views.
type DashboardService struct {
	db *gorm.DB
}

func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db}
}

// Channels returns per-channel traffic for the period, newest first.
func (s *DashboardService) Channels(ctx context.Context, from, to time.Time, limit int) ([]ChannelStats, error) {
	rows := make([]ChannelStats, 0)
	err := s.db.WithContext(ctx).Raw(`
		SELECT
		  date,
		  utm_source   AS source,
		  utm_medium   AS medium,
		  COALESCE(total_sessions, 0)    AS sessions,
		  COALESCE(total_new_users, 0)   AS users,
		  COALESCE(avg_bounce_rate, 0.0) AS bounce_rate
		FROM analytics.mv_channel_traffic_daily
		WHERE date BETWEEN ? AND ?
		ORDER BY date DESC
		LIMIT ?`, from, to, limit).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Creatives returns creative performance for the period, best CTR first.
func (s *DashboardService) Creatives(ctx context.Context, from, to time.Time, limit int) ([]CreativeStats, error) {
	rows := make([]CreativeStats, 0)
	err := s.db.WithContext(ctx).Raw(`
		SELECT
		  date,
		  creative_id              AS creative,
		  COALESCE(impressions, 0) AS impressions,
		  COALESCE(clicks, 0)      AS clicks,
		  COALESCE(ctr, 0.0)       AS ctr
		FROM analytics.mv_creative_performance
		WHERE date BETWEEN ? AND ?
		ORDER BY ctr DESC
		LIMIT ?`, from, to, limit).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Devices returns device usage for the period, newest first.
func (s *DashboardService) Devices(ctx context.Context, from, to time.Time, limit int) ([]DeviceStats, error) {
	rows := make([]DeviceStats, 0)
	err := s.db.WithContext(ctx).Raw(`
		SELECT
		  date,
		  device_type,
		  COALESCE(total_sessions, 0)    AS sessions,
		  COALESCE(total_new_users, 0)   AS users,
		  COALESCE(avg_bounce_rate, 0.0) AS bounce_rate
		FROM analytics.mv_device_usage_daily
		WHERE date BETWEEN ? AND ?
		ORDER BY date DESC
		LIMIT ?`, from, to, limit).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// CRM returns per-source CRM figures for the period, newest first.
// The source views carry no closed-deal counts yet, so deals_closed is zero.
func (s *DashboardService) CRM(ctx context.Context, from, to time.Time, limit int) ([]CrmStats, error) {
	rows := make([]CrmStats, 0)
	err := s.db.WithContext(ctx).Raw(`
		SELECT
		  date,
		  source_key                          AS source,
		  COALESCE(total_contracts, 0)::int   AS deals_started,
		  0                                   AS deals_closed,
		  COALESCE(total_revenue, 0)::numeric AS revenue
		FROM analytics.mv_crm_by_source_daily
		WHERE date BETWEEN ? AND ?
		ORDER BY date DESC
		LIMIT ?`, from, to, limit).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Insights returns the most recent AI agent insights. The ai schema is
// provisioned separately per tenant; when the reporting role lacks access
// the result degrades to an empty list instead of failing the dashboard.
func (s *DashboardService) Insights(ctx context.Context, limit int) ([]AgentInsight, error) {
	rows := make([]AgentInsight, 0)
	err := s.db.WithContext(ctx).Raw(`
		SELECT summary, insights, recommendations, agent_name, insight_date
		FROM ai.agent_insights
		ORDER BY created_at DESC
		LIMIT ?`, limit).Scan(&rows).Error
	if err != nil {
		if isInsufficientPrivilege(err) {
			return rows, nil
		}
		return nil, err
	}
	return rows, nil
}

// KPI combines the latest financial and advertising snapshot rows.
func (s *DashboardService) KPI(ctx context.Context) (*KPIMetrics, error) {
	var rev struct {
		TotalRevenue     float64
		ContractsCount   int64
		AvgContractValue float64
	}
	res := s.db.WithContext(ctx).Raw(`
		SELECT
		  COALESCE(total_revenue, 0)::numeric      AS total_revenue,
		  COALESCE(contracts_count, 0)::int        AS contracts_count,
		  COALESCE(avg_contract_value, 0)::numeric AS avg_contract_value
		FROM analytics.mv_daily_revenue
		ORDER BY date DESC
		LIMIT 1`).Scan(&rev)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNoKPIData
	}

	var ads struct {
		CTR  float64
		CPC  float64
		ROAS float64
	}
	res = s.db.WithContext(ctx).Raw(`
		SELECT
		  COALESCE(ctr, 0.0)  AS ctr,
		  COALESCE(cpc, 0.0)  AS cpc,
		  COALESCE(roas, 0.0) AS roas
		FROM analytics.mv_ads_overview_daily
		ORDER BY date DESC
		LIMIT 1`).Scan(&ads)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNoKPIData
	}

	return &KPIMetrics{
		Revenue:        rev.TotalRevenue,
		ContractsCount: rev.ContractsCount,
		AvgCheck:       rev.AvgContractValue,
		CTR:            ads.CTR,
		CPC:            ads.CPC,
		ROAS:           ads.ROAS,
	}, nil
}

// LineChart returns daily spend/revenue/ROAS points, oldest first. Either
// bound may be nil for an open-ended range.
func (s *DashboardService) LineChart(ctx context.Context, from, to *time.Time) ([]LineChartPoint, error) {
	query := `
		SELECT date, cost AS spend, revenue AS revenue_sum, roas
		FROM analytics.mv_ads_overview_daily`

	conds := make([]string, 0, 2)
	args := make([]interface{}, 0, 2)
	if from != nil {
		conds = append(conds, "date >= ?")
		args = append(args, *from)
	}
	if to != nil {
		conds = append(conds, "date <= ?")
		args = append(args, *to)
	}
	if len(conds) > 0 {
		query += "\n\t\tWHERE " + strings.Join(conds, " AND ")
	}
	query += "\n\t\tORDER BY date ASC"

	rows := make([]LineChartPoint, 0)
	if err := s.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// UTMPerformance ranks UTM campaigns by conversions.
func (s *DashboardService) UTMPerformance(ctx context.Context, limit int) ([]UTMPerformance, error) {
	rows := make([]UTMPerformance, 0)
	err := s.db.WithContext(ctx).Raw(`
		SELECT
		  utm_campaign,
		  COALESCE(total_conversions, 0)::int       AS total_conversions,
		  COALESCE(total_revenue,     0.0)::numeric AS total_revenue
		FROM analytics.mv_utm_performance
		ORDER BY total_conversions DESC
		LIMIT ?`, limit).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
