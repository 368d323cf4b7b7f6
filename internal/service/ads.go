package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type AdsDailyItem struct {
	Date        time.Time `json:"date"`
	Spend       float64   `json:"spend"`
	Clicks      int64     `json:"clicks"`
	Impressions int64     `json:"impressions"`
	CTR         float64   `json:"ctr"`
	CPC         float64   `json:"cpc"`
	CPM         float64   `json:"cpm"`
}

type AdsCampaignItem struct {
	CampaignID   string  `json:"campaign_id"`
	CampaignName *string `json:"campaign_name"`
	Spend        float64 `json:"spend"`
	Clicks       int64   `json:"clicks"`
	Conversions  float64 `json:"conversions"`
	CTR          float64 `json:"ctr"`
	CPC          float64 `json:"cpc"`
	CPA          float64 `json:"cpa"`
}

type AdsAdGroupItem struct {
	AdGroupID   string  `json:"ad_group_id"`
	AdGroupName *string `json:"ad_group_name"`
	Spend       float64 `json:"spend"`
	Clicks      int64   `json:"clicks"`
	Conversions float64 `json:"conversions"`
	CTR         float64 `json:"ctr"`
	CPC         float64 `json:"cpc"`
	CPA         float64 `json:"cpa"`
}

type AdsPlatformItem struct {
	Platform    string  `json:"platform"`
	Spend       float64 `json:"spend"`
	Impressions int64   `json:"impressions"`
	Clicks      int64   `json:"clicks"`
	Conversions float64 `json:"conversions"`
	CTR         float64 `json:"ctr"`
	CPC         float64 `json:"cpc"`
	CPA         float64 `json:"cpa"`
}

type AdsUtmItem struct {
	Date        time.Time `json:"date"`
	UtmSource   *string   `json:"utm_source"`
	UtmMedium   *string   `json:"utm_medium"`
	UtmCampaign *string   `json:"utm_campaign"`
	Sessions    int64     `json:"sessions"`
	Conversions float64   `json:"conversions"`
	Spend       float64   `json:"spend"`
	ConvRate    float64   `json:"conv_rate"`
	CPA         float64   `json:"cpa"`
	CPS         float64   `json:"cps"`
}

type AdsReport struct {
	Daily     []AdsDailyItem    `json:"daily"`
	Campaigns []AdsCampaignItem `json:"campaigns"`
	AdGroups  []AdsAdGroupItem  `json:"adGroups"`
	Platforms []AdsPlatformItem `json:"platforms"`
	Utm       []AdsUtmItem      `json:"utm"`
}

func emptyAdsReport() *AdsReport {
	return &AdsReport{
		Daily:     make([]AdsDailyItem, 0),
		Campaigns: make([]AdsCampaignItem, 0),
		AdGroups:  make([]AdsAdGroupItem, 0),
		Platforms: make([]AdsPlatformItem, 0),
		Utm:       make([]AdsUtmItem, 0),
	}
}

// AdsService assembles the composite advertising report from the ads
// materialized views in the reporting store.
type AdsService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewAdsService(db *gorm.DB, log *zap.Logger) *AdsService {
	return &AdsService{db: db, log: log}
}

// Report fetches all five advertising breakdowns for the half-open
// [from, toExclusive) window produced by AdsWindow. A store failure yields
// an all-empty report so the dashboard keeps rendering; the cause is logged.
func (s *AdsService) Report(ctx context.Context, from, toExclusive time.Time) *AdsReport {
	report := emptyAdsReport()

	err := s.db.WithContext(ctx).Raw(`
		SELECT dt AS date, spend, clicks, impressions, ctr, cpc, cpm
		FROM dashboards.ads_campaigns_kpi_daily
		WHERE dt >= ? AND dt < ?
		ORDER BY dt`, from, toExclusive).Scan(&report.Daily).Error
	if err == nil {
		err = s.db.WithContext(ctx).Raw(`
			SELECT campaign_id, campaign_key AS campaign_name, spend, clicks, conversions, ctr, cpc, cpa
			FROM dashboards.ads_campaigns_daily
			WHERE dt >= ? AND dt < ?`, from, toExclusive).Scan(&report.Campaigns).Error
	}
	if err == nil {
		err = s.db.WithContext(ctx).Raw(`
			SELECT ad_group_id, ad_group_name, spend, clicks, conversions, ctr, cpc, cpa
			FROM dashboards.google_ads_adgroup_daily
			WHERE dt >= ? AND dt < ?`, from, toExclusive).Scan(&report.AdGroups).Error
	}
	if err == nil {
		err = s.db.WithContext(ctx).Raw(`
			SELECT platform, spend, impressions, clicks,
			       COALESCE(conversions, 0) AS conversions, ctr, cpc, COALESCE(cpa, 0) AS cpa
			FROM dashboards.ads_platform_daily
			WHERE dt >= ? AND dt < ?`, from, toExclusive).Scan(&report.Platforms).Error
	}
	if err == nil {
		err = s.db.WithContext(ctx).Raw(`
			SELECT date, utm_source, utm_medium, utm_campaign, sessions, conversions, spend, conv_rate, cpa, cps
			FROM dashboards.ads_by_utm_daily
			WHERE date >= ? AND date < ?`, from, toExclusive).Scan(&report.Utm).Error
	}

	if err != nil {
		s.log.Error("Ads report query failed, returning empty report",
			zap.Time("from", from),
			zap.Time("to_exclusive", toExclusive),
			zap.Error(err))
		return emptyAdsReport()
	}
	return report
}
