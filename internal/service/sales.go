package service

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type SalesDailyItem struct {
	Date          time.Time `json:"date"`
	ContractCount int64     `json:"contract_count"`
	TotalRevenue  float64   `json:"total_revenue"`
	TotalFirstSum float64   `json:"total_first_sum"`
}

type SalesWeeklyItem struct {
	WeekStart    time.Time `json:"week_start"`
	TotalRevenue float64   `json:"total_revenue"`
}

type SalesByServiceItem struct {
	ServiceID     int64   `json:"service_id"`
	ServiceName   *string `json:"service_name"`
	ContractCount int64   `json:"contract_count"`
	TotalRevenue  float64 `json:"total_revenue"`
	TotalFirstSum float64 `json:"total_first_sum"`
}

type SalesByBranchItem struct {
	BranchSk      int64   `json:"branch_sk"`
	BranchName    *string `json:"branch_name"`
	ContractCount int64   `json:"contract_count"`
	TotalRevenue  float64 `json:"total_revenue"`
	TotalFirstSum float64 `json:"total_first_sum"`
}

type SalesByUtmItem struct {
	UtmSource     *string `json:"utm_source"`
	UtmMedium     *string `json:"utm_medium"`
	UtmCampaign   *string `json:"utm_campaign"`
	ContractCount int64   `json:"contract_count"`
	TotalRevenue  float64 `json:"total_revenue"`
	TotalFirstSum float64 `json:"total_first_sum"`
}

type SalesReport struct {
	Daily     []SalesDailyItem     `json:"daily"`
	Weekly    []SalesWeeklyItem    `json:"weekly"`
	ByService []SalesByServiceItem `json:"byService"`
	ByBranch  []SalesByBranchItem  `json:"byBranch"`
	ByUtm     []SalesByUtmItem     `json:"byUtm"`
}

// SalesService assembles the composite sales report from the CRM
// materialized views in the reporting store.
type SalesService struct {
	db *gorm.DB
}

func NewSalesService(db *gorm.DB) *SalesService {
	return &SalesService{db: db}
}

// Report fetches all five sales breakdowns. The daily and weekly slices are
// bounded by the inclusive [from, to] window; the service, branch and UTM
// breakdowns are all-time aggregates. Any store failure is returned to the
// caller rather than masked with an empty report.
func (s *SalesService) Report(ctx context.Context, from, to time.Time) (*SalesReport, error) {
	report := &SalesReport{
		Daily:     make([]SalesDailyItem, 0),
		Weekly:    make([]SalesWeeklyItem, 0),
		ByService: make([]SalesByServiceItem, 0),
		ByBranch:  make([]SalesByBranchItem, 0),
		ByUtm:     make([]SalesByUtmItem, 0),
	}

	err := s.db.WithContext(ctx).Raw(`
		SELECT date, contract_count, total_revenue, total_first_sum
		FROM dashboards.mv_crm_sales_daily
		WHERE date BETWEEN ? AND ?
		ORDER BY date`, from, to).Scan(&report.Daily).Error
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Raw(`
		SELECT week_start, total_revenue
		FROM dashboards.mv_crm_sales_by_week
		WHERE week_start BETWEEN ? AND ?
		ORDER BY week_start`, from, to).Scan(&report.Weekly).Error
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Raw(`
		SELECT service_id, service_name, contract_count, total_revenue, total_first_sum
		FROM dashboards.mv_crm_sales_by_service`).Scan(&report.ByService).Error
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Raw(`
		SELECT branch_sk, branch_name, contract_count, total_revenue, total_first_sum
		FROM dashboards.mv_crm_sales_by_branch`).Scan(&report.ByBranch).Error
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Raw(`
		SELECT utm_source, utm_medium, utm_campaign, contract_count, total_revenue, total_first_sum
		FROM dashboards.mv_crm_sales_by_utm`).Scan(&report.ByUtm).Error
	if err != nil {
		return nil, err
	}

	return report, nil
}
