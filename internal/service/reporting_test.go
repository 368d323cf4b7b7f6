package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// brokenReportingDB opens a store where every schema-qualified view query
// fails, standing in for an unreachable or unprovisioned reporting database.
func brokenReportingDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	return db
}

func TestAdsReportSubstitutesEmptyOnStoreError(t *testing.T) {
	svc := NewAdsService(brokenReportingDB(t), zap.NewNop())

	from := time.Date(2026, 8, 17, 0, 0, 0, 0, time.UTC)
	report := svc.Report(context.Background(), from, from.AddDate(0, 0, 7))

	require.NotNil(t, report)
	assert.NotNil(t, report.Daily)
	assert.NotNil(t, report.Campaigns)
	assert.NotNil(t, report.AdGroups)
	assert.NotNil(t, report.Platforms)
	assert.NotNil(t, report.Utm)
	assert.Empty(t, report.Daily)
	assert.Empty(t, report.Campaigns)
	assert.Empty(t, report.AdGroups)
	assert.Empty(t, report.Platforms)
	assert.Empty(t, report.Utm)
}

func TestSalesReportPropagatesStoreError(t *testing.T) {
	svc := NewSalesService(brokenReportingDB(t))

	from := time.Date(2026, 8, 18, 0, 0, 0, 0, time.UTC)
	report, err := svc.Report(context.Background(), from, from.AddDate(0, 0, 6))

	require.Error(t, err)
	assert.Nil(t, report)
}

func TestDashboardInsightsPropagatesNonPrivilegeError(t *testing.T) {
	svc := NewDashboardService(brokenReportingDB(t))

	// A plain store failure is not the missing-grant case and must surface.
	rows, err := svc.Insights(context.Background(), 5)

	require.Error(t, err)
	assert.Nil(t, rows)
}

func TestIsInsufficientPrivilege(t *testing.T) {
	missingGrant := &pgconn.PgError{Code: "42501", Message: "permission denied for schema ai"}

	assert.True(t, isInsufficientPrivilege(missingGrant))
	assert.True(t, isInsufficientPrivilege(fmt.Errorf("query insights: %w", missingGrant)))
	assert.False(t, isInsufficientPrivilege(&pgconn.PgError{Code: "42P01"}))
	assert.False(t, isInsufficientPrivilege(fmt.Errorf("dial tcp: connection refused")))
	assert.False(t, isInsufficientPrivilege(nil))
}
