package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestSalesWindowDefaults(t *testing.T) {
	now := time.Date(2025, time.March, 15, 14, 30, 0, 0, time.UTC)

	from, to := SalesWindow(now, nil, nil)
	assert.Equal(t, date(2025, time.March, 9), from, "default window starts six days back")
	assert.Equal(t, date(2025, time.March, 15), to, "default window ends today")
}

func TestSalesWindowExplicitBounds(t *testing.T) {
	now := time.Date(2025, time.March, 15, 14, 30, 0, 0, time.UTC)
	reqFrom := date(2025, time.January, 1)
	reqTo := date(2025, time.February, 1)

	from, to := SalesWindow(now, &reqFrom, &reqTo)
	assert.Equal(t, reqFrom, from)
	assert.Equal(t, reqTo, to)

	// A single explicit bound keeps the default for the other.
	from, to = SalesWindow(now, &reqFrom, nil)
	assert.Equal(t, reqFrom, from)
	assert.Equal(t, date(2025, time.March, 15), to)
}

func TestAdsWindowDefaultsAnchorYesterday(t *testing.T) {
	now := time.Date(2025, time.March, 15, 9, 0, 0, 0, time.UTC)

	from, toExclusive := AdsWindow(now, nil, nil)
	assert.Equal(t, date(2025, time.March, 8), from, "default window starts six days before yesterday")
	assert.Equal(t, date(2025, time.March, 15), toExclusive, "upper bound excludes today")
}

func TestAdsWindowClampsEndToYesterday(t *testing.T) {
	now := time.Date(2025, time.March, 15, 9, 0, 0, 0, time.UTC)
	reqTo := date(2025, time.March, 20)

	_, toExclusive := AdsWindow(now, nil, &reqTo)
	assert.Equal(t, date(2025, time.March, 15), toExclusive, "future end clamps to yesterday")

	past := date(2025, time.March, 10)
	_, toExclusive = AdsWindow(now, nil, &past)
	assert.Equal(t, date(2025, time.March, 11), toExclusive, "past end is honored, exclusive")
}

func TestAdsWindowExplicitFrom(t *testing.T) {
	now := time.Date(2025, time.March, 15, 9, 0, 0, 0, time.UTC)
	reqFrom := date(2025, time.February, 1)

	from, _ := AdsWindow(now, &reqFrom, nil)
	assert.Equal(t, reqFrom, from)
}
