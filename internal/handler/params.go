package handler

import (
	"fmt"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

const dateLayout = "2006-01-02"

// parseDateParam reads an optional YYYY-MM-DD query parameter. A missing
// parameter yields nil; a malformed one yields an error.
func parseDateParam(c echo.Context, name string) (*time.Time, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: expected YYYY-MM-DD", name)
	}
	return &t, nil
}

// requireDateParam reads a mandatory YYYY-MM-DD query parameter.
func requireDateParam(c echo.Context, name string) (time.Time, error) {
	t, err := parseDateParam(c, name)
	if err != nil {
		return time.Time{}, err
	}
	if t == nil {
		return time.Time{}, fmt.Errorf("%s is required", name)
	}
	return *t, nil
}

// parseLimitParam reads an optional limit query parameter, applying the
// default when absent. Values outside [1, max] are rejected rather than
// clamped.
func parseLimitParam(c echo.Context, def, max int) (int, error) {
	raw := c.QueryParam("limit")
	if raw == "" {
		return def, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid limit: expected an integer")
	}
	if limit < 1 || limit > max {
		return 0, fmt.Errorf("limit must be between 1 and %d", max)
	}
	return limit, nil
}
