package handler

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/budgetly/budgetly-backend/internal/domain"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// Helper function to parse int query params with overflow protection
func parseIntParam(s string, out *int32) (bool, error) {
	if s == "" {
		return false, nil
	}
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return false, errors.New("invalid integer")
	}
	*out = int32(v)
	return true, nil
}

// parseIDParam reads a positive int32 path parameter
func parseIDParam(c echo.Context, name string) (int32, *ValidationError) {
	var id int32
	ok, err := parseIntParam(c.Param(name), &id)
	if err != nil || !ok || id <= 0 {
		return 0, &ValidationError{Field: name, Message: "Must be a positive integer"}
	}
	return id, nil
}

// parseOptionalID reads an optional positive int32 query parameter
func parseOptionalID(c echo.Context, name string) (*int32, *ValidationError) {
	var id int32
	ok, err := parseIntParam(c.QueryParam(name), &id)
	if err != nil || (ok && id <= 0) {
		return nil, &ValidationError{Field: name, Message: "Must be a positive integer"}
	}
	if !ok {
		return nil, nil
	}
	return &id, nil
}

func parseAmount(field, value string) (decimal.Decimal, *ValidationError) {
	amount, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Zero, &ValidationError{Field: field, Message: "Must be a valid decimal number"}
	}
	return amount, nil
}

// parseDate accepts YYYY-MM-DD. An empty value yields the zero time.
func parseDate(field, value string) (time.Time, *ValidationError) {
	if value == "" {
		return time.Time{}, nil
	}
	parsed, err := domain.ParseDate(value)
	if err != nil {
		return time.Time{}, &ValidationError{Field: field, Message: "Must be in YYYY-MM-DD format"}
	}
	return parsed, nil
}

// parseTimestamp accepts YYYY-MM-DD or RFC 3339
func parseTimestamp(field, value string) (time.Time, *ValidationError) {
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed.UTC(), nil
	}
	return parseDate(field, value)
}

// requiredDateQuery reads a mandatory YYYY-MM-DD query parameter
func requiredDateQuery(c echo.Context, name string) (time.Time, *ValidationError) {
	value := c.QueryParam(name)
	if value == "" {
		return time.Time{}, &ValidationError{Field: name, Message: "Query parameter is required"}
	}
	return parseDate(name, value)
}

// invalidParam responds with a single-field validation error
func invalidParam(c echo.Context, v *ValidationError) error {
	return NewValidationError(c, "Validation failed", []ValidationError{*v})
}

func formatDate(t time.Time) string {
	return t.Format(domain.DateLayout)
}

func formatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatDate(*t)
	return &s
}

func formatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
