package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := date(y, m, d)
	return &t
}

func TestValidateDateRange(t *testing.T) {
	tests := []struct {
		name    string
		start   time.Time
		end     *time.Time
		wantErr bool
	}{
		{"end after start", date(2025, 1, 1), datePtr(2025, 1, 31), false},
		{"open-ended", date(2025, 1, 1), nil, false},
		{"one day span", date(2025, 1, 1), datePtr(2025, 1, 2), false},
		{"end before start", date(2025, 1, 31), datePtr(2025, 1, 1), true},
		{"end equals start", date(2025, 1, 1), datePtr(2025, 1, 1), true},
		{"missing start", time.Time{}, datePtr(2025, 1, 1), true},
		{"missing start open-ended", time.Time{}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDateRange(tt.start, tt.end)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidDateRange), "expected ErrInvalidDateRange, got %v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateDateRange_IgnoresTimeOfDay(t *testing.T) {
	start := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 1, 20, 0, 0, 0, time.UTC)

	err := ValidateDateRange(start, &end)
	assert.ErrorIs(t, err, ErrInvalidDateRange)
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name   string
		start1 time.Time
		end1   *time.Time
		start2 time.Time
		end2   *time.Time
		want   bool
	}{
		{"disjoint", date(2025, 1, 1), datePtr(2025, 1, 31), date(2025, 2, 1), datePtr(2025, 2, 28), false},
		{"partial overlap", date(2025, 1, 1), datePtr(2025, 1, 31), date(2025, 1, 15), datePtr(2025, 2, 15), true},
		{"contained", date(2025, 1, 1), datePtr(2025, 12, 31), date(2025, 3, 1), datePtr(2025, 3, 31), true},
		{"touching end inclusive", date(2025, 1, 1), datePtr(2025, 1, 31), date(2025, 1, 31), datePtr(2025, 2, 28), true},
		{"first open-ended", date(2030, 1, 1), nil, date(2025, 1, 1), datePtr(2025, 1, 31), true},
		{"second open-ended", date(2025, 1, 1), datePtr(2025, 1, 31), date(2030, 1, 1), nil, true},
		{"both open-ended", date(2025, 1, 1), nil, date(2026, 1, 1), nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.start1, tt.end1, tt.start2, tt.end2))
			// symmetric
			assert.Equal(t, tt.want, Overlaps(tt.start2, tt.end2, tt.start1, tt.end1))
		})
	}
}

func TestBudgetOverlapError_Message(t *testing.T) {
	err := &BudgetOverlapError{
		ConflictingID:   3,
		ConflictingName: "Groceries",
		StartDate:       date(2025, 1, 1),
		EndDate:         datePtr(2025, 1, 31),
	}

	assert.ErrorIs(t, err, ErrBudgetOverlap)
	assert.Contains(t, err.Error(), "Groceries")
	assert.Contains(t, err.Error(), "ID: 3")
	assert.Contains(t, err.Error(), "2025-01-01")
	assert.Contains(t, err.Error(), "2025-01-31")

	err.EndDate = nil
	assert.Contains(t, err.Error(), "open-ended")
}

func TestDateOnly_UsesUTCDay(t *testing.T) {
	cet := time.FixedZone("CET", 3600)
	pst := time.FixedZone("PST", -8*3600)

	assert.Equal(t, date(2025, 1, 31), DateOnly(time.Date(2025, 1, 31, 23, 30, 0, 0, time.UTC).In(cet)))
	assert.Equal(t, date(2025, 2, 1), DateOnly(time.Date(2025, 1, 31, 20, 0, 0, 0, pst)))
	assert.Equal(t, time.UTC, DateOnly(time.Date(2025, 1, 5, 12, 0, 0, 0, cet)).Location())
}
