package contract

import (
	"testing"
	"time"

	"github.com/GustaavooC/mooda-sub000/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate_ActiveContract(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	start := now
	info := Evaluate(start, 30, now)

	assert.False(t, info.IsExpired)
	assert.Equal(t, 30, info.DaysRemaining)
	assert.Equal(t, 0, info.DaysSinceExpiry)
	assert.Equal(t, start.AddDate(0, 0, 30), info.EndDate)
	assert.Equal(t, 30, info.DurationDays)
}

func TestEvaluate_DaysRemainingRoundsUp(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	// 12 hours into the contract: 29.5 days remain, displayed as 30
	now := start.Add(12 * time.Hour)
	info := Evaluate(start, 30, now)

	assert.False(t, info.IsExpired)
	assert.Equal(t, 30, info.DaysRemaining)
}

func TestEvaluate_ExpiredContract(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 30)
	// 36 hours past the end: a full day plus change, displayed as 1
	now := end.Add(36 * time.Hour)
	info := Evaluate(start, 30, now)

	assert.True(t, info.IsExpired)
	assert.Equal(t, 1, info.DaysSinceExpiry)
	assert.Equal(t, 0, info.DaysRemaining)
}

func TestEvaluate_ExactlyAtEndDate(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	now := start.AddDate(0, 0, 30)
	info := Evaluate(start, 30, now)

	assert.False(t, info.IsExpired)
	assert.Equal(t, 0, info.DaysRemaining)
}

func TestEvaluate_ExactlyOneStateHolds(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	instants := []time.Time{
		start,
		start.Add(15 * 24 * time.Hour),
		start.AddDate(0, 0, 30),
		start.AddDate(0, 0, 30).Add(time.Second),
		start.AddDate(0, 0, 45),
	}
	for _, now := range instants {
		info := Evaluate(start, 30, now)
		if info.IsExpired {
			assert.Zero(t, info.DaysRemaining, "expired contract must not report days remaining at %v", now)
		} else {
			assert.Zero(t, info.DaysSinceExpiry, "active contract must not report days since expiry at %v", now)
		}
	}
}

func TestEvaluate_ExtensionIsAdditiveAndIdempotent(t *testing.T) {
	start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	now := start

	base := Evaluate(start, 30, now)
	extendedOnce := Evaluate(start, 30+15, now)
	extendedTwice := Evaluate(start, 30+15+15, now)
	extendedBulk := Evaluate(start, 30+30, now)

	assert.Equal(t, base.EndDate.AddDate(0, 0, 15), extendedOnce.EndDate)
	// Extending twice by N equals extending once by 2N
	assert.Equal(t, extendedBulk.EndDate, extendedTwice.EndDate)
	assert.Equal(t, extendedBulk.DaysRemaining, extendedTwice.DaysRemaining)
}

func TestEvaluateTenant(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tenant := &model.Tenant{
		ContractStartDate:    start,
		ContractDurationDays: 60,
	}
	info := EvaluateTenant(tenant, start.AddDate(0, 0, 10))
	require.False(t, info.IsExpired)
	assert.Equal(t, 50, info.DaysRemaining)
}

func TestExpiringSoon(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.True(t, ExpiringSoon(Evaluate(start, 30, start.AddDate(0, 0, 25)), 7))
	assert.False(t, ExpiringSoon(Evaluate(start, 30, start.AddDate(0, 0, 10)), 7))
	// An already-expired contract is never "expiring soon"
	assert.False(t, ExpiringSoon(Evaluate(start, 30, start.AddDate(0, 0, 40)), 7))
	// Zero window falls back to the default of 7 days
	assert.True(t, ExpiringSoon(Evaluate(start, 30, start.AddDate(0, 0, 27)), 0))
}

func TestEffectiveStatus(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	active := Evaluate(start, 30, start)
	expired := Evaluate(start, 30, start.AddDate(0, 0, 31))

	assert.Equal(t, model.TenantStatusActive, EffectiveStatus(model.TenantStatusActive, active))
	assert.Equal(t, model.TenantStatusTrial, EffectiveStatus(model.TenantStatusTrial, active))
	// An overdue contract always reads as expired
	assert.Equal(t, model.TenantStatusExpired, EffectiveStatus(model.TenantStatusActive, expired))
}

func TestStatusLabel(t *testing.T) {
	cases := []struct {
		status string
		text   string
		color  string
	}{
		{model.TenantStatusActive, "Active", "green"},
		{model.TenantStatusTrial, "Trial", "blue"},
		{model.TenantStatusSuspended, "Suspended", "yellow"},
		{model.TenantStatusExpired, "Expired", "red"},
		{"whatever", "Unknown", "gray"},
	}
	for _, tc := range cases {
		text, color := StatusLabel(tc.status)
		assert.Equal(t, tc.text, text)
		assert.Equal(t, tc.color, color)
	}
}
