// Package contract computes the lifecycle state of a tenant's paid-access
// window from its start date and duration. All computation is read-only;
// nothing here touches the database.
package contract

import (
	"time"

	"github.com/GustaavooC/mooda-sub000/internal/model"
)

// DefaultExpiringSoonDays is the window used when no override is configured
const DefaultExpiringSoonDays = 7

// Info is the display-ready contract state for a tenant.
// Exactly one of DaysRemaining / DaysSinceExpiry is meaningful at any
// instant: DaysRemaining when the contract is active, DaysSinceExpiry
// when it is expired.
type Info struct {
	IsExpired       bool      `json:"is_expired"`
	DaysRemaining   int       `json:"days_remaining"`
	DaysSinceExpiry int       `json:"days_since_expiry"`
	StartDate       time.Time `json:"contract_start_date"`
	EndDate         time.Time `json:"contract_end_date"`
	DurationDays    int       `json:"contract_duration_days"`
}

// Evaluate computes the contract state at the given instant.
// The end date is start + duration in calendar days. Days remaining are
// rounded up so a contract with any remaining fraction of a day still
// shows one day left; days since expiry are rounded down.
func Evaluate(start time.Time, durationDays int, now time.Time) Info {
	end := EndDate(start, durationDays)
	info := Info{
		StartDate:    start,
		EndDate:      end,
		DurationDays: durationDays,
	}

	if now.After(end) {
		info.IsExpired = true
		info.DaysSinceExpiry = int(now.Sub(end).Hours() / 24)
		return info
	}

	remaining := end.Sub(now)
	days := int(remaining.Hours() / 24)
	if remaining > time.Duration(days)*24*time.Hour {
		days++
	}
	info.DaysRemaining = days
	return info
}

// EvaluateTenant computes the contract state from a tenant row
func EvaluateTenant(t *model.Tenant, now time.Time) Info {
	return Evaluate(t.ContractStartDate, t.ContractDurationDays, now)
}

// EndDate returns start + duration in calendar days
func EndDate(start time.Time, durationDays int) time.Time {
	return start.AddDate(0, 0, durationDays)
}

// ExpiringSoon reports whether the contract is inside the warning window.
// An expired contract is never "expiring soon".
func ExpiringSoon(info Info, windowDays int) bool {
	if windowDays <= 0 {
		windowDays = DefaultExpiringSoonDays
	}
	return !info.IsExpired && info.DaysRemaining <= windowDays
}

// EffectiveStatus resolves the stored tenant status against the computed
// contract state: an overdue contract always reads as expired, whatever
// the stored status says.
func EffectiveStatus(storedStatus string, info Info) string {
	if info.IsExpired {
		return model.TenantStatusExpired
	}
	return storedStatus
}

// StatusLabel maps a tenant status to its display text and color
func StatusLabel(status string) (text string, color string) {
	switch status {
	case model.TenantStatusActive:
		return "Active", "green"
	case model.TenantStatusTrial:
		return "Trial", "blue"
	case model.TenantStatusSuspended:
		return "Suspended", "yellow"
	case model.TenantStatusExpired:
		return "Expired", "red"
	default:
		return "Unknown", "gray"
	}
}
