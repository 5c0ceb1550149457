package attendance

import (
	"math"
	"time"

	"github.com/VeriTime/VT-Backend/internal/config"
)

// Status is a day's attendance state. Stored statuses are written by the
// check-in path (present, pending_approval, absent_documented); the rest are
// derived from the row's timestamps by DeriveStatus. Every caller shares the
// same derivation so the lateness rule cannot drift between endpoints.
type Status string

const (
	StatusAbsent           Status = "absent"
	StatusPresent          Status = "present"
	StatusCheckedIn        Status = "checked_in"
	StatusLate             Status = "late"
	StatusCheckedOut       Status = "checked_out"
	StatusPendingApproval  Status = "pending_approval"
	StatusAbsentDocumented Status = "absent_documented"
)

// Entry methods. Trusted methods carry their own verification (a scanner or
// an authenticated web session) and bypass the geofence entirely.
const (
	MethodPalm         = "palm"
	MethodSmartCard    = "smart_card"
	MethodManualWeb    = "manual_web"
	MethodManualMobile = "manual_mobile"
	MethodManual       = "manual"
)

// TrustedMethod reports whether an entry method bypasses geofence checks.
func TrustedMethod(method string) bool {
	switch method {
	case MethodPalm, MethodSmartCard, MethodManualWeb:
		return true
	}
	return false
}

// DeriveStatus computes the day's status label from a record's contents.
// Precedence, highest first:
//
//	no check-in + documented absence  -> absent_documented
//	no check-in                       -> absent
//	check-in + check-out              -> checked_out (terminal for the day)
//	stored pending_approval           -> pending_approval (until resolved)
//	check-in after start+grace        -> late
//	otherwise                         -> checked_in
//
// Times are compared in the policy's timezone.
func DeriveStatus(rec *Record, policy config.Policy) Status {
	if rec == nil || rec.CheckInTime == nil {
		if rec != nil && (rec.Absence != nil || rec.Status == StatusAbsentDocumented) {
			return StatusAbsentDocumented
		}
		return StatusAbsent
	}

	if rec.CheckOutTime != nil {
		return StatusCheckedOut
	}

	if rec.Status == StatusPendingApproval {
		return StatusPendingApproval
	}

	if IsLate(*rec.CheckInTime, policy) {
		return StatusLate
	}
	return StatusCheckedIn
}

// IsLate reports whether a check-in instant falls after the workday start
// plus the grace window, evaluated in the policy's timezone.
func IsLate(checkIn time.Time, policy config.Policy) bool {
	local := checkIn.In(policy.Location())
	return local.After(policy.LateCutoff(local))
}

// WorkedHours computes hours between check-in and check-out: whole elapsed
// minutes floor-divided, then expressed as hours with two decimals.
func WorkedHours(checkIn, checkOut time.Time) float64 {
	minutes := int(checkOut.Sub(checkIn).Minutes())
	if minutes < 0 {
		minutes = 0
	}
	return math.Round(float64(minutes)/60*100) / 100
}

// Overtime is time worked beyond the standard day, never negative.
func Overtime(workedHours, standardHours float64) float64 {
	overtime := workedHours - standardHours
	if overtime < 0 {
		return 0
	}
	return math.Round(overtime*100) / 100
}
