package usecase

import (
	"time"

	accountdomain "newsletterbox-backend/internal/account/domain"
)

// hourlyDueWindow is the minute window in which an hourly cadence fires.
// The external trigger ticks every minute, so a few minutes of skew must
// not make an hour fire twice or not at all.
const hourlyDueWindow = 5

// IsDue decides whether now qualifies as a sync moment for the cadence.
// Pure function: no I/O, no clock reads.
func IsDue(cadence accountdomain.CadenceConfig, now time.Time, forced bool) bool {
	if forced {
		return true
	}
	if !cadence.Enabled {
		return false
	}

	switch cadence.ScheduleType {
	case accountdomain.ScheduleMinute:
		return true
	case accountdomain.ScheduleHourly:
		return now.Minute() <= hourlyDueWindow
	case accountdomain.ScheduleDaily:
		if cadence.Hour < 0 || cadence.Hour > 23 {
			return false
		}
		return now.Hour() == cadence.Hour
	default:
		// disabled or unknown
		return false
	}
}
