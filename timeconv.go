package smsc

import (
	"time"

	smpptime "github.com/ajankovic/smsc/time"
)

// ParseScheduleDeliveryTime is an optional convenience on top of
// SubmitSm.ScheduleDeliveryTime / DeliverSm.ScheduleDeliveryTime,
// which the codec stores as a plain string once it has validated the
// length invariant from spec §4.3 (empty, or exactly 16 characters
// plus NUL). Callers that want the SMPP absolute/relative time
// semantics rather than the raw string can parse it with this
// adapted version of the teacher's time package; an empty string
// parses to the zero time.
func ParseScheduleDeliveryTime(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return smpptime.Parse([]byte(value))
}

// FormatScheduleDeliveryTime renders t as an absolute SMPP timestamp
// suitable for SubmitSm.ScheduleDeliveryTime, or "" for the zero time.
func FormatScheduleDeliveryTime(t time.Time) (string, error) {
	if t.IsZero() {
		return "", nil
	}
	return smpptime.Format(smpptime.Absolute, t)
}
