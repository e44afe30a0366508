package smsc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatScheduleDeliveryTime_ZeroIsEmpty(t *testing.T) {
	out, err := FormatScheduleDeliveryTime(time.Time{})
	require.NoError(t, err)
	assert.Equal(t, "", out)
}

func TestParseScheduleDeliveryTime_EmptyIsZero(t *testing.T) {
	out, err := ParseScheduleDeliveryTime("")
	require.NoError(t, err)
	assert.True(t, out.IsZero())
}

// TestScheduleDeliveryTime_RoundTrip covers a SubmitSm carrying an
// absolute schedule_delivery_time: formatting a time and parsing it
// back must agree on the same instant, the round trip a caller relies
// on when it wants the parsed time.Time instead of the raw validated
// string the codec stores (spec §4.3).
func TestScheduleDeliveryTime_RoundTrip(t *testing.T) {
	in := time.Date(2030, time.March, 4, 15, 9, 26, 0, time.UTC)

	wire, err := FormatScheduleDeliveryTime(in)
	require.NoError(t, err)
	assert.Len(t, wire, 16)

	out, err := ParseScheduleDeliveryTime(wire)
	require.NoError(t, err)
	assert.True(t, in.Equal(out))
}
