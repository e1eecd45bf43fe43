package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWorkingHoursCurrentFields(t *testing.T) {
	raw := []byte(`{
		"monday":  {"isWorking": true, "startTime": "08:30", "endTime": "16:00"},
		"tuesday": {"isWorking": false}
	}`)
	week, err := ParseWorkingHours(raw)
	require.NoError(t, err)

	mon := week[int(time.Monday)]
	assert.True(t, mon.Working)
	assert.Equal(t, 8*60+30, mon.StartMin)
	assert.Equal(t, 16*60, mon.EndMin)

	assert.False(t, week[int(time.Tuesday)].Working)
	assert.False(t, week[int(time.Sunday)].Working, "absent day must be closed")
}

func TestParseWorkingHoursLegacyFields(t *testing.T) {
	raw := []byte(`{"friday": {"isOpen": true, "start": "10:00", "end": "14:00"}}`)
	week, err := ParseWorkingHours(raw)
	require.NoError(t, err)

	fri := week[int(time.Friday)]
	assert.True(t, fri.Working)
	assert.Equal(t, 10*60, fri.StartMin)
	assert.Equal(t, 14*60, fri.EndMin)
}

func TestParseWorkingHoursCurrentFieldsWin(t *testing.T) {
	raw := []byte(`{"monday": {"isWorking": true, "startTime": "09:00", "start": "07:00", "endTime": "17:00", "end": "20:00"}}`)
	week, err := ParseWorkingHours(raw)
	require.NoError(t, err)
	assert.Equal(t, 9*60, week[int(time.Monday)].StartMin)
	assert.Equal(t, 17*60, week[int(time.Monday)].EndMin)
}

func TestParseWorkingHoursDefaults(t *testing.T) {
	raw := []byte(`{"wednesday": {"isWorking": true}}`)
	week, err := ParseWorkingHours(raw)
	require.NoError(t, err)
	wed := week[int(time.Wednesday)]
	assert.Equal(t, DefaultStartMinute, wed.StartMin)
	assert.Equal(t, DefaultEndMinute, wed.EndMin)
}

func TestParseWorkingHoursNeitherFlagMeansClosed(t *testing.T) {
	raw := []byte(`{"monday": {"startTime": "09:00", "endTime": "17:00"}}`)
	week, err := ParseWorkingHours(raw)
	require.NoError(t, err)
	assert.False(t, week[int(time.Monday)].Working)
}

func TestParseWorkingHoursErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"malformed json", `{"monday": `},
		{"unknown weekday", `{"froday": {"isWorking": true}}`},
		{"start after end", `{"monday": {"isWorking": true, "startTime": "18:00", "endTime": "09:00"}}`},
		{"start equals end", `{"monday": {"isWorking": true, "startTime": "09:00", "endTime": "09:00"}}`},
		{"bad clock", `{"monday": {"isWorking": true, "startTime": "25:99"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseWorkingHours([]byte(tt.raw))
			var perr *ScheduleParseError
			require.ErrorAs(t, err, &perr)
		})
	}
}

func TestParseWorkingHoursEmpty(t *testing.T) {
	_, err := ParseWorkingHours(nil)
	var perr *ScheduleParseError
	require.ErrorAs(t, err, &perr)
}
