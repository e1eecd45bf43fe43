// Package schedule turns a specialist's declared weekly working hours
// into discrete bookable time slots.
package schedule

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Defaults applied when a working day declares no explicit times.
const (
	DefaultStartMinute = 9 * 60  // 09:00
	DefaultEndMinute   = 17 * 60 // 17:00
)

var weekdayNames = [7]string{
	"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday",
}

// ScheduleParseError reports malformed working-hours input.
type ScheduleParseError struct {
	Day    string
	Reason string
}

func (e *ScheduleParseError) Error() string {
	if e.Day == "" {
		return fmt.Sprintf("schedule: parse working hours: %s", e.Reason)
	}
	return fmt.Sprintf("schedule: parse working hours for %s: %s", e.Day, e.Reason)
}

// DaySchedule is the normalized schedule for a single weekday.
// StartMin/EndMin are minutes from midnight.
type DaySchedule struct {
	Weekday  time.Weekday `json:"weekday"`
	Working  bool         `json:"working"`
	StartMin int          `json:"start_min"`
	EndMin   int          `json:"end_min"`
}

// WeekSchedule holds one DaySchedule per weekday, Sunday-indexed.
type WeekSchedule [7]DaySchedule

// rawDay carries both the current (isWorking/startTime/endTime) and the
// legacy (isOpen/start/end) field names. Current names win when both are set.
type rawDay struct {
	IsWorking *bool  `json:"isWorking"`
	IsOpen    *bool  `json:"isOpen"`
	StartTime string `json:"startTime"`
	Start     string `json:"start"`
	EndTime   string `json:"endTime"`
	End       string `json:"end"`
}

func (d rawDay) working() bool {
	if d.IsWorking != nil {
		return *d.IsWorking
	}
	if d.IsOpen != nil {
		return *d.IsOpen
	}
	return false
}

func (d rawDay) startClock() string {
	if d.StartTime != "" {
		return d.StartTime
	}
	return d.Start
}

func (d rawDay) endClock() string {
	if d.EndTime != "" {
		return d.EndTime
	}
	return d.End
}

// ParseWorkingHours converts a per-weekday JSON document into a normalized
// WeekSchedule. Days absent from the document are closed.
func ParseWorkingHours(raw []byte) (WeekSchedule, error) {
	var week WeekSchedule
	for i := range week {
		week[i].Weekday = time.Weekday(i)
	}

	if len(raw) == 0 {
		return week, &ScheduleParseError{Reason: "empty working hours document"}
	}

	var days map[string]rawDay
	if err := json.Unmarshal(raw, &days); err != nil {
		return week, &ScheduleParseError{Reason: err.Error()}
	}

	for name, day := range days {
		idx := weekdayIndex(name)
		if idx < 0 {
			return week, &ScheduleParseError{Day: name, Reason: "unknown weekday"}
		}
		if !day.working() {
			continue
		}

		start, err := parseClock(day.startClock(), DefaultStartMinute)
		if err != nil {
			return week, &ScheduleParseError{Day: name, Reason: err.Error()}
		}
		end, err := parseClock(day.endClock(), DefaultEndMinute)
		if err != nil {
			return week, &ScheduleParseError{Day: name, Reason: err.Error()}
		}
		if start >= end {
			return week, &ScheduleParseError{
				Day:    name,
				Reason: fmt.Sprintf("start %s is not before end %s", formatClock(start), formatClock(end)),
			}
		}

		week[idx].Working = true
		week[idx].StartMin = start
		week[idx].EndMin = end
	}

	return week, nil
}

func weekdayIndex(name string) int {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range weekdayNames {
		if n == name {
			return i
		}
	}
	return -1
}

// parseClock parses "HH:MM" into minutes from midnight. An empty value
// falls back to the given default.
func parseClock(value string, defaultMin int) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return defaultMin, nil
	}
	parts := strings.Split(value, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock time %q", value)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid hour in %q", value)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid minute in %q", value)
	}
	return hour*60 + minute, nil
}

func formatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
