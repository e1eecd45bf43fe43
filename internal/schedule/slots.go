package schedule

import "time"

// SlotDuration is the fixed width of every bookable slot. Quantizing to
// 15-minute boundaries keeps availability intersection tests to exact
// timestamp equality and bounds the batch size per specialist.
const SlotDuration = 15 * time.Minute

const slotMinutes = int(SlotDuration / time.Minute)

// Slot is a candidate bookable window [Start, End).
type Slot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Horizon returns the default generation window [start of today, weeks ahead)
// in now's location.
func Horizon(now time.Time, weeks int) (time.Time, time.Time) {
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return from, from.AddDate(0, 0, weeks*7)
}

// GenerateSlots expands a week schedule over [from, to) into fixed-duration
// candidate slots. Slots whose end is not strictly after now are dropped,
// which removes past slots including partial ones on the current day.
// Output is ordered by day, then by start within a day.
func GenerateSlots(week WeekSchedule, from, to, now time.Time) []Slot {
	var slots []Slot
	for d := startOfDay(from); d.Before(to); d = d.AddDate(0, 0, 1) {
		day := week[int(d.Weekday())]
		if !day.Working {
			continue
		}
		for m := day.StartMin; m+slotMinutes <= day.EndMin; m += slotMinutes {
			start := d.Add(time.Duration(m) * time.Minute)
			end := start.Add(SlotDuration)
			if !end.After(now) {
				continue
			}
			slots = append(slots, Slot{Start: start, End: end})
		}
	}
	return slots
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
