package calendar

import "sort"

// Interval is the half-open range [Start, End) on a single day.
type Interval struct {
	Start Clock `json:"start"`
	End   Clock `json:"end"`
}

func NewInterval(start, end Clock) Interval {
	return Interval{Start: start, End: end}
}

// ParseInterval parses two HH:MM values into an interval.
func ParseInterval(start, end string) (Interval, error) {
	s, err := ParseClock(start)
	if err != nil {
		return Interval{}, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return Interval{}, err
	}
	return Interval{Start: s, End: e}, nil
}

// Overlaps reports whether a and b share at least one instant.
// Touching endpoints (a.End == b.Start) do not overlap.
func (a Interval) Overlaps(b Interval) bool {
	return a.Start < b.End && b.Start < a.End
}

// Empty reports whether the interval contains no instant, which includes
// inverted ranges.
func (a Interval) Empty() bool {
	return a.Start >= a.End
}

func (a Interval) Minutes() int {
	return int(a.End - a.Start)
}

func (a Interval) String() string {
	return a.Start.String() + "-" + a.End.String()
}

// FreeSlots walks window in fixed steps of minutes and returns every step
// that overlaps none of booked, in chronological order.
//
// The grid is anchored at window.Start and never re-aligns around a booking,
// so a booking off the grid blocks every grid slot it touches. A slot whose
// end would pass window.End is never produced.
func FreeSlots(window Interval, booked []Interval, minutes int) ([]Interval, error) {
	if minutes <= 0 {
		return nil, ErrInvalidSlotLength
	}

	sorted := make([]Interval, len(booked))
	copy(sorted, booked)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Start < sorted[j].Start
	})

	free := make([]Interval, 0, max(window.Minutes()/minutes, 0))
	for cursor := window.Start; cursor.Add(minutes) <= window.End; cursor = cursor.Add(minutes) {
		candidate := Interval{Start: cursor, End: cursor.Add(minutes)}
		if !overlapsAny(candidate, sorted) {
			free = append(free, candidate)
		}
	}
	return free, nil
}

// overlapsAny expects booked sorted by Start.
func overlapsAny(candidate Interval, booked []Interval) bool {
	for _, b := range booked {
		if b.Start >= candidate.End {
			return false
		}
		if candidate.Overlaps(b) {
			return true
		}
	}
	return false
}
