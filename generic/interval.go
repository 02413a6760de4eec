package generic

// =============================================================================
// INTERVAL - The closed set of supported steps and repeat intervals
// =============================================================================

// Interval is one of the supported step sizes. The set is closed: anything
// else resolves to IntervalDay.
type Interval string

const (
	IntervalDay   Interval = "1 day"
	IntervalWeek  Interval = "1 week"
	IntervalMonth Interval = "1 month"
)

// DefaultHorizonMonths is how far a projection runs when no end date is given.
const DefaultHorizonMonths = 6

// Intervals returns the supported intervals, default first.
func Intervals() []Interval {
	return []Interval{IntervalDay, IntervalWeek, IntervalMonth}
}

// ParseInterval reports whether s names a supported interval.
func ParseInterval(s string) (Interval, bool) {
	switch Interval(s) {
	case IntervalDay, IntervalWeek, IntervalMonth:
		return Interval(s), true
	default:
		return IntervalDay, false
	}
}

// ResolveInterval is ParseInterval without the report.
func ResolveInterval(s string) Interval {
	iv, _ := ParseInterval(s)
	return iv
}

// AddTo advances tp by one interval. Every interval strictly advances.
func (iv Interval) AddTo(tp TimePoint) TimePoint {
	switch iv {
	case IntervalWeek:
		return tp.AddDays(7)
	case IntervalMonth:
		return tp.AddMonths(1)
	default:
		return tp.AddDays(1)
	}
}

func (iv Interval) String() string { return string(iv) }
