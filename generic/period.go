package generic

// =============================================================================
// PERIOD - A half-open span of dates
// =============================================================================

// Period covers [Start, End). Projection windows and buckets are both
// periods: a bucket's End is the next bucket's Start.
type Period struct {
	Start TimePoint
	End   TimePoint
}

// Validate rejects periods that do not end strictly after they start.
func (p Period) Validate() error {
	if !p.Start.Before(p.End) {
		return &InvalidRangeError{Start: p.Start, End: p.End}
	}
	return nil
}

// Contains returns true if t is within [Start, End).
func (p Period) Contains(t TimePoint) bool {
	return t.AfterOrEqual(p.Start) && t.Before(p.End)
}

// Next returns the period of the same interval that starts at p.End.
func (p Period) Next(step Interval) Period {
	return Period{Start: p.End, End: step.AddTo(p.End)}
}

// String returns a string representation of the period.
func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + ")"
}

// Buckets counts the periods of step that start inside p, stopping once the
// count passes limit. A limit of zero or less counts them all.
func (p Period) Buckets(step Interval, limit int) int {
	n := 0
	for t := p.Start; t.Before(p.End); t = step.AddTo(t) {
		n++
		if limit > 0 && n > limit {
			break
		}
	}
	return n
}
