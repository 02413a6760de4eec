/*
Package budget projects a running balance forward from income and expense
events.

PURPOSE:
  A Budget holds a set of events, each one-off or recurring. Breakdown walks
  forward from a start date in fixed steps and returns one Effect per step:
  the net change inside that bucket and the running total at its end.

THE PROPAGATION LOOP:
  The registered events sit in a min-heap ordered by start date. A run
  clones that heap, then repeatedly does one or both of:

    (a) the next step boundary is not after the next pending event:
        close the open bucket and open the next one
    (b) the next pending event falls inside the open bucket:
        apply it, link it, queue its successor, pop the next one

  The loop stops when the next boundary reaches the end date. Events left
  in the open bucket that fall before the end date are applied before
  returning.

BOUNDARY RULE:
  An event dated exactly on a boundary belongs to the bucket that starts
  there. Bucket k covers [start + k*step, start + (k+1)*step).

OCCURRENCES BEFORE THE WINDOW:
  Occurrences dated before the start date are not applied. Their
  successors are still queued, so a recurring event that began earlier
  contributes from the first occurrence inside the window.

PURITY:
  The Budget's own heap is never popped. Two Breakdown calls with the same
  arguments on an unchanged Budget return equal results.

EXAMPLE:
  b := budget.New()
  b.AddEvent(budget.NewIncome(decimal.NewFromInt(1000), oct18, ""))
  b.AddEvent(budget.NewExpense(decimal.NewFromInt(50), oct19, "1 week"))

  effects, err := b.Breakdown("1 day", oct15, oct23)
  if errors.Is(err, generic.ErrInvalidRange) {
      // end date not after start date
  }

SEE ALSO:
  - event.go: Event and Repeat
  - effect.go: Effect accumulator
  - generic/heap.go: the priority queue
*/
package budget

import (
	"sort"
	"sync"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/warp/cashflow-engine/generic"
)

// DefaultStep is used when Breakdown is called with an empty step.
const DefaultStep = generic.IntervalWeek

// DefaultMaxBuckets caps how many Effects one Breakdown may produce.
const DefaultMaxBuckets = 5000

// =============================================================================
// BUDGET
// =============================================================================

// Budget is the registration set plus the template queue every run clones.
// Safe for concurrent use: AddEvent and Breakdown may race, and a run sees
// the events registered when it cloned the queue.
type Budget struct {
	mu     sync.RWMutex
	events map[generic.EventID]Event
	queue  *generic.Heap[Event]

	opening       decimal.Decimal
	defaultStep   generic.Interval
	horizonMonths int
	maxBuckets    int
}

// Option customizes a Budget.
type Option func(*Budget)

// WithOpeningBalance seeds the first bucket's total.
func WithOpeningBalance(amount decimal.Decimal) Option {
	return func(b *Budget) { b.opening = amount }
}

// WithDefaultStep sets the step used when Breakdown gets an empty one.
func WithDefaultStep(step generic.Interval) Option {
	return func(b *Budget) { b.defaultStep = step }
}

// WithHorizonMonths sets how far a run goes when no end date is given.
func WithHorizonMonths(months int) Option {
	return func(b *Budget) {
		if months > 0 {
			b.horizonMonths = months
		}
	}
}

// WithMaxBuckets caps the number of Effects per Breakdown. Zero or less
// removes the cap.
func WithMaxBuckets(n int) Option {
	return func(b *Budget) { b.maxBuckets = n }
}

func New(opts ...Option) *Budget {
	b := &Budget{
		events:        make(map[generic.EventID]Event),
		queue:         generic.NewHeap(earliestFirst),
		opening:       decimal.Zero,
		defaultStep:   DefaultStep,
		horizonMonths: generic.DefaultHorizonMonths,
		maxBuckets:    DefaultMaxBuckets,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// AddEvent registers e. Re-adding a known ID is a no-op; the return value
// reports whether e was new.
func (b *Budget) AddEvent(e Event) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.events[e.ID]; ok {
		return false
	}
	b.events[e.ID] = e
	b.queue.Push(e)
	return true
}

// Len returns the number of registered events.
func (b *Budget) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.events)
}

// OpeningBalance returns the total the first bucket starts from.
func (b *Budget) OpeningBalance() decimal.Decimal { return b.opening }

// Events returns the registered events ordered by start date, then ID.
func (b *Budget) Events() []Event {
	b.mu.RLock()
	out := make([]Event, 0, len(b.events))
	for _, e := range b.events {
		out = append(out, e)
	}
	b.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].StartDate.Before(out[j].StartDate)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// =============================================================================
// BREAKDOWN
// =============================================================================

// Breakdown projects the balance from start in buckets of step.
//
// An empty step means DefaultStep (or the configured one); an unsupported
// step means "1 day". A zero end means start plus the horizon (six months
// unless configured). Returns an *generic.InvalidRangeError when end is not
// after start, and a *generic.BucketLimitError when the window holds more
// buckets than the configured maximum.
func (b *Budget) Breakdown(step string, start, end generic.TimePoint) ([]Effect, error) {
	return b.propagate(b.ResolveStep(step), start, b.ResolveEnd(start, end))
}

// ResolveStep returns the interval Breakdown uses for step.
func (b *Budget) ResolveStep(step string) generic.Interval {
	if step == "" {
		return b.defaultStep
	}
	return generic.ResolveInterval(step)
}

// ResolveEnd returns the end date Breakdown uses for start and end.
func (b *Budget) ResolveEnd(start, end generic.TimePoint) generic.TimePoint {
	if end.IsZero() {
		return start.AddMonths(b.horizonMonths)
	}
	return end
}

func (b *Budget) propagate(step generic.Interval, start, end generic.TimePoint) ([]Effect, error) {
	window := generic.Period{Start: start, End: end}
	if err := window.Validate(); err != nil {
		return nil, err
	}
	if b.maxBuckets > 0 && window.Buckets(step, b.maxBuckets) > b.maxBuckets {
		return nil, &generic.BucketLimitError{Window: window, Step: step, Max: b.maxBuckets}
	}

	b.mu.RLock()
	queue := b.queue.Clone()
	b.mu.RUnlock()

	run := &run{queue: queue}
	bucket := generic.Period{Start: window.Start, End: step.AddTo(window.Start)}
	run.open(newEffect(bucket.Start, b.opening))
	run.pop()

	for bucket.End.Before(window.End) {
		if !run.ok || run.pending.StartDate.AfterOrEqual(bucket.End) {
			bucket = bucket.Next(step)
			run.open(run.acc.Continue(bucket.Start))
		}
		if !run.ok {
			continue
		}
		switch {
		case run.pending.StartDate.Before(bucket.Start):
			run.skip()
		case bucket.Contains(run.pending.StartDate):
			run.apply()
		}
	}

	// The last bucket is still open; settle what falls inside the window.
	for run.ok && run.pending.StartDate.Before(window.End) {
		if run.pending.StartDate.Before(bucket.Start) {
			run.skip()
			continue
		}
		run.apply()
	}

	log.WithFields(log.Fields{
		"step":    step,
		"window":  window.String(),
		"buckets": len(run.effects),
		"applied": run.applied,
		"skipped": run.skipped,
	}).Debug("budget breakdown complete")

	out := make([]Effect, len(run.effects))
	for i, e := range run.effects {
		out[i] = *e
	}
	return out, nil
}

// run is the mutable state of one propagation. The queue only holds
// occurrences that have not been applied or skipped yet.
type run struct {
	queue   *generic.Heap[Event]
	pending Event
	ok      bool

	acc     *Effect
	effects []*Effect

	applied int
	skipped int
}

func (r *run) open(e *Effect) {
	r.acc = e
	r.effects = append(r.effects, e)
}

func (r *run) pop() {
	r.pending, r.ok = r.queue.Pop()
}

func (r *run) requeueSuccessor() {
	if successor, ok := r.pending.Repeat(); ok {
		r.queue.Push(successor)
	}
}

func (r *run) apply() {
	r.acc.Apply(r.pending.SignedAmount())
	r.acc.Link(r.pending.ID)
	r.applied++
	r.requeueSuccessor()
	r.pop()
}

func (r *run) skip() {
	log.WithFields(log.Fields{
		"event": r.pending.ID,
		"date":  r.pending.StartDate.String(),
	}).Debug("skipping occurrence before window")
	r.skipped++
	r.requeueSuccessor()
	r.pop()
}
