package budget_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/cashflow-engine/budget"
	"github.com/warp/cashflow-engine/generic"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func date(s string) generic.TimePoint {
	return generic.MustParseTimePoint(s)
}

func amount(n int) decimal.Decimal {
	return generic.NewAmountFromInt(n)
}

func dates(effects []budget.Effect) []string {
	out := make([]string, len(effects))
	for i, e := range effects {
		out[i] = e.Date.String()
	}
	return out
}

func totals(effects []budget.Effect) []string {
	out := make([]string, len(effects))
	for i, e := range effects {
		out[i] = e.TotalAmount.String()
	}
	return out
}

func references(effects []budget.Effect) []generic.EventID {
	var out []generic.EventID
	for _, e := range effects {
		out = append(out, e.References...)
	}
	return out
}

// sampleBudget is one income and two expenses in the week of 2023-10-15.
func sampleBudget() (*budget.Budget, []budget.Event) {
	events := []budget.Event{
		budget.NewIncome(amount(1000), date("2023-10-18"), ""),
		budget.NewExpense(amount(50), date("2023-10-19"), ""),
		budget.NewExpense(amount(12), date("2023-10-20"), ""),
	}
	b := budget.New()
	for _, e := range events {
		b.AddEvent(e)
	}
	return b, events
}

// =============================================================================
// SCENARIO TESTS
// =============================================================================

func TestBreakdown_DailyScenario(t *testing.T) {
	// GIVEN: +1000 on Oct 18, -50 on Oct 19, -12 on Oct 20
	// WHEN: breaking down daily from Oct 15 to Oct 23
	// THEN: one bucket per day Oct 15..22, total steps 0 -> 1000 -> 950 -> 938

	b, events := sampleBudget()

	effects, err := b.Breakdown("1 day", date("2023-10-15"), date("2023-10-23"))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"2023-10-15", "2023-10-16", "2023-10-17", "2023-10-18",
		"2023-10-19", "2023-10-20", "2023-10-21", "2023-10-22",
	}, dates(effects))
	assert.Equal(t, []string{"0", "0", "0", "1000", "950", "938", "938", "938"}, totals(effects))

	assert.Equal(t, []generic.EventID{events[0].ID}, effects[3].References)
	assert.Equal(t, []generic.EventID{events[1].ID}, effects[4].References)
	assert.Equal(t, []generic.EventID{events[2].ID}, effects[5].References)
	assert.True(t, effects[4].Change.Equal(amount(-50)))
	assert.True(t, effects[6].Change.IsZero())
	assert.Empty(t, effects[0].References)
}

func TestBreakdown_WeeklyBucketsAggregate(t *testing.T) {
	b, events := sampleBudget()

	effects, err := b.Breakdown("1 week", date("2023-10-15"), date("2023-11-05"))
	require.NoError(t, err)

	assert.Equal(t, []string{"2023-10-15", "2023-10-22", "2023-10-29"}, dates(effects))
	assert.True(t, effects[0].Change.Equal(amount(938)))
	assert.Equal(t, []string{"938", "938", "938"}, totals(effects))
	assert.Equal(t, []generic.EventID{events[0].ID, events[1].ID, events[2].ID}, effects[0].References)
}

// =============================================================================
// RANGE TESTS
// =============================================================================

func TestBreakdown_InvalidRange(t *testing.T) {
	b, _ := sampleBudget()

	for _, end := range []string{"2023-10-20", "2023-10-13"} {
		effects, err := b.Breakdown("1 week", date("2023-10-20"), date(end))

		assert.Nil(t, effects, "no partial result for end %s", end)
		require.Error(t, err)
		assert.True(t, errors.Is(err, generic.ErrInvalidRange))

		var rangeErr *generic.InvalidRangeError
		require.ErrorAs(t, err, &rangeErr)
		assert.Equal(t, "2023-10-20", rangeErr.Start.String())
		assert.Equal(t, end, rangeErr.End.String())
	}
}

func TestBreakdown_DefaultEndIsSixMonths(t *testing.T) {
	b := budget.New()

	effects, err := b.Breakdown("1 month", date("2023-01-15"), generic.TimePoint{})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"2023-01-15", "2023-02-15", "2023-03-15",
		"2023-04-15", "2023-05-15", "2023-06-15",
	}, dates(effects))
}

func TestBreakdown_HorizonIsConfigurable(t *testing.T) {
	b := budget.New(budget.WithHorizonMonths(2))

	effects, err := b.Breakdown("1 month", date("2023-01-15"), generic.TimePoint{})
	require.NoError(t, err)

	assert.Equal(t, []string{"2023-01-15", "2023-02-15"}, dates(effects))
}

func TestBreakdown_StepLongerThanWindow(t *testing.T) {
	// GIVEN: a month step over a three-day window
	// THEN: a single bucket holding the events inside the window

	b, _ := sampleBudget()

	effects, err := b.Breakdown("1 month", date("2023-10-18"), date("2023-10-20"))
	require.NoError(t, err)

	require.Len(t, effects, 1)
	assert.Equal(t, "950", effects[0].TotalAmount.String(), "the Oct 20 expense is on the end date and excluded")
}

func TestBreakdown_BucketLimit(t *testing.T) {
	b := budget.New(budget.WithMaxBuckets(3))

	effects, err := b.Breakdown("1 day", date("2023-10-01"), date("2023-10-04"))
	require.NoError(t, err)
	assert.Len(t, effects, 3)

	effects, err = b.Breakdown("1 day", date("2023-10-01"), date("2023-10-05"))
	assert.Nil(t, effects)
	require.ErrorIs(t, err, generic.ErrTooManyBuckets)
	assert.True(t, generic.IsClientError(err))

	var limitErr *generic.BucketLimitError
	require.ErrorAs(t, err, &limitErr)
	assert.Equal(t, 3, limitErr.Max)
	assert.Equal(t, generic.IntervalDay, limitErr.Step)
}

func TestBreakdown_DefaultBucketLimitRejectsHugeWindows(t *testing.T) {
	b := budget.New()

	_, err := b.Breakdown("1 day", date("0001-01-01"), date("9999-12-31"))

	assert.ErrorIs(t, err, generic.ErrTooManyBuckets)
}

func TestBreakdown_BucketLimitCanBeRemoved(t *testing.T) {
	b := budget.New(budget.WithMaxBuckets(0))

	effects, err := b.Breakdown("1 day", date("2020-01-01"), date("2040-01-01"))
	require.NoError(t, err)

	assert.Len(t, effects, 7305)
}

// =============================================================================
// STEP RESOLUTION TESTS
// =============================================================================

func TestBreakdown_UnsupportedStepIsDaily(t *testing.T) {
	b := budget.New()

	effects, err := b.Breakdown("3 days", date("2023-10-01"), date("2023-10-04"))
	require.NoError(t, err)

	assert.Equal(t, []string{"2023-10-01", "2023-10-02", "2023-10-03"}, dates(effects))
}

func TestBreakdown_EmptyStepIsWeekly(t *testing.T) {
	b := budget.New()

	effects, err := b.Breakdown("", date("2023-10-01"), date("2023-10-20"))
	require.NoError(t, err)

	assert.Equal(t, []string{"2023-10-01", "2023-10-08", "2023-10-15"}, dates(effects))
}

func TestResolveStep(t *testing.T) {
	b := budget.New()

	assert.Equal(t, generic.IntervalWeek, b.ResolveStep(""))
	assert.Equal(t, generic.IntervalDay, b.ResolveStep("fortnight"))
	assert.Equal(t, generic.IntervalMonth, b.ResolveStep("1 month"))
}

func TestResolveEnd(t *testing.T) {
	b := budget.New()

	assert.Equal(t, "2024-04-30", b.ResolveEnd(date("2023-10-31"), generic.TimePoint{}).String())
	assert.Equal(t, "2023-11-01", b.ResolveEnd(date("2023-10-31"), date("2023-11-01")).String())
}

func TestBreakdown_DefaultStepIsConfigurable(t *testing.T) {
	b := budget.New(budget.WithDefaultStep(generic.IntervalMonth))

	effects, err := b.Breakdown("", date("2023-10-01"), date("2024-01-01"))
	require.NoError(t, err)

	assert.Equal(t, []string{"2023-10-01", "2023-11-01", "2023-12-01"}, dates(effects))
}

// =============================================================================
// BOUNDARY TESTS
// =============================================================================

func TestBreakdown_EventOnBoundaryOpensNextBucket(t *testing.T) {
	// GIVEN: weekly buckets starting Oct 2 and an income exactly on Oct 9
	// THEN: it lands in the bucket starting Oct 9, not the one ending there

	b := budget.New()
	income := budget.NewIncome(amount(100), date("2023-10-09"), "")
	b.AddEvent(income)

	effects, err := b.Breakdown("1 week", date("2023-10-02"), date("2023-10-30"))
	require.NoError(t, err)

	require.Equal(t, []string{"2023-10-02", "2023-10-09", "2023-10-16", "2023-10-23"}, dates(effects))
	assert.True(t, effects[0].Change.IsZero())
	assert.Empty(t, effects[0].References)
	assert.True(t, effects[1].Change.Equal(amount(100)))
	assert.Equal(t, []generic.EventID{income.ID}, effects[1].References)
}

func TestBreakdown_EventsInLastBucketAreSettled(t *testing.T) {
	// GIVEN: two expenses on the day of the last bucket and one on the end date
	// THEN: both same-day expenses apply, the end-date one does not

	b := budget.New()
	b.AddEvent(budget.NewExpense(amount(5), date("2023-10-17"), ""))
	b.AddEvent(budget.NewExpense(amount(7), date("2023-10-17"), ""))
	b.AddEvent(budget.NewExpense(amount(100), date("2023-10-18"), ""))

	effects, err := b.Breakdown("1 day", date("2023-10-15"), date("2023-10-18"))
	require.NoError(t, err)

	require.Equal(t, []string{"2023-10-15", "2023-10-16", "2023-10-17"}, dates(effects))
	assert.Len(t, effects[2].References, 2)
	assert.Equal(t, "-12", effects[2].TotalAmount.String())
}

func TestBreakdown_OccurrencesBeforeWindowAreSkipped(t *testing.T) {
	// GIVEN: a one-off income before the window and a daily expense that
	//        started five days before the window
	// THEN: only in-window occurrences of the expense contribute

	b := budget.New()
	b.AddEvent(budget.NewIncome(amount(1000), date("2023-09-01"), ""))
	b.AddEvent(budget.NewExpense(amount(3), date("2023-10-05"), "1 day"))

	effects, err := b.Breakdown("1 day", date("2023-10-10"), date("2023-10-13"))
	require.NoError(t, err)

	assert.Equal(t, []string{"2023-10-10", "2023-10-11", "2023-10-12"}, dates(effects))
	assert.Equal(t, []string{"-3", "-6", "-9"}, totals(effects))
}

// =============================================================================
// RECURRENCE TESTS
// =============================================================================

func TestBreakdown_DailyRecurrenceExpandsPerDay(t *testing.T) {
	// GIVEN: a daily income of 10 starting on the window start
	// WHEN: running ten daily buckets
	// THEN: ten occurrences, each with its own ID, total 100

	b := budget.New()
	b.AddEvent(budget.NewIncome(amount(10), date("2023-10-01"), "1 day"))

	effects, err := b.Breakdown("1 day", date("2023-10-01"), date("2023-10-11"))
	require.NoError(t, err)

	require.Len(t, effects, 10)
	refs := references(effects)
	assert.Len(t, refs, 10)

	seen := make(map[generic.EventID]bool)
	for _, id := range refs {
		assert.False(t, seen[id], "duplicate reference %s", id)
		seen[id] = true
	}

	for _, e := range effects {
		assert.True(t, e.Change.Equal(amount(10)), "bucket %s", e.Date)
	}
	assert.Equal(t, "100", effects[len(effects)-1].TotalAmount.String())
}

func TestBreakdown_FinalTotalIsSumOfAppliedOccurrences(t *testing.T) {
	b := budget.New(budget.WithOpeningBalance(amount(500)))
	b.AddEvent(budget.NewIncome(amount(2000), date("2023-01-01"), "1 month"))
	b.AddEvent(budget.NewExpense(amount(100), date("2023-01-03"), "1 week"))
	b.AddEvent(budget.NewExpense(amount(250), date("2023-02-14"), ""))

	effects, err := b.Breakdown("1 week", date("2023-01-01"), date("2023-04-01"))
	require.NoError(t, err)

	sum := amount(500)
	for _, e := range effects {
		sum = sum.Add(e.Change)
	}
	last := effects[len(effects)-1]
	assert.True(t, last.TotalAmount.Equal(sum), "total %s, sum %s", last.TotalAmount, sum)

	// Jan 1, Feb 1, Mar 1 salaries; Tuesdays Jan 3 .. Mar 28 (13); one-off.
	assert.Equal(t, 3+13+1, len(references(effects)))
	assert.Equal(t, "500", effects[0].TotalAmount.Sub(effects[0].Change).String(), "opening balance is carried")
	assert.True(t, last.TotalAmount.Equal(amount(500+3*2000-13*100-250)))
}

// =============================================================================
// REGISTRATION TESTS
// =============================================================================

func TestAddEvent_Idempotent(t *testing.T) {
	once, events := sampleBudget()

	twice := budget.New()
	for _, e := range events {
		assert.True(t, twice.AddEvent(e))
		assert.False(t, twice.AddEvent(e))
	}

	assert.Equal(t, 3, twice.Len())

	a, err := once.Breakdown("1 day", date("2023-10-15"), date("2023-10-23"))
	require.NoError(t, err)
	c, err := twice.Breakdown("1 day", date("2023-10-15"), date("2023-10-23"))
	require.NoError(t, err)
	assert.Equal(t, a, c)
}

func TestBreakdown_RepeatedCallsAreEqual(t *testing.T) {
	b, _ := sampleBudget()

	first, err := b.Breakdown("1 day", date("2023-10-15"), date("2023-10-23"))
	require.NoError(t, err)
	second, err := b.Breakdown("1 day", date("2023-10-15"), date("2023-10-23"))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 3, b.Len())
}

func TestBreakdown_RecurringRunsDoNotAccumulate(t *testing.T) {
	// Successor IDs are fresh per run, so compare the money, not the links.
	b := budget.New()
	b.AddEvent(budget.NewExpense(amount(4), date("2023-10-01"), "1 day"))

	first, err := b.Breakdown("1 week", date("2023-10-01"), date("2023-10-29"))
	require.NoError(t, err)
	second, err := b.Breakdown("1 week", date("2023-10-01"), date("2023-10-29"))
	require.NoError(t, err)

	assert.Equal(t, totals(first), totals(second))
	assert.Equal(t, []string{"-28", "-56", "-84", "-112"}, totals(second))
	assert.Len(t, references(second), 28)
}

func TestEvents_OrderedByDate(t *testing.T) {
	b, events := sampleBudget()
	b.AddEvent(events[2])

	got := b.Events()

	require.Len(t, got, 3)
	assert.Equal(t, events[0].ID, got[0].ID)
	assert.Equal(t, events[1].ID, got[1].ID)
	assert.Equal(t, events[2].ID, got[2].ID)
}

func TestBudget_ConcurrentAddAndBreakdown(t *testing.T) {
	b := budget.New()
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			b.AddEvent(budget.NewIncome(amount(i), date("2023-10-02").AddDays(i), ""))
		}(i)
		go func() {
			defer wg.Done()
			_, err := b.Breakdown("1 day", date("2023-10-01"), date("2023-10-20"))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	effects, err := b.Breakdown("1 day", date("2023-10-01"), date("2023-10-20"))
	require.NoError(t, err)
	assert.Equal(t, "28", effects[len(effects)-1].TotalAmount.String())
	assert.Equal(t, 8, b.Len())
}
