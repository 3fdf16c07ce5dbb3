package metricsstore

import (
	"context"
	"time"

	"github.com/dalemusser/prepboard/internal/app/store/records"
)

// Counts is the set of board totals exported as gauges.
type Counts struct {
	Announcements     int64
	Assignments       int64
	OpenAssignments   int64
	ClosedAssignments int64
}

// FetchCounts returns record totals from the selected backend. Each count is
// independent: on error that counter is 0 and the first error is returned.
func FetchCounts(ctx context.Context, b records.Backend, now time.Time) (Counts, error) {
	var out Counts
	var first error
	keep := func(err error) {
		if err != nil && first == nil {
			first = err
		}
	}

	if _, n, err := b.Announcements.List(ctx, records.ListOptions{Limit: 1}); err == nil {
		out.Announcements = n
	} else {
		keep(err)
	}

	for _, c := range []struct {
		status string
		dst    *int64
	}{
		{records.StatusAll, &out.Assignments},
		{records.StatusOpen, &out.OpenAssignments},
		{records.StatusClosed, &out.ClosedAssignments},
	} {
		_, n, err := b.Assignments.List(ctx, records.ListOptions{Limit: 1, Status: c.status, Now: now})
		if err != nil {
			keep(err)
			continue
		}
		*c.dst = n
	}
	return out, first
}
