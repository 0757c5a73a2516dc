package event

import "time"

// MaxRecurrences caps how many weekly rows a single submit may write.
const MaxRecurrences = 10

// Occurrence is one concrete row produced by expanding a submitted event.
type Occurrence struct {
	Start time.Time
	End   *time.Time
}

// Recurrences clamps num_recurrences into [1, MaxRecurrences]. Zero and
// negative values are floored to 1 so a submit always writes at least one
// row.
func (r SaveEventRequest) Recurrences() int {
	n := r.NumRecurrences

	if n > MaxRecurrences {
		n = MaxRecurrences
	}
	if n < 1 {
		n = 1
	}

	return n
}

// Expand materializes the weekly occurrences: occurrence i starts 7*i days
// after the base start, with the end shifted by the same amount when set.
// Rows are fully independent; there is no series linkage.
func (r SaveEventRequest) Expand() []Occurrence {
	n := r.Recurrences()
	out := make([]Occurrence, 0, n)

	for i := 0; i < n; i++ {
		occ := Occurrence{
			Start: r.Start.Time().AddDate(0, 0, 7*i),
		}

		if r.End != nil && !r.End.IsZero() {
			end := r.End.Time().AddDate(0, 0, 7*i)
			occ.End = &end
		}

		out = append(out, occ)
	}

	return out
}
