package planning

import (
	"errors"
	"fmt"
)

// ErrWeekNotFound is returned when a week id is not in the weekly plan.
var ErrWeekNotFound = errors.New("week not found")

// Direction moves a week one position earlier or later.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// Renumber returns a copy of the plan with Number set to position+1.
func (w WeeklyPlan) Renumber() WeeklyPlan {
	out := make(WeeklyPlan, len(w))
	for i, week := range w {
		week.Number = i + 1
		out[i] = week
	}
	return out
}

// Add appends a week at the end.
func (w WeeklyPlan) Add(week Week) WeeklyPlan {
	out := append(append(WeeklyPlan{}, w...), week)
	return out.Renumber()
}

// Delete removes the week with id. Unknown ids leave the plan unchanged.
func (w WeeklyPlan) Delete(id string) WeeklyPlan {
	out := make(WeeklyPlan, 0, len(w))
	for _, week := range w {
		if week.ID != id {
			out = append(out, week)
		}
	}
	return out.Renumber()
}

// Move swaps the week with its neighbour in the given direction. Moving the
// first week up or the last week down is a no-op.
func (w WeeklyPlan) Move(id string, dir Direction) (WeeklyPlan, error) {
	out := append(WeeklyPlan{}, w...)
	i := out.index(id)
	if i < 0 {
		return out.Renumber(), nil
	}

	switch dir {
	case Up:
		if i > 0 {
			out[i-1], out[i] = out[i], out[i-1]
		}
	case Down:
		if i < len(out)-1 {
			out[i], out[i+1] = out[i+1], out[i]
		}
	default:
		return nil, fmt.Errorf("unknown direction %q", dir)
	}
	return out.Renumber(), nil
}

// Update replaces the week with the same id, keeping its position.
func (w WeeklyPlan) Update(week Week) WeeklyPlan {
	out := append(WeeklyPlan{}, w...)
	if i := out.index(week.ID); i >= 0 {
		out[i] = week
	}
	return out.Renumber()
}

// Has reports whether a week with id is in the plan.
func (w WeeklyPlan) Has(id string) bool {
	return w.index(id) >= 0
}

func (w WeeklyPlan) index(id string) int {
	for i, week := range w {
		if week.ID == id {
			return i
		}
	}
	return -1
}
