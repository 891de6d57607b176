package progress

import (
	"math"

	"github.com/p-n-ai/unit-planner/internal/registry"
)

// ClassCompletion is the average completion of the subjects of one class.
type ClassCompletion struct {
	ClassID    string `json:"classId"`
	Name       string `json:"name"`
	Completion int    `json:"completion"`
}

// Analytics is the school-wide planning overview.
type Analytics struct {
	TotalClasses      int               `json:"totalClasses"`
	TotalSubjects     int               `json:"totalSubjects"`
	Published         int               `json:"published"`
	Draft             int               `json:"draft"`
	NotStarted        int               `json:"notStarted"`
	AverageCompletion int               `json:"averageCompletion"`
	Classes           []ClassCompletion `json:"classes"`
}

// Overview computes status counts and average completion over the roster.
// Averages over no subjects are 0.
func Overview(classes []registry.Class) Analytics {
	a := Analytics{
		TotalClasses: len(classes),
		Classes:      make([]ClassCompletion, 0, len(classes)),
	}

	total := 0
	for _, c := range classes {
		classTotal := 0
		for _, s := range c.Subjects {
			switch s.PlanStatus {
			case registry.StatusPublished:
				a.Published++
			case registry.StatusDraft:
				a.Draft++
			default:
				a.NotStarted++
			}
			classTotal += s.CompletionPercentage
		}
		a.TotalSubjects += len(c.Subjects)
		total += classTotal
		a.Classes = append(a.Classes, ClassCompletion{
			ClassID:    c.ID,
			Name:       c.Name,
			Completion: average(classTotal, len(c.Subjects)),
		})
	}
	a.AverageCompletion = average(total, a.TotalSubjects)
	return a
}

func average(sum, n int) int {
	if n == 0 {
		return 0
	}
	return int(math.Round(float64(sum) / float64(n)))
}
