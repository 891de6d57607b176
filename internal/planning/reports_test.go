package planning_test

import (
	"context"
	"errors"
	"testing"

	"github.com/p-n-ai/unit-planner/internal/planning"
	"github.com/p-n-ai/unit-planner/internal/store"
)

func TestWeekReport_Progress(t *testing.T) {
	tests := []struct {
		name   string
		report planning.WeekReport
		want   int
	}{
		{"nothing done", planning.WeekReport{}, 0},
		{"activities only", planning.WeekReport{ActivitiesCompleted: true}, 50},
		{"assessments only", planning.WeekReport{AssessmentsCompleted: true}, 50},
		{"both", planning.WeekReport{ActivitiesCompleted: true, AssessmentsCompleted: true}, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.report.Progress(); got != tt.want {
				t.Errorf("Progress() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestReportStore_PutGet(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryKV()
	reports := planning.NewReportStore(kv)

	got, err := reports.Get(ctx, "5a", "June 2024")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("Get() on empty month = %v, want empty map", got)
	}

	if err := reports.Put(ctx, "5a", "June 2024", planning.WeekReport{WeekID: "w1", Notes: "first"}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := reports.Put(ctx, "5a", "June 2024", planning.WeekReport{WeekID: "w2", ActivitiesCompleted: true}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := reports.Put(ctx, "5a", "June 2024", planning.WeekReport{WeekID: "w1", Notes: "revised"}); err != nil {
		t.Fatalf("Put() replace error = %v", err)
	}

	got, err = reports.Get(ctx, "5a", "June 2024")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(got) != 2 || got["w1"].Notes != "revised" || !got["w2"].ActivitiesCompleted {
		t.Errorf("Get() = %+v", got)
	}

	if other, _ := reports.Get(ctx, "5a", "July 2024"); len(other) != 0 {
		t.Errorf("July reports = %+v, want none", other)
	}
	if _, ok, _ := kv.Get(ctx, store.WeekReportKey("5a", "June 2024")); !ok {
		t.Error("reports not stored under the week report key")
	}
}

func TestReportStore_EmptyWeekID(t *testing.T) {
	reports := planning.NewReportStore(store.NewMemoryKV())
	err := reports.Put(context.Background(), "5a", "June 2024", planning.WeekReport{})
	if !errors.Is(err, planning.ErrWeekNotFound) {
		t.Errorf("Put() error = %v, want ErrWeekNotFound", err)
	}
}
