package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRunPipelineOrderAndAbort(t *testing.T) {
	var order []string

	s := New(time.Hour,
		Task{Name: "extract", Run: func(ctx context.Context) error {
			order = append(order, "extract")
			return nil
		}},
		Task{Name: "transform", Run: func(ctx context.Context) error {
			order = append(order, "transform")
			return errors.New("boom")
		}},
		Task{Name: "load", Run: func(ctx context.Context) error {
			order = append(order, "load")
			return nil
		}},
	)

	s.RunPipeline()

	// transform fails, gets its single retry, and load never runs. extract is
	// not re-run by the transform failure.
	want := []string{"extract", "transform", "transform"}
	if len(order) != len(want) {
		t.Fatalf("task order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("task order = %v, want %v", order, want)
		}
	}
}

func TestRunTaskRetrySucceeds(t *testing.T) {
	attempts := 0

	s := New(time.Hour,
		Task{Name: "flaky", Run: func(ctx context.Context) error {
			attempts++
			if attempts == 1 {
				return errors.New("transient")
			}
			return nil
		}},
		Task{Name: "after", Run: func(ctx context.Context) error {
			attempts += 10
			return nil
		}},
	)

	s.RunPipeline()

	// flaky runs twice, then the next task still runs.
	if attempts != 12 {
		t.Errorf("attempts = %d, want 12 (2 flaky runs + downstream)", attempts)
	}
}
