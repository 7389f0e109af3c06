package geo

import (
	"errors"
	"sync/atomic"
	"testing"
)

type countingReloader struct {
	calls atomic.Int32
	err   error
}

func (r *countingReloader) Reload() error {
	r.calls.Add(1)
	return r.err
}

// TestNewScheduler_InvalidSpec tests schedule parsing errors
func TestNewScheduler_InvalidSpec(t *testing.T) {
	for _, spec := range []string{"", "not a schedule", "61 * * * *", "@every nope"} {
		if _, err := NewScheduler(spec, "csv", &countingReloader{}, nil); err == nil {
			t.Errorf("%q: expected error, got nil", spec)
		}
	}
}

// TestScheduler_RunsReload tests the registered job
func TestScheduler_RunsReload(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"success", nil},
		{"failure", errors.New("file vanished")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reloader := &countingReloader{err: tt.err}

			s, err := NewScheduler("@daily", "csv", reloader, nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			entries := s.cron.Entries()
			if len(entries) != 1 {
				t.Fatalf("expected 1 scheduled job, got %d", len(entries))
			}
			entries[0].Job.Run()

			if reloader.calls.Load() != 1 {
				t.Errorf("expected 1 reload, got %d", reloader.calls.Load())
			}
		})
	}
}

// TestScheduler_StartStop tests the lifecycle
func TestScheduler_StartStop(t *testing.T) {
	reloader := &countingReloader{}

	s, err := NewScheduler("@every 1h", "maxmind", reloader, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s.Start()
	<-s.Stop().Done()

	if reloader.calls.Load() != 0 {
		t.Errorf("expected no reloads, got %d", reloader.calls.Load())
	}
}
