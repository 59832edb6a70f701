package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRunOnce(t *testing.T) {
	tests := []struct {
		name        string
		job         Job
		wantErr     bool
		wantStatus  string
		wantErrType string
	}{
		{
			name:       "success",
			job:        Func(JobTypeCacheCleanup, func() {}),
			wantStatus: StatusSuccess,
		},
		{
			name: "error",
			job: Job{Type: JobTypeCacheCleanup, Run: func(context.Context) error {
				return errors.New("sweep failed")
			}},
			wantErr:     true,
			wantStatus:  StatusFailure,
			wantErrType: "error",
		},
		{
			name: "timeout",
			job: Job{Type: JobTypeCacheCleanup, Run: func(context.Context) error {
				return context.DeadlineExceeded
			}},
			wantErr:     true,
			wantStatus:  StatusFailure,
			wantErrType: "timeout",
		},
		{
			name:        "panic is recovered",
			job:         Func(JobTypeCacheCleanup, func() { panic("boom") }),
			wantErr:     true,
			wantStatus:  StatusFailure,
			wantErrType: "panic",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMetrics()

			err := RunOnce(context.Background(), tt.job, m)

			if (err != nil) != tt.wantErr {
				t.Fatalf("RunOnce() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got := testutil.ToFloat64(m.runs.WithLabelValues(tt.job.Type, tt.wantStatus)); got != 1 {
				t.Errorf("expected one %s run, got %v", tt.wantStatus, got)
			}
			if got := sampleCount(t, m.duration, tt.job.Type); got != 1 {
				t.Errorf("expected one duration sample, got %d", got)
			}
			if tt.wantErrType != "" {
				if got := testutil.ToFloat64(m.errors.WithLabelValues(tt.job.Type, tt.wantErrType)); got != 1 {
					t.Errorf("expected one %s error, got %v", tt.wantErrType, got)
				}
			}
		})
	}
}

func TestEvery(t *testing.T) {
	var cacheRuns, limitRuns atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		Every(ctx, 5*time.Millisecond, nil,
			Func(JobTypeCacheCleanup, func() { cacheRuns.Add(1) }),
			Func(JobTypeRateLimitCleanup, func() { limitRuns.Add(1) }),
		)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for cacheRuns.Load() < 3 || limitRuns.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("jobs did not run often enough: cache=%d limit=%d", cacheRuns.Load(), limitRuns.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Every did not return after cancel")
	}
}
