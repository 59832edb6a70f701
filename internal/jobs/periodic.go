package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Job is one unit of background work.
type Job struct {
	// Type labels metrics and logs; use one of the JobType constants.
	Type string
	Run  func(ctx context.Context) error
}

// Func adapts a cleanup function that cannot fail into a Job.
func Func(jobType string, fn func()) Job {
	return Job{
		Type: jobType,
		Run: func(context.Context) error {
			fn()
			return nil
		},
	}
}

// RunOnce executes job, recording its outcome. A panic inside the job is
// recovered and reported as an error so one bad sweep can't take the
// process down.
func RunOnce(ctx context.Context, job Job, metrics *Metrics) (err error) {
	start := time.Now()
	errType := ""
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job %s panicked: %v", job.Type, r)
			errType = "panic"
		}
		metrics.ObserveRun(job.Type, time.Since(start), errType)
		if err != nil {
			slog.WarnContext(ctx, "background job failed", "job_type", job.Type, "error", err)
		}
	}()

	if err = job.Run(ctx); err != nil {
		errType = errorType(err)
	}
	return err
}

// Every runs each job every interval until ctx is done. Jobs run
// sequentially in the order given.
func Every(ctx context.Context, interval time.Duration, metrics *Metrics, jobs ...Job) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			for _, job := range jobs {
				_ = RunOnce(ctx, job, metrics)
			}
		case <-ctx.Done():
			return
		}
	}
}

func errorType(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "error"
	}
}
