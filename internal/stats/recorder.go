// Package stats counts the errors handled by the error middleware and
// periodically logs a summary.
package stats

import (
	"context"
	"log/slog"
	"maps"
	"sync"

	"github.com/gin-gonic/gin"

	"apierrmw/internal/platform/scheduler"
	"apierrmw/pkg/apierr"
)

// Unhandled is the bucket for errors the normalizer did not act on.
const Unhandled = "UNHANDLED"

// Snapshot is a copy of the counters.
type Snapshot struct {
	Total  int
	ByCode map[string]int
}

// Recorder counts errors by response code.
type Recorder struct {
	mu     sync.Mutex
	total  int
	byCode map[string]int
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{byCode: make(map[string]int)}
}

// Intercept matches ginmw.Interceptor. It only counts and never stops
// processing.
func (r *Recorder) Intercept(resp *apierr.ErrorResponse, _ any, _ *gin.Context) bool {
	code := Unhandled
	if resp != nil {
		code = resp.Code
	}
	r.mu.Lock()
	r.total++
	r.byCode[code]++
	r.mu.Unlock()
	return true
}

// Snapshot returns the current counters.
func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Snapshot{Total: r.total, ByCode: maps.Clone(r.byCode)}
}

// Drain returns the counters and resets them.
func (r *Recorder) Drain() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := Snapshot{Total: r.total, ByCode: r.byCode}
	r.total = 0
	r.byCode = make(map[string]int)
	return s
}

// Schedule registers a job on s that logs and resets the counters. Quiet
// periods are not logged.
func (r *Recorder) Schedule(s *scheduler.Scheduler, schedule string, log *slog.Logger) error {
	if log == nil {
		log = slog.Default()
	}
	_, err := s.Add(schedule, func(ctx context.Context) error {
		snap := r.Drain()
		if snap.Total == 0 {
			return nil
		}
		args := make([]any, 0, len(snap.ByCode)*2+2)
		args = append(args, "total", snap.Total)
		for code, n := range snap.ByCode {
			args = append(args, code, n)
		}
		log.InfoContext(ctx, "error summary", slog.Group("errors", args...))
		return nil
	}, scheduler.JobOptions{Name: "error-stats", SkipIfRunning: true})
	return err
}
