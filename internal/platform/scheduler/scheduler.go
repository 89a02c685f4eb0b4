// Package scheduler запускает периодические задачи по cron-расписанию.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Job - функция периодической задачи.
type Job func(ctx context.Context) error

// JobOptions настраивает выполнение задачи.
type JobOptions struct {
	// Name используется в логах.
	Name string
	// Timeout ограничивает одно выполнение. Ноль - без ограничения.
	Timeout time.Duration
	// SkipIfRunning пропускает запуск, пока предыдущий не завершился.
	SkipIfRunning bool
}

// cronLogger направляет логи cron в slog.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, kv ...any) {
	l.logger.LogAttrs(context.Background(), slog.LevelDebug, msg, attrs(kv)...)
}

func (l cronLogger) Error(err error, msg string, kv ...any) {
	l.logger.LogAttrs(context.Background(), slog.LevelError, msg,
		append([]slog.Attr{slog.Any("error", err)}, attrs(kv)...)...)
}

func attrs(kv []any) []slog.Attr {
	out := make([]slog.Attr, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprint(kv[i])
		}
		out = append(out, slog.Any(key, kv[i+1]))
	}
	return out
}

// Scheduler управляет cron-задачами.
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
	ctx    context.Context
	cancel context.CancelFunc

	startOnce sync.Once
	stopOnce  sync.Once
}

// New создаёт планировщик. Расписания принимают поле секунд и дескрипторы
// вида "@every 30s".
func New(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	cl := cronLogger{logger: logger.With("component", "cron")}
	return &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl)),
		),
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Add регистрирует задачу по расписанию.
func (s *Scheduler) Add(schedule string, job Job, opts JobOptions) (cron.EntryID, error) {
	name := opts.Name
	if name == "" {
		name = "unnamed"
	}

	var running sync.Mutex
	id, err := s.cron.AddFunc(schedule, func() {
		if opts.SkipIfRunning {
			if !running.TryLock() {
				s.logger.Debug("job still running, skipped", "name", name)
				return
			}
			defer running.Unlock()
		}
		s.run(name, job, opts.Timeout)
	})
	if err != nil {
		return 0, fmt.Errorf("add job %q with schedule %q: %w", name, schedule, err)
	}
	s.logger.Info("job scheduled", "name", name, "schedule", schedule, "id", id)
	return id, nil
}

func (s *Scheduler) run(name string, job Job, timeout time.Duration) {
	ctx := s.ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	if err := job(ctx); err != nil {
		s.logger.Error("job failed", "name", name, "error", err, "duration", time.Since(start))
		return
	}
	s.logger.Debug("job completed", "name", name, "duration", time.Since(start))
}

// Start запускает планировщик. Повторные вызовы ничего не делают.
func (s *Scheduler) Start() {
	s.startOnce.Do(func() {
		s.cron.Start()
		s.logger.Info("scheduler started")
	})
}

// Stop отменяет контекст задач и ждёт их завершения, но не дольше ctx.
func (s *Scheduler) Stop(ctx context.Context) error {
	var done context.Context
	s.stopOnce.Do(func() {
		s.cancel()
		done = s.cron.Stop()
	})
	if done == nil {
		return nil
	}

	select {
	case <-done.Done():
		s.logger.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("scheduler stop deadline exceeded")
		return ctx.Err()
	}
}
