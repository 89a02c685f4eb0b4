package pg

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// WaitStrategy определяет рост задержки между попытками подключения.
type WaitStrategy int

const (
	// LinearWait - задержка растёт на InitialInterval
	LinearWait WaitStrategy = iota
	// ExponentialWait - задержка удваивается
	ExponentialWait
)

// HealthCheckOptions содержит опции ожидания готовности базы.
type HealthCheckOptions struct {
	// MaxRetries - максимальное количество попыток (0 = до отмены контекста)
	MaxRetries int
	// InitialInterval - начальная задержка между попытками
	InitialInterval time.Duration
	// MaxInterval - верхняя граница задержки
	MaxInterval time.Duration
	// Strategy - стратегия роста задержки
	Strategy WaitStrategy
	// PingTimeout - таймаут одной попытки
	PingTimeout time.Duration
}

// DefaultHealthCheckOptions возвращает опции ожидания по умолчанию.
func DefaultHealthCheckOptions() HealthCheckOptions {
	return HealthCheckOptions{
		MaxRetries:      10,
		InitialInterval: time.Second,
		MaxInterval:     30 * time.Second,
		Strategy:        ExponentialWait,
		PingTimeout:     5 * time.Second,
	}
}

// Pinger - всё, что умеет проверять соединение; *pgxpool.Pool подходит.
type Pinger interface {
	Ping(ctx context.Context) error
}

// WaitReady пингует p до первого успеха, исчерпания попыток или отмены ctx.
func WaitReady(ctx context.Context, p Pinger, opts HealthCheckOptions) error {
	if p == nil {
		return errors.New("pool is nil")
	}

	interval := opts.InitialInterval
	for attempt := 1; ; attempt++ {
		err := Ping(ctx, p, opts.PingTimeout)
		if err == nil {
			return nil
		}
		if opts.MaxRetries > 0 && attempt >= opts.MaxRetries {
			return fmt.Errorf("database not available after %d attempts: %w", attempt, err)
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled after %d attempts: %w", attempt, ctx.Err())
		case <-time.After(interval):
		}
		interval = calculateNextInterval(interval, opts)
	}
}

// Ping выполняет разовую проверку с таймаутом.
func Ping(ctx context.Context, p Pinger, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := p.Ping(ctx); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}
	return nil
}

func calculateNextInterval(current time.Duration, opts HealthCheckOptions) time.Duration {
	var next time.Duration
	switch opts.Strategy {
	case LinearWait:
		next = current + opts.InitialInterval
	case ExponentialWait:
		next = current * 2
	default:
		return opts.InitialInterval
	}
	if opts.MaxInterval > 0 && next > opts.MaxInterval {
		return opts.MaxInterval
	}
	return next
}
