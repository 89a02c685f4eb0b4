package shared_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"apierrmw/internal/shared"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestWrap(t *testing.T) {
	assert.Nil(t, shared.Wrap(nil, "ctx"))
	assert.Nil(t, shared.Wrapf(nil, "item %d", 1))

	orig := errors.New("original")
	assert.Same(t, orig, shared.Wrap(orig, ""))

	err := shared.Wrapf(orig, "item %d", 7)
	assert.EqualError(t, err, "item 7: original")
	assert.ErrorIs(t, err, orig)
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want shared.Kind
	}{
		{"nil", nil, shared.KindUnknown},
		{"plain", errors.New("x"), shared.KindUnknown},
		{"not found", fmt.Errorf("get: %w", shared.ErrNotFound), shared.KindNotFound},
		{"validation", shared.ErrValidation, shared.KindValidation},
		{"unauthorized", shared.ErrUnauthorized, shared.KindUnauthorized},
		{"conflict", shared.ErrConflict, shared.KindConflict},
		{"dependency", shared.ErrDependencyFailure, shared.KindDependencyFailure},
		{"deadline", context.DeadlineExceeded, shared.KindTimeout},
		{"net timeout", timeoutErr{}, shared.KindTimeout},
		{"canceled", context.Canceled, shared.KindCanceled},
		{"join prefers canceled", errors.Join(shared.ErrNotFound, context.Canceled), shared.KindCanceled},
		{"join prefers timeout", errors.Join(shared.ErrConflict, shared.ErrTimeout), shared.KindTimeout},
		{"join first sentinel", errors.Join(shared.ErrDependencyFailure, shared.ErrNotFound), shared.KindNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, shared.KindOf(tt.err))
		})
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "NotFound", shared.KindNotFound.String())
	assert.Equal(t, "DependencyFailure", shared.KindDependencyFailure.String())
	assert.Equal(t, "Unknown", shared.Kind(99).String())
}

func TestMarkKind(t *testing.T) {
	orig := errors.New("duplicate key")

	marked := shared.MarkKind(orig, shared.KindConflict)
	assert.True(t, shared.IsConflict(marked))
	assert.ErrorIs(t, marked, orig)
	assert.Same(t, marked, shared.MarkKind(marked, shared.KindConflict))

	assert.Same(t, orig, shared.MarkKind(orig, shared.KindUnknown))
	assert.Same(t, orig, shared.MarkKind(orig, shared.KindCanceled))
	assert.Equal(t, shared.ErrNotFound, shared.MarkKind(nil, shared.KindNotFound))
	assert.Nil(t, shared.MarkKind(nil, shared.KindCanceled))
	assert.True(t, shared.IsTimeout(shared.MarkKind(orig, shared.KindTimeout)))
}

func TestSentinelOf(t *testing.T) {
	assert.Equal(t, shared.ErrNotFound, shared.SentinelOf(shared.KindNotFound))
	assert.Equal(t, shared.ErrTimeout, shared.SentinelOf(shared.KindTimeout))
	assert.Nil(t, shared.SentinelOf(shared.KindCanceled))
	assert.Nil(t, shared.SentinelOf(shared.KindUnknown))
}

func TestPredicates(t *testing.T) {
	assert.True(t, shared.IsNotFound(shared.Wrap(shared.ErrNotFound, "x")))
	assert.True(t, shared.IsUnauthorized(shared.ErrUnauthorized))
	assert.False(t, shared.IsConflict(nil))
	assert.False(t, shared.IsTimeout(nil))
	assert.False(t, shared.IsCanceled(errors.New("x")))
}
