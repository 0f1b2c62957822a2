package jobs

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

type deniedLocker struct{}

func (deniedLocker) TryAcquire(context.Context, string, time.Duration) (bool, error) {
	return false, nil
}

func (deniedLocker) Release(context.Context, string) {}

func TestScheduler_EjecutaPeriodicamente(t *testing.T) {
	var runs atomic.Int32
	s := NewScheduler(LocalLocker{}, zerolog.Nop())
	s.Register("prueba", 10*time.Millisecond, JobFunc(func(context.Context) error {
		runs.Add(1)
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	time.Sleep(60 * time.Millisecond)
	cancel()
	s.Wait()

	// Primera pasada inmediata más al menos una por ticker.
	assert.GreaterOrEqual(t, runs.Load(), int32(2))
}

func TestScheduler_SinLiderazgoNoEjecuta(t *testing.T) {
	var runs atomic.Int32
	s := NewScheduler(deniedLocker{}, zerolog.Nop())
	s.Register("prueba", 10*time.Millisecond, JobFunc(func(context.Context) error {
		runs.Add(1)
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	time.Sleep(40 * time.Millisecond)
	cancel()
	s.Wait()

	assert.Zero(t, runs.Load())
}
