// Package jobs agenda los procesos de fondo: el barrido fiscal de
// documentos pendientes y el envejecimiento de cuentas por cobrar.
// Con varias instancias del API, un lock de líder en Redis evita
// pasadas simultáneas; sin Redis se asume instancia única.
package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Job es una pasada ejecutable bajo el scheduler.
type Job interface {
	Run(ctx context.Context) error
}

// JobFunc adapta una función a Job.
type JobFunc func(ctx context.Context) error

func (f JobFunc) Run(ctx context.Context) error { return f(ctx) }

type entry struct {
	name     string
	interval time.Duration
	job      Job
}

// Scheduler corre jobs periódicos hasta que el contexto se cancela.
type Scheduler struct {
	locker  Locker
	log     zerolog.Logger
	entries []entry
	wg      sync.WaitGroup
}

// NewScheduler construye un scheduler con el locker dado.
func NewScheduler(locker Locker, log zerolog.Logger) *Scheduler {
	if locker == nil {
		locker = LocalLocker{}
	}
	return &Scheduler{locker: locker, log: log}
}

// Register agenda un job con el periodo dado. Debe llamarse antes de Start.
func (s *Scheduler) Register(name string, interval time.Duration, job Job) {
	s.entries = append(s.entries, entry{name: name, interval: interval, job: job})
}

// Start lanza una goroutine por job. Cada job corre una primera pasada
// inmediata y luego por ticker; el lock de líder acota cada pasada y
// expira solo si la instancia muere a mitad de una.
func (s *Scheduler) Start(ctx context.Context) {
	for _, e := range s.entries {
		s.wg.Add(1)
		go func(e entry) {
			defer s.wg.Done()
			s.runOnce(ctx, e)

			ticker := time.NewTicker(e.interval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					s.runOnce(ctx, e)
				}
			}
		}(e)
	}
}

// Wait bloquea hasta que todos los jobs terminen tras cancelar el contexto.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

func (s *Scheduler) runOnce(ctx context.Context, e entry) {
	lockKey := "jobs:lock:" + e.name
	acquired, err := s.locker.TryAcquire(ctx, lockKey, e.interval)
	if err != nil {
		s.log.Error().Err(err).Str("job", e.name).Msg("no se pudo consultar el lock de líder")
		return
	}
	if !acquired {
		s.log.Debug().Str("job", e.name).Msg("otra instancia tiene el liderazgo, pasada omitida")
		return
	}
	defer s.locker.Release(ctx, lockKey)

	started := time.Now()
	if err := e.job.Run(ctx); err != nil {
		s.log.Error().Err(err).Str("job", e.name).Msg("pasada del job falló")
		return
	}
	s.log.Debug().Str("job", e.name).Dur("duracion", time.Since(started)).Msg("pasada del job completada")
}
