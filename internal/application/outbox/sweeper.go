// Package outbox reconcilia los documentos fiscales que quedaron
// PENDIENTE: el barrido los relee desde sus snapshots, reintenta la
// emisión y actualiza el estado con la respuesta. Nunca mantiene una
// transacción de BD abierta a través de la llamada de red.
package outbox

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/jhoicas/Puntoventa-api/internal/application"
	"github.com/jhoicas/Puntoventa-api/internal/domain"
	"github.com/jhoicas/Puntoventa-api/internal/domain/entity"
	"github.com/jhoicas/Puntoventa-api/internal/domain/repository"
)

// ErrSweepInProgress indica que ya hay una pasada corriendo en este
// proceso; la nueva se descarta, no se encola.
var ErrSweepInProgress = errors.New("el barrido fiscal ya está en ejecución")

// Config parametriza el barrido.
type Config struct {
	// Grace es la antigüedad mínima de un documento antes de reintentar;
	// evita competir con el envío síncrono que sigue al commit.
	Grace time.Duration
	// BatchSize limita cuántos documentos por familia procesa una pasada.
	BatchSize int
	// SubmitTimeout acota cada llamada a la pasarela.
	SubmitTimeout time.Duration
}

// DefaultConfig son los valores de operación normales.
func DefaultConfig() Config {
	return Config{
		Grace:         5 * time.Minute,
		BatchSize:     50,
		SubmitTimeout: 30 * time.Second,
	}
}

// FamilyStats acumula el resultado por familia de documentos.
type FamilyStats struct {
	Processed int
	Accepted  int
	Rejected  int
	Failed    int
}

// RunStats es el resultado de una pasada completa.
type RunStats struct {
	Ventas FamilyStats
	Notas  FamilyStats
	Guias  FamilyStats
}

// Sweeper ejecuta pasadas de reconciliación.
type Sweeper struct {
	sales      repository.SaleRepository
	notes      repository.CreditNoteRepository
	guides     repository.DispatchRepository
	customers  repository.CustomerRepository
	facturador application.Facturador
	cfg        Config
	log        zerolog.Logger

	running atomic.Bool
}

// NewSweeper construye el barrido.
func NewSweeper(
	sales repository.SaleRepository,
	notes repository.CreditNoteRepository,
	guides repository.DispatchRepository,
	customers repository.CustomerRepository,
	facturador application.Facturador,
	cfg Config,
	log zerolog.Logger,
) *Sweeper {
	if cfg.Grace <= 0 {
		cfg.Grace = DefaultConfig().Grace
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultConfig().BatchSize
	}
	if cfg.SubmitTimeout <= 0 {
		cfg.SubmitTimeout = DefaultConfig().SubmitTimeout
	}
	return &Sweeper{
		sales:      sales,
		notes:      notes,
		guides:     guides,
		customers:  customers,
		facturador: facturador,
		cfg:        cfg,
		log:        log,
	}
}

// Run ejecuta una pasada sobre las tres familias. No es reentrante: una
// pasada en curso hace que la siguiente retorne ErrSweepInProgress.
func (s *Sweeper) Run(ctx context.Context) (*RunStats, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrSweepInProgress
	}
	defer s.running.Store(false)

	cutoff := time.Now().Add(-s.cfg.Grace)
	stats := &RunStats{}

	stats.Ventas = s.sweepSales(ctx, cutoff)
	stats.Notas = s.sweepNotes(ctx, cutoff)
	stats.Guias = s.sweepGuides(ctx, cutoff)

	s.log.Info().
		Int("ventas", stats.Ventas.Processed).
		Int("notas", stats.Notas.Processed).
		Int("guias", stats.Guias.Processed).
		Int("aceptados", stats.Ventas.Accepted+stats.Notas.Accepted+stats.Guias.Accepted).
		Int("rechazados", stats.Ventas.Rejected+stats.Notas.Rejected+stats.Guias.Rejected).
		Int("fallidos", stats.Ventas.Failed+stats.Notas.Failed+stats.Guias.Failed).
		Msg("barrido fiscal completado")
	return stats, nil
}

func (s *Sweeper) sweepSales(ctx context.Context, cutoff time.Time) FamilyStats {
	var st FamilyStats
	sales, err := s.sales.ListPendientesSUNAT(ctx, cutoff, s.cfg.BatchSize)
	if err != nil {
		s.log.Error().Err(err).Msg("no se pudieron listar ventas pendientes")
		return st
	}
	for _, sale := range sales {
		st.Processed++
		customer := s.customerOf(ctx, sale.TenantID, sale.CustomerID)
		resp, err := s.emit(ctx, func(c context.Context) (*application.Respuesta, error) {
			return s.facturador.EmitirComprobante(c, application.BuildDocumentoVenta(sale, customer))
		})
		if err != nil {
			st.Failed++
			s.log.Warn().Err(err).Str("venta", sale.NumeroCompleto()).Msg("reintento de emisión falló")
			continue
		}
		if err := s.sales.UpdateEstadoSUNAT(ctx, sale.TenantID, sale.ID, resultado(resp)); err != nil {
			st.Failed++
			s.log.Error().Err(err).Str("venta", sale.NumeroCompleto()).Msg("no se pudo actualizar el estado SUNAT")
			continue
		}
		tally(&st, resp)
	}
	return st
}

func (s *Sweeper) sweepNotes(ctx context.Context, cutoff time.Time) FamilyStats {
	var st FamilyStats
	notes, err := s.notes.ListPendientesSUNAT(ctx, cutoff, s.cfg.BatchSize)
	if err != nil {
		s.log.Error().Err(err).Msg("no se pudieron listar notas pendientes")
		return st
	}
	for _, note := range notes {
		st.Processed++
		sale, err := s.sales.GetByID(ctx, note.TenantID, note.SaleID)
		if err != nil {
			st.Failed++
			s.log.Error().Err(err).Str("nota", note.NumeroCompleto()).Msg("venta referenciada no disponible")
			continue
		}
		customer := s.customerOf(ctx, sale.TenantID, sale.CustomerID)
		resp, err := s.emit(ctx, func(c context.Context) (*application.Respuesta, error) {
			return s.facturador.EmitirNotaCredito(c, application.BuildDocumentoNota(note, sale, customer))
		})
		if err != nil {
			st.Failed++
			s.log.Warn().Err(err).Str("nota", note.NumeroCompleto()).Msg("reintento de emisión falló")
			continue
		}
		if err := s.notes.UpdateEstadoSUNAT(ctx, note.TenantID, note.ID, resultado(resp)); err != nil {
			st.Failed++
			s.log.Error().Err(err).Str("nota", note.NumeroCompleto()).Msg("no se pudo actualizar el estado SUNAT")
			continue
		}
		tally(&st, resp)
	}
	return st
}

func (s *Sweeper) sweepGuides(ctx context.Context, cutoff time.Time) FamilyStats {
	var st FamilyStats
	guides, err := s.guides.ListPendientesSUNAT(ctx, cutoff, s.cfg.BatchSize)
	if err != nil {
		s.log.Error().Err(err).Msg("no se pudieron listar guías pendientes")
		return st
	}
	for _, guide := range guides {
		st.Processed++
		resp, err := s.emit(ctx, func(c context.Context) (*application.Respuesta, error) {
			return s.facturador.EmitirGuiaRemision(c, application.BuildDocumentoGuia(guide))
		})
		if err != nil {
			st.Failed++
			s.log.Warn().Err(err).Str("guia", guide.NumeroCompleto()).Msg("reintento de emisión falló")
			continue
		}
		if err := s.guides.UpdateEstadoSUNAT(ctx, guide.TenantID, guide.ID, resultado(resp)); err != nil {
			st.Failed++
			s.log.Error().Err(err).Str("guia", guide.NumeroCompleto()).Msg("no se pudo actualizar el estado SUNAT")
			continue
		}
		tally(&st, resp)
	}
	return st
}

func (s *Sweeper) emit(ctx context.Context, call func(context.Context) (*application.Respuesta, error)) (*application.Respuesta, error) {
	subCtx, cancel := context.WithTimeout(ctx, s.cfg.SubmitTimeout)
	defer cancel()
	return call(subCtx)
}

// customerOf tolera clientes borrados o inaccesibles: el documento se
// reconstruye con los datos genéricos en su lugar.
func (s *Sweeper) customerOf(ctx context.Context, tenantID, customerID string) *entity.Customer {
	if customerID == "" {
		return nil
	}
	customer, err := s.customers.GetByID(ctx, tenantID, customerID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.log.Warn().Err(err).Str("cliente", customerID).Msg("cliente no disponible para el reenvío")
		}
		return nil
	}
	return customer
}

func resultado(resp *application.Respuesta) *entity.ResultadoFiscal {
	return &entity.ResultadoFiscal{
		Estado:      resp.Estado,
		XMLURL:      resp.XMLURL,
		CDRURL:      resp.CDRURL,
		HashCPE:     resp.HashCPE,
		CodigoQR:    resp.CodigoQR,
		Observacion: resp.DetalleError,
	}
}

func tally(st *FamilyStats, resp *application.Respuesta) {
	switch resp.Estado {
	case entity.SUNATAceptado:
		st.Accepted++
	case entity.SUNATRechazado:
		st.Rejected++
	default:
		st.Failed++
	}
}
