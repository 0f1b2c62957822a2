// Package dispatch emite guías de remisión electrónicas. La guía comparte
// numeración por serie y ciclo fiscal con los comprobantes: se persiste
// PENDIENTE, se intenta emitir tras el commit y el barrido la reconcilia.
package dispatch

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/Puntoventa-api/internal/application"
	"github.com/jhoicas/Puntoventa-api/internal/application/numbering"
	"github.com/jhoicas/Puntoventa-api/internal/domain"
	"github.com/jhoicas/Puntoventa-api/internal/domain/entity"
	"github.com/jhoicas/Puntoventa-api/internal/domain/repository"
)

// CreateGuideUseCase emite guías de remisión.
type CreateGuideUseCase struct {
	txRunner      application.TxRunner
	facturador    application.Facturador
	guides        repository.DispatchRepository
	submitTimeout time.Duration
	log           zerolog.Logger
}

// NewCreateGuideUseCase construye el caso de uso.
func NewCreateGuideUseCase(
	txRunner application.TxRunner,
	facturador application.Facturador,
	guides repository.DispatchRepository,
	submitTimeout time.Duration,
	log zerolog.Logger,
) *CreateGuideUseCase {
	return &CreateGuideUseCase{
		txRunner:      txRunner,
		facturador:    facturador,
		guides:        guides,
		submitTimeout: submitTimeout,
		log:           log,
	}
}

// GuideLineDTO es una línea de mercadería trasladada.
type GuideLineDTO struct {
	ProductID    string
	Quantity     decimal.Decimal
	UnidadMedida string
}

// CreateGuideInputDTO entrada de una guía de remisión.
type CreateGuideInputDTO struct {
	TenantID            string
	UserID              string
	MotivoTraslado      string
	FechaInicioTraslado time.Time
	DireccionPartida    string
	DireccionLlegada    string
	Modalidad           string // PRIVADO | PUBLICO
	PlacaVehiculo       string
	PesoBrutoTotal      decimal.Decimal
	NumeroBultos        int
	Lines               []GuideLineDTO
}

// Create valida, numera y persiste la guía; el traslado de mercadería no
// descarga stock (no es una venta), solo documenta el movimiento físico.
func (uc *CreateGuideUseCase) Create(ctx context.Context, input CreateGuideInputDTO) (*entity.DispatchGuide, error) {
	if len(input.Lines) == 0 {
		return nil, domain.Validationf("la guía no tiene líneas")
	}
	if input.MotivoTraslado == "" || input.DireccionPartida == "" || input.DireccionLlegada == "" {
		return nil, domain.Validationf("motivo y direcciones de traslado son obligatorios")
	}
	if input.Modalidad != entity.TransportePrivado && input.Modalidad != entity.TransportePublico {
		return nil, domain.Validationf("modalidad de transporte inválida: %s", input.Modalidad)
	}
	if input.Modalidad == entity.TransportePrivado && input.PlacaVehiculo == "" {
		return nil, domain.Validationf("el transporte privado requiere placa del vehículo")
	}

	var guide *entity.DispatchGuide
	err := uc.txRunner.Run(ctx, func(r application.Repos) error {
		lines := make([]entity.DispatchGuideLine, 0, len(input.Lines))
		for _, dto := range input.Lines {
			if !dto.Quantity.GreaterThan(decimal.Zero) {
				return domain.Validationf("cantidad inválida para producto %s", dto.ProductID)
			}
			product, err := r.Products.GetByID(ctx, input.TenantID, dto.ProductID)
			if err != nil {
				return err
			}
			unidad := dto.UnidadMedida
			if unidad == "" {
				unidad = "NIU"
			}
			lines = append(lines, entity.DispatchGuideLine{
				ID:           uuid.New().String(),
				TenantID:     input.TenantID,
				ProductID:    product.ID,
				ProductName:  product.Name,
				Quantity:     dto.Quantity,
				UnidadMedida: unidad,
			})
		}

		assignment, err := numbering.Next(ctx, r.Series, input.TenantID, entity.DocKindGuiaRemision)
		if err != nil {
			return err
		}

		now := time.Now()
		guide = &entity.DispatchGuide{
			ID:                  uuid.New().String(),
			TenantID:            input.TenantID,
			UserID:              input.UserID,
			SeriesID:            assignment.SeriesID,
			SeriesCode:          assignment.SeriesCode,
			Number:              assignment.Number,
			MotivoTraslado:      input.MotivoTraslado,
			FechaInicioTraslado: input.FechaInicioTraslado,
			DireccionPartida:    input.DireccionPartida,
			DireccionLlegada:    input.DireccionLlegada,
			Modalidad:           input.Modalidad,
			PlacaVehiculo:       input.PlacaVehiculo,
			PesoBrutoTotal:      input.PesoBrutoTotal,
			NumeroBultos:        input.NumeroBultos,
			EstadoSUNAT:         entity.SUNATPendiente,
			CreatedAt:           now,
			UpdatedAt:           now,
		}
		for i := range lines {
			lines[i].DispatchGuideID = guide.ID
		}
		guide.Lines = lines
		return r.Dispatch.Create(ctx, guide)
	})
	if err != nil {
		return nil, err
	}

	uc.submit(ctx, guide)
	return guide, nil
}

func (uc *CreateGuideUseCase) submit(ctx context.Context, guide *entity.DispatchGuide) {
	// La guía ya está confirmada: ni la emisión ni la persistencia del
	// resultado dependen de que la petición siga viva.
	ctx = context.WithoutCancel(ctx)
	subCtx, cancel := context.WithTimeout(ctx, uc.submitTimeout)
	defer cancel()

	resp, err := uc.facturador.EmitirGuiaRemision(subCtx, application.BuildDocumentoGuia(guide))
	if err != nil {
		uc.log.Warn().Err(err).
			Str("guia", guide.NumeroCompleto()).
			Msg("facturador no disponible, la guía queda PENDIENTE")
		return
	}

	res := &entity.ResultadoFiscal{
		Estado:      resp.Estado,
		XMLURL:      resp.XMLURL,
		CDRURL:      resp.CDRURL,
		HashCPE:     resp.HashCPE,
		Observacion: resp.DetalleError,
	}
	if err := uc.guides.UpdateEstadoSUNAT(ctx, guide.TenantID, guide.ID, res); err != nil {
		uc.log.Error().Err(err).
			Str("guia", guide.NumeroCompleto()).
			Msg("no se pudo actualizar el estado SUNAT")
		return
	}
	guide.EstadoSUNAT = resp.Estado
	guide.XMLURL = resp.XMLURL
	guide.CDRURL = resp.CDRURL
	guide.HashCPE = resp.HashCPE
}
