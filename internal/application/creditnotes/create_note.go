// Package creditnotes orquesta la emisión de notas de crédito contra
// ventas aceptadas: reversa de inventario, ajuste de cuenta por cobrar y
// devolución de efectivo, con precondiciones duras que abortan sin efecto
// parcial. El envío al facturador ocurre después del commit.
package creditnotes

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/Puntoventa-api/internal/application"
	"github.com/jhoicas/Puntoventa-api/internal/application/cashbox"
	"github.com/jhoicas/Puntoventa-api/internal/application/inventory"
	"github.com/jhoicas/Puntoventa-api/internal/application/numbering"
	"github.com/jhoicas/Puntoventa-api/internal/domain"
	"github.com/jhoicas/Puntoventa-api/internal/domain/entity"
	"github.com/jhoicas/Puntoventa-api/internal/domain/repository"
)

// CreateNoteUseCase emite una nota de crédito.
type CreateNoteUseCase struct {
	txRunner      application.TxRunner
	facturador    application.Facturador
	notes         repository.CreditNoteRepository
	customers     repository.CustomerRepository
	submitTimeout time.Duration
	log           zerolog.Logger
}

// NewCreateNoteUseCase construye el caso de uso.
func NewCreateNoteUseCase(
	txRunner application.TxRunner,
	facturador application.Facturador,
	notes repository.CreditNoteRepository,
	customers repository.CustomerRepository,
	submitTimeout time.Duration,
	log zerolog.Logger,
) *CreateNoteUseCase {
	return &CreateNoteUseCase{
		txRunner:      txRunner,
		facturador:    facturador,
		notes:         notes,
		customers:     customers,
		submitTimeout: submitTimeout,
		log:           log,
	}
}

// NoteLineDTO es una línea de devolución parcial.
type NoteLineDTO struct {
	ProductID string
	Quantity  decimal.Decimal
}

// CreateNoteInputDTO entrada de una nota de crédito. Amount solo aplica a
// DESCUENTO_GLOBAL; Lines solo a DEVOLUCION_PARCIAL.
type CreateNoteInputDTO struct {
	TenantID string
	UserID   string
	SaleID   string
	Kind     string
	Motivo   string
	Amount   decimal.Decimal
	Lines    []NoteLineDTO
}

// Create valida las precondiciones, aplica los efectos de negocio en una
// transacción y luego intenta la emisión fiscal.
func (uc *CreateNoteUseCase) Create(ctx context.Context, input CreateNoteInputDTO) (*entity.CreditNote, error) {
	if input.Motivo == "" {
		return nil, domain.Validationf("el motivo de la nota de crédito es obligatorio")
	}
	switch input.Kind {
	case entity.NCAnulacion, entity.NCDevolucionTotal, entity.NCDevolucionParcial,
		entity.NCDescuentoGlobal, entity.NCCorreccionTexto:
	default:
		return nil, domain.Validationf("tipo de nota de crédito inválido: %s", input.Kind)
	}
	if input.Kind == entity.NCDevolucionParcial && len(input.Lines) == 0 {
		return nil, domain.Validationf("una devolución parcial requiere líneas")
	}
	if input.Kind == entity.NCDescuentoGlobal && !input.Amount.GreaterThan(decimal.Zero) {
		return nil, domain.Validationf("un descuento global requiere monto mayor a cero")
	}

	var note *entity.CreditNote
	var sale *entity.Sale
	var customer *entity.Customer

	err := uc.txRunner.Run(ctx, func(r application.Repos) error {
		var err error
		sale, err = r.Sales.GetByID(ctx, input.TenantID, input.SaleID)
		if err != nil {
			return err
		}
		if sale.EstadoSUNAT != entity.SUNATAceptado {
			return domain.ErrSaleNotAccepted
		}
		if sale.Anulada {
			return domain.ErrSaleAlreadyVoided
		}
		if sale.CustomerID != "" {
			customer, err = r.Customers.GetByID(ctx, input.TenantID, sale.CustomerID)
			if err != nil {
				return err
			}
		}

		lines, total, err := uc.resolveLines(sale, input)
		if err != nil {
			return err
		}

		if entity.ReducesDebt(input.Kind) {
			credited, err := r.CreditNotes.SumCreditedBySale(ctx, input.TenantID, sale.ID)
			if err != nil {
				return err
			}
			if entity.IsFullReversal(input.Kind) && credited.GreaterThan(decimal.Zero) {
				return domain.ErrCannotVoidWithPartialReturns
			}
			if credited.Add(total).GreaterThan(sale.Total) {
				return &domain.AmountExceedsBalanceError{
					SaleTotal: sale.Total,
					Credited:  credited,
					Requested: total,
				}
			}
		}

		assignment, err := numbering.Next(ctx, r.Series, input.TenantID, entity.DocKindNotaCredito)
		if err != nil {
			return err
		}

		now := time.Now()
		note = &entity.CreditNote{
			ID:          uuid.New().String(),
			TenantID:    input.TenantID,
			SaleID:      sale.ID,
			UserID:      input.UserID,
			SeriesID:    assignment.SeriesID,
			SeriesCode:  assignment.SeriesCode,
			Number:      assignment.Number,
			Kind:        input.Kind,
			Motivo:      input.Motivo,
			Total:       total,
			EstadoSUNAT: entity.SUNATPendiente,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		for i := range lines {
			lines[i].CreditNoteID = note.ID
		}
		note.Lines = lines

		if entity.ReturnsStock(input.Kind) {
			for _, ln := range lines {
				if _, err := inventory.Apply(ctx, r, inventory.ApplyInput{
					TenantID:  input.TenantID,
					ProductID: ln.ProductID,
					Type:      entity.MovementEntradaDevolucion,
					Quantity:  ln.Quantity,
					Ref:       entity.CreditNoteRef(note.ID),
					UserID:    input.UserID,
				}); err != nil {
					return err
				}
			}
			note.StockRetornado = true
		}

		if entity.ReducesDebt(input.Kind) {
			if sale.Condicion == entity.CondicionCredito {
				if err := uc.reduceReceivable(ctx, r, sale, note); err != nil {
					return err
				}
			} else {
				if err := uc.refundCash(ctx, r, input, note); err != nil {
					return err
				}
			}
		}

		if entity.IsFullReversal(input.Kind) {
			if err := r.Sales.MarkAnulada(ctx, input.TenantID, sale.ID); err != nil {
				return err
			}
		}

		return r.CreditNotes.Create(ctx, note)
	})
	if err != nil {
		return nil, err
	}

	uc.submit(ctx, note, sale, customer)
	return note, nil
}

// resolveLines congela las líneas de la nota desde los snapshots de la
// venta y calcula su total según el tipo.
func (uc *CreateNoteUseCase) resolveLines(sale *entity.Sale, input CreateNoteInputDTO) ([]entity.CreditNoteLine, decimal.Decimal, error) {
	fromSaleLine := func(sl entity.SaleLine, qty decimal.Decimal) entity.CreditNoteLine {
		return entity.CreditNoteLine{
			ID:             uuid.New().String(),
			TenantID:       sale.TenantID,
			ProductID:      sl.ProductID,
			ProductName:    sl.ProductName,
			Quantity:       qty,
			PrecioUnitario: sl.PrecioUnitario,
			ValorUnitario:  sl.ValorUnitario,
			IGVTotal:       sl.PrecioUnitario.Sub(sl.ValorUnitario).Mul(qty).Round(2),
			TasaIGV:        sl.TasaIGV,
		}
	}

	switch input.Kind {
	case entity.NCAnulacion, entity.NCDevolucionTotal:
		lines := make([]entity.CreditNoteLine, 0, len(sale.Lines))
		for _, sl := range sale.Lines {
			lines = append(lines, fromSaleLine(sl, sl.Quantity))
		}
		return lines, sale.Total, nil

	case entity.NCDevolucionParcial:
		byProduct := make(map[string]entity.SaleLine, len(sale.Lines))
		for _, sl := range sale.Lines {
			byProduct[sl.ProductID] = sl
		}
		var lines []entity.CreditNoteLine
		total := decimal.Zero
		for _, dto := range input.Lines {
			sl, ok := byProduct[dto.ProductID]
			if !ok {
				return nil, decimal.Zero, domain.Validationf("el producto %s no pertenece a la venta", dto.ProductID)
			}
			if !dto.Quantity.GreaterThan(decimal.Zero) || dto.Quantity.GreaterThan(sl.Quantity) {
				return nil, decimal.Zero, domain.Validationf("cantidad a devolver inválida para producto %s", dto.ProductID)
			}
			lines = append(lines, fromSaleLine(sl, dto.Quantity))
			total = total.Add(sl.PrecioUnitario.Mul(dto.Quantity))
		}
		return lines, total.Round(2), nil

	case entity.NCDescuentoGlobal:
		return nil, input.Amount.Round(2), nil

	case entity.NCCorreccionTexto:
		// Sin efecto de negocio: ni stock, ni deuda, ni caja.
		return nil, decimal.Zero, nil
	}
	return nil, decimal.Zero, domain.Validationf("tipo de nota de crédito inválido: %s", input.Kind)
}

// reduceReceivable ajusta la cuenta por cobrar de una venta a crédito. Una
// reversa total la cancela (solo sin abonos previos); las demás reducen el
// total proporcionalmente.
func (uc *CreateNoteUseCase) reduceReceivable(ctx context.Context, r application.Repos, sale *entity.Sale, note *entity.CreditNote) error {
	rec, err := r.Receivables.GetBySale(ctx, sale.TenantID, sale.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}
	if !rec.IsOpen() {
		return nil
	}

	if entity.IsFullReversal(note.Kind) {
		// Una anulación deja el nuevo total en cero: cualquier abono previo
		// quedaría a favor del cliente y eso exige un vale aparte, no un
		// ajuste silencioso.
		if rec.Paid.GreaterThan(decimal.Zero) {
			return &domain.CreditBalanceError{Paid: rec.Paid, NewTotal: decimal.Zero}
		}
		rec.Balance = decimal.Zero
		rec.Estado = entity.ReceivableCancelada
	} else {
		newTotal := rec.Total.Sub(note.Total)
		if rec.Paid.GreaterThan(newTotal) {
			return &domain.CreditBalanceError{Paid: rec.Paid, NewTotal: newTotal}
		}
		rec.Total = newTotal
		rec.Balance = newTotal.Sub(rec.Paid)
		if rec.Balance.IsZero() {
			rec.Estado = entity.ReceivablePagada
		}
	}
	rec.UpdatedAt = time.Now()
	return r.Receivables.Update(ctx, rec)
}

// refundCash devuelve el efectivo de una venta al contado desde la sesión
// abierta del usuario que emite la nota. El egreso exige saldo teórico
// suficiente.
func (uc *CreateNoteUseCase) refundCash(ctx context.Context, r application.Repos, input CreateNoteInputDTO, note *entity.CreditNote) error {
	session, err := r.Cash.GetOpenSessionByUser(ctx, input.TenantID, input.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrCashSessionClosed
		}
		return err
	}
	if _, err := cashbox.RecordMovement(ctx, r, cashbox.MovementInput{
		TenantID:    input.TenantID,
		SessionID:   session.ID,
		Type:        entity.CashEgreso,
		Amount:      note.Total,
		Description: "Devolución nota de crédito " + note.NumeroCompleto(),
		Ref:         entity.CashRef{Kind: entity.CashRefNotaCredito, ID: note.ID},
	}); err != nil {
		return err
	}
	note.EfectivoDevuelto = true
	return nil
}

// submit envía la nota al facturador con timeout acotado; cualquier error
// de transporte la deja PENDIENTE para el barrido.
func (uc *CreateNoteUseCase) submit(ctx context.Context, note *entity.CreditNote, sale *entity.Sale, customer *entity.Customer) {
	// La nota ya está confirmada: ni la emisión ni la persistencia del
	// resultado dependen de que la petición siga viva.
	ctx = context.WithoutCancel(ctx)
	subCtx, cancel := context.WithTimeout(ctx, uc.submitTimeout)
	defer cancel()

	resp, err := uc.facturador.EmitirNotaCredito(subCtx, application.BuildDocumentoNota(note, sale, customer))
	if err != nil {
		uc.log.Warn().Err(err).
			Str("nota", note.NumeroCompleto()).
			Msg("facturador no disponible, la nota queda PENDIENTE")
		return
	}

	res := &entity.ResultadoFiscal{
		Estado:      resp.Estado,
		XMLURL:      resp.XMLURL,
		CDRURL:      resp.CDRURL,
		HashCPE:     resp.HashCPE,
		CodigoQR:    resp.CodigoQR,
		Observacion: resp.DetalleError,
	}
	if err := uc.notes.UpdateEstadoSUNAT(ctx, note.TenantID, note.ID, res); err != nil {
		uc.log.Error().Err(err).
			Str("nota", note.NumeroCompleto()).
			Msg("no se pudo actualizar el estado SUNAT")
		return
	}
	note.EstadoSUNAT = resp.Estado
	note.XMLURL = resp.XMLURL
	note.CDRURL = resp.CDRURL
	note.HashCPE = resp.HashCPE
}
