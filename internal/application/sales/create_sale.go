// Package sales orquesta la creación de ventas: validación, descomposición
// de precios, numeración, descarga de inventario y efectos de cobranza y
// caja, todo en una transacción; el envío al facturador ocurre después del
// commit y nunca revierte la venta.
package sales

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
	"github.com/jhoicas/Puntoventa-api/internal/domain/fiscal"
	"github.com/jhoicas/Puntoventa-api/internal/domain/repository"
)

// DefaultDiasCredito aplica cuando el cliente no tiene plazo configurado.
const DefaultDiasCredito = 30

// CreateSaleUseCase arma y persiste una venta completa.
type CreateSaleUseCase struct {
	txRunner      application.TxRunner
	facturador    application.Facturador
	sales         repository.SaleRepository
	customers     repository.CustomerRepository
	cfg           fiscal.Config
	tolerance     decimal.Decimal
	submitTimeout time.Duration
	log           zerolog.Logger
}

// NewCreateSaleUseCase construye el caso de uso.
func NewCreateSaleUseCase(
	txRunner application.TxRunner,
	facturador application.Facturador,
	sales repository.SaleRepository,
	customers repository.CustomerRepository,
	cfg fiscal.Config,
	tolerance decimal.Decimal,
	submitTimeout time.Duration,
	log zerolog.Logger,
) *CreateSaleUseCase {
	return &CreateSaleUseCase{
		txRunner:      txRunner,
		facturador:    facturador,
		sales:         sales,
		customers:     customers,
		cfg:           cfg,
		tolerance:     tolerance,
		submitTimeout: submitTimeout,
		log:           log,
	}
}

// SaleLineDTO es una línea solicitada. PrecioUnitario opcional permite
// precio pactado distinto al de lista (con IGV, 2 decimales).
type SaleLineDTO struct {
	ProductID      string
	Quantity       decimal.Decimal
	PrecioUnitario *decimal.Decimal
}

// CreateSaleInputDTO entrada de una venta.
type CreateSaleInputDTO struct {
	TenantID     string
	UserID       string
	CustomerID   string
	DocKind      string // FACTURA | BOLETA | vacío para resolver por cliente
	Condicion    string // CONTADO | CREDITO
	MetodoPago   string
	AbonoInicial decimal.Decimal // solo CREDITO, opcional
	Lines        []SaleLineDTO
}

// Create ejecuta la venta completa y, tras el commit, intenta la emisión
// fiscal con timeout acotado. Un facturador caído o lento deja la venta
// PENDIENTE; el barrido la reconcilia después.
func (uc *CreateSaleUseCase) Create(ctx context.Context, input CreateSaleInputDTO) (*entity.Sale, error) {
	if len(input.Lines) == 0 {
		return nil, domain.Validationf("la venta no tiene líneas")
	}
	if input.Condicion != entity.CondicionContado && input.Condicion != entity.CondicionCredito {
		return nil, domain.Validationf("condición de pago inválida: %s", input.Condicion)
	}
	if input.Condicion == entity.CondicionCredito && input.CustomerID == "" {
		return nil, domain.Validationf("una venta a crédito requiere cliente identificado")
	}
	if input.AbonoInicial.IsNegative() {
		return nil, domain.Validationf("el abono inicial no puede ser negativo")
	}

	var sale *entity.Sale
	var customer *entity.Customer

	err := uc.txRunner.Run(ctx, func(r application.Repos) error {
		session, err := r.Cash.GetOpenSessionByUser(ctx, input.TenantID, input.UserID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrCashSessionClosed
			}
			return err
		}

		if input.CustomerID != "" {
			customer, err = r.Customers.GetByID(ctx, input.TenantID, input.CustomerID)
			if err != nil {
				return err
			}
		}
		kind, err := numbering.KindForCustomer(customer, input.DocKind)
		if err != nil {
			return err
		}

		lines, fiscalLines, err := uc.buildLines(ctx, r, input)
		if err != nil {
			return err
		}
		totals, err := fiscal.AggregateLines(fiscalLines, uc.tolerance)
		if err != nil {
			return err
		}

		// Numeración al final de toda validación capaz de abortar: si algo
		// de aquí en adelante falla, el rollback devuelve el correlativo.
		assignment, err := numbering.Next(ctx, r.Series, input.TenantID, kind)
		if err != nil {
			return err
		}

		now := time.Now()
		sale = &entity.Sale{
			ID:            uuid.New().String(),
			TenantID:      input.TenantID,
			CustomerID:    input.CustomerID,
			UserID:        input.UserID,
			CashSessionID: session.ID,
			SeriesID:      assignment.SeriesID,
			SeriesCode:    assignment.SeriesCode,
			Number:        assignment.Number,
			DocKind:       kind,
			Gravado:       totals.Gravado,
			IGV:           totals.IGV,
			Total:         totals.Total,
			Condicion:     input.Condicion,
			MetodoPago:    input.MetodoPago,
			EstadoSUNAT:   entity.SUNATPendiente,
			FechaEmision:  now,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		for i := range lines {
			lines[i].SaleID = sale.ID
		}
		sale.Lines = lines

		if err := r.Sales.Create(ctx, sale); err != nil {
			return err
		}

		for _, ln := range lines {
			if _, err := inventory.Apply(ctx, r, inventory.ApplyInput{
				TenantID:  input.TenantID,
				ProductID: ln.ProductID,
				Type:      entity.MovementSalidaVenta,
				Quantity:  ln.Quantity,
				Ref:       entity.SaleRef(sale.ID),
				UserID:    input.UserID,
			}); err != nil {
				return err
			}
		}

		switch input.Condicion {
		case entity.CondicionCredito:
			if err := uc.createReceivable(ctx, r, sale, customer, session.ID, input.AbonoInicial); err != nil {
				return err
			}
		case entity.CondicionContado:
			if _, err := cashbox.RecordMovement(ctx, r, cashbox.MovementInput{
				TenantID:    input.TenantID,
				SessionID:   session.ID,
				Type:        entity.CashIngreso,
				Amount:      sale.Total,
				Description: "Venta " + sale.NumeroCompleto(),
				Ref:         entity.CashRef{Kind: entity.CashRefVenta, ID: sale.ID},
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.submit(ctx, sale, customer)
	return sale, nil
}

// buildLines valida cada línea contra el producto y congela el snapshot
// fiscal: precio, descomposición a 4 decimales y costo del momento.
func (uc *CreateSaleUseCase) buildLines(ctx context.Context, r application.Repos, input CreateSaleInputDTO) ([]entity.SaleLine, []fiscal.Line, error) {
	lines := make([]entity.SaleLine, 0, len(input.Lines))
	fiscalLines := make([]fiscal.Line, 0, len(input.Lines))

	for _, dto := range input.Lines {
		if !dto.Quantity.GreaterThan(decimal.Zero) {
			return nil, nil, domain.Validationf("cantidad inválida para producto %s", dto.ProductID)
		}
		product, err := r.Products.GetByID(ctx, input.TenantID, dto.ProductID)
		if err != nil {
			return nil, nil, err
		}
		if product.Stock.LessThan(dto.Quantity) {
			return nil, nil, &domain.InsufficientStockError{
				ProductName: product.Name,
				Available:   product.Stock,
				Requested:   dto.Quantity,
			}
		}

		precio := product.Price
		if dto.PrecioUnitario != nil {
			if !dto.PrecioUnitario.GreaterThan(decimal.Zero) {
				return nil, nil, domain.Validationf("precio inválido para producto %s", dto.ProductID)
			}
			precio = *dto.PrecioUnitario
		}
		rate := fiscal.RateFor(uc.cfg, product.AfectacionIGV)
		bd := fiscal.Decompose(precio, rate)

		lines = append(lines, entity.SaleLine{
			ID:             uuid.New().String(),
			TenantID:       input.TenantID,
			ProductID:      product.ID,
			ProductName:    product.Name,
			Quantity:       dto.Quantity,
			PrecioUnitario: precio.Round(2),
			ValorUnitario:  bd.Base4,
			IGVTotal:       precio.Sub(bd.Base4).Mul(dto.Quantity).Round(2),
			TasaIGV:        rate,
			CostoUnitario:  product.Cost,
		})
		fiscalLines = append(fiscalLines, fiscal.Line{
			UnitPrice: precio,
			Quantity:  dto.Quantity,
			RatePct:   rate,
		})
	}
	return lines, fiscalLines, nil
}

// createReceivable abre la cuenta por cobrar de una venta a crédito y
// registra el abono inicial si lo hay.
func (uc *CreateSaleUseCase) createReceivable(ctx context.Context, r application.Repos, sale *entity.Sale, customer *entity.Customer, sessionID string, abono decimal.Decimal) error {
	if abono.GreaterThan(sale.Total) {
		return domain.Validationf("el abono inicial %s excede el total de la venta %s",
			abono.StringFixed(2), sale.Total.StringFixed(2))
	}

	dias := customer.DiasCredito
	if dias <= 0 {
		dias = DefaultDiasCredito
	}
	now := time.Now()

	rec := &entity.Receivable{
		ID:           uuid.New().String(),
		TenantID:     sale.TenantID,
		SaleID:       sale.ID,
		CustomerID:   customer.ID,
		Total:        sale.Total,
		Paid:         abono,
		Balance:      sale.Total.Sub(abono),
		Estado:       entity.ReceivableVigente,
		FechaEmision: now,
		Vencimiento:  now.AddDate(0, 0, dias),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if rec.Balance.IsZero() {
		rec.Estado = entity.ReceivablePagada
	}
	if err := r.Receivables.Create(ctx, rec); err != nil {
		return err
	}

	if abono.GreaterThan(decimal.Zero) {
		payment := &entity.Payment{
			ID:           uuid.New().String(),
			TenantID:     sale.TenantID,
			ReceivableID: rec.ID,
			UserID:       sale.UserID,
			Amount:       abono,
			MetodoPago:   sale.MetodoPago,
			Notas:        "Abono inicial venta " + sale.NumeroCompleto(),
			FechaPago:    now,
		}
		if err := r.Receivables.CreatePayment(ctx, payment); err != nil {
			return err
		}
		if _, err := cashbox.RecordMovement(ctx, r, cashbox.MovementInput{
			TenantID:    sale.TenantID,
			SessionID:   sessionID,
			Type:        entity.CashIngreso,
			Amount:      abono,
			Description: "Abono inicial venta " + sale.NumeroCompleto(),
			Ref:         entity.CashRef{Kind: entity.CashRefPago, ID: payment.ID},
		}); err != nil {
			return err
		}
	}
	return nil
}

// submit envía el comprobante al facturador con timeout acotado. Cualquier
// error de transporte deja la venta PENDIENTE para el barrido.
func (uc *CreateSaleUseCase) submit(ctx context.Context, sale *entity.Sale, customer *entity.Customer) {
	// La venta ya está confirmada: ni la emisión ni la persistencia del
	// resultado dependen de que la petición siga viva.
	ctx = context.WithoutCancel(ctx)
	subCtx, cancel := context.WithTimeout(ctx, uc.submitTimeout)
	defer cancel()

	resp, err := uc.facturador.EmitirComprobante(subCtx, application.BuildDocumentoVenta(sale, customer))
	if err != nil {
		uc.log.Warn().Err(err).
			Str("venta", sale.NumeroCompleto()).
			Msg("facturador no disponible, la venta queda PENDIENTE")
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
	if err := uc.sales.UpdateEstadoSUNAT(ctx, sale.TenantID, sale.ID, res); err != nil {
		uc.log.Error().Err(err).
			Str("venta", sale.NumeroCompleto()).
			Msg("no se pudo actualizar el estado SUNAT")
		return
	}
	sale.EstadoSUNAT = resp.Estado
	sale.XMLURL = resp.XMLURL
	sale.CDRURL = resp.CDRURL
	sale.HashCPE = resp.HashCPE
	sale.CodigoQR = resp.CodigoQR
}
