// Package apptest provee fakes en memoria de los puertos de persistencia
// para pruebas unitarias de los casos de uso, sin base de datos.
package apptest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/Puntoventa-api/internal/application"
	"github.com/jhoicas/Puntoventa-api/internal/domain"
	"github.com/jhoicas/Puntoventa-api/internal/domain/entity"
)

// Store es el estado compartido de todos los fakes. El mutex imita la
// serialización por fila de Postgres en las actualizaciones condicionales.
type Store struct {
	mu sync.Mutex

	Products      map[string]*entity.Product
	Movements     []*entity.InventoryMovement
	Series        map[string]*entity.DocumentSeries
	Sales         map[string]*entity.Sale
	CreditNotes   map[string]*entity.CreditNote
	Receivables   map[string]*entity.Receivable
	Payments      []*entity.Payment
	CashSessions  map[string]*entity.CashSession
	CashMovements []*entity.CashMovement
	Customers     map[string]*entity.Customer
	Guides        map[string]*entity.DispatchGuide

	// AfterProductGet permite a las pruebas de concurrencia sincronizar dos
	// lecturas antes de que cualquiera intente escribir.
	AfterProductGet func(productID string)
}

// NewStore construye un estado vacío.
func NewStore() *Store {
	return &Store{
		Products:     map[string]*entity.Product{},
		Series:       map[string]*entity.DocumentSeries{},
		Sales:        map[string]*entity.Sale{},
		CreditNotes:  map[string]*entity.CreditNote{},
		Receivables:  map[string]*entity.Receivable{},
		CashSessions: map[string]*entity.CashSession{},
		Customers:    map[string]*entity.Customer{},
		Guides:       map[string]*entity.DispatchGuide{},
	}
}

// Repos retorna el juego completo de fakes atados al store.
func (s *Store) Repos() application.Repos {
	return application.Repos{
		Products:    &productRepo{s},
		Movements:   &movementRepo{s},
		Series:      &seriesRepo{s},
		Sales:       &saleRepo{s},
		CreditNotes: &creditNoteRepo{s},
		Receivables: &receivableRepo{s},
		Cash:        &cashRepo{s},
		Customers:   &customerRepo{s},
		Dispatch:    &dispatchRepo{s},
	}
}

// Runner retorna un TxRunner que ejecuta fn contra el store y, si fn
// falla, restaura el estado previo (simula el rollback).
func (s *Store) Runner() application.TxRunner {
	return &runner{s}
}

type runner struct{ s *Store }

func (r *runner) Run(ctx context.Context, fn func(repos application.Repos) error) error {
	snap := r.s.snapshot()
	if err := fn(r.s.Repos()); err != nil {
		r.s.restore(snap)
		return err
	}
	return nil
}

type snapshotState struct {
	products      map[string]entity.Product
	movements     []*entity.InventoryMovement
	series        map[string]entity.DocumentSeries
	sales         map[string]entity.Sale
	creditNotes   map[string]entity.CreditNote
	receivables   map[string]entity.Receivable
	payments      []*entity.Payment
	cashSessions  map[string]entity.CashSession
	cashMovements []*entity.CashMovement
	customers     map[string]entity.Customer
	guides        map[string]entity.DispatchGuide
}

func (s *Store) snapshot() snapshotState {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := snapshotState{
		products:      map[string]entity.Product{},
		movements:     append([]*entity.InventoryMovement(nil), s.Movements...),
		series:        map[string]entity.DocumentSeries{},
		sales:         map[string]entity.Sale{},
		creditNotes:   map[string]entity.CreditNote{},
		receivables:   map[string]entity.Receivable{},
		payments:      append([]*entity.Payment(nil), s.Payments...),
		cashSessions:  map[string]entity.CashSession{},
		cashMovements: append([]*entity.CashMovement(nil), s.CashMovements...),
		customers:     map[string]entity.Customer{},
		guides:        map[string]entity.DispatchGuide{},
	}
	for k, v := range s.Products {
		snap.products[k] = *v
	}
	for k, v := range s.Series {
		snap.series[k] = *v
	}
	for k, v := range s.Sales {
		snap.sales[k] = *v
	}
	for k, v := range s.CreditNotes {
		snap.creditNotes[k] = *v
	}
	for k, v := range s.Receivables {
		snap.receivables[k] = *v
	}
	for k, v := range s.CashSessions {
		snap.cashSessions[k] = *v
	}
	for k, v := range s.Customers {
		snap.customers[k] = *v
	}
	for k, v := range s.Guides {
		snap.guides[k] = *v
	}
	return snap
}

func (s *Store) restore(snap snapshotState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Products = map[string]*entity.Product{}
	for k, v := range snap.products {
		cp := v
		s.Products[k] = &cp
	}
	s.Movements = snap.movements
	s.Series = map[string]*entity.DocumentSeries{}
	for k, v := range snap.series {
		cp := v
		s.Series[k] = &cp
	}
	s.Sales = map[string]*entity.Sale{}
	for k, v := range snap.sales {
		cp := v
		s.Sales[k] = &cp
	}
	s.CreditNotes = map[string]*entity.CreditNote{}
	for k, v := range snap.creditNotes {
		cp := v
		s.CreditNotes[k] = &cp
	}
	s.Receivables = map[string]*entity.Receivable{}
	for k, v := range snap.receivables {
		cp := v
		s.Receivables[k] = &cp
	}
	s.Payments = snap.payments
	s.CashSessions = map[string]*entity.CashSession{}
	for k, v := range snap.cashSessions {
		cp := v
		s.CashSessions[k] = &cp
	}
	s.CashMovements = snap.cashMovements
	s.Customers = map[string]*entity.Customer{}
	for k, v := range snap.customers {
		cp := v
		s.Customers[k] = &cp
	}
	s.Guides = map[string]*entity.DispatchGuide{}
	for k, v := range snap.guides {
		cp := v
		s.Guides[k] = &cp
	}
}

// ---- productos ----

type productRepo struct{ s *Store }

func (r *productRepo) Create(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *p
	r.s.Products[p.ID] = &cp
	return nil
}

func (r *productRepo) GetByID(_ context.Context, tenantID, id string) (*entity.Product, error) {
	r.s.mu.Lock()
	p, ok := r.s.Products[id]
	var cp entity.Product
	if ok && p.TenantID == tenantID {
		cp = *p
	} else {
		ok = false
	}
	r.s.mu.Unlock()
	if !ok {
		return nil, domain.ErrNotFound
	}
	if r.s.AfterProductGet != nil {
		r.s.AfterProductGet(id)
	}
	return &cp, nil
}

func (r *productRepo) GetBySKU(_ context.Context, tenantID, sku string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.Products {
		if p.TenantID == tenantID && p.SKU == sku {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *productRepo) Update(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.Products[p.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *p
	r.s.Products[p.ID] = &cp
	return nil
}

func (r *productRepo) ListByTenant(_ context.Context, tenantID string, limit, offset int) ([]*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Product
	for _, p := range r.s.Products {
		if p.TenantID == tenantID {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return paginate(out, limit, offset), nil
}

func (r *productRepo) Delete(_ context.Context, tenantID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.Products[id]
	if !ok || p.TenantID != tenantID {
		return domain.ErrNotFound
	}
	delete(r.s.Products, id)
	return nil
}

func (r *productRepo) UpdateStockVersioned(_ context.Context, tenantID, id string, newStock decimal.Decimal, readVersion int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.Products[id]
	if !ok || p.TenantID != tenantID {
		return domain.ErrNotFound
	}
	if p.Version != readVersion {
		return domain.ErrConcurrencyConflict
	}
	p.Stock = newStock
	p.Version++
	p.UpdatedAt = time.Now()
	return nil
}

func (r *productRepo) UpdateCost(_ context.Context, tenantID, id string, cost decimal.Decimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.Products[id]
	if !ok || p.TenantID != tenantID {
		return domain.ErrNotFound
	}
	p.Cost = cost
	return nil
}

// ---- movimientos ----

type movementRepo struct{ s *Store }

func (r *movementRepo) Create(_ context.Context, m *entity.InventoryMovement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *m
	r.s.Movements = append(r.s.Movements, &cp)
	return nil
}

func (r *movementRepo) GetByID(_ context.Context, tenantID, id string) (*entity.InventoryMovement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.Movements {
		if m.ID == id && m.TenantID == tenantID {
			cp := *m
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *movementRepo) ListByProduct(_ context.Context, tenantID, productID string, from, to *time.Time, limit, offset int) ([]*entity.InventoryMovement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.InventoryMovement
	for _, m := range r.s.Movements {
		if m.TenantID != tenantID || m.ProductID != productID {
			continue
		}
		if from != nil && m.CreatedAt.Before(*from) {
			continue
		}
		if to != nil && m.CreatedAt.After(*to) {
			continue
		}
		cp := *m
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, limit, offset), nil
}

func (r *movementRepo) ListByRef(_ context.Context, tenantID string, ref entity.DocumentRef) ([]*entity.InventoryMovement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.InventoryMovement
	for _, m := range r.s.Movements {
		if m.TenantID == tenantID && m.Ref == ref {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

// ---- series ----

type seriesRepo struct{ s *Store }

func (r *seriesRepo) Create(_ context.Context, sr *entity.DocumentSeries) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *sr
	r.s.Series[sr.ID] = &cp
	return nil
}

func (r *seriesRepo) GetByID(_ context.Context, tenantID, id string) (*entity.DocumentSeries, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sr, ok := r.s.Series[id]
	if !ok || sr.TenantID != tenantID {
		return nil, domain.ErrNotFound
	}
	cp := *sr
	return &cp, nil
}

func (r *seriesRepo) GetActiveByKind(_ context.Context, tenantID, kind string) (*entity.DocumentSeries, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, sr := range r.s.Series {
		if sr.TenantID == tenantID && sr.Kind == kind && sr.IsActive {
			cp := *sr
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *seriesRepo) ListByTenant(_ context.Context, tenantID string) ([]*entity.DocumentSeries, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.DocumentSeries
	for _, sr := range r.s.Series {
		if sr.TenantID == tenantID {
			cp := *sr
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (r *seriesRepo) Update(_ context.Context, sr *entity.DocumentSeries) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.Series[sr.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *sr
	r.s.Series[sr.ID] = &cp
	return nil
}

func (r *seriesRepo) NextCorrelativo(_ context.Context, tenantID, seriesID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sr, ok := r.s.Series[seriesID]
	if !ok || sr.TenantID != tenantID {
		return 0, domain.ErrNotFound
	}
	sr.Correlativo++
	return sr.Correlativo, nil
}

// ---- ventas ----

type saleRepo struct{ s *Store }

func (r *saleRepo) Create(_ context.Context, sale *entity.Sale) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *sale
	cp.Lines = append([]entity.SaleLine(nil), sale.Lines...)
	r.s.Sales[sale.ID] = &cp
	return nil
}

func (r *saleRepo) GetByID(_ context.Context, tenantID, id string) (*entity.Sale, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sale, ok := r.s.Sales[id]
	if !ok || sale.TenantID != tenantID {
		return nil, domain.ErrNotFound
	}
	cp := *sale
	cp.Lines = append([]entity.SaleLine(nil), sale.Lines...)
	return &cp, nil
}

func (r *saleRepo) ListByTenant(_ context.Context, tenantID string, from, to *time.Time, limit, offset int) ([]*entity.Sale, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Sale
	for _, sale := range r.s.Sales {
		if sale.TenantID != tenantID {
			continue
		}
		if from != nil && sale.CreatedAt.Before(*from) {
			continue
		}
		if to != nil && sale.CreatedAt.After(*to) {
			continue
		}
		cp := *sale
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, limit, offset), nil
}

func (r *saleRepo) UpdateEstadoSUNAT(_ context.Context, tenantID, id string, res *entity.ResultadoFiscal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sale, ok := r.s.Sales[id]
	if !ok || sale.TenantID != tenantID {
		return domain.ErrNotFound
	}
	sale.EstadoSUNAT = res.Estado
	sale.XMLURL = res.XMLURL
	sale.CDRURL = res.CDRURL
	sale.HashCPE = res.HashCPE
	sale.CodigoQR = res.CodigoQR
	sale.UpdatedAt = time.Now()
	return nil
}

func (r *saleRepo) MarkAnulada(_ context.Context, tenantID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sale, ok := r.s.Sales[id]
	if !ok || sale.TenantID != tenantID {
		return domain.ErrNotFound
	}
	sale.Anulada = true
	return nil
}

func (r *saleRepo) ListPendientesSUNAT(_ context.Context, cutoff time.Time, limit int) ([]*entity.Sale, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Sale
	for _, sale := range r.s.Sales {
		if sale.EstadoSUNAT == entity.SUNATPendiente && sale.CreatedAt.Before(cutoff) {
			cp := *sale
			cp.Lines = append([]entity.SaleLine(nil), sale.Lines...)
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ---- notas de crédito ----

type creditNoteRepo struct{ s *Store }

func (r *creditNoteRepo) Create(_ context.Context, note *entity.CreditNote) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *note
	cp.Lines = append([]entity.CreditNoteLine(nil), note.Lines...)
	r.s.CreditNotes[note.ID] = &cp
	return nil
}

func (r *creditNoteRepo) GetByID(_ context.Context, tenantID, id string) (*entity.CreditNote, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	note, ok := r.s.CreditNotes[id]
	if !ok || note.TenantID != tenantID {
		return nil, domain.ErrNotFound
	}
	cp := *note
	cp.Lines = append([]entity.CreditNoteLine(nil), note.Lines...)
	return &cp, nil
}

func (r *creditNoteRepo) ListBySale(_ context.Context, tenantID, saleID string) ([]*entity.CreditNote, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.CreditNote
	for _, note := range r.s.CreditNotes {
		if note.TenantID == tenantID && note.SaleID == saleID {
			cp := *note
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *creditNoteRepo) SumCreditedBySale(_ context.Context, tenantID, saleID string) (decimal.Decimal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sum := decimal.Zero
	for _, note := range r.s.CreditNotes {
		if note.TenantID != tenantID || note.SaleID != saleID {
			continue
		}
		if note.EstadoSUNAT == entity.SUNATRechazado || !entity.ReducesDebt(note.Kind) {
			continue
		}
		sum = sum.Add(note.Total)
	}
	return sum, nil
}

func (r *creditNoteRepo) UpdateEstadoSUNAT(_ context.Context, tenantID, id string, res *entity.ResultadoFiscal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	note, ok := r.s.CreditNotes[id]
	if !ok || note.TenantID != tenantID {
		return domain.ErrNotFound
	}
	note.EstadoSUNAT = res.Estado
	note.XMLURL = res.XMLURL
	note.CDRURL = res.CDRURL
	note.HashCPE = res.HashCPE
	note.UpdatedAt = time.Now()
	return nil
}

func (r *creditNoteRepo) ListPendientesSUNAT(_ context.Context, cutoff time.Time, limit int) ([]*entity.CreditNote, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.CreditNote
	for _, note := range r.s.CreditNotes {
		if note.EstadoSUNAT == entity.SUNATPendiente && note.CreatedAt.Before(cutoff) {
			cp := *note
			cp.Lines = append([]entity.CreditNoteLine(nil), note.Lines...)
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ---- cuentas por cobrar ----

type receivableRepo struct{ s *Store }

func (r *receivableRepo) Create(_ context.Context, rec *entity.Receivable) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *rec
	r.s.Receivables[rec.ID] = &cp
	return nil
}

func (r *receivableRepo) GetByID(_ context.Context, tenantID, id string) (*entity.Receivable, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.Receivables[id]
	if !ok || rec.TenantID != tenantID {
		return nil, domain.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (r *receivableRepo) GetBySale(_ context.Context, tenantID, saleID string) (*entity.Receivable, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, rec := range r.s.Receivables {
		if rec.TenantID == tenantID && rec.SaleID == saleID {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *receivableRepo) ListByCustomer(_ context.Context, tenantID, customerID string, onlyOpen bool) ([]*entity.Receivable, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Receivable
	for _, rec := range r.s.Receivables {
		if rec.TenantID != tenantID || rec.CustomerID != customerID {
			continue
		}
		if onlyOpen && !rec.IsOpen() {
			continue
		}
		cp := *rec
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Vencimiento.Before(out[j].Vencimiento) })
	return out, nil
}

func (r *receivableRepo) ListByEstado(_ context.Context, tenantID, estado string, limit, offset int) ([]*entity.Receivable, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Receivable
	for _, rec := range r.s.Receivables {
		if rec.TenantID == tenantID && rec.Estado == estado {
			cp := *rec
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Vencimiento.Before(out[j].Vencimiento) })
	return paginate(out, limit, offset), nil
}

func (r *receivableRepo) Update(_ context.Context, rec *entity.Receivable) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.Receivables[rec.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *rec
	r.s.Receivables[rec.ID] = &cp
	return nil
}

func (r *receivableRepo) CreatePayment(_ context.Context, p *entity.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *p
	r.s.Payments = append(r.s.Payments, &cp)
	return nil
}

func (r *receivableRepo) ListPayments(_ context.Context, tenantID, receivableID string) ([]*entity.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Payment
	for _, p := range r.s.Payments {
		if p.TenantID == tenantID && p.ReceivableID == receivableID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *receivableRepo) ReclassifyAging(_ context.Context, now time.Time, warning int) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var changed int64
	for _, rec := range r.s.Receivables {
		if !rec.IsOpen() {
			continue
		}
		estado := entity.ReceivableVigente
		switch {
		case rec.Vencimiento.Before(now):
			estado = entity.ReceivableVencida
		case !rec.Vencimiento.After(now.AddDate(0, 0, warning)):
			estado = entity.ReceivablePorVencer
		}
		if rec.Estado != estado {
			rec.Estado = estado
			changed++
		}
	}
	return changed, nil
}

// ---- caja ----

type cashRepo struct{ s *Store }

func (r *cashRepo) CreateSession(_ context.Context, session *entity.CashSession) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *session
	r.s.CashSessions[session.ID] = &cp
	return nil
}

func (r *cashRepo) GetSession(_ context.Context, tenantID, id string) (*entity.CashSession, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	session, ok := r.s.CashSessions[id]
	if !ok || session.TenantID != tenantID {
		return nil, domain.ErrNotFound
	}
	cp := *session
	return &cp, nil
}

func (r *cashRepo) GetOpenSessionByUser(_ context.Context, tenantID, userID string) (*entity.CashSession, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, session := range r.s.CashSessions {
		if session.TenantID == tenantID && session.UserID == userID && session.Estado == entity.SessionAbierta {
			cp := *session
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *cashRepo) UpdateSession(_ context.Context, session *entity.CashSession) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.CashSessions[session.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *session
	r.s.CashSessions[session.ID] = &cp
	return nil
}

func (r *cashRepo) CreateMovement(_ context.Context, movement *entity.CashMovement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *movement
	r.s.CashMovements = append(r.s.CashMovements, &cp)
	return nil
}

func (r *cashRepo) ListMovements(_ context.Context, tenantID, sessionID string) ([]*entity.CashMovement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.CashMovement
	for _, m := range r.s.CashMovements {
		if m.TenantID == tenantID && m.SessionID == sessionID {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *cashRepo) SumMovements(_ context.Context, tenantID, sessionID string) (decimal.Decimal, decimal.Decimal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ingresos, egresos := decimal.Zero, decimal.Zero
	for _, m := range r.s.CashMovements {
		if m.TenantID != tenantID || m.SessionID != sessionID {
			continue
		}
		if m.Type == entity.CashIngreso {
			ingresos = ingresos.Add(m.Amount)
		} else {
			egresos = egresos.Add(m.Amount)
		}
	}
	return ingresos, egresos, nil
}

// ---- clientes ----

type customerRepo struct{ s *Store }

func (r *customerRepo) Create(_ context.Context, c *entity.Customer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *c
	r.s.Customers[c.ID] = &cp
	return nil
}

func (r *customerRepo) GetByID(_ context.Context, tenantID, id string) (*entity.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.Customers[id]
	if !ok || c.TenantID != tenantID {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *customerRepo) GetByDocumento(_ context.Context, tenantID, numeroDocumento string) (*entity.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.Customers {
		if c.TenantID == tenantID && (c.Documento == numeroDocumento || c.RUC == numeroDocumento) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *customerRepo) ListByTenant(_ context.Context, tenantID string, limit, offset int) ([]*entity.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Customer
	for _, c := range r.s.Customers {
		if c.TenantID == tenantID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return paginate(out, limit, offset), nil
}

func (r *customerRepo) Update(_ context.Context, c *entity.Customer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.Customers[c.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *c
	r.s.Customers[c.ID] = &cp
	return nil
}

// ---- guías de remisión ----

type dispatchRepo struct{ s *Store }

func (r *dispatchRepo) Create(_ context.Context, guide *entity.DispatchGuide) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *guide
	cp.Lines = append([]entity.DispatchGuideLine(nil), guide.Lines...)
	r.s.Guides[guide.ID] = &cp
	return nil
}

func (r *dispatchRepo) GetByID(_ context.Context, tenantID, id string) (*entity.DispatchGuide, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	guide, ok := r.s.Guides[id]
	if !ok || guide.TenantID != tenantID {
		return nil, domain.ErrNotFound
	}
	cp := *guide
	cp.Lines = append([]entity.DispatchGuideLine(nil), guide.Lines...)
	return &cp, nil
}

func (r *dispatchRepo) ListByTenant(_ context.Context, tenantID string, limit, offset int) ([]*entity.DispatchGuide, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.DispatchGuide
	for _, guide := range r.s.Guides {
		if guide.TenantID == tenantID {
			cp := *guide
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, limit, offset), nil
}

func (r *dispatchRepo) UpdateEstadoSUNAT(_ context.Context, tenantID, id string, res *entity.ResultadoFiscal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	guide, ok := r.s.Guides[id]
	if !ok || guide.TenantID != tenantID {
		return domain.ErrNotFound
	}
	guide.EstadoSUNAT = res.Estado
	guide.XMLURL = res.XMLURL
	guide.CDRURL = res.CDRURL
	guide.HashCPE = res.HashCPE
	guide.UpdatedAt = time.Now()
	return nil
}

func (r *dispatchRepo) ListPendientesSUNAT(_ context.Context, cutoff time.Time, limit int) ([]*entity.DispatchGuide, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.DispatchGuide
	for _, guide := range r.s.Guides {
		if guide.EstadoSUNAT == entity.SUNATPendiente && guide.CreatedAt.Before(cutoff) {
			cp := *guide
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func paginate[T any](in []*T, limit, offset int) []*T {
	if offset >= len(in) {
		return nil
	}
	in = in[offset:]
	if limit > 0 && len(in) > limit {
		in = in[:limit]
	}
	return in
}
