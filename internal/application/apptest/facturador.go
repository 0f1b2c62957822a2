package apptest

import (
	"context"
	"sync"

	"github.com/jhoicas/Puntoventa-api/internal/application"
	"github.com/jhoicas/Puntoventa-api/internal/domain/entity"
)

// FakeFacturador registra los documentos recibidos y responde según la
// función Respond; por defecto acepta todo.
type FakeFacturador struct {
	mu      sync.Mutex
	Calls   []*application.DocumentoFiscal
	Respond func(doc *application.DocumentoFiscal) (*application.Respuesta, error)
}

// Acepta es la respuesta por defecto de la pasarela.
func Acepta(doc *application.DocumentoFiscal) (*application.Respuesta, error) {
	return &application.Respuesta{
		Exito:    true,
		Estado:   entity.SUNATAceptado,
		XMLURL:   "https://cdn.test/xml/" + doc.Serie,
		CDRURL:   "https://cdn.test/cdr/" + doc.Serie,
		HashCPE:  "hash-" + doc.Serie,
		CodigoQR: "qr-" + doc.Serie,
	}, nil
}

func (f *FakeFacturador) emit(doc *application.DocumentoFiscal) (*application.Respuesta, error) {
	f.mu.Lock()
	f.Calls = append(f.Calls, doc)
	respond := f.Respond
	f.mu.Unlock()
	if respond == nil {
		respond = Acepta
	}
	return respond(doc)
}

func (f *FakeFacturador) EmitirComprobante(_ context.Context, doc *application.DocumentoFiscal) (*application.Respuesta, error) {
	return f.emit(doc)
}

func (f *FakeFacturador) EmitirNotaCredito(_ context.Context, doc *application.DocumentoFiscal) (*application.Respuesta, error) {
	return f.emit(doc)
}

func (f *FakeFacturador) EmitirGuiaRemision(_ context.Context, doc *application.DocumentoFiscal) (*application.Respuesta, error) {
	return f.emit(doc)
}

// CallCount retorna cuántos documentos recibió la pasarela.
func (f *FakeFacturador) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Calls)
}
