package entity

import "time"

// Customer representa un cliente. RUC presente habilita FACTURA y define
// el tipo de comprobante por defecto; DiasCredito alimenta el vencimiento
// de las cuentas por cobrar.
type Customer struct {
	ID          string
	TenantID    string
	Name        string
	RazonSocial string
	Documento   string // DNI u otro documento de identidad
	RUC         string
	Direccion   string
	Email       string
	DiasCredito int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasRUC indica si el cliente puede recibir FACTURA.
func (c *Customer) HasRUC() bool { return c.RUC != "" }

// FiscalName devuelve el nombre a usar en el comprobante.
func (c *Customer) FiscalName() string {
	if c.RazonSocial != "" {
		return c.RazonSocial
	}
	if c.Name != "" {
		return c.Name
	}
	return "CLIENTE GENERICO"
}
