package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Afectación de IGV de un producto (catálogo SUNAT simplificado).
const (
	AfectacionGravado   = "GRAVADO"
	AfectacionExonerado = "EXONERADO"
	AfectacionInafecto  = "INAFECTO"
)

// Product representa un producto del inventario.
// Stock y Version son propiedad del ledger: solo se mutan vía movimientos
// con actualización condicional (WHERE version = leída). Version sube
// exactamente en 1 por mutación exitosa; Stock es la suma corrida de todos
// los movimientos del producto.
type Product struct {
	ID            string
	TenantID      string
	SKU           string
	Name          string
	Price         decimal.Decimal // precio de venta CON IGV
	Cost          decimal.Decimal // costo promedio ponderado (sin IGV)
	Stock         decimal.Decimal
	Version       int64
	AfectacionIGV string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
