package entity

import (
	"fmt"
	"time"
)

// Tipos de comprobante con serie correlativa SUNAT.
const (
	DocKindFactura      = "FACTURA"
	DocKindBoleta       = "BOLETA"
	DocKindNotaCredito  = "NOTA_CREDITO"
	DocKindGuiaRemision = "GUIA_REMISION"
)

// DocumentSeries es una serie de numeración por (tenant, tipo de
// comprobante). El correlativo es monotónico: todo número emitido es único
// y menor o igual al valor actual del contador.
type DocumentSeries struct {
	ID          string
	TenantID    string
	Kind        string
	Code        string // ej. "F001", "B001", "FC01", "T001"
	Correlativo int64
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// FormatNumero arma el identificador legal serie-correlativo, ej. F001-123.
func FormatNumero(code string, number int64) string {
	return fmt.Sprintf("%s-%d", code, number)
}
