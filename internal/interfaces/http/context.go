package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Puntoventa-api/internal/application/dto"
)

// Cabeceras de identidad. El tenant y el usuario viajan explícitos en cada
// petición; ningún caso de uso los lee de estado ambiente.
const (
	HeaderTenantID = "X-Tenant-ID"
	HeaderUserID   = "X-User-ID"
)

// GetTenantID extrae el tenant de la petición.
func GetTenantID(c *fiber.Ctx) string {
	return c.Get(HeaderTenantID)
}

// GetUserID extrae el usuario de la petición.
func GetUserID(c *fiber.Ctx) string {
	return c.Get(HeaderUserID)
}

// requireIdentity corta con 401 si faltan las cabeceras de identidad.
// Retorna (tenantID, userID, ok).
func requireIdentity(c *fiber.Ctx) (string, string, bool) {
	tenantID, userID := GetTenantID(c), GetUserID(c)
	if tenantID == "" || userID == "" {
		_ = c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Code:    "UNAUTHORIZED",
			Message: "cabeceras X-Tenant-ID y X-User-ID requeridas",
		})
		return "", "", false
	}
	return tenantID, userID, true
}
