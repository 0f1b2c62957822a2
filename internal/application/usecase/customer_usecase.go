package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Puntoventa-api/internal/application/dto"
	"github.com/jhoicas/Puntoventa-api/internal/domain"
	"github.com/jhoicas/Puntoventa-api/internal/domain/entity"
	"github.com/jhoicas/Puntoventa-api/internal/domain/repository"
)

// CustomerUseCase casos de uso CRUD para clientes.
type CustomerUseCase struct {
	repo repository.CustomerRepository
}

// NewCustomerUseCase construye el caso de uso.
func NewCustomerUseCase(repo repository.CustomerRepository) *CustomerUseCase {
	return &CustomerUseCase{repo: repo}
}

// Create crea un cliente. RUC de 11 dígitos habilita FACTURA.
func (uc *CustomerUseCase) Create(ctx context.Context, tenantID string, in dto.CreateCustomerRequest) (*entity.Customer, error) {
	if in.Name == "" && in.RazonSocial == "" {
		return nil, domain.Validationf("nombre o razón social requeridos")
	}
	if in.RUC != "" && len(in.RUC) != 11 {
		return nil, domain.Validationf("el RUC debe tener 11 dígitos")
	}
	if in.DiasCredito < 0 {
		return nil, domain.Validationf("los días de crédito no pueden ser negativos")
	}
	now := time.Now()
	customer := &entity.Customer{
		ID:          uuid.New().String(),
		TenantID:    tenantID,
		Name:        in.Name,
		RazonSocial: in.RazonSocial,
		Documento:   in.Documento,
		RUC:         in.RUC,
		Direccion:   in.Direccion,
		Email:       in.Email,
		DiasCredito: in.DiasCredito,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

// GetByID obtiene un cliente.
func (uc *CustomerUseCase) GetByID(ctx context.Context, tenantID, id string) (*entity.Customer, error) {
	return uc.repo.GetByID(ctx, tenantID, id)
}

// List lista clientes con paginación.
func (uc *CustomerUseCase) List(ctx context.Context, tenantID string, limit, offset int) ([]*entity.Customer, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return uc.repo.ListByTenant(ctx, tenantID, limit, offset)
}
