package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/Puntoventa-api/internal/application/dto"
	"github.com/jhoicas/Puntoventa-api/internal/domain"
	"github.com/jhoicas/Puntoventa-api/internal/domain/entity"
	"github.com/jhoicas/Puntoventa-api/internal/domain/repository"
)

// ProductUseCase casos de uso CRUD para productos. Cost, Stock y Version se
// manejan exclusivamente vía movimientos de inventario.
type ProductUseCase struct {
	repo repository.ProductRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo}
}

// Create crea un nuevo producto con stock cero.
func (uc *ProductUseCase) Create(ctx context.Context, tenantID string, in dto.CreateProductRequest) (*entity.Product, error) {
	if in.SKU == "" || in.Name == "" {
		return nil, domain.Validationf("sku y nombre son obligatorios")
	}
	if in.Price.IsNegative() {
		return nil, domain.Validationf("el precio no puede ser negativo")
	}
	afectacion := in.AfectacionIGV
	if afectacion == "" {
		afectacion = entity.AfectacionGravado
	}
	switch afectacion {
	case entity.AfectacionGravado, entity.AfectacionExonerado, entity.AfectacionInafecto:
	default:
		return nil, domain.Validationf("afectación IGV inválida: %s", afectacion)
	}

	if existing, err := uc.repo.GetBySKU(ctx, tenantID, in.SKU); err == nil && existing != nil {
		return nil, domain.ErrDuplicate
	} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	now := time.Now()
	product := &entity.Product{
		ID:            uuid.New().String(),
		TenantID:      tenantID,
		SKU:           in.SKU,
		Name:          in.Name,
		Price:         in.Price,
		Cost:          decimal.Zero,
		Stock:         decimal.Zero,
		Version:       1,
		AfectacionIGV: afectacion,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// GetByID obtiene un producto.
func (uc *ProductUseCase) GetByID(ctx context.Context, tenantID, id string) (*entity.Product, error) {
	return uc.repo.GetByID(ctx, tenantID, id)
}

// List lista productos con paginación.
func (uc *ProductUseCase) List(ctx context.Context, tenantID string, limit, offset int) ([]*entity.Product, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return uc.repo.ListByTenant(ctx, tenantID, limit, offset)
}

// Update edita los datos comerciales de un producto.
func (uc *ProductUseCase) Update(ctx context.Context, tenantID, id string, in dto.UpdateProductRequest) (*entity.Product, error) {
	product, err := uc.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if in.Name != "" {
		product.Name = in.Name
	}
	if !in.Price.IsZero() {
		if in.Price.IsNegative() {
			return nil, domain.Validationf("el precio no puede ser negativo")
		}
		product.Price = in.Price
	}
	if in.AfectacionIGV != "" {
		product.AfectacionIGV = in.AfectacionIGV
	}
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}
