package usecase

import (
	"time"

	"github.com/google/uuid"

	"github.com/ksilverstone/b2b/internal/application/dto"
	"github.com/ksilverstone/b2b/internal/domain"
	"github.com/ksilverstone/b2b/internal/domain/entity"
	"github.com/ksilverstone/b2b/internal/domain/repository"
)

// ProductUseCase casos de uso del catálogo: CRUD de productos y bandas de
// precio por volumen. El stock NO se muta por aquí; solo checkout y
// anulación de pedidos tocan stock.
type ProductUseCase struct {
	productRepo repository.ProductRepository
	tierRepo    repository.PriceTierRepository
	companyRepo repository.CompanyRepository
}

// NewProductUseCase construye el caso de uso de catálogo.
func NewProductUseCase(productRepo repository.ProductRepository, tierRepo repository.PriceTierRepository, companyRepo repository.CompanyRepository) *ProductUseCase {
	return &ProductUseCase{productRepo: productRepo, tierRepo: tierRepo, companyRepo: companyRepo}
}

// Create crea un producto del catálogo de la empresa vendedora actuante.
// El SKU es único por empresa; duplicado → ErrDuplicate.
func (uc *ProductUseCase) Create(sellerCompanyID string, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	company, err := uc.companyRepo.GetByID(sellerCompanyID)
	if err != nil {
		return nil, err
	}
	if company == nil || !company.IsSeller {
		return nil, domain.ErrForbidden
	}
	if in.Price.IsNegative() || in.Stock < 0 {
		return nil, domain.ErrInvalidInput
	}
	existing, err := uc.productRepo.GetByCompanyAndSKU(sellerCompanyID, in.SKU)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	now := time.Now()
	unit := in.Unit
	if unit == "" {
		unit = "unidad"
	}
	product := &entity.Product{
		ID:              uuid.New().String(),
		SellerCompanyID: sellerCompanyID,
		SKU:             in.SKU,
		Name:            in.Name,
		Description:     in.Description,
		Unit:            unit,
		Price:           in.Price,
		Stock:           in.Stock,
		MinStock:        in.MinStock,
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := uc.productRepo.Create(product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// Get devuelve un producto por id.
func (uc *ProductUseCase) Get(id string) (*dto.ProductResponse, error) {
	product, err := uc.productRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return toProductResponse(product), nil
}

// ListBySeller lista el catálogo propio de una empresa vendedora.
func (uc *ProductUseCase) ListBySeller(sellerCompanyID string, page dto.PageRequest) ([]dto.ProductResponse, error) {
	page.DefaultPage()
	products, err := uc.productRepo.ListBySeller(sellerCompanyID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	return toProductResponses(products), nil
}

// ListActive catálogo público para compradores: solo productos activos.
func (uc *ProductUseCase) ListActive(page dto.PageRequest) ([]dto.ProductResponse, error) {
	page.DefaultPage()
	products, err := uc.productRepo.ListActive(page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	return toProductResponses(products), nil
}

// Update actualiza campos mutables de un producto. Solo la empresa dueña
// puede modificarlo. El stock no se toca por aquí.
func (uc *ProductUseCase) Update(sellerCompanyID, productID string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if product.SellerCompanyID != sellerCompanyID {
		return nil, domain.ErrForbidden
	}
	if in.Name != nil {
		product.Name = *in.Name
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.Unit != nil {
		product.Unit = *in.Unit
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		product.Price = *in.Price
	}
	if in.MinStock != nil {
		product.MinStock = *in.MinStock
	}
	if in.IsActive != nil {
		product.IsActive = *in.IsActive
	}
	product.UpdatedAt = time.Now()
	if err := uc.productRepo.Update(product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// Delete desactiva un producto (soft delete vía is_active=false en el
// adaptador). Los pedidos existentes conservan sus snapshots.
func (uc *ProductUseCase) Delete(sellerCompanyID, productID string) error {
	product, err := uc.productRepo.GetByID(productID)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrNotFound
	}
	if product.SellerCompanyID != sellerCompanyID {
		return domain.ErrForbidden
	}
	return uc.productRepo.Delete(productID)
}

// AddPriceTier agrega una banda de precio por volumen a un producto.
// Valida que la banda sea coherente (min>=1, max>=min, precio no negativo)
// y que no se solape con las bandas existentes.
func (uc *ProductUseCase) AddPriceTier(sellerCompanyID, productID string, in dto.CreatePriceTierRequest) (*dto.PriceTierResponse, error) {
	product, err := uc.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if product.SellerCompanyID != sellerCompanyID {
		return nil, domain.ErrForbidden
	}
	if in.MinQuantity < 1 || in.UnitPrice.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	if in.MaxQuantity != nil && *in.MaxQuantity < in.MinQuantity {
		return nil, domain.ErrInvalidInput
	}
	tier := &entity.ProductPriceTier{
		ID:          uuid.New().String(),
		ProductID:   productID,
		MinQuantity: in.MinQuantity,
		MaxQuantity: in.MaxQuantity,
		UnitPrice:   in.UnitPrice,
	}
	existing, err := uc.tierRepo.ListByProduct(productID)
	if err != nil {
		return nil, err
	}
	for _, other := range existing {
		if tier.Overlaps(other) {
			return nil, domain.ErrConflict
		}
	}
	if err := uc.tierRepo.Create(tier); err != nil {
		return nil, err
	}
	return toTierResponse(tier), nil
}

// ListPriceTiers lista las bandas de un producto ordenadas por min_quantity.
func (uc *ProductUseCase) ListPriceTiers(productID string) ([]dto.PriceTierResponse, error) {
	product, err := uc.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	tiers, err := uc.tierRepo.ListByProduct(productID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PriceTierResponse, 0, len(tiers))
	for _, t := range tiers {
		out = append(out, *toTierResponse(t))
	}
	return out, nil
}

// RemovePriceTier elimina una banda. La dueña del producto es la única
// autorizada; las líneas ya pedidas no se recalculan.
func (uc *ProductUseCase) RemovePriceTier(sellerCompanyID, productID, tierID string) error {
	product, err := uc.productRepo.GetByID(productID)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrNotFound
	}
	if product.SellerCompanyID != sellerCompanyID {
		return domain.ErrForbidden
	}
	tiers, err := uc.tierRepo.ListByProduct(productID)
	if err != nil {
		return err
	}
	for _, t := range tiers {
		if t.ID == tierID {
			return uc.tierRepo.Delete(tierID)
		}
	}
	return domain.ErrNotFound
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:              p.ID,
		SellerCompanyID: p.SellerCompanyID,
		SKU:             p.SKU,
		Name:            p.Name,
		Description:     p.Description,
		Unit:            p.Unit,
		Price:           p.Price,
		Stock:           p.Stock,
		MinStock:        p.MinStock,
		IsActive:        p.IsActive,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func toTierResponse(t *entity.ProductPriceTier) *dto.PriceTierResponse {
	return &dto.PriceTierResponse{
		ID:          t.ID,
		ProductID:   t.ProductID,
		MinQuantity: t.MinQuantity,
		MaxQuantity: t.MaxQuantity,
		UnitPrice:   t.UnitPrice,
	}
}

func toProductResponses(products []*entity.Product) []dto.ProductResponse {
	items := make([]dto.ProductResponse, 0, len(products))
	for _, p := range products {
		items = append(items, *toProductResponse(p))
	}
	return items
}
