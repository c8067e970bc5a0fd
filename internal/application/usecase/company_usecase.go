package usecase

import (
	"time"

	"github.com/google/uuid"

	"github.com/ksilverstone/b2b/internal/application/dto"
	"github.com/ksilverstone/b2b/internal/domain"
	"github.com/ksilverstone/b2b/internal/domain/entity"
	"github.com/ksilverstone/b2b/internal/domain/repository"
)

// CompanyUseCase CRUD de empresas. Solo admin crea y modifica empresas.
type CompanyUseCase struct {
	companyRepo repository.CompanyRepository
}

// NewCompanyUseCase construye el caso de uso de empresas.
func NewCompanyUseCase(companyRepo repository.CompanyRepository) *CompanyUseCase {
	return &CompanyUseCase{companyRepo: companyRepo}
}

// Create crea una empresa. Debe ser compradora, vendedora o ambas.
func (uc *CompanyUseCase) Create(in dto.CreateCompanyRequest) (*dto.CompanyResponse, error) {
	if !in.IsBuyer && !in.IsSeller {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	company := &entity.Company{
		ID:        uuid.New().String(),
		Name:      in.Name,
		TaxNumber: in.TaxNumber,
		Address:   in.Address,
		Phone:     in.Phone,
		Email:     in.Email,
		IsBuyer:   in.IsBuyer,
		IsSeller:  in.IsSeller,
		Status:    "active",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.companyRepo.Create(company); err != nil {
		return nil, err
	}
	return toCompanyResponse(company), nil
}

// Get devuelve una empresa por id.
func (uc *CompanyUseCase) Get(id string) (*dto.CompanyResponse, error) {
	company, err := uc.companyRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	return toCompanyResponse(company), nil
}

// List lista empresas paginadas.
func (uc *CompanyUseCase) List(page dto.PageRequest) ([]dto.CompanyResponse, error) {
	page.DefaultPage()
	companies, err := uc.companyRepo.List(page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CompanyResponse, 0, len(companies))
	for _, c := range companies {
		out = append(out, *toCompanyResponse(c))
	}
	return out, nil
}

func toCompanyResponse(c *entity.Company) *dto.CompanyResponse {
	return &dto.CompanyResponse{
		ID:        c.ID,
		Name:      c.Name,
		TaxNumber: c.TaxNumber,
		Address:   c.Address,
		Phone:     c.Phone,
		Email:     c.Email,
		IsBuyer:   c.IsBuyer,
		IsSeller:  c.IsSeller,
		Status:    c.Status,
		CreatedAt: c.CreatedAt,
	}
}
