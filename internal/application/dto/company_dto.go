package dto

import "time"

// CreateCompanyRequest entrada para crear una empresa.
type CreateCompanyRequest struct {
	Name      string `json:"name" validate:"required,min=1,max=200"`
	TaxNumber string `json:"tax_number"`
	Address   string `json:"address"`
	Phone     string `json:"phone"`
	Email     string `json:"email" validate:"omitempty,email"`
	IsBuyer   bool   `json:"is_buyer"`
	IsSeller  bool   `json:"is_seller"`
}

// CompanyResponse empresa en respuestas.
type CompanyResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	TaxNumber string    `json:"tax_number,omitempty"`
	Address   string    `json:"address,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	IsBuyer   bool      `json:"is_buyer"`
	IsSeller  bool      `json:"is_seller"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
