package entity

import "time"

// Company representa una organización del sistema B2B. Una empresa puede
// actuar como compradora, vendedora o ambas según sus flags.
type Company struct {
	ID        string
	Name      string
	TaxNumber string // NIT / número fiscal
	Address   string
	Phone     string
	Email     string
	IsBuyer   bool
	IsSeller  bool
	Status    string // active, suspended, inactive
	CreatedAt time.Time
	UpdatedAt time.Time
}
