package entity

import "time"

// Roles de usuario.
const (
	RoleAdmin  = "admin"
	RoleSeller = "seller"
	RoleBuyer  = "buyer"
)

// User representa un usuario de login, distinto del cliente de cartera
// (Customer): un usuario inicia sesión, un Customer acumula saldo.
type User struct {
	ID           string
	CompanyID    string
	Email        string
	PasswordHash string
	Name         string
	Role         string // ver constantes Role*
	Status       string // active, inactive
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
