package entity

import "time"

// Roles de usuario.
const (
	RoleAdmin  = "admin"
	RoleCajero = "cajero"
)

// User representa un usuario del sistema (operador de caja o administrador).
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
