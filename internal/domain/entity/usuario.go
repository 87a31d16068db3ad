package entity

import "time"

// Roles válidos para Usuario.
const (
	RoleAdmin    = "admin"
	RoleVendedor = "vendedor"
)

// Usuario representa un usuario del back-office.
type Usuario struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Nombre       string
	Role         string // admin, vendedor
	Status       string // active, inactive, suspended
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
