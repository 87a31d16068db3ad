package entity

import "time"

// Cliente representa un cliente del comercio (facturación).
type Cliente struct {
	ID        string
	Nombre    string
	Perfil    PerfilFiscal
	Email     string
	Telefono  string
	CreatedAt time.Time
	UpdatedAt time.Time
}
