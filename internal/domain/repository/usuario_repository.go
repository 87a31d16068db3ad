package repository

import "github.com/lvidela/facturador-api/internal/domain/entity"

// UsuarioRepository define el puerto de persistencia para Usuario.
type UsuarioRepository interface {
	Create(u *entity.Usuario) error
	GetByID(id string) (*entity.Usuario, error)
	GetByEmail(email string) (*entity.Usuario, error)
	Update(u *entity.Usuario) error
}
