package repository

import "github.com/lvidela/facturador-api/internal/domain/entity"

// ClienteRepository define el puerto de persistencia para Cliente (padrón de
// receptores).
type ClienteRepository interface {
	Create(c *entity.Cliente) error
	GetByID(id string) (*entity.Cliente, error)
	GetByDocumento(tipoDoc entity.TipoDocumento, nroDoc string) (*entity.Cliente, error)
	List(limit, offset int) ([]*entity.Cliente, error)
	Update(c *entity.Cliente) error
	Delete(id string) error
}
