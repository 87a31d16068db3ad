package repository

import "github.com/lvidela/facturador-api/internal/domain/entity"

// ComprobanteRepository define el puerto de persistencia para comprobantes y
// sus líneas.
type ComprobanteRepository interface {
	Create(c *entity.Comprobante) error
	CreateItem(item *entity.ItemComprobante) error
	// UpdateEstado actualiza los campos del ciclo de autorización:
	// estado, numero, cae, cae_vencimiento, error_detalle.
	UpdateEstado(c *entity.Comprobante) error
	GetByID(id string) (*entity.Comprobante, error)
	GetItemsByComprobanteID(comprobanteID string) ([]*entity.ItemComprobante, error)
	List(limit, offset int) ([]*entity.Comprobante, error)
	// ListByOrigen devuelve las notas emitidas contra un comprobante de origen.
	ListByOrigen(origenID string) ([]*entity.Comprobante, error)
}
