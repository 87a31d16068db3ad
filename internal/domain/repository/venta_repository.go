package repository

import "github.com/lvidela/facturador-api/internal/domain/entity"

// VentaRepository define el puerto de persistencia para ventas.
type VentaRepository interface {
	Create(v *entity.Venta) error
	GetByID(id string) (*entity.Venta, error)
	// SetComprobante asocia el comprobante emitido a la venta propietaria.
	SetComprobante(ventaID, comprobanteID string) error
	List(limit, offset int) ([]*entity.Venta, error)
}
