package billing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lvidela/facturador-api/internal/application/dto"
	"github.com/lvidela/facturador-api/internal/domain"
	"github.com/lvidela/facturador-api/internal/domain/entity"
	"github.com/lvidela/facturador-api/internal/domain/repository"
	"github.com/lvidela/facturador-api/pkg/afip"
)

// ClienteUseCase administra el padrón de clientes (receptores de comprobantes).
type ClienteUseCase struct {
	clienteRepo repository.ClienteRepository
}

// NewClienteUseCase construye el caso de uso.
func NewClienteUseCase(clienteRepo repository.ClienteRepository) *ClienteUseCase {
	return &ClienteUseCase{clienteRepo: clienteRepo}
}

var condicionesValidas = map[entity.CondicionIVA]bool{
	entity.CondicionResponsableInscripto: true,
	entity.CondicionExento:               true,
	entity.CondicionConsumidorFinal:      true,
	entity.CondicionMonotributo:          true,
	entity.CondicionNoCategorizado:       true,
}

// CreateCliente da de alta un cliente con su perfil fiscal validado. El CUIT o
// CUIL se verifica con el dígito verificador antes de guardar.
func (uc *ClienteUseCase) CreateCliente(ctx context.Context, in dto.CreateClienteRequest) (*dto.ClienteResponse, error) {
	perfil, err := perfilDesdeRequest(in)
	if err != nil {
		return nil, err
	}
	if in.Nombre == "" {
		return nil, fmt.Errorf("%w: nombre es obligatorio", domain.ErrInvalidInput)
	}

	if perfil.NroDoc != "" {
		existente, err := uc.clienteRepo.GetByDocumento(perfil.TipoDoc, perfil.NroDoc)
		if err != nil {
			return nil, fmt.Errorf("verificar documento: %w", err)
		}
		if existente != nil {
			return nil, fmt.Errorf("%w: ya existe un cliente con %s %s", domain.ErrDuplicate, perfil.TipoDoc, perfil.NroDoc)
		}
	}

	now := time.Now()
	cliente := &entity.Cliente{
		ID:        uuid.New().String(),
		Nombre:    strings.TrimSpace(in.Nombre),
		Perfil:    perfil,
		Email:     strings.TrimSpace(in.Email),
		Telefono:  strings.TrimSpace(in.Telefono),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.clienteRepo.Create(cliente); err != nil {
		return nil, err
	}
	return toClienteResponse(cliente), nil
}

// GetCliente devuelve un cliente por ID.
func (uc *ClienteUseCase) GetCliente(ctx context.Context, id string) (*dto.ClienteResponse, error) {
	cliente, err := uc.clienteRepo.GetByID(id)
	if err != nil || cliente == nil {
		return nil, domain.ErrNotFound
	}
	return toClienteResponse(cliente), nil
}

// ListClientes lista clientes paginados.
func (uc *ClienteUseCase) ListClientes(ctx context.Context, limit, offset int) ([]*dto.ClienteResponse, error) {
	list, err := uc.clienteRepo.List(limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.ClienteResponse, 0, len(list))
	for _, c := range list {
		out = append(out, toClienteResponse(c))
	}
	return out, nil
}

// UpdateCliente actualiza los datos de contacto y el nombre. El perfil fiscal
// no se edita acá: los comprobantes ya emitidos congelan el perfil vigente y
// un cambio de condición es un alta de perfil nuevo, no una corrección.
func (uc *ClienteUseCase) UpdateCliente(ctx context.Context, id string, in dto.CreateClienteRequest) (*dto.ClienteResponse, error) {
	cliente, err := uc.clienteRepo.GetByID(id)
	if err != nil || cliente == nil {
		return nil, domain.ErrNotFound
	}
	if in.Nombre != "" {
		cliente.Nombre = strings.TrimSpace(in.Nombre)
	}
	if in.Email != "" {
		cliente.Email = strings.TrimSpace(in.Email)
	}
	if in.Telefono != "" {
		cliente.Telefono = strings.TrimSpace(in.Telefono)
	}
	cliente.UpdatedAt = time.Now()
	if err := uc.clienteRepo.Update(cliente); err != nil {
		return nil, err
	}
	return toClienteResponse(cliente), nil
}

// DeleteCliente elimina un cliente del padrón.
func (uc *ClienteUseCase) DeleteCliente(ctx context.Context, id string) error {
	cliente, err := uc.clienteRepo.GetByID(id)
	if err != nil || cliente == nil {
		return domain.ErrNotFound
	}
	return uc.clienteRepo.Delete(id)
}

// perfilDesdeRequest arma y valida el perfil fiscal del request.
func perfilDesdeRequest(in dto.CreateClienteRequest) (entity.PerfilFiscal, error) {
	condicion := entity.CondicionIVA(strings.ToUpper(strings.TrimSpace(in.CondicionIVA)))
	if !condicionesValidas[condicion] {
		return entity.PerfilFiscal{}, fmt.Errorf("%w: condición de IVA %q desconocida", domain.ErrInvalidInput, in.CondicionIVA)
	}
	tipoDoc := entity.TipoDocumento(strings.ToUpper(strings.TrimSpace(in.TipoDoc)))
	nroDoc := soloDigitos(in.NroDoc)

	switch tipoDoc {
	case entity.DocCUIT, entity.DocCUIL:
		if err := afip.ValidateCUIT(nroDoc); err != nil {
			return entity.PerfilFiscal{}, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
	case entity.DocDNI:
		if len(nroDoc) < 7 || len(nroDoc) > 8 {
			return entity.PerfilFiscal{}, fmt.Errorf("%w: DNI %q inválido", domain.ErrInvalidInput, in.NroDoc)
		}
	case entity.DocSinIdentificar:
		nroDoc = ""
	default:
		return entity.PerfilFiscal{}, fmt.Errorf("%w: tipo de documento %q desconocido", domain.ErrInvalidInput, in.TipoDoc)
	}

	return entity.PerfilFiscal{
		Condicion:   condicion,
		TipoDoc:     tipoDoc,
		NroDoc:      nroDoc,
		RazonSocial: strings.TrimSpace(in.RazonSocial),
	}, nil
}

func soloDigitos(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

func toClienteResponse(c *entity.Cliente) *dto.ClienteResponse {
	return &dto.ClienteResponse{
		ID:           c.ID,
		Nombre:       c.Nombre,
		CondicionIVA: string(c.Perfil.Condicion),
		TipoDoc:      string(c.Perfil.TipoDoc),
		NroDoc:       c.Perfil.NroDoc,
		RazonSocial:  c.Perfil.RazonSocial,
		Email:        c.Email,
		Telefono:     c.Telefono,
	}
}
