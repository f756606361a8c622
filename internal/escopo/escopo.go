package escopo

import (
	"errors"

	"github.com/google/uuid"
)

var (
	// ErrAcessoNegado indica que o chamador não alcança o recurso pedido.
	ErrAcessoNegado = errors.New("acesso negado")
)

// Papéis reconhecidos pelo portal.
const (
	PapelProvincial = "PROVINCIAL"
	PapelMunicipal  = "MUNICIPAL"
)

// Escopo delimita o que o chamador pode ver e alterar. É derivado das
// claims do token pelo middleware e aplicado antes de qualquer filtro.
type Escopo struct {
	UsuarioID   uuid.UUID
	Papel       string
	MunicipioID *uuid.UUID
}

// Provincial indica visão da direcção provincial, sem restrição de município.
func (e Escopo) Provincial() bool {
	return e.MunicipioID == nil
}

// PermiteMunicipio verifica se o escopo alcança o município informado.
// Documentos de alcance provincial (municipio nulo) só são visíveis ao
// papel provincial.
func (e Escopo) PermiteMunicipio(id *uuid.UUID) bool {
	if e.MunicipioID == nil {
		return true
	}
	return id != nil && *id == *e.MunicipioID
}
