package atividade

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Entrada encapsula um evento de auditoria a registar.
type Entrada struct {
	AutorID     *uuid.UUID
	Acao        string
	Entidade    string
	EntidadeID  uuid.UUID
	MunicipioID *uuid.UUID
	Detalhe     *string
}

// Atividade é um evento persistido do log; nunca é editado.
// AutorID nulo é apresentado como "Sistema" pela interface.
type Atividade struct {
	ID          uuid.UUID  `json:"id"`
	AutorID     *uuid.UUID `json:"autor_id,omitempty"`
	Acao        string     `json:"acao"`
	Entidade    string     `json:"entidade"`
	EntidadeID  uuid.UUID  `json:"entidade_id"`
	MunicipioID *uuid.UUID `json:"municipio_id,omitempty"`
	Detalhe     *string    `json:"detalhe,omitempty"`
	CriadoEm    time.Time  `json:"criado_em"`
}

// Registador recebe eventos de mutação dos demais módulos. Quem chama
// não deve depender do sucesso do registo.
type Registador interface {
	Registar(ctx context.Context, entrada Entrada) error
}
