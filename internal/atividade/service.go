package atividade

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/gestaoprovincial/expediente/internal/escopo"
)

// AtividadeRepository fornece persistência do log de atividades.
type AtividadeRepository interface {
	Inserir(ctx context.Context, entrada Entrada) (*Atividade, error)
	Listar(ctx context.Context, municipioID *uuid.UUID, limit, offset int) ([]Atividade, error)
}

// Service implementa Registador sobre o repositório.
type Service struct {
	repo AtividadeRepository
}

// NewService cria uma nova instância do serviço.
func NewService(repo AtividadeRepository) *Service {
	return &Service{repo: repo}
}

// Registar grava um evento no log. O log é apenas-acrescento.
func (s *Service) Registar(ctx context.Context, entrada Entrada) error {
	entrada.Acao = strings.TrimSpace(entrada.Acao)
	entrada.Entidade = strings.TrimSpace(entrada.Entidade)
	if entrada.Acao == "" {
		return errors.New("acao obrigatória")
	}
	if entrada.Entidade == "" {
		return errors.New("entidade obrigatória")
	}

	_, err := s.repo.Inserir(ctx, entrada)
	return err
}

// Listar devolve eventos recentes dentro do alcance do chamador.
func (s *Service) Listar(ctx context.Context, esc escopo.Escopo, limit, offset int) ([]Atividade, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.Listar(ctx, esc.MunicipioID, limit, offset)
}
