package atividade

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/gestaoprovincial/expediente/internal/escopo"
)

type stubRepo struct {
	entradas        []Entrada
	ultimoMunicipio *uuid.UUID
	ultimoLimit     int
	ultimoOffset    int
}

func (s *stubRepo) Inserir(ctx context.Context, entrada Entrada) (*Atividade, error) {
	s.entradas = append(s.entradas, entrada)
	return &Atividade{
		ID:          uuid.New(),
		AutorID:     entrada.AutorID,
		Acao:        entrada.Acao,
		Entidade:    entrada.Entidade,
		EntidadeID:  entrada.EntidadeID,
		MunicipioID: entrada.MunicipioID,
		Detalhe:     entrada.Detalhe,
		CriadoEm:    time.Now(),
	}, nil
}

func (s *stubRepo) Listar(ctx context.Context, municipioID *uuid.UUID, limit, offset int) ([]Atividade, error) {
	s.ultimoMunicipio = municipioID
	s.ultimoLimit = limit
	s.ultimoOffset = offset
	return nil, nil
}

func TestRegistarValidacao(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo)

	if err := svc.Registar(context.Background(), Entrada{Entidade: "documento", EntidadeID: uuid.New()}); err == nil {
		t.Fatal("esperava erro para ação vazia")
	}
	if err := svc.Registar(context.Background(), Entrada{Acao: "documento_criado", EntidadeID: uuid.New()}); err == nil {
		t.Fatal("esperava erro para entidade vazia")
	}
	if len(repo.entradas) != 0 {
		t.Fatal("entrada inválida não pode ser persistida")
	}

	if err := svc.Registar(context.Background(), Entrada{Acao: " documento_criado ", Entidade: " documento ", EntidadeID: uuid.New()}); err != nil {
		t.Fatalf("registar falhou: %v", err)
	}
	if repo.entradas[0].Acao != "documento_criado" || repo.entradas[0].Entidade != "documento" {
		t.Fatalf("campos não normalizados: %+v", repo.entradas[0])
	}
}

func TestListarNormalizaPaginacaoEEscopo(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo)

	municipioID := uuid.New()
	esc := escopo.Escopo{UsuarioID: uuid.New(), Papel: escopo.PapelMunicipal, MunicipioID: &municipioID}
	if _, err := svc.Listar(context.Background(), esc, 0, -10); err != nil {
		t.Fatalf("listar falhou: %v", err)
	}
	if repo.ultimoLimit != 50 || repo.ultimoOffset != 0 {
		t.Fatalf("paginação não normalizada: limit=%d offset=%d", repo.ultimoLimit, repo.ultimoOffset)
	}
	if repo.ultimoMunicipio == nil || *repo.ultimoMunicipio != municipioID {
		t.Fatal("escopo municipal não chegou ao repositório")
	}

	if _, err := svc.Listar(context.Background(), esc, 500, 0); err != nil {
		t.Fatalf("listar falhou: %v", err)
	}
	if repo.ultimoLimit != 50 {
		t.Fatalf("limite acima do teto deveria cair para 50, veio %d", repo.ultimoLimit)
	}
}
