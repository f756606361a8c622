package painel

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/gestaoprovincial/expediente/internal/escopo"
)

type stubRepo struct {
	chamadas        int
	ultimoMunicipio *uuid.UUID
	resumo          Resumo
}

func (s *stubRepo) Resumo(ctx context.Context, municipioID *uuid.UUID) (*Resumo, error) {
	s.chamadas++
	s.ultimoMunicipio = municipioID
	resumo := s.resumo
	return &resumo, nil
}

func TestResumoSemCache(t *testing.T) {
	repo := &stubRepo{resumo: Resumo{TotalDocumentos: 12, EmTramitacao: 5, Atrasados: 2}}
	svc := NewService(repo, nil)

	resumo, err := svc.Resumo(context.Background(), escopo.Escopo{UsuarioID: uuid.New(), Papel: escopo.PapelProvincial})
	if err != nil {
		t.Fatalf("resumo falhou: %v", err)
	}
	if resumo.TotalDocumentos != 12 || resumo.Atrasados != 2 {
		t.Fatalf("resumo inesperado: %+v", resumo)
	}
	if repo.ultimoMunicipio != nil {
		t.Fatal("escopo provincial não deve filtrar por município")
	}
}

func TestResumoAplicaEscopoMunicipal(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo, nil)

	municipioID := uuid.New()
	esc := escopo.Escopo{UsuarioID: uuid.New(), Papel: escopo.PapelMunicipal, MunicipioID: &municipioID}
	if _, err := svc.Resumo(context.Background(), esc); err != nil {
		t.Fatalf("resumo falhou: %v", err)
	}
	if repo.ultimoMunicipio == nil || *repo.ultimoMunicipio != municipioID {
		t.Fatal("escopo municipal não chegou ao repositório")
	}
	if repo.chamadas != 1 {
		t.Fatalf("esperava 1 consulta, veio %d", repo.chamadas)
	}
}
