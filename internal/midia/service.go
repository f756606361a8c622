package midia

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gestaoprovincial/expediente/internal/atividade"
	"github.com/gestaoprovincial/expediente/internal/escopo"
	"github.com/gestaoprovincial/expediente/internal/storage"
)

// MidiaRepository fornece persistência da biblioteca de mídias.
type MidiaRepository interface {
	Inserir(ctx context.Context, arquivo Arquivo) (*Arquivo, error)
	Obter(ctx context.Context, id uuid.UUID) (*Arquivo, error)
	Remover(ctx context.Context, id uuid.UUID) error
	Listar(ctx context.Context, filtro Filtro, municipioID *uuid.UUID, limit, offset int) ([]Arquivo, int, error)
}

// Service reúne as regras da biblioteca de mídias. Os bytes vão para o
// bucket via uploader; o banco guarda apenas a referência.
type Service struct {
	repo     MidiaRepository
	uploader storage.Uploader
	auditor  atividade.Registador
}

// NewService cria o serviço; auditor pode ser nulo.
func NewService(repo MidiaRepository, uploader storage.Uploader, auditor atividade.Registador) *Service {
	return &Service{repo: repo, uploader: uploader, auditor: auditor}
}

// Enviar sobe o conteúdo para o bucket e regista a referência.
// Chamadores municipais enviam sempre para o próprio município.
func (s *Service) Enviar(ctx context.Context, esc escopo.Escopo, input EnviarInput) (*Arquivo, error) {
	input.Nome = strings.TrimSpace(input.Nome)
	if input.Nome == "" {
		return nil, ErrNomeObrigatorio
	}
	if len(input.Conteudo) == 0 {
		return nil, ErrConteudoVazio
	}

	contentType := strings.TrimSpace(input.ContentType)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	if esc.MunicipioID != nil {
		input.MunicipioID = esc.MunicipioID
	}

	prefixo := "provincial"
	if input.MunicipioID != nil {
		prefixo = input.MunicipioID.String()
	}
	chave := fmt.Sprintf("midias/%s/%s-%s", prefixo, uuid.NewString(), sanitizarNome(input.Nome))

	resultado, err := s.uploader.Upload(ctx, storage.UploadInput{
		Key:         chave,
		Body:        input.Conteudo,
		ContentType: contentType,
	})
	if err != nil {
		return nil, err
	}

	arquivo, err := s.repo.Inserir(ctx, Arquivo{
		MunicipioID: input.MunicipioID,
		Chave:       chave,
		Nome:        input.Nome,
		Categoria:   CategoriaDoContentType(contentType),
		ContentType: contentType,
		Tamanho:     int64(len(input.Conteudo)),
		URL:         resultado.URL,
		EnviadoPor:  &esc.UsuarioID,
	})
	if err != nil {
		return nil, err
	}

	s.registar(ctx, esc, "midia_enviada", arquivo)
	return arquivo, nil
}

// Obter devolve o arquivo se estiver ao alcance do chamador.
func (s *Service) Obter(ctx context.Context, esc escopo.Escopo, id uuid.UUID) (*Arquivo, error) {
	arquivo, err := s.repo.Obter(ctx, id)
	if err != nil {
		return nil, err
	}
	if !esc.PermiteMunicipio(arquivo.MunicipioID) {
		return nil, ErrNaoEncontrado
	}
	return arquivo, nil
}

// Listar resolve a biblioteca filtrada; o escopo sobrepõe o filtro de
// município e categorias desconhecidas são ignoradas.
func (s *Service) Listar(ctx context.Context, esc escopo.Escopo, filtro Filtro, limit, offset int) ([]Arquivo, int, error) {
	if filtro.Categoria != "" && !IsValidCategoria(filtro.Categoria) {
		filtro.Categoria = ""
	}
	filtro.Busca = strings.TrimSpace(filtro.Busca)

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	return s.repo.Listar(ctx, filtro, esc.MunicipioID, limit, offset)
}

// Remover apaga a referência; a remoção do objeto no bucket é melhor
// esforço e não bloqueia a operação.
func (s *Service) Remover(ctx context.Context, esc escopo.Escopo, id uuid.UUID) error {
	arquivo, err := s.Obter(ctx, esc, id)
	if err != nil {
		return err
	}

	if err := s.repo.Remover(ctx, id); err != nil {
		return err
	}

	if err := s.uploader.Remove(ctx, arquivo.Chave); err != nil {
		log.Warn().Err(err).Str("chave", arquivo.Chave).Msg("remoção do objeto falhou")
	}

	s.registar(ctx, esc, "midia_removida", arquivo)
	return nil
}

func (s *Service) registar(ctx context.Context, esc escopo.Escopo, acao string, arquivo *Arquivo) {
	if s.auditor == nil {
		return
	}
	autor := esc.UsuarioID
	detalhe := arquivo.Nome
	entrada := atividade.Entrada{
		AutorID:     &autor,
		Acao:        acao,
		Entidade:    "midia",
		EntidadeID:  arquivo.ID,
		MunicipioID: arquivo.MunicipioID,
		Detalhe:     &detalhe,
	}
	if err := s.auditor.Registar(ctx, entrada); err != nil {
		log.Warn().Err(err).Str("acao", acao).Msg("registo de atividade falhou")
	}
}

func sanitizarNome(nome string) string {
	nome = strings.ToLower(nome)
	var b strings.Builder
	for _, r := range nome {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	return b.String()
}
