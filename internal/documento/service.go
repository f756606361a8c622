package documento

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gestaoprovincial/expediente/internal/atividade"
	"github.com/gestaoprovincial/expediente/internal/escopo"
)

const (
	limitePadrao = 20
	limiteMaximo = 100
)

// RegistoRepository fornece acesso ao armazenamento do expediente.
type RegistoRepository interface {
	Criar(ctx context.Context, input CriarInput) (*Documento, error)
	Obter(ctx context.Context, id uuid.UUID) (*Documento, error)
	Atualizar(ctx context.Context, id uuid.UUID, input AtualizarInput) (*Documento, error)
	Remover(ctx context.Context, id uuid.UUID) error
	Listar(ctx context.Context, filtro Filtro, pag Paginacao) ([]Documento, int, error)
	Movimentar(ctx context.Context, documentoID uuid.UUID, acao string, notas *string, autorID *uuid.UUID) (*Movimentacao, error)
	Movimentacoes(ctx context.Context, documentoID uuid.UUID) ([]Movimentacao, error)
}

// Service reúne as regras do registo de expediente: validação, escopo e
// auditoria. A alocação de protocolo acontece no repositório, na mesma
// transação do INSERT do documento.
type Service struct {
	repo    RegistoRepository
	auditor atividade.Registador
}

// NewService cria o serviço; auditor pode ser nulo.
func NewService(repo RegistoRepository, auditor atividade.Registador) *Service {
	return &Service{repo: repo, auditor: auditor}
}

// Criar valida e regista um novo documento com protocolo alocado.
// Chamadores de alcance municipal registam sempre no próprio município,
// independentemente do municipio_id enviado.
func (s *Service) Criar(ctx context.Context, esc escopo.Escopo, input CriarInput) (*Documento, error) {
	input.Assunto = strings.TrimSpace(input.Assunto)
	input.Origem = strings.TrimSpace(input.Origem)
	input.Destino = strings.TrimSpace(input.Destino)
	input.Tipo = NormalizeTipo(input.Tipo)
	input.Direcao = NormalizeDirecao(input.Direcao)
	input.Status = NormalizeStatus(input.Status)

	if esc.MunicipioID != nil {
		input.MunicipioID = esc.MunicipioID
	}

	var campos []string
	if input.Assunto == "" {
		campos = append(campos, "assunto")
	}
	if input.Origem == "" {
		campos = append(campos, "origem")
	}
	if input.Destino == "" {
		campos = append(campos, "destino")
	}
	if !IsValidTipo(input.Tipo) {
		campos = append(campos, "tipo")
	}
	if !IsValidDirecao(input.Direcao) {
		campos = append(campos, "direcao")
	}
	if !IsValidStatus(input.Status) {
		campos = append(campos, "status")
	}
	if input.DataDocumento.IsZero() {
		campos = append(campos, "data_documento")
	}
	if len(campos) > 0 {
		return nil, novaValidacao(campos...)
	}

	doc, err := s.repo.Criar(ctx, input)
	if err != nil {
		return nil, err
	}

	s.registar(ctx, esc, "documento_criado", doc, fmt.Sprintf("protocolo %s", doc.NumeroProtocolo))
	return doc, nil
}

// Obter devolve o documento se estiver ao alcance do chamador.
func (s *Service) Obter(ctx context.Context, esc escopo.Escopo, id uuid.UUID) (*Documento, error) {
	doc, err := s.repo.Obter(ctx, id)
	if err != nil {
		return nil, err
	}
	if !esc.PermiteMunicipio(doc.MunicipioID) {
		return nil, ErrNaoEncontrado
	}
	return doc, nil
}

// Atualizar aplica alterações parciais. O número de protocolo é imutável
// e qualquer tentativa de alterá-lo falha na validação.
func (s *Service) Atualizar(ctx context.Context, esc escopo.Escopo, id uuid.UUID, input AtualizarInput) (*Documento, error) {
	if input.NumeroProtocolo != nil {
		return nil, novaValidacao("numero_protocolo")
	}

	var campos []string
	if input.Assunto != nil && strings.TrimSpace(*input.Assunto) == "" {
		campos = append(campos, "assunto")
	}
	if input.Origem != nil && strings.TrimSpace(*input.Origem) == "" {
		campos = append(campos, "origem")
	}
	if input.Destino != nil && strings.TrimSpace(*input.Destino) == "" {
		campos = append(campos, "destino")
	}
	if input.Tipo != nil && !IsValidTipo(*input.Tipo) {
		campos = append(campos, "tipo")
	}
	if input.Direcao != nil && !IsValidDirecao(*input.Direcao) {
		campos = append(campos, "direcao")
	}
	if input.Status != nil && !IsValidStatus(*input.Status) {
		campos = append(campos, "status")
	}
	if input.DataDocumento != nil && input.DataDocumento.IsZero() {
		campos = append(campos, "data_documento")
	}
	if len(campos) > 0 {
		return nil, novaValidacao(campos...)
	}

	if _, err := s.Obter(ctx, esc, id); err != nil {
		return nil, err
	}

	doc, err := s.repo.Atualizar(ctx, id, input)
	if err != nil {
		return nil, err
	}

	s.registar(ctx, esc, "documento_atualizado", doc, fmt.Sprintf("protocolo %s", doc.NumeroProtocolo))
	return doc, nil
}

// Remover apaga o documento e a sua linha do tempo na mesma transação.
func (s *Service) Remover(ctx context.Context, esc escopo.Escopo, id uuid.UUID) error {
	doc, err := s.Obter(ctx, esc, id)
	if err != nil {
		return err
	}

	if err := s.repo.Remover(ctx, id); err != nil {
		return err
	}

	s.registar(ctx, esc, "documento_removido", doc, fmt.Sprintf("protocolo %s", doc.NumeroProtocolo))
	return nil
}

// Listar resolve a listagem filtrada e paginada. O escopo é aplicado
// primeiro e sobrepõe qualquer municipio_id vindo do filtro; valores de
// enumeração desconhecidos são ignorados em vez de rejeitados.
func (s *Service) Listar(ctx context.Context, esc escopo.Escopo, filtro Filtro, pag Paginacao) ([]Documento, int, error) {
	if esc.MunicipioID != nil {
		filtro.MunicipioID = esc.MunicipioID
	}

	filtro.Busca = strings.TrimSpace(filtro.Busca)
	if filtro.Tipo != "" && !IsValidTipo(filtro.Tipo) {
		filtro.Tipo = ""
	}
	if filtro.Status != "" && !IsValidStatus(filtro.Status) {
		filtro.Status = ""
	}
	if filtro.Direcao != "" && !IsValidDirecao(filtro.Direcao) {
		filtro.Direcao = ""
	}

	if pag.Limit <= 0 || pag.Limit > limiteMaximo {
		pag.Limit = limitePadrao
	}
	if pag.Offset < 0 {
		pag.Offset = 0
	}

	return s.repo.Listar(ctx, filtro, pag)
}

// Movimentar acrescenta uma entrada à linha do tempo do documento.
// Entradas nunca são editadas; correções geram novas entradas.
func (s *Service) Movimentar(ctx context.Context, esc escopo.Escopo, documentoID uuid.UUID, acao string, notas *string, autorID *uuid.UUID) (*Movimentacao, error) {
	acao = strings.TrimSpace(acao)
	if acao == "" {
		return nil, novaValidacao("acao")
	}

	doc, err := s.Obter(ctx, esc, documentoID)
	if err != nil {
		return nil, err
	}

	mov, err := s.repo.Movimentar(ctx, documentoID, acao, notas, autorID)
	if err != nil {
		return nil, err
	}

	s.registar(ctx, esc, "documento_movimentado", doc, acao)
	return mov, nil
}

// Movimentacoes devolve a linha do tempo em ordem cronológica.
func (s *Service) Movimentacoes(ctx context.Context, esc escopo.Escopo, documentoID uuid.UUID) ([]Movimentacao, error) {
	if _, err := s.Obter(ctx, esc, documentoID); err != nil {
		return nil, err
	}
	return s.repo.Movimentacoes(ctx, documentoID)
}

// registar envia o evento ao log de atividades; falha não interrompe a operação.
func (s *Service) registar(ctx context.Context, esc escopo.Escopo, acao string, doc *Documento, detalhe string) {
	if s.auditor == nil {
		return
	}
	autor := esc.UsuarioID
	entrada := atividade.Entrada{
		AutorID:     &autor,
		Acao:        acao,
		Entidade:    "documento",
		EntidadeID:  doc.ID,
		MunicipioID: doc.MunicipioID,
		Detalhe:     &detalhe,
	}
	if err := s.auditor.Registar(ctx, entrada); err != nil {
		log.Warn().Err(err).Str("acao", acao).Msg("registo de atividade falhou")
	}
}
