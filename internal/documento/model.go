package documento

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	TipoOficio    = "oficio"
	TipoMemorando = "memorando"
	TipoCarta     = "carta"
	TipoFax       = "fax"
	TipoEmail     = "email"
	TipoOutro     = "outro"

	DirecaoRecebido = "recebido"
	DirecaoEnviado  = "enviado"

	StatusEmTramitacao = "em_tramitacao"
	StatusRespondido   = "respondido"
	StatusArquivado    = "arquivado"
)

var (
	validTipos = map[string]struct{}{
		TipoOficio:    {},
		TipoMemorando: {},
		TipoCarta:     {},
		TipoFax:       {},
		TipoEmail:     {},
		TipoOutro:     {},
	}
	validDirecoes = map[string]struct{}{
		DirecaoRecebido: {},
		DirecaoEnviado:  {},
	}
	validStatus = map[string]struct{}{
		StatusEmTramitacao: {},
		StatusRespondido:   {},
		StatusArquivado:    {},
	}
)

// Documento representa correspondência institucional registada no expediente.
type Documento struct {
	ID              uuid.UUID  `json:"id"`
	NumeroProtocolo string     `json:"numero_protocolo"`
	MunicipioID     *uuid.UUID `json:"municipio_id,omitempty"`
	Tipo            string     `json:"tipo"`
	Assunto         string     `json:"assunto"`
	Origem          string     `json:"origem"`
	Destino         string     `json:"destino"`
	Direcao         string     `json:"direcao"`
	Status          string     `json:"status"`
	DataDocumento   time.Time  `json:"data_documento"`
	Prazo           *time.Time `json:"prazo,omitempty"`
	Observacoes     *string    `json:"observacoes,omitempty"`
	ArquivoURL      *string    `json:"arquivo_url,omitempty"`
	CriadoEm        time.Time  `json:"criado_em"`
	AtualizadoEm    time.Time  `json:"atualizado_em"`
}

// Atrasado indica prazo vencido enquanto o documento ainda tramita.
// Propriedade derivada; nunca é persistida.
func (d Documento) Atrasado(agora time.Time) bool {
	if d.Prazo == nil || d.Status != StatusEmTramitacao {
		return false
	}
	hoje := time.Date(agora.Year(), agora.Month(), agora.Day(), 0, 0, 0, 0, time.UTC)
	return d.Prazo.Before(hoje)
}

// Movimentacao é uma entrada imutável da linha do tempo do documento.
// Seq desempata movimentações com o mesmo criado_em.
type Movimentacao struct {
	ID          uuid.UUID  `json:"id"`
	DocumentoID uuid.UUID  `json:"documento_id"`
	Acao        string     `json:"acao"`
	Notas       *string    `json:"notas,omitempty"`
	AutorID     *uuid.UUID `json:"autor_id,omitempty"`
	Seq         int64      `json:"-"`
	CriadoEm    time.Time  `json:"criado_em"`
}

// CriarInput encapsula campos para registo de documento.
type CriarInput struct {
	MunicipioID   *uuid.UUID
	Tipo          string
	Assunto       string
	Origem        string
	Destino       string
	Direcao       string
	Status        string
	DataDocumento time.Time
	Prazo         *time.Time
	Observacoes   *string
	ArquivoURL    *string
}

// AtualizarInput permite atualização parcial; ponteiros nulos mantêm o valor.
// NumeroProtocolo existe apenas para rejeitar tentativas de alteração.
type AtualizarInput struct {
	NumeroProtocolo *string
	Tipo            *string
	Assunto         *string
	Origem          *string
	Destino         *string
	Direcao         *string
	Status          *string
	DataDocumento   *time.Time
	Prazo           *time.Time
	LimparPrazo     bool
	Observacoes     *string
	ArquivoURL      *string
	LimparArquivo   bool
}

// Filtro delimita a listagem de documentos. Campos vazios não filtram.
type Filtro struct {
	Busca       string
	MunicipioID *uuid.UUID
	Tipo        string
	Status      string
	Direcao     string
	DataDe      *time.Time
	DataAte     *time.Time
}

// Paginacao controla o recorte da listagem.
type Paginacao struct {
	Limit  int
	Offset int
}

// NormalizeStatus garante padrão em letras minúsculas, com default em tramitação.
func NormalizeStatus(status string) string {
	status = strings.ToLower(strings.TrimSpace(status))
	if status == "" {
		return StatusEmTramitacao
	}
	return status
}

// NormalizeTipo padroniza o tipo do documento.
func NormalizeTipo(tipo string) string {
	return strings.ToLower(strings.TrimSpace(tipo))
}

// NormalizeDirecao padroniza a direção.
func NormalizeDirecao(direcao string) string {
	return strings.ToLower(strings.TrimSpace(direcao))
}

// IsValidTipo indica se o tipo é aceito.
func IsValidTipo(tipo string) bool {
	_, ok := validTipos[NormalizeTipo(tipo)]
	return ok
}

// IsValidDirecao indica se a direção é aceita.
func IsValidDirecao(direcao string) bool {
	_, ok := validDirecoes[NormalizeDirecao(direcao)]
	return ok
}

// IsValidStatus indica se o status é aceito.
func IsValidStatus(status string) bool {
	_, ok := validStatus[strings.ToLower(strings.TrimSpace(status))]
	return ok
}
