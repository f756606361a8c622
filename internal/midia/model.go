package midia

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNaoEncontrado é retornado quando o arquivo não existe.
	ErrNaoEncontrado = errors.New("arquivo não encontrado")
	// ErrNomeObrigatorio indica upload sem nome de arquivo.
	ErrNomeObrigatorio = errors.New("nome do arquivo obrigatório")
	// ErrConteudoVazio indica upload sem corpo.
	ErrConteudoVazio = errors.New("arquivo vazio")
)

// Categorias de mídia aceitas pela biblioteca.
const (
	CategoriaImagem    = "imagem"
	CategoriaVideo     = "video"
	CategoriaAudio     = "audio"
	CategoriaDocumento = "documento"
)

var validCategorias = map[string]struct{}{
	CategoriaImagem:    {},
	CategoriaVideo:     {},
	CategoriaAudio:     {},
	CategoriaDocumento: {},
}

// Arquivo representa um item da biblioteca de mídias.
type Arquivo struct {
	ID          uuid.UUID  `json:"id"`
	MunicipioID *uuid.UUID `json:"municipio_id,omitempty"`
	Chave       string     `json:"-"`
	Nome        string     `json:"nome"`
	Categoria   string     `json:"categoria"`
	ContentType string     `json:"content_type"`
	Tamanho     int64      `json:"tamanho"`
	URL         string     `json:"url"`
	EnviadoPor  *uuid.UUID `json:"enviado_por,omitempty"`
	CriadoEm    time.Time  `json:"criado_em"`
}

// EnviarInput encapsula um upload vindo do portal.
type EnviarInput struct {
	MunicipioID *uuid.UUID
	Nome        string
	ContentType string
	Conteudo    []byte
}

// Filtro delimita a listagem de arquivos.
type Filtro struct {
	Categoria string
	Busca     string
}

// CategoriaDoContentType deriva a categoria a partir do MIME type.
func CategoriaDoContentType(contentType string) string {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return CategoriaImagem
	case strings.HasPrefix(contentType, "video/"):
		return CategoriaVideo
	case strings.HasPrefix(contentType, "audio/"):
		return CategoriaAudio
	default:
		return CategoriaDocumento
	}
}

// IsValidCategoria indica se a categoria é aceita como filtro.
func IsValidCategoria(categoria string) bool {
	_, ok := validCategorias[strings.ToLower(strings.TrimSpace(categoria))]
	return ok
}
