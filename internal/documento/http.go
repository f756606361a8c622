package documento

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gestaoprovincial/expediente/internal/escopo"
	httpmiddleware "github.com/gestaoprovincial/expediente/internal/http/middleware"
	"github.com/gestaoprovincial/expediente/internal/util"
)

// Handler orquestra rotas do registo de expediente.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/documentos", func(r chi.Router) {
		r.Get("/", h.handleListar)
		r.Post("/", h.handleCriar)
		r.Get("/{id}", h.handleObter)
		r.Put("/{id}", h.handleAtualizar)
		r.Delete("/{id}", h.handleRemover)
		r.Get("/{id}/movimentacoes", h.handleMovimentacoes)
		r.Post("/{id}/movimentacoes", h.handleMovimentar)
	})
}

// documentoView acrescenta a propriedade derivada de atraso à resposta.
type documentoView struct {
	*Documento
	Atrasado bool `json:"atrasado"`
}

func vista(doc *Documento) documentoView {
	return documentoView{Documento: doc, Atrasado: doc.Atrasado(time.Now())}
}

type criarPayload struct {
	MunicipioID   *string `json:"municipio_id"`
	Tipo          string  `json:"tipo"`
	Assunto       string  `json:"assunto"`
	Origem        string  `json:"origem"`
	Destino       string  `json:"destino"`
	Direcao       string  `json:"direcao"`
	Status        string  `json:"status"`
	DataDocumento string  `json:"data_documento"`
	Prazo         *string `json:"prazo"`
	Observacoes   *string `json:"observacoes"`
	ArquivoURL    *string `json:"arquivo_url"`
}

func (h *Handler) handleCriar(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	esc, ok := httpmiddleware.GetEscopo(ctx)
	if !ok {
		writeError(w, http.StatusUnauthorized, "AUTH", "escopo ausente", nil)
		return
	}

	var payload criarPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "payload inválido", nil)
		return
	}

	input := CriarInput{
		Tipo:        payload.Tipo,
		Assunto:     payload.Assunto,
		Origem:      payload.Origem,
		Destino:     payload.Destino,
		Direcao:     payload.Direcao,
		Status:      payload.Status,
		Observacoes: payload.Observacoes,
		ArquivoURL:  payload.ArquivoURL,
	}

	if payload.MunicipioID != nil {
		municipioID, err := uuid.Parse(*payload.MunicipioID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION", "campos inválidos", []string{"municipio_id"})
			return
		}
		input.MunicipioID = &municipioID
	}

	if payload.DataDocumento != "" {
		data, err := util.ParseData(payload.DataDocumento)
		if err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION", "campos inválidos", []string{"data_documento"})
			return
		}
		input.DataDocumento = data
	}

	if payload.Prazo != nil {
		prazo, err := util.ParseData(*payload.Prazo)
		if err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION", "campos inválidos", []string{"prazo"})
			return
		}
		input.Prazo = &prazo
	}

	doc, err := h.service.Criar(ctx, esc, input)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"documento": vista(doc)})
}

func (h *Handler) handleObter(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	esc, ok := httpmiddleware.GetEscopo(ctx)
	if !ok {
		writeError(w, http.StatusUnauthorized, "AUTH", "escopo ausente", nil)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "documento inválido", nil)
		return
	}

	doc, err := h.service.Obter(ctx, esc, id)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"documento": vista(doc)})
}

type atualizarPayload struct {
	NumeroProtocolo *string `json:"numero_protocolo"`
	Tipo            *string `json:"tipo"`
	Assunto         *string `json:"assunto"`
	Origem          *string `json:"origem"`
	Destino         *string `json:"destino"`
	Direcao         *string `json:"direcao"`
	Status          *string `json:"status"`
	DataDocumento   *string `json:"data_documento"`
	Prazo           *string `json:"prazo"`
	LimparPrazo     bool    `json:"limpar_prazo"`
	Observacoes     *string `json:"observacoes"`
	ArquivoURL      *string `json:"arquivo_url"`
	LimparArquivo   bool    `json:"limpar_arquivo"`
}

func (h *Handler) handleAtualizar(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	esc, ok := httpmiddleware.GetEscopo(ctx)
	if !ok {
		writeError(w, http.StatusUnauthorized, "AUTH", "escopo ausente", nil)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "documento inválido", nil)
		return
	}

	var payload atualizarPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "payload inválido", nil)
		return
	}

	input := AtualizarInput{
		NumeroProtocolo: payload.NumeroProtocolo,
		Tipo:            payload.Tipo,
		Assunto:         payload.Assunto,
		Origem:          payload.Origem,
		Destino:         payload.Destino,
		Direcao:         payload.Direcao,
		Status:          payload.Status,
		LimparPrazo:     payload.LimparPrazo,
		Observacoes:     payload.Observacoes,
		ArquivoURL:      payload.ArquivoURL,
		LimparArquivo:   payload.LimparArquivo,
	}

	if payload.DataDocumento != nil {
		data, err := util.ParseData(*payload.DataDocumento)
		if err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION", "campos inválidos", []string{"data_documento"})
			return
		}
		input.DataDocumento = &data
	}
	if payload.Prazo != nil {
		prazo, err := util.ParseData(*payload.Prazo)
		if err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION", "campos inválidos", []string{"prazo"})
			return
		}
		input.Prazo = &prazo
	}

	doc, err := h.service.Atualizar(ctx, esc, id, input)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"documento": vista(doc)})
}

func (h *Handler) handleRemover(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	esc, ok := httpmiddleware.GetEscopo(ctx)
	if !ok {
		writeError(w, http.StatusUnauthorized, "AUTH", "escopo ausente", nil)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "documento inválido", nil)
		return
	}

	if err := h.service.Remover(ctx, esc, id); err != nil {
		handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleListar(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	esc, ok := httpmiddleware.GetEscopo(ctx)
	if !ok {
		writeError(w, http.StatusUnauthorized, "AUTH", "escopo ausente", nil)
		return
	}

	q := r.URL.Query()
	filtro := Filtro{
		Busca:   q.Get("busca"),
		Tipo:    q.Get("tipo"),
		Status:  q.Get("status"),
		Direcao: q.Get("direcao"),
	}

	if raw := q.Get("municipio_id"); raw != "" {
		if municipioID, err := uuid.Parse(raw); err == nil {
			filtro.MunicipioID = &municipioID
		}
	}
	if raw := q.Get("data_de"); raw != "" {
		data, err := util.ParseData(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION", "data_de inválida", nil)
			return
		}
		filtro.DataDe = &data
	}
	if raw := q.Get("data_ate"); raw != "" {
		data, err := util.ParseData(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION", "data_ate inválida", nil)
			return
		}
		filtro.DataAte = &data
	}

	pag := Paginacao{}
	if raw := q.Get("limit"); raw != "" {
		pag.Limit, _ = strconv.Atoi(raw)
	}
	if raw := q.Get("offset"); raw != "" {
		pag.Offset, _ = strconv.Atoi(raw)
	}

	docs, total, err := h.service.Listar(ctx, esc, filtro, pag)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	agora := time.Now()
	vistas := make([]documentoView, 0, len(docs))
	for i := range docs {
		vistas = append(vistas, documentoView{Documento: &docs[i], Atrasado: docs[i].Atrasado(agora)})
	}

	writeJSON(w, http.StatusOK, map[string]any{"documentos": vistas, "total": total})
}

type movimentarPayload struct {
	Acao  string  `json:"acao"`
	Notas *string `json:"notas"`
}

func (h *Handler) handleMovimentar(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	esc, ok := httpmiddleware.GetEscopo(ctx)
	if !ok {
		writeError(w, http.StatusUnauthorized, "AUTH", "escopo ausente", nil)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "documento inválido", nil)
		return
	}

	var payload movimentarPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "payload inválido", nil)
		return
	}

	autor := esc.UsuarioID
	mov, err := h.service.Movimentar(ctx, esc, id, payload.Acao, payload.Notas, &autor)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"movimentacao": mov})
}

func (h *Handler) handleMovimentacoes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	esc, ok := httpmiddleware.GetEscopo(ctx)
	if !ok {
		writeError(w, http.StatusUnauthorized, "AUTH", "escopo ausente", nil)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "documento inválido", nil)
		return
	}

	movs, err := h.service.Movimentacoes(ctx, esc, id)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"movimentacoes": movs})
}

func handleDomainError(w http.ResponseWriter, err error) {
	var val *ErroValidacao
	switch {
	case errors.As(err, &val):
		writeError(w, http.StatusBadRequest, "VALIDATION", "campos inválidos", val.Campos)
	case errors.Is(err, ErrNaoEncontrado):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "documento não encontrado", nil)
	case errors.Is(err, ErrConflito):
		writeError(w, http.StatusConflict, "CONFLICT", "conflito de protocolo, tente novamente", nil)
	case errors.Is(err, escopo.ErrAcessoNegado):
		writeError(w, http.StatusForbidden, "FORBIDDEN", "acesso negado", nil)
	default:
		writeInternalError(w, err)
	}
}

func writeInternalError(w http.ResponseWriter, err error) {
	log.Error().Err(err).Msg("erro interno no expediente")
	writeError(w, http.StatusInternalServerError, "INTERNAL", "erro interno", nil)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"data": data, "error": nil})
}

func writeError(w http.ResponseWriter, status int, code, message string, details any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	body := map[string]any{
		"code":    code,
		"message": message,
	}
	if details != nil {
		body["details"] = details
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"data": nil, "error": body})
}
