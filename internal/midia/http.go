package midia

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	httpmiddleware "github.com/gestaoprovincial/expediente/internal/http/middleware"
)

// Limite de upload aceito pelo portal.
const maxUploadBytes = 25 << 20

// Handler orquestra rotas da biblioteca de mídias.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/midias", func(r chi.Router) {
		r.Get("/", h.handleListar)
		r.Post("/", h.handleEnviar)
		r.Get("/{id}", h.handleObter)
		r.Delete("/{id}", h.handleRemover)
	})
}

func (h *Handler) handleEnviar(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	esc, ok := httpmiddleware.GetEscopo(ctx)
	if !ok {
		writeError(w, http.StatusUnauthorized, "AUTH", "escopo ausente")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "upload inválido ou acima do limite")
		return
	}

	file, header, err := r.FormFile("arquivo")
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "campo arquivo obrigatório")
		return
	}
	defer file.Close()

	conteudo, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "falha ao ler arquivo")
		return
	}

	input := EnviarInput{
		Nome:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Conteudo:    conteudo,
	}
	if raw := r.FormValue("municipio_id"); raw != "" {
		if municipioID, err := uuid.Parse(raw); err == nil {
			input.MunicipioID = &municipioID
		}
	}

	arquivo, err := h.service.Enviar(ctx, esc, input)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"arquivo": arquivo})
}

func (h *Handler) handleObter(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	esc, ok := httpmiddleware.GetEscopo(ctx)
	if !ok {
		writeError(w, http.StatusUnauthorized, "AUTH", "escopo ausente")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "arquivo inválido")
		return
	}

	arquivo, err := h.service.Obter(ctx, esc, id)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"arquivo": arquivo})
}

func (h *Handler) handleListar(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	esc, ok := httpmiddleware.GetEscopo(ctx)
	if !ok {
		writeError(w, http.StatusUnauthorized, "AUTH", "escopo ausente")
		return
	}

	q := r.URL.Query()
	filtro := Filtro{
		Categoria: q.Get("categoria"),
		Busca:     q.Get("busca"),
	}

	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	arquivos, total, err := h.service.Listar(ctx, esc, filtro, limit, offset)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"arquivos": arquivos, "total": total})
}

func (h *Handler) handleRemover(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	esc, ok := httpmiddleware.GetEscopo(ctx)
	if !ok {
		writeError(w, http.StatusUnauthorized, "AUTH", "escopo ausente")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "arquivo inválido")
		return
	}

	if err := h.service.Remover(ctx, esc, id); err != nil {
		handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func handleDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNaoEncontrado):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "arquivo não encontrado")
	case errors.Is(err, ErrNomeObrigatorio), errors.Is(err, ErrConteudoVazio):
		writeError(w, http.StatusBadRequest, "VALIDATION", err.Error())
	default:
		log.Error().Err(err).Msg("erro interno na biblioteca de mídias")
		writeError(w, http.StatusInternalServerError, "INTERNAL", "erro interno")
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"data": data, "error": nil})
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"data": nil,
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	})
}
