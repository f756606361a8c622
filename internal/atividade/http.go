package atividade

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	httpmiddleware "github.com/gestaoprovincial/expediente/internal/http/middleware"
)

// Handler expõe a consulta do log de atividades.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/atividades", h.handleListar)
}

func (h *Handler) handleListar(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	esc, ok := httpmiddleware.GetEscopo(ctx)
	if !ok {
		writeError(w, http.StatusUnauthorized, "AUTH", "escopo ausente")
		return
	}

	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	atividades, err := h.service.Listar(ctx, esc, limit, offset)
	if err != nil {
		log.Error().Err(err).Msg("erro interno no log de atividades")
		writeError(w, http.StatusInternalServerError, "INTERNAL", "erro interno")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"atividades": atividades})
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
