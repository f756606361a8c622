package painel

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	httpmiddleware "github.com/gestaoprovincial/expediente/internal/http/middleware"
)

// Handler orquestra rotas do painel.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/painel/resumo", h.handleResumo)
}

func (h *Handler) handleResumo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	esc, ok := httpmiddleware.GetEscopo(ctx)
	if !ok {
		writeError(w, http.StatusUnauthorized, "AUTH", "escopo ausente")
		return
	}

	resumo, err := h.service.Resumo(ctx, esc)
	if err != nil {
		log.Error().Err(err).Msg("erro interno no painel")
		writeError(w, http.StatusInternalServerError, "INTERNAL", "erro interno")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"resumo": resumo})
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
