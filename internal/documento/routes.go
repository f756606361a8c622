package documento

import (
	"github.com/go-chi/chi/v5"
)

// Mount adiciona rotas do expediente no router.
func Mount(r chi.Router, handler *Handler) {
	handler.RegisterRoutes(r)
}
