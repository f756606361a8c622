package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	escopopkg "github.com/gestaoprovincial/expediente/internal/escopo"
)

// Escopo deriva o alcance organizacional do chamador a partir das claims
// e injeta-o no contexto. O escopo é aplicado pelos serviços antes de
// qualquer filtro vindo da requisição e não pode ser sobreposto por ela.
func Escopo(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		subject, err := uuid.Parse(GetSubject(ctx))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "AUTH", "subject inválido")
			return
		}

		esc := escopopkg.Escopo{UsuarioID: subject}
		switch {
		case hasRole(ctx, escopopkg.PapelProvincial):
			esc.Papel = escopopkg.PapelProvincial
		case hasRole(ctx, escopopkg.PapelMunicipal):
			esc.Papel = escopopkg.PapelMunicipal
			municipioID, err := uuid.Parse(GetMunicipio(ctx))
			if err != nil {
				writeError(w, http.StatusForbidden, "FORBIDDEN", "perfil municipal sem município")
				return
			}
			esc.MunicipioID = &municipioID
		default:
			writeError(w, http.StatusForbidden, "FORBIDDEN", "perfil sem acesso ao expediente")
			return
		}

		next.ServeHTTP(w, r.WithContext(SetEscopo(ctx, esc)))
	})
}

func hasRole(ctx context.Context, papel string) bool {
	for _, role := range GetRoles(ctx) {
		if strings.EqualFold(strings.TrimSpace(role), papel) {
			return true
		}
	}
	return false
}

// SetEscopo injeta escopo resolvido no contexto.
func SetEscopo(ctx context.Context, esc escopopkg.Escopo) context.Context {
	return context.WithValue(ctx, ContextKeyEscopo, esc)
}

// GetEscopo devolve o escopo do chamador; ok falso indica requisição
// que não passou pelo middleware.
func GetEscopo(ctx context.Context) (escopopkg.Escopo, bool) {
	val, ok := ctx.Value(ContextKeyEscopo).(escopopkg.Escopo)
	return val, ok
}
