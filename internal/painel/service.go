package painel

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/gestaoprovincial/expediente/internal/escopo"
)

const cacheTTL = 60 * time.Second

// Resumo agrega os números exibidos no painel inicial do portal.
type Resumo struct {
	TotalDocumentos int `json:"total_documentos"`
	EmTramitacao    int `json:"em_tramitacao"`
	Respondidos     int `json:"respondidos"`
	Arquivados      int `json:"arquivados"`
	Recebidos       int `json:"recebidos"`
	Enviados        int `json:"enviados"`
	Atrasados       int `json:"atrasados"`
	TotalArquivos   int `json:"total_arquivos"`
}

// PainelRepository resolve os agregados no banco.
type PainelRepository interface {
	Resumo(ctx context.Context, municipioID *uuid.UUID) (*Resumo, error)
}

// Service serve o painel com cache de curta duração por escopo.
type Service struct {
	repo  PainelRepository
	cache *redis.Client
}

// NewService cria o serviço; cache pode ser nulo.
func NewService(repo PainelRepository, cache *redis.Client) *Service {
	return &Service{repo: repo, cache: cache}
}

// Resumo devolve os agregados do alcance do chamador.
func (s *Service) Resumo(ctx context.Context, esc escopo.Escopo) (*Resumo, error) {
	key := "painel:resumo:provincial"
	if esc.MunicipioID != nil {
		key = "painel:resumo:" + esc.MunicipioID.String()
	}

	if s.cache != nil {
		if data, err := s.cache.Get(ctx, key).Bytes(); err == nil {
			var resumo Resumo
			if json.Unmarshal(data, &resumo) == nil {
				return &resumo, nil
			}
		}
	}

	resumo, err := s.repo.Resumo(ctx, esc.MunicipioID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if payload, err := json.Marshal(resumo); err == nil {
			_ = s.cache.Set(ctx, key, payload, cacheTTL).Err()
		}
	}

	return resumo, nil
}
