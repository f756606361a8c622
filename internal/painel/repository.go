package painel

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const dbTimeout = 3 * time.Second

// Repository resolve os agregados do painel direto no banco.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria instância do repositório.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Resumo consolida contagens de documentos e arquivos do escopo.
func (r *Repository) Resumo(ctx context.Context, municipioID *uuid.UUID) (*Resumo, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var resumo Resumo
	err := r.pool.QueryRow(ctx, `
		SELECT
			count(*),
			count(*) FILTER (WHERE status = 'em_tramitacao'),
			count(*) FILTER (WHERE status = 'respondido'),
			count(*) FILTER (WHERE status = 'arquivado'),
			count(*) FILTER (WHERE direcao = 'recebido'),
			count(*) FILTER (WHERE direcao = 'enviado'),
			count(*) FILTER (WHERE status = 'em_tramitacao' AND prazo IS NOT NULL AND prazo < current_date)
		FROM documentos
		WHERE ($1::uuid IS NULL OR municipio_id = $1)
	`, municipioID).Scan(
		&resumo.TotalDocumentos,
		&resumo.EmTramitacao,
		&resumo.Respondidos,
		&resumo.Arquivados,
		&resumo.Recebidos,
		&resumo.Enviados,
		&resumo.Atrasados,
	)
	if err != nil {
		return nil, err
	}

	if err := r.pool.QueryRow(ctx, `
		SELECT count(*) FROM arquivos
		WHERE ($1::uuid IS NULL OR municipio_id = $1)
	`, municipioID).Scan(&resumo.TotalArquivos); err != nil {
		return nil, err
	}

	return &resumo, nil
}
