package atividade

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const dbTimeout = 3 * time.Second

// Repository provê acesso à tabela de atividades.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria instância do repositório.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Inserir grava o evento e devolve o registo completo.
func (r *Repository) Inserir(ctx context.Context, entrada Entrada) (*Atividade, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	const query = `
		INSERT INTO atividades (autor_id, acao, entidade, entidade_id, municipio_id, detalhe)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, autor_id, acao, entidade, entidade_id, municipio_id, detalhe, criado_em
	`

	var a Atividade
	err := r.pool.QueryRow(ctx, query,
		entrada.AutorID,
		entrada.Acao,
		entrada.Entidade,
		entrada.EntidadeID,
		entrada.MunicipioID,
		entrada.Detalhe,
	).Scan(&a.ID, &a.AutorID, &a.Acao, &a.Entidade, &a.EntidadeID, &a.MunicipioID, &a.Detalhe, &a.CriadoEm)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Listar devolve eventos recentes, opcionalmente restritos a um município.
func (r *Repository) Listar(ctx context.Context, municipioID *uuid.UUID, limit, offset int) ([]Atividade, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	base := `
		SELECT id, autor_id, acao, entidade, entidade_id, municipio_id, detalhe, criado_em
		FROM atividades`

	var (
		clauses []string
		args    []any
		idx     = 1
	)
	if municipioID != nil {
		clauses = append(clauses, fmt.Sprintf("municipio_id = $%d", idx))
		args = append(args, *municipioID)
		idx++
	}

	query := base
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY criado_em DESC, id DESC LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var atividades []Atividade
	for rows.Next() {
		var a Atividade
		if err := rows.Scan(&a.ID, &a.AutorID, &a.Acao, &a.Entidade, &a.EntidadeID, &a.MunicipioID, &a.Detalhe, &a.CriadoEm); err != nil {
			return nil, err
		}
		atividades = append(atividades, a)
	}
	return atividades, rows.Err()
}
