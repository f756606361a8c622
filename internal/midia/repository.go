package midia

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const dbTimeout = 3 * time.Second

const colunasArquivo = `id, municipio_id, chave, nome, categoria, content_type, tamanho, url, enviado_por, criado_em`

// Repository provê acesso à tabela de arquivos de mídia.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria instância do repositório.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArquivo(row rowScanner, a *Arquivo) error {
	return row.Scan(
		&a.ID,
		&a.MunicipioID,
		&a.Chave,
		&a.Nome,
		&a.Categoria,
		&a.ContentType,
		&a.Tamanho,
		&a.URL,
		&a.EnviadoPor,
		&a.CriadoEm,
	)
}

// Inserir grava a referência do arquivo enviado.
func (r *Repository) Inserir(ctx context.Context, arquivo Arquivo) (*Arquivo, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	const query = `
		INSERT INTO arquivos (municipio_id, chave, nome, categoria, content_type, tamanho, url, enviado_por)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + colunasArquivo

	var out Arquivo
	err := scanArquivo(r.pool.QueryRow(ctx, query,
		arquivo.MunicipioID,
		arquivo.Chave,
		arquivo.Nome,
		arquivo.Categoria,
		arquivo.ContentType,
		arquivo.Tamanho,
		arquivo.URL,
		arquivo.EnviadoPor,
	), &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Obter busca um arquivo pelo id.
func (r *Repository) Obter(ctx context.Context, id uuid.UUID) (*Arquivo, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	row := r.pool.QueryRow(ctx, `SELECT `+colunasArquivo+` FROM arquivos WHERE id = $1`, id)

	var out Arquivo
	if err := scanArquivo(row, &out); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNaoEncontrado
		}
		return nil, err
	}
	return &out, nil
}

// Remover apaga a referência do arquivo.
func (r *Repository) Remover(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `DELETE FROM arquivos WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNaoEncontrado
	}
	return nil
}

// Listar aplica filtros e devolve também o total antes do recorte.
func (r *Repository) Listar(ctx context.Context, filtro Filtro, municipioID *uuid.UUID, limit, offset int) ([]Arquivo, int, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

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
	if filtro.Categoria != "" {
		clauses = append(clauses, fmt.Sprintf("categoria = $%d", idx))
		args = append(args, strings.ToLower(strings.TrimSpace(filtro.Categoria)))
		idx++
	}
	if filtro.Busca != "" {
		clauses = append(clauses, fmt.Sprintf("nome ILIKE $%d", idx))
		args = append(args, "%"+filtro.Busca+"%")
		idx++
	}

	where := ""
	if len(clauses) > 0 {
		where = " WHERE " + strings.Join(clauses, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM arquivos`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM arquivos%s ORDER BY criado_em DESC, id DESC LIMIT $%d OFFSET $%d`,
		colunasArquivo, where, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var arquivos []Arquivo
	for rows.Next() {
		var a Arquivo
		if err := scanArquivo(rows, &a); err != nil {
			return nil, 0, err
		}
		arquivos = append(arquivos, a)
	}
	if rows.Err() != nil {
		return nil, 0, rows.Err()
	}

	return arquivos, total, nil
}
