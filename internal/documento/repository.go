package documento

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gestaoprovincial/expediente/internal/db"
)

const dbTimeout = 3 * time.Second

const colunasDocumento = `id, numero_protocolo, municipio_id, tipo, assunto, origem, destino, direcao, status, data_documento, prazo, observacoes, arquivo_url, criado_em, atualizado_em`

// Repository provê acesso às tabelas do expediente.
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

func scanDocumento(row rowScanner, doc *Documento) error {
	return row.Scan(
		&doc.ID,
		&doc.NumeroProtocolo,
		&doc.MunicipioID,
		&doc.Tipo,
		&doc.Assunto,
		&doc.Origem,
		&doc.Destino,
		&doc.Direcao,
		&doc.Status,
		&doc.DataDocumento,
		&doc.Prazo,
		&doc.Observacoes,
		&doc.ArquivoURL,
		&doc.CriadoEm,
		&doc.AtualizadoEm,
	)
}

// Criar aloca o número de protocolo e insere o documento na mesma
// transação. Um create abandonado devolve o incremento junto com o
// rollback, portanto nunca fica número reservado sem documento.
func (r *Repository) Criar(ctx context.Context, input CriarInput) (*Documento, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var doc Documento
	err := db.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		ano := time.Now().UTC().Year()
		var seq int
		if err := tx.QueryRow(ctx, `
			INSERT INTO protocolo_sequencias (ano, ultimo) VALUES ($1, 1)
			ON CONFLICT (ano) DO UPDATE SET ultimo = protocolo_sequencias.ultimo + 1
			RETURNING ultimo
		`, ano).Scan(&seq); err != nil {
			return err
		}

		row := tx.QueryRow(ctx, `
			INSERT INTO documentos (numero_protocolo, municipio_id, tipo, assunto, origem, destino, direcao, status, data_documento, prazo, observacoes, arquivo_url)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			RETURNING `+colunasDocumento,
			FormatarProtocolo(ano, seq),
			input.MunicipioID,
			input.Tipo,
			input.Assunto,
			input.Origem,
			input.Destino,
			input.Direcao,
			input.Status,
			input.DataDocumento,
			input.Prazo,
			input.Observacoes,
			input.ArquivoURL,
		)
		return scanDocumento(row, &doc)
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrConflito
		}
		return nil, err
	}

	return &doc, nil
}

// Obter busca um documento pelo id.
func (r *Repository) Obter(ctx context.Context, id uuid.UUID) (*Documento, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	row := r.pool.QueryRow(ctx, `SELECT `+colunasDocumento+` FROM documentos WHERE id = $1`, id)

	var doc Documento
	if err := scanDocumento(row, &doc); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNaoEncontrado
		}
		return nil, err
	}
	return &doc, nil
}

// Atualizar aplica atualização parcial e devolve o registo resultante.
func (r *Repository) Atualizar(ctx context.Context, id uuid.UUID, input AtualizarInput) (*Documento, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	setParts := []string{}
	args := []any{}
	idx := 1

	if input.Tipo != nil {
		setParts = append(setParts, fmt.Sprintf("tipo = $%d", idx))
		args = append(args, NormalizeTipo(*input.Tipo))
		idx++
	}
	if input.Assunto != nil {
		setParts = append(setParts, fmt.Sprintf("assunto = $%d", idx))
		args = append(args, strings.TrimSpace(*input.Assunto))
		idx++
	}
	if input.Origem != nil {
		setParts = append(setParts, fmt.Sprintf("origem = $%d", idx))
		args = append(args, strings.TrimSpace(*input.Origem))
		idx++
	}
	if input.Destino != nil {
		setParts = append(setParts, fmt.Sprintf("destino = $%d", idx))
		args = append(args, strings.TrimSpace(*input.Destino))
		idx++
	}
	if input.Direcao != nil {
		setParts = append(setParts, fmt.Sprintf("direcao = $%d", idx))
		args = append(args, NormalizeDirecao(*input.Direcao))
		idx++
	}
	if input.Status != nil {
		setParts = append(setParts, fmt.Sprintf("status = $%d", idx))
		args = append(args, NormalizeStatus(*input.Status))
		idx++
	}
	if input.DataDocumento != nil {
		setParts = append(setParts, fmt.Sprintf("data_documento = $%d", idx))
		args = append(args, *input.DataDocumento)
		idx++
	}
	if input.Prazo != nil {
		setParts = append(setParts, fmt.Sprintf("prazo = $%d", idx))
		args = append(args, *input.Prazo)
		idx++
	} else if input.LimparPrazo {
		setParts = append(setParts, "prazo = NULL")
	}
	if input.Observacoes != nil {
		setParts = append(setParts, fmt.Sprintf("observacoes = $%d", idx))
		args = append(args, *input.Observacoes)
		idx++
	}
	if input.ArquivoURL != nil {
		setParts = append(setParts, fmt.Sprintf("arquivo_url = $%d", idx))
		args = append(args, *input.ArquivoURL)
		idx++
	} else if input.LimparArquivo {
		setParts = append(setParts, "arquivo_url = NULL")
	}

	if len(setParts) == 0 {
		return r.Obter(ctx, id)
	}

	setParts = append(setParts, "atualizado_em = now()")

	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE documentos
		SET %s
		WHERE id = $%d
		RETURNING %s
	`, strings.Join(setParts, ", "), idx, colunasDocumento)

	var doc Documento
	if err := scanDocumento(r.pool.QueryRow(ctx, query, args...), &doc); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNaoEncontrado
		}
		return nil, err
	}
	return &doc, nil
}

// Remover apaga documento e movimentações em cascata na mesma transação.
func (r *Repository) Remover(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	return db.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM movimentacoes WHERE documento_id = $1`, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM documentos WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNaoEncontrado
		}
		return nil
	})
}

// Listar aplica filtros e paginação; devolve também o total antes do recorte.
func (r *Repository) Listar(ctx context.Context, filtro Filtro, pag Paginacao) ([]Documento, int, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var (
		clauses []string
		args    []any
		idx     = 1
	)

	if filtro.Busca != "" {
		clauses = append(clauses, fmt.Sprintf("(assunto ILIKE $%d OR numero_protocolo ILIKE $%d OR origem ILIKE $%d OR destino ILIKE $%d)", idx, idx, idx, idx))
		args = append(args, "%"+filtro.Busca+"%")
		idx++
	}
	if filtro.MunicipioID != nil {
		clauses = append(clauses, fmt.Sprintf("municipio_id = $%d", idx))
		args = append(args, *filtro.MunicipioID)
		idx++
	}
	if filtro.Tipo != "" {
		clauses = append(clauses, fmt.Sprintf("tipo = $%d", idx))
		args = append(args, NormalizeTipo(filtro.Tipo))
		idx++
	}
	if filtro.Status != "" {
		clauses = append(clauses, fmt.Sprintf("status = $%d", idx))
		args = append(args, strings.ToLower(strings.TrimSpace(filtro.Status)))
		idx++
	}
	if filtro.Direcao != "" {
		clauses = append(clauses, fmt.Sprintf("direcao = $%d", idx))
		args = append(args, NormalizeDirecao(filtro.Direcao))
		idx++
	}
	if filtro.DataDe != nil {
		clauses = append(clauses, fmt.Sprintf("data_documento >= $%d", idx))
		args = append(args, *filtro.DataDe)
		idx++
	}
	if filtro.DataAte != nil {
		clauses = append(clauses, fmt.Sprintf("data_documento <= $%d", idx))
		args = append(args, *filtro.DataAte)
		idx++
	}

	where := ""
	if len(clauses) > 0 {
		where = " WHERE " + strings.Join(clauses, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM documentos`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM documentos%s ORDER BY criado_em DESC, id DESC LIMIT $%d OFFSET $%d`,
		colunasDocumento, where, idx, idx+1)
	args = append(args, pag.Limit, pag.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var docs []Documento
	for rows.Next() {
		var doc Documento
		if err := scanDocumento(rows, &doc); err != nil {
			return nil, 0, err
		}
		docs = append(docs, doc)
	}
	if rows.Err() != nil {
		return nil, 0, rows.Err()
	}

	return docs, total, nil
}

// Movimentar insere entrada na linha do tempo; entradas nunca são alteradas.
func (r *Repository) Movimentar(ctx context.Context, documentoID uuid.UUID, acao string, notas *string, autorID *uuid.UUID) (*Movimentacao, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var mov Movimentacao
	err := db.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		var existe bool
		if err := tx.QueryRow(ctx, `SELECT true FROM documentos WHERE id = $1`, documentoID).Scan(&existe); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNaoEncontrado
			}
			return err
		}

		mov.DocumentoID = documentoID
		mov.Acao = acao
		mov.Notas = notas
		mov.AutorID = autorID
		return tx.QueryRow(ctx, `
			INSERT INTO movimentacoes (documento_id, acao, notas, autor_id)
			VALUES ($1, $2, $3, $4)
			RETURNING id, seq, criado_em
		`, documentoID, acao, notas, autorID).Scan(&mov.ID, &mov.Seq, &mov.CriadoEm)
	})
	if err != nil {
		return nil, err
	}
	return &mov, nil
}

// Movimentacoes lista a linha do tempo em ordem cronológica; seq desempata
// entradas com o mesmo criado_em.
func (r *Repository) Movimentacoes(ctx context.Context, documentoID uuid.UUID) ([]Movimentacao, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var existe bool
	if err := r.pool.QueryRow(ctx, `SELECT true FROM documentos WHERE id = $1`, documentoID).Scan(&existe); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNaoEncontrado
		}
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, documento_id, acao, notas, autor_id, seq, criado_em
		FROM movimentacoes
		WHERE documento_id = $1
		ORDER BY criado_em ASC, seq ASC
	`, documentoID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var movs []Movimentacao
	for rows.Next() {
		var mov Movimentacao
		if err := rows.Scan(&mov.ID, &mov.DocumentoID, &mov.Acao, &mov.Notas, &mov.AutorID, &mov.Seq, &mov.CriadoEm); err != nil {
			return nil, err
		}
		movs = append(movs, mov)
	}
	return movs, rows.Err()
}
