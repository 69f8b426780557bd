package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	ensinoDomain "github.com/davicafu/igrejalab/internal/ensino/domain"
	sharedDomain "github.com/davicafu/igrejalab/internal/shared/domain"
	"github.com/davicafu/igrejalab/internal/shared/infra/platform/db"
	sharedQuery "github.com/davicafu/igrejalab/internal/shared/infra/platform/query"
	"github.com/google/uuid"
)

type EnsinoRepo struct {
	db.Store
}

var _ ensinoDomain.EnsinoRepository = (*EnsinoRepo)(nil)

func NewEnsinoRepo(conn *sql.DB, driver db.Driver) *EnsinoRepo {
	return &EnsinoRepo{Store: db.NewStore(conn, driver)}
}

const progressoCursoColumns = `id, pessoa_id, curso_id, progresso_percent, licoes_concluidas, total_licoes, concluido, data_conclusao, created_at, updated_at`

var licaoColumns = []string{"id", "curso_id", "titulo", "ordem", "created_at"}

// ------------------ Cursos ------------------

func (r *EnsinoRepo) CreateCurso(ctx context.Context, c *ensinoDomain.Curso, licoes []ensinoDomain.Licao, evt sharedDomain.OutboxEvent) error {
	return db.WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, r.Q(
			`INSERT INTO cursos (id, titulo, descricao, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`),
			c.ID, c.Titulo, c.Descricao, c.CreatedAt, c.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert curso: %w", err)
		}

		rows := make([][]interface{}, 0, len(licoes))
		for _, l := range licoes {
			rows = append(rows, []interface{}{l.ID, l.CursoID, l.Titulo, l.Ordem, l.CreatedAt})
		}
		if _, err := db.InsertBatch(ctx, tx, r.Driver, "licoes", licaoColumns, rows); err != nil {
			return err
		}

		return db.InsertOutboxTx(ctx, tx, r.Driver, evt)
	})
}

func (r *EnsinoRepo) ListCursos(ctx context.Context, criteria sharedDomain.Criteria, p sharedQuery.PaginationParams) ([]*ensinoDomain.CursoResumo, int, error) {
	where, args := db.BuildWhere(r.Driver, criteria)

	total, err := db.Count(ctx, r.DB, r.Q(`SELECT COUNT(*) FROM cursos `+where), args...)
	if err != nil {
		return nil, 0, err
	}

	sort := p.SortFor(ensinoDomain.CursoSortableFields...)
	query := fmt.Sprintf(`SELECT id, titulo, descricao, created_at, updated_at,
		(SELECT COUNT(*) FROM licoes l WHERE l.curso_id = cursos.id) AS total_licoes
		FROM cursos %s %s LIMIT ? OFFSET ?`, where, db.OrderBy(sort.Field, sort.Desc))

	rows, err := r.DB.QueryContext(ctx, r.Q(query), append(args, p.Limit, p.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("list cursos: %w", err)
	}
	defer rows.Close()

	var out []*ensinoDomain.CursoResumo
	for rows.Next() {
		var c ensinoDomain.CursoResumo
		if err := rows.Scan(&c.ID, &c.Titulo, &c.Descricao, &c.CreatedAt, &c.UpdatedAt, &c.TotalLicoes); err != nil {
			return nil, 0, err
		}
		out = append(out, &c)
	}
	return out, total, rows.Err()
}

// GetCurso devuelve el curso con sus lições por orden.
func (r *EnsinoRepo) GetCurso(ctx context.Context, id uuid.UUID) (*ensinoDomain.CursoDetalhe, error) {
	var c ensinoDomain.CursoDetalhe
	err := r.DB.QueryRowContext(ctx, r.Q(`SELECT id, titulo, descricao, created_at, updated_at FROM cursos WHERE id = ?`), id).
		Scan(&c.ID, &c.Titulo, &c.Descricao, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ensinoDomain.ErrCursoNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get curso: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx, r.Q(
		`SELECT id, curso_id, titulo, ordem, created_at FROM licoes WHERE curso_id = ? ORDER BY ordem, titulo`), id)
	if err != nil {
		return nil, fmt.Errorf("list licoes: %w", err)
	}
	defer rows.Close()

	c.Licoes = []ensinoDomain.Licao{}
	for rows.Next() {
		var l ensinoDomain.Licao
		if err := rows.Scan(&l.ID, &l.CursoID, &l.Titulo, &l.Ordem, &l.CreatedAt); err != nil {
			return nil, err
		}
		c.Licoes = append(c.Licoes, l)
	}
	return &c, rows.Err()
}

func (r *EnsinoRepo) GetLicao(ctx context.Context, id uuid.UUID) (*ensinoDomain.Licao, error) {
	var l ensinoDomain.Licao
	err := r.DB.QueryRowContext(ctx, r.Q(`SELECT id, curso_id, titulo, ordem, created_at FROM licoes WHERE id = ?`), id).
		Scan(&l.ID, &l.CursoID, &l.Titulo, &l.Ordem, &l.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ensinoDomain.ErrLicaoNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get licao: %w", err)
	}
	return &l, nil
}

// ------------------ Progreso ------------------

func (r *EnsinoRepo) Matricular(ctx context.Context, p *ensinoDomain.ProgressoCurso, evt sharedDomain.OutboxEvent) error {
	return db.WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, r.Q(`SELECT 1 FROM cursos WHERE id = ?`), p.CursoID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return ensinoDomain.ErrCursoNotFound
		}
		if err != nil {
			return fmt.Errorf("get curso: %w", err)
		}

		if p.TotalLicoes, err = db.Count(ctx, tx, r.Q(`SELECT COUNT(*) FROM licoes WHERE curso_id = ?`), p.CursoID); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, r.Q(
			`INSERT INTO progresso_cursos (`+progressoCursoColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
			p.ID, p.PessoaID, p.CursoID, p.ProgressoPercent, p.LicoesConcluidas, p.TotalLicoes,
			p.Concluido, db.NullTime(p.DataConclusao), p.CreatedAt, p.UpdatedAt,
		)
		if db.IsUniqueViolation(err) {
			return ensinoDomain.ErrJaMatriculado
		}
		if err != nil {
			return fmt.Errorf("insert matricula: %w", err)
		}

		return db.InsertOutboxTx(ctx, tx, r.Driver, evt)
	})
}

// MarcarLicao hace upsert de la lição y recalcula el curso dentro de la misma transacción.
// p.ID queda con el id de la fila guardada.
func (r *EnsinoRepo) MarcarLicao(ctx context.Context, p *ensinoDomain.ProgressoLicao, cursoID uuid.UUID, evt sharedDomain.OutboxEvent) (*ensinoDomain.ProgressoCurso, error) {
	var progresso *ensinoDomain.ProgressoCurso
	err := db.WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, r.Q(
			`INSERT INTO progresso_licoes (id, pessoa_id, licao_id, progresso_percent, concluida, data_conclusao, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT (pessoa_id, licao_id) DO UPDATE SET
			   progresso_percent = excluded.progresso_percent,
			   concluida = excluded.concluida,
			   data_conclusao = excluded.data_conclusao,
			   updated_at = excluded.updated_at
			 RETURNING id`),
			p.ID, p.PessoaID, p.LicaoID, p.ProgressoPercent, p.Concluida, db.NullTime(p.DataConclusao), p.UpdatedAt,
		).Scan(&p.ID)
		if err != nil {
			return fmt.Errorf("upsert progresso licao: %w", err)
		}

		if progresso, err = r.recalcular(ctx, tx, p.PessoaID, cursoID, p.UpdatedAt); err != nil {
			return err
		}

		return db.InsertOutboxTx(ctx, tx, r.Driver, evt)
	})
	if err != nil {
		return nil, err
	}
	return progresso, nil
}

func (r *EnsinoRepo) RecalcularProgresso(ctx context.Context, pessoaID, cursoID uuid.UUID) (*ensinoDomain.ProgressoCurso, error) {
	var progresso *ensinoDomain.ProgressoCurso
	err := db.WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, r.Q(`SELECT 1 FROM cursos WHERE id = ?`), cursoID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return ensinoDomain.ErrCursoNotFound
		}
		if err != nil {
			return fmt.Errorf("get curso: %w", err)
		}

		progresso, err = r.recalcular(ctx, tx, pessoaID, cursoID, time.Now().UTC())
		return err
	})
	if err != nil {
		return nil, err
	}
	return progresso, nil
}

// recalcular cuenta lições totales y concluidas y hace upsert de progresso_cursos.
// Una fecha de conclusión ya guardada se conserva mientras el curso siga concluido.
func (r *EnsinoRepo) recalcular(ctx context.Context, tx *sql.Tx, pessoaID, cursoID uuid.UUID, now time.Time) (*ensinoDomain.ProgressoCurso, error) {
	total, err := db.Count(ctx, tx, r.Q(`SELECT COUNT(*) FROM licoes WHERE curso_id = ?`), cursoID)
	if err != nil {
		return nil, err
	}
	concluidas, err := db.Count(ctx, tx, r.Q(
		`SELECT COUNT(*) FROM progresso_licoes pl
		 JOIN licoes l ON l.id = pl.licao_id
		 WHERE l.curso_id = ? AND pl.pessoa_id = ? AND pl.concluida = TRUE`), cursoID, pessoaID)
	if err != nil {
		return nil, err
	}

	p := ensinoDomain.CalcularProgresso(pessoaID, cursoID, concluidas, total, now)
	_, err = tx.ExecContext(ctx, r.Q(
		`INSERT INTO progresso_cursos (`+progressoCursoColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (pessoa_id, curso_id) DO UPDATE SET
		   progresso_percent = excluded.progresso_percent,
		   licoes_concluidas = excluded.licoes_concluidas,
		   total_licoes = excluded.total_licoes,
		   concluido = excluded.concluido,
		   data_conclusao = CASE WHEN excluded.concluido THEN COALESCE(progresso_cursos.data_conclusao, excluded.data_conclusao) ELSE NULL END,
		   updated_at = excluded.updated_at`),
		p.ID, p.PessoaID, p.CursoID, p.ProgressoPercent, p.LicoesConcluidas, p.TotalLicoes,
		p.Concluido, db.NullTime(p.DataConclusao), p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert progresso curso: %w", err)
	}

	row := tx.QueryRowContext(ctx, r.Q(`SELECT `+progressoCursoColumns+` FROM progresso_cursos WHERE pessoa_id = ? AND curso_id = ?`), pessoaID, cursoID)
	return scanProgressoCurso(row)
}

func (r *EnsinoRepo) ListProgresso(ctx context.Context, pessoaID uuid.UUID, p sharedQuery.PaginationParams) ([]*ensinoDomain.ProgressoCurso, int, error) {
	total, err := db.Count(ctx, r.DB, r.Q(`SELECT COUNT(*) FROM progresso_cursos WHERE pessoa_id = ?`), pessoaID)
	if err != nil {
		return nil, 0, err
	}

	sort := p.SortFor(ensinoDomain.ProgressoSortableFields...)
	query := fmt.Sprintf(`SELECT %s FROM progresso_cursos WHERE pessoa_id = ? %s LIMIT ? OFFSET ?`,
		progressoCursoColumns, db.OrderBy(sort.Field, sort.Desc))

	rows, err := r.DB.QueryContext(ctx, r.Q(query), pessoaID, p.Limit, p.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list progresso: %w", err)
	}
	defer rows.Close()

	var out []*ensinoDomain.ProgressoCurso
	for rows.Next() {
		pc, err := scanProgressoCurso(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, pc)
	}
	return out, total, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanProgressoCurso(s scanner) (*ensinoDomain.ProgressoCurso, error) {
	var (
		p             ensinoDomain.ProgressoCurso
		dataConclusao sql.NullTime
	)
	err := s.Scan(&p.ID, &p.PessoaID, &p.CursoID, &p.ProgressoPercent, &p.LicoesConcluidas, &p.TotalLicoes,
		&p.Concluido, &dataConclusao, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ensinoDomain.ErrProgressoNotFound
	}
	if err != nil {
		return nil, err
	}
	p.DataConclusao = db.TimePtr(dataConclusao)
	return &p, nil
}
