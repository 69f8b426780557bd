package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	celulaDomain "github.com/davicafu/igrejalab/internal/celula/domain"
	sharedDomain "github.com/davicafu/igrejalab/internal/shared/domain"
	"github.com/davicafu/igrejalab/internal/shared/infra/platform/db"
	sharedQuery "github.com/davicafu/igrejalab/internal/shared/infra/platform/query"
	"github.com/google/uuid"
)

// CelulaRepo implementa CelulaRepository sobre database/sql.
type CelulaRepo struct {
	db.Store
}

var _ celulaDomain.CelulaRepository = (*CelulaRepo)(nil)

func NewCelulaRepo(conn *sql.DB, driver db.Driver) *CelulaRepo {
	return &CelulaRepo{Store: db.NewStore(conn, driver)}
}

const celulaColumns = `id, nome, descricao, lider_id, supervisor_id, coordenador_id, dia_semana, horario, endereco, ativa, created_at, updated_at`

// ------------------ CRUD + Outbox ------------------

func (r *CelulaRepo) Create(ctx context.Context, c *celulaDomain.Celula, evt sharedDomain.OutboxEvent) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, r.Q(
		`INSERT INTO celulas (`+celulaColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		c.ID, c.Nome, c.Descricao, db.NullUUID(c.LiderID), db.NullUUID(c.SupervisorID), db.NullUUID(c.CoordenadorID),
		c.DiaSemana, c.Horario, c.Endereco, c.Ativa, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert celula: %w", err)
	}

	if err := db.InsertOutboxTx(ctx, tx, r.Driver, evt); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *CelulaRepo) GetByID(ctx context.Context, id uuid.UUID) (*celulaDomain.Celula, error) {
	row := r.DB.QueryRowContext(ctx, r.Q(`SELECT `+celulaColumns+` FROM celulas WHERE id = ?`), id)

	c, err := scanCelula(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, celulaDomain.ErrCelulaNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get celula: %w", err)
	}
	return c, nil
}

func (r *CelulaRepo) Update(ctx context.Context, c *celulaDomain.Celula, evt sharedDomain.OutboxEvent) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, r.Q(
		`UPDATE celulas SET nome = ?, descricao = ?, lider_id = ?, supervisor_id = ?, coordenador_id = ?,
		 dia_semana = ?, horario = ?, endereco = ?, ativa = ?, updated_at = ?
		 WHERE id = ?`),
		c.Nome, c.Descricao, db.NullUUID(c.LiderID), db.NullUUID(c.SupervisorID), db.NullUUID(c.CoordenadorID),
		c.DiaSemana, c.Horario, c.Endereco, c.Ativa, c.UpdatedAt, c.ID,
	)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return celulaDomain.ErrCelulaNotFound
	}

	if err := db.InsertOutboxTx(ctx, tx, r.Driver, evt); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteByID borra la célula y sus filas dependientes.
func (r *CelulaRepo) DeleteByID(ctx context.Context, id uuid.UUID, evt sharedDomain.OutboxEvent) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, r.Q(`DELETE FROM celulas WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return celulaDomain.ErrCelulaNotFound
	}

	for _, stmt := range []string{
		`DELETE FROM celula_presencas WHERE relatorio_id IN (SELECT id FROM celula_relatorios WHERE celula_id = ?)`,
		`DELETE FROM celula_relatorios WHERE celula_id = ?`,
		`DELETE FROM celula_reunioes WHERE celula_id = ?`,
		`DELETE FROM celula_membros WHERE celula_id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, r.Q(stmt), id); err != nil {
			return fmt.Errorf("delete celula children: %w", err)
		}
	}

	if err := db.InsertOutboxTx(ctx, tx, r.Driver, evt); err != nil {
		return err
	}
	return tx.Commit()
}

// ------------------ Lectura ------------------

// List devuelve las células con total_membros (activos) y total_relatorios.
func (r *CelulaRepo) List(ctx context.Context, criteria sharedDomain.Criteria, p sharedQuery.PaginationParams) ([]*celulaDomain.CelulaResumo, int, error) {
	where, args := db.BuildWhere(r.Driver, criteria)

	total, err := db.Count(ctx, r.DB, r.Q(`SELECT COUNT(*) FROM celulas `+where), args...)
	if err != nil {
		return nil, 0, err
	}

	sort := p.SortFor(celulaDomain.SortableFields...)
	query := fmt.Sprintf(`SELECT %s,
		(SELECT COUNT(*) FROM celula_membros m WHERE m.celula_id = celulas.id AND m.ativo = TRUE) AS total_membros,
		(SELECT COUNT(*) FROM celula_relatorios rel WHERE rel.celula_id = celulas.id) AS total_relatorios
		FROM celulas %s %s LIMIT ? OFFSET ?`,
		celulaColumns, where, db.OrderBy(sort.Field, sort.Desc))

	rows, err := r.DB.QueryContext(ctx, r.Q(query), append(args, p.Limit, p.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("list celulas: %w", err)
	}
	defer rows.Close()

	var out []*celulaDomain.CelulaResumo
	for rows.Next() {
		var resumo celulaDomain.CelulaResumo
		c, err := scanCelula(rows, &resumo.TotalMembros, &resumo.TotalRelatorios)
		if err != nil {
			return nil, 0, err
		}
		resumo.Celula = *c
		out = append(out, &resumo)
	}
	return out, total, rows.Err()
}

func (r *CelulaRepo) GetDetalhe(ctx context.Context, id uuid.UUID) (*celulaDomain.CelulaDetalhe, error) {
	c, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	detalhe := &celulaDomain.CelulaDetalhe{Celula: *c}
	if detalhe.Lider, err = r.pessoaRef(ctx, c.LiderID); err != nil {
		return nil, err
	}
	if detalhe.Supervisor, err = r.pessoaRef(ctx, c.SupervisorID); err != nil {
		return nil, err
	}
	if detalhe.Coordenador, err = r.pessoaRef(ctx, c.CoordenadorID); err != nil {
		return nil, err
	}
	if detalhe.Membros, err = r.membros(ctx, id); err != nil {
		return nil, err
	}
	if detalhe.Relatorios, err = r.relatorios(ctx, id); err != nil {
		return nil, err
	}
	return detalhe, nil
}

func (r *CelulaRepo) pessoaRef(ctx context.Context, id *uuid.UUID) (*celulaDomain.PessoaRef, error) {
	if id == nil {
		return nil, nil
	}
	var (
		ref   celulaDomain.PessoaRef
		email sql.NullString
	)
	err := r.DB.QueryRowContext(ctx, r.Q(`SELECT id, nome, email FROM pessoas WHERE id = ?`), *id).
		Scan(&ref.ID, &ref.Nome, &email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get pessoa ref: %w", err)
	}
	ref.Email = email.String
	return &ref, nil
}

func (r *CelulaRepo) membros(ctx context.Context, celulaID uuid.UUID) ([]celulaDomain.Membro, error) {
	rows, err := r.DB.QueryContext(ctx, r.Q(
		`SELECT m.id, m.celula_id, m.pessoa_id, COALESCE(p.nome, ''), m.ativo, m.created_at
		 FROM celula_membros m
		 LEFT JOIN pessoas p ON p.id = m.pessoa_id
		 WHERE m.celula_id = ?
		 ORDER BY p.nome`), celulaID)
	if err != nil {
		return nil, fmt.Errorf("list membros: %w", err)
	}
	defer rows.Close()

	membros := []celulaDomain.Membro{}
	for rows.Next() {
		var m celulaDomain.Membro
		if err := rows.Scan(&m.ID, &m.CelulaID, &m.PessoaID, &m.Nome, &m.Ativo, &m.CreatedAt); err != nil {
			return nil, err
		}
		membros = append(membros, m)
	}
	return membros, rows.Err()
}

func (r *CelulaRepo) relatorios(ctx context.Context, celulaID uuid.UUID) ([]celulaDomain.Relatorio, error) {
	rows, err := r.DB.QueryContext(ctx, r.Q(
		`SELECT id, celula_id, data_reuniao, tema, visitantes, observacoes, created_at
		 FROM celula_relatorios
		 WHERE celula_id = ?
		 ORDER BY data_reuniao DESC`), celulaID)
	if err != nil {
		return nil, fmt.Errorf("list relatorios: %w", err)
	}
	defer rows.Close()

	relatorios := []celulaDomain.Relatorio{}
	for rows.Next() {
		var rel celulaDomain.Relatorio
		if err := rows.Scan(&rel.ID, &rel.CelulaID, &rel.DataReuniao, &rel.Tema, &rel.Visitantes, &rel.Observacoes, &rel.CreatedAt); err != nil {
			return nil, err
		}
		relatorios = append(relatorios, rel)
	}
	return relatorios, rows.Err()
}

// ------------------ Membros, reuniões y presença ------------------

// AddMembro reactiva una pertenencia inactiva; si ya está activa devuelve ErrMembroAlreadyExists.
func (r *CelulaRepo) AddMembro(ctx context.Context, m *celulaDomain.Membro, evt sharedDomain.OutboxEvent) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	var nome string
	err = tx.QueryRowContext(ctx, r.Q(`SELECT nome FROM pessoas WHERE id = ?`), m.PessoaID).Scan(&nome)
	if errors.Is(err, sql.ErrNoRows) {
		return celulaDomain.ErrPessoaNotFound
	}
	if err != nil {
		return fmt.Errorf("get pessoa: %w", err)
	}
	m.Nome = nome

	var (
		existingID uuid.UUID
		ativo      bool
	)
	err = tx.QueryRowContext(ctx, r.Q(`SELECT id, ativo FROM celula_membros WHERE celula_id = ? AND pessoa_id = ?`), m.CelulaID, m.PessoaID).
		Scan(&existingID, &ativo)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = tx.ExecContext(ctx, r.Q(
			`INSERT INTO celula_membros (id, celula_id, pessoa_id, ativo, created_at) VALUES (?, ?, ?, TRUE, ?)`),
			m.ID, m.CelulaID, m.PessoaID, m.CreatedAt,
		)
		if db.IsUniqueViolation(err) {
			return celulaDomain.ErrMembroAlreadyExists
		}
	case err != nil:
	case ativo:
		return celulaDomain.ErrMembroAlreadyExists
	default:
		m.ID = existingID
		_, err = tx.ExecContext(ctx, r.Q(`UPDATE celula_membros SET ativo = TRUE WHERE id = ?`), existingID)
	}
	if err != nil {
		return fmt.Errorf("add membro: %w", err)
	}

	if err := db.InsertOutboxTx(ctx, tx, r.Driver, evt); err != nil {
		return err
	}
	return tx.Commit()
}

// DeactivateMembro devuelve las células afectadas.
func (r *CelulaRepo) DeactivateMembro(ctx context.Context, pessoaID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.DB.QueryContext(ctx, r.Q(
		`UPDATE celula_membros SET ativo = FALSE WHERE pessoa_id = ? AND ativo = TRUE RETURNING celula_id`), pessoaID)
	if err != nil {
		return nil, fmt.Errorf("deactivate membro: %w", err)
	}
	defer rows.Close()

	var celulas []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		celulas = append(celulas, id)
	}
	return celulas, rows.Err()
}

func (r *CelulaRepo) CreateReuniao(ctx context.Context, reuniao *celulaDomain.Reuniao, evt sharedDomain.OutboxEvent) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, r.Q(
		`INSERT INTO celula_reunioes (id, celula_id, data_reuniao, tema, local, observacoes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`),
		reuniao.ID, reuniao.CelulaID, reuniao.DataReuniao, reuniao.Tema, reuniao.Local, reuniao.Observacoes, reuniao.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert reuniao: %w", err)
	}

	if err := db.InsertOutboxTx(ctx, tx, r.Driver, evt); err != nil {
		return err
	}
	return tx.Commit()
}

var presencaColumns = []string{"id", "relatorio_id", "pessoa_id", "presente", "created_at"}

// RegistrarPresenca inserta el relatorio y todas las presenças con un único INSERT multi-fila.
func (r *CelulaRepo) RegistrarPresenca(ctx context.Context, rel *celulaDomain.Relatorio, presencas []celulaDomain.Presenca, evt sharedDomain.OutboxEvent) error {
	return db.WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, r.Q(
			`INSERT INTO celula_relatorios (id, celula_id, data_reuniao, tema, visitantes, observacoes, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`),
			rel.ID, rel.CelulaID, rel.DataReuniao, rel.Tema, rel.Visitantes, rel.Observacoes, rel.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert relatorio: %w", err)
		}

		rows := make([][]interface{}, 0, len(presencas))
		for _, p := range presencas {
			rows = append(rows, []interface{}{p.ID, p.RelatorioID, p.PessoaID, p.Presente, p.CreatedAt})
		}
		if _, err := db.InsertBatch(ctx, tx, r.Driver, "celula_presencas", presencaColumns, rows); err != nil {
			return err
		}

		return db.InsertOutboxTx(ctx, tx, r.Driver, evt)
	})
}

type scanner interface {
	Scan(dest ...interface{}) error
}

// scanCelula lee las columnas de celulaColumns seguidas de extra.
func scanCelula(s scanner, extra ...interface{}) (*celulaDomain.Celula, error) {
	var (
		c                                    celulaDomain.Celula
		liderID, supervisorID, coordenadorID uuid.NullUUID
	)
	dest := []interface{}{
		&c.ID, &c.Nome, &c.Descricao, &liderID, &supervisorID, &coordenadorID,
		&c.DiaSemana, &c.Horario, &c.Endereco, &c.Ativa, &c.CreatedAt, &c.UpdatedAt,
	}
	if err := s.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	c.LiderID = db.UUIDPtr(liderID)
	c.SupervisorID = db.UUIDPtr(supervisorID)
	c.CoordenadorID = db.UUIDPtr(coordenadorID)
	return &c, nil
}
