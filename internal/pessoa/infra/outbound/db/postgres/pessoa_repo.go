package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	pessoaDomain "github.com/davicafu/igrejalab/internal/pessoa/domain"
	sharedDomain "github.com/davicafu/igrejalab/internal/shared/domain"
	"github.com/davicafu/igrejalab/internal/shared/infra/platform/db"
	sharedQuery "github.com/davicafu/igrejalab/internal/shared/infra/platform/query"
	"github.com/google/uuid"
)

// PessoaRepo implementa PessoaRepository sobre database/sql (pgx en producción, SQLite en local).
type PessoaRepo struct {
	db.Store
}

var _ pessoaDomain.PessoaRepository = (*PessoaRepo)(nil)

func NewPessoaRepo(conn *sql.DB, driver db.Driver) *PessoaRepo {
	return &PessoaRepo{Store: db.NewStore(conn, driver)}
}

const pessoaColumns = `id, nome, email, telefone, data_nascimento, status, created_at, updated_at`

func (r *PessoaRepo) Create(ctx context.Context, p *pessoaDomain.Pessoa, evt sharedDomain.OutboxEvent) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, r.Q(
		`INSERT INTO pessoas (`+pessoaColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		p.ID, p.Nome, db.NullString(p.Email), p.Telefone, db.NullTime(p.DataNascimento), string(p.Status), p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return pessoaDomain.ErrEmailAlreadyExists
		}
		return fmt.Errorf("insert pessoa: %w", err)
	}

	if err := db.InsertOutboxTx(ctx, tx, r.Driver, evt); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *PessoaRepo) GetByID(ctx context.Context, id uuid.UUID) (*pessoaDomain.Pessoa, error) {
	row := r.DB.QueryRowContext(ctx, r.Q(`SELECT `+pessoaColumns+` FROM pessoas WHERE id = ?`), id)

	p, err := scanPessoa(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pessoaDomain.ErrPessoaNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get pessoa: %w", err)
	}
	return p, nil
}

func (r *PessoaRepo) Update(ctx context.Context, p *pessoaDomain.Pessoa, evt sharedDomain.OutboxEvent) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, r.Q(
		`UPDATE pessoas SET nome = ?, email = ?, telefone = ?, data_nascimento = ?, status = ?, updated_at = ?
		 WHERE id = ?`),
		p.Nome, db.NullString(p.Email), p.Telefone, db.NullTime(p.DataNascimento), string(p.Status), p.UpdatedAt, p.ID,
	)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return pessoaDomain.ErrEmailAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return pessoaDomain.ErrPessoaNotFound
	}

	if err := db.InsertOutboxTx(ctx, tx, r.Driver, evt); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *PessoaRepo) DeleteByID(ctx context.Context, id uuid.UUID, evt sharedDomain.OutboxEvent) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, r.Q(`DELETE FROM pessoas WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return pessoaDomain.ErrPessoaNotFound
	}

	if err := db.InsertOutboxTx(ctx, tx, r.Driver, evt); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *PessoaRepo) List(ctx context.Context, criteria sharedDomain.Criteria, p sharedQuery.PaginationParams) ([]*pessoaDomain.Pessoa, int, error) {
	where, args := db.BuildWhere(r.Driver, criteria)

	total, err := db.Count(ctx, r.DB, r.Q(`SELECT COUNT(*) FROM pessoas `+where), args...)
	if err != nil {
		return nil, 0, err
	}

	sort := p.SortFor(pessoaDomain.SortableFields...)
	query := fmt.Sprintf(`SELECT %s FROM pessoas %s %s LIMIT ? OFFSET ?`,
		pessoaColumns, where, db.OrderBy(sort.Field, sort.Desc))

	rows, err := r.DB.QueryContext(ctx, r.Q(query), append(args, p.Limit, p.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("list pessoas: %w", err)
	}
	defer rows.Close()

	var pessoas []*pessoaDomain.Pessoa
	for rows.Next() {
		pessoa, err := scanPessoa(rows)
		if err != nil {
			return nil, 0, err
		}
		pessoas = append(pessoas, pessoa)
	}
	return pessoas, total, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanPessoa(s scanner) (*pessoaDomain.Pessoa, error) {
	var (
		p              pessoaDomain.Pessoa
		email          sql.NullString
		status         string
		dataNascimento sql.NullTime
	)
	if err := s.Scan(&p.ID, &p.Nome, &email, &p.Telefone, &dataNascimento, &status, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Email = email.String
	p.Status = pessoaDomain.Status(status)
	p.DataNascimento = db.TimePtr(dataNascimento)
	return &p, nil
}
