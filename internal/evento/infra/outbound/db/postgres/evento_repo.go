package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	eventoDomain "github.com/davicafu/igrejalab/internal/evento/domain"
	sharedDomain "github.com/davicafu/igrejalab/internal/shared/domain"
	"github.com/davicafu/igrejalab/internal/shared/infra/platform/db"
	sharedQuery "github.com/davicafu/igrejalab/internal/shared/infra/platform/query"
	"github.com/google/uuid"
)

// EventoRepo implementa EventoRepository sobre database/sql.
type EventoRepo struct {
	db.Store
}

var _ eventoDomain.EventoRepository = (*EventoRepo)(nil)

func NewEventoRepo(conn *sql.DB, driver db.Driver) *EventoRepo {
	return &EventoRepo{Store: db.NewStore(conn, driver)}
}

const eventoColumns = `id, titulo, descricao, data_inicio, data_fim, local, capacidade, created_at, updated_at`

const totalInscritos = `(SELECT COUNT(*) FROM evento_inscricoes i WHERE i.evento_id = eventos.id) AS total_inscritos`

func (r *EventoRepo) Create(ctx context.Context, e *eventoDomain.Evento, evt sharedDomain.OutboxEvent) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, r.Q(
		`INSERT INTO eventos (`+eventoColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		e.ID, e.Titulo, e.Descricao, e.DataInicio, db.NullTime(e.DataFim), e.Local, db.NullInt(e.Capacidade), e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert evento: %w", err)
	}

	if err := db.InsertOutboxTx(ctx, tx, r.Driver, evt); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *EventoRepo) GetByID(ctx context.Context, id uuid.UUID) (*eventoDomain.EventoResumo, error) {
	row := r.DB.QueryRowContext(ctx, r.Q(`SELECT `+eventoColumns+`, `+totalInscritos+` FROM eventos WHERE id = ?`), id)

	e, err := scanEvento(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eventoDomain.ErrEventoNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get evento: %w", err)
	}
	return e, nil
}

// Update toma el mismo bloqueo que Inscrever antes de contar las inscrições.
func (r *EventoRepo) Update(ctx context.Context, e *eventoDomain.Evento, evt sharedDomain.OutboxEvent) error {
	return db.WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		if err := r.lockEvento(ctx, tx, e.ID); err != nil {
			return err
		}

		if e.Capacidade != nil {
			var inscritos int
			if err := tx.QueryRowContext(ctx, r.Q(`SELECT COUNT(*) FROM evento_inscricoes WHERE evento_id = ?`), e.ID).Scan(&inscritos); err != nil {
				return fmt.Errorf("count inscricoes: %w", err)
			}
			if *e.Capacidade < inscritos {
				return eventoDomain.ErrCapacidadeAbaixoInscritos
			}
		}

		_, err := tx.ExecContext(ctx, r.Q(
			`UPDATE eventos SET titulo = ?, descricao = ?, data_inicio = ?, data_fim = ?, local = ?, capacidade = ?, updated_at = ?
			 WHERE id = ?`),
			e.Titulo, e.Descricao, e.DataInicio, db.NullTime(e.DataFim), e.Local, db.NullInt(e.Capacidade), e.UpdatedAt, e.ID,
		)
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}

		return db.InsertOutboxTx(ctx, tx, r.Driver, evt)
	})
}

// lockEvento bloquea la fila en Postgres (FOR UPDATE); en SQLite la conexión única ya serializa.
func (r *EventoRepo) lockEvento(ctx context.Context, tx *sql.Tx, id uuid.UUID) error {
	lock := ""
	if r.Driver == db.DriverPostgres {
		lock = " FOR UPDATE"
	}

	var found uuid.UUID
	err := tx.QueryRowContext(ctx, r.Q(`SELECT id FROM eventos WHERE id = ?`+lock), id).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return eventoDomain.ErrEventoNotFound
	}
	if err != nil {
		return fmt.Errorf("lock evento: %w", err)
	}
	return nil
}

// DeleteByID borra también las inscrições del evento.
func (r *EventoRepo) DeleteByID(ctx context.Context, id uuid.UUID, evt sharedDomain.OutboxEvent) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, r.Q(`DELETE FROM evento_inscricoes WHERE evento_id = ?`), id); err != nil {
		return fmt.Errorf("delete inscricoes: %w", err)
	}
	res, err := tx.ExecContext(ctx, r.Q(`DELETE FROM eventos WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return eventoDomain.ErrEventoNotFound
	}

	if err := db.InsertOutboxTx(ctx, tx, r.Driver, evt); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *EventoRepo) List(ctx context.Context, criteria sharedDomain.Criteria, p sharedQuery.PaginationParams) ([]*eventoDomain.EventoResumo, int, error) {
	where, args := db.BuildWhere(r.Driver, criteria)

	total, err := db.Count(ctx, r.DB, r.Q(`SELECT COUNT(*) FROM eventos `+where), args...)
	if err != nil {
		return nil, 0, err
	}

	sort := p.SortFor(eventoDomain.SortableFields...)
	query := fmt.Sprintf(`SELECT %s, %s FROM eventos %s %s LIMIT ? OFFSET ?`,
		eventoColumns, totalInscritos, where, db.OrderBy(sort.Field, sort.Desc))

	rows, err := r.DB.QueryContext(ctx, r.Q(query), append(args, p.Limit, p.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("list eventos: %w", err)
	}
	defer rows.Close()

	var eventos []*eventoDomain.EventoResumo
	for rows.Next() {
		e, err := scanEvento(rows)
		if err != nil {
			return nil, 0, err
		}
		eventos = append(eventos, e)
	}
	return eventos, total, rows.Err()
}

// Inscrever bloquea la fila del evento con FOR UPDATE en Postgres; dos inscrições
// concurrentes no pueden superar la capacidade.
func (r *EventoRepo) Inscrever(ctx context.Context, i *eventoDomain.Inscricao, evt sharedDomain.OutboxEvent) error {
	return db.WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		lock := ""
		if r.Driver == db.DriverPostgres {
			lock = " FOR UPDATE"
		}

		var capacidade sql.NullInt64
		err := tx.QueryRowContext(ctx, r.Q(`SELECT capacidade FROM eventos WHERE id = ?`+lock), i.EventoID).Scan(&capacidade)
		if errors.Is(err, sql.ErrNoRows) {
			return eventoDomain.ErrEventoNotFound
		}
		if err != nil {
			return fmt.Errorf("get evento capacidade: %w", err)
		}

		var pessoas int
		if err := tx.QueryRowContext(ctx, r.Q(`SELECT COUNT(*) FROM pessoas WHERE id = ?`), i.PessoaID).Scan(&pessoas); err != nil {
			return fmt.Errorf("check pessoa: %w", err)
		}
		if pessoas == 0 {
			return eventoDomain.ErrPessoaNotFound
		}

		var existing int
		if err := tx.QueryRowContext(ctx, r.Q(`SELECT COUNT(*) FROM evento_inscricoes WHERE evento_id = ? AND pessoa_id = ?`),
			i.EventoID, i.PessoaID).Scan(&existing); err != nil {
			return fmt.Errorf("check inscricao: %w", err)
		}
		if existing > 0 {
			return eventoDomain.ErrJaInscrito
		}

		if capacidade.Valid {
			var inscritos int64
			if err := tx.QueryRowContext(ctx, r.Q(`SELECT COUNT(*) FROM evento_inscricoes WHERE evento_id = ?`), i.EventoID).Scan(&inscritos); err != nil {
				return fmt.Errorf("count inscricoes: %w", err)
			}
			if inscritos >= capacidade.Int64 {
				return eventoDomain.ErrEventoLotado
			}
		}

		_, err = tx.ExecContext(ctx, r.Q(`INSERT INTO evento_inscricoes (id, evento_id, pessoa_id, created_at) VALUES (?, ?, ?, ?)`),
			i.ID, i.EventoID, i.PessoaID, i.CreatedAt)
		if err != nil {
			if db.IsUniqueViolation(err) {
				return eventoDomain.ErrJaInscrito
			}
			return fmt.Errorf("insert inscricao: %w", err)
		}

		return db.InsertOutboxTx(ctx, tx, r.Driver, evt)
	})
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEvento(s scanner) (*eventoDomain.EventoResumo, error) {
	var (
		e          eventoDomain.EventoResumo
		dataFim    sql.NullTime
		capacidade sql.NullInt64
	)
	if err := s.Scan(&e.ID, &e.Titulo, &e.Descricao, &e.DataInicio, &dataFim, &e.Local, &capacidade,
		&e.CreatedAt, &e.UpdatedAt, &e.TotalInscritos); err != nil {
		return nil, err
	}
	e.DataFim = db.TimePtr(dataFim)
	e.Capacidade = db.IntPtr(capacidade)
	return &e, nil
}
