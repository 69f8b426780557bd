package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	celulaDomain "github.com/davicafu/igrejalab/internal/celula/domain"
	sharedDomain "github.com/davicafu/igrejalab/internal/shared/domain"
	"github.com/davicafu/igrejalab/internal/shared/infra/platform/db"
	"github.com/davicafu/igrejalab/internal/shared/infra/platform/db/dbtest"
	sharedQuery "github.com/davicafu/igrejalab/internal/shared/infra/platform/query"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepo(t *testing.T) (*CelulaRepo, db.Store) {
	store := dbtest.Open(t)
	return NewCelulaRepo(store.DB, store.Driver), store
}

func evt(id uuid.UUID, eventType string) sharedDomain.OutboxEvent {
	return sharedDomain.NewOutboxEvent(celulaDomain.AggregateType, id.String(), eventType, map[string]string{"id": id.String()})
}

func createCelula(t *testing.T, repo *CelulaRepo, nome string, createdAt time.Time) *celulaDomain.Celula {
	t.Helper()
	c, err := celulaDomain.NewCelula(nome, "")
	require.NoError(t, err)
	c.CreatedAt, c.UpdatedAt = createdAt, createdAt
	require.NoError(t, repo.Create(context.Background(), c, evt(c.ID, celulaDomain.CelulaCreated)))
	return c
}

func insertPessoa(t *testing.T, store db.Store, nome string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	now := time.Now().UTC()
	_, err := store.DB.Exec(store.Q(`INSERT INTO pessoas (id, nome, status, created_at, updated_at) VALUES (?, ?, 'ativo', ?, ?)`), id, nome, now, now)
	require.NoError(t, err)
	return id
}

func TestCelulaRepo_CreateUpdateDelete(t *testing.T) {
	repo, store := newRepo(t)
	ctx := context.Background()

	c := createCelula(t, repo, "Célula Centro", time.Now().UTC())
	lider := insertPessoa(t, store, "Pedro")

	c.LiderID = &lider
	c.DiaSemana = "quarta"
	require.NoError(t, repo.Update(ctx, c, evt(c.ID, celulaDomain.CelulaUpdated)))

	got, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "quarta", got.DiaSemana)
	require.NotNil(t, got.LiderID)
	assert.Equal(t, lider, *got.LiderID)
	assert.Nil(t, got.SupervisorID)

	require.NoError(t, repo.DeleteByID(ctx, c.ID, evt(c.ID, celulaDomain.CelulaDeleted)))
	_, err = repo.GetByID(ctx, c.ID)
	assert.ErrorIs(t, err, celulaDomain.ErrCelulaNotFound)

	err = repo.DeleteByID(ctx, c.ID, evt(c.ID, celulaDomain.CelulaDeleted))
	assert.ErrorIs(t, err, sharedDomain.ErrNotFound)
	assert.Equal(t, 3, dbtest.CountRows(t, store, "outbox"))
}

func TestCelulaRepo_ListPagination(t *testing.T) {
	repo, _ := newRepo(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 1; i <= 25; i++ {
		createCelula(t, repo, fmt.Sprintf("Célula %02d", i), base.Add(time.Duration(i)*time.Hour))
	}

	p := sharedQuery.PaginationParams{Page: 2, Limit: 10, SortBy: "nome", SortOrder: sharedQuery.SortAsc}
	got, total, err := repo.List(context.Background(), nil, p)
	require.NoError(t, err)

	assert.Equal(t, 25, total)
	require.Len(t, got, 10)
	assert.Equal(t, "Célula 11", got[0].Nome)
	assert.Equal(t, "Célula 20", got[9].Nome)

	page := sharedQuery.NewPage(got, p, total)
	assert.Equal(t, 3, page.Pagination.TotalPages)
}

func TestCelulaRepo_ListSearchAndCounts(t *testing.T) {
	repo, store := newRepo(t)
	ctx := context.Background()

	norte := createCelula(t, repo, "Norte", time.Now().UTC())
	createCelula(t, repo, "Sul", time.Now().UTC())

	ana := insertPessoa(t, store, "Ana")
	bia := insertPessoa(t, store, "Bia")
	require.NoError(t, repo.AddMembro(ctx, celulaDomain.NewMembro(norte.ID, ana), evt(norte.ID, celulaDomain.MembroAdicionado)))
	require.NoError(t, repo.AddMembro(ctx, celulaDomain.NewMembro(norte.ID, bia), evt(norte.ID, celulaDomain.MembroAdicionado)))
	_, err := repo.DeactivateMembro(ctx, bia)
	require.NoError(t, err)

	rel, presencas, err := celulaDomain.NewRelatorioPresenca(norte.ID, time.Now(), "", 0, "", []uuid.UUID{ana})
	require.NoError(t, err)
	require.NoError(t, repo.RegistrarPresenca(ctx, rel, presencas, evt(norte.ID, celulaDomain.PresencaRegistrada)))

	criteria := sharedDomain.And(sharedDomain.SearchCriteria{Fields: celulaDomain.SearchFields, Term: "NOR"})
	got, total, err := repo.List(ctx, criteria, sharedQuery.PaginationParams{Page: 1, Limit: 20})
	require.NoError(t, err)

	assert.Equal(t, 1, total)
	require.Len(t, got, 1)
	assert.Equal(t, "Norte", got[0].Nome)
	assert.Equal(t, 1, got[0].TotalMembros, "inactive members are not counted")
	assert.Equal(t, 1, got[0].TotalRelatorios)
}

func TestCelulaRepo_GetDetalhe(t *testing.T) {
	repo, store := newRepo(t)
	ctx := context.Background()

	c := createCelula(t, repo, "Centro", time.Now().UTC())
	lider := insertPessoa(t, store, "Pedro")
	membro := insertPessoa(t, store, "Ana")
	c.LiderID = &lider
	require.NoError(t, repo.Update(ctx, c, evt(c.ID, celulaDomain.CelulaUpdated)))
	require.NoError(t, repo.AddMembro(ctx, celulaDomain.NewMembro(c.ID, membro), evt(c.ID, celulaDomain.MembroAdicionado)))

	older, p1, _ := celulaDomain.NewRelatorioPresenca(c.ID, time.Now().Add(-48*time.Hour), "antigo", 0, "", nil)
	newer, p2, _ := celulaDomain.NewRelatorioPresenca(c.ID, time.Now(), "novo", 2, "", []uuid.UUID{membro})
	require.NoError(t, repo.RegistrarPresenca(ctx, older, p1, evt(c.ID, celulaDomain.PresencaRegistrada)))
	require.NoError(t, repo.RegistrarPresenca(ctx, newer, p2, evt(c.ID, celulaDomain.PresencaRegistrada)))

	d, err := repo.GetDetalhe(ctx, c.ID)
	require.NoError(t, err)

	require.NotNil(t, d.Lider)
	assert.Equal(t, "Pedro", d.Lider.Nome)
	assert.Nil(t, d.Supervisor)
	assert.Nil(t, d.Coordenador)
	require.Len(t, d.Membros, 1)
	assert.Equal(t, "Ana", d.Membros[0].Nome)
	require.Len(t, d.Relatorios, 2)
	assert.Equal(t, "novo", d.Relatorios[0].Tema)

	_, err = repo.GetDetalhe(ctx, uuid.New())
	assert.ErrorIs(t, err, celulaDomain.ErrCelulaNotFound)
}

func TestCelulaRepo_AddMembro(t *testing.T) {
	repo, store := newRepo(t)
	ctx := context.Background()
	c := createCelula(t, repo, "Centro", time.Now().UTC())
	ana := insertPessoa(t, store, "Ana")

	m := celulaDomain.NewMembro(c.ID, ana)
	require.NoError(t, repo.AddMembro(ctx, m, evt(c.ID, celulaDomain.MembroAdicionado)))
	assert.Equal(t, "Ana", m.Nome)

	err := repo.AddMembro(ctx, celulaDomain.NewMembro(c.ID, ana), evt(c.ID, celulaDomain.MembroAdicionado))
	assert.ErrorIs(t, err, celulaDomain.ErrMembroAlreadyExists)

	err = repo.AddMembro(ctx, celulaDomain.NewMembro(c.ID, uuid.New()), evt(c.ID, celulaDomain.MembroAdicionado))
	assert.ErrorIs(t, err, celulaDomain.ErrPessoaNotFound)

	celulas, err := repo.DeactivateMembro(ctx, ana)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{c.ID}, celulas)

	// volver a añadir reactiva la misma fila
	again := celulaDomain.NewMembro(c.ID, ana)
	require.NoError(t, repo.AddMembro(ctx, again, evt(c.ID, celulaDomain.MembroAdicionado)))
	assert.Equal(t, m.ID, again.ID)
	assert.Equal(t, 1, dbtest.CountRows(t, store, "celula_membros"))
}

func TestCelulaRepo_RegistrarPresenca(t *testing.T) {
	repo, store := newRepo(t)
	ctx := context.Background()
	c := createCelula(t, repo, "Centro", time.Now().UTC())

	membros := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	rel, presencas, err := celulaDomain.NewRelatorioPresenca(c.ID, time.Now(), "Fé", 1, "", membros)
	require.NoError(t, err)
	require.NoError(t, repo.RegistrarPresenca(ctx, rel, presencas, evt(c.ID, celulaDomain.PresencaRegistrada)))

	assert.Equal(t, 1, dbtest.CountRows(t, store, "celula_relatorios"))
	assert.Equal(t, 3, dbtest.CountRows(t, store, "celula_presencas"))
	assert.Equal(t, 2, dbtest.CountRows(t, store, "outbox"))
}

func TestCelulaRepo_RegistrarPresenca_RollsBack(t *testing.T) {
	repo, store := newRepo(t)
	ctx := context.Background()
	c := createCelula(t, repo, "Centro", time.Now().UTC())

	rel, presencas, err := celulaDomain.NewRelatorioPresenca(c.ID, time.Now(), "", 0, "", []uuid.UUID{uuid.New(), uuid.New()})
	require.NoError(t, err)
	presencas[1].ID = presencas[0].ID // PK duplicada: el batch falla

	err = repo.RegistrarPresenca(ctx, rel, presencas, evt(c.ID, celulaDomain.PresencaRegistrada))
	require.Error(t, err)
	assert.Equal(t, 0, dbtest.CountRows(t, store, "celula_relatorios"))
	assert.Equal(t, 0, dbtest.CountRows(t, store, "celula_presencas"))
}

func TestCelulaRepo_CreateReuniao(t *testing.T) {
	repo, store := newRepo(t)
	c := createCelula(t, repo, "Centro", time.Now().UTC())

	r, err := celulaDomain.NewReuniao(c.ID, time.Now().Add(24*time.Hour), "Oração", "Casa do Pedro", "")
	require.NoError(t, err)
	require.NoError(t, repo.CreateReuniao(context.Background(), r, evt(c.ID, celulaDomain.ReuniaoAgendada)))
	assert.Equal(t, 1, dbtest.CountRows(t, store, "celula_reunioes"))
}
