package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	pessoaDomain "github.com/davicafu/igrejalab/internal/pessoa/domain"
	sharedDomain "github.com/davicafu/igrejalab/internal/shared/domain"
	"github.com/davicafu/igrejalab/internal/shared/infra/platform/db/dbtest"
	sharedQuery "github.com/davicafu/igrejalab/internal/shared/infra/platform/query"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepo(t *testing.T) (*PessoaRepo, func(table string) int) {
	store := dbtest.Open(t)
	return NewPessoaRepo(store.DB, store.Driver), func(table string) int { return dbtest.CountRows(t, store, table) }
}

func createPessoa(t *testing.T, repo *PessoaRepo, nome, email string) *pessoaDomain.Pessoa {
	t.Helper()
	p, err := pessoaDomain.NewPessoa(nome, email, "", nil, pessoaDomain.StatusAtivo)
	require.NoError(t, err)
	evt := sharedDomain.NewOutboxEvent(pessoaDomain.AggregateType, p.ID.String(), pessoaDomain.PessoaCreated, p)
	require.NoError(t, repo.Create(context.Background(), p, evt))
	return p
}

func TestPessoaRepo_CreateAndGet(t *testing.T) {
	repo, count := newRepo(t)
	ctx := context.Background()

	nasc := time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC)
	p, err := pessoaDomain.NewPessoa("Ana Souza", "ana@igreja.org", "11 9999", &nasc, pessoaDomain.StatusVisitante)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, p, sharedDomain.NewOutboxEvent("pessoa", p.ID.String(), pessoaDomain.PessoaCreated, p)))

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana Souza", got.Nome)
	assert.Equal(t, "ana@igreja.org", got.Email)
	assert.Equal(t, pessoaDomain.StatusVisitante, got.Status)
	require.NotNil(t, got.DataNascimento)
	assert.True(t, nasc.Equal(*got.DataNascimento))
	assert.Equal(t, 1, count("outbox"))
}

func TestPessoaRepo_DuplicateEmail(t *testing.T) {
	repo, count := newRepo(t)
	createPessoa(t, repo, "Ana", "ana@igreja.org")

	p, _ := pessoaDomain.NewPessoa("Outra Ana", "ana@igreja.org", "", nil, "")
	err := repo.Create(context.Background(), p, sharedDomain.NewOutboxEvent("pessoa", p.ID.String(), pessoaDomain.PessoaCreated, p))

	assert.ErrorIs(t, err, pessoaDomain.ErrEmailAlreadyExists)
	assert.ErrorIs(t, err, sharedDomain.ErrConflict)
	assert.Equal(t, 1, count("outbox"), "rollback must discard the outbox row")
}

func TestPessoaRepo_UpdateDelete(t *testing.T) {
	repo, count := newRepo(t)
	ctx := context.Background()
	p := createPessoa(t, repo, "Ana", "")

	p.Nome = "Ana Maria"
	p.Status = pessoaDomain.StatusInativo
	require.NoError(t, repo.Update(ctx, p, sharedDomain.NewOutboxEvent("pessoa", p.ID.String(), pessoaDomain.PessoaUpdated, p)))

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana Maria", got.Nome)
	assert.Equal(t, pessoaDomain.StatusInativo, got.Status)
	assert.Empty(t, got.Email)

	require.NoError(t, repo.DeleteByID(ctx, p.ID, sharedDomain.NewOutboxEvent("pessoa", p.ID.String(), pessoaDomain.PessoaDeleted, nil)))
	_, err = repo.GetByID(ctx, p.ID)
	assert.ErrorIs(t, err, pessoaDomain.ErrPessoaNotFound)
	assert.Equal(t, 3, count("outbox"))

	err = repo.DeleteByID(ctx, uuid.New(), sharedDomain.NewOutboxEvent("pessoa", "x", pessoaDomain.PessoaDeleted, nil))
	assert.ErrorIs(t, err, pessoaDomain.ErrPessoaNotFound)
	assert.Equal(t, 3, count("outbox"))
}

func TestPessoaRepo_ListSearchAndPagination(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	for i := 1; i <= 12; i++ {
		createPessoa(t, repo, fmt.Sprintf("Membro %02d", i), fmt.Sprintf("m%02d@igreja.org", i))
	}
	createPessoa(t, repo, "Joana Dark", "joana@igreja.org")

	p := sharedQuery.PaginationParams{Page: 2, Limit: 5, SortBy: "nome", SortOrder: sharedQuery.SortAsc}
	criteria := sharedDomain.And(sharedDomain.SearchCriteria{Fields: pessoaDomain.SearchFields, Term: "MEMBRO"})

	pessoas, total, err := repo.List(ctx, criteria, p)
	require.NoError(t, err)
	assert.Equal(t, 12, total)
	require.Len(t, pessoas, 5)
	assert.Equal(t, "Membro 06", pessoas[0].Nome)
	assert.Equal(t, "Membro 10", pessoas[4].Nome)

	pessoas, total, err = repo.List(ctx, sharedDomain.And(sharedDomain.SearchCriteria{Fields: pessoaDomain.SearchFields, Term: "joana@"}), p)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Empty(t, pessoas, "page 2 of a single result is empty")
}

func TestPessoaRepo_ListStatusFilterAndUnknownSort(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	createPessoa(t, repo, "Ativa", "")
	inativa := createPessoa(t, repo, "Inativa", "")
	inativa.Status = pessoaDomain.StatusInativo
	require.NoError(t, repo.Update(ctx, inativa, sharedDomain.NewOutboxEvent("pessoa", inativa.ID.String(), pessoaDomain.PessoaUpdated, inativa)))

	p := sharedQuery.PaginationParams{Page: 1, Limit: 20, SortBy: "nome; DROP TABLE pessoas", SortOrder: sharedQuery.SortDesc}
	pessoas, total, err := repo.List(ctx, sharedDomain.And(sharedDomain.EqCriteria{Field: "status", Value: "inativo"}), p)

	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, pessoas, 1)
	assert.Equal(t, "Inativa", pessoas[0].Nome)
}
