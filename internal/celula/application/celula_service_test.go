package application

import (
	"context"
	"errors"
	"testing"
	"time"

	celulaDomain "github.com/davicafu/igrejalab/internal/celula/domain"
	"github.com/davicafu/igrejalab/internal/mocks"
	sharedDomain "github.com/davicafu/igrejalab/internal/shared/domain"
	infraCache "github.com/davicafu/igrejalab/internal/shared/infra/outbound/cache"
	sharedQuery "github.com/davicafu/igrejalab/internal/shared/infra/platform/query"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newService() (*CelulaService, *mocks.InMemoryCelulaRepo, *mocks.MockMemberNotifier, *mocks.DummyCache) {
	repo := mocks.NewInMemoryCelulaRepo()
	notifier := new(mocks.MockMemberNotifier)
	cache := mocks.NewDummyCache()
	return NewCelulaService(repo, notifier, cache, zap.NewNop()), repo, notifier, cache
}

func strPtr(s string) *string { return &s }

func seedCelula(t *testing.T, s *CelulaService, nome string) *celulaDomain.Celula {
	t.Helper()
	c, err := s.CreateCelula(context.Background(), CelulaInput{Nome: strPtr(nome)})
	require.NoError(t, err)
	return c
}

func TestCreateCelula(t *testing.T) {
	s, repo, _, _ := newService()
	lider := uuid.New()

	c, err := s.CreateCelula(context.Background(), CelulaInput{Nome: strPtr(" Centro "), LiderID: &lider, DiaSemana: strPtr("sexta")})

	require.NoError(t, err)
	assert.Equal(t, "Centro", c.Nome)
	assert.True(t, c.Ativa)
	assert.Equal(t, &lider, c.LiderID)
	require.Len(t, repo.Outbox, 1)
	assert.Equal(t, celulaDomain.CelulaCreated, repo.Outbox[0].EventType)

	_, err = s.CreateCelula(context.Background(), CelulaInput{})
	assert.ErrorIs(t, err, sharedDomain.ErrInvalidInput)
}

func TestGetCelula_CacheAside(t *testing.T) {
	s, repo, _, cache := newService()
	ctx := context.Background()
	c := seedCelula(t, s, "Centro")

	_, err := s.GetCelula(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, cache.Has(celulaDomain.CacheKeyByID(c.ID)))

	d, err := s.GetCelula(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Centro", d.Nome)
	assert.Equal(t, 1, repo.DetalheCalls)

	_, err = s.UpdateCelula(ctx, c.ID, CelulaInput{Horario: strPtr("20:00")})
	require.NoError(t, err)
	assert.False(t, cache.Has(celulaDomain.CacheKeyByID(c.ID)))
}

func TestGetCelula_WriteAfterReadIsVisible(t *testing.T) {
	repo := mocks.NewInMemoryCelulaRepo()
	cache := infraCache.NewInMemoryCache(time.Minute, time.Minute)
	defer cache.Stop()
	s := NewCelulaService(repo, nil, cache, zap.NewNop())
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		c := seedCelula(t, s, "Centro")

		before, err := s.GetCelula(ctx, c.ID)
		require.NoError(t, err)
		require.Empty(t, before.Relatorios)

		_, err = s.RegistrarPresenca(ctx, PresencaInput{CelulaID: c.ID, DataReuniao: time.Now().UTC()})
		require.NoError(t, err)

		after, err := s.GetCelula(ctx, c.ID)
		require.NoError(t, err)
		require.Len(t, after.Relatorios, 1, "iteración %d", i)
	}
}

func TestDeactivateMembro_InvalidatesCelulas(t *testing.T) {
	s, _, _, cache := newService()
	ctx := context.Background()
	c := seedCelula(t, s, "Centro")
	pessoa := uuid.New()
	_, err := s.AddMembro(ctx, c.ID, pessoa)
	require.NoError(t, err)

	_, err = s.GetCelula(ctx, c.ID)
	require.NoError(t, err)
	require.True(t, cache.Has(celulaDomain.CacheKeyByID(c.ID)))

	_, err = s.DeactivateMembro(ctx, pessoa)
	require.NoError(t, err)
	assert.False(t, cache.Has(celulaDomain.CacheKeyByID(c.ID)))

	d, err := s.GetCelula(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, d.Membros, 1)
	assert.False(t, d.Membros[0].Ativo)
}

func TestGetCelula_NotFound(t *testing.T) {
	s, _, _, _ := newService()

	_, err := s.GetCelula(context.Background(), uuid.New())
	assert.ErrorIs(t, err, celulaDomain.ErrCelulaNotFound)
}

func TestUpdateCelula_KeepsUnsetFields(t *testing.T) {
	s, _, _, _ := newService()
	c, err := s.CreateCelula(context.Background(), CelulaInput{Nome: strPtr("Centro"), Endereco: strPtr("Rua A")})
	require.NoError(t, err)

	updated, err := s.UpdateCelula(context.Background(), c.ID, CelulaInput{Ativa: new(bool)})
	require.NoError(t, err)
	assert.Equal(t, "Rua A", updated.Endereco)
	assert.False(t, updated.Ativa)

	_, err = s.UpdateCelula(context.Background(), c.ID, CelulaInput{Nome: strPtr("  ")})
	assert.ErrorIs(t, err, sharedDomain.ErrInvalidInput)
}

func TestDeleteCelula(t *testing.T) {
	s, repo, _, _ := newService()
	c := seedCelula(t, s, "Centro")

	require.NoError(t, s.DeleteCelula(context.Background(), c.ID))
	assert.Equal(t, celulaDomain.CelulaDeleted, repo.Outbox[len(repo.Outbox)-1].EventType)
	assert.ErrorIs(t, s.DeleteCelula(context.Background(), c.ID), sharedDomain.ErrNotFound)
}

func TestListCelulas(t *testing.T) {
	s, _, _, _ := newService()
	seedCelula(t, s, "Norte")
	seedCelula(t, s, "Sul")
	seedCelula(t, s, "Nordeste")

	page, err := s.ListCelulas(context.Background(), sharedQuery.PaginationParams{Page: 1, Limit: 1, Search: "nor"})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Pagination.Total)
	assert.Equal(t, 2, page.Pagination.TotalPages)
	assert.Len(t, page.Data, 1)
}

func TestAddMembro(t *testing.T) {
	s, _, _, _ := newService()
	ctx := context.Background()
	c := seedCelula(t, s, "Centro")
	pessoa := uuid.New()

	m, err := s.AddMembro(ctx, c.ID, pessoa)
	require.NoError(t, err)
	assert.True(t, m.Ativo)

	_, err = s.AddMembro(ctx, c.ID, pessoa)
	assert.ErrorIs(t, err, sharedDomain.ErrConflict)

	_, err = s.AddMembro(ctx, uuid.New(), pessoa)
	assert.ErrorIs(t, err, celulaDomain.ErrCelulaNotFound)

	celulas, err := s.DeactivateMembro(ctx, pessoa)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{c.ID}, celulas)
}

func TestAgendarReuniao_NotifiesMembers(t *testing.T) {
	s, repo, notifier, _ := newService()
	c := seedCelula(t, s, "Centro")
	data := time.Date(2025, 3, 7, 20, 0, 0, 0, time.UTC)

	notifier.On("NotifyMembers", mock.Anything, c.ID, notificacaoTitle, "Reunião em 07/03/2025 20:00 - Oração (Casa)", notificacaoTipo, mock.AnythingOfType("string")).
		Return(3, nil).Once()

	res, err := s.AgendarReuniao(context.Background(), AgendarReuniaoInput{CelulaID: c.ID, DataReuniao: data, Tema: "Oração", Local: "Casa"})

	require.NoError(t, err)
	assert.Equal(t, 3, res.MembrosNotificados)
	assert.Empty(t, res.ErroNotificacao)
	assert.Len(t, repo.Reunioes, 1)
	notifier.AssertExpectations(t)
}

func TestAgendarReuniao_NotificationFailureKeepsMeeting(t *testing.T) {
	s, repo, notifier, _ := newService()
	c := seedCelula(t, s, "Centro")

	notifier.On("NotifyMembers", mock.Anything, c.ID, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(0, errors.New("insert failed")).Once()

	res, err := s.AgendarReuniao(context.Background(), AgendarReuniaoInput{CelulaID: c.ID, DataReuniao: time.Now()})

	require.NoError(t, err)
	assert.Equal(t, "insert failed", res.ErroNotificacao)
	assert.Zero(t, res.MembrosNotificados)
	assert.Len(t, repo.Reunioes, 1)
}

func TestAgendarReuniao_Invalid(t *testing.T) {
	s, repo, notifier, _ := newService()
	c := seedCelula(t, s, "Centro")

	_, err := s.AgendarReuniao(context.Background(), AgendarReuniaoInput{CelulaID: c.ID})
	assert.ErrorIs(t, err, sharedDomain.ErrInvalidInput)

	_, err = s.AgendarReuniao(context.Background(), AgendarReuniaoInput{CelulaID: uuid.New(), DataReuniao: time.Now()})
	assert.ErrorIs(t, err, celulaDomain.ErrCelulaNotFound)

	assert.Empty(t, repo.Reunioes)
	notifier.AssertNotCalled(t, "NotifyMembers", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRegistrarPresenca(t *testing.T) {
	s, repo, _, _ := newService()
	c := seedCelula(t, s, "Centro")
	a, b, d := uuid.New(), uuid.New(), uuid.New()

	res, err := s.RegistrarPresenca(context.Background(), PresencaInput{
		CelulaID:         c.ID,
		DataReuniao:      time.Now(),
		Visitantes:       2,
		MembrosPresentes: []uuid.UUID{a, b, d},
	})

	require.NoError(t, err)
	assert.Equal(t, 2, res.Visitantes)
	assert.Len(t, res.Presencas, 3)
	assert.Len(t, repo.Relatorios, 1)
	assert.Len(t, repo.Presencas, 3)

	last := repo.Outbox[len(repo.Outbox)-1]
	assert.Equal(t, celulaDomain.PresencaRegistrada, last.EventType)
	assert.Equal(t, c.ID.String(), last.AggregateID)
}
