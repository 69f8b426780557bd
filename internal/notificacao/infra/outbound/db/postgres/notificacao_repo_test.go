package postgres

import (
	"context"
	"testing"
	"time"

	notificacaoDomain "github.com/davicafu/igrejalab/internal/notificacao/domain"
	"github.com/davicafu/igrejalab/internal/shared/infra/platform/db/dbtest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificacaoRepo_ActiveMembersAndBatch(t *testing.T) {
	store := dbtest.Open(t)
	repo := NewNotificacaoRepo(store.DB, store.Driver)
	ctx := context.Background()

	celula := uuid.New()
	ativo1, ativo2, inativo := uuid.New(), uuid.New(), uuid.New()
	now := time.Now().UTC()
	for i, m := range []struct {
		pessoa uuid.UUID
		ativo  bool
	}{{ativo1, true}, {ativo2, true}, {inativo, false}} {
		_, err := store.DB.Exec(store.Q(`INSERT INTO celula_membros (id, celula_id, pessoa_id, ativo, created_at) VALUES (?, ?, ?, ?, ?)`),
			uuid.New(), celula, m.pessoa, m.ativo, now.Add(time.Duration(i)*time.Second))
		require.NoError(t, err)
	}

	ids, err := repo.ListActiveMemberIDs(ctx, celula)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{ativo1, ativo2}, ids)

	var ns []notificacaoDomain.Notificacao
	for _, id := range ids {
		n, err := notificacaoDomain.NewNotificacao(id, "Nova reunião", "", "reuniao", "", now)
		require.NoError(t, err)
		ns = append(ns, n)
	}
	inserted, err := repo.InsertBatch(ctx, ns)
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)
	assert.Equal(t, 2, dbtest.CountRows(t, store, "notificacoes"))
}
