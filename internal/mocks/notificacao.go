package mocks

import (
	"context"

	notificacaoDomain "github.com/davicafu/igrejalab/internal/notificacao/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockNotificacaoRepository struct {
	mock.Mock
}

func (m *MockNotificacaoRepository) ListActiveMemberIDs(ctx context.Context, celulaID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, celulaID)
	ids, _ := args.Get(0).([]uuid.UUID)
	return ids, args.Error(1)
}

func (m *MockNotificacaoRepository) InsertBatch(ctx context.Context, ns []notificacaoDomain.Notificacao) (int, error) {
	args := m.Called(ctx, ns)
	return args.Int(0), args.Error(1)
}

var _ notificacaoDomain.NotificacaoRepository = (*MockNotificacaoRepository)(nil)
