package mocks

import (
	"context"

	auditDomain "github.com/davicafu/igrejalab/internal/auditoria/domain"
	"github.com/stretchr/testify/mock"
)

type MockAuditStore struct {
	mock.Mock
}

func (m *MockAuditStore) Log(ctx context.Context, e auditDomain.AuditEntry) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockAuditStore) ListByRegistro(ctx context.Context, tabela, registroID string) ([]auditDomain.AuditEntry, error) {
	args := m.Called(ctx, tabela, registroID)
	entries, _ := args.Get(0).([]auditDomain.AuditEntry)
	return entries, args.Error(1)
}

var _ auditDomain.AuditStore = (*MockAuditStore)(nil)
