package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/davicafu/igrejalab/internal/financeiro/application"
	finDomain "github.com/davicafu/igrejalab/internal/financeiro/domain"
	"github.com/davicafu/igrejalab/internal/mocks"
	sharedEvents "github.com/davicafu/igrejalab/internal/shared/domain/events"
)

func lancamentoEvent(t *testing.T, evt sharedEvents.LancamentoCriado) []byte {
	t.Helper()
	data, err := json.Marshal(evt)
	require.NoError(t, err)
	payload, err := json.Marshal(sharedEvents.IntegrationEvent{Type: sharedEvents.LancamentoCriadoEvent, Timestamp: time.Now(), Data: data})
	require.NoError(t, err)
	return payload
}

func TestLancamentoConsumer_LogsToAnalytics(t *testing.T) {
	analytics := new(mocks.MockLancamentoAnalytics)
	service := application.NewFinanceiroService(mocks.NewInMemoryLancamentoRepo(), analytics, nil, zap.NewNop())

	id := uuid.New()
	analytics.On("LogBatch", mock.Anything, mock.MatchedBy(func(ls []*finDomain.Lancamento) bool {
		return len(ls) == 1 && ls[0].ID == id && ls[0].Tipo == finDomain.TipoDespesa && ls[0].Valor.Equal(decimal.RequireFromString("89.90"))
	})).Return(nil).Once()

	NewLancamentoConsumer(service, zap.NewNop()).HandleMessage(context.Background(), id.String(), lancamentoEvent(t, sharedEvents.LancamentoCriado{
		ID:             id,
		Tipo:           "despesa",
		Categoria:      "Luz",
		Valor:          decimal.RequireFromString("89.90"),
		DataLancamento: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	}))

	analytics.AssertExpectations(t)
}

func TestLancamentoConsumer_AnalyticsFailureIsLogged(t *testing.T) {
	analytics := new(mocks.MockLancamentoAnalytics)
	service := application.NewFinanceiroService(mocks.NewInMemoryLancamentoRepo(), analytics, nil, zap.NewNop())
	analytics.On("LogBatch", mock.Anything, mock.Anything).Return(errors.New("clickhouse down"))

	core, logs := observer.New(zap.WarnLevel)
	NewLancamentoConsumer(service, zap.New(core)).HandleMessage(context.Background(), "", lancamentoEvent(t, sharedEvents.LancamentoCriado{ID: uuid.New(), Tipo: "receita"}))

	assert.Equal(t, 1, logs.FilterMessage("Failed to log lancamento to analytics").Len())
}

func TestLancamentoConsumer_IgnoresOtherEvents(t *testing.T) {
	analytics := new(mocks.MockLancamentoAnalytics)
	service := application.NewFinanceiroService(mocks.NewInMemoryLancamentoRepo(), analytics, nil, zap.NewNop())

	payload, err := json.Marshal(sharedEvents.IntegrationEvent{Type: "pessoa.created", Timestamp: time.Now(), Data: json.RawMessage(`{}`)})
	require.NoError(t, err)

	consumer := NewLancamentoConsumer(service, zap.NewNop())
	consumer.HandleMessage(context.Background(), "", payload)
	consumer.HandleMessage(context.Background(), "", []byte("not json"))

	analytics.AssertNotCalled(t, "LogBatch", mock.Anything, mock.Anything)
}
