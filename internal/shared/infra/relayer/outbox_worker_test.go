package relayer

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"

	sharedDomain "github.com/davicafu/igrejalab/internal/shared/domain"
	sharedDomainEvents "github.com/davicafu/igrejalab/internal/shared/domain/events"
	"github.com/davicafu/igrejalab/internal/mocks"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

type celulaCreated struct {
	ID   uuid.UUID `json:"id"`
	Nome string    `json:"nome"`
}

const (
	testEventType = "celula.created"
	testTopic     = "celula-events"
)

func testRegistry() map[string]sharedDomainEvents.EventMetadata {
	return map[string]sharedDomainEvents.EventMetadata{
		testEventType: {Type: reflect.TypeOf(celulaCreated{}), Topic: testTopic},
	}
}

func TestOutboxWorker_ProcessBatch_Success(t *testing.T) {
	repo := new(mocks.MockOutboxRepository)
	publisher := new(mocks.MockPublisher)

	celulaID := uuid.New()
	testEvent := sharedDomain.NewOutboxEvent("celula", celulaID.String(), testEventType,
		map[string]interface{}{"id": celulaID.String(), "nome": "Célula Centro"})

	repo.On("FetchPendingOutbox", mock.Anything, 10).Return([]sharedDomain.OutboxEvent{testEvent}, nil).Once()
	publisher.On("Publish", mock.Anything, testTopic, mock.MatchedBy(func(e sharedDomainEvents.IntegrationEvent) bool {
		var payload celulaCreated
		if err := json.Unmarshal(e.Data, &payload); err != nil {
			return false
		}
		return e.Type == testEventType && e.Key == celulaID.String() && payload.Nome == "Célula Centro"
	})).Return(nil).Once()
	repo.On("MarkOutboxProcessed", mock.Anything, testEvent.ID).Return(nil).Once()

	worker := NewOutboxWorker(repo, publisher, testRegistry(), time.Second, 10, zap.NewNop())

	worker.ProcessBatch(context.Background())

	repo.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestOutboxWorker_ProcessBatch_PublisherFails(t *testing.T) {
	repo := new(mocks.MockOutboxRepository)
	publisher := new(mocks.MockPublisher)

	testEvent := sharedDomain.NewOutboxEvent("celula", uuid.NewString(), testEventType, map[string]interface{}{})

	repo.On("FetchPendingOutbox", mock.Anything, 10).Return([]sharedDomain.OutboxEvent{testEvent}, nil).Once()
	publisher.On("Publish", mock.Anything, testTopic, mock.Anything).Return(errors.New("kafka is down")).Once()

	worker := NewOutboxWorker(repo, publisher, testRegistry(), time.Second, 10, zap.NewNop())

	worker.ProcessBatch(context.Background())

	publisher.AssertExpectations(t)
	repo.AssertNotCalled(t, "MarkOutboxProcessed", mock.Anything, mock.Anything)
}

func TestOutboxWorker_ProcessBatch_UnknownEventType(t *testing.T) {
	repo := new(mocks.MockOutboxRepository)
	publisher := new(mocks.MockPublisher)

	testEvent := sharedDomain.NewOutboxEvent("x", "1", "unregistered.event", map[string]interface{}{})

	repo.On("FetchPendingOutbox", mock.Anything, 10).Return([]sharedDomain.OutboxEvent{testEvent}, nil).Once()

	worker := NewOutboxWorker(repo, publisher, map[string]sharedDomainEvents.EventMetadata{}, time.Second, 10, zap.NewNop())

	worker.ProcessBatch(context.Background())

	repo.AssertExpectations(t)
	publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "MarkOutboxProcessed", mock.Anything, mock.Anything)
}

func TestOutboxWorker_FetchError(t *testing.T) {
	repo := new(mocks.MockOutboxRepository)
	publisher := new(mocks.MockPublisher)

	repo.On("FetchPendingOutbox", mock.Anything, 5).Return([]sharedDomain.OutboxEvent(nil), errors.New("db down")).Once()

	worker := NewOutboxWorker(repo, publisher, testRegistry(), time.Second, 5, zap.NewNop())
	worker.ProcessBatch(context.Background())

	publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestOutboxWorker_StartStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	repo := new(mocks.MockOutboxRepository)
	publisher := new(mocks.MockPublisher)
	polled := make(chan struct{}, 1)
	repo.On("FetchPendingOutbox", mock.Anything, 10).Return([]sharedDomain.OutboxEvent{}, nil).
		Run(func(mock.Arguments) {
			select {
			case polled <- struct{}{}:
			default:
			}
		})

	worker := NewOutboxWorker(repo, publisher, testRegistry(), 5*time.Millisecond, 10, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		worker.Start(ctx)
		close(done)
	}()

	select {
	case <-polled:
	case <-time.After(time.Second):
		t.Fatal("worker did not poll")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
