package workers

import (
	"chat-desk/contract"
	"chat-desk/domain"
	"chat-desk/domain/event"
	"chat-desk/mocks"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestEventFanoutWorker_Fanout(t *testing.T) {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	mockRegistry := mocks.NewMockIRegistry(ctrl)
	first := mocks.NewMockEventSink(ctrl)
	second := mocks.NewMockEventSink(ctrl)

	evt := event.MessageReceived{Message: domain.Message{ChatID: "chat-1"}}
	fanoutWorker := NewEventFanout(log, mockRegistry, nil, 10*time.Second)

	// Given two connections in the audience
	mockRegistry.EXPECT().SinksFor(event.Audience{ChatID: "chat-1"}).
		Return([]contract.EventSink{first, second}).Times(1)
	// Then both consume the event, one failure does not stop the other
	gomock.InOrder(
		first.EXPECT().Consume(gomock.Any(), evt).Return(errors.New("closed")),
		second.EXPECT().Consume(gomock.Any(), evt).Return(nil),
	)

	// When the event is handled by the worker
	fanoutWorker.Fanout(context.Background(), evt)
}

func TestEventFanoutWorker_SinkTimeout(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	mockRegistry := mocks.NewMockIRegistry(ctrl)
	slow := mocks.NewMockEventSink(ctrl)
	fast := mocks.NewMockEventSink(ctrl)

	sinkTimeout := 20 * time.Millisecond
	fanoutWorker := NewEventFanout(log, mockRegistry, nil, sinkTimeout)

	mockRegistry.EXPECT().SinksFor(gomock.Any()).
		Return([]contract.EventSink{slow, fast}).Times(1)
	slow.EXPECT().Consume(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, evt event.DomainEvent) error {
			<-ctx.Done()     // Waiting for timeout to trigger cancellation
			return ctx.Err() // Sending back "context deadline exceeded"
		}).Times(1)
	fast.EXPECT().Consume(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	start := time.Now()
	fanoutWorker.Fanout(context.Background(), event.TypingChanged{Target: "admin:1"})

	// The slow sink only cost its own timeout
	req.Less(time.Since(start), time.Second)
}

func TestEventFanoutWorker_Run_Stops(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	mockRegistry := mocks.NewMockIRegistry(ctrl)
	sink := mocks.NewMockEventSink(ctrl)

	events := make(chan event.DomainEvent, 1)
	fanoutWorker := NewEventFanout(log, mockRegistry, events, time.Second)

	consumed := make(chan struct{})
	mockRegistry.EXPECT().SinksFor(gomock.Any()).Return([]contract.EventSink{sink})
	sink.EXPECT().Consume(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, event.DomainEvent) error {
			close(consumed)
			return nil
		})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- fanoutWorker.Run(ctx) }()

	events <- event.TypingChanged{Target: "admin:1"}
	<-consumed
	cancel()

	select {
	case err := <-done:
		req.NoError(err)
	case <-time.After(time.Second):
		req.Fail("fanout did not stop")
	}
}
