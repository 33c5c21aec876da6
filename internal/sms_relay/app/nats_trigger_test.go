package app

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, subject string, data []byte) error {
	return m.Called(ctx, subject, data).Error(0)
}

type MockSubscriber struct {
	mock.Mock
}

func (m *MockSubscriber) Subscribe(ctx context.Context, subject, queueGroup string, handler nats.MsgHandler) (*nats.Subscription, error) {
	args := m.Called(ctx, subject, queueGroup, handler)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*nats.Subscription), args.Error(1)
}

func TestNatsPassTrigger_Trigger(t *testing.T) {
	pub := new(MockPublisher)
	var published []byte
	pub.On("Publish", mock.Anything, "sms.buffer.enqueued", mock.AnythingOfType("[]uint8")).
		Run(func(args mock.Arguments) { published = args.Get(2).([]byte) }).
		Return(nil).Once()

	err := NewNatsPassTrigger(pub, "sms.buffer.enqueued", "sms_relay_service").Trigger(context.Background())
	require.NoError(t, err)
	pub.AssertExpectations(t)

	var ev TriggerEvent
	require.NoError(t, json.Unmarshal(published, &ev))
	assert.Equal(t, "sms_relay_service", ev.Source)
	assert.False(t, ev.SentAt.IsZero())
}

func TestNatsPassTrigger_PublishError(t *testing.T) {
	pub := new(MockPublisher)
	pub.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("nats: connection closed"))

	err := NewNatsPassTrigger(pub, "sms.buffer.enqueued", "test").Trigger(context.Background())
	assert.Error(t, err)
}

func TestTriggerHandler(t *testing.T) {
	trigger := new(MockPassTrigger)
	trigger.On("Trigger", mock.Anything).Return(nil).Twice()
	handler := TriggerHandler(trigger, discardLogger())

	handler(&nats.Msg{Subject: "sms.buffer.enqueued", Data: []byte(`{"source":"api"}`)})
	handler(&nats.Msg{Subject: "sms.buffer.enqueued", Data: []byte(`not json`)})

	trigger.AssertExpectations(t)
}

func TestStartTriggerConsumer(t *testing.T) {
	trigger := new(MockPassTrigger)

	sub := new(MockSubscriber)
	sub.On("Subscribe", mock.Anything, "sms.buffer.enqueued", "sms_buffer_workers", mock.Anything).
		Return(&nats.Subscription{Subject: "sms.buffer.enqueued"}, nil).Once()
	s, err := StartTriggerConsumer(context.Background(), sub, "sms.buffer.enqueued", "sms_buffer_workers", trigger, discardLogger())
	require.NoError(t, err)
	assert.Equal(t, "sms.buffer.enqueued", s.Subject)

	failing := new(MockSubscriber)
	failing.On("Subscribe", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("nats: bad subject"))
	_, err = StartTriggerConsumer(context.Background(), failing, "sms.buffer.enqueued", "", trigger, discardLogger())
	assert.Error(t, err)
}
