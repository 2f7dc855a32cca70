package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaPublisher_KeysByRequest(t *testing.T) {
	w := &fakeWriter{}
	p := newKafkaPublisher(w, "")

	event := leave.TransitionEvent{
		RequestID:   "req-1",
		EmployeeID:  "emp-1",
		Action:      leave.ActionSubmit,
		FromStatus:  leave.StatusDraft,
		ToStatus:    leave.StatusPendingManager,
		PerformedBy: "emp-1",
		OccurredAt:  time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC),
	}
	require.NoError(t, p.PublishTransition(context.Background(), event))

	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, TransitionTopic, msg.Topic)
	assert.Equal(t, "req-1", string(msg.Key))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "SUBMIT", string(msg.Headers[0].Value))

	var decoded leave.TransitionEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, leave.StatusPendingManager, decoded.ToStatus)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublisher_WrapsWriterError(t *testing.T) {
	boom := errors.New("broker down")
	p := newKafkaPublisher(&fakeWriter{err: boom}, "custom.topic")

	err := p.PublishTransition(context.Background(), leave.TransitionEvent{RequestID: "req-1"})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "custom.topic", p.topic)
}
