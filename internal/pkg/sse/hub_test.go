package sse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishToManyDeliversOncePerChannel(t *testing.T) {
	hub := NewHub()

	hrCh, hrCleanup := hub.Subscribe("hr-1", RoleTopic("hr"))
	defer hrCleanup()
	empCh, empCleanup := hub.Subscribe("emp-1")
	defer empCleanup()

	assert.Equal(t, 2, hub.TotalSubscribers())
	assert.Equal(t, 1, hub.SubscriberCount(RoleTopic("hr")))

	n := hub.PublishToMany([]string{"hr-1", RoleTopic("hr"), "emp-1"}, Event{Event: "leave.transition", Data: "x"})
	assert.Equal(t, 2, n)

	require.Len(t, hrCh, 1)
	got := <-hrCh
	assert.Equal(t, "hr-1", got.Topic)
	assert.Equal(t, "leave.transition", got.Event)

	require.Len(t, empCh, 1)
}

func TestHub_CleanupRemovesEveryTopic(t *testing.T) {
	hub := NewHub()
	ch, cleanup := hub.Subscribe("mgr-1", RoleTopic("manager"))

	cleanup()
	cleanup()

	assert.Equal(t, 0, hub.TotalSubscribers())
	assert.Equal(t, 0, hub.SubscriberCount(RoleTopic("manager")))
	_, open := <-ch
	assert.False(t, open)

	hub.Publish("mgr-1", Event{Event: "ignored"})
}

func TestHub_SlowReaderIsSkipped(t *testing.T) {
	hub := NewHub()
	ch, cleanup := hub.Subscribe("emp-1")
	defer cleanup()

	for i := 0; i < hub.bufferSize+5; i++ {
		hub.Publish("emp-1", Event{Event: "tick"})
	}
	assert.Len(t, ch, hub.bufferSize)
}
