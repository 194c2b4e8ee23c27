package registry

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChanges_DeliversEveryEventInOrder(t *testing.T) {
	c := NewChanges()
	c.Publish(Event{Kind: EventSubmitted, ID: 1})
	c.Publish(Event{Kind: EventNavigated, ID: 1})
	c.Publish(Event{Kind: EventClosed, ID: 1})

	assert.Equal(t, 3, c.Pending())

	ctx := context.Background()
	for _, want := range []EventKind{EventSubmitted, EventNavigated, EventClosed} {
		ev, err := c.Next(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, ev.Kind)
	}
	assert.Equal(t, 0, c.Pending())
}

func TestChanges_NextBlocksUntilPublish(t *testing.T) {
	c := NewChanges()
	got := make(chan Event, 1)

	go func() {
		ev, err := c.Next(context.Background())
		if err == nil {
			got <- ev
		}
	}()

	time.Sleep(10 * time.Millisecond)
	c.Publish(Event{Kind: EventExpanded})

	select {
	case ev := <-got:
		assert.Equal(t, EventExpanded, ev.Kind)
	case <-time.After(time.Second):
		t.Fatal("consumer was not woken")
	}
}

func TestChanges_ContextCancel(t *testing.T) {
	c := NewChanges()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := c.Next(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestChanges_CloseDrainsThenFails(t *testing.T) {
	c := NewChanges()
	c.Publish(Event{Kind: EventSubmitted, ID: 7})
	c.Close()
	c.Publish(Event{Kind: EventSubmitted, ID: 8})

	ev, err := c.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint32(7), ev.ID)

	_, err = c.Next(context.Background())
	assert.ErrorIs(t, err, ErrChangesClosed)
}

func TestChanges_ManyProducers(t *testing.T) {
	c := NewChanges()
	const producers, each = 8, 250

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < each; i++ {
				c.Publish(Event{Kind: EventNavigated})
			}
		}()
	}

	received := 0
	done := make(chan struct{})
	go func() {
		defer close(done)
		for received < producers*each {
			if _, err := c.Next(context.Background()); err != nil {
				return
			}
			received++
		}
	}()

	wg.Wait()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("consumer did not receive all events")
	}
	assert.Equal(t, producers*each, received)
}

func TestEventKindString(t *testing.T) {
	assert.Equal(t, "submitted", EventSubmitted.String())
	assert.Equal(t, "replaced", EventReplaced.String())
	assert.Equal(t, "closed", EventClosed.String())
	assert.Equal(t, "navigated", EventNavigated.String())
	assert.Equal(t, "expanded", EventExpanded.String())
	assert.Equal(t, "unknown", EventKind(42).String())
}

func TestLocatorString(t *testing.T) {
	assert.Equal(t, "id:3", ByID(3).String())
	assert.Equal(t, "id:3@7", ByRevision(3, 7).String())
	assert.Equal(t, "index:1", At(1).String())
	assert.Equal(t, "selected", Selected().String())
	assert.Equal(t, "none", Locator{}.String())
}
