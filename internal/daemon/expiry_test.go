package daemon

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type firedIDs struct {
	mu  sync.Mutex
	ids []uint32
}

func (f *firedIDs) add(id uint32, _ uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ids = append(f.ids, id)
}

func (f *firedIDs) get() []uint32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]uint32(nil), f.ids...)
}

func TestScheduler_Fires(t *testing.T) {
	fired := &firedIDs{}
	s := NewScheduler(fired.add, nil)

	s.Schedule(3, 1, 10*time.Millisecond)
	assert.Equal(t, 1, s.Pending())

	assert.Eventually(t, func() bool { return len(fired.get()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []uint32{3}, fired.get())
	assert.Equal(t, 0, s.Pending())
}

func TestScheduler_PassesRevision(t *testing.T) {
	got := make(chan uint64, 1)
	s := NewScheduler(func(id uint32, rev uint64) { got <- rev }, nil)

	s.Schedule(4, 7, time.Hour)
	s.Schedule(4, 9, 5*time.Millisecond)

	select {
	case rev := <-got:
		assert.Equal(t, uint64(9), rev)
	case <-time.After(time.Second):
		t.Fatal("timer did not fire")
	}
}

func TestScheduler_Cancel(t *testing.T) {
	fired := &firedIDs{}
	s := NewScheduler(fired.add, nil)

	s.Schedule(1, 1, 20*time.Millisecond)
	assert.True(t, s.Cancel(1))
	assert.False(t, s.Cancel(1))

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, fired.get())
}

func TestScheduler_RescheduleReplacesTimer(t *testing.T) {
	fired := &firedIDs{}
	s := NewScheduler(fired.add, nil)

	s.Schedule(1, 1, 10*time.Millisecond)
	s.Schedule(1, 1, 80*time.Millisecond)
	assert.Equal(t, 1, s.Pending())

	time.Sleep(40 * time.Millisecond)
	assert.Empty(t, fired.get(), "first timer must not fire after reschedule")

	assert.Eventually(t, func() bool { return len(fired.get()) == 1 }, time.Second, 5*time.Millisecond)
}

func TestScheduler_StaleGenerationIgnored(t *testing.T) {
	fired := &firedIDs{}
	s := NewScheduler(fired.add, nil)

	s.Schedule(1, 1, time.Hour)
	s.fire(1, 0)

	assert.Empty(t, fired.get())
	assert.Equal(t, 1, s.Pending())
	s.Stop()
}

func TestScheduler_Stop(t *testing.T) {
	fired := &firedIDs{}
	s := NewScheduler(fired.add, nil)

	s.Schedule(1, 1, 10*time.Millisecond)
	s.Schedule(2, 1, 10*time.Millisecond)
	s.Stop()
	s.Schedule(3, 1, time.Millisecond)

	time.Sleep(40 * time.Millisecond)
	assert.Empty(t, fired.get())
	assert.Equal(t, 0, s.Pending())
}
