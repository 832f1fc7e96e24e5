package tracker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeartbeatDeliversTaggedTick(t *testing.T) {
	ticks := make(chan Tick, 2)
	hb := NewHeartbeat(10*time.Millisecond, func(tk Tick) { ticks <- tk })

	start := time.Now()
	hb.Schedule(7)

	select {
	case tk := <-ticks:
		assert.Equal(t, uint32(7), tk.Sequence)
		assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
	case <-time.After(2 * time.Second):
		t.Fatal("heartbeat never fired")
	}
}

func TestHeartbeatFiresOncePerSchedule(t *testing.T) {
	ticks := make(chan Tick, 8)
	hb := NewHeartbeat(5*time.Millisecond, func(tk Tick) { ticks <- tk })

	hb.Schedule(1)
	hb.Schedule(2)

	var got []uint32
	for len(got) < 2 {
		select {
		case tk := <-ticks:
			got = append(got, tk.Sequence)
		case <-time.After(2 * time.Second):
			t.Fatalf("only %d ticks fired", len(got))
		}
	}
	assert.ElementsMatch(t, []uint32{1, 2}, got)

	select {
	case tk := <-ticks:
		t.Fatalf("unexpected extra tick %d", tk.Sequence)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHeartbeatDelay(t *testing.T) {
	hb := NewHeartbeat(time.Minute, func(Tick) {})
	require.Equal(t, time.Minute, hb.Delay())
}
