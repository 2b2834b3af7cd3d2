package mqtt

import (
	"encoding/json"
	"testing"
	"time"

	"gotest.tools/assert"

	"github.com/sweeney/oledclock/internal/app"
)

// eventMsg buffers a formatted device event stamped n seconds past 09:00.
func eventMsg(t *testing.T, n int) bufferedMsg {
	t.Helper()
	payload, err := FormatPayload(app.Event{
		Timestamp: time.Date(2026, 10, 16, 9, 0, n, 0, time.UTC),
		Type:      app.EventModeChanged,
	})
	assert.NilError(t, err)
	return bufferedMsg{topic: Topic, payload: payload, qos: 1}
}

func seconds(t *testing.T, msgs []bufferedMsg) []int {
	t.Helper()
	out := make([]int, len(msgs))
	for i, m := range msgs {
		var p Payload
		assert.NilError(t, json.Unmarshal(m.payload, &p))
		ts, err := time.Parse(time.RFC3339, p.Clock.Timestamp)
		assert.NilError(t, err)
		out[i] = ts.Second()
	}
	return out
}

func TestRingBuffer(t *testing.T) {
	tests := []struct {
		name     string
		capacity int
		pushes   int
		want     []int
		dropped  int
	}{
		{name: "empty", capacity: 4, pushes: 0, want: nil},
		{name: "partial", capacity: 4, pushes: 3, want: []int{0, 1, 2}},
		{name: "full", capacity: 4, pushes: 4, want: []int{0, 1, 2, 3}},
		{name: "overflow keeps newest", capacity: 4, pushes: 7, want: []int{3, 4, 5, 6}, dropped: 3},
		{name: "single slot", capacity: 1, pushes: 3, want: []int{2}, dropped: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rb := newRingBuffer(tt.capacity)
			for i := 0; i < tt.pushes; i++ {
				rb.push(eventMsg(t, i))
			}
			assert.Equal(t, rb.len(), len(tt.want))
			assert.Equal(t, rb.dropped, tt.dropped)

			got := rb.drainAll()
			if tt.want == nil {
				assert.Assert(t, got == nil)
			} else {
				assert.DeepEqual(t, seconds(t, got), tt.want)
			}
			assert.Equal(t, rb.len(), 0)
			assert.Equal(t, rb.dropped, 0)
			assert.Assert(t, rb.drainAll() == nil)
		})
	}
}

func TestRingBufferReuseAfterDrain(t *testing.T) {
	rb := newRingBuffer(3)
	for i := 0; i < 5; i++ {
		rb.push(eventMsg(t, i))
	}
	rb.drainAll()

	for i := 10; i < 12; i++ {
		rb.push(eventMsg(t, i))
	}
	assert.DeepEqual(t, seconds(t, rb.drainAll()), []int{10, 11})
}

func TestRingBufferKeepsSystemMessageFields(t *testing.T) {
	payload, err := FormatSystemPayload(SystemEvent{
		Timestamp: time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC),
		Event:     "RECONNECTED",
	})
	assert.NilError(t, err)

	rb := newRingBuffer(2)
	rb.push(bufferedMsg{topic: TopicSystem, payload: payload, qos: 1, retained: true})

	got := rb.drainAll()
	assert.Equal(t, len(got), 1)
	assert.Equal(t, got[0].topic, TopicSystem)
	assert.Equal(t, string(got[0].payload), string(payload))
	assert.Equal(t, got[0].qos, byte(1))
	assert.Assert(t, got[0].retained)
}
