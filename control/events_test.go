package control_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/momentics/hioload-thread/control"
)

func TestEventLogBounded(t *testing.T) {
	log := control.NewEventLog(3)
	for i := 1; i <= 5; i++ {
		log.Record(control.Event{Backend: "posix", Thread: uint64(i), Kind: control.EventCreated})
	}
	assert.Equal(t, 3, log.Len())
	evs := log.Snapshot()
	assert.Equal(t, uint64(3), evs[0].Thread, "oldest entries are evicted first")
	assert.Equal(t, uint64(5), evs[2].Thread)
	assert.False(t, evs[0].At.IsZero())

	log.Resize(1)
	evs = log.Snapshot()
	if assert.Len(t, evs, 1) {
		assert.Equal(t, uint64(5), evs[0].Thread)
	}
}

func TestEventLogDisabled(t *testing.T) {
	log := control.NewEventLog(0)
	log.Record(control.Event{Kind: control.EventJoined})
	assert.Zero(t, log.Len())

	var nilLog *control.EventLog
	nilLog.Record(control.Event{Kind: control.EventJoined})
}

func TestEventString(t *testing.T) {
	ev := control.Event{Backend: "win32", Thread: 4, Kind: control.EventCanceled}
	assert.Contains(t, ev.String(), "win32 thread(4) canceled")
}
