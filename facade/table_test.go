package facade_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-thread/api"
	"github.com/momentics/hioload-thread/facade"
	"github.com/momentics/hioload-thread/fake"
)

func exercise(t *testing.T, threads api.Threads) {
	t.Helper()
	p := api.DefaultThreadParams()
	a, err := threads.Create(func(any) any { return 1 }, nil)
	require.NoError(t, err)
	b, err := threads.CreateWithParams(&p, func(any) any { return 2 }, nil)
	require.NoError(t, err)
	_, err = threads.Join(a)
	require.NoError(t, err)
	require.NoError(t, threads.Cancel(b))
	require.NoError(t, threads.Detach(b))
	threads.Sleep(1)
	threads.SleepUntil(0)
	threads.CurrentID()
	_, _ = threads.Name(b, make([]byte, api.MaxThreadNameLen))
	threads.TestCancel()
	threads.Capabilities()
}

func TestTableForwardsEverySlot(t *testing.T) {
	backend := fake.NewThreads()
	table := facade.NewTable(backend, api.NewManualClock(0))
	exercise(t, table)

	assert.Equal(t, []string{
		"create", "create_with_params", "join", "cancel", "detach",
		"sleep", "current_id", "name", "test_cancel", "capabilities",
	}, uniqueOps(backend.Ops()), "sleep_until resolves through the sleep slot")
}

func TestTableRebindLeavesNoResidualCalls(t *testing.T) {
	original := fake.NewThreads()
	replacement := fake.NewThreads()
	table := facade.NewTable(original, api.NewManualClock(0))
	table.Bind(replacement)

	exercise(t, table)
	assert.Empty(t, original.Calls(), "rebound table must not reach the original backend")
	assert.NotEmpty(t, replacement.Calls())
}

func TestTableSleepUntilGoesThroughSleepSlot(t *testing.T) {
	clock := api.NewManualClock(1000)
	table := facade.NewTable(fake.NewThreads(), clock)
	var slept []api.Ticks
	table.SleepFn = func(d api.Ticks) { slept = append(slept, d) }

	table.SleepUntil(400)
	assert.Empty(t, slept, "a deadline in the past returns at once")
	table.SleepUntil(1250)
	assert.Equal(t, []api.Ticks{250}, slept)
}

func TestTableSingleSlotOverride(t *testing.T) {
	backend := fake.NewThreads()
	table := facade.NewTable(backend, api.NewManualClock(0))
	table.CurrentIDFn = func() api.ThreadID { return 77 }

	assert.Equal(t, api.ThreadID(77), table.CurrentID())
	assert.Empty(t, backend.Calls())
}

// uniqueOps drops repeated operations, keeping first-seen order.
func uniqueOps(ops []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, op := range ops {
		if !seen[op] {
			seen[op] = true
			out = append(out, op)
		}
	}
	return out
}
