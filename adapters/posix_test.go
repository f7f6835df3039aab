//go:build unix
// +build unix

package adapters

import (
	"math"
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-thread/api"
	"github.com/momentics/hioload-thread/control"
)

func newTestPosix(t *testing.T, cfg *control.Config) *Posix {
	t.Helper()
	if cfg == nil {
		cfg = control.DefaultConfig()
		cfg.Cancellation = control.CancellationCooperative
	}
	return NewPosix(Options{Config: control.NewConfigStore(cfg)})
}

func (p *Posix) waitingOn(id api.ThreadID) api.ThreadID {
	p.mu.Lock()
	defer p.mu.Unlock()
	if rec, ok := p.threads.Get(id); ok {
		return rec.waitingOn
	}
	return api.NoThread
}

type payload struct{ n int }

func TestPosixJoinReturnsEntryResult(t *testing.T) {
	p := newTestPosix(t, nil)
	in := &payload{n: 1}
	id, err := p.Create(func(arg any) any {
		arg.(*payload).n++
		return arg
	}, in)
	require.NoError(t, err)

	res, err := p.Join(id)
	require.NoError(t, err)
	assert.Same(t, in, res)
	assert.Equal(t, 2, in.n)

	_, err = p.Join(id)
	assert.ErrorIs(t, err, api.ErrThreadDoesNotExist, "handle is released by the first join")
}

func TestPosixCounterEndToEnd(t *testing.T) {
	p := newTestPosix(t, nil)
	var counter atomic.Int64
	ids := make([]api.ThreadID, 10)
	for i := range ids {
		id, err := p.Create(func(any) any {
			counter.Add(1)
			return nil
		}, nil)
		require.NoError(t, err)
		ids[i] = id
	}
	for _, id := range ids {
		_, err := p.Join(id)
		require.NoError(t, err)
	}
	assert.Equal(t, int64(10), counter.Load())
	assert.Equal(t, int64(10), p.opts.Metrics.Get(control.MetricJoined))
	assert.Empty(t, p.Handles())
}

func TestPosixCreateArguments(t *testing.T) {
	p := newTestPosix(t, nil)
	entry := func(any) any { return nil }

	_, err := p.Create(nil, nil)
	assert.ErrorIs(t, err, api.ErrNullArgument)
	_, err = p.CreateWithParams(nil, entry, nil)
	assert.ErrorIs(t, err, api.ErrNullArgument)

	params := api.ThreadParams{Version: api.ThreadParamsCurrentVersion + 1}
	_, err = p.CreateWithParams(&params, entry, nil)
	assert.ErrorIs(t, err, api.ErrUnsupportedParameterVersion)

	params = api.ThreadParams{StackSize: 1}
	_, err = p.CreateWithParams(&params, entry, nil)
	assert.ErrorIs(t, err, api.ErrStackSizeConfigurationFailed)

	params = api.ThreadParams{Version: api.ThreadParamsVersion1, CPUAffinity: []int{-1}}
	_, err = p.CreateWithParams(&params, entry, nil)
	assert.ErrorIs(t, err, api.ErrAttributeInitializationFailed)

	assert.Equal(t, int64(2), p.opts.Metrics.Get(control.MetricCreateFailed), "argument checks fail before any attempt")
	assert.Zero(t, p.Live())
}

func TestPosixDefaultStackSize(t *testing.T) {
	p := newTestPosix(t, nil)
	params := api.ThreadParams{StackSize: 0}
	id, err := p.CreateWithParams(&params, func(any) any { return 1 }, nil)
	require.NoError(t, err)
	res, err := p.Join(id)
	require.NoError(t, err)
	assert.Equal(t, 1, res)
}

func TestPosixResourceExhausted(t *testing.T) {
	cfg := control.DefaultConfig()
	cfg.MaxThreads = 1
	p := newTestPosix(t, cfg)
	release := make(chan struct{})
	id, err := p.Create(func(any) any { <-release; return nil }, nil)
	require.NoError(t, err)

	_, err = p.Create(func(any) any { return nil }, nil)
	assert.ErrorIs(t, err, api.ErrResourceExhausted)

	close(release)
	_, err = p.Join(id)
	require.NoError(t, err)
}

func TestPosixInvalidHandle(t *testing.T) {
	p := newTestPosix(t, nil)
	_, err := p.Join(api.NoThread)
	assert.ErrorIs(t, err, api.ErrInvalidArgument)
	assert.ErrorIs(t, p.Cancel(api.NoThread), api.ErrInvalidArgument)
	assert.ErrorIs(t, p.Detach(api.NoThread), api.ErrInvalidArgument)

	_, err = p.Join(1234)
	assert.ErrorIs(t, err, api.ErrThreadDoesNotExist)
	assert.ErrorIs(t, p.Cancel(1234), api.ErrThreadDoesNotExist)
	assert.ErrorIs(t, p.Detach(1234), api.ErrThreadDoesNotExist)
}

func TestPosixDetach(t *testing.T) {
	p := newTestPosix(t, nil)
	release := make(chan struct{})
	id, err := p.Create(func(any) any { <-release; return nil }, nil)
	require.NoError(t, err)

	require.NoError(t, p.Detach(id))
	_, err = p.Join(id)
	assert.ErrorIs(t, err, api.ErrThreadNotJoinable)
	assert.ErrorIs(t, p.Detach(id), api.ErrThreadNotJoinable)

	close(release)
	require.Eventually(t, func() bool { return len(p.Handles()) == 0 }, 5*time.Second, time.Millisecond,
		"detached thread leaves the table when it ends")
	_, err = p.Join(id)
	assert.ErrorIs(t, err, api.ErrThreadDoesNotExist)
}

func TestPosixDetachAfterExit(t *testing.T) {
	p := newTestPosix(t, nil)
	id, err := p.Create(func(any) any { return nil }, nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return p.Live() == 0 }, 5*time.Second, time.Millisecond)

	require.NoError(t, p.Detach(id))
	assert.Empty(t, p.Handles())
}

func TestPosixSelfDetach(t *testing.T) {
	p := newTestPosix(t, nil)
	const n = 50
	errc := make(chan error, n)
	for i := 0; i < n; i++ {
		_, err := p.Create(func(any) any {
			errc <- p.Detach(p.CurrentID())
			return nil
		}, nil)
		require.NoError(t, err)
	}
	for i := 0; i < n; i++ {
		assert.NoError(t, <-errc)
	}
	require.Eventually(t, func() bool { return len(p.Handles()) == 0 }, 5*time.Second, time.Millisecond)
	assert.Equal(t, int64(n), p.opts.Metrics.Get(control.MetricDetached))
}

func TestPosixSecondJoinerIsRejected(t *testing.T) {
	p := newTestPosix(t, nil)
	release := make(chan struct{})
	target, err := p.Create(func(any) any { <-release; return "done" }, nil)
	require.NoError(t, err)

	res := make(chan any, 1)
	go func() {
		v, _ := p.Join(target)
		res <- v
	}()
	require.Eventually(t, func() bool {
		p.mu.Lock()
		defer p.mu.Unlock()
		rec, ok := p.threads.Get(target)
		return ok && rec.joining
	}, 5*time.Second, time.Millisecond)

	_, err = p.Join(target)
	assert.ErrorIs(t, err, api.ErrThreadNotJoinable)
	close(release)
	assert.Equal(t, "done", <-res)
}

func TestPosixSelfJoinDeadlock(t *testing.T) {
	p := newTestPosix(t, nil)
	errc := make(chan error, 1)
	id, err := p.Create(func(any) any {
		_, err := p.Join(p.CurrentID())
		errc <- err
		return nil
	}, nil)
	require.NoError(t, err)
	assert.ErrorIs(t, <-errc, api.ErrDeadlockDetected)
	_, err = p.Join(id)
	require.NoError(t, err)
}

func TestPosixJoinCycleDeadlock(t *testing.T) {
	p := newTestPosix(t, nil)
	aID := make(chan api.ThreadID, 1)
	errc := make(chan error, 1)

	b, err := p.Create(func(any) any {
		a := <-aID
		for p.waitingOn(a) != p.CurrentID() {
			time.Sleep(time.Millisecond)
		}
		_, err := p.Join(a)
		errc <- err
		return nil
	}, nil)
	require.NoError(t, err)

	a, err := p.Create(func(any) any {
		_, err := p.Join(b)
		return err
	}, nil)
	require.NoError(t, err)
	aID <- a

	assert.ErrorIs(t, <-errc, api.ErrDeadlockDetected)
	res, err := p.Join(a)
	require.NoError(t, err)
	assert.Nil(t, res, "a joined b once b gave up")
}

func TestPosixCancelAtSleep(t *testing.T) {
	p := newTestPosix(t, nil)
	started := make(chan struct{})
	var cleanedUp, resumed atomic.Bool
	id, err := p.Create(func(any) any {
		defer cleanedUp.Store(true)
		close(started)
		p.Sleep(api.FromDuration(time.Hour))
		resumed.Store(true)
		return "finished"
	}, nil)
	require.NoError(t, err)
	<-started

	require.NoError(t, p.Cancel(id))
	res, err := p.Join(id)
	require.NoError(t, err)
	assert.Equal(t, api.Canceled, res)
	assert.True(t, cleanedUp.Load(), "deferred calls run when the thread unwinds")
	assert.False(t, resumed.Load())
}

func TestPosixCancelAtTestCancel(t *testing.T) {
	p := newTestPosix(t, nil)
	var iterations atomic.Int64
	id, err := p.Create(func(any) any {
		for {
			iterations.Add(1)
			p.TestCancel()
			runtime.Gosched()
		}
	}, nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return iterations.Load() > 0 }, 5*time.Second, time.Millisecond)

	require.NoError(t, p.Cancel(id))
	res, err := p.Join(id)
	require.NoError(t, err)
	assert.Equal(t, api.Canceled, res)
}

func TestPosixJoinIsCancellationPoint(t *testing.T) {
	p := newTestPosix(t, nil)
	release := make(chan struct{})
	target, err := p.Create(func(any) any { <-release; return 9 }, nil)
	require.NoError(t, err)

	joiner, err := p.Create(func(any) any {
		v, _ := p.Join(target)
		return v
	}, nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return p.waitingOn(joiner) == target }, 5*time.Second, time.Millisecond)

	require.NoError(t, p.Cancel(joiner))
	res, err := p.Join(joiner)
	require.NoError(t, err)
	assert.Equal(t, api.Canceled, res)

	close(release)
	res, err = p.Join(target)
	require.NoError(t, err, "target stays joinable after its joiner was canceled")
	assert.Equal(t, 9, res)
}

func TestPosixLivenessOnlyCancel(t *testing.T) {
	cfg := control.DefaultConfig()
	cfg.Cancellation = control.CancellationLiveness
	p := newTestPosix(t, cfg)
	assert.Equal(t, api.CancelLivenessOnly, p.Capabilities().Cancel)

	release := make(chan struct{})
	id, err := p.Create(func(any) any {
		<-release
		p.TestCancel()
		p.Sleep(api.HundredsOfNanosInAMicrosecond)
		return "survived"
	}, nil)
	require.NoError(t, err)

	require.NoError(t, p.Cancel(id), "live thread reports success")
	close(release)
	require.Eventually(t, func() bool { return p.Live() == 0 }, 5*time.Second, time.Millisecond)
	assert.ErrorIs(t, p.Cancel(id), api.ErrThreadDoesNotExist, "exited thread no longer probes")

	res, err := p.Join(id)
	require.NoError(t, err)
	assert.Equal(t, "survived", res)
}

func TestPosixCancelModeIsFixedAtCreation(t *testing.T) {
	p := newTestPosix(t, nil)
	started := make(chan struct{})
	id, err := p.Create(func(any) any {
		close(started)
		p.Sleep(api.FromDuration(time.Hour))
		return "finished"
	}, nil)
	require.NoError(t, err)
	<-started

	cfg := control.DefaultConfig()
	cfg.Cancellation = control.CancellationLiveness
	p.opts.Config.Set(cfg)
	assert.Equal(t, api.CancelLivenessOnly, p.Capabilities().Cancel, "new threads get the reloaded mode")

	require.NoError(t, p.Cancel(id))
	res, err := p.Join(id)
	require.NoError(t, err)
	assert.Equal(t, api.Canceled, res, "the running thread keeps cooperative cancellation")

	release := make(chan struct{})
	id, err = p.Create(func(any) any {
		<-release
		p.TestCancel()
		return "survived"
	}, nil)
	require.NoError(t, err)
	require.NoError(t, p.Cancel(id))
	close(release)
	res, err = p.Join(id)
	require.NoError(t, err)
	assert.Equal(t, "survived", res)
}

func TestPosixSleepUsesMicroseconds(t *testing.T) {
	p := newTestPosix(t, nil)
	var calls []uint32
	p.nativeSleep = func(us uint32) { calls = append(calls, us) }

	const fiftyDays = 50 * 24 * 3600 * api.HundredsOfNanosInASecond
	p.Sleep(fiftyDays)
	require.Len(t, calls, 1006)
	assert.Equal(t, uint32(math.MaxUint32), calls[0])

	calls = nil
	p.Sleep(api.HundredsOfNanosInAMicrosecond * 3)
	assert.Equal(t, []uint32{3}, calls)
}

func TestPosixSleepUntil(t *testing.T) {
	clock := api.NewManualClock(api.HundredsOfNanosInASecond)
	p := NewPosix(Options{Clock: clock})
	var calls []uint32
	p.nativeSleep = func(us uint32) { calls = append(calls, us) }

	p.SleepUntil(0)
	assert.Empty(t, calls)
	p.SleepUntil(api.HundredsOfNanosInASecond + api.HundredsOfNanosInAMillisecond)
	assert.Equal(t, []uint32{1000}, calls)
}

func TestPosixCurrentID(t *testing.T) {
	p := newTestPosix(t, nil)
	assert.Equal(t, api.NoThread, p.CurrentID())

	inside := make(chan api.ThreadID, 1)
	id, err := p.Create(func(any) any {
		inside <- p.CurrentID()
		return nil
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, id, <-inside)
	_, err = p.Join(id)
	require.NoError(t, err)

	// another adapter does not claim the thread
	other := newTestPosix(t, nil)
	id, err = p.Create(func(any) any {
		inside <- other.CurrentID()
		return nil
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, api.NoThread, <-inside)
	_, err = p.Join(id)
	require.NoError(t, err)
}

func TestPosixNameArguments(t *testing.T) {
	p := newTestPosix(t, nil)
	_, err := p.Name(api.NoThread, nil)
	assert.ErrorIs(t, err, api.ErrNullArgument)
	_, err = p.Name(api.NoThread, make([]byte, api.MaxThreadNameLen-1))
	assert.ErrorIs(t, err, api.ErrInvalidArgument)
	_, err = p.Name(77, make([]byte, api.MaxThreadNameLen))
	assert.ErrorIs(t, err, api.ErrInvalidOperation)
}

func TestPosixName(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("thread names are read back from the OS on linux only")
	}
	p := newTestPosix(t, nil)
	release := make(chan struct{})
	inside := make(chan string, 1)
	params := api.ThreadParams{Version: api.ThreadParamsVersion1, Name: "posix-worker"}
	id, err := p.CreateWithParams(&params, func(any) any {
		buf := make([]byte, api.MaxThreadNameLen)
		n, _ := p.Name(api.NoThread, buf)
		inside <- string(buf[:n])
		<-release
		return nil
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "posix-worker", <-inside)

	buf := make([]byte, 32)
	n, err := p.Name(id, buf)
	require.NoError(t, err)
	assert.Equal(t, "posix-worker", string(buf[:n]))
	assert.Equal(t, byte(0), buf[n])

	close(release)
	_, err = p.Join(id)
	require.NoError(t, err)
}

func TestPosixCapabilities(t *testing.T) {
	p := newTestPosix(t, nil)
	caps := p.Capabilities()
	assert.Equal(t, "posix", caps.Backend)
	assert.Equal(t, api.CancelCooperative, caps.Cancel)
	assert.Equal(t, api.HundredsOfNanosInAMicrosecond, caps.NativeSleepUnit)
	assert.Equal(t, uint64(math.MaxUint32), caps.NativeSleepMax)
	assert.False(t, caps.ExitCodeOnly)
}
