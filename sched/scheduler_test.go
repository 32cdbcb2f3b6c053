package sched

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grasskernel/earth"
	"grasskernel/proc"
)

// recordingHAL is a minimal earth.HAL fake that records call order for
// Testable Property 9.
type recordingHAL struct {
	calls []string
}

func (h *recordingHAL) MMUSwitch(pid int)        { h.calls = append(h.calls, "mmu_switch") }
func (h *recordingHAL) MMUFlushCache()           { h.calls = append(h.calls, "mmu_flush_cache") }
func (h *recordingHAL) MMUFree(pid int)          {}
func (h *recordingHAL) TimerReset(coreID uint32) { h.calls = append(h.calls, "timer_reset") }
func (h *recordingHAL) Platform() earth.Platform { return earth.PlatformEmulator }
func (h *recordingHAL) Translation() earth.Translation { return earth.SoftTLB }
func (h *recordingHAL) Now() uint64 { return 0 }

func (h *recordingHAL) DiskRead(blockNo, nBlocks uint32, dst []byte) error { return nil }

// fakeCT is an earth.ContextTransfer fake that resolves synchronously,
// without any real goroutine rendezvous: it just records who was started
// or switched to, letting tests drive Yield deterministically from a
// single goroutine.
type fakeCT struct {
	started []int
	switched []int
}

func (c *fakeCT) Switch(from, to *proc.PCB) { c.switched = append(c.switched, to.PID) }

func (c *fakeCT) Start(from, to *proc.PCB, entry func()) { c.started = append(c.started, to.PID) }

func noopEntry(p *proc.PCB) func() { return func() {} }

func TestYieldPrefersReadyQOverRunQ(t *testing.T) {
	hal := &recordingHAL{}
	ct := &fakeCT{}
	s := New(hal, ct)

	running := proc.NewPCB(1, nil)
	queued := proc.NewPCB(2, nil)
	fresh := proc.NewPCB(3, nil)

	s.RunQ.Push(queued)
	s.ReadyQ.Push(fresh)

	s.Yield(running, s.RunQ, noopEntry)

	assert.Equal(t, []int{3}, ct.started)
	assert.Same(t, fresh, s.ProcNext, "readyQ has one-time priority over runQ")

	// running (pushed onto targetQ) and queued (still on runQ) remain.
	assert.Equal(t, 2, s.RunQ.Length())
}

func TestYieldAftermathOrder(t *testing.T) {
	// Property 9: mmu_switch, mmu_flush_cache, timer_reset in that order,
	// exactly once per switch.
	hal := &recordingHAL{}
	ct := &fakeCT{}
	s := New(hal, ct)

	self := proc.NewPCB(1, nil)
	s.RunQ.Push(proc.NewPCB(2, nil))

	s.Yield(self, s.RunQ, noopEntry)

	require.Equal(t, []string{"mmu_switch", "mmu_flush_cache", "timer_reset"}, hal.calls)
	assert.Same(t, self, s.ProcCurr, "resumed process runs its own aftermath")
}

func TestYieldFatalWhenBothQueuesEmpty(t *testing.T) {
	hal := &recordingHAL{}
	ct := &fakeCT{}
	s := New(hal, ct)

	// Yield into the caller's own msgwaitQ: yielding into RunQ would put
	// the caller back on RunQ, so RunQ would not be empty.
	self := proc.NewPCB(1, nil)
	assert.Panics(t, func() {
		s.Yield(self, self.MsgWaitQ, noopEntry)
	})
}

func TestBootStartsFirstProcessWithoutBlocking(t *testing.T) {
	hal := &recordingHAL{}
	ct := &fakeCT{}
	s := New(hal, ct)

	first := proc.NewPCB(1, nil)
	s.Boot(first, func() {})

	assert.Equal(t, []int{1}, ct.started)
	assert.Same(t, first, s.ProcNext)
}
