package earth

import (
	"sync"

	"grasskernel/kernelerr"
	"grasskernel/logging"
	"grasskernel/proc"
)

// Emulator is the bundled HAL + ContextTransfer implementation: a
// software MMU that just records the current pid, a software monotonic
// tick counter standing in for the original's mtime_get(), and a disk
// backed by an in-memory block store. Grounded on the original's
// earth/emulator (QEMU virt machine) backend, minus any real hardware.
type Emulator struct {
	mu       sync.Mutex
	platform Platform
	transl   Translation
	now      uint64
	mmuPID   int
	disk     map[uint32][]byte
	blockLen uint32

	// switches/flushes/resets count calls for Testable Property 9
	// (aftermath ordering), and are read by the kernel package's tests and
	// the boot command's summary.
	switches   int
	flushes    int
	resets     int
	switchPIDs []int

	// OnSwitch, if set, is called synchronously (outside the internal
	// lock) after every MMUSwitch records a pid — a hook for tests and
	// the monitor to observe scheduling order as it happens rather than
	// polling Counts()/SwitchHistory().
	OnSwitch func(pid int)
}

// NewEmulator returns an Emulator with the given platform/translation
// mode and a disk of blockLen-byte blocks.
func NewEmulator(platform Platform, transl Translation, blockLen uint32) *Emulator {
	return &Emulator{
		platform: platform,
		transl:   transl,
		disk:     make(map[uint32][]byte),
		blockLen: blockLen,
	}
}

// LoadBlock registers block blockNo's contents for later DiskRead calls;
// a test/boot-time helper standing in for writing to a real disk image.
func (e *Emulator) LoadBlock(blockNo uint32, data []byte) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.disk[blockNo] = data
}

func (e *Emulator) MMUSwitch(pid int) {
	e.mu.Lock()
	e.mmuPID = pid
	e.switches++
	e.switchPIDs = append(e.switchPIDs, pid)
	e.mu.Unlock()

	if e.OnSwitch != nil {
		e.OnSwitch(pid)
	}
}

// SwitchHistory returns the pids passed to MMUSwitch in call order, for
// tests asserting on scheduling order (e.g. round-robin fairness).
func (e *Emulator) SwitchHistory() []int {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]int, len(e.switchPIDs))
	copy(out, e.switchPIDs)
	return out
}

func (e *Emulator) MMUFlushCache() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.flushes++
}

func (e *Emulator) MMUFree(pid int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	logging.Debug("mmu free", "pid", pid)
}

func (e *Emulator) DiskRead(blockNo, nBlocks uint32, dst []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := uint32(0); i < nBlocks; i++ {
		block, ok := e.disk[blockNo+i]
		if !ok {
			return kernelerr.New(kernelerr.KindNotFound, "disk_read", "block not found")
		}
		copy(dst[i*e.blockLen:], block)
	}
	return nil
}

func (e *Emulator) TimerReset(coreID uint32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resets++
}

func (e *Emulator) Platform() Platform       { return e.platform }
func (e *Emulator) Translation() Translation { return e.transl }

// Now returns the software tick counter, advanced only by Advance (called
// from the kernel's proc.API.Tick), not wall-clock time: this lets tests
// drive exactly N quanta deterministically.
func (e *Emulator) Now() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.now
}

// Advance moves the software clock forward by n ticks, called once per
// proc.API.Tick() invocation.
func (e *Emulator) Advance(n uint64) {
	e.mu.Lock()
	e.now += n
	e.mu.Unlock()
}

// Quantum returns this emulator's platform's quantum length in ticks.
func (e *Emulator) Quantum() uint64 {
	if e.platform == PlatformHardware {
		return QuantumHardware
	}
	return QuantumEmulator
}

// Counts returns the aftermath call counters, for Testable Property 9
// assertions and the boot command's summary.
func (e *Emulator) Counts() (switches, flushes, resets int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.switches, e.flushes, e.resets
}

// Switch implements ContextTransfer.Switch: wake to, then — unless from
// is the bootstrap pseudo-process (nil) — block until from is woken in
// turn. This is the save-then-restore-stack-pointer pair from
// ctx_switch, realized as a channel handoff instead of a register save.
//
// A process scheduled back into itself (the only runnable process
// repeatedly preempting itself, e.g. E1) is a no-op: sending and
// receiving on the same unbuffered turn channel from the same goroutine
// would deadlock, and no actual handoff is needed since nothing else is
// waiting to run.
func (e *Emulator) Switch(from, to *proc.PCB) {
	if from == to {
		return
	}
	to.Turn() <- struct{}{}
	if from != nil {
		<-from.Turn()
	}
}

// Start implements ContextTransfer.Start: launch to's body goroutine (the
// stand-in for ctx_entry synthesizing a fresh kernel stack frame) and
// perform the same handoff as Switch.
func (e *Emulator) Start(from, to *proc.PCB, entry func()) {
	go entry()
	if from != nil {
		<-from.Turn()
	}
}
