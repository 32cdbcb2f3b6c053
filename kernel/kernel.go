// Package kernel wires the heap allocator, process table, scheduler, IPC,
// and trap dispatcher into one bootable core, grounded on the original
// grass/init.c grass_entry.
package kernel

import (
	"github.com/google/uuid"

	"grasskernel/earth"
	"grasskernel/elfload"
	"grasskernel/kernelerr"
	"grasskernel/kmem"
	"grasskernel/logging"
	"grasskernel/proc"
	"grasskernel/sched"
)

// State is the kernel's per-core global state (spec.md §3): the process
// table plus the scheduler's run queues and current/next PCBs.
type State struct {
	*sched.Scheduler
	ProcSet *proc.Table
}

// Kernel is one bootable core: heap, process table, scheduler, and the
// software HAL/ContextTransfer backing them.
type Kernel struct {
	BootID uuid.UUID
	Config Config

	Heap   *kmem.Heap
	State  *State
	Loader elfload.Loader

	emu *earth.Emulator

	// OnIPCSend, if set, is called synchronously after every sys_send
	// completes — a hook for the monitor package's event stream and
	// Prometheus counter, analogous to earth.Emulator.OnSwitch.
	OnIPCSend func(sender, receiver int)
}

// New wires a Kernel against an in-process software Emulator — the only
// platform this module ships; a real port would supply a different
// earth.HAL/earth.ContextTransfer pair to sched.New instead.
func New(cfg Config, loader elfload.Loader) *Kernel {
	emu := earth.NewEmulator(cfg.earthPlatform(), cfg.earthTranslation(), 512)
	scheduler := sched.New(emu, emu)

	return &Kernel{
		BootID: uuid.New(),
		Config: cfg,
		Heap:   kmem.New(cfg.HeapWindowBytes),
		State:  &State{Scheduler: scheduler, ProcSet: proc.NewTable()},
		Loader: loader,
		emu:    emu,
	}
}

// LoadDiskImage registers blockNo's bytes for later DiskRead calls,
// standing in for writing to the disk image at DiskImagePath.
func (k *Kernel) LoadDiskImage(blockNo uint32, data []byte) {
	k.emu.LoadBlock(blockNo, data)
}

// Emulator returns the software HAL/ContextTransfer backing this Kernel,
// for the monitor's metrics and for tests asserting on aftermath call
// counts (Testable Property 9).
func (k *Kernel) Emulator() *earth.Emulator { return k.emu }

// entryFor builds the body-goroutine entry closure for p: run the switch
// aftermath, then hand p its grass ABI and execute its body — this
// rewrite's stand-in for ctx_entry's "simulate a trap return to the
// application entry point".
func (k *Kernel) entryFor(p *proc.PCB) func() {
	return func() {
		k.State.Scheduler.RunAftermath(p)
		a := &api{k: k, self: p, quantumStart: k.emu.Now()}
		p.Body(a)
	}
}

// Boot implements initialization (spec.md §4.7): load the system process
// image via the ELF loader, allocate and start the first PCB as pid
// GPIDProcess, and begin preemptive execution via the scheduler. Fatal on
// any failure.
func (k *Kernel) Boot() {
	entry, err := k.Loader.Load(proc.GPIDProcess, k.emu.DiskRead)
	if err != nil {
		kernelerr.Halt(kernelerr.Wrap(err, kernelerr.KindInternal, "grass_entry"))
	}

	first := k.State.ProcSet.Alloc(func(a proc.API) { entry(a) })
	if first.PID != proc.GPIDProcess {
		kernelerr.Halt(kernelerr.New(kernelerr.KindInvariant, "grass_entry", "system process must be pid 1"))
	}

	logging.Info("booting grasskernel",
		"boot_id", k.BootID.String(),
		"platform", string(k.Config.Platform),
		"translation", string(k.Config.Translation),
		"heap_window_bytes", k.Config.HeapWindowBytes,
	)

	k.State.Scheduler.Boot(first, k.entryFor(first))
}
