// Package sched implements the single-operation scheduler, proc_yield,
// grounded on the original grass/kernel.c proc_yield and process.c
// proc_set_ready.
package sched

import (
	"grasskernel/earth"
	"grasskernel/kernelerr"
	"grasskernel/proc"
	"grasskernel/queue"
)

// Scheduler owns the two run queues and the currently-running PCB for one
// core (spec.md §3 "global kernel state, per-core where noted"). Every
// field is touched only by whichever process goroutine currently holds
// the single logical flow of control — see Yield's doc comment.
type Scheduler struct {
	RunQ         *queue.Queue[*proc.PCB]
	ReadyQ       *queue.Queue[*proc.PCB]
	ProcCurr     *proc.PCB
	ProcNext     *proc.PCB
	CoreInKernel uint32

	HAL earth.HAL
	CT  earth.ContextTransfer
}

// New returns a Scheduler with empty run queues.
func New(hal earth.HAL, ct earth.ContextTransfer) *Scheduler {
	return &Scheduler{
		RunQ:   queue.New[*proc.PCB](),
		ReadyQ: queue.New[*proc.PCB](),
		HAL:    hal,
		CT:     ct,
	}
}

// SetReady implements proc_set_ready(pcb): pushes pcb onto readyQ so it
// is eligible to run for the first time.
func (s *Scheduler) SetReady(p *proc.PCB) { s.ReadyQ.Push(p) }

// Yield implements proc_yield(targetQ) (spec.md §4.5), called by self's
// own goroutine — the Go realization of "this runs on the trapped
// process's own kernel stack". It:
//  1. pushes self onto targetQ (usually RunQ; IPC uses other queues);
//  2. chooses next: readyQ has one-time priority over runQ for processes
//     that have never run;
//  3. invokes the matching context transfer (Start for a fresh process,
//     Switch for a resumable one), which blocks this goroutine until self
//     is woken again — exactly as ctx_switch only "returns" once another
//     ctx_switch/ctx_start resumes this same stack;
//  4. once resumed, runs the switch aftermath for itself: proc_curr :=
//     self, mmu_switch, mmu_flush_cache, timer_reset (Testable
//     Property 9).
//
// Fatal if both queues are empty: the original always has at least the
// system process to fall back to.
//
// entryFor builds the entry closure a freshly-chosen process is started
// with; kernel wiring owns API construction, so Yield itself stays
// unaware of it.
func (s *Scheduler) Yield(self *proc.PCB, targetQ *queue.Queue[*proc.PCB], entryFor func(p *proc.PCB) func()) {
	targetQ.Push(self)

	var next *proc.PCB
	if fresh, ok := s.ReadyQ.Pop(); ok {
		next = fresh
		s.ProcNext = next
		s.CT.Start(self, next, entryFor(next))
	} else if resumable, ok := s.RunQ.Pop(); ok {
		next = resumable
		s.ProcNext = next
		s.CT.Switch(self, next)
	} else {
		kernelerr.Halt(kernelerr.New(kernelerr.KindInvariant, "proc_yield", "both runQ and readyQ empty"))
		return
	}

	s.RunAftermath(self)
}

// Boot performs the very first context transfer, starting first with no
// preceding process to requeue — the Go stand-in for the boundary where
// init "issues machine-mode trap-return, beginning user execution".
// Unlike Yield, Boot does not block: once the first process's goroutine
// is launched, the booting call stack has no more work to do.
func (s *Scheduler) Boot(first *proc.PCB, entry func()) {
	s.ProcNext = first
	s.CT.Start(nil, first, entry)
}

// RunAftermath implements the switch aftermath in order: proc_curr :=
// proc_next, mmu_switch, mmu_flush_cache, timer_reset. It must be called
// by p's own goroutine exactly once every time p gains control, whether
// fresh (from the entry closure) or resumed (from Yield).
func (s *Scheduler) RunAftermath(p *proc.PCB) {
	s.ProcCurr = p
	s.HAL.MMUSwitch(p.PID)
	s.HAL.MMUFlushCache()
	s.HAL.TimerReset(s.CoreInKernel)
}
