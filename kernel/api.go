package kernel

import (
	"grasskernel/ipc"
	"grasskernel/kernelerr"
	"grasskernel/proc"
	"grasskernel/trap"
)

// api is the concrete kernel→user grass ABI (spec.md §6) handed to every
// process body. One is constructed per PCB by Kernel.entryFor, standing
// in for the original's global function-pointer table with an explicit,
// idiomatic-Go parameter instead.
type api struct {
	k    *Kernel
	self *proc.PCB

	// quantumStart is the clock reading at which self's current quantum
	// began; Tick compares against it rather than the kernel maintaining
	// a per-core deadline, since every process's Tick calls are
	// interleaved cooperatively, not truly concurrently.
	quantumStart uint64
}

// Alloc implements proc_alloc via the grass ABI (spec.md §4.3).
func (a *api) Alloc(body proc.Body) *proc.PCB {
	return a.k.State.ProcSet.Alloc(body)
}

// Free implements proc_free (spec.md §4.3): only the system process (pid
// 1) may call it.
func (a *api) Free(pid int) {
	if a.self.PID != proc.GPIDProcess {
		kernelerr.Halt(kernelerr.New(kernelerr.KindInvariant, "proc_free", "only the system process may free processes"))
	}
	a.k.emu.MMUFree(pid)
	a.k.State.ProcSet.Free(pid, a.k.State.Scheduler.RunQ)
}

// SetReady implements proc_set_ready.
func (a *api) SetReady(p *proc.PCB) {
	a.k.State.Scheduler.SetReady(p)
}

// Send implements sys_send (spec.md §4.6), routing through the trap
// dispatcher's syscall-entry bookkeeping before the IPC logic proper.
func (a *api) Send(receiver int, content []byte) error {
	trap.Classify(trap.EncodeException(trap.CauseEnvCallM))
	trap.EnterSyscall(a.self, proc.Syscall{Type: proc.SysSend, Sender: a.self.PID, Receiver: receiver})
	ipc.Send(a.k.State.Scheduler, a.k.State.ProcSet, a.self, receiver, content, a.k.entryFor)
	if a.k.OnIPCSend != nil {
		a.k.OnIPCSend(a.self.PID, receiver)
	}
	return nil
}

// Recv implements sys_recv (spec.md §4.6).
func (a *api) Recv(sender int) (proc.Syscall, error) {
	trap.Classify(trap.EncodeException(trap.CauseEnvCallM))
	trap.EnterSyscall(a.self, proc.Syscall{Type: proc.SysRecv, Sender: sender, Receiver: a.self.PID})
	ipc.Recv(a.k.State.Scheduler, a.self, sender, a.k.entryFor)
	return a.self.Syscall, nil
}

// Tick implements the timer-interrupt side of the trap dispatcher
// (spec.md §4.4, §4.5): advance the virtual clock by one unit, and once a
// full quantum has elapsed since this process started running, classify
// the cause (timer interrupt id 7) and yield into runQ — the cooperative
// stand-in for a hardware timer preempting user mode, since a goroutine
// cannot be preempted asynchronously.
func (a *api) Tick() {
	a.k.emu.Advance(1)
	if a.k.emu.Now()-a.quantumStart < a.k.emu.Quantum() {
		return
	}
	trap.Classify(trap.EncodeInterrupt(trap.CauseTimerInterrupt))
	a.k.State.Scheduler.Yield(a.self, a.k.State.Scheduler.RunQ, a.k.entryFor)
	a.quantumStart = a.k.emu.Now()
}

// Self implements returning the calling process's own pid.
func (a *api) Self() int { return a.self.PID }
