// Package proc defines the process control block, the syscall message
// format, and the process table, grounded on the original
// grass/process.{c,h}.
package proc

import "grasskernel/queue"

// SyscallMsgLen is the fixed content length of a syscall message
// (spec.md §6, SYSCALL_MSG_LEN).
const SyscallMsgLen = 64

// SizeKStack is the default kernel stack size (spec.md §3): 16 KiB. It is
// tracked only as a bookkeeping size here — this module never performs
// real kernel-stack pointer arithmetic, see earth.ContextTransfer.
const SizeKStack = 0x4000

// PIDAny is the reserved sentinel PID, distinct from every real pid
// (which starts at 1). It serves two roles in the original kernel: "any
// sender" for an undirected recv, and the (unimplemented) "kill all"
// target for proc_free.
const PIDAny = 0

// GPIDProcess is the pid reserved for the system process loaded at boot,
// the only process allowed to call Free (spec.md §4.3 "only the
// designated system process (PID 1) may call proc_free").
const GPIDProcess = 1

// SyscallType names a syscall message's kind.
type SyscallType int

const (
	// SysNone marks a PCB that has not yet issued a syscall.
	SysNone SyscallType = iota
	// SysSend is a send(receiver, content) request.
	SysSend
	// SysRecv is a recv(sender) request.
	SysRecv
)

// String renders a SyscallType for logs.
func (t SyscallType) String() string {
	switch t {
	case SysSend:
		return "SEND"
	case SysRecv:
		return "RECV"
	default:
		return "NONE"
	}
}

// Syscall is the fixed-layout message copied across the trap boundary
// (spec.md §6): {type, sender, receiver, content[SyscallMsgLen]}.
type Syscall struct {
	Type     SyscallType
	Sender   int
	Receiver int
	Content  [SyscallMsgLen]byte
}

// PCB is the per-process control block (spec.md §3). Every field here
// must be touched only by whichever process goroutine currently holds the
// core's single logical flow of control — see sched.Scheduler.
type PCB struct {
	PID     int
	Mepc    uint64
	Syscall Syscall

	// KStackSize records the allocation the original kernel makes for
	// this PCB's kernel stack; Ksp is not a real pointer here (Go has no
	// kernel-stack pointer to save/restore) but is kept so invariants
	// like "ksp in [kstack, kstack+SIZE_KSTACK]" remain checkable.
	KStackSize int
	Ksp        int

	// SenderQ holds the PCBs whose owners are blocked trying to send to
	// this PCB.
	SenderQ *queue.Queue[*PCB]
	// MsgWaitQ holds at most one PCB: this one, while blocked in recv.
	MsgWaitQ *queue.Queue[*PCB]

	// turn is signaled by earth.ContextTransfer to hand control to this
	// PCB's body goroutine; it is this module's Go-native replacement for
	// restoring a saved kernel stack pointer. Unbuffered, so signaling it
	// blocks until the other side is actually ready to receive.
	turn chan struct{}
	// Body is the simulated user-mode code for this process, run against
	// an API handle (the kernel→user grass ABI, spec.md §6).
	Body Body
}

// API is the kernel→user "grass" ABI (spec.md §6): the function pointers
// the original installs into the user-visible grass struct
// (proc_alloc/proc_free/proc_set_ready/sys_send/sys_recv), plus Tick,
// this rewrite's stand-in for "time passing while user code runs": a Go
// goroutine cannot be preempted asynchronously the way a hardware timer
// interrupt preempts user mode, so a process gives up the CPU only
// inside these calls.
type API interface {
	// Alloc creates a new process running body and returns its PCB. Per
	// spec.md §4.3 only GPID_PROCESS (pid 1) is expected to call this.
	Alloc(body Body) *PCB
	// Free destroys the process pid. Fatal if its SenderQ is non-empty.
	Free(pid int)
	// SetReady makes p schedulable for the first time.
	SetReady(p *PCB)
	// Send blocks the caller until receiver has consumed the message.
	Send(receiver int, content []byte) error
	// Recv blocks the caller until a message from sender (or PIDAny) is
	// available, and returns the delivered syscall record.
	Recv(sender int) (Syscall, error)
	// Tick advances the virtual clock by one unit of simulated
	// instruction time. If the current quantum has elapsed this call
	// traps into the scheduler (proc_yield(runQ)) and does not return
	// until this process is rescheduled.
	Tick()
	// Self returns the PID of the calling process.
	Self() int
}

// Body is the simulated user-mode entry point for a process.
type Body func(api API)

// NewPCB allocates a zeroed PCB running body, with fresh, empty queues and
// the bookkeeping kernel-stack fields set up exactly as proc_alloc
// describes: Ksp starts at KStackSize (the top of the stack), matching
// `ksp = kstack + SIZE_KSTACK`.
func NewPCB(pid int, body Body) *PCB {
	return &PCB{
		PID:        pid,
		KStackSize: SizeKStack,
		Ksp:        SizeKStack,
		SenderQ:    queue.New[*PCB](),
		MsgWaitQ:   queue.New[*PCB](),
		turn:       make(chan struct{}),
		Body:       body,
	}
}

// Turn returns the channel earth.ContextTransfer signals to resume this
// PCB's body goroutine, and which that goroutine blocks on while
// descheduled.
func (p *PCB) Turn() chan struct{} { return p.turn }

// ValidKsp reports the invariant `ksp ∈ [kstack, kstack+SIZE_KSTACK]`
// (spec.md §3), expressed over the bookkeeping Ksp/KStackSize fields.
func (p *PCB) ValidKsp() bool {
	return p.Ksp >= 0 && p.Ksp <= p.KStackSize
}
