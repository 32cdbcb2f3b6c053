// Package trap implements the cause-register classification and per-trap
// bookkeeping from kernel_entry, grounded on the original grass/kernel.c.
package trap

import (
	"fmt"

	"grasskernel/kernelerr"
	"grasskernel/proc"
)

// Cause ids, matching the original's hardcoded interrupt/exception
// numbers (spec.md §4.4): interrupt 7 is the timer; exception 11 is a
// machine-mode environment call.
const (
	CauseTimerInterrupt = 7
	CauseEnvCallM        = 11
)

const interruptBit uint32 = 1 << 31

const idMask uint32 = 0x3FF

// Kind classifies a decoded cause.
type Kind int

const (
	KindTimer Kind = iota
	KindSyscall
)

// EncodeInterrupt builds a cause word for interrupt id.
func EncodeInterrupt(id uint32) uint32 { return interruptBit | id }

// EncodeException builds a cause word for exception id.
func EncodeException(id uint32) uint32 { return id &^ interruptBit }

// Classify implements the cause-register read in kernel_entry: the high
// bit distinguishes interrupt from exception, the low 10 bits carry the
// id. Any id other than the recognized timer interrupt or ecall
// exception is fatal, naming the offending cause (spec.md §7 "unknown
// trap").
func Classify(cause uint32) Kind {
	isInterrupt := cause&interruptBit != 0
	id := cause & idMask

	switch {
	case isInterrupt && id == CauseTimerInterrupt:
		return KindTimer
	case !isInterrupt && id == CauseEnvCallM:
		return KindSyscall
	default:
		kernelerr.Halt(kernelerr.New(kernelerr.KindUnknownTrap, "kernel_entry", fmt.Sprintf("unrecognized interrupt/exception cause %#x (id %d)", cause, id)))
		panic("unreachable")
	}
}

// EnterSyscall implements kernel_entry's syscall-path bookkeeping
// (spec.md §4.4): advance proc_curr.mepc past the ecall instruction (4
// bytes wide) so user code resumes after the trap, then copy the syscall
// message into proc_curr.syscall.
func EnterSyscall(p *proc.PCB, sc proc.Syscall) {
	p.Mepc += 4
	p.Syscall = sc
}
