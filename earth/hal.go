// Package earth is the hardware-abstraction boundary the grass kernel core
// is deliberately oblivious to, grounded on the original's earth/earth.h.
// This module ships one implementation, Emulator, standing in for a real
// platform port: it runs entirely in Go, with no actual MMU, disk, or
// timer hardware behind it.
package earth

import "grasskernel/proc"

// Platform selects the quantum length, mirroring the original's
// PLATFORM_EMULATOR/PLATFORM_HARDWARE distinction.
type Platform int

const (
	// PlatformEmulator uses a short software quantum suited to running
	// many simulated quanta quickly in tests.
	PlatformEmulator Platform = iota
	// PlatformHardware uses the longer quantum a real board would.
	PlatformHardware
)

// Translation selects the privilege-transition mode the original's init
// chooses between depending on whether the platform offers hardware
// paging.
type Translation int

const (
	// SoftTLB means the kernel never drops out of machine mode.
	SoftTLB Translation = iota
	// HardwarePaging means the kernel drops to user mode after init.
	HardwarePaging
)

// Quantum ticks per platform, matching the original's QUANTUM constants
// (emulator: 100,000 ticks; hardware: 50,000,000 ticks).
const (
	QuantumEmulator = 100_000
	QuantumHardware = 50_000_000
)

// HAL is the hardware-abstraction layer the kernel core consumes:
// mmu_switch/mmu_flush_cache/mmu_free/disk_read/timer_reset plus
// platform/translation detection (spec.md §6).
type HAL interface {
	// MMUSwitch installs pid's address space as current.
	MMUSwitch(pid int)
	// MMUFlushCache flushes any cached translations.
	MMUFlushCache()
	// MMUFree releases pid's address space.
	MMUFree(pid int)
	// DiskRead reads nBlocks HAL-native blocks starting at blockNo into
	// dst.
	DiskRead(blockNo, nBlocks uint32, dst []byte) error
	// TimerReset arms the next timer interrupt for coreID, one quantum
	// from now.
	TimerReset(coreID uint32)
	// Platform reports which quantum length is in effect.
	Platform() Platform
	// Translation reports the privilege-transition mode in effect.
	Translation() Translation
	// Now returns a monotonic tick reading (original's mtime_get()); the
	// kernel's Tick compares it against a quantum.
	Now() uint64
}

// ContextTransfer is the Go stand-in for the original's ctx_switch/
// ctx_start/ctx_entry assembly stubs (spec.md §6, §9 "context-switch
// stubs are the one place assembly is unavoidable... treat them as a
// platform module"). Because this rewrite has no real kernel stack to
// save/restore, both methods are realized as a blocking channel
// rendezvous on the PCBs' turn channels: the calling goroutine (the one
// yielding away) wakes the target and then, if it is itself a real
// process (from != nil), blocks until it is woken in turn. This is the
// same trick ctx_switch plays with a saved/restored stack pointer: the
// "return" of Switch/Start is observed by whichever process was just
// resumed, continuing exactly where its own earlier call left off.
type ContextTransfer interface {
	// Switch hands control to an already-started, resumable process.
	Switch(from, to *proc.PCB)
	// Start hands control to a never-run process for the first time,
	// launching entry as its body goroutine (the stand-in for ctx_entry
	// synthesizing a fresh kernel-stack frame).
	Start(from, to *proc.PCB, entry func())
}
