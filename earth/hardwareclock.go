//go:build linux

package earth

import "golang.org/x/sys/unix"

// hardwareNow reads CLOCK_MONOTONIC in nanoseconds, the real-hardware
// counterpart to Emulator's software tick counter, exposed through
// HardwareClock. The Emulator does not use it: its Now is the software
// tick counter whichever Platform is configured.
func hardwareNow() uint64 {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		return 0
	}
	return uint64(ts.Sec)*1e9 + uint64(ts.Nsec)
}

// HardwareClock is a Now() source backed by the real machine clock,
// standing in for the original's board-specific mtime_get() when running
// against real timer hardware rather than the software Emulator.
type HardwareClock struct{}

// Now returns the current CLOCK_MONOTONIC reading in nanoseconds.
func (HardwareClock) Now() uint64 { return hardwareNow() }
