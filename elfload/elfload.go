// Package elfload is the boot-time image loader boundary (spec.md §6):
// out of scope to reimplement for real, modeled as a Go interface at the
// edge of the module.
package elfload

import "grasskernel/proc"

// BlockReader reads nBlocks HAL-native blocks starting at blockNo into
// dst, the Go stand-in for the original's disk_read callback signature
// passed into the ELF loader.
type BlockReader func(blockNo, nBlocks uint32, dst []byte) error

// Loader loads a process image for pid, given a way to read blocks from
// the system image, and returns the entry point to run. The entry point
// takes the grass ABI (proc.API) as an explicit parameter — idiomatic Go
// dependency injection standing in for the original's global grass
// function-pointer table, which the real application reads implicitly
// rather than receiving as an argument.
type Loader interface {
	Load(pid int, read BlockReader) (entry func(api proc.API), err error)
}
