// grasskernel boots a small, cooperatively-preemptive multi-process
// kernel core in a single OS process: a round-robin scheduler,
// synchronous rendezvous IPC, and a first-fit heap allocator, all
// driven by simulated processes running as goroutines.
//
// Commands:
//
//	boot    - boot a kernel core and run its demo workload
//	attach  - boot a kernel core and watch its context switches live
//	version - print version information
package main

import (
	"fmt"
	"os"

	"grasskernel/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "grasskernel:", err)
		os.Exit(1)
	}
}
