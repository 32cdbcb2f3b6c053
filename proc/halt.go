package proc

import (
	"fmt"

	"grasskernel/kernelerr"
)

func haltNotFound(op string, pid int) {
	kernelerr.Halt(kernelerr.New(kernelerr.KindNotFound, op, fmt.Sprintf("no such pid %d", pid)))
}

func haltSendersPending(pid int) {
	kernelerr.Halt(kernelerr.New(kernelerr.KindInvariant, "proc_free", fmt.Sprintf("pid %d still has blocked senders", pid)))
}
