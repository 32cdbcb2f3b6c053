package proc

import "grasskernel/queue"

// Table is the process table, grounded on the original's static proc_set
// plus its next-pid counter in process.c. Every method must be called
// only by whichever process goroutine currently holds the core's single
// logical flow of control (see sched.Scheduler).
type Table struct {
	set *queue.List[*PCB]

	// nextPID is pre-incremented before use, so the first real process
	// receives pid 1 and pid 0 (PIDAny) is never handed out. This matches
	// Testable Property 8: pids are strictly increasing and never reused.
	nextPID int
}

// NewTable returns an empty process table.
func NewTable() *Table {
	return &Table{set: queue.NewList[*PCB]()}
}

// Alloc allocates a new PCB running body, assigns it the next pid, and
// adds it to the table. The returned PCB is not yet schedulable; callers
// pass it to a scheduler's SetReady before it can run, mirroring
// proc_alloc's split from proc_set_ready in the original.
func (t *Table) Alloc(body Body) *PCB {
	t.nextPID++
	p := NewPCB(t.nextPID, body)
	t.set.Append(p)
	return p
}

// Find returns the PCB with the given pid, if it is still in the table.
func (t *Table) Find(pid int) (*PCB, bool) {
	return t.set.Find(func(p *PCB) bool { return p.PID == pid })
}

// Free removes pid from runQ (if present), frees its two per-PCB queues,
// and removes it from the table, mirroring process.c's proc_free order:
// queue_delete(runQ, ...) before the senderQ/msgwaitQ frees and the final
// list_delete(proc_set, ...). Fatal if its SenderQ is non-empty: freeing a
// process other senders are still blocked on would strand them forever,
// so the original treats it as a programmer error rather than a
// recoverable condition (spec.md §4.3, E6).
func (t *Table) Free(pid int, runQ *queue.Queue[*PCB]) {
	p, ok := t.Find(pid)
	if !ok {
		haltNotFound("proc_free", pid)
		return
	}
	if p.SenderQ.Length() > 0 {
		haltSendersPending(pid)
		return
	}
	runQ.Delete(func(q *PCB) bool { return q.PID == pid })
	p.SenderQ.Free()
	p.MsgWaitQ.Free()
	t.set.Delete(func(q *PCB) bool { return q.PID == pid })
}

// Len returns the number of live processes in the table.
func (t *Table) Len() int { return t.set.Length() }

// Iterate invokes f on every PCB currently in the table, in unspecified
// order, for the CLI's process-table report.
func (t *Table) Iterate(f func(p *PCB)) { t.set.Iterate(f) }
