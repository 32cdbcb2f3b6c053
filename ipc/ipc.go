// Package ipc implements synchronous rendezvous send/receive, grounded on
// the original grass/kernel.c try_send/try_recv.
package ipc

import (
	"grasskernel/kernelerr"
	"grasskernel/proc"
	"grasskernel/sched"
)

// Send implements sys_send (spec.md §4.6), called by sender's own
// goroutine: locate the receiver, enqueue sender onto its senderQ, wake
// it if it was parked in recv, then yield the sender into that same
// senderQ (not runQ — the sender stays blocked until a recv consumes
// it). Fatal if the receiver does not exist (directed IPC miss).
//
// Send only returns once some later recv has consumed the message and
// this sender has been rescheduled.
func Send(s *sched.Scheduler, table *proc.Table, sender *proc.PCB, receiverPID int, content []byte, entryFor func(p *proc.PCB) func()) {
	receiver, ok := table.Find(receiverPID)
	if !ok {
		kernelerr.Halt(kernelerr.New(kernelerr.KindDirectedIPCMiss, "try_send", "send to nonexistent pid"))
	}

	sender.Syscall.Type = proc.SysSend
	sender.Syscall.Sender = sender.PID
	sender.Syscall.Receiver = receiverPID
	copy(sender.Syscall.Content[:], content)

	// Notify rule: at most one process may be parked on a given
	// msgwaitQ; finding more than one there is a fatal invariant
	// violation (spec.md §4.6).
	if receiver.MsgWaitQ.Length() > 1 {
		kernelerr.Halt(kernelerr.New(kernelerr.KindInvariant, "try_send", "msgwaitQ holds more than one waiter"))
	}
	if waiting, ok := receiver.MsgWaitQ.Pop(); ok {
		s.RunQ.Push(waiting)
	}

	// Yield pushes sender onto receiver.SenderQ itself (its first step
	// is always "enqueue self onto targetQ") — do not push it again
	// here, or the sender would be double-enqueued.
	s.Yield(sender, receiver.SenderQ, entryFor)
}

// Recv implements sys_recv (spec.md §4.6), called by receiver's own
// goroutine:
//   - while senderQ is empty, park self on own msgwaitQ by yielding into
//     it;
//   - if desiredSenderPID is proc.PIDAny, pop the head of senderQ; else
//     linearly scan senderQ for that pid (re-parking while absent — the
//     open question resolution in spec.md §9 picks head-to-tail scan,
//     first match) and delete it once found;
//   - push the chosen sender onto runQ, unblocking it;
//   - copy the sender's pid and content into the receiver's Syscall.
func Recv(s *sched.Scheduler, receiver *proc.PCB, desiredSenderPID int, entryFor func(p *proc.PCB) func()) {
	for receiver.SenderQ.Length() == 0 {
		s.Yield(receiver, receiver.MsgWaitQ, entryFor)
	}

	var sender *proc.PCB
	if desiredSenderPID == proc.PIDAny {
		sender, _ = receiver.SenderQ.Pop()
	} else {
		for {
			found, ok := receiver.SenderQ.Find(func(p *proc.PCB) bool { return p.PID == desiredSenderPID })
			if ok {
				sender = found
				receiver.SenderQ.Delete(func(p *proc.PCB) bool { return p.PID == desiredSenderPID })
				break
			}
			s.Yield(receiver, receiver.MsgWaitQ, entryFor)
		}
	}

	s.RunQ.Push(sender)

	receiver.Syscall.Type = proc.SysRecv
	receiver.Syscall.Sender = sender.PID
	receiver.Syscall.Content = sender.Syscall.Content
}
