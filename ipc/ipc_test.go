package ipc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grasskernel/earth"
	"grasskernel/proc"
	"grasskernel/sched"
)

// goroutineCT is a real channel-rendezvous ContextTransfer, the same shape
// earth.Emulator uses for kernel.Kernel. None of the tests below use it:
// they run with recordingSwitchCT.
type goroutineCT struct{}

func (goroutineCT) Switch(from, to *proc.PCB) {
	to.Turn() <- struct{}{}
	if from != nil {
		<-from.Turn()
	}
}

func (goroutineCT) Start(from, to *proc.PCB, entry func()) {
	go entry()
	if from != nil {
		<-from.Turn()
	}
}

type noopHAL struct{}

func (noopHAL) MMUSwitch(pid int)                                  {}
func (noopHAL) MMUFlushCache()                                     {}
func (noopHAL) MMUFree(pid int)                                    {}
func (noopHAL) DiskRead(blockNo, nBlocks uint32, dst []byte) error { return nil }
func (noopHAL) TimerReset(coreID uint32)                           {}
func (noopHAL) Platform() earth.Platform                           { return earth.PlatformEmulator }
func (noopHAL) Translation() earth.Translation                     { return earth.SoftTLB }
func (noopHAL) Now() uint64                                        { return 0 }

// recordingSwitchCT never launches a goroutine or blocks: used for tests
// where senderQ is already populated so Recv/Send never actually need to
// park, meaning no real goroutine handoff occurs.
type recordingSwitchCT struct{}

func (recordingSwitchCT) Switch(from, to *proc.PCB)              {}
func (recordingSwitchCT) Start(from, to *proc.PCB, entry func()) {}

func entryFor(s *sched.Scheduler) func(p *proc.PCB) func() {
	return func(p *proc.PCB) func() {
		return func() {
			s.RunAftermath(p)
			p.Body(nil)
		}
	}
}

func TestSendFatalOnUnknownReceiver(t *testing.T) {
	s := sched.New(noopHAL{}, recordingSwitchCT{})
	table := proc.NewTable()
	sender := proc.NewPCB(5, nil)

	assert.Panics(t, func() {
		Send(s, table, sender, 999, []byte("x"), entryFor(s))
	})
}

func TestRecvDirectedOutOfFIFOE4(t *testing.T) {
	// E4: senders 3 and 4 both queued on 2's senderQ in that order;
	// recv(sender=4) picks 4, leaving 3 still queued.
	receiver := proc.NewPCB(2, nil)
	s3 := proc.NewPCB(3, nil)
	s4 := proc.NewPCB(4, nil)
	s3.Syscall.Content[0] = 'a'
	s4.Syscall.Content[0] = 'b'

	receiver.SenderQ.Push(s3)
	receiver.SenderQ.Push(s4)

	s := sched.New(noopHAL{}, recordingSwitchCT{})

	Recv(s, receiver, 4, entryFor(s))

	require.Equal(t, byte('b'), receiver.Syscall.Content[0])
	assert.Equal(t, 4, receiver.Syscall.Sender)
	assert.Equal(t, 1, receiver.SenderQ.Length(), "sender 3 remains queued")

	found, ok := receiver.SenderQ.Find(func(p *proc.PCB) bool { return p.PID == 3 })
	require.True(t, ok)
	assert.Same(t, s3, found)
}

func TestRecvAnyDeliversFIFOProperty7(t *testing.T) {
	// Property 7: messages m1, m2, m3 from the same sender delivered to
	// recv(ANY) in program order.
	receiver := proc.NewPCB(2, nil)
	sender := proc.NewPCB(3, nil)

	s := sched.New(noopHAL{}, recordingSwitchCT{})

	for _, msg := range []byte{'1', '2', '3'} {
		pending := proc.NewPCB(sender.PID, nil)
		pending.Syscall.Content[0] = msg
		receiver.SenderQ.Push(pending)
	}

	for _, want := range []byte{'1', '2', '3'} {
		Recv(s, receiver, proc.PIDAny, entryFor(s))
		assert.Equal(t, 3, receiver.Syscall.Sender)
		assert.Equal(t, want, receiver.Syscall.Content[0])
	}
}

// The full concurrent send/recv handshake (E3, across real goroutines) is
// covered by the kernel package's boot-and-rendezvous integration test,
// where a real proc.Table and Scheduler are wired together end to end
// over earth.Emulator's channel rendezvous.
