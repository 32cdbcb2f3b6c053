package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grasskernel/earth"
	"grasskernel/elfload"
	"grasskernel/proc"
)

// spin is a process body that never returns on its own, calling Tick
// forever: it only ever leaves the CPU via cooperative preemption.
func spin(api proc.API) {
	for {
		api.Tick()
	}
}

// TestE1BootAndPreemptSelf is scenario E1: a single runnable process is
// preempted by its own timer quantum repeatedly. Each preemption must
// still drive the full mmu_switch -> mmu_flush_cache -> timer_reset
// aftermath (Testable Property 9), even though Switch(self, self) is a
// channel no-op.
func TestE1BootAndPreemptSelf(t *testing.T) {
	loader := elfload.NewFlatLoader()
	done := make(chan struct{})

	loader.Register(proc.GPIDProcess, func(api proc.API) {
		for i := 0; i < 3*earth.QuantumEmulator; i++ {
			api.Tick()
		}
		close(done)
	})

	k := New(DefaultConfig(), loader)
	k.Boot()

	<-done

	switches, flushes, resets := k.Emulator().Counts()
	assert.Equal(t, 4, switches, "1 boot switch into pid 1 plus 3 self-preemptions")
	assert.Equal(t, switches, flushes, "every switch is followed by exactly one flush")
	assert.Equal(t, switches, resets, "every switch is followed by exactly one timer reset")
}

// TestE2TwoProcessRoundRobin is scenario E2: the system process spawns
// two children, marks both ready, then spins alongside them. Once the
// readyQ has drained, scheduling becomes pure FIFO round-robin over
// runQ, producing the run order 2, 3, 1, 2, 3, 1 across six quanta.
func TestE2TwoProcessRoundRobin(t *testing.T) {
	loader := elfload.NewFlatLoader()
	done := make(chan struct{})

	loader.Register(proc.GPIDProcess, func(api proc.API) {
		p2 := api.Alloc(spin)
		p3 := api.Alloc(spin)
		api.SetReady(p2)
		api.SetReady(p3)
		spin(api)
	})

	k := New(DefaultConfig(), loader)
	k.Emulator().OnSwitch = func(pid int) {
		if len(k.Emulator().SwitchHistory()) == 7 {
			close(done)
		}
	}
	k.Boot()

	<-done

	hist := k.Emulator().SwitchHistory()
	require.Len(t, hist, 7)
	assert.Equal(t, []int{1, 2, 3, 1, 2, 3, 1}, hist)
}

// TestE3SendRecvRendezvous is scenario E3: process 2 runs first and calls
// recv with an empty senderQ, parking on its msgwaitQ; process 3's send
// wakes 2 onto runQ and blocks 3 in 2's senderQ. When 2 is rescheduled,
// its recv takes 3's message and moves 3 to runQ, so 3's Send returns
// the next time 3 is scheduled.
func TestE3SendRecvRendezvous(t *testing.T) {
	loader := elfload.NewFlatLoader()
	recvDone := make(chan struct{})
	sendDone := make(chan struct{})
	var gotSender int
	var gotByte byte

	receiverBody := func(api proc.API) {
		sc, _ := api.Recv(proc.PIDAny)
		gotSender = sc.Sender
		gotByte = sc.Content[0]
		close(recvDone)
		api.Recv(proc.PIDAny) // second recv: parks 2 so the CPU passes on and 3 is resumed
	}
	senderBody := func(api proc.API) {
		var content [proc.SyscallMsgLen]byte
		content[0] = 'p'
		_ = api.Send(2, content[:])
		close(sendDone)
	}

	loader.Register(proc.GPIDProcess, func(api proc.API) {
		p2 := api.Alloc(receiverBody)
		p3 := api.Alloc(senderBody)
		api.SetReady(p2)
		api.SetReady(p3)
		spin(api) // keeps quanta flowing so later rounds get scheduled
	})

	k := New(DefaultConfig(), loader)
	k.Boot()

	<-recvDone
	assert.Equal(t, 3, gotSender)
	assert.Equal(t, byte('p'), gotByte)

	<-sendDone
}
