package trap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grasskernel/proc"
)

func TestClassifyTimerInterrupt(t *testing.T) {
	assert.Equal(t, KindTimer, Classify(EncodeInterrupt(CauseTimerInterrupt)))
}

func TestClassifyEnvCall(t *testing.T) {
	assert.Equal(t, KindSyscall, Classify(EncodeException(CauseEnvCallM)))
}

func TestClassifyUnknownCauseIsFatal(t *testing.T) {
	assert.Panics(t, func() {
		Classify(EncodeException(99))
	})
	assert.Panics(t, func() {
		Classify(EncodeInterrupt(3))
	})
}

func TestEnterSyscallAdvancesMepcAndCopiesMessage(t *testing.T) {
	p := proc.NewPCB(1, nil)
	p.Mepc = 0x1000

	sc := proc.Syscall{Type: proc.SysSend, Sender: 1, Receiver: 2}
	sc.Content[0] = 'x'

	EnterSyscall(p, sc)

	require.Equal(t, uint64(0x1004), p.Mepc)
	assert.Equal(t, proc.SysSend, p.Syscall.Type)
	assert.Equal(t, byte('x'), p.Syscall.Content[0])
}
