package cmd

import (
	"bufio"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"grasskernel/elfload"
	"grasskernel/kernel"
)

var attachQuanta int

var attachCmd = &cobra.Command{
	Use:   "attach",
	Short: "Boot a kernel core and watch its context switches live",
	Long: `attach boots the same demo workload as boot, but prints every
context switch as it happens instead of only a final summary. If stdin
is a terminal it is switched to raw mode for the duration, so pressing
'q' stops the run early and restores the terminal on the way out.`,
	Args: cobra.NoArgs,
	RunE: runAttach,
}

func init() {
	rootCmd.AddCommand(attachCmd)
	attachCmd.Flags().IntVar(&attachQuanta, "quanta", 12, "number of scheduler quanta the demo workload runs for")
}

func runAttach(cmd *cobra.Command, args []string) error {
	cfg, err := kernel.LoadConfig(globalConfig)
	if err != nil {
		return err
	}

	loader := elfload.NewFlatLoader()
	done := make(chan struct{})
	registerDemoImage(loader, bootWorkers, attachQuanta, done)

	k := kernel.New(cfg, loader)
	k.Emulator().OnSwitch = func(pid int) {
		fmt.Fprintf(cmd.OutOrStdout(), "switch -> pid %d\r\n", pid)
	}

	rawStdin := isatty.IsTerminal(os.Stdin.Fd())
	var oldState *term.State
	if rawStdin {
		oldState, err = term.MakeRaw(int(os.Stdin.Fd()))
		if err != nil {
			rawStdin = false
		} else {
			defer term.Restore(int(os.Stdin.Fd()), oldState)
		}
	}

	quit := make(chan struct{})
	if rawStdin {
		go watchForQuit(os.Stdin, quit)
	}

	k.Boot()

	select {
	case <-done:
	case <-quit:
		fmt.Fprint(cmd.OutOrStdout(), "\r\nstopped early by user\r\n")
	case <-GetContext().Done():
	}

	return nil
}

// watchForQuit reads raw bytes from r and closes quit on the first 'q'.
func watchForQuit(r *os.File, quit chan struct{}) {
	reader := bufio.NewReader(r)
	for {
		b, err := reader.ReadByte()
		if err != nil {
			return
		}
		if b == 'q' {
			close(quit)
			return
		}
	}
}
