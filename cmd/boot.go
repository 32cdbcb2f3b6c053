package cmd

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"grasskernel/elfload"
	"grasskernel/kernel"
	"grasskernel/logging"
	"grasskernel/monitor"
	"grasskernel/proc"
)

var (
	bootQuanta      int
	bootWorkers     int
	bootMonitor     bool
	bootMonitorAddr string
)

var bootCmd = &cobra.Command{
	Use:   "boot",
	Short: "Boot a kernel core and run its demo workload to completion",
	Long: `boot wires a heap, process table, scheduler, and IPC layer, loads
a small demo system process, and lets it run for a bounded number of
quanta. The demo process spawns a fixed pool of worker processes that
round-robin the CPU; each worker sends one rendezvous message to the
system process before settling into its tick loop, then boot prints the
final process table and heap summary.`,
	Args: cobra.NoArgs,
	RunE: runBoot,
}

func init() {
	rootCmd.AddCommand(bootCmd)

	bootCmd.Flags().IntVar(&bootQuanta, "quanta", 12, "number of scheduler quanta the demo workload runs for")
	bootCmd.Flags().IntVar(&bootWorkers, "workers", 3, "number of worker processes the demo system process spawns")
	bootCmd.Flags().BoolVar(&bootMonitor, "monitor", false, "serve the live monitor (HTTP + websocket + Prometheus) while booted")
	bootCmd.Flags().StringVar(&bootMonitorAddr, "monitor-addr", "", "override the configured monitor bind address")
}

func runBoot(cmd *cobra.Command, args []string) error {
	cfg, err := kernel.LoadConfig(globalConfig)
	if err != nil {
		return err
	}
	if bootMonitorAddr != "" {
		cfg.MonitorBindAddr = bootMonitorAddr
	}

	loader := elfload.NewFlatLoader()
	done := make(chan struct{})
	registerDemoImage(loader, bootWorkers, bootQuanta, done)

	k := kernel.New(cfg, loader)

	if bootMonitor {
		srv := monitor.New(k)
		go func() {
			if err := srv.ListenAndServe(cfg.MonitorBindAddr); err != nil {
				logging.Error("monitor server exited", "error", err)
			}
		}()
		fmt.Fprintf(cmd.OutOrStdout(), "monitor listening on %s\n", cfg.MonitorBindAddr)
	}

	k.Boot()

	select {
	case <-done:
	case <-GetContext().Done():
		logging.Info("interrupted, reporting state early")
	}

	printProcTable(cmd, k)
	printHeapSummary(cmd, k)
	return nil
}

// registerDemoImage registers the system process (pid GPIDProcess) that
// boot runs: it spawns nWorkers children, marks them ready, receives each
// worker's one rendezvous message (sent via sys_send to the system
// process), then spins itself for the remaining quanta before closing
// done. Receiving all nWorkers messages up front, rather than
// interleaved with the spin loop, keeps the exchange one-directional
// (workers only ever send, the system process only ever receives) so the
// demo can never deadlock in a send cycle.
func registerDemoImage(loader *elfload.FlatLoader, nWorkers, quanta int, done chan struct{}) {
	loader.Register(proc.GPIDProcess, func(api proc.API) {
		workers := make([]*proc.PCB, 0, nWorkers)
		for i := 0; i < nWorkers; i++ {
			i := i
			w := api.Alloc(func(workerAPI proc.API) { demoWorker(workerAPI, i) })
			workers = append(workers, w)
		}
		for _, w := range workers {
			api.SetReady(w)
		}

		for i := 0; i < nWorkers; i++ {
			sc, _ := api.Recv(proc.PIDAny)
			logging.Info("system process received rendezvous message", "from", sc.Sender, "content", sc.Content[0])
		}

		for i := 0; i < quanta; i++ {
			api.Tick()
		}
		close(done)
	})
}

// demoWorker sends one rendezvous message to the system process the
// first time it runs, then spins, handing the CPU back every quantum the
// same way a real cooperative process would at a trap boundary.
func demoWorker(api proc.API, index int) {
	logging.Info("worker started", "pid", api.Self(), "index", index)

	var content [proc.SyscallMsgLen]byte
	content[0] = byte(index)
	_ = api.Send(proc.GPIDProcess, content[:])

	for {
		api.Tick()
	}
}

func printProcTable(cmd *cobra.Command, k *kernel.Kernel) {
	out := cmd.OutOrStdout()

	type row struct {
		pid, senderQLen int
		msgWaiting      bool
		lastSyscall     string
	}
	var rows []row
	k.State.ProcSet.Iterate(func(p *proc.PCB) {
		rows = append(rows, row{
			pid:         p.PID,
			senderQLen:  p.SenderQ.Length(),
			msgWaiting:  p.MsgWaitQ.Length() > 0,
			lastSyscall: p.Syscall.Type.String(),
		})
	})

	if !isatty.IsTerminal(os.Stdout.Fd()) {
		fmt.Fprintln(out, "pid\tsenderq_len\tmsg_waiting\tlast_syscall")
		for _, r := range rows {
			fmt.Fprintf(out, "%d\t%d\t%v\t%s\n", r.pid, r.senderQLen, r.msgWaiting, r.lastSyscall)
		}
		return
	}

	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		width = 80
	}

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"PID", "SENDERQ", "MSG WAITING", "LAST SYSCALL"})
	table.SetAutoWrapText(width >= 100)
	for _, r := range rows {
		table.Append([]string{
			fmt.Sprintf("%d", r.pid),
			fmt.Sprintf("%d", r.senderQLen),
			fmt.Sprintf("%v", r.msgWaiting),
			r.lastSyscall,
		})
	}
	table.Render()
}

func printHeapSummary(cmd *cobra.Command, k *kernel.Kernel) {
	out := cmd.OutOrStdout()
	free := k.Heap.FreeBytes()
	fmt.Fprintf(out, "heap: %s free of %s window, %d free-list region(s)\n",
		humanize.Bytes(uint64(free)),
		humanize.Bytes(uint64(k.Heap.WindowSize())),
		k.Heap.FreeListLength(),
	)

	switches, flushes, resets := k.Emulator().Counts()
	fmt.Fprintf(out, "scheduler: %d context switch(es), %d cache flush(es), %d timer reset(s)\n",
		switches, flushes, resets)
}
