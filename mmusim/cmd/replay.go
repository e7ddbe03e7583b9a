package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"

	"github.com/sarchlab/mmusim/config"
	"github.com/sarchlab/mmusim/datarecording"
	"github.com/sarchlab/mmusim/mem/vm"
	"github.com/sarchlab/mmusim/mem/vm/mmu"
	"github.com/sarchlab/mmusim/mem/vm/tlb"
	"github.com/sarchlab/mmusim/monitoring"
	"github.com/sarchlab/mmusim/sim/hooking"
	"github.com/sarchlab/mmusim/sim/id"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

func newReplayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay the requests of a memory image through one TLB.",
		Args:  cobra.NoArgs,
		RunE:  runReplay,
	}

	addImageFlag(cmd)
	cmd.Flags().String("record", "",
		"Record translations into <record>.sqlite3 (default $"+EnvRecord+")")
	cmd.Flags().Bool("monitor", false,
		"Serve the monitoring API and keep serving after the replay")
	cmd.Flags().Int("monitor-port", 0,
		"Port of the monitoring API (default $"+EnvMonitorPort+" or random)")
	cmd.Flags().Bool("open-browser", false, "Open the monitoring page")
	cmd.Flags().Bool("quiet", false, "Hide the progress bar")
	cmd.Flags().Bool("parallel-ids", false,
		"Tag translations with globally unique IDs instead of sequence numbers")

	return cmd
}

// replayer owns the components assembled for one replay.
type replayer struct {
	img        *config.Image
	sys        *config.System
	out        io.Writer
	counter    *mmu.OutcomeCounter
	cache      *tlb.TLB
	legacy     *mmu.LegacyTranslator
	protected  *mmu.ProtectedTranslator
	recorder   datarecording.DataRecorder
	monitor    *monitoring.Monitor
	monitorBar *monitoring.ProgressBar
	bar        *progressbar.ProgressBar
}

func runReplay(cmd *cobra.Command, _ []string) error {
	img, sys, err := loadImage(cmd)
	if err != nil {
		return err
	}

	r := &replayer{
		img:     img,
		sys:     sys,
		out:     cmd.OutOrStdout(),
		counter: mmu.NewOutcomeCounter(),
	}

	if err := r.setup(cmd); err != nil {
		return err
	}

	if err := r.run(); err != nil {
		return err
	}

	r.summarize()

	if r.recorder != nil {
		if err := r.recorder.Close(); err != nil {
			return err
		}
	}

	if r.monitor != nil {
		fmt.Fprintln(os.Stderr, "Replay finished, press Ctrl-C to exit.")

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		<-ctx.Done()
	}

	return nil
}

func (r *replayer) setup(cmd *cobra.Command) error {
	hooks := []hooking.Hook{r.counter}

	recordPath := stringFlagOrEnv(cmd, "record", EnvRecord)
	if recordPath != "" {
		recorder, err := datarecording.New(recordPath)
		if err != nil {
			return err
		}

		r.recorder = recorder
		hooks = append(hooks, mmu.NewTranslationRecorder(recorder))
	}

	r.cache = tlb.MakeBuilder().WithHook(r.counter).Build("MMU.TLB")
	r.sys.Registers.AttachFlusher(r.cache)

	builder := mmu.MakeBuilder().
		WithMemory(r.sys.Memory).
		WithTLB(r.cache)

	if parallel, _ := cmd.Flags().GetBool("parallel-ids"); parallel {
		builder = builder.WithIDGenerator(id.NewParallelIDGenerator())
	}

	for _, h := range hooks {
		builder = builder.WithHook(h)
	}

	if r.sys.Mode == mmu.ModeLegacy {
		r.legacy = builder.BuildLegacy("MMU")
	} else {
		r.protected = builder.BuildProtected("MMU")
	}

	if err := r.setupMonitor(cmd); err != nil {
		return err
	}

	quiet, _ := cmd.Flags().GetBool("quiet")
	r.bar = progressbar.NewOptions(len(r.img.Requests),
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionSetDescription("replay"),
		progressbar.OptionSetVisibility(!quiet),
		progressbar.OptionClearOnFinish(),
	)

	return nil
}

func (r *replayer) setupMonitor(cmd *cobra.Command) error {
	enabled, _ := cmd.Flags().GetBool("monitor")
	if !enabled {
		return nil
	}

	port, err := intFlagOrEnv(cmd, "monitor-port", EnvMonitorPort)
	if err != nil {
		return err
	}

	openBrowser, _ := cmd.Flags().GetBool("open-browser")

	r.monitor = monitoring.NewMonitor().
		WithPortNumber(port).
		WithBrowser(openBrowser)

	if r.legacy != nil {
		r.monitor.RegisterComponent(r.legacy)
	} else {
		r.monitor.RegisterComponent(r.protected)
	}

	r.monitor.RegisterComponent(r.cache)
	r.monitor.RegisterCounter(r.counter)
	r.monitorBar = r.monitor.CreateProgressBar(
		"replay", uint64(len(r.img.Requests)))

	r.monitor.StartServer()

	return nil
}

func (r *replayer) run() error {
	for i, req := range r.img.Requests {
		if err := r.step(i, req); err != nil {
			return fmt.Errorf("request %d: %w", i, err)
		}

		if err := r.bar.Add(1); err != nil {
			return fmt.Errorf("progress: %w", err)
		}

		if r.monitorBar != nil {
			r.monitorBar.IncrementFinished(1)
		}
	}

	if err := r.bar.Finish(); err != nil {
		return fmt.Errorf("progress: %w", err)
	}

	if r.monitorBar != nil {
		r.monitor.CompleteProgressBar(r.monitorBar)
	}

	return nil
}

func (r *replayer) step(i int, req config.Request) error {
	if req.IsControl() {
		if err := r.sys.Apply(req); err != nil {
			return err
		}

		ctx := r.sys.Registers.Snapshot()
		fmt.Fprintf(r.out, "%4d  root=0x%08x privileged=%t\n",
			i, ctx.RootTable, ctx.Privileged)

		return nil
	}

	ctx := r.sys.Registers.Snapshot()

	if r.legacy != nil {
		res := r.legacy.Resolve(ctx, uint16(req.Address()))
		fmt.Fprintf(r.out, "%4d  0x%04x: %s\n", i, req.Address(), res)

		return nil
	}

	access, err := req.AccessIntent()
	if err != nil {
		return err
	}

	res := r.protected.Resolve(ctx, req.Address(), access)
	fmt.Fprintf(r.out, "%4d  0x%08x %-7s: %s\n", i, req.Address(), access, res)

	return nil
}

func (r *replayer) summarize() {
	stats := r.counter.Stats()

	fmt.Fprintf(r.out, "\n%d translations\n", stats.Translations)

	statuses := []vm.Status{
		vm.StatusSuccess,
		vm.StatusPageFault,
		vm.StatusProtFault,
		vm.StatusUnresolved,
	}
	for _, s := range statuses {
		fmt.Fprintf(r.out, "  %-11s %d\n", s, r.counter.Count(s))
	}

	if len(stats.Denials) > 0 {
		reasons := make([]string, 0, len(stats.Denials))
		for reason := range stats.Denials {
			reasons = append(reasons, reason)
		}
		sort.Strings(reasons)

		fmt.Fprintln(r.out, "denials")
		for _, reason := range reasons {
			fmt.Fprintf(r.out, "  %-18s %d\n", reason, stats.Denials[reason])
		}
	}

	if r.protected != nil {
		fmt.Fprintf(r.out, "tlb hits %d, misses %d, flushes %d\n",
			stats.TLBHits, stats.TLBMisses, stats.TLBFlushes)
	}
}
