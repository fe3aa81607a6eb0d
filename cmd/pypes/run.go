package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"github.com/bytedance/sonic"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sarchlab/pypes/config"
	"github.com/sarchlab/pypes/elements"
	"github.com/sarchlab/pypes/flow"
	"github.com/sarchlab/pypes/loader"
	"github.com/sarchlab/pypes/logging"
	"github.com/sarchlab/pypes/metrics"
	"github.com/sarchlab/pypes/monitoring"
	"github.com/sarchlab/pypes/recording"
	"github.com/sarchlab/pypes/tracing"
)

var runCmd = &cobra.Command{
	Use:   "run FILE...",
	Short: "Execute pipeline definitions.",
	Long: "`run` builds the pipeline of every file and executes them " +
		"concurrently. It stops at the first pipeline that fails.",
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := runOptionsFrom(cmd, settings)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		return runPipelines(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), args, opts)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Int("stall-limit", 0,
		"Abort a pipeline after this many ticks without progress. 0 disables the limit.")
	runCmd.Flags().Bool("monitor", false, "Serve the state of the pipelines over HTTP.")
	runCmd.Flags().Int("monitor-port", 0, "Port of the monitoring server. 0 picks a random port.")
	runCmd.Flags().Bool("open", false, "Open the monitoring server in a browser.")
	runCmd.Flags().String("record", "", "Record element steps and packets into this SQLite file or clickhouse:// DSN.")
	runCmd.Flags().Bool("record-idle", false, "Also record steps that made no progress.")
	runCmd.Flags().Bool("trace", false, "Print per-element step statistics after execution.")
	runCmd.Flags().Bool("print", false, "Print the packets kept by StoreSink elements.")
}

type runOptions struct {
	logging     logging.Config
	stallLimit  int
	monitor     bool
	monitorPort int
	open        bool
	record      string
	recordIdle  bool
	trace       bool
	print       bool
}

// runOptionsFrom merges the flags into the runtime settings. Flags that
// are set win.
func runOptionsFrom(cmd *cobra.Command, cfg *config.Config) (runOptions, error) {
	opts := runOptions{
		logging:     cfg.LoggingConfig(),
		stallLimit:  cfg.StallLimit,
		monitor:     cfg.Monitor,
		monitorPort: cfg.MonitorPort,
		record:      cfg.RecordPath,
		trace:       cfg.Trace,
	}

	flags := cmd.Flags()

	var err error

	if flags.Changed("stall-limit") {
		if opts.stallLimit, err = flags.GetInt("stall-limit"); err != nil {
			return opts, err
		}
	}

	if flags.Changed("monitor") {
		if opts.monitor, err = flags.GetBool("monitor"); err != nil {
			return opts, err
		}
	}

	if flags.Changed("monitor-port") {
		if opts.monitorPort, err = flags.GetInt("monitor-port"); err != nil {
			return opts, err
		}

		opts.monitor = true
	}

	if flags.Changed("record") {
		if opts.record, err = flags.GetString("record"); err != nil {
			return opts, err
		}
	}

	if opts.recordIdle, err = flags.GetBool("record-idle"); err != nil {
		return opts, err
	}

	if flags.Changed("trace") {
		if opts.trace, err = flags.GetBool("trace"); err != nil {
			return opts, err
		}
	}

	if opts.open, err = flags.GetBool("open"); err != nil {
		return opts, err
	}

	if opts.print, err = flags.GetBool("print"); err != nil {
		return opts, err
	}

	if opts.stallLimit < 0 {
		return opts, fmt.Errorf("negative stall limit %d", opts.stallLimit)
	}

	return opts, nil
}

type job struct {
	loaded  *loader.Loaded
	counter *tracing.StepCounter
}

func runPipelines(
	ctx context.Context,
	stdout, stderr io.Writer,
	files []string,
	opts runOptions,
) error {
	logger, err := logging.New(opts.logging)
	if err != nil {
		return err
	}

	defer func() { _ = logger.Sync() }()

	reg := prometheus.NewRegistry()

	collector, err := metrics.NewCollector(reg)
	if err != nil {
		return err
	}

	builder := flow.MakeBuilder().
		WithLogger(logger).
		WithStallLimit(opts.stallLimit).
		WithHook(collector)

	var recorder *recording.Recorder

	if opts.record != "" {
		db, err := recording.Open(opts.record)
		if err != nil {
			return err
		}

		defer func() {
			if err := db.Close(); err != nil {
				logger.Error("close recording", zap.Error(err))
			}
		}()

		recorder, err = recording.NewRecorder(db)
		if err != nil {
			return err
		}

		recorder.RecordIdle(opts.recordIdle)
		builder = builder.WithHook(recorder)
	}

	jobs, err := loadJobs(builder, files, opts.trace)
	if err != nil {
		return err
	}

	var monitor *monitoring.Monitor

	if opts.monitor {
		monitor, err = startMonitor(reg, logger, opts)
		if err != nil {
			return err
		}

		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()

			_ = monitor.Shutdown(shutdownCtx)
		}()

		for _, j := range jobs {
			monitor.RegisterPipeline(j.loaded.Pipeline)
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	for _, j := range jobs {
		p := j.loaded.Pipeline

		g.Go(func() error {
			err := p.ExecuteContext(gctx)

			if monitor != nil {
				monitor.Done(p)
			}

			if err != nil {
				return fmt.Errorf("pipeline %s: %w", p.Name(), err)
			}

			return nil
		})
	}

	runErr := g.Wait()

	if recorder != nil {
		if err := recorder.Flush(); err != nil && runErr == nil {
			runErr = err
		}
	}

	if opts.trace {
		for _, j := range jobs {
			printSummaries(stderr, j)
		}
	}

	if opts.print {
		for _, j := range jobs {
			if err := printStores(stdout, j.loaded); err != nil && runErr == nil {
				runErr = err
			}
		}
	}

	return runErr
}

func loadJobs(builder flow.Builder, files []string, trace bool) ([]job, error) {
	registry := loader.Builtin()
	jobs := make([]job, 0, len(files))
	names := make(map[string]string, len(files))

	for _, path := range files {
		b := builder

		var counter *tracing.StepCounter
		if trace {
			counter = tracing.NewStepCounter(tracing.AllElements)
			b = b.WithHook(counter)
		}

		loaded, err := loader.NewLoader(registry, b).LoadFile(path)
		if err != nil {
			return nil, err
		}

		name := loaded.Pipeline.Name()
		if other, found := names[name]; found {
			return nil, fmt.Errorf("%s: pipeline %s is also declared in %s",
				path, name, other)
		}

		names[name] = path

		jobs = append(jobs, job{loaded: loaded, counter: counter})
	}

	return jobs, nil
}

func startMonitor(
	reg *prometheus.Registry,
	logger *zap.Logger,
	opts runOptions,
) (*monitoring.Monitor, error) {
	monitor := monitoring.NewMonitor().
		WithPortNumber(opts.monitorPort).
		WithGatherer(reg).
		WithLogger(logger)

	url, err := monitor.StartServer()
	if err != nil {
		return nil, err
	}

	if opts.open {
		if err := monitor.OpenBrowser(url); err != nil {
			logger.Warn("open browser", zap.Error(err))
		}
	}

	return monitor, nil
}

func printSummaries(w io.Writer, j job) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "Pipeline %s, %d ticks\n", j.loaded.Pipeline.Name(),
		j.counter.NumTicks())
	fmt.Fprintln(tw, "ELEMENT\tPROGRESSED\tIDLE\tFIRST\tLAST\tUTILIZATION")

	for _, s := range j.counter.Summaries() {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%.2f\n",
			s.Element, s.Progressed, s.Idle, s.FirstBusy, s.LastBusy,
			s.Utilization)
	}

	_ = tw.Flush()
}

type storeDump struct {
	Pipeline string        `json:"pipeline"`
	Element  string        `json:"element"`
	Packets  []flow.Packet `json:"packets"`
}

// printStores writes one JSON line per StoreSink, in declaration order.
func printStores(w io.Writer, loaded *loader.Loaded) error {
	for _, def := range loaded.Definition.Elements {
		sink, ok := loaded.Elements[def.Name].(*elements.StoreSink)
		if !ok {
			continue
		}

		line, err := sonic.MarshalString(storeDump{
			Pipeline: loaded.Pipeline.Name(),
			Element:  def.Name,
			Packets:  sink.Packets(),
		})
		if err != nil {
			return err
		}

		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	return nil
}
