// Command boundq-bench drives producers and consumers through a BoundedQueue
// and reports throughput together with how the overflow policy behaved.
//
// Usage:
//
//	boundq-bench -producers 8 -consumers 2 -capacity 256 -policy truncate-warn
//	boundq-bench -config scenarios.yaml -json results.json -progress
//	boundq-bench -nats -duration 5s
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/schollz/progressbar/v3"

	"github.com/a2y-d5l/boundq/internal/embeddednats"
	"github.com/a2y-d5l/boundq/observability"
	"github.com/a2y-d5l/boundq/queue"
)

type options struct {
	config   string
	jsonPath string
	progress bool
	verbose  bool
	base     Scenario
}

func parseFlags(fs *flag.FlagSet, args []string) (options, error) {
	var o options
	o.base = Scenario{Name: "default", Policy: queue.TruncateSilent}

	fs.StringVar(&o.config, "config", "", "YAML scenario file; flags supply defaults for every scenario")
	fs.DurationVar(&o.base.Duration, "duration", 2*time.Second, "How long producers run in each scenario")
	fs.IntVar(&o.base.Producers, "producers", 4, "Number of producer goroutines")
	fs.IntVar(&o.base.Consumers, "consumers", 4, "Number of consumer goroutines")
	fs.IntVar(&o.base.Capacity, "capacity", 1024, "Queue capacity; 0 means unbounded")
	fs.TextVar(&o.base.Policy, "policy", queue.TruncateSilent, "Overflow policy: truncate-silent, truncate-warn, reject-silent, reject-warn, reject-hard")
	fs.IntVar(&o.base.Batch, "batch", 8, "Items per Enqueue and per dequeue")
	fs.BoolVar(&o.base.NATS, "nats", false, "Route items through an embedded NATS server")
	fs.StringVar(&o.jsonPath, "json", "", "Append the session as JSON to this file")
	fs.BoolVar(&o.progress, "progress", false, "Display a progress bar on stderr")
	fs.BoolVar(&o.verbose, "v", false, "Log queue diagnostics to stderr")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	return o, nil
}

func (o options) scenarios() ([]Scenario, error) {
	if o.config == "" {
		if err := o.base.Validate(); err != nil {
			return nil, err
		}
		return []Scenario{o.base}, nil
	}

	f, err := os.Open(o.config)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadScenarios(f, o.base)
}

func main() {
	log := observability.NewLogger(observability.LoggerConfig{
		Level:  slog.LevelInfo,
		Format: observability.Text,
		Output: os.Stderr,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], log); err != nil {
		log.Error("benchmark failed", observability.ErrorField(err))
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, log observability.Logger) error {
	opts, err := parseFlags(flag.NewFlagSet("boundq-bench", flag.ContinueOnError), args)
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}
	scenarios, err := opts.scenarios()
	if err != nil {
		return err
	}

	runner := &Runner{}
	if opts.verbose {
		runner.Logger = observability.NewLogger(observability.LoggerConfig{
			Level:    slog.LevelDebug,
			Format:   observability.Text,
			Output:   os.Stderr,
			Sampling: &observability.SamplingConfig{Enabled: true, Rate: 1.0, MaxPerSecond: 20},
		})
	}

	if slices.ContainsFunc(scenarios, func(s Scenario) bool { return s.NATS }) {
		nc, shutdown, err := startNATS(ctx)
		if err != nil {
			return err
		}
		defer shutdown()
		runner.NATS = nc
		log.Info("embedded NATS ready", observability.NATSConnection(nc.ConnectedUrl()))
	}

	var bar *progressbar.ProgressBar
	if opts.progress {
		bar = progressbar.NewOptions(len(scenarios),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("scenarios"),
			progressbar.OptionShowCount(),
			progressbar.OptionSetPredictTime(true),
			progressbar.OptionClearOnFinish(),
		)
	}

	session := Session{
		SessionTime: time.Now().Format(time.RFC3339),
		SystemInfo:  gatherSystemInfo(),
	}
	for _, sc := range scenarios {
		if ctx.Err() != nil {
			break
		}
		if bar != nil {
			bar.Describe(sc.Name)
		}

		res, err := runner.Run(ctx, sc)
		if err != nil {
			return fmt.Errorf("scenario %q: %w", sc.Name, err)
		}
		session.Results = append(session.Results, res)

		if bar != nil {
			_ = bar.Add(1)
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}

	if err := printResults(os.Stdout, session.Results); err != nil {
		return err
	}

	if opts.jsonPath != "" {
		if err := appendSession(opts.jsonPath, session); err != nil {
			return fmt.Errorf("write %s: %w", opts.jsonPath, err)
		}
		log.Info("wrote results", slog.String("path", opts.jsonPath))
	}
	if ctx.Err() != nil {
		log.Warn("interrupted, results are partial")
	}
	return nil
}

func startNATS(ctx context.Context) (*nats.Conn, func(), error) {
	readyCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	srv, err := embeddednats.Run(readyCtx, nil)
	if err != nil {
		return nil, nil, err
	}
	shutdownServer := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.ShutdownAndWait(ctx, 5*time.Second)
	}

	nc, err := srv.Connect(nats.Name("boundq-bench"))
	if err != nil {
		shutdownServer()
		return nil, nil, err
	}
	return nc, func() {
		nc.Close()
		shutdownServer()
	}, nil
}
