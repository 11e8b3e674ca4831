// sensorstream samples local sensors and publishes each reading as JSON to
// one output provider (MQTT by default).
//
// Usage:
//
//	sensorstream -c configs/config.yaml [-p product.json] [-i]
//	sensorstream version
//
// SIGINT, SIGTERM and SIGQUIT stop the process cleanly. The exit status is 0
// after a clean stop and otherwise the code of the fatal error.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nerrad567/sensorstream/internal/fault"
	"github.com/nerrad567/sensorstream/internal/infrastructure/config"
	"github.com/nerrad567/sensorstream/internal/infrastructure/logging"
	"github.com/nerrad567/sensorstream/internal/infrastructure/metrics"
	"github.com/nerrad567/sensorstream/internal/infrastructure/mqtt"
	"github.com/nerrad567/sensorstream/internal/lifecycle"
	"github.com/nerrad567/sensorstream/internal/provider"
	"github.com/nerrad567/sensorstream/internal/pubstack"
	"github.com/nerrad567/sensorstream/internal/sensor"
	"github.com/nerrad567/sensorstream/internal/stream"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

const (
	// defaultConfigPath is used when neither -c nor SENSORSTREAM_CONFIG is set.
	defaultConfigPath = "configs/config.yaml"

	configEnv = "SENSORSTREAM_CONFIG"

	metricsShutdownTimeout = 2 * time.Second
)

// options are the command-line flags.
type options struct {
	configPath  string
	productPath string
	interactive bool
}

func main() {
	stop := lifecycle.NewStopSignal()

	err := newRootCmd(func(opts options) error {
		return serve(opts, stop, os.Stdin)
	}).Execute()

	code := fault.ExitCode(err)
	if code != 0 {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(code)
}

// newRootCmd builds the command tree. execute receives the parsed options;
// -c falls back to SENSORSTREAM_CONFIG, then to configs/config.yaml.
func newRootCmd(execute func(options) error) *cobra.Command {
	var opts options

	root := &cobra.Command{
		Use:   "sensorstream",
		Short: "Sample sensors and publish readings to a broker",
		Long: `sensorstream samples every enabled sensor on its own cadence and
publishes each reading as JSON through one output provider.

Built-in providers: mqtt, influxdb, victoriametrics, sqlite, kafka, redis,
nats, rabbitmq, console.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			if opts.configPath == "" {
				opts.configPath = os.Getenv(configEnv)
			}
			if opts.configPath == "" {
				opts.configPath = defaultConfigPath
			}
			return execute(opts)
		},
	}

	root.Flags().StringVarP(&opts.configPath, "config", "c", "", "configuration file (YAML)")
	root.Flags().StringVarP(&opts.productPath, "product", "p", "", "product file (JSON) selecting the transform stage")
	root.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "stop when enter is pressed")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "sensorstream %s (commit %s, built %s)\n", version, commit, date)
		},
	})

	return root
}

// serve installs the stop triggers and runs the pipeline until it stops.
func serve(opts options, stop *lifecycle.StopSignal, stdin io.Reader) error {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer signal.Stop(sigs)

	go func() {
		select {
		case <-sigs:
			stop.Stop()
		case <-stop.Done():
		}
	}()

	if opts.interactive {
		fmt.Fprintln(os.Stderr, "press enter to stop")
		go waitForEnter(stdin, stop)
	}

	return run(opts, stop)
}

// run is the actual application logic, separated from main for testability.
// It returns nil or fault.ErrInterrupted on a clean stop.
func run(opts options, stop *lifecycle.StopSignal) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting sensorstream",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		log.Error("cannot load configuration", "path", opts.configPath, "code", fault.CodeOf(err), "error", err)
		return err
	}

	log = logging.New(cfg.Logging, version)
	log.Info("configuration loaded", "path", opts.configPath, "level", cfg.Logging.Level)

	product := config.DefaultProduct()
	if opts.productPath != "" {
		if product, err = config.LoadProduct(opts.productPath); err != nil {
			log.Error("cannot load product file", "path", opts.productPath, "code", fault.CodeOf(err), "error", err)
			return err
		}
	}

	stage, err := pubstack.New(product.Stage)
	if err != nil {
		return err
	}
	if err := stage.Init(product.Options); err != nil {
		return err
	}

	out, err := provider.Builtin().Load(cfg.OutputProvider,
		log.Component("output", "provider", cfg.OutputProvider.Provider))
	if err != nil {
		log.Error("cannot load output provider", "code", fault.CodeOf(err), "error", err)
		return err
	}

	var rec stream.Recorder
	if cfg.Metrics.Enabled {
		m := metrics.New()
		srv, err := m.Serve(cfg.Metrics.Listen, log.Component("metrics"))
		if err != nil {
			return fmt.Errorf("starting metrics listener: %w", err)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				log.Warn("metrics shutdown", "error", err)
			}
		}()

		if pc, ok := out.(*mqtt.PublishClient); ok {
			pc.SetMetrics(m)
		}
		rec = m
	}

	publisher := stream.NewPublisher(out, rec)
	loops, err := buildLoops(cfg, stage, publisher, rec, log)
	if err != nil {
		log.Error("cannot start sensors", "code", fault.CodeOf(err), "error", err)
		return err
	}
	if len(loops) == 0 {
		log.Warn("no sensor has run: true, only the output provider will be opened")
	}

	runner := &stream.Runner{
		Output:       out,
		Loops:        loops,
		Stage:        stage,
		PumpInterval: product.Interval(),
		Stop:         stop,
		Log:          log.Component("runner"),
	}
	err = runner.Run()

	if fault.ExitCode(err) == 0 {
		log.Info("sensorstream stopped")
	} else {
		log.Error("sensorstream stopped", "code", fault.CodeOf(err), "error", err)
	}
	return err
}

// buildLoops opens the reader of every enabled sensor.
func buildLoops(cfg *config.Config, stage pubstack.Stage, pub *stream.Publisher, rec stream.Recorder, log *logging.Logger) ([]*stream.Loop, error) {
	loops := make([]*stream.Loop, 0, len(cfg.Sensors))
	policy := stream.PolicyFromConfig(cfg.Publish)

	for _, s := range cfg.Sensors {
		if !s.Run {
			log.Info("sensor disabled", "sensor", s.Name)
			continue
		}

		reader, err := sensor.Open(s.Name, s.Driver, s.Configuration)
		if err != nil {
			return nil, fmt.Errorf("sensor %s: %w", s.Name, err)
		}

		loops = append(loops, &stream.Loop{
			Name:          s.Name,
			Reader:        reader,
			Interval:      s.Interval(),
			Stage:         stage,
			Publisher:     pub,
			Policy:        policy,
			Log:           log.Component("sensor", "sensor", s.Name, "driver", s.Driver),
			Metrics:       rec,
			SampleRetries: cfg.Sampling.MaxRetries,
			SampleDelay:   cfg.Sampling.RetryDelayDuration(),
			Verbose:       cfg.Prog.Verbose,
		})
	}
	return loops, nil
}

// waitForEnter stops the process when a line is read from r.
func waitForEnter(r io.Reader, stop *lifecycle.StopSignal) {
	if _, err := bufio.NewReader(r).ReadString('\n'); err != nil && !errors.Is(err, io.EOF) {
		return
	}
	stop.Stop()
}
