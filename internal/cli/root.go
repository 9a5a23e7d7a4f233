// Package cli wires the orchestrator components into the operator command
// tree: start, stop, status, smoke, serve.
package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"stackctl/internal/common/fsutil"
	"stackctl/internal/config"
	"stackctl/internal/health"
	"stackctl/internal/smoke"
	"stackctl/internal/status"
	"stackctl/internal/supervisor"
)

// Options carries the persistent flag values.
type Options struct {
	ConfigPath   string
	AppRoot      string
	ScratchDir   string
	LogLevel     string
	ProbeTimeout time.Duration
	SmokeTimeout time.Duration

	Addr        string
	CORSEnabled bool
	CORSOrigins []string
}

// defaultOptions seeds flags from the environment, the same flag > env >
// file precedence the rest of the config layer follows.
func defaultOptions() *Options {
	return &Options{
		AppRoot:      envStr("STACKCTL_APP_ROOT", "~/ai-stack/services"),
		ScratchDir:   envStr("STACKCTL_SCRATCH_DIR", "~/.local/state/stackctl"),
		LogLevel:     envStr("STACKCTL_LOG_LEVEL", "info"),
		ProbeTimeout: health.DefaultTimeout,
		SmokeTimeout: smoke.DefaultTimeout,
		Addr:         envStr("STACKCTL_ADDR", ":8100"),
	}
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Execute runs the CLI. Start/stop/status always complete with a per-name
// outcome table; only smoke propagates a failure for scripted gating.
func Execute(args []string) error {
	root := buildRoot(defaultOptions())
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return err
	}
	return nil
}

func buildRoot(opts *Options) *cobra.Command {
	root := &cobra.Command{
		Use:           "stackctl",
		Short:         "Supervise the local inference service stack",
		Long:          "stackctl decides which inference services run, starts them in a contention-avoiding order, tracks their liveness, and tears them down cleanly.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&opts.ConfigPath, "config", envStr("STACKCTL_CONFIG", ""), "Path to a yaml/json/toml config file")
	pf.StringVar(&opts.AppRoot, "app-root", opts.AppRoot, "Directory containing one subdirectory per service")
	pf.StringVar(&opts.ScratchDir, "scratch-dir", opts.ScratchDir, "Directory for handle files and log sinks")
	pf.StringVar(&opts.LogLevel, "log-level", opts.LogLevel, "Log level: debug|info|warn|error")
	pf.DurationVar(&opts.ProbeTimeout, "probe-timeout", opts.ProbeTimeout, "Time bound for each health probe")

	startCmd := &cobra.Command{
		Use:   "start [service...]",
		Short: "Start the resolved service set in startup-weight order",
		Example: "  stackctl start\n  stackctl start tts embeddings\n  STACKCTL_SERVICES=all stackctl start",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(opts)
			if err != nil {
				return err
			}
			act := app.resolve(args)
			results := app.sup.StartMany(act.Names())
			printResults(cmd.OutOrStdout(), results)
			return nil
		},
	}

	stopCmd := &cobra.Command{
		Use:   "stop [service...]",
		Short: "Stop the resolved service set, heavy services first",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(opts)
			if err != nil {
				return err
			}
			act := app.resolve(args)
			results := app.sup.StopMany(act.Names())
			printResults(cmd.OutOrStdout(), results)
			return nil
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show process, health, and GPU state for every registered service",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(opts)
			if err != nil {
				return err
			}
			resp := app.reporter.Collect(cmd.Context(), app.resolve(nil))
			status.Render(cmd.OutOrStdout(), resp)
			return nil
		},
	}

	smokeCmd := &cobra.Command{
		Use:   "smoke [service...]",
		Short: "Submit one synthetic payload per reachable service",
		Long:  "Exercises each reachable service with a minimal synthetic payload and shape-checks the response. Exits nonzero if any exercised service fails, so it can gate scripts.",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(opts)
			if err != nil {
				return err
			}
			runner := smoke.New(app.prober, opts.SmokeTimeout, app.log)
			results := runner.Run(cmd.Context(), app.resolve(args).Names())
			printSmoke(cmd.OutOrStdout(), results)
			if smoke.Failed(results) {
				return fmt.Errorf("smoke test failed")
			}
			return nil
		},
	}
	smokeCmd.Flags().DurationVar(&opts.SmokeTimeout, "timeout", opts.SmokeTimeout, "Time bound for each smoke submission")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Expose the status view over HTTP (read-only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(opts)
			if err != nil {
				return err
			}
			return app.serve(cmd.Context(), opts)
		},
	}
	serveCmd.Flags().StringVar(&opts.Addr, "addr", opts.Addr, "HTTP listen address, e.g. :8100")
	serveCmd.Flags().BoolVar(&opts.CORSEnabled, "cors-enabled", false, "Enable CORS middleware")
	serveCmd.Flags().StringSliceVar(&opts.CORSOrigins, "cors-origins", nil, "Allowed CORS origins")

	root.AddCommand(startCmd, stopCmd, statusCmd, smokeCmd, serveCmd)
	return root
}

// app holds the constructed component graph for one invocation.
type app struct {
	opts     *Options
	fileCfg  *config.File
	sup      *supervisor.Supervisor
	prober   *health.Prober
	reporter *status.Reporter
	log      zerolog.Logger
}

// resolve builds the immutable activation set for this invocation. The env
// lookup is handed in here, at the boundary; nothing deeper reads ambient
// state.
func (a *app) resolve(explicit []string) config.Activation {
	return config.Resolve(explicit, os.LookupEnv, a.fileCfg)
}

func newApp(opts *Options) (*app, error) {
	log, err := newLogger(opts.LogLevel)
	if err != nil {
		return nil, err
	}

	var fileCfg *config.File
	if opts.ConfigPath != "" {
		cfg, err := config.Load(opts.ConfigPath)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		fileCfg = &cfg
		if cfg.AppRoot != "" {
			opts.AppRoot = cfg.AppRoot
		}
		if cfg.ScratchDir != "" {
			opts.ScratchDir = cfg.ScratchDir
		}
		if cfg.ProbeTimeoutMS > 0 {
			opts.ProbeTimeout = time.Duration(cfg.ProbeTimeoutMS) * time.Millisecond
		}
	}

	appRoot, err := fsutil.ExpandHome(opts.AppRoot)
	if err != nil {
		return nil, err
	}
	scratch, err := fsutil.ExpandHome(opts.ScratchDir)
	if err != nil {
		return nil, err
	}

	layout := supervisor.Layout{AppRoot: appRoot}
	if fileCfg != nil {
		layout.PythonBin = fileCfg.PythonBin
		layout.LibDonors = fileCfg.LibDonors
	}
	store := supervisor.NewStore(scratch)
	sup := supervisor.New(layout, store, log)
	prober := health.New(store, opts.ProbeTimeout)

	return &app{
		opts:     opts,
		fileCfg:  fileCfg,
		sup:      sup,
		prober:   prober,
		reporter: status.New(store, prober),
		log:      log,
	}, nil
}

// serve runs the read-only HTTP surface until interrupted.
func (a *app) serve(ctx context.Context, opts *Options) error {
	return runServer(ctx, a, opts)
}
