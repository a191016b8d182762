package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/horizonengine/harness/internal/audio"
	"github.com/horizonengine/harness/internal/config"
	"github.com/horizonengine/harness/internal/demo"
	"github.com/horizonengine/harness/internal/engine"
	"github.com/horizonengine/harness/internal/jobs"
	"github.com/horizonengine/harness/internal/persist"
	"github.com/horizonengine/harness/internal/physics"
	"github.com/horizonengine/harness/internal/platform"
	"github.com/horizonengine/harness/internal/render"
	"github.com/horizonengine/harness/internal/scripting"
	"github.com/horizonengine/harness/internal/telemetry"
	"github.com/horizonengine/harness/internal/ui"
)

const (
	defaultConfigPath = "config/example.toml"
	demoParticles     = 4096
)

type rootOptions struct {
	configPath string
	envFile    string
	maxFrames  uint64
	script     string
	events     string
	noOverlay  bool
	metrics    string
	history    int
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "horizon",
		Short: "Run a Horizon engine example",
		Long: `Boot the engine subsystems in order, run the example's frame loop until
the window closes, then tear everything down in reverse.

Examples:
  horizon --config config/example.toml
  horizon --script scripts/spinner.lua --events config/events/resize.yaml
  horizon --max-frames 600
  horizon --history 10`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts, cmd.Flags().Changed("config"))
		},
	}
	cmd.Flags().StringVar(&opts.configPath, "config", defaultConfigPath, "path to the TOML config (env HORIZON_CONFIG)")
	cmd.Flags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before the config")
	cmd.Flags().Uint64Var(&opts.maxFrames, "max-frames", 0, "exit after this many presented frames (0 = config value)")
	cmd.Flags().StringVar(&opts.script, "script", "", "Lua application file or directory (overrides [script] path)")
	cmd.Flags().StringVar(&opts.events, "events", "", "YAML window event script (overrides [window] events_script)")
	cmd.Flags().BoolVar(&opts.noOverlay, "no-overlay", false, "hide the diagnostic overlay")
	cmd.Flags().IntVar(&opts.history, "history", 0, "list the last N recorded runs of the example and exit")
	cmd.Flags().StringVar(&opts.metrics, "metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9464)")
	return cmd
}

// loadDotEnv loads environment variables from path. Missing files are ignored.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func loadConfig(opts *rootOptions, explicit bool) (*config.Config, error) {
	path := opts.configPath
	if !explicit {
		if p := os.Getenv("HORIZON_CONFIG"); p != "" {
			path, explicit = p, true
		}
	}
	cfg, err := config.Load(path, explicit)
	if err != nil {
		return nil, err
	}
	if opts.maxFrames > 0 {
		cfg.Example.MaxFrames = opts.maxFrames
	}
	if opts.script != "" {
		cfg.Script.Path = opts.script
	}
	if opts.events != "" {
		cfg.Window.EventsScript = opts.events
	}
	if opts.noOverlay {
		cfg.Example.ShowOverlay = false
	}
	if dsn := os.Getenv("HORIZON_RECORD_DSN"); dsn != "" {
		cfg.Record.DSN = dsn
	}
	return cfg, nil
}

func run(ctx context.Context, opts *rootOptions, explicitConfig bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	// 1. Environment + config
	if err := loadDotEnv(opts.envFile); err != nil {
		return fmt.Errorf("load env: %w", err)
	}
	cfg, err := loadConfig(opts, explicitConfig)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Logger
	log, err := newLogger(cfg.Logging, cfg.Example.Name)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	if opts.history > 0 {
		return printHistory(cfg, opts.history, log)
	}

	printBanner(cfg.Example.Name)

	// 3. Collaborators
	printSection("Collaborators")
	var script *platform.EventScript
	if cfg.Window.EventsScript != "" {
		script, err = platform.LoadEventScript(cfg.Window.EventsScript)
		if err != nil {
			return err
		}
		printOK(fmt.Sprintf("window event script: %d polls", script.Len()))
	}

	metrics := telemetry.NewCollector("horizon")
	if opts.metrics != "" {
		srv := serveMetrics(opts.metrics, metrics, log)
		defer shutdownMetrics(srv, log)
		printOK("metrics on " + opts.metrics + "/metrics")
	}
	sched := jobs.NewScheduler(log)
	phys := physics.NewHeadless(log)
	deps := engine.Deps{
		Log:       log,
		Jobs:      sched,
		Windowing: platform.NewHeadless(script, log),
		Physics:   phys,
		Audio:     audio.NewSilent(log),
		UI:        ui.NewRecorder(float32(cfg.Example.InitialWidth), float32(cfg.Example.InitialHeight)),
		Metrics:   metrics,
		Render: func(flags render.CreateFlags) (render.Backend, error) {
			return render.CreateHeadless(render.HeadlessOptions{
				Flags:       flags,
				DeviceCount: cfg.Render.DeviceCount,
				MaxWidth:    cfg.Render.MaxExtent[0],
				MaxHeight:   cfg.Render.MaxExtent[1],
			}, log), nil
		},
	}

	// 4. Application
	var app engine.Application
	var luaApp *scripting.App
	if cfg.Script.Path != "" {
		luaApp, err = scripting.NewApp(cfg.Script.Path, log)
		if err != nil {
			return fmt.Errorf("lua app: %w", err)
		}
		defer luaApp.Close()
		app = luaApp
		printOK("Lua application loaded: " + cfg.Script.Path)
	} else {
		app = demo.New(sched, phys, demoParticles, log)
		printOK("built-in particle demo")
	}

	// 5. Engine
	host := &engine.Host{}
	e, err := host.NewEngine(engineConfig(cfg), deps, app)
	if err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	defer func() { _ = host.Release(e) }()
	if luaApp != nil {
		luaApp.OnExitRequest = e.RequestExit
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := e.Init(ctx); err != nil {
		return fmt.Errorf("init: %w", err)
	}
	printOK(fmt.Sprintf("engine initialized (%d subsystems)", len(e.Subsystems())))
	fmt.Println()

	// 6. Main loop
	started := time.Now()
	code := e.Run(ctx)
	e.Exit()
	ended := time.Now()

	summary := metrics.Summary()
	log.Info("run finished",
		zap.Int("status", code),
		zap.Uint64("frames", summary.Frames),
		zap.Uint64("skipped", summary.SkippedFrames),
		zap.Uint64("resizes", summary.Resizes),
		zap.Duration("elapsed", ended.Sub(started)))

	// 7. Optional run record
	if cfg.Record.DSN != "" {
		row := persist.NewRunRow(cfg.Example.Name, started, ended, code, summary, persist.ConfigHash(cfg.Raw))
		if err := recordRun(cfg.Record, row, log); err != nil {
			log.Warn("run not recorded", zap.Error(err))
		} else {
			log.Info("run recorded", zap.Stringer("run_id", row.ID))
		}
	}

	if code != 0 {
		return &exitCodeError{code: code}
	}
	return nil
}

func engineConfig(cfg *config.Config) engine.Config {
	return engine.Config{
		Name:             cfg.Example.Name,
		InitialWidth:     cfg.Example.InitialWidth,
		InitialHeight:    cfg.Example.InitialHeight,
		ShowOverlay:      cfg.Example.ShowOverlay,
		OverlayCorner:    cfg.Example.OverlayCorner,
		MaxFrames:        cfg.Example.MaxFrames,
		NumFibers:        cfg.Jobs.NumFibers,
		Workers:          cfg.Jobs.Workers,
		ValidationLayers: cfg.Render.ValidationLayers,
		DeviceIndex:      cfg.Render.DeviceIndex,
		Resizable:        cfg.Window.Resizable,
	}
}

func printHistory(cfg *config.Config, limit int, log *zap.Logger) error {
	if cfg.Record.DSN == "" {
		return errors.New("history: no recorder database (set [record] dsn or HORIZON_RECORD_DSN)")
	}
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Record.Timeout)
	defer cancel()

	db, err := persist.NewDB(ctx, cfg.Record, log)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()
	if _, err := db.Migrate(ctx); err != nil {
		return err
	}
	runs, err := persist.NewRunRepo(db).Recent(ctx, cfg.Example.Name, limit)
	if err != nil {
		return fmt.Errorf("history: %w", err)
	}

	printSection("Runs of " + cfg.Example.Name)
	if len(runs) == 0 {
		fmt.Println("  (none recorded)")
		return nil
	}
	for _, r := range runs {
		fmt.Printf("  %s  %s  status=%d frames=%d skipped=%d resizes=%d avg=%.2fms\n",
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.EndedAt.Sub(r.StartedAt).Round(time.Millisecond),
			r.ExitCode, r.Frames, r.SkippedFrames, r.Resizes, r.AvgFrameMS)
	}
	return nil
}

func recordRun(cfg config.RecordConfig, row persist.RunRow, log *zap.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	db, err := persist.NewDB(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()
	if _, err := db.Migrate(ctx); err != nil {
		return err
	}
	return persist.NewRunRepo(db).Insert(ctx, row)
}

func serveMetrics(addr string, c *telemetry.Collector, log *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server", zap.Error(err))
		}
	}()
	return srv
}

func shutdownMetrics(srv *http.Server, log *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn("metrics server shutdown", zap.Error(err))
	}
}
