package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/ayusman/posecue/internal/app"
	"github.com/ayusman/posecue/internal/audio"
	"github.com/ayusman/posecue/internal/capture"
	"github.com/ayusman/posecue/internal/config"
	"github.com/ayusman/posecue/internal/cue"
	"github.com/ayusman/posecue/internal/log"
	"github.com/ayusman/posecue/internal/plugin"
	"github.com/ayusman/posecue/internal/pose"
	"github.com/ayusman/posecue/internal/render"
	"github.com/ayusman/posecue/internal/server"
	"github.com/ayusman/posecue/internal/store"
	"github.com/ayusman/posecue/internal/tray"
	"github.com/ayusman/posecue/web"
)

func init() {
	// Native windows and the tray must be driven from the main thread
	runtime.LockOSThread()
}

func main() {
	cfg, configPath, err := loadWithFlags(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "posecue: %v\n", err)
		os.Exit(2)
	}

	log.Init(cfg.LogLevel)
	log.Info("posecue starting", "config", configPath)

	if err := run(cfg); err != nil {
		log.Error("posecue failed", "err", err)
		os.Exit(1)
	}
}

// loadWithFlags parses args, loads the config file they name and applies
// the remaining flags on top. Flags that were not given leave the file's
// values alone.
func loadWithFlags(args []string) (*config.Config, string, error) {
	fs := flag.NewFlagSet("posecue", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to YAML config file")
	debug := fs.Bool("debug", false, "enable debug logging")
	addr := fs.String("addr", "", "HTTP listen address (overrides config)")
	useTray := fs.Bool("tray", false, "show a system tray icon (disables the window)")
	useWindow := fs.Bool("window", true, "show the rendered output in a window")
	if err := fs.Parse(args); err != nil {
		return nil, "", err
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			return nil, "", err
		}
	}

	if *debug {
		cfg.LogLevel = "debug"
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
		cfg.Server.Enabled = true
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "tray":
			cfg.Display.Tray = *useTray
		case "window":
			cfg.Display.Window = *useWindow
		}
	})

	// Overrides go through the same checks as the file
	if err := config.Validate(cfg); err != nil {
		return nil, "", err
	}
	return cfg, *configPath, nil
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	thresholds, err := st.Settings().LoadThresholds(cfg.Cue)
	if err != nil {
		log.Warn("ignoring stored thresholds", "err", err)
		thresholds = cfg.Cue
	}
	enabled, err := st.Settings().LoadEnabled(true)
	if err != nil {
		log.Warn("ignoring stored enabled flag", "err", err)
	}

	canvas := render.NewCanvas(cfg.Camera.Width, cfg.Camera.Height)
	defer canvas.Close()

	a := app.New(app.Config{
		Camera:     capture.NewCamera(cfg.Camera),
		Detector:   newDetector(cfg.Pose.Options),
		Surface:    canvas,
		Store:      st,
		Cues:       loadCues(cfg.Audio),
		Extractor:  cfg.Pose.Extractor,
		Thresholds: thresholds,
		Stride:     cfg.Effect.HalftoneStride,
		TickHz:     cfg.TickHz,
		Stream:     cfg.Server.Enabled,
	})
	a.SetEnabled(enabled)

	hub := server.NewHub()
	defer hub.Close()
	a.OnTick(hub.PublishStatus)
	a.OnCue(hub.PublishCue)

	if disp := startHooks(cfg); disp != nil {
		defer disp.Close()
		a.OnCue(func(e cue.Event, d float64) { disp.Dispatch(e, d, a.Thresholds()) })
	}

	var srv *server.Server
	if cfg.Server.Enabled {
		srv = server.New(server.Config{
			Static:     web.FS(),
			Store:      st,
			Controller: a,
			Frames:     a.Output(),
			Hub:        hub,
		})
		go func() {
			if err := srv.ListenAndServe(cfg.Server.Addr); err != nil {
				log.Error("server failed", "err", err)
				stop()
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
	}

	if cfg.Display.Window {
		win := render.NewWindow(cfg.Display.Title)
		defer win.Close()
		a.AddPresenter(app.PresenterFunc(func(render.Surface) bool {
			return win.Show(canvas)
		}))
	}

	if cfg.Display.Tray {
		return runWithTray(ctx, a, st, cfg)
	}

	// The loop owns the main thread so the window can pump its events
	return a.Run(ctx)
}

// runWithTray gives the main thread to the tray and runs the loop in the
// background.
func runWithTray(ctx context.Context, a *app.App, st *store.Store, cfg *config.Config) error {
	t := tray.New()
	t.SetEnabled(a.IsEnabled())
	t.OnToggle(func(enabled bool) {
		a.SetEnabled(enabled)
		if err := st.Settings().SaveEnabled(enabled); err != nil {
			log.Warn("failed to persist enabled flag", "err", err)
		}
	})
	t.OnDashboard(func() {
		if cfg.Server.Enabled {
			openBrowser("http://" + cfg.Server.Addr)
		}
	})
	a.OnCue(func(e cue.Event, _ float64) { t.SetLastCue(e.String()) })
	a.OnTick(func(s app.Status) { t.SetSignal(s.Signal, s.HasSignal) })

	if err := a.Start(); err != nil {
		return err
	}
	defer a.Stop()

	go func() {
		select {
		case <-ctx.Done():
		case <-a.Done():
		}
		t.Quit()
	}()

	t.Run()
	return nil
}

// startHooks discovers cue hooks. It returns nil when there are none.
func startHooks(cfg *config.Config) *plugin.Dispatcher {
	dir, err := cfg.HooksDir()
	if err != nil {
		log.Warn("hooks disabled", "err", err)
		return nil
	}
	m := plugin.NewManager(dir)
	if err := m.Discover(); err != nil {
		log.Warn("failed to discover hooks", "dir", dir, "err", err)
		return nil
	}
	if len(m.List()) == 0 {
		return nil
	}
	timeout := time.Duration(cfg.Hooks.TimeoutMs) * time.Millisecond
	return plugin.NewDispatcher(m, plugin.NewExecutor(timeout))
}

func openStore(cfg *config.Config) (*store.Store, error) {
	dbPath, err := cfg.StorePath()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	st, err := store.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}
	log.Info("store opened", "path", dbPath)

	if days := cfg.Store.RetentionDays; days > 0 {
		removed, err := st.Events().DeleteBefore(time.Now().AddDate(0, 0, -days))
		if err != nil {
			log.Warn("failed to prune cue history", "err", err)
		} else if removed > 0 {
			log.Info("pruned cue history", "removed", removed, "retention_days", days)
		}
	}
	return st, nil
}

// newDetector prefers the PoseNet service and falls back to a detector
// that never sees anyone, so the camera view still works.
func newDetector(opts pose.Config) pose.Detector {
	d, err := pose.NewPoseNetDetector(opts)
	if err != nil {
		log.Warn("PoseNet not available, pose tracking disabled", "err", err)
		return pose.NewMockDetector()
	}
	return d
}

// loadCues loads the cue sounds. A sound that fails to load is logged and
// left silent.
func loadCues(cfg config.AudioConfig) audio.Cues {
	var cues audio.Cues
	if !cfg.Enabled {
		return cues
	}
	if cfg.Near != "" {
		if p, err := audio.LoadSound(cfg.Near); err != nil {
			log.Warn("near cue unavailable", "path", cfg.Near, "err", err)
		} else {
			cues.Near = p
		}
	}
	if cfg.Far != "" {
		if p, err := audio.LoadSound(cfg.Far); err != nil {
			log.Warn("far cue unavailable", "path", cfg.Far, "err", err)
		} else {
			cues.Far = p
		}
	}
	return cues
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		log.Warn("failed to open browser", "url", url, "err", err)
	}
}
