// Package main is the entry point for the confabd daemon.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/confab-io/confab/internal/config"
	"github.com/confab-io/confab/internal/daemon/bridge"
	"github.com/confab-io/confab/internal/daemon/dispatch"
	"github.com/confab-io/confab/internal/daemon/router"
	"github.com/confab-io/confab/internal/daemon/server"
	"github.com/confab-io/confab/internal/daemon/shell"
	"github.com/confab-io/confab/internal/daemon/shortcut"
	"github.com/confab-io/confab/internal/daemon/store"
	"github.com/confab-io/confab/internal/daemon/tray"
	"github.com/confab-io/confab/internal/daemon/watcher"
	"github.com/confab-io/confab/internal/daemon/window"
	"github.com/confab-io/confab/internal/models"
	"github.com/confab-io/confab/internal/telemetry"
)

// shellReadyTimeout bounds the wait for the shell's hello at startup.
// The shell owns the main window; without it the daemon is useless,
// so expiry is fatal.
const shellReadyTimeout = 30 * time.Second

func main() {
	// Parse flags
	foreground := flag.Bool("foreground", false, "Run in foreground (no system tray)")
	port := flag.Int("port", 0, "Port to listen on (0 for dynamic allocation)")
	flag.Parse()

	log.SetPrefix("[confabd] ")
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	// Ensure global directory exists
	if err := config.EnsureGlobalDir(); err != nil {
		log.Fatalf("Failed to create global directory: %v", err)
	}

	// Check if daemon is already running
	running, info, err := config.IsDaemonRunning()
	if err != nil {
		log.Fatalf("Failed to check daemon status: %v", err)
	}
	if running {
		log.Fatalf("Daemon already running on port %d (PID %d)", info.Port, info.PID)
	}

	if *foreground {
		log.Println("Running in foreground mode (no system tray)")
		runForeground(*port)
	} else {
		log.Println("Running in background mode (with system tray)")
		runWithTray(*port)
	}
}

// services are the running daemon components, in the order they are
// torn down.
type services struct {
	store     *store.Store
	bridge    *bridge.Bridge
	windows   *window.Controller
	server    *server.Server
	router    *router.Router
	shell     *shell.Process
	shortcuts *shortcut.Manager
	watcher   *watcher.Watcher
	telemetry *telemetry.Client
	cancel    context.CancelFunc
}

// startServices brings the whole daemon up. Failures here are fatal:
// nothing works without the server, and nothing works without the
// shell's window. Shortcut registration is the one non-fatal step.
func startServices(port int) *services {
	settings, err := config.LoadSettings()
	if err != nil {
		log.Fatalf("Failed to load settings: %v", err)
	}

	st := store.New()
	br := bridge.New()
	windows := window.NewController(br)
	dispatcher := dispatch.New(st, windows)

	srv, err := server.New(port, server.Deps{
		Store:      st,
		Windows:    windows,
		Dispatcher: dispatcher,
		Bridge:     br,
	})
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	daemonInfo := models.NewDaemonInfo("localhost", srv.Port(), os.Getpid())
	if err := config.SaveDaemonInfo(daemonInfo); err != nil {
		log.Fatalf("Failed to write daemon info: %v", err)
	}

	log.Printf("Daemon started on port %d (PID %d)", srv.Port(), os.Getpid())

	go func() {
		if err := srv.Serve(); err != nil {
			log.Printf("Server error: %v", err)
			server.RequestShutdown()
		}
	}()

	// Launch the webview shell that owns the window. It dials back on
	// the bridge socket; losing it later is survivable (the bridge
	// reports unavailable until it reconnects), not having it at
	// startup is not.
	proc, err := shell.Launch(shell.Options{
		Path:       settings.Shell.Path,
		Args:       settings.Shell.Args,
		DaemonPort: srv.Port(),
		Theme:      settings.Appearance.Theme,
	})
	if err != nil {
		_ = config.RemoveDaemonInfo()
		log.Fatalf("Failed to launch shell: %v", err)
	}

	readyCtx, cancelReady := context.WithTimeout(context.Background(), shellReadyTimeout)
	err = br.WaitReady(readyCtx)
	cancelReady()
	if err != nil {
		proc.Stop()
		_ = config.RemoveDaemonInfo()
		log.Fatalf("Shell did not connect within %s: %v", shellReadyTimeout, err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	rt := router.New(windows)
	go rt.Run(ctx)

	// Global shortcut. Registration failure means the combination is
	// taken (or the platform refused); the daemon runs without it.
	shortcuts := shortcut.NewManager(rt.Dispatch)
	if settings.Shortcut.Enabled {
		if err := shortcuts.Register(settings.Shortcut.Binding); err != nil {
			log.Printf("Shortcut registration failed, continuing without it: %v", err)
		}
	}

	svc := &services{
		store:     st,
		bridge:    br,
		windows:   windows,
		server:    srv,
		router:    rt,
		shell:     proc,
		shortcuts: shortcuts,
		cancel:    cancel,
	}

	svc.watcher = startSettingsWatcher(ctx, shortcuts)
	svc.telemetry = startTelemetry(settings)

	srv.StartUpdateCheck()

	return svc
}

// startSettingsWatcher applies settings edits without a restart.
// Currently that means rebinding the global shortcut.
func startSettingsWatcher(ctx context.Context, shortcuts *shortcut.Manager) *watcher.Watcher {
	w, err := watcher.New()
	if err != nil {
		log.Printf("Settings watcher unavailable: %v", err)
		return nil
	}
	if err := w.Start(); err != nil {
		log.Printf("Settings watcher failed to start: %v", err)
		w.Stop()
		return nil
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-w.Events():
				settings, err := config.LoadSettings()
				if err != nil {
					log.Printf("Failed to reload settings: %v", err)
					continue
				}
				applyShortcutSettings(shortcuts, settings)
			}
		}
	}()

	return w
}

// applyShortcutSettings reconciles the registered shortcut with the
// settings file. A failed rebind leaves the binding absent, same as
// at startup.
func applyShortcutSettings(shortcuts *shortcut.Manager, settings *models.Settings) {
	if !settings.Shortcut.Enabled {
		shortcuts.Unregister()
		return
	}
	if settings.Shortcut.Binding == shortcuts.Binding() {
		return
	}
	if err := shortcuts.Rebind(settings.Shortcut.Binding); err != nil {
		log.Printf("Shortcut rebind failed, continuing without it: %v", err)
	}
}

// startTelemetry starts opt-in usage reporting. Returns nil when
// telemetry is off.
func startTelemetry(settings *models.Settings) *telemetry.Client {
	if telemetry.EnsureAnonymousID(settings) {
		if err := config.SaveSettings(settings); err != nil {
			log.Printf("Failed to persist telemetry id: %v", err)
		}
	}
	client := telemetry.New(settings.Telemetry)
	if client != nil {
		client.DaemonStarted()
	}
	return client
}

// stop tears the daemon down gracefully. The tray quit menu item never
// reaches this: the router exits the process directly.
func (s *services) stop() {
	s.cancel()

	if s.watcher != nil {
		s.watcher.Stop()
	}
	s.shortcuts.Unregister()
	if s.telemetry != nil {
		s.telemetry.Close()
	}
	if s.shell != nil {
		s.shell.Stop()
	}
	s.bridge.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	if err := config.RemoveDaemonInfo(); err != nil {
		log.Printf("Failed to remove daemon info: %v", err)
	}

	fmt.Println("Daemon stopped")
}

// runForeground runs the daemon without a system tray, blocking on signals.
func runForeground(port int) {
	svc := startServices(port)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Printf("Received signal %v, shutting down...", sig)

	svc.stop()
}

// runWithTray runs the daemon with a system tray icon on the main goroutine.
// systray.Run must occupy the main goroutine on macOS (Cocoa requirement).
func runWithTray(port int) {
	var svc *services

	onStart := func() {
		svc = startServices(port)

		// Handle OS signals — quit tray on SIGINT/SIGTERM
		go func() {
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			sig := <-sigCh
			log.Printf("Received signal %v, shutting down...", sig)
			tray.Quit()
		}()
	}

	onExit := func() {
		if svc != nil {
			svc.stop()
		}
	}

	// The tray needs its state and dispatch hooks before the services
	// exist, so both defer to svc lazily: it is set inside onStart,
	// which the tray calls before any menu interaction is possible.
	dispatchFn := func(a router.Action) {
		if svc != nil {
			svc.router.Dispatch(a)
		}
	}
	lazyState := &lazyTrayState{getSvc: func() *services { return svc }}

	// This blocks the main goroutine until tray exits.
	tray.Run(lazyState, dispatchFn, onStart, onExit)
}

// lazyTrayState wraps server.TrayState with lazy initialization.
// The services are nil at tray startup and created inside onStart.
type lazyTrayState struct {
	getSvc func() *services
}

func (l *lazyTrayState) Port() int {
	if svc := l.getSvc(); svc != nil {
		return server.NewTrayState(svc.server).Port()
	}
	return 0
}

func (l *lazyTrayState) ShellConnected() bool {
	if svc := l.getSvc(); svc != nil {
		return server.NewTrayState(svc.server).ShellConnected()
	}
	return false
}

func (l *lazyTrayState) WindowVisible() (visible, known bool) {
	if svc := l.getSvc(); svc != nil {
		return server.NewTrayState(svc.server).WindowVisible()
	}
	return false, false
}

func (l *lazyTrayState) ConversationCount() int {
	if svc := l.getSvc(); svc != nil {
		return server.NewTrayState(svc.server).ConversationCount()
	}
	return 0
}
