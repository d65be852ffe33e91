package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"launchtray/bridge"
	"launchtray/config"
	"launchtray/ctxlog"
	"launchtray/model"
	"launchtray/store"
	"launchtray/telemetry"
	"launchtray/tray"
)

// fetchTimeout bounds every configuration and manifest fetch.
const fetchTimeout = 30 * time.Second

// clicker is implemented by platforms that take tray clicks from the
// satellite bus instead of a native tray.
type clicker interface {
	Click(x, y int)
}

// App is the running tray host.
type App struct {
	settings Settings
	platform Platform
	logger   *slog.Logger

	tray     *tray.Tray
	loader   *config.Loader
	launcher *Launcher

	bridgeServer *bridge.Server
	hub          *bridge.Hub
	httpServer   *http.Server
	satellite    net.Listener

	closeStore        func() error
	shutdownTelemetry func(context.Context) error

	// loaded closes once the configuration stream has been consumed.
	loaded chan struct{}
}

// newApp builds the host: store, tray, launcher, loader, bridge server and,
// when configured, the satellite bus. Nothing is served until start.
func newApp(ctx context.Context, settings Settings, platform Platform, logger *slog.Logger) (*App, error) {
	shutdownTelemetry, err := telemetry.Setup(ctx, "launchtray", settings.OtelEndpoint)
	if err != nil {
		return nil, fmt.Errorf("telemetry: %w", err)
	}

	st, closeStore, err := store.Open(settings.Store, settings.StorePath)
	if err != nil {
		_ = shutdownTelemetry(ctx)
		return nil, fmt.Errorf("open store: %w", err)
	}

	app := &App{
		settings:          settings,
		platform:          platform,
		logger:            logger,
		closeStore:        closeStore,
		shutdownTelemetry: shutdownTelemetry,
		loaded:            make(chan struct{}),
	}
	platform.SetTrayClickHandler(app.onTrayClick)

	fetcher := config.NewSchemeFetcher(&http.Client{Timeout: fetchTimeout})
	app.launcher = NewLauncher(fetcher, platform.OpenURL, launchLogDir(), logger.With("component", "launcher"))
	app.loader = config.New(config.Options{
		Fetcher:    fetcher,
		Logger:     logger.With("component", "config"),
		MaxDepth:   settings.MaxDepth,
		DedupeRefs: settings.DedupeRefs,
	})

	app.tray, err = tray.New(ctx, tray.Deps{
		Runner:   app.launcher,
		Store:    st,
		Logger:   logger.With("component", "tray"),
		OnStyle:  app.applyStyle,
		OnChange: app.redraw,
	})
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("build tray: %w", err)
	}

	app.bridgeServer, err = bridge.NewServer(settings.SocketPath, app.tray, logger.With("component", "bridge"))
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("start bridge server: %w", err)
	}

	if settings.SatelliteAddr != "" {
		ln, err := net.Listen("tcp", settings.SatelliteAddr)
		if err != nil {
			app.cleanup()
			return nil, fmt.Errorf("listen satellite %s: %w", settings.SatelliteAddr, err)
		}
		app.satellite = ln
		app.hub = bridge.NewHub(logger)
		bridge.Attach(ctx, app.hub, app.tray, logger.With("component", "satellite"))
		if c, ok := platform.(clicker); ok {
			app.hub.Subscribe(bridge.TopicTrayClick, func(msg bridge.Message) {
				var pos struct{ X, Y int }
				if err := json.Unmarshal(msg.Data, &pos); err != nil {
					logger.Warn("Bad tray click", "sender", msg.Sender, "error", err)
					return
				}
				c.Click(pos.X, pos.Y)
			})
		}
		app.httpServer = &http.Server{
			Handler:           app.routes(),
			ReadHeaderTimeout: 5 * time.Second,
		}
	}
	return app, nil
}

// start serves the bridge and satellite bus and begins loading the
// configuration in the background.
func (a *App) start(ctx context.Context) {
	logger := ctxlog.FromContext(ctx)

	go func() {
		if err := a.bridgeServer.Serve(); err != nil && !errors.Is(err, net.ErrClosed) {
			logger.Error("Bridge server stopped", "error", err)
		}
	}()
	logger.Info("Bridge server started", "socket", a.bridgeServer.Addr())

	if a.httpServer != nil {
		go func() {
			if err := a.httpServer.Serve(a.satellite); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Satellite server stopped", "error", err)
			}
		}()
		logger.Info("Satellite bus listening", "addr", a.satellite.Addr().String())
	}

	go func() {
		defer close(a.loaded)
		a.tray.Consume(ctx, a.loader.Load(ctx, a.settings.ConfigRef))
	}()
}

// routes serves the tray page, the satellite websocket and launches.
func (a *App) routes() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /ws", a.hub)
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		html, err := renderTrayHTML(a.tray.Snapshot(), true)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(html))
	})
	mux.HandleFunc("GET /snapshot", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(a.tray.Snapshot())
	})
	mux.HandleFunc("POST /run", func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("entry")
		if err := a.tray.Run(r.Context(), id); err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, tray.ErrUnknownEntry) {
				status = http.StatusNotFound
			}
			http.Error(w, err.Error(), status)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	return mux
}

// applyStyle projects the root style onto the host window and tray icon.
func (a *App) applyStyle(style model.StyleConfig) {
	a.platform.DispatchToMain(func() {
		if style.WindowTitle != "" {
			a.platform.SetTitle(style.WindowTitle)
		}
		if style.SystemTrayIcon != "" {
			a.platform.SetTrayIcon(style.SystemTrayIcon)
		}
	})
}

// redraw pushes the current tray page to the window and tells satellites.
func (a *App) redraw() {
	snap := a.tray.Snapshot()
	html, err := renderTrayHTML(snap, a.hub != nil)
	if err != nil {
		a.logger.Error("Failed to render tray page", "error", err)
		return
	}
	a.platform.DispatchToMain(func() {
		a.platform.ShowHTML(html)
	})
	if a.hub != nil {
		a.hub.Publish(bridge.Message{Topic: bridge.TopicTrayChanged})
	}
}

// onTrayClick shows the tray window where the tray icon was clicked.
func (a *App) onTrayClick(x, y int) {
	a.platform.DispatchToMain(func() {
		a.platform.ShowTray(x, y)
	})
}

func (a *App) cleanup() {
	if a.tray != nil {
		a.tray.WaitLaunches()
	}
	if a.launcher != nil {
		a.launcher.StopAll()
	}
	if a.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_ = a.httpServer.Shutdown(ctx)
		cancel()
	} else if a.satellite != nil {
		_ = a.satellite.Close()
	}
	if a.hub != nil {
		a.hub.Close()
	}
	if a.bridgeServer != nil {
		a.bridgeServer.Close()
	}
	if a.closeStore != nil {
		if err := a.closeStore(); err != nil {
			a.logger.Error("Failed to close store", "error", err)
		}
	}
	if a.shutdownTelemetry != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.shutdownTelemetry(ctx); err != nil {
			a.logger.Error("Failed to flush traces", "error", err)
		}
		cancel()
	}
}

// runTrayApp runs the tray host until the platform loop exits or the process
// is interrupted.
func runTrayApp(settings Settings, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = ctxlog.WithLogger(ctx, logger)

	logger.Info("Starting tray app", "config", settings.ConfigRef, "store", settings.Store)

	platform := NewPlatform(settings.HTMLPath, logger.With("component", "platform"))
	platform.Init()

	app, err := newApp(ctx, settings, platform, logger)
	if err != nil {
		return err
	}
	defer func() {
		stop()
		<-app.loaded
		app.cleanup()
	}()

	rgba, w, h := CreateIconRGBA()
	platform.SetupTray(rgba, w, h)

	app.start(ctx)
	go func() {
		<-ctx.Done()
		platform.Quit()
	}()

	logger.Info("Entering run loop")
	platform.Run()
	logger.Info("Tray app stopped")
	return nil
}
