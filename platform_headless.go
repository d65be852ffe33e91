package main

import (
	"log/slog"
	"os"
	"sync"
)

// HeadlessPlatform is a Platform without a native window. It runs dispatched
// work on its own loop and writes the tray page to a file when a path is set.
type HeadlessPlatform struct {
	htmlPath string
	logger   *slog.Logger
	// open launches a URL; defaults to the OS opener.
	open func(url string) error

	tasks    chan func()
	quit     chan struct{}
	quitOnce sync.Once

	mu      sync.Mutex
	onClick func(x, y int)
	title   string
	icon    string
	html    string
	shown   [2]int
}

// NewPlatform returns the headless platform.
func NewPlatform(htmlPath string, logger *slog.Logger) *HeadlessPlatform {
	return &HeadlessPlatform{
		htmlPath: htmlPath,
		logger:   logger,
		open: func(url string) error {
			return openURLCommand(url).Start()
		},
		tasks: make(chan func(), 64),
		quit:  make(chan struct{}),
	}
}

func (p *HeadlessPlatform) Init() {
	p.logger.Debug("Headless platform initialized", "html_path", p.htmlPath)
}

func (p *HeadlessPlatform) Run() {
	for {
		select {
		case fn := <-p.tasks:
			fn()
		case <-p.quit:
			return
		}
	}
}

func (p *HeadlessPlatform) Quit() {
	p.quitOnce.Do(func() { close(p.quit) })
}

func (p *HeadlessPlatform) SetupTray(rgba []byte, w, h int) {
	p.logger.Debug("Tray icon installed", "width", w, "height", h, "bytes", len(rgba))
}

func (p *HeadlessPlatform) SetTrayIcon(ref string) {
	p.mu.Lock()
	p.icon = ref
	p.mu.Unlock()
	p.logger.Info("Tray icon set", "icon", ref)
}

func (p *HeadlessPlatform) SetTitle(title string) {
	p.mu.Lock()
	p.title = title
	p.mu.Unlock()
}

func (p *HeadlessPlatform) ShowTray(x, y int) {
	p.mu.Lock()
	p.shown = [2]int{x, y}
	p.mu.Unlock()
	p.logger.Debug("Tray shown", "x", x, "y", y)
}

func (p *HeadlessPlatform) SetTrayClickHandler(fn func(x, y int)) {
	p.mu.Lock()
	p.onClick = fn
	p.mu.Unlock()
}

// Click delivers a right-click on the tray icon at x, y. Without a native
// tray the click arrives over the satellite bus.
func (p *HeadlessPlatform) Click(x, y int) {
	p.mu.Lock()
	fn := p.onClick
	p.mu.Unlock()
	if fn == nil {
		p.logger.Debug("Tray click ignored, no handler", "x", x, "y", y)
		return
	}
	fn(x, y)
}

func (p *HeadlessPlatform) ShowHTML(html string) {
	p.mu.Lock()
	p.html = html
	p.mu.Unlock()
	if p.htmlPath == "" {
		return
	}
	tmp := p.htmlPath + ".tmp"
	if err := os.WriteFile(tmp, []byte(html), 0o644); err != nil {
		p.logger.Error("Failed to write tray page", "path", p.htmlPath, "error", err)
		return
	}
	if err := os.Rename(tmp, p.htmlPath); err != nil {
		p.logger.Error("Failed to write tray page", "path", p.htmlPath, "error", err)
	}
}

// DispatchToMain queues fn for the Run loop. Calls after Quit are dropped.
func (p *HeadlessPlatform) DispatchToMain(fn func()) {
	select {
	case p.tasks <- fn:
	case <-p.quit:
	}
}

func (p *HeadlessPlatform) OpenURL(url string) {
	if err := p.open(url); err != nil {
		p.logger.Error("Failed to open URL", "url", url, "error", err)
	}
}

// Title returns the current window title.
func (p *HeadlessPlatform) Title() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.title
}

// TrayIcon returns the tray icon reference set by the style.
func (p *HeadlessPlatform) TrayIcon() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.icon
}

// HTML returns the last page shown.
func (p *HeadlessPlatform) HTML() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.html
}

var _ Platform = (*HeadlessPlatform)(nil)
