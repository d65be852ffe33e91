package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"launchtray/config"
)

var errEmptyManifest = errors.New("manifest has neither command nor url")

// LaunchManifest describes how to start one application. A manifest with a
// URL opens it; one with a command spawns it. Both may be set.
type LaunchManifest struct {
	Name       string            `json:"name" yaml:"name"`
	Command    string            `json:"command" yaml:"command"`
	Args       []string          `json:"args" yaml:"args"`
	Env        map[string]string `json:"env" yaml:"env"`
	WorkingDir string            `json:"workingDir" yaml:"workingDir"`
	URL        string            `json:"url" yaml:"url"`
	// SingleInstance skips the spawn while an earlier launch is still alive.
	SingleInstance bool `json:"singleInstance" yaml:"singleInstance"`
}

func decodeLaunchManifest(ref string, res config.Resource) (LaunchManifest, error) {
	var m LaunchManifest
	switch config.DetectFormat(ref, res.ContentType) {
	case config.FormatYAML:
		if err := yaml.Unmarshal(res.Data, &m); err != nil {
			return LaunchManifest{}, fmt.Errorf("yaml: %w", err)
		}
	case config.FormatHCL:
		return LaunchManifest{}, fmt.Errorf("hcl launch manifests are not supported")
	default:
		if err := json.Unmarshal(res.Data, &m); err != nil {
			return LaunchManifest{}, fmt.Errorf("json: %w", err)
		}
	}
	if m.Command == "" && m.URL == "" {
		return LaunchManifest{}, errEmptyManifest
	}
	return m, nil
}

// launched is one spawned process. done closes once it has been reaped.
type launched struct {
	cmd  *exec.Cmd
	done chan struct{}
}

// Launcher runs applications from their manifests and tracks the processes
// it spawned so they can be stopped on exit.
type Launcher struct {
	fetcher config.Fetcher
	openURL func(url string)
	logDir  string
	logger  *slog.Logger

	mu        sync.Mutex
	processes map[string][]*launched
}

// NewLauncher creates a launcher that fetches manifests with fetcher, opens
// URLs with openURL and writes process output under logDir.
func NewLauncher(fetcher config.Fetcher, openURL func(string), logDir string, logger *slog.Logger) *Launcher {
	return &Launcher{
		fetcher:   fetcher,
		openURL:   openURL,
		logDir:    logDir,
		logger:    logger,
		processes: make(map[string][]*launched),
	}
}

// RunFromManifest fetches the manifest at ref and launches it.
func (l *Launcher) RunFromManifest(ctx context.Context, ref string) error {
	if ref == "" {
		return errors.New("empty manifest reference")
	}
	res, err := l.fetcher.Fetch(ctx, ref)
	if err != nil {
		return fmt.Errorf("fetch manifest: %w", err)
	}
	m, err := decodeLaunchManifest(ref, res)
	if err != nil {
		return fmt.Errorf("decode manifest %s: %w", ref, err)
	}

	if m.Command != "" {
		if err := l.start(ref, m); err != nil {
			return err
		}
	}
	if m.URL != "" {
		l.openURL(m.URL)
	}
	return nil
}

// start spawns m through the platform shell. Stdout and stderr go to a log
// file named after the manifest.
func (l *Launcher) start(ref string, m LaunchManifest) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if m.SingleInstance && l.runningLocked(ref) > 0 {
		l.logger.Debug("Already running", "manifest", ref)
		return nil
	}

	cmd := buildCommand(m)

	if err := os.MkdirAll(l.logDir, 0o755); err != nil {
		return fmt.Errorf("failed to create log dir: %w", err)
	}
	logPath := filepath.Join(l.logDir, logName(m, ref)+".log")
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}
	cmd.Stdout = logFile
	cmd.Stderr = logFile

	if err := cmd.Start(); err != nil {
		logFile.Close()
		return fmt.Errorf("failed to start '%s': %w", m.Command, err)
	}

	p := &launched{cmd: cmd, done: make(chan struct{})}
	l.processes[ref] = append(l.processes[ref], p)
	go l.reap(ref, p, logFile)
	return nil
}

func (l *Launcher) reap(ref string, p *launched, logFile *os.File) {
	err := p.cmd.Wait()
	logFile.Close()
	close(p.done)

	l.mu.Lock()
	procs := l.processes[ref]
	for i, q := range procs {
		if q == p {
			procs = append(procs[:i], procs[i+1:]...)
			break
		}
	}
	if len(procs) == 0 {
		delete(l.processes, ref)
	} else {
		l.processes[ref] = procs
	}
	l.mu.Unlock()

	l.logger.Debug("Launched process exited", "manifest", ref, "pid", p.cmd.Process.Pid, "error", err)
}

// Running returns how many processes launched from ref are alive.
func (l *Launcher) Running(ref string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.runningLocked(ref)
}

func (l *Launcher) runningLocked(ref string) int {
	n := 0
	for _, p := range l.processes[ref] {
		select {
		case <-p.done:
		default:
			if p.cmd.Process != nil && processAlive(p.cmd.Process.Pid) {
				n++
			}
		}
	}
	return n
}

// Stop kills every process launched from ref and waits for them to exit.
func (l *Launcher) Stop(ref string) {
	l.mu.Lock()
	procs := append([]*launched(nil), l.processes[ref]...)
	l.mu.Unlock()

	for _, p := range procs {
		killProcessGroup(p.cmd)
		<-p.done
	}
}

// StopAll kills every launched process.
func (l *Launcher) StopAll() {
	l.mu.Lock()
	refs := make([]string, 0, len(l.processes))
	for ref := range l.processes {
		refs = append(refs, ref)
	}
	l.mu.Unlock()

	for _, ref := range refs {
		l.Stop(ref)
	}
}

func logName(m LaunchManifest, ref string) string {
	if s := slugify(m.Name); s != "" {
		return s
	}
	if s := slugify(strings.TrimSuffix(filepath.Base(ref), filepath.Ext(ref))); s != "" {
		return s
	}
	return "launch"
}

func slugify(name string) string {
	var b strings.Builder
	for _, c := range strings.ToLower(name) {
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			b.WriteRune(c)
		} else {
			b.WriteByte('-')
		}
	}
	parts := strings.Split(b.String(), "-")
	var nonEmpty []string
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, "-")
}
