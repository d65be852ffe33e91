//go:build windows

package main

import (
	"os"
	"os/exec"
	"strings"
	"syscall"
)

func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP}
}

func killProcessGroup(cmd *exec.Cmd) {
	if cmd.Process != nil {
		_ = cmd.Process.Kill()
	}
}

func shellQuote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

func buildCommand(m LaunchManifest) *exec.Cmd {
	fullCmd := shellQuote(m.Command)
	for _, arg := range m.Args {
		fullCmd += " " + shellQuote(arg)
	}

	cmd := exec.Command("cmd.exe", "/c", fullCmd)
	setProcessGroup(cmd)
	if m.WorkingDir != "" {
		cmd.Dir = m.WorkingDir
	}
	if len(m.Env) > 0 {
		cmd.Env = cmd.Environ()
		for k, v := range m.Env {
			cmd.Env = append(cmd.Env, k+"="+v)
		}
	}
	return cmd
}

// processAlive relies on FindProcess opening a handle, which fails for
// exited processes on Windows.
func processAlive(pid int) bool {
	p, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	_ = p.Release()
	return true
}

func openURLCommand(url string) *exec.Cmd {
	return exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
}
