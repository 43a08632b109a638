package downloader

import (
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"syscall"
	"time"

	"archive-downloader/pkg/models"
)

// Terminator stops the external download process behind an item. The
// preferred path signals the recorded pid; when no pid was captured it
// degrades to scanning the process table for a tool invocation mentioning
// the item URL. Both paths are best-effort.
type Terminator struct {
	tools  []string
	logger *slog.Logger

	// process-table source, swapped in tests
	listProcesses func() (string, error)
	kill          func(pid int, sig syscall.Signal) error
}

// NewTerminator creates a terminator aware of the given tool names
func NewTerminator(tools Tools) *Terminator {
	return &Terminator{
		tools:  []string{tools.File, tools.Playlist, tools.PlaylistAlt},
		logger: slog.Default(),
		listProcesses: func() (string, error) {
			out, err := exec.Command("ps", "-eo", "pid,args").Output()
			return string(out), err
		},
		kill: func(pid int, sig syscall.Signal) error {
			proc, err := os.FindProcess(pid)
			if err != nil {
				return err
			}
			return proc.Signal(sig)
		},
	}
}

// Terminate stops the item's download process. Returns false when no
// process could be confirmed terminated; callers still proceed with
// cancellation bookkeeping.
func (t *Terminator) Terminate(item *models.QueueItem) bool {
	if item.ProcessID > 0 && t.terminatePid(item.ProcessID) {
		return true
	}
	return t.terminateByScan(item.URL)
}

// terminatePid sends SIGTERM, escalating to SIGKILL when the process
// lingers
func (t *Terminator) terminatePid(pid int) bool {
	if err := t.kill(pid, syscall.SIGTERM); err != nil {
		t.logger.Debug("SIGTERM failed", "pid", pid, "error", err)
		return false
	}

	// Give the tool a moment to exit cleanly before escalating
	time.Sleep(500 * time.Millisecond)
	if t.kill(pid, syscall.Signal(0)) == nil {
		if err := t.kill(pid, syscall.SIGKILL); err != nil {
			t.logger.Warn("SIGKILL failed", "pid", pid, "error", err)
		}
	}

	t.logger.Info("Terminated download process", "pid", pid)
	return true
}

// terminateByScan walks the process table looking for a download tool
// invoked against the item URL
func (t *Terminator) terminateByScan(url string) bool {
	out, err := t.listProcesses()
	if err != nil {
		t.logger.Warn("Process table scan failed", "error", err)
		return false
	}

	terminated := false
	for _, line := range strings.Split(out, "\n") {
		if !strings.Contains(line, url) || !t.mentionsTool(line) {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		pid, err := strconv.Atoi(fields[0])
		if err != nil {
			continue
		}
		if t.terminatePid(pid) {
			terminated = true
		}
	}
	return terminated
}

func (t *Terminator) mentionsTool(line string) bool {
	for _, tool := range t.tools {
		if tool != "" && strings.Contains(line, tool) {
			return true
		}
	}
	return false
}
