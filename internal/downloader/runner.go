package downloader

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
)

// execRunner runs download tools as real OS processes
type execRunner struct{}

// NewRunner returns the production Runner backed by os/exec
func NewRunner() Runner {
	return execRunner{}
}

// Start spawns the tool and streams its output lines to the callbacks.
// The returned Process reports the exit code through Wait without the
// caller ever blocking on the streams directly.
func (execRunner) Start(ctx context.Context, tool string, args []string, onStdout, onStderr func(line string)) (Process, error) {
	cmd := exec.CommandContext(ctx, tool, args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", tool, err)
	}

	proc := &execProcess{cmd: cmd}
	proc.wg.Add(2)
	go proc.scan(stdout, onStdout)
	go proc.scan(stderr, onStderr)

	return proc, nil
}

// execProcess wraps a started exec.Cmd
type execProcess struct {
	cmd *exec.Cmd
	wg  sync.WaitGroup
}

func (p *execProcess) scan(r io.Reader, onLine func(string)) {
	defer p.wg.Done()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 256*1024)
	for scanner.Scan() {
		if onLine != nil {
			onLine(scanner.Text())
		}
	}
}

// PID returns the OS process id
func (p *execProcess) PID() int {
	if p.cmd.Process == nil {
		return 0
	}
	return p.cmd.Process.Pid
}

// Wait drains the output streams, then reaps the process. Nonzero exit
// codes are returned as codes, not errors.
func (p *execProcess) Wait() (int, error) {
	p.wg.Wait()

	err := p.cmd.Wait()
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, fmt.Errorf("failed to wait for process: %w", err)
}
