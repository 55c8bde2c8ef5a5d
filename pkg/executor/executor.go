package executor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"
)

const stopGrace = 2 * time.Second

type implExecutor struct{}

// New creates a new Executor instance
func New() Executor {
	return &implExecutor{}
}

// Execute runs an external command with the given arguments
func (e *implExecutor) Execute(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		// Include stderr in error message for debugging
		stderrStr := strings.TrimSpace(stderr.String())
		if stderrStr != "" {
			return "", fmt.Errorf("command '%s' failed: %w\nstderr: %s", name, err, stderrStr)
		}
		return "", fmt.Errorf("command '%s' failed: %w", name, err)
	}

	return stdout.String(), nil
}

// Stream starts a long-running command and hands back its stdout
func (e *implExecutor) Stream(ctx context.Context, name string, args ...string) (Process, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe for '%s': %w", name, err)
	}
	p := &implProcess{cmd: cmd, stdout: stdout, done: make(chan struct{})}
	cmd.Stderr = &p.stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start '%s': %w", name, err)
	}

	return p, nil
}

type implProcess struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr bytes.Buffer

	waitOnce sync.Once
	waitErr  error
	done     chan struct{}
}

func (p *implProcess) Stdout() io.Reader {
	return p.stdout
}

func (p *implProcess) Wait() error {
	p.waitOnce.Do(func() {
		err := p.cmd.Wait()
		if err != nil {
			if s := strings.TrimSpace(p.stderr.String()); s != "" {
				err = fmt.Errorf("%w\nstderr: %s", err, s)
			}
		}
		p.waitErr = err
		close(p.done)
	})
	<-p.done
	return p.waitErr
}

func (p *implProcess) Stop() error {
	if p.cmd.Process == nil {
		return nil
	}

	select {
	case <-p.done:
		return nil
	default:
	}

	// ffmpeg flushes and exits cleanly on SIGINT
	_ = p.cmd.Process.Signal(os.Interrupt)

	go p.Wait()

	select {
	case <-p.done:
		return nil
	case <-time.After(stopGrace):
		if err := p.cmd.Process.Kill(); err != nil {
			return fmt.Errorf("kill: %w", err)
		}
		<-p.done
		return nil
	}
}
