package gitcmd

import (
	"errors"
	"io"
	"os/exec"
)

// Stream is a running git process whose output can be consumed
// line-by-line while the process is still alive.
type Stream interface {
	// Out is the live stdout of the process.
	Out() io.Reader
	// Err is the live stderr of the process.
	Err() io.Reader
	// Wait blocks until the process exits and returns its exit code.
	Wait() int
	// Kill terminates the process. Wait must still be called.
	Kill() error
}

type processStream struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr io.ReadCloser
}

func (p *processStream) Out() io.Reader {
	return p.stdout
}

func (p *processStream) Err() io.Reader {
	return p.stderr
}

func (p *processStream) Wait() int {
	err := p.cmd.Wait()
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		// spawn-level failure after start; report as generic non-zero exit
		return -1
	}
	return p.cmd.ProcessState.ExitCode()
}

func (p *processStream) Kill() error {
	if p.cmd.Process == nil {
		return nil
	}
	return p.cmd.Process.Kill()
}
