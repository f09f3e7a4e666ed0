package internalexec

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"iter"
	"os"
	"os/exec"
	"strings"
)

// maxLineSize bounds a single streamed line; pip progress bars can be long.
const maxLineSize = 1024 * 1024

// Result captures stdout/stderr emitted by a captured command run.
type Result struct {
	Stdout string
	Stderr string
}

// Capture runs the command to completion, collecting stdout and stderr separately.
func Capture(cmd *exec.Cmd) (Result, error) {
	var stdoutBuf, stderrBuf bytes.Buffer

	if cmd.Stdout != nil {
		cmd.Stdout = io.MultiWriter(cmd.Stdout, &stdoutBuf)
	} else {
		cmd.Stdout = &stdoutBuf
	}
	if cmd.Stderr != nil {
		cmd.Stderr = io.MultiWriter(cmd.Stderr, &stderrBuf)
	} else {
		cmd.Stderr = &stderrBuf
	}

	err := cmd.Run()

	return Result{
		Stdout: strings.TrimSpace(stdoutBuf.String()),
		Stderr: strings.TrimSpace(stderrBuf.String()),
	}, err
}

// PrimaryOutput returns stderr if present, otherwise stdout.
func PrimaryOutput(res Result) string {
	if res.Stderr != "" {
		return res.Stderr
	}
	return res.Stdout
}

// ExitCode extracts the process exit code from an error returned by Run or Wait.
// It returns 0 for a nil error and -1 when the process never produced an exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// Stream is a running child process whose stdout and stderr are merged into a
// single line-oriented stream.
type Stream struct {
	cmd     *exec.Cmd
	reader  *os.File
	scanner *bufio.Scanner
	readErr error
}

// Start launches cmd with stdout and stderr joined on one pipe. The caller must
// call Wait, normally after ranging over Lines.
func Start(cmd *exec.Cmd) (*Stream, error) {
	if cmd.Stdout != nil || cmd.Stderr != nil {
		return nil, errors.New("internalexec: Stdout and Stderr must be unset")
	}

	reader, writer, err := os.Pipe()
	if err != nil {
		return nil, err
	}
	cmd.Stdout = writer
	cmd.Stderr = writer

	if err := cmd.Start(); err != nil {
		_ = reader.Close()
		_ = writer.Close()
		return nil, err
	}
	// The child owns its copy; closing ours lets the reader see EOF on exit.
	_ = writer.Close()

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	return &Stream{cmd: cmd, reader: reader, scanner: scanner}, nil
}

// Lines yields each output line as soon as the child writes it. Iteration ends
// at EOF, on a read error, or when the consumer stops.
func (s *Stream) Lines() iter.Seq[string] {
	return func(yield func(string) bool) {
		for s.scanner.Scan() {
			if !yield(strings.TrimRight(s.scanner.Text(), "\r")) {
				return
			}
		}
		s.readErr = s.scanner.Err()
	}
}

// Err reports a read failure encountered while iterating Lines.
func (s *Stream) Err() error {
	return s.readErr
}

// Wait discards any unread output, waits for the child to exit and returns its
// exit code. The error is the one reported by exec.Cmd.Wait.
func (s *Stream) Wait() (int, error) {
	_, _ = io.Copy(io.Discard, s.reader)
	err := s.cmd.Wait()
	_ = s.reader.Close()

	if s.cmd.ProcessState != nil {
		return s.cmd.ProcessState.ExitCode(), err
	}
	return ExitCode(err), err
}
