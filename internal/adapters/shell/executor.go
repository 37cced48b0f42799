// Package shell provides the shell executor adapter.
package shell

import (
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.halyard.dev/halyard/internal/core/ports"
	"go.trai.ch/zerr"
)

// Executor implements ports.Executor using os/exec.
type Executor struct {
	logger ports.Logger
}

// NewExecutor creates a new Executor.
func NewExecutor(logger ports.Logger) *Executor {
	return &Executor{
		logger: logger,
	}
}

// Execute runs the command with the given environment overlay applied on top
// of os.Environ(). PATH entries in the overlay are prepended to the system
// PATH so overlay binaries are resolved first, never a host-level ambient
// installation.
func (e *Executor) Execute(ctx context.Context, command []string, workdir string, env []string) error {
	if len(command) == 0 {
		return nil
	}

	name := command[0]
	args := command[1:]

	cmdEnv := MergeEnvironment(os.Environ(), env)

	// Resolve the executable against the merged PATH, not the process PATH.
	executable := name
	if !filepath.IsAbs(name) {
		if lp, err := LookPath(name, cmdEnv); err == nil {
			executable = lp
		}
	}

	cmd := exec.CommandContext(ctx, executable, args...) //nolint:gosec // user provided command

	// exec.CommandContext sets Args[0] to the executable path; preserve the
	// original name as invoked.
	if len(cmd.Args) > 0 {
		cmd.Args[0] = name
	}

	if workdir != "" {
		cmd.Dir = workdir
	}
	cmd.Env = cmdEnv

	cmd.Stdout = e.stdout(ctx)
	cmd.Stderr = e.stderr(ctx)

	if err := cmd.Run(); err != nil {
		var exitCode int
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			exitCode = -1 // Unknown or signal
		}
		return zerr.With(zerr.Wrap(err, "command failed"), "exit_code", exitCode)
	}

	return nil
}

// stdout routes process output to the recording vertex when one is in flight,
// the logger otherwise.
func (e *Executor) stdout(ctx context.Context) io.Writer {
	if v := ports.VertexFromContext(ctx); v != nil {
		return v.Stdout()
	}
	return &logWriter{logger: e.logger, level: "info"}
}

func (e *Executor) stderr(ctx context.Context) io.Writer {
	if v := ports.VertexFromContext(ctx); v != nil {
		return v.Stderr()
	}
	return &logWriter{logger: e.logger, level: "error"}
}

type logWriter struct {
	logger ports.Logger
	level  string
}

func (w *logWriter) Write(p []byte) (n int, err error) {
	msg := string(p)
	lines := strings.Split(strings.TrimSuffix(msg, "\n"), "\n")
	for _, line := range lines {
		if w.level == "info" {
			w.logger.Info(line)
		} else {
			w.logger.Error(zerr.New(line))
		}
	}
	return len(p), nil
}

// MergeEnvironment merges the overlay onto the system environment.
// PATH is special: overlay entries are prepended to the system PATH.
func MergeEnvironment(sysEnv, overlay []string) []string {
	envMap := make(map[string]string)
	for _, entry := range sysEnv {
		k, v, ok := strings.Cut(entry, "=")
		if ok {
			envMap[k] = v
		}
	}

	for _, entry := range overlay {
		k, v, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		if k == "PATH" {
			if sysPath, exists := envMap["PATH"]; exists && sysPath != "" {
				envMap[k] = v + string(os.PathListSeparator) + sysPath
			} else {
				envMap[k] = v
			}
		} else {
			envMap[k] = v
		}
	}

	result := make([]string, 0, len(envMap))
	for k, v := range envMap {
		result = append(result, k+"="+v)
	}
	return result
}

// LookPath searches for an executable in the directories named by the PATH
// entry of the given environment.
func LookPath(file string, env []string) (string, error) {
	var path string
	for _, e := range env {
		if strings.HasPrefix(e, "PATH=") {
			path = strings.TrimPrefix(e, "PATH=")
			break
		}
	}

	if path == "" {
		return "", exec.ErrNotFound
	}

	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			// Unix shell semantics: path element "" means "."
			dir = "."
		}
		candidate := filepath.Join(dir, file)
		if err := findExecutable(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", exec.ErrNotFound
}

func findExecutable(file string) error {
	d, err := os.Stat(file)
	if err != nil {
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0o111 != 0 {
		return nil
	}
	return os.ErrPermission
}
