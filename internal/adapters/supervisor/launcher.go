package supervisor

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"

	"go.halyard.dev/halyard/internal/adapters/shell"
	"go.halyard.dev/halyard/internal/core/domain"
	"go.halyard.dev/halyard/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Launcher = (*Launcher)(nil)

// Launcher starts the service process under the runtime supervisor contract.
type Launcher struct {
	logger ports.Logger
}

// NewLauncher creates a new Launcher.
func NewLauncher(logger ports.Logger) *Launcher {
	return &Launcher{logger: logger}
}

// Launch asserts the execution identity, builds the contract environment, and
// runs the default command from the runtime root, blocking until the process
// exits or the context is canceled. The identity assertion happens before the
// process starts; a violation means the service never runs.
func (l *Launcher) Launch(ctx context.Context, spec *domain.LaunchSpec, root *domain.RuntimeRoot) error {
	if len(spec.Command) == 0 {
		return zerr.New("launch spec has no command")
	}

	cred, err := credentialFor(spec.Identity, currentEUID())
	if err != nil {
		return err
	}

	overlay := spec.ContractEnv(root.Path)
	overlay = append(overlay, "PATH="+spec.BinDir(root.Path))
	env := shell.MergeEnvironment(os.Environ(), overlay)

	// Resolve against the merged PATH so the environment's bin directory
	// wins over any host-level installation.
	executable := spec.Command[0]
	if !filepath.IsAbs(executable) {
		if lp, lerr := shell.LookPath(executable, env); lerr == nil {
			executable = lp
		}
	}

	//nolint:gosec // Command comes from the validated launch spec
	cmd := exec.CommandContext(ctx, executable, spec.Command[1:]...)
	if len(cmd.Args) > 0 {
		cmd.Args[0] = spec.Command[0]
	}
	cmd.Dir = spec.WorkingDir(root.Path)
	cmd.Env = env
	if cred != nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{Credential: cred}
	}

	if v := ports.VertexFromContext(ctx); v != nil {
		cmd.Stdout = v.Stdout()
		cmd.Stderr = v.Stderr()
	} else {
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	}

	l.logger.Info("launching service as " + spec.Identity.User.String())

	if err := cmd.Run(); err != nil {
		var exitCode int
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			exitCode = -1
		}
		return zerr.With(zerr.Wrap(err, "service process failed"), "exit_code", exitCode)
	}
	return nil
}
