// Package supervisor owns the lifecycle of the external optimizer
// process: launch, health probing until ready, and orderly shutdown.
// It manages at most one process at a time.
package supervisor

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/me/sked/pkg/optimizer"
)

const (
	// probeInterval is the delay between readiness probes during startup.
	probeInterval = 2 * time.Second

	// stopGrace is how long Stop waits after SIGTERM before SIGKILL.
	stopGrace = 10 * time.Second
)

// HealthChecker probes the optimizer service for readiness.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Config holds the launch parameters for the optimizer process.
type Config struct {
	// LauncherPath is the executable used to run the artifact, e.g. a
	// JVM or interpreter binary.
	LauncherPath string

	// ArtifactPath is the optimizer artifact handed to the launcher.
	ArtifactPath string

	// BaseURL is the service URL the process will listen on. Its port
	// is passed to the process as the final argument.
	BaseURL string

	// StartupTimeout bounds how long EnsureRunning waits for the first
	// successful health probe after launching.
	StartupTimeout time.Duration
}

// Supervisor launches and stops the optimizer process. All methods are
// safe for concurrent use; at most one child process exists at a time.
type Supervisor struct {
	config Config
	health HealthChecker
	logger *slog.Logger

	mu     sync.Mutex
	cmd    *exec.Cmd
	exited chan struct{}
}

// New creates a Supervisor. The health checker decides readiness; the
// supervisor itself never speaks the service protocol.
func New(config Config, health HealthChecker, logger *slog.Logger) *Supervisor {
	return &Supervisor{
		config: config,
		health: health,
		logger: logger.With("component", "supervisor"),
	}
}

// EnsureRunning makes the optimizer reachable: if a health probe already
// succeeds it returns immediately, otherwise it launches the configured
// process and waits for readiness. The returned bool reports whether a
// process was launched by this call.
func (s *Supervisor) EnsureRunning(ctx context.Context) (bool, error) {
	if err := s.health.Health(ctx); err == nil {
		s.logger.Debug("optimizer already reachable", "url", s.config.BaseURL)
		return false, nil
	}

	if err := s.Start(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// Start launches the optimizer process and blocks until the first
// successful health probe or the startup timeout. On timeout or early
// process exit the child is stopped before returning.
func (s *Supervisor) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.cmd != nil {
		s.mu.Unlock()
		return optimizer.NewError(optimizer.KindProcessLaunchFailed, "supervisor.start",
			"optimizer process already running")
	}

	port := portFromURL(s.config.BaseURL)

	if s.config.ArtifactPath == "" {
		s.mu.Unlock()
		return optimizer.NewError(optimizer.KindProcessLaunchFailed, "supervisor.start",
			"no optimizer artifact configured")
	}
	if _, err := os.Stat(s.config.ArtifactPath); err != nil {
		s.mu.Unlock()
		return optimizer.WrapError(optimizer.KindProcessLaunchFailed, "supervisor.start",
			fmt.Errorf("optimizer artifact %s not found: %w", s.config.ArtifactPath, err))
	}

	// Without a launcher the artifact is executed directly.
	var cmd *exec.Cmd
	if s.config.LauncherPath != "" {
		cmd = exec.Command(s.config.LauncherPath, s.config.ArtifactPath, port)
	} else {
		cmd = exec.Command(s.config.ArtifactPath, port)
	}
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	s.logger.Info("launching optimizer process",
		"launcher", s.config.LauncherPath,
		"artifact", s.config.ArtifactPath,
		"port", port,
	)

	if err := cmd.Start(); err != nil {
		s.mu.Unlock()
		return optimizer.WrapError(optimizer.KindProcessLaunchFailed, "supervisor.start",
			fmt.Errorf("failed to launch optimizer process: %w", err))
	}

	exited := make(chan struct{})
	s.cmd = cmd
	s.exited = exited
	s.mu.Unlock()

	go func() {
		err := cmd.Wait()
		s.logger.Info("optimizer process exited", "pid", cmd.Process.Pid, "err", err)
		close(exited)
	}()

	if err := s.waitReady(ctx, exited); err != nil {
		s.Stop()
		return err
	}

	s.logger.Info("optimizer process ready", "pid", cmd.Process.Pid)
	return nil
}

// waitReady probes health until success, process exit, timeout, or
// context cancellation. The first probe fires immediately.
func (s *Supervisor) waitReady(ctx context.Context, exited <-chan struct{}) error {
	deadline := time.NewTimer(s.config.StartupTimeout)
	defer deadline.Stop()

	ticker := time.NewTicker(probeInterval)
	defer ticker.Stop()

	for {
		if err := s.health.Health(ctx); err == nil {
			return nil
		}

		select {
		case <-ctx.Done():
			return optimizer.WrapError(optimizer.KindProcessLaunchFailed, "supervisor.start",
				fmt.Errorf("cancelled while waiting for optimizer readiness: %w", ctx.Err()))
		case <-exited:
			return optimizer.NewError(optimizer.KindProcessLaunchFailed, "supervisor.start",
				"optimizer process exited before becoming ready")
		case <-deadline.C:
			return optimizer.NewError(optimizer.KindProcessLaunchFailed, "supervisor.start",
				fmt.Sprintf("optimizer not ready within %s", s.config.StartupTimeout))
		case <-ticker.C:
		}
	}
}

// Stop terminates the owned process: SIGTERM first, SIGKILL if it has
// not exited within the grace period. Stop is idempotent and a no-op
// when no process is owned.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	cmd := s.cmd
	exited := s.exited
	s.cmd = nil
	s.exited = nil
	s.mu.Unlock()

	if cmd == nil || cmd.Process == nil {
		return
	}

	pid := cmd.Process.Pid
	s.logger.Info("stopping optimizer process", "pid", pid)

	if err := cmd.Process.Signal(syscall.SIGTERM); err != nil {
		// Already gone.
		return
	}

	select {
	case <-exited:
	case <-time.After(stopGrace):
		s.logger.Warn("optimizer process did not exit, killing", "pid", pid)
		_ = cmd.Process.Kill()
		<-exited
	}
}

// Running reports whether the supervisor currently owns a live process.
func (s *Supervisor) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cmd == nil {
		return false
	}
	select {
	case <-s.exited:
		return false
	default:
		return true
	}
}

// portFromURL extracts the port the optimizer should listen on from its
// base URL, falling back to the default when the URL carries no port or
// does not parse.
func portFromURL(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil {
		return optimizer.DefaultPort
	}
	if port := u.Port(); port != "" {
		return port
	}
	return optimizer.DefaultPort
}
