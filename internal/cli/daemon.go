package cli

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"

	"github.com/confab-io/confab/internal/config"
	"github.com/confab-io/confab/internal/models"
)

// DaemonBinaryName is the daemon executable the CLI launches.
const DaemonBinaryName = "confabd"

// EnsureDaemon makes sure the daemon is running, starting it if necessary.
func EnsureDaemon() error {
	running, info, err := config.IsDaemonRunning()
	if err != nil {
		return fmt.Errorf("failed to check daemon status: %w", err)
	}

	if running {
		return nil
	}

	// Clean up stale daemon info if it exists
	if info != nil {
		_ = config.RemoveDaemonInfo()
	}

	return startDaemon()
}

// startDaemon starts the daemon process in the background and waits
// for it to publish daemon.yaml.
func startDaemon() error {
	daemonPath, err := findDaemonBinary()
	if err != nil {
		return err
	}

	cmd := exec.Command(daemonPath)
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.Stdin = nil

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start daemon: %w", err)
	}

	// Wait for daemon to be ready (max 5 seconds)
	for i := 0; i < 50; i++ {
		time.Sleep(100 * time.Millisecond)
		running, _, err := config.IsDaemonRunning()
		if err == nil && running {
			return nil
		}
	}

	return fmt.Errorf("daemon failed to start within timeout")
}

// findDaemonBinary locates the confabd binary.
func findDaemonBinary() (string, error) {
	// Try PATH first
	if path, err := exec.LookPath(DaemonBinaryName); err == nil {
		return path, nil
	}

	// Try next to the running executable
	if execPath, err := os.Executable(); err == nil {
		sibling := filepath.Join(filepath.Dir(execPath), DaemonBinaryName)
		if _, err := os.Stat(sibling); err == nil {
			return sibling, nil
		}
	}

	// Try build directory
	if _, err := os.Stat("./build/" + DaemonBinaryName); err == nil {
		return "./build/" + DaemonBinaryName, nil
	}

	return "", fmt.Errorf("%s not found. Install or build it first", DaemonBinaryName)
}

// stopDaemon stops a running daemon: the graceful HTTP shutdown first,
// then SIGTERM when the server does not answer.
func stopDaemon(info *models.DaemonInfo) error {
	if client, err := connectDaemon(); err == nil {
		if err := client.shutdown(); err == nil && waitDaemonStopped() {
			return nil
		}
	}

	process, err := os.FindProcess(info.PID)
	if err != nil {
		return fmt.Errorf("failed to find daemon process: %w", err)
	}
	if err := process.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("failed to send stop signal: %w", err)
	}

	if !waitDaemonStopped() {
		return fmt.Errorf("daemon did not stop within timeout")
	}
	return nil
}

// waitDaemonStopped polls for daemon exit (max 5 seconds).
func waitDaemonStopped() bool {
	for i := 0; i < 50; i++ {
		time.Sleep(100 * time.Millisecond)
		running, _, err := config.IsDaemonRunning()
		if err == nil && !running {
			return true
		}
	}
	return false
}
