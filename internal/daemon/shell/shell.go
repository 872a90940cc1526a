// Package shell launches and supervises the webview shell process.
// The shell owns the actual window; the daemon only starts it, logs
// its output, and signals it on shutdown. Window control happens over
// the bridge socket, not through this package.
package shell

import (
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/confab-io/confab/internal/config"
)

// BinaryName is the shell executable the daemon looks for when the
// settings do not pin an explicit path.
const BinaryName = "confab-shell"

// Options configures a shell launch.
type Options struct {
	// Path overrides binary discovery when set.
	Path string
	// Args are appended after the generated arguments.
	Args []string
	// DaemonPort is the port the shell dials back on.
	DaemonPort int
	// Theme is handed to the webview through the environment.
	Theme string
	// OnExit is called once after the process exits, with its exit
	// error. The daemon keeps running either way.
	OnExit func(err error)
}

// Process supervises a running shell.
type Process struct {
	cmd       *exec.Cmd
	logID     string
	done      chan struct{}
	exitErr   error
	startedAt time.Time
}

// Launch resolves the shell binary, starts it, and tees its output
// into a session log under the global logs directory.
func Launch(opts Options) (*Process, error) {
	path, err := resolveBinary(opts.Path)
	if err != nil {
		return nil, err
	}

	args := []string{"--daemon-port", strconv.Itoa(opts.DaemonPort)}
	args = append(args, opts.Args...)

	cmd := exec.Command(path, args...)
	cmd.Env = append(os.Environ(), "CONFAB_DAEMON_PORT="+strconv.Itoa(opts.DaemonPort))
	if opts.Theme != "" {
		cmd.Env = append(cmd.Env, "CONFAB_THEME="+opts.Theme)
	}

	// Output goes through a pipe because the session log header needs
	// the pid, which only exists after Start.
	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw

	if err := cmd.Start(); err != nil {
		pw.Close()
		return nil, fmt.Errorf("starting shell %s: %w", path, err)
	}

	logFile, logID, err := config.CreateShellLog(path, cmd.Process.Pid)
	if err != nil {
		// The shell still runs, its output just goes nowhere.
		log.Printf("Failed to create shell log: %v", err)
	}

	p := &Process{
		cmd:       cmd,
		logID:     logID,
		done:      make(chan struct{}),
		startedAt: time.Now().UTC(),
	}

	go func() {
		if logFile != nil {
			_, _ = io.Copy(logFile, pr)
		} else {
			_, _ = io.Copy(io.Discard, pr)
		}
	}()

	go func() {
		err := cmd.Wait()
		pw.Close()
		if logFile != nil {
			logFile.Close()
		}
		p.exitErr = err
		close(p.done)
		if err != nil {
			log.Printf("Shell exited: %v", err)
		} else {
			log.Printf("Shell exited cleanly")
		}
		if opts.OnExit != nil {
			opts.OnExit(err)
		}
	}()

	log.Printf("Launched shell %s (pid %d)", path, cmd.Process.Pid)
	return p, nil
}

// resolveBinary finds the shell executable to launch.
func resolveBinary(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("configured shell binary %s: %w", explicit, err)
		}
		return explicit, nil
	}

	// Try PATH first
	if path, err := exec.LookPath(BinaryName); err == nil {
		return path, nil
	}

	// Try next to the running executable
	if execPath, err := os.Executable(); err == nil {
		sibling := filepath.Join(filepath.Dir(execPath), BinaryName)
		if _, err := os.Stat(sibling); err == nil {
			return sibling, nil
		}
	}

	// Try build directory
	if _, err := os.Stat("./build/" + BinaryName); err == nil {
		return "./build/" + BinaryName, nil
	}

	return "", fmt.Errorf("%s not found. Install or build it first", BinaryName)
}

// Stop terminates the shell. Sends SIGTERM, waits 5 seconds, then
// SIGKILL.
func (p *Process) Stop() {
	if p.cmd.Process == nil {
		return
	}

	_ = p.cmd.Process.Signal(syscall.SIGTERM)

	select {
	case <-p.done:
		return
	case <-time.After(5 * time.Second):
	}

	_ = p.cmd.Process.Kill()
	<-p.done
}

// Done returns a channel that is closed when the shell exits.
func (p *Process) Done() <-chan struct{} {
	return p.done
}

// ExitErr returns the shell exit error. Only valid after Done is
// closed.
func (p *Process) ExitErr() error {
	return p.exitErr
}

// IsRunning returns true while the shell process is alive.
func (p *Process) IsRunning() bool {
	select {
	case <-p.done:
		return false
	default:
		return true
	}
}

// PID returns the shell process ID.
func (p *Process) PID() int {
	return p.cmd.Process.Pid
}

// LogID returns the session log identifier, empty if the log could
// not be created.
func (p *Process) LogID() string {
	return p.logID
}

// StartedAt returns when the shell was launched.
func (p *Process) StartedAt() time.Time {
	return p.startedAt
}
