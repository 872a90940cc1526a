// Package server implements the daemon's HTTP surface: the command
// invoke endpoint the frontend calls, the shell websocket, the status
// report, and remote shutdown.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"syscall"
	"time"

	"github.com/rs/cors"

	"github.com/confab-io/confab/internal/buildinfo"
	"github.com/confab-io/confab/internal/daemon/bridge"
	"github.com/confab-io/confab/internal/daemon/dispatch"
	"github.com/confab-io/confab/internal/daemon/store"
	"github.com/confab-io/confab/internal/daemon/window"
	"github.com/confab-io/confab/internal/models"
)

// maxInvokeBodySize caps command argument payloads.
const maxInvokeBodySize = 1 * 1024 * 1024

// Deps are the daemon services the server exposes.
type Deps struct {
	Store      *store.Store
	Windows    *window.Controller
	Dispatcher *dispatch.Dispatcher
	Bridge     *bridge.Bridge
}

// Server is the daemon's HTTP server.
type Server struct {
	httpServer  *http.Server
	listener    net.Listener
	port        int
	deps        Deps
	startedAt   time.Time
	updateState updateState
}

// New creates a server listening on the loopback interface at the
// specified port. Pass port 0 for dynamic allocation.
func New(port int, deps Deps) (*Server, error) {
	listener, err := (&net.ListenConfig{}).Listen(context.TODO(), "tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return nil, fmt.Errorf("failed to listen: %w", err)
	}

	// Get actual port if dynamically allocated
	actualPort := listener.Addr().(*net.TCPAddr).Port

	srv := &Server{
		listener:  listener,
		port:      actualPort,
		deps:      deps,
		startedAt: time.Now().UTC(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/invoke/{command}", srv.handleInvoke)
	mux.HandleFunc("POST /v1/window/{op}", srv.handleWindow)
	mux.HandleFunc("GET /v1/status", srv.handleStatus)
	mux.HandleFunc("GET /v1/shell/socket", deps.Bridge.HandleSocket)
	mux.HandleFunc("POST /v1/shutdown", srv.handleShutdown)

	// The frontend runs inside the webview under a platform-specific
	// origin, so requests to the daemon are always cross-origin. The
	// listener is loopback-only.
	handler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(mux)

	srv.httpServer = &http.Server{
		Handler: handler,
		// No blanket read/write timeouts: the shell socket stays open
		// for the daemon's whole lifetime.
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return srv, nil
}

// Port returns the port the server is listening on.
func (s *Server) Port() int {
	return s.port
}

// StartedAt returns when the server was created.
func (s *Server) StartedAt() time.Time {
	return s.startedAt
}

// Serve starts serving requests. This blocks until Shutdown is called.
func (s *Server) Serve() error {
	err := s.httpServer.Serve(s.listener)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

type invokeResponse struct {
	Result any `json:"result"`
}

type errorResponse struct {
	Error *dispatch.Error `json:"error"`
}

// handleInvoke handles POST /v1/invoke/{command}. The body is the raw
// JSON argument object for the command; it may be empty for commands
// without arguments.
func (s *Server) handleInvoke(w http.ResponseWriter, r *http.Request) {
	command := r.PathValue("command")

	r.Body = http.MaxBytesReader(w, r.Body, maxInvokeBodySize)
	args, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeError(w, &dispatch.Error{
			Code:    dispatch.CodeInvalidArgs,
			Message: fmt.Sprintf("reading request body: %v", err),
		})
		return
	}

	result, err := s.deps.Dispatcher.Invoke(r.Context(), command, args)
	if err != nil {
		wireErr := dispatch.WireError(err)
		if wireErr.Code == dispatch.CodeInternal {
			log.Printf("Command %s failed: %v", command, err)
		}
		s.writeError(w, wireErr)
		return
	}

	s.writeJSON(w, http.StatusOK, invokeResponse{Result: result})
}

// handleWindow handles POST /v1/window/{op}: the one-directional
// window controls the CLI uses, as opposed to the toggle command the
// frontend invokes through the dispatcher.
func (s *Server) handleWindow(w http.ResponseWriter, r *http.Request) {
	var err error
	switch op := r.PathValue("op"); op {
	case "show":
		err = s.deps.Windows.ShowAndFocus(r.Context())
	case "hide":
		err = s.deps.Windows.Hide(r.Context())
	default:
		s.writeError(w, &dispatch.Error{
			Code:    dispatch.CodeUnknownCommand,
			Message: fmt.Sprintf("unknown window operation %q", op),
		})
		return
	}

	if err != nil {
		code := dispatch.CodePlatformActionFailed
		if errors.Is(err, window.ErrUnavailable) {
			code = dispatch.CodeShellUnavailable
		}
		s.writeError(w, &dispatch.Error{Code: code, Message: err.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, invokeResponse{})
}

// handleStatus handles GET /v1/status.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	report := models.StatusReport{
		Version:        buildinfo.Version,
		Codename:       buildinfo.Codename,
		PID:            os.Getpid(),
		Port:           s.port,
		StartedAt:      s.startedAt,
		ShellConnected: s.deps.Bridge.Connected(),
		Conversations:  s.deps.Store.Len(),
	}
	if state, err := s.deps.Bridge.State(r.Context()); err == nil {
		report.Window = &state
	}

	available, version, url := s.UpdateState()
	report.Update = models.UpdateStatus{
		Available:     available,
		LatestVersion: version,
		ReleaseURL:    url,
	}

	s.writeJSON(w, http.StatusOK, report)
}

// handleShutdown handles POST /v1/shutdown by signaling the daemon
// process, which unwinds through the normal signal path.
func (s *Server) handleShutdown(w http.ResponseWriter, r *http.Request) {
	log.Printf("Shutdown requested over HTTP")
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "shutting down"})
	go RequestShutdown()
}

// RequestShutdown sends SIGINT to the current process to trigger a
// graceful shutdown.
func RequestShutdown() {
	p, err := os.FindProcess(os.Getpid())
	if err != nil {
		return
	}
	_ = p.Signal(syscall.SIGINT)
}

// writeJSON writes a JSON response.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a command failure with its mapped status code.
func (s *Server) writeError(w http.ResponseWriter, wireErr *dispatch.Error) {
	s.writeJSON(w, wireErr.HTTPStatus(), errorResponse{Error: wireErr})
}

// TrayState adapts a Server to the tray.State interface.
type TrayState struct {
	srv *Server
}

// NewTrayState creates a TrayState for the given server.
func NewTrayState(srv *Server) *TrayState {
	return &TrayState{srv: srv}
}

// Port returns the port the server is listening on.
func (t *TrayState) Port() int {
	return t.srv.Port()
}

// ShellConnected reports whether a shell is attached to the bridge.
func (t *TrayState) ShellConnected() bool {
	return t.srv.deps.Bridge.Connected()
}

// WindowVisible reports the window state the shell last reported.
func (t *TrayState) WindowVisible() (visible, known bool) {
	state, err := t.srv.deps.Bridge.State(context.Background())
	if err != nil {
		return false, false
	}
	return state.Visible, true
}

// ConversationCount returns the number of stored conversations.
func (t *TrayState) ConversationCount() int {
	return t.srv.deps.Store.Len()
}
