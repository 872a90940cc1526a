package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/confab-io/confab/internal/daemon/bridge"
	"github.com/confab-io/confab/internal/daemon/dispatch"
	"github.com/confab-io/confab/internal/daemon/store"
	"github.com/confab-io/confab/internal/daemon/window"
	"github.com/confab-io/confab/internal/models"
)

// visibleHandle is a window handle that tracks visibility in memory,
// standing in for a connected shell.
type visibleHandle struct {
	visible bool
}

func (h *visibleHandle) Show(ctx context.Context) error {
	h.visible = true
	return nil
}

func (h *visibleHandle) Hide(ctx context.Context) error {
	h.visible = false
	return nil
}

func (h *visibleHandle) Focus(ctx context.Context) error { return nil }

func (h *visibleHandle) State(ctx context.Context) (models.WindowState, error) {
	return models.WindowState{Visible: h.visible}, nil
}

// startTestServer spins up a server on a dynamic port. When handle is
// nil the window controller runs against the (disconnected) bridge.
func startTestServer(t *testing.T, handle window.Handle) (*Server, string) {
	t.Helper()

	st := store.New()
	br := bridge.New()
	if handle == nil {
		handle = br
	}
	windows := window.NewController(handle)
	dispatcher := dispatch.New(st, windows)

	srv, err := New(0, Deps{
		Store:      st,
		Windows:    windows,
		Dispatcher: dispatcher,
		Bridge:     br,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	go srv.Serve()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	})

	return srv, fmt.Sprintf("http://127.0.0.1:%d", srv.Port())
}

func postInvoke(t *testing.T, base, command, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(base+"/v1/invoke/"+command, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST invoke %s error = %v", command, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeResult(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	var envelope struct {
		Result json.RawMessage `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if out != nil {
		if err := json.Unmarshal(envelope.Result, out); err != nil {
			t.Fatalf("decoding result: %v", err)
		}
	}
}

func decodeError(t *testing.T, resp *http.Response) dispatch.Error {
	t.Helper()
	var envelope struct {
		Error dispatch.Error `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decoding error response: %v", err)
	}
	return envelope.Error
}

func TestInvokeGreet(t *testing.T) {
	_, base := startTestServer(t, nil)

	resp := postInvoke(t, base, "greet", `{"name":"Ada"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var got string
	decodeResult(t, resp, &got)
	if want := "Hello, Ada! You've been greeted from Confab!"; got != want {
		t.Errorf("result = %q, want %q", got, want)
	}
}

func TestInvokeSaveAndLoad(t *testing.T) {
	_, base := startTestServer(t, nil)

	resp := postInvoke(t, base, "save_conversation", `{"id":"c1","content":"hi there"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("save status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	resp = postInvoke(t, base, "load_conversations", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("load status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var got map[string]string
	decodeResult(t, resp, &got)
	if got["c1"] != "hi there" {
		t.Errorf("load_conversations = %v, want saved conversation", got)
	}
}

func TestInvokeUnknownCommand(t *testing.T) {
	_, base := startTestServer(t, nil)

	resp := postInvoke(t, base, "explode", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
	if wireErr := decodeError(t, resp); wireErr.Code != dispatch.CodeUnknownCommand {
		t.Errorf("code = %q, want %q", wireErr.Code, dispatch.CodeUnknownCommand)
	}
}

func TestInvokeInvalidArguments(t *testing.T) {
	_, base := startTestServer(t, nil)

	resp := postInvoke(t, base, "greet", `{"name":`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
	if wireErr := decodeError(t, resp); wireErr.Code != dispatch.CodeInvalidArgs {
		t.Errorf("code = %q, want %q", wireErr.Code, dispatch.CodeInvalidArgs)
	}
}

func TestInvokeToggleWithoutShell(t *testing.T) {
	_, base := startTestServer(t, nil)

	resp := postInvoke(t, base, "toggle_window_visibility", "")
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusServiceUnavailable)
	}
	if wireErr := decodeError(t, resp); wireErr.Code != dispatch.CodeShellUnavailable {
		t.Errorf("code = %q, want %q", wireErr.Code, dispatch.CodeShellUnavailable)
	}
}

func TestInvokeToggleWithWindow(t *testing.T) {
	handle := &visibleHandle{visible: true}
	_, base := startTestServer(t, handle)

	resp := postInvoke(t, base, "toggle_window_visibility", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if handle.visible {
		t.Error("window still visible after toggle")
	}

	resp = postInvoke(t, base, "toggle_window_visibility", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if !handle.visible {
		t.Error("window still hidden after second toggle")
	}
}

func TestWindowShowAndHide(t *testing.T) {
	handle := &visibleHandle{visible: false}
	_, base := startTestServer(t, handle)

	resp, err := http.Post(base+"/v1/window/show", "application/json", nil)
	if err != nil {
		t.Fatalf("POST window/show error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("show status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if !handle.visible {
		t.Error("window still hidden after show")
	}

	// Showing an already visible window re-shows without error.
	resp, err = http.Post(base+"/v1/window/show", "application/json", nil)
	if err != nil {
		t.Fatalf("POST window/show error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("second show status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	resp, err = http.Post(base+"/v1/window/hide", "application/json", nil)
	if err != nil {
		t.Fatalf("POST window/hide error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("hide status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if handle.visible {
		t.Error("window still visible after hide")
	}
}

func TestWindowUnknownOp(t *testing.T) {
	_, base := startTestServer(t, nil)

	resp, err := http.Post(base+"/v1/window/teleport", "application/json", nil)
	if err != nil {
		t.Fatalf("POST window/teleport error = %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
	if wireErr := decodeError(t, resp); wireErr.Code != dispatch.CodeUnknownCommand {
		t.Errorf("code = %q, want %q", wireErr.Code, dispatch.CodeUnknownCommand)
	}
}

func TestStatusReport(t *testing.T) {
	srv, base := startTestServer(t, nil)

	postInvoke(t, base, "save_conversation", `{"id":"c1","content":"x"}`)

	resp, err := http.Get(base + "/v1/status")
	if err != nil {
		t.Fatalf("GET status error = %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var report models.StatusReport
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		t.Fatalf("decoding status: %v", err)
	}
	if report.Port != srv.Port() {
		t.Errorf("report.Port = %d, want %d", report.Port, srv.Port())
	}
	if report.ShellConnected {
		t.Error("ShellConnected = true with no shell")
	}
	if report.Window != nil {
		t.Errorf("Window = %+v with no shell, want omitted", report.Window)
	}
	if report.Conversations != 1 {
		t.Errorf("Conversations = %d, want 1", report.Conversations)
	}
	if report.Version == "" {
		t.Error("Version is empty")
	}
}

func TestInvokeRequiresPost(t *testing.T) {
	_, base := startTestServer(t, nil)

	resp, err := http.Get(base + "/v1/invoke/greet")
	if err != nil {
		t.Fatalf("GET invoke error = %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusMethodNotAllowed)
	}
}
