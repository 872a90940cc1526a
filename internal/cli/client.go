package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/confab-io/confab/internal/config"
	"github.com/confab-io/confab/internal/models"
)

// daemonClient talks to the daemon's HTTP API.
type daemonClient struct {
	baseURL string
	http    *http.Client
}

// connectDaemon locates the running daemon via daemon.yaml and returns
// a client for it.
func connectDaemon() (*daemonClient, error) {
	running, info, err := config.IsDaemonRunning()
	if err != nil {
		return nil, fmt.Errorf("failed to check daemon status: %w", err)
	}
	if !running || info == nil {
		return nil, fmt.Errorf("daemon not running")
	}

	return &daemonClient{
		baseURL: fmt.Sprintf("http://%s:%d", info.Host, info.Port),
		http:    &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// post sends a JSON request and decodes the daemon's result/error
// envelope. out may be nil when the caller ignores the result.
func (c *daemonClient) post(path string, args any, out any) error {
	var body io.Reader
	if args != nil {
		data, err := json.Marshal(args)
		if err != nil {
			return fmt.Errorf("encode arguments: %w", err)
		}
		body = bytes.NewReader(data)
	}

	resp, err := c.http.Post(c.baseURL+path, "application/json", body)
	if err != nil {
		return fmt.Errorf("daemon unreachable: %w", err)
	}
	defer resp.Body.Close()

	var envelope struct {
		Result json.RawMessage `json:"result"`
		Error  *struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}
	if envelope.Error != nil {
		return fmt.Errorf("%s", envelope.Error.Message)
	}
	if out != nil {
		if err := json.Unmarshal(envelope.Result, out); err != nil {
			return fmt.Errorf("decode result: %w", err)
		}
	}
	return nil
}

// invoke runs a dispatcher command, the same path the frontend uses.
func (c *daemonClient) invoke(command string, args any, out any) error {
	return c.post("/v1/invoke/"+command, args, out)
}

// status fetches the daemon status report.
func (c *daemonClient) status() (*models.StatusReport, error) {
	resp, err := c.http.Get(c.baseURL + "/v1/status")
	if err != nil {
		return nil, fmt.Errorf("daemon unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("daemon returned %d", resp.StatusCode)
	}

	var report models.StatusReport
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return nil, fmt.Errorf("decode status: %w", err)
	}
	return &report, nil
}

// shutdown asks the daemon to stop gracefully.
func (c *daemonClient) shutdown() error {
	resp, err := c.http.Post(c.baseURL+"/v1/shutdown", "application/json", nil)
	if err != nil {
		return fmt.Errorf("daemon unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("daemon returned %d", resp.StatusCode)
	}
	return nil
}

// loadConversations fetches a snapshot of all stored conversations.
func (c *daemonClient) loadConversations() (map[string]string, error) {
	var out map[string]string
	if err := c.invoke("load_conversations", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// saveConversation stores content under id, overwriting any previous
// content.
func (c *daemonClient) saveConversation(id, content string) error {
	args := map[string]string{"id": id, "content": content}
	return c.invoke("save_conversation", args, nil)
}

// toggleWindow flips window visibility through the dispatcher.
func (c *daemonClient) toggleWindow() error {
	return c.invoke("toggle_window_visibility", nil, nil)
}

// showWindow makes the window visible and focused.
func (c *daemonClient) showWindow() error {
	return c.post("/v1/window/show", nil, nil)
}

// hideWindow hides the window.
func (c *daemonClient) hideWindow() error {
	return c.post("/v1/window/hide", nil, nil)
}

// printDaemonNotRunning prints the standard hint for commands that
// need a running daemon but should not start one.
func printDaemonNotRunning() {
	fmt.Println(styleWarning.Render("Daemon is not running."))
	fmt.Printf("%s %s\n", styleHint.Render("Start it with:"), styleCommand.Render("confab daemon start"))
}
