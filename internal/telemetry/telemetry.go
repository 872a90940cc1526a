// Package telemetry reports anonymous usage events to PostHog.
// Capture is strictly opt-in: nothing is sent unless telemetry is
// enabled in settings, and a nil Client is safe to call.
package telemetry

import (
	"log"
	"runtime"

	"github.com/google/uuid"
	"github.com/posthog/posthog-go"

	"github.com/confab-io/confab/internal/buildinfo"
	"github.com/confab-io/confab/internal/models"
)

// APIKey is the PostHog project write key, injected at build time via
// ldflags. An empty key disables capture even when the user opted in.
var APIKey = ""

const endpoint = "https://eu.i.posthog.com"

// EnsureAnonymousID mints the persistent anonymous id used as the
// PostHog distinct id. Returns true when settings changed and need to
// be saved.
func EnsureAnonymousID(settings *models.Settings) bool {
	if !settings.Telemetry.Enabled || settings.Telemetry.AnonymousID != "" {
		return false
	}
	settings.Telemetry.AnonymousID = uuid.NewString()
	return true
}

// Client sends usage events for one daemon run.
type Client struct {
	ph         posthog.Client
	distinctID string
}

// New creates a telemetry client, or nil when telemetry is disabled,
// has no anonymous id yet, or the build carries no API key.
func New(cfg models.TelemetryConfig) *Client {
	if !cfg.Enabled || cfg.AnonymousID == "" || APIKey == "" {
		return nil
	}

	ph, err := posthog.NewWithConfig(APIKey, posthog.Config{Endpoint: endpoint})
	if err != nil {
		log.Printf("Telemetry disabled: %v", err)
		return nil
	}
	return &Client{ph: ph, distinctID: cfg.AnonymousID}
}

// DaemonStarted records one daemon launch.
func (c *Client) DaemonStarted() {
	c.capture("daemon_started", posthog.NewProperties().
		Set("version", buildinfo.Version).
		Set("platform", runtime.GOOS).
		Set("arch", runtime.GOARCH))
}

func (c *Client) capture(event string, props posthog.Properties) {
	if c == nil {
		return
	}
	err := c.ph.Enqueue(posthog.Capture{
		DistinctId: c.distinctID,
		Event:      event,
		Properties: props,
	})
	if err != nil {
		log.Printf("Telemetry capture failed: %v", err)
	}
}

// Close flushes queued events.
func (c *Client) Close() {
	if c == nil {
		return
	}
	if err := c.ph.Close(); err != nil {
		log.Printf("Telemetry close failed: %v", err)
	}
}
