package server

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gen2brain/beeep"

	"github.com/confab-io/confab/internal/config"
	"github.com/confab-io/confab/internal/updater"
)

// updateState holds the result of the latest update check.
type updateState struct {
	mu            sync.RWMutex
	available     bool
	latestVersion string
	releaseURL    string
	lastChecked   time.Time
}

// StartUpdateCheck runs an update check in a background goroutine based on settings.
func (s *Server) StartUpdateCheck() {
	go func() {
		settings, err := config.LoadSettings()
		if err != nil {
			log.Printf("[update] Failed to load settings: %v", err)
			return
		}

		if !settings.Updates.CheckOnStartup {
			return
		}

		// Check frequency
		if settings.Updates.LastChecked != nil {
			since := time.Since(*settings.Updates.LastChecked)
			switch settings.Updates.CheckFrequency {
			case "daily":
				if since < 24*time.Hour {
					return
				}
			case "weekly":
				if since < 7*24*time.Hour {
					return
				}
				// "every_launch" always checks
			}
		}

		result, err := updater.CheckForUpdate()
		if err != nil {
			log.Printf("[update] Check failed: %v", err)
			return
		}

		// Update last_checked timestamp in settings
		now := time.Now()
		settings.Updates.LastChecked = &now
		if saveErr := config.SaveSettings(settings); saveErr != nil {
			log.Printf("[update] Failed to save last_checked: %v", saveErr)
		}

		s.updateState.mu.Lock()
		s.updateState.lastChecked = now
		if result.Available {
			s.updateState.available = true
			s.updateState.latestVersion = result.LatestVersion
			s.updateState.releaseURL = result.ReleaseURL
			log.Printf("[update] Update available: v%s → v%s", result.CurrentVersion, result.LatestVersion)
		} else {
			s.updateState.available = false
			log.Printf("[update] Up to date (v%s)", result.CurrentVersion)
		}
		s.updateState.mu.Unlock()

		if result.Available && settings.Notifications.UpdateAvailable {
			message := fmt.Sprintf("Confab v%s is available. Run 'confab update' to install.", result.LatestVersion)
			if err := beeep.Notify("Confab", message, ""); err != nil {
				log.Printf("[update] Failed to show notification: %v", err)
			}
		}
	}()
}

// UpdateState returns the current update check result.
func (s *Server) UpdateState() (available bool, version, url string) {
	s.updateState.mu.RLock()
	defer s.updateState.mu.RUnlock()
	return s.updateState.available, s.updateState.latestVersion, s.updateState.releaseURL
}
