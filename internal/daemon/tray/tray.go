// Package tray puts the daemon in the system tray. Menu items and
// icon clicks are translated into router actions at this boundary;
// nothing below the tray ever sees a raw menu identifier.
package tray

import (
	"fmt"
	"time"

	"github.com/energye/systray"

	"github.com/confab-io/confab/internal/daemon/router"
)

var (
	state    State
	dispatch func(router.Action)
	onStart  func()
	onExit   func()
	portItem *systray.MenuItem
	showItem *systray.MenuItem
	hideItem *systray.MenuItem
	quitItem *systray.MenuItem
)

// Run starts the system tray. This blocks the calling goroutine (must be main).
// dispatchFn receives the user's tray actions.
// onStartFn is called when the tray is ready (launch the server here).
// onExitFn is called when the tray exits (cleanup here).
func Run(s State, dispatchFn func(router.Action), onStartFn, onExitFn func()) {
	state = s
	dispatch = dispatchFn
	onStart = onStartFn
	onExit = onExitFn
	systray.Run(onReady, onQuit)
}

// Quit signals the tray to exit.
func Quit() {
	systray.Quit()
}

func onReady() {
	systray.SetTitle("Confab")
	systray.SetTooltip(formatTooltip(0, "starting"))

	// Header
	header := systray.AddMenuItem("Confab", "")
	header.Disable()

	// Port
	portItem = systray.AddMenuItem("Starting...", "")
	portItem.Disable()

	systray.AddSeparator()

	// Actions. Display titles can change; the identifiers handed to
	// the router are fixed.
	showItem = systray.AddMenuItem("Show Confab", "Show and focus the window")
	hideItem = systray.AddMenuItem("Hide Confab", "Hide the window")

	systray.AddSeparator()

	quitItem = systray.AddMenuItem("Quit Confab", "Quit Confab entirely")

	showItem.Click(func() { emitMenu(router.MenuIDShow) })
	hideItem.Click(func() { emitMenu(router.MenuIDHide) })
	quitItem.Click(func() { emitMenu(router.MenuIDQuit) })

	// Clicking the icon itself toggles the window; the menu only
	// opens on right click.
	systray.SetOnClick(func(menu systray.IMenu) {
		if dispatch != nil {
			dispatch(router.ActionToggle)
		}
	})
	systray.SetOnRClick(func(menu systray.IMenu) {
		menu.ShowMenu()
	})

	// Start the daemon services
	if onStart != nil {
		onStart()
	}

	// Update port display now that server is started
	if state != nil {
		portItem.SetTitle(fmt.Sprintf("Running on port: %d", state.Port()))
		updateTooltip()
	}

	go refreshLoop()
}

func onQuit() {
	if onExit != nil {
		onExit()
	}
}

// emitMenu maps a menu identifier to its action and hands it to the
// router.
func emitMenu(id string) {
	if dispatch == nil {
		return
	}
	dispatch(router.ParseMenuAction(id))
}

// refreshLoop keeps the tooltip in sync with daemon state.
func refreshLoop() {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	for range ticker.C {
		updateTooltip()
	}
}

func updateTooltip() {
	if state == nil {
		return
	}

	detail := "shell not connected"
	if state.ShellConnected() {
		detail = "window hidden"
		if visible, known := state.WindowVisible(); known && visible {
			detail = "window visible"
		}
	}
	systray.SetTooltip(formatTooltip(state.ConversationCount(), detail))
}

func formatTooltip(conversations int, detail string) string {
	return fmt.Sprintf("Confab — %d conversations, %s", conversations, detail)
}
