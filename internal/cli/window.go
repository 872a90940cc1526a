package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var toggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Toggle window visibility",
	Long: `Toggle window visibility, the same operation the tray icon and the
global shortcut trigger.`,
	RunE: runToggle,
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show and focus the window",
	RunE:  runShow,
}

var hideCmd = &cobra.Command{
	Use:   "hide",
	Short: "Hide the window",
	RunE:  runHide,
}

// windowClient starts the daemon when needed and returns a client,
// so window commands work from a cold start.
func windowClient() (*daemonClient, error) {
	if err := EnsureDaemon(); err != nil {
		return nil, err
	}
	return connectDaemon()
}

func runToggle(cmd *cobra.Command, args []string) error {
	client, err := windowClient()
	if err != nil {
		return err
	}
	if err := client.toggleWindow(); err != nil {
		return fmt.Errorf("toggle failed: %s", err)
	}
	fmt.Println("Toggled window visibility.")
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	client, err := windowClient()
	if err != nil {
		return err
	}
	if err := client.showWindow(); err != nil {
		return fmt.Errorf("show failed: %s", err)
	}
	fmt.Println("Window shown.")
	return nil
}

func runHide(cmd *cobra.Command, args []string) error {
	client, err := windowClient()
	if err != nil {
		return err
	}
	if err := client.hideWindow(); err != nil {
		return fmt.Errorf("hide failed: %s", err)
	}
	fmt.Println("Window hidden.")
	return nil
}
