package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the full daemon status report",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	client, err := connectDaemon()
	if err != nil {
		printDaemonNotRunning()
		return nil
	}

	report, err := client.status()
	if err != nil {
		return fmt.Errorf("failed to fetch status: %w", err)
	}

	fmt.Printf("%s %s (%s)\n\n", styleBrand.Render("Confab"),
		styleVersion.Render("v"+report.Version), report.Codename)

	shellLine := styleWarning.Render("not connected")
	if report.ShellConnected {
		shellLine = styleSuccess.Render("connected")
	}

	windowLine := styleHint.Render("unknown (no shell)")
	if report.Window != nil {
		if report.Window.Visible {
			windowLine = "visible"
			if report.Window.Focused {
				windowLine = "visible, focused"
			}
		} else {
			windowLine = "hidden"
		}
	}

	printStatusRow("Port", strconv.Itoa(report.Port))
	printStatusRow("PID", strconv.Itoa(report.PID))
	printStatusRow("Uptime", time.Since(report.StartedAt).Truncate(time.Second).String())
	printStatusRow("Shell", shellLine)
	printStatusRow("Window", windowLine)
	printStatusRow("Conversations", strconv.Itoa(report.Conversations))

	if report.Update.Available {
		fmt.Println()
		fmt.Println(styleUpdate.Render(fmt.Sprintf("Update available: v%s", report.Update.LatestVersion)))
		fmt.Printf("%s %s\n", styleHint.Render("Install with:"), styleCommand.Render("confab update"))
	}

	return nil
}

func printStatusRow(label, value string) {
	fmt.Printf("  %s %s\n", styleLabel.Render(fmt.Sprintf("%-15s", label+":")), value)
}
