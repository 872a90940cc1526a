package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/confab-io/confab/internal/config"
	"github.com/confab-io/confab/internal/daemon/shortcut"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change global settings",
	Long: `Show or change the global settings in ~/.confab/settings.yaml.
The running daemon picks up changes without a restart.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current settings",
	RunE:  runSettingsShow,
}

var settingsConfigureCmd = &cobra.Command{
	Use:     "configure",
	Aliases: []string{"config"},
	Short:   "Configure settings interactively",
	Long: `Configure global settings interactively.

This allows you to modify:
  - Global shortcut binding (e.g. ctrl+shift+space)
  - Shell binary path
  - Update notifications
  - Anonymous usage reporting

Press Enter to keep the current value for any setting.`,
	RunE: runSettingsConfigure,
}

func init() {
	settingsCmd.AddCommand(settingsConfigureCmd)
	settingsCmd.AddCommand(settingsShowCmd)
}

func runSettingsShow(cmd *cobra.Command, args []string) error {
	settings, err := config.LoadSettings()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	shellPath := settings.Shell.Path
	if shellPath == "" {
		shellPath = "(auto-discover)"
	}
	binding := settings.Shortcut.Binding
	if !settings.Shortcut.Enabled {
		binding += " (disabled)"
	}

	printSettingsRow("Shortcut", binding)
	printSettingsRow("Shell", shellPath)
	printSettingsRow("Theme", settings.Appearance.Theme)
	printSettingsRow("Update checks", onOff(settings.Updates.CheckOnStartup)+", "+settings.Updates.CheckFrequency)
	printSettingsRow("Update notifications", onOff(settings.Notifications.UpdateAvailable))
	printSettingsRow("Telemetry", onOff(settings.Telemetry.Enabled))

	fmt.Printf("\nChange with %s.\n", styleCommand.Render("confab settings configure"))
	return nil
}

func printSettingsRow(label, value string) {
	fmt.Printf("  %s %s\n", styleLabel.Render(fmt.Sprintf("%-22s", label+":")), value)
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func runSettingsConfigure(cmd *cobra.Command, args []string) error {
	settings, err := config.LoadSettings()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	reader := bufio.NewReader(os.Stdin)
	changed := false

	// Shortcut binding
	fmt.Printf("Global shortcut [%s]: ", settings.Shortcut.Binding)
	binding, _ := reader.ReadString('\n')
	binding = strings.TrimSpace(binding)
	if binding != "" && binding != settings.Shortcut.Binding {
		if _, _, err := shortcut.ParseBinding(binding); err != nil {
			return fmt.Errorf("invalid shortcut: %w", err)
		}
		settings.Shortcut.Binding = binding
		changed = true
	}

	newEnabled := promptYesNoWithCurrent(reader, "Enable the global shortcut?", settings.Shortcut.Enabled)
	if newEnabled != settings.Shortcut.Enabled {
		settings.Shortcut.Enabled = newEnabled
		changed = true
	}

	// Shell binary path
	current := settings.Shell.Path
	if current == "" {
		current = "auto"
	}
	fmt.Printf("Shell binary path [%s]: ", current)
	shellPath, _ := reader.ReadString('\n')
	shellPath = strings.TrimSpace(shellPath)
	if shellPath != "" && shellPath != settings.Shell.Path {
		if shellPath == "auto" {
			shellPath = ""
		} else if _, err := os.Stat(shellPath); err != nil {
			return fmt.Errorf("shell binary: %w", err)
		}
		if shellPath != settings.Shell.Path {
			settings.Shell.Path = shellPath
			changed = true
		}
	}

	// Notifications and telemetry
	fmt.Println()

	newNotify := promptYesNoWithCurrent(reader, "Notify when an update is available?", settings.Notifications.UpdateAvailable)
	if newNotify != settings.Notifications.UpdateAvailable {
		settings.Notifications.UpdateAvailable = newNotify
		changed = true
	}

	newTelemetry := promptYesNoWithCurrent(reader, "Send anonymous usage reports?", settings.Telemetry.Enabled)
	if newTelemetry != settings.Telemetry.Enabled {
		settings.Telemetry.Enabled = newTelemetry
		changed = true
	}

	if !changed {
		fmt.Println("\nNo changes made.")
		return nil
	}

	if err := config.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	fmt.Println("\nSettings updated. A running daemon applies them automatically.")
	return nil
}

// promptYesNoWithCurrent prompts for a yes/no value showing the current value.
func promptYesNoWithCurrent(reader *bufio.Reader, prompt string, current bool) bool {
	currentStr := "no"
	if current {
		currentStr = "yes"
	}

	fmt.Printf("  %s [%s]: ", prompt, currentStr)
	response, _ := reader.ReadString('\n')
	response = strings.TrimSpace(strings.ToLower(response))

	if response == "" {
		return current
	}
	return response == "y" || response == "yes"
}
