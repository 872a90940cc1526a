package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/confab-io/confab/internal/buildinfo"
)

var versionCmd = &cobra.Command{
	Use:     "version",
	Aliases: []string{"v"},
	Short:   "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("%s %s (%s)\n",
			styleBrand.Render("Confab"),
			styleVersion.Render("v"+buildinfo.Version),
			buildinfo.Codename)
		fmt.Printf("  %s %s\n", styleLabel.Render("commit:"), buildinfo.CommitHash)
		fmt.Printf("  %s %s\n", styleLabel.Render("built: "), buildinfo.BuildDate)
		fmt.Printf("  %s %s/%s\n", styleLabel.Render("host:  "), runtime.GOOS, runtime.GOARCH)
	},
}
