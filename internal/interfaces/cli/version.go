package cli

import (
	"runtime"

	"github.com/spf13/cobra"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print detailed version information",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("matgen %s\n", Version)
			cmd.Printf("  commit:     %s\n", GitCommit)
			cmd.Printf("  built:      %s\n", BuildDate)
			cmd.Printf("  go version: %s\n", runtime.Version())
			cmd.Printf("  platform:   %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}
