package root

import (
	"github.com/spf13/cobra"
)

// Cmd is the top-level CLI command. Subcommand packages register themselves
// against it from main.
var Cmd = &cobra.Command{
	Use:           "kijiji",
	Short:         "Manage Kijiji Watch saved searches, webhooks, and regions",
	SilenceUsage:  true,
	SilenceErrors: true,
}
