package main

import (
	"fmt"
	"os"

	"github.com/crucial707/kijiji-watch/cmd/cli/auth"
	"github.com/crucial707/kijiji-watch/cmd/cli/regions"
	"github.com/crucial707/kijiji-watch/cmd/cli/root"
	"github.com/crucial707/kijiji-watch/cmd/cli/searches"
	"github.com/crucial707/kijiji-watch/cmd/cli/webhooks"
)

func main() {
	auth.InitAuth(root.Cmd)
	searches.InitSearches(root.Cmd)
	webhooks.InitWebhooks(root.Cmd)
	regions.InitRegions(root.Cmd)

	if err := root.Cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
