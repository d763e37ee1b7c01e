// i3-workspace-names renames i3 and sway workspaces after the windows they
// contain.
package main

import (
	"os"

	"gitlab.com/flib99/i3-workspace-names/internal/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
