// stoker is a development-mode supervisor for cargo projects.
package main

import (
	"os"

	"github.com/steveyegge/stoker/internal/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
