// Package process runs external tools in their own process group so a
// timeout or cancellation kills the whole tree.
package process

import (
	"os/exec"
	"time"
)

// waitDelay bounds how long Wait blocks on pipes after the group is killed.
const waitDelay = 2 * time.Second

// Bind isolates cmd and makes context cancellation kill its process group
// instead of only the direct child. cmd must come from exec.CommandContext.
func Bind(cmd *exec.Cmd) {
	Isolate(cmd)
	cmd.Cancel = func() error {
		if cmd.Process != nil {
			KillProcessGroup(cmd.Process.Pid)
		}
		return nil
	}
	cmd.WaitDelay = waitDelay
}
