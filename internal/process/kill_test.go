package process

// Notes:
// - KillProcessGroup is only called with an invalid PID: PID 0 would target
//   the test's own group. Real group kills are covered by the xelatex timeout
//   test in the toolchain package.

import (
	"context"
	"errors"
	"os/exec"
	"runtime"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// TestKillProcessGroup - Invalid PID Handling
// ---------------------------------------------------------------------------

func TestKillProcessGroup_InvalidPID(t *testing.T) {
	t.Parallel()

	KillProcessGroup(999999999)
}

// ---------------------------------------------------------------------------
// TestBind - Cancellation kills the child
// ---------------------------------------------------------------------------

func TestBind(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("uses sleep(1)")
	}
	if _, err := exec.LookPath("sleep"); err != nil {
		t.Skip("sleep not available")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	cmd := exec.CommandContext(ctx, "sleep", "30")
	Bind(cmd)
	if cmd.SysProcAttr == nil {
		t.Fatal("Bind() did not set SysProcAttr")
	}

	start := time.Now()
	err := cmd.Run()
	if err == nil {
		t.Fatal("Run() succeeded, want kill error")
	}
	if !errors.Is(ctx.Err(), context.DeadlineExceeded) {
		t.Errorf("ctx.Err() = %v, want DeadlineExceeded", ctx.Err())
	}
	if elapsed := time.Since(start); elapsed > 10*time.Second {
		t.Errorf("Run() took %v after cancellation", elapsed)
	}
}
