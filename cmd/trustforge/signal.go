package main

import (
	"context"
	"os"
	"os/signal"
	"runtime"
	"syscall"
)

// stopSignals lists the signals that cancel a run. Windows only delivers
// os.Interrupt.
func stopSignals() []os.Signal {
	if runtime.GOOS == "windows" {
		return []os.Signal{os.Interrupt}
	}
	return []os.Signal{os.Interrupt, syscall.SIGTERM}
}

// notifyContext cancels the returned context on the first stop signal.
// A second signal falls through to the default handler and kills the
// process, which matters while a toolchain is stuck.
func notifyContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(parent, stopSignals()...)
	go func() {
		<-ctx.Done()
		stop()
	}()
	return ctx, stop
}
