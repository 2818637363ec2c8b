package core

import (
	"fmt"
	"os"
	"runtime/debug"
	"sync/atomic"
)

var crashFinalizer atomic.Pointer[func()]

// SetCrashFinalizer registers the cleanup run before a crash is reported, typically screen.Fini
func SetCrashFinalizer(fn func()) {
	if fn == nil {
		crashFinalizer.Store(nil)
		return
	}
	crashFinalizer.Store(&fn)
}

// HandleCrash is the unified panic handler that restores the terminal, prints the stack trace and exits
func HandleCrash(r any) {
	if r == nil {
		return
	}

	if fn := crashFinalizer.Swap(nil); fn != nil {
		(*fn)()
	}

	fmt.Fprintf(os.Stderr, "\n\x1b[31mQUADSIM CRASHED: %v\x1b[0m\n", r)
	fmt.Fprintf(os.Stderr, "Stack Trace:\n%s\n", debug.Stack())
	os.Stderr.Sync()

	os.Exit(1)
}

// Go runs a function in a new goroutine with panic recovery.
// Use this instead of the 'go' keyword to ensure terminal cleanup on crash.
func Go(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				HandleCrash(r)
			}
		}()
		fn()
	}()
}
