//go:build unix

package server

import (
	"os"
	"syscall"
)

// visibilitySignals maps SIGUSR1 to visible and SIGUSR2 to hidden.
var visibilitySignals = map[os.Signal]bool{
	syscall.SIGUSR1: true,
	syscall.SIGUSR2: false,
}
