//go:build !unix

package server

import "os"

var visibilitySignals = map[os.Signal]bool{}
