// Released under an MIT license. See LICENSE.

//go:build !unix

package signals

import "os"

// Terminating returns the signals that end the REPL.
func Terminating() []os.Signal {
	return []os.Signal{os.Interrupt}
}
