// Released under an MIT license. See LICENSE.

// Package signals names the signals that stop the REPL on each platform.
package signals
