package util

import "runtime"

// ZeroBytes overwrites b with zeros.
func ZeroBytes(b []byte) {
	clear(b)
	runtime.KeepAlive(b)
}
