//go:build !windows

package common

// EnsureUTF8Console is a no-op outside Windows: Go writes UTF-8 bytes as-is.
func EnsureUTF8Console() error { return nil }
