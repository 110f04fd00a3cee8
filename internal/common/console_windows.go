//go:build windows

package common

import "golang.org/x/sys/windows"

const cpUTF8 = 65001

// EnsureUTF8Console switches the console output code page to UTF-8 so JSON with
// non-ASCII text renders the same as on other platforms.
func EnsureUTF8Console() error {
	return windows.SetConsoleOutputCP(cpUTF8)
}
