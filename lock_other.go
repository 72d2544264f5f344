//go:build !unix

package dccfs

import "os"

// lockExclusive is a no-op on platforms without advisory file locking
// support; mount exclusivity is not enforced there.
func lockExclusive(f *os.File) error {
	return nil
}

func unlockFile(f *os.File) error {
	return nil
}
