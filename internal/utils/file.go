package utils

import (
	"os"

	"github.com/mattn/go-isatty"
)

// IsTerminal checks if file descriptor is terminal or not
func IsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// IsPathOccupied checks whether the targeted path is already occupied
func IsPathOccupied(path string) (bool, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
