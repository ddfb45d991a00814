package cmake

import (
	"fmt"
	"os"
)

// WithDir runs fn with the process working directory set to dir and restores
// the previous directory afterwards, including when fn fails or panics.
//
// The working directory is process-wide: WithDir must not be used from
// concurrent goroutines.
func WithDir(dir string, fn func() error) (err error) {
	if dir == "" || dir == "." {
		return fn()
	}

	orig, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	if err := os.Chdir(dir); err != nil {
		return fmt.Errorf("failed to enter %s: %w", dir, err)
	}
	defer func() {
		if cerr := os.Chdir(orig); cerr != nil && err == nil {
			err = fmt.Errorf("failed to restore working directory %s: %w", orig, cerr)
		}
	}()

	return fn()
}
