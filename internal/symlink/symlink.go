package symlink

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"lychee/pkg/logging"
)

// ConflictError is returned when a mount target exists as a genuine
// (non-symlink) directory. The directory is left untouched: silently
// replacing it could destroy user data.
type ConflictError struct {
	// Target is the path that could not be replaced.
	Target string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("refusing to overwrite non-symlink directory: %s", e.Target)
}

// IsConflict checks if an error is or wraps a ConflictError.
func IsConflict(err error) bool {
	var conflictErr *ConflictError
	return errors.As(err, &conflictErr)
}

// Ensure makes target a symlink pointing at source. An existing symlink or
// regular file at target is replaced; a genuine directory raises a
// ConflictError. Parent directories are created as needed. Repeating the
// call with identical arguments leaves an identical link.
func Ensure(source, target string) error {
	info, err := os.Lstat(target)
	switch {
	case err == nil:
		if info.Mode()&os.ModeSymlink == 0 && info.IsDir() {
			return &ConflictError{Target: target}
		}
		if err := os.Remove(target); err != nil {
			return fmt.Errorf("failed to remove existing %s: %w", target, err)
		}
	case os.IsNotExist(err):
		// Nothing in the way.
	default:
		return fmt.Errorf("failed to stat %s: %w", target, err)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("failed to create parent directory for %s: %w", target, err)
	}
	if err := os.Symlink(source, target); err != nil {
		return fmt.Errorf("failed to create symlink %s -> %s: %w", target, source, err)
	}
	return nil
}

// FindBroken returns every symlink under root whose target no longer
// exists. Results are in walk order (lexical within each directory).
func FindBroken(root string) ([]string, error) {
	var broken []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type()&os.ModeSymlink == 0 {
			return nil
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			broken = append(broken, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s for broken symlinks: %w", root, err)
	}
	return broken, nil
}

// RemoveBroken deletes all broken symlinks under root. Safe to repeat: a
// second pass finds nothing to remove.
func RemoveBroken(root string) error {
	broken, err := FindBroken(root)
	if err != nil {
		return err
	}
	for _, path := range broken {
		logging.Info("Symlink", "Removing broken symlink: %s", path)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove broken symlink %s: %w", path, err)
		}
	}
	return nil
}
