package workflow

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrProjectLocked is returned when another run holds the project lock.
var ErrProjectLocked = errors.New("another defaultpoetry run is active for this project")

// acquireProjectLock takes a non-blocking lock for projectDir. Lock files
// live under lockDir so they never end up in the project's commits.
func acquireProjectLock(lockDir, projectDir string) (*flock.Flock, error) {
	if err := os.MkdirAll(lockDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure lock directory: %w", err)
	}
	sum := sha256.Sum256([]byte(projectDir))
	lockPath := filepath.Join(lockDir, hex.EncodeToString(sum[:8])+".lock")

	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", projectDir, ErrProjectLocked)
	}
	return lock, nil
}
